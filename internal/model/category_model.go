package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryModel struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	ParentID  string    `gorm:"type:uuid" json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *CategoryModel) TableName() string { return "categories" }

func (c *CategoryModel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

type AddressModel struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Street    string    `gorm:"type:varchar(255);not null" json:"street"`
	City      string    `gorm:"type:varchar(100);not null" json:"city"`
	Campus    string    `gorm:"type:varchar(100);not null;index" json:"campus"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *AddressModel) TableName() string { return "addresses" }

func (a *AddressModel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
