package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserModel struct {
	ID        string          `gorm:"type:uuid;primary_key" json:"id"`
	Email     string          `gorm:"uniqueIndex;not null" json:"email"`
	Username  string          `gorm:"uniqueIndex;not null" json:"username"`
	Password  string          `gorm:"not null" json:"-"`
	Campus    string          `gorm:"type:varchar(100)" json:"campus"`
	IsAdmin   bool            `gorm:"default:false" json:"is_admin"`
	Favorites []FavoriteModel `gorm:"foreignKey:UserID" json:"favorites,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (u *UserModel) TableName() string { return "users" }

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

type FavoriteModel struct {
	UserID    string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	PostID    string    `gorm:"type:uuid;primaryKey" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *FavoriteModel) TableName() string { return "favorites" }
