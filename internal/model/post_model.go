package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostModel struct {
	ID          string                `gorm:"type:uuid;primary_key" json:"id"`
	SellerID    string                `gorm:"type:uuid;not null;index" json:"seller_id"`
	Nature      string                `gorm:"type:varchar(20);not null" json:"post_nature"`
	State       string                `gorm:"type:varchar(20);not null;default:'pending';index" json:"state"`
	Title       string                `gorm:"type:varchar(255);not null" json:"title"`
	Description string                `gorm:"type:text;not null" json:"description"`
	Price       float64               `gorm:"not null;default:0" json:"price"`
	CategoryID  string                `gorm:"type:uuid;not null;index" json:"category_id"`
	Places      []PostPlaceModel      `gorm:"foreignKey:PostID" json:"places,omitempty"`
	Attachments []PostAttachmentModel `gorm:"foreignKey:PostID" json:"attachments,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func (p *PostModel) TableName() string { return "posts" }

func (p *PostModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// PostPlaceModel links a post to one of its pickup addresses. Position
// preserves the order the seller listed them in.
type PostPlaceModel struct {
	PostID    string `gorm:"type:uuid;primaryKey" json:"post_id"`
	AddressID string `gorm:"type:uuid;primaryKey" json:"address_id"`
	Position  int    `gorm:"default:0;index" json:"position"`
}

func (p *PostPlaceModel) TableName() string { return "post_places" }

const (
	AttachmentKindImage = "image"
	AttachmentKindVideo = "video"
)

// PostAttachmentModel records an attachment-store id referenced by a
// post. The id is the row key: it is the store's handle, not ours.
type PostAttachmentModel struct {
	ID        string    `gorm:"type:varchar(255);primaryKey" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;index" json:"post_id"`
	Kind      string    `gorm:"type:varchar(10);not null" json:"kind"`
	Position  int       `gorm:"default:0;index" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *PostAttachmentModel) TableName() string { return "post_attachments" }
