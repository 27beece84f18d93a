package persistent

import (
	"errors"

	"campus-market/internal/entity"
	"campus-market/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderKey string

const (
	OrderRecent    OrderKey = "recent"
	OrderPriceAsc  OrderKey = "price_asc"
	OrderPriceDesc OrderKey = "price_desc"
)

// ParseOrderKey treats an empty key as the default ordering (most recent
// first) and rejects anything outside the known set.
func ParseOrderKey(s string) (OrderKey, error) {
	switch OrderKey(s) {
	case "", OrderRecent:
		return OrderRecent, nil
	case OrderPriceAsc, OrderPriceDesc:
		return OrderKey(s), nil
	}
	return "", &entity.ValidationError{Field: "order", Message: "must be one of recent, price_asc, price_desc"}
}

// PostFilter narrows a Query. Campus and CategoryID are conjunctive when
// both are set; a nil State matches every state.
type PostFilter struct {
	Campus     string
	CategoryID string
	SellerID   string
	State      *entity.PostState
	Order      OrderKey
}

type PostRepository interface {
	Save(post *entity.Post) error
	ByID(id string) (*entity.Post, error)
	ByIDs(ids []string) ([]*entity.Post, error)
	Query(filter PostFilter) ([]*entity.Post, error)
	Delete(id string) error
	CountByState(state entity.PostState) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Save persists the post as a full snapshot under its id: the row is
// upserted and the place/attachment link rows are rewritten. Last write
// wins between concurrent edits.
func (r *postRepository) Save(post *entity.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	m := ToPostModel(post)
	places := m.Places
	attachments := m.Attachments
	m.Places = nil
	m.Attachments = nil

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(m).Error; err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", m.ID).Delete(&model.PostPlaceModel{}).Error; err != nil {
			return err
		}
		for i := range places {
			places[i].PostID = m.ID
			if err := tx.Create(&places[i]).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("post_id = ?", m.ID).Delete(&model.PostAttachmentModel{}).Error; err != nil {
			return err
		}
		for i := range attachments {
			attachments[i].PostID = m.ID
			if err := tx.Create(&attachments[i]).Error; err != nil {
				return err
			}
		}

		post.CreatedAt = m.CreatedAt
		post.UpdatedAt = m.UpdatedAt
		return nil
	})
}

func (r *postRepository) ByID(id string) (*entity.Post, error) {
	var m model.PostModel
	err := r.db.Preload("Places").Preload("Attachments").Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return ToPostEntity(&m), nil
}

func (r *postRepository) ByIDs(ids []string) ([]*entity.Post, error) {
	if len(ids) == 0 {
		return []*entity.Post{}, nil
	}
	var models []model.PostModel
	err := r.db.Preload("Places").Preload("Attachments").
		Where("id IN ?", ids).Order("created_at DESC").Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toPostEntities(models), nil
}

func (r *postRepository) Query(filter PostFilter) ([]*entity.Post, error) {
	query := r.db.Model(&model.PostModel{}).Preload("Places").Preload("Attachments")

	if filter.Campus != "" {
		query = query.Where("posts.id IN (?)",
			r.db.Table("post_places").
				Select("post_places.post_id").
				Joins("JOIN addresses ON addresses.id = post_places.address_id").
				Where("addresses.campus = ?", filter.Campus))
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.SellerID != "" {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.State != nil {
		query = query.Where("state = ?", string(*filter.State))
	}

	switch filter.Order {
	case OrderPriceAsc:
		query = query.Order("price ASC")
	case OrderPriceDesc:
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var models []model.PostModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return toPostEntities(models), nil
}

func (r *postRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.PostPlaceModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostAttachmentModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.PostModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return entity.ErrNotFound
		}
		return nil
	})
}

func (r *postRepository) CountByState(state entity.PostState) (int64, error) {
	var count int64
	err := r.db.Model(&model.PostModel{}).Where("state = ?", string(state)).Count(&count).Error
	return count, err
}

func toPostEntities(models []model.PostModel) []*entity.Post {
	posts := make([]*entity.Post, len(models))
	for i := range models {
		posts[i] = ToPostEntity(&models[i])
	}
	return posts
}
