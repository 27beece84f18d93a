package persistent

import (
	"errors"

	"campus-market/internal/entity"
	"campus-market/internal/model"

	"gorm.io/gorm"
)

// The resolvers return (nil, nil) for an unknown id: "no such entity" is
// an answer, not a failure, and callers decide what it means.

type CategoryResolver interface {
	ByID(id string) (*entity.Category, error)
}

type AddressResolver interface {
	ByID(id string) (*entity.Address, error)
}

type UserResolver interface {
	ByID(id string) (*entity.User, error)
}

type categoryResolver struct {
	db *gorm.DB
}

func NewCategoryResolver(db *gorm.DB) CategoryResolver {
	return &categoryResolver{db: db}
}

func (r *categoryResolver) ByID(id string) (*entity.Category, error) {
	var m model.CategoryModel
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToCategoryEntity(&m), nil
}

type addressResolver struct {
	db *gorm.DB
}

func NewAddressResolver(db *gorm.DB) AddressResolver {
	return &addressResolver{db: db}
}

func (r *addressResolver) ByID(id string) (*entity.Address, error) {
	var m model.AddressModel
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToAddressEntity(&m), nil
}

type userResolver struct {
	db *gorm.DB
}

func NewUserResolver(db *gorm.DB) UserResolver {
	return &userResolver{db: db}
}

func (r *userResolver) ByID(id string) (*entity.User, error) {
	var m model.UserModel
	err := r.db.Preload("Favorites").Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToUserEntity(&m), nil
}
