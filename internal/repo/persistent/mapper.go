package persistent

import (
	"sort"

	"campus-market/internal/entity"
	"campus-market/internal/model"
)

func ToPostEntity(m *model.PostModel) *entity.Post {
	if m == nil {
		return nil
	}

	post := &entity.Post{
		ID:          m.ID,
		Nature:      entity.PostNature(m.Nature),
		State:       entity.PostState(m.State),
		Title:       m.Title,
		Description: m.Description,
		Price:       m.Price,
		SellerID:    m.SellerID,
		CategoryID:  m.CategoryID,
		Places:      make([]string, 0, len(m.Places)),
		Images:      []string{},
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	places := append([]model.PostPlaceModel(nil), m.Places...)
	sort.Slice(places, func(i, j int) bool { return places[i].Position < places[j].Position })
	for _, p := range places {
		post.Places = append(post.Places, p.AddressID)
	}

	attachments := append([]model.PostAttachmentModel(nil), m.Attachments...)
	sort.Slice(attachments, func(i, j int) bool { return attachments[i].Position < attachments[j].Position })
	for _, a := range attachments {
		if a.Kind == model.AttachmentKindVideo {
			post.Video = a.ID
		} else {
			post.Images = append(post.Images, a.ID)
		}
	}

	return post
}

func ToPostModel(e *entity.Post) *model.PostModel {
	if e == nil {
		return nil
	}

	m := &model.PostModel{
		ID:          e.ID,
		SellerID:    e.SellerID,
		Nature:      string(e.Nature),
		State:       string(e.State),
		Title:       e.Title,
		Description: e.Description,
		Price:       e.Price,
		CategoryID:  e.CategoryID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}

	for i, addressID := range e.Places {
		m.Places = append(m.Places, model.PostPlaceModel{
			PostID:    e.ID,
			AddressID: addressID,
			Position:  i,
		})
	}

	for i, imageID := range e.Images {
		m.Attachments = append(m.Attachments, model.PostAttachmentModel{
			ID:       imageID,
			PostID:   e.ID,
			Kind:     model.AttachmentKindImage,
			Position: i,
		})
	}
	if e.Video != "" {
		m.Attachments = append(m.Attachments, model.PostAttachmentModel{
			ID:       e.Video,
			PostID:   e.ID,
			Kind:     model.AttachmentKindVideo,
			Position: len(e.Images),
		})
	}

	return m
}

func ToUserEntity(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	user := &entity.User{
		ID:        m.ID,
		Email:     m.Email,
		Username:  m.Username,
		Campus:    m.Campus,
		IsAdmin:   m.IsAdmin,
		Favorites: make([]string, 0, len(m.Favorites)),
		CreatedAt: m.CreatedAt,
	}
	for _, f := range m.Favorites {
		user.Favorites = append(user.Favorites, f.PostID)
	}
	return user
}

func ToCategoryEntity(m *model.CategoryModel) *entity.Category {
	if m == nil {
		return nil
	}
	return &entity.Category{
		ID:       m.ID,
		Name:     m.Name,
		ParentID: m.ParentID,
	}
}

func ToAddressEntity(m *model.AddressModel) *entity.Address {
	if m == nil {
		return nil
	}
	return &entity.Address{
		ID:     m.ID,
		Street: m.Street,
		City:   m.City,
		Campus: m.Campus,
	}
}
