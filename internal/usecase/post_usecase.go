package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"campus-market/internal/entity"
	"campus-market/internal/repo/persistent"
	"campus-market/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// AttachmentStore is the id-addressed blob store contract: bytes in,
// attachment id out. The engine never sees a transport request object.
type AttachmentStore interface {
	Store(filename string, file io.Reader, contentType string) (string, error)
	Delete(id string) error
}

// EventPublisher pushes post lifecycle events to downstream consumers.
type EventPublisher interface {
	PublishPostEvent(event map[string]interface{}) error
}

// Upload is one file submitted with a create request.
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

type PostDraft struct {
	Nature      string
	Title       string
	Description string
	Price       float64
	Places      []string
	CategoryID  string
}

// PostPatch carries partial-update semantics: nil fields keep their
// previous values.
type PostPatch struct {
	Nature      *string
	Title       *string
	Description *string
	Price       *float64
	Places      *[]string
	CategoryID  *string
}

// PostDetails is the assembled full-detail view. Seller is nil when the
// requester is anonymous and the post is approved; in that case the
// post's seller_id is stripped as well.
type PostDetails struct {
	Post      *entity.Post
	Seller    *entity.User
	Addresses []*entity.Address
}

type ListFilter struct {
	Campus     string
	CategoryID string
	State      *entity.PostState
	Order      string
}

type PostUseCase interface {
	Create(requester *entity.User, draft PostDraft, uploads []Upload) (*entity.Post, error)
	GetByID(id string, requester *entity.User) (*entity.Post, error)
	GetFullDetails(id string, requester *entity.User) (*PostDetails, error)
	Edit(id string, requester *entity.User, patch PostPatch) (*entity.Post, error)
	ChangeState(id string, requester *entity.User, state string) (*entity.Post, error)
	Sell(id string, requester *entity.User) (*entity.Post, error)
	Delete(id string, requester *entity.User) error
	DeleteAttachment(id string, requester *entity.User, attachmentID string) error

	List(filter ListFilter) ([]*entity.Post, error)
	ListByState(requester *entity.User, state entity.PostState) ([]*entity.Post, error)
	ListMine(requester *entity.User) ([]*entity.Post, error)
	ClosedPostsCount() (int64, error)
	WithoutFavourites(requester *entity.User) ([]*entity.Post, error)
	Favourites(requester *entity.User) ([]*entity.Post, error)
}

type postUseCase struct {
	postRepo    persistent.PostRepository
	categories  persistent.CategoryResolver
	addresses   persistent.AddressResolver
	users       persistent.UserResolver
	store       AttachmentStore
	redisClient *redis.Client
	events      EventPublisher
	logger      *logger.Logger
}

func NewPostUseCase(
	postRepo persistent.PostRepository,
	categories persistent.CategoryResolver,
	addresses persistent.AddressResolver,
	users persistent.UserResolver,
	store AttachmentStore,
	redisClient *redis.Client,
	events EventPublisher,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:    postRepo,
		categories:  categories,
		addresses:   addresses,
		users:       users,
		store:       store,
		redisClient: redisClient,
		events:      events,
		logger:      logger,
	}
}

func (uc *postUseCase) Create(requester *entity.User, draft PostDraft, uploads []Upload) (*entity.Post, error) {
	if requester == nil {
		return nil, entity.ErrUnauthorized
	}

	nature, err := entity.ParsePostNature(draft.Nature)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, &entity.ValidationError{Field: "title", Message: "must be present and non-empty"}
	}
	if strings.TrimSpace(draft.Description) == "" {
		return nil, &entity.ValidationError{Field: "description", Message: "must be present and non-empty"}
	}
	if len(draft.Places) == 0 {
		return nil, &entity.ValidationError{Field: "places", Message: "must be a non-empty list"}
	}
	if draft.CategoryID == "" {
		return nil, &entity.ValidationError{Field: "category_id", Message: "must be present and non-empty"}
	}

	price := draft.Price
	switch nature {
	case entity.NatureForSale:
		if price <= 0 {
			return nil, &entity.ValidationError{Field: "price", Message: "must be strictly positive for a sale"}
		}
	case entity.NatureGiveAway:
		price = 0
	}

	category, err := uc.categories.ByID(draft.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	if category == nil {
		return nil, &entity.ValidationError{Field: "category_id", Message: "category does not exist"}
	}

	videos := 0
	for _, up := range uploads {
		if strings.HasPrefix(up.ContentType, "video/") {
			videos++
		}
	}
	if videos > 1 {
		return nil, &entity.ValidationError{Field: "files", Message: "at most one video is allowed"}
	}

	// All validation passed: uploads happen before the post is persisted,
	// and an upload failure aborts the whole create.
	var images []string
	var video string
	var stored []string
	for _, up := range uploads {
		id, err := uc.store.Store(up.Filename, up.Reader, up.ContentType)
		if err != nil {
			uc.rollbackAttachments(stored)
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		stored = append(stored, id)
		if strings.HasPrefix(up.ContentType, "video/") {
			video = id
		} else {
			images = append(images, id)
		}
	}

	post := &entity.Post{
		Nature:      nature,
		State:       entity.StatePending,
		Title:       draft.Title,
		Description: draft.Description,
		Price:       price,
		Places:      draft.Places,
		SellerID:    requester.ID,
		CategoryID:  draft.CategoryID,
		Images:      images,
		Video:       video,
	}
	if post.Images == nil {
		post.Images = []string{}
	}

	if err := uc.postRepo.Save(post); err != nil {
		uc.rollbackAttachments(stored)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	uc.cachePost(post)

	return post, nil
}

func (uc *postUseCase) GetByID(id string, requester *entity.User) (*entity.Post, error) {
	post, err := uc.postRepo.ByID(id)
	if err != nil {
		return nil, err
	}

	if post.State == entity.StateApproved {
		return post, nil
	}
	if entity.IsOwnerOrAdmin(requester, post) {
		return post, nil
	}
	if requester == nil {
		return nil, entity.ErrUnauthorized
	}
	return nil, entity.ErrForbidden
}

func (uc *postUseCase) GetFullDetails(id string, requester *entity.User) (*PostDetails, error) {
	post, err := uc.GetByID(id, requester)
	if err != nil {
		return nil, err
	}

	addresses := make([]*entity.Address, 0, len(post.Places))
	for _, addressID := range post.Places {
		address, err := uc.addresses.ByID(addressID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve address: %w", err)
		}
		if address != nil {
			addresses = append(addresses, address)
		}
	}

	// Anonymous viewers of an approved post get a reduced payload with
	// the seller identity stripped.
	if requester == nil {
		view := *post
		view.SellerID = ""
		return &PostDetails{Post: &view, Addresses: addresses}, nil
	}

	seller, err := uc.users.ByID(post.SellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve seller: %w", err)
	}

	return &PostDetails{Post: post, Seller: seller, Addresses: addresses}, nil
}

func (uc *postUseCase) Edit(id string, requester *entity.User, patch PostPatch) (*entity.Post, error) {
	post, err := uc.postRepo.ByID(id)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, entity.ErrUnauthorized
	}
	if !entity.IsOwnerOrAdmin(requester, post) {
		return nil, entity.ErrForbidden
	}

	nature := post.Nature
	if patch.Nature != nil {
		nature, err = entity.ParsePostNature(*patch.Nature)
		if err != nil {
			return nil, err
		}
	}
	title := post.Title
	if patch.Title != nil {
		title = *patch.Title
	}
	if strings.TrimSpace(title) == "" {
		return nil, &entity.ValidationError{Field: "title", Message: "must be non-empty"}
	}
	description := post.Description
	if patch.Description != nil {
		description = *patch.Description
	}
	if strings.TrimSpace(description) == "" {
		return nil, &entity.ValidationError{Field: "description", Message: "must be non-empty"}
	}
	places := post.Places
	if patch.Places != nil {
		places = *patch.Places
	}
	if len(places) == 0 {
		return nil, &entity.ValidationError{Field: "places", Message: "must be a non-empty list"}
	}
	categoryID := post.CategoryID
	if patch.CategoryID != nil {
		categoryID = *patch.CategoryID
	}
	category, err := uc.categories.ByID(categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	if category == nil {
		return nil, &entity.ValidationError{Field: "category_id", Message: "category does not exist"}
	}

	price := post.Price
	if patch.Price != nil {
		price = *patch.Price
	}
	switch nature {
	case entity.NatureGiveAway:
		// A giveaway never carries a price, whatever the patch says.
		price = 0
	case entity.NatureForSale:
		if price <= 0 {
			return nil, &entity.ValidationError{Field: "price", Message: "must be strictly positive for a sale"}
		}
	}

	post.Nature = nature
	post.Title = title
	post.Description = description
	post.Price = price
	post.Places = places
	post.CategoryID = categoryID

	if err := uc.postRepo.Save(post); err != nil {
		return nil, fmt.Errorf("failed to edit post: %w", err)
	}

	uc.cachePost(post)

	return post, nil
}

func (uc *postUseCase) ChangeState(id string, requester *entity.User, state string) (*entity.Post, error) {
	if requester == nil {
		return nil, entity.ErrUnauthorized
	}
	if !requester.IsAdmin {
		return nil, entity.ErrForbidden
	}

	// Any of the four states is reachable from any state; only the enum
	// membership is validated.
	newState, err := entity.ParsePostState(state)
	if err != nil {
		return nil, err
	}

	post, err := uc.postRepo.ByID(id)
	if err != nil {
		return nil, err
	}

	post.State = newState
	if err := uc.postRepo.Save(post); err != nil {
		return nil, fmt.Errorf("failed to change state: %w", err)
	}

	uc.cachePost(post)
	uc.publishEvent(map[string]interface{}{
		"type":    "state_change",
		"post_id": post.ID,
		"state":   string(post.State),
		"actor":   requester.ID,
	})

	return post, nil
}

func (uc *postUseCase) Sell(id string, requester *entity.User) (*entity.Post, error) {
	post, err := uc.postRepo.ByID(id)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, entity.ErrUnauthorized
	}
	if !entity.IsOwnerOrAdmin(requester, post) {
		return nil, entity.ErrForbidden
	}
	if post.State == entity.StateRejected {
		return nil, entity.ErrForbidden
	}

	post.State = entity.StateClosed
	if err := uc.postRepo.Save(post); err != nil {
		return nil, fmt.Errorf("failed to close post: %w", err)
	}

	uc.cachePost(post)
	uc.publishEvent(map[string]interface{}{
		"type":    "sold",
		"post_id": post.ID,
		"actor":   requester.ID,
	})

	return post, nil
}

func (uc *postUseCase) Delete(id string, requester *entity.User) error {
	post, err := uc.postRepo.ByID(id)
	if err != nil {
		return err
	}
	if requester == nil {
		return entity.ErrUnauthorized
	}
	if !entity.IsOwnerOrAdmin(requester, post) {
		return entity.ErrForbidden
	}

	// Blob deletion is best-effort: a failure leaves an orphaned blob,
	// never a half-deleted post.
	for _, attachmentID := range post.Attachments() {
		if err := uc.store.Delete(attachmentID); err != nil {
			uc.logger.Warn("Failed to delete attachment %s for post %s: %v", attachmentID, post.ID, err)
		}
	}

	if err := uc.postRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	uc.dropCachedPost(id)

	return nil
}

func (uc *postUseCase) DeleteAttachment(id string, requester *entity.User, attachmentID string) error {
	post, err := uc.postRepo.ByID(id)
	if err != nil {
		return err
	}
	if requester == nil {
		return entity.ErrUnauthorized
	}
	if !entity.IsOwnerOrAdmin(requester, post) {
		return entity.ErrForbidden
	}
	if !post.RemoveAttachment(attachmentID) {
		return entity.ErrNotFound
	}

	if err := uc.postRepo.Save(post); err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	if err := uc.store.Delete(attachmentID); err != nil {
		uc.logger.Warn("Failed to delete attachment %s for post %s: %v", attachmentID, post.ID, err)
	}

	uc.cachePost(post)

	return nil
}

func (uc *postUseCase) List(filter ListFilter) ([]*entity.Post, error) {
	order, err := persistent.ParseOrderKey(filter.Order)
	if err != nil {
		return nil, err
	}
	return uc.postRepo.Query(persistent.PostFilter{
		Campus:     filter.Campus,
		CategoryID: filter.CategoryID,
		State:      filter.State,
		Order:      order,
	})
}

func (uc *postUseCase) ListByState(requester *entity.User, state entity.PostState) ([]*entity.Post, error) {
	if requester == nil {
		return nil, entity.ErrUnauthorized
	}
	if !requester.IsAdmin {
		return nil, entity.ErrForbidden
	}
	return uc.postRepo.Query(persistent.PostFilter{State: &state})
}

func (uc *postUseCase) ListMine(requester *entity.User) ([]*entity.Post, error) {
	if requester == nil {
		return nil, entity.ErrUnauthorized
	}
	return uc.postRepo.Query(persistent.PostFilter{SellerID: requester.ID})
}

func (uc *postUseCase) ClosedPostsCount() (int64, error) {
	return uc.postRepo.CountByState(entity.StateClosed)
}

// WithoutFavourites returns every post except the requester's favorites.
// Anonymous callers have no favorites to exclude.
func (uc *postUseCase) WithoutFavourites(requester *entity.User) ([]*entity.Post, error) {
	posts, err := uc.postRepo.Query(persistent.PostFilter{})
	if err != nil {
		return nil, err
	}
	if requester == nil || len(requester.Favorites) == 0 {
		return posts, nil
	}

	filtered := make([]*entity.Post, 0, len(posts))
	for _, post := range posts {
		if !requester.HasFavorite(post.ID) {
			filtered = append(filtered, post)
		}
	}
	return filtered, nil
}

func (uc *postUseCase) Favourites(requester *entity.User) ([]*entity.Post, error) {
	if requester == nil {
		return nil, entity.ErrUnauthorized
	}
	return uc.postRepo.ByIDs(requester.Favorites)
}

func (uc *postUseCase) rollbackAttachments(ids []string) {
	for _, id := range ids {
		if err := uc.store.Delete(id); err != nil {
			uc.logger.Warn("Failed to roll back attachment %s: %v", id, err)
		}
	}
}

func (uc *postUseCase) cachePost(post *entity.Post) {
	if uc.redisClient == nil {
		return
	}

	ctx := context.Background()
	postKey := fmt.Sprintf("post:%s", post.ID)
	postData := map[string]interface{}{
		"id":          post.ID,
		"seller_id":   post.SellerID,
		"post_nature": string(post.Nature),
		"state":       string(post.State),
		"title":       post.Title,
		"price":       post.Price,
		"category_id": post.CategoryID,
	}

	for k, v := range postData {
		uc.redisClient.HSet(ctx, postKey, k, v)
	}
	uc.redisClient.Expire(ctx, postKey, 24*time.Hour)
}

func (uc *postUseCase) dropCachedPost(id string) {
	if uc.redisClient == nil {
		return
	}
	uc.redisClient.Del(context.Background(), fmt.Sprintf("post:%s", id))
}

func (uc *postUseCase) publishEvent(event map[string]interface{}) {
	if uc.events == nil {
		return
	}
	go func() {
		if err := uc.events.PublishPostEvent(event); err != nil {
			uc.logger.Error("Failed to publish post event: %v (event=%+v)", err, event)
		}
	}()
}
