package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"campus-market/internal/entity"
	"campus-market/internal/usecase"
	"campus-market/pkg/logger"
	"campus-market/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

// respondError maps the domain error taxonomy onto HTTP status codes.
func (h *PostHandler) respondError(c *gin.Context, err error) {
	var validationErr *entity.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.Is(err, entity.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You do not have access to this post"})
	case errors.Is(err, entity.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to do this"})
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "This post does not exist anymore"})
	default:
		h.logger.Error("Unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

// ListPosts godoc
// @Summary      List posts
// @Description  List posts, optionally filtered by campus and/or category, ordered by recency or price.
// @Tags         posts
// @Produce      json
// @Param        campus query string false "Campus to filter by (through pickup addresses)"
// @Param        category query string false "Category id to filter by"
// @Param        order query string false "Ordering" Enums(recent, price_asc, price_desc)
// @Param        state query string false "State to filter by" Enums(pending, approved, rejected, closed)
// @Success      200  {array}  entity.Post
// @Failure      400  {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	filter := usecase.ListFilter{
		Campus:     c.Query("campus"),
		CategoryID: c.Query("category"),
		Order:      c.Query("order"),
	}

	if raw := c.Query("state"); raw != "" {
		state, err := entity.ParsePostState(raw)
		if err != nil {
			h.respondError(c, err)
			return
		}
		filter.State = &state
	}

	posts, err := h.postUseCase.List(filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// ClosedPostsAmount godoc
// @Summary      Count closed posts
// @Tags         posts
// @Produce      json
// @Success      200  {object}  map[string]int64
// @Router       /posts/closedpostsamount [get]
func (h *PostHandler) ClosedPostsAmount(c *gin.Context) {
	count, err := h.postUseCase.ClosedPostsCount()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// WithoutFavourites godoc
// @Summary      List posts excluding the caller's favorites
// @Description  Anonymous callers get the unfiltered list.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entity.Post
// @Router       /posts/withoutfavourites [get]
func (h *PostHandler) WithoutFavourites(c *gin.Context) {
	posts, err := h.postUseCase.WithoutFavourites(middleware.CurrentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Favourites godoc
// @Summary      List the caller's favorite posts
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entity.Post
// @Failure      401  {object}  map[string]string
// @Router       /posts/favourites [get]
func (h *PostHandler) Favourites(c *gin.Context) {
	posts, err := h.postUseCase.Favourites(middleware.CurrentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// MyPosts godoc
// @Summary      List the caller's own posts, whatever their state
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entity.Post
// @Failure      401  {object}  map[string]string
// @Router       /posts/myposts [get]
func (h *PostHandler) MyPosts(c *gin.Context) {
	posts, err := h.postUseCase.ListMine(middleware.CurrentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) listByState(c *gin.Context, state entity.PostState) {
	posts, err := h.postUseCase.ListByState(middleware.CurrentUser(c), state)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// PendingPosts godoc
// @Summary      List pending posts (admin)
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entity.Post
// @Failure      403  {object}  map[string]string
// @Router       /posts/pending [get]
func (h *PostHandler) PendingPosts(c *gin.Context) { h.listByState(c, entity.StatePending) }

// ClosedPosts godoc
// @Summary      List closed posts (admin)
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entity.Post
// @Failure      403  {object}  map[string]string
// @Router       /posts/closed [get]
func (h *PostHandler) ClosedPosts(c *gin.Context) { h.listByState(c, entity.StateClosed) }

// RejectedPosts godoc
// @Summary      List rejected posts (admin)
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entity.Post
// @Failure      403  {object}  map[string]string
// @Router       /posts/rejected [get]
func (h *PostHandler) RejectedPosts(c *gin.Context) { h.listByState(c, entity.StateRejected) }

// GetPost godoc
// @Summary      Get a post by id
// @Description  Non-approved posts are only visible to their owner or an admin.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post id"
// @Success      200  {object}  entity.Post
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postUseCase.GetByID(c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// FullDetails godoc
// @Summary      Get a post with resolved seller and addresses
// @Description  Anonymous callers on an approved post get a reduced payload without the seller.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post id"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/fulldetails [get]
func (h *PostHandler) FullDetails(c *gin.Context) {
	details, err := h.postUseCase.GetFullDetails(c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if details.Seller == nil {
		c.JSON(http.StatusOK, gin.H{
			"post":      details.Post,
			"addresses": details.Addresses,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":      details.Post,
		"seller":    details.Seller,
		"addresses": details.Addresses,
	})
}

type CreatePostRequest struct {
	Nature      string `form:"post_nature" binding:"required"`
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required"`
	Price       string `form:"price"`
	Places      string `form:"places" binding:"required"`
	CategoryID  string `form:"category_id" binding:"required"`
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Creates a pending post with optional image files and at most one video file.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        post_nature formData string true "Nature" Enums(for_sale, give_away)
// @Param        title formData string true "Title"
// @Param        description formData string true "Description"
// @Param        price formData number false "Price, required and positive for sales"
// @Param        places formData string true "Comma-separated pickup address ids"
// @Param        category_id formData string true "Category id"
// @Param        files formData file false "Attachments (images, at most one video)"
// @Success      201  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var price float64
	if req.Price != "" {
		parsed, err := strconv.ParseFloat(req.Price, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a number", "field": "price"})
			return
		}
		price = parsed
	}

	var places []string
	for _, p := range strings.Split(req.Places, ",") {
		if p = strings.TrimSpace(p); p != "" {
			places = append(places, p)
		}
	}

	draft := usecase.PostDraft{
		Nature:      req.Nature,
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		Places:      places,
		CategoryID:  req.CategoryID,
	}

	var uploads []usecase.Upload
	if form, err := c.MultipartForm(); err == nil {
		for _, file := range form.File["files"] {
			src, err := file.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
				return
			}
			defer src.Close()
			uploads = append(uploads, usecase.Upload{
				Filename:    file.Filename,
				ContentType: file.Header.Get("Content-Type"),
				Reader:      src,
			})
		}
	}

	post, err := h.postUseCase.Create(middleware.CurrentUser(c), draft, uploads)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

type EditPostRequest struct {
	Nature      *string   `json:"post_nature"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Places      *[]string `json:"places"`
	CategoryID  *string   `json:"category_id"`
}

// EditPost godoc
// @Summary      Edit a post
// @Description  Partial update: absent fields keep their previous values. Owner or admin only.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post id"
// @Param        patch body EditPostRequest true "Fields to change"
// @Success      200  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [put]
func (h *PostHandler) EditPost(c *gin.Context) {
	var req EditPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.Edit(c.Param("id"), middleware.CurrentUser(c), usecase.PostPatch{
		Nature:      req.Nature,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Places:      req.Places,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

type ChangeStateRequest struct {
	State string `json:"state" binding:"required"`
}

// ChangeState godoc
// @Summary      Force a post state (admin)
// @Description  Accepts any of the four states; no transition-graph restriction.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post id"
// @Param        body body ChangeStateRequest true "Target state"
// @Success      200  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /posts/{id}/statechange [post]
func (h *PostHandler) ChangeState(c *gin.Context) {
	var req ChangeStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.ChangeState(c.Param("id"), middleware.CurrentUser(c), req.State)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// Sell godoc
// @Summary      Close a post as sold
// @Description  Owner or admin only; a rejected post cannot be closed.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post id"
// @Success      200  {object}  entity.Post
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/sell [post]
func (h *PostHandler) Sell(c *gin.Context) {
	post, err := h.postUseCase.Sell(c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary      Delete a post and its attachments
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postUseCase.Delete(c.Param("id"), middleware.CurrentUser(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// DeleteAttachment godoc
// @Summary      Remove one attachment from a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post id"
// @Param        file_id path string true "Attachment id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/file/{file_id} [delete]
func (h *PostHandler) DeleteAttachment(c *gin.Context) {
	if err := h.postUseCase.DeleteAttachment(c.Param("id"), middleware.CurrentUser(c), c.Param("file_id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attachment deleted"})
}
