package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campus-market/internal/entity"
	"campus-market/internal/usecase"
	"campus-market/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) Create(requester *entity.User, draft usecase.PostDraft, uploads []usecase.Upload) (*entity.Post, error) {
	args := m.Called(requester, draft, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) GetByID(id string, requester *entity.User) (*entity.Post, error) {
	args := m.Called(id, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) GetFullDetails(id string, requester *entity.User) (*usecase.PostDetails, error) {
	args := m.Called(id, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.PostDetails), args.Error(1)
}

func (m *MockPostUseCase) Edit(id string, requester *entity.User, patch usecase.PostPatch) (*entity.Post, error) {
	args := m.Called(id, requester, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) ChangeState(id string, requester *entity.User, state string) (*entity.Post, error) {
	args := m.Called(id, requester, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) Sell(id string, requester *entity.User) (*entity.Post, error) {
	args := m.Called(id, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) Delete(id string, requester *entity.User) error {
	args := m.Called(id, requester)
	return args.Error(0)
}

func (m *MockPostUseCase) DeleteAttachment(id string, requester *entity.User, attachmentID string) error {
	args := m.Called(id, requester, attachmentID)
	return args.Error(0)
}

func (m *MockPostUseCase) List(filter usecase.ListFilter) ([]*entity.Post, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) ListByState(requester *entity.User, state entity.PostState) ([]*entity.Post, error) {
	args := m.Called(requester, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) ListMine(requester *entity.User) ([]*entity.Post, error) {
	args := m.Called(requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) ClosedPostsCount() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostUseCase) WithoutFavourites(requester *entity.User) ([]*entity.Post, error) {
	args := m.Called(requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) Favourites(requester *entity.User) ([]*entity.Post, error) {
	args := m.Called(requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

var _ usecase.PostUseCase = (*MockPostUseCase)(nil)

// asUser simulates the auth middleware having resolved the caller.
func asUser(user *entity.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Set("current_user", user)
			c.Set("user_id", user.ID)
		}
		c.Next()
	}
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func approvedPost() *entity.Post {
	return &entity.Post{
		ID:         "post-1",
		Nature:     entity.NatureForSale,
		State:      entity.StateApproved,
		Title:      "Desk",
		Price:      40,
		Places:     []string{"addr-1"},
		SellerID:   "seller-1",
		CategoryID: "cat-1",
	}
}

func TestListPosts_FiltersPassedThrough(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	router.GET("/posts", handler.ListPosts)

	mockUC.On("List", usecase.ListFilter{Campus: "woluwe", CategoryID: "cat-1", Order: "price_asc"}).
		Return([]*entity.Post{approvedPost()}, nil)

	req, _ := http.NewRequest("GET", "/posts?campus=woluwe&category=cat-1&order=price_asc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUC.AssertExpectations(t)
}

func TestListPosts_InvalidState(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	router.GET("/posts", handler.ListPosts)

	req, _ := http.NewRequest("GET", "/posts?state=archived", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "state", body["field"])
	mockUC.AssertNotCalled(t, "List", mock.Anything)
}

func TestGetPost_Approved(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	router.GET("/posts/:id", handler.GetPost)

	mockUC.On("GetByID", "post-1", (*entity.User)(nil)).Return(approvedPost(), nil)

	req, _ := http.NewRequest("GET", "/posts/post-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var post entity.Post
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.Equal(t, "post-1", post.ID)
}

func TestGetPost_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"anonymous on hidden post", entity.ErrUnauthorized, http.StatusUnauthorized},
		{"stranger on hidden post", entity.ErrForbidden, http.StatusForbidden},
		{"missing post", entity.ErrNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupRouter()
			mockUC := new(MockPostUseCase)
			handler := NewPostHandler(mockUC, logger.New())
			router.GET("/posts/:id", handler.GetPost)

			mockUC.On("GetByID", "post-1", (*entity.User)(nil)).Return(nil, tc.err)

			req, _ := http.NewRequest("GET", "/posts/post-1", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestFullDetails_AnonymousOmitsSeller(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	router.GET("/posts/:id/fulldetails", handler.FullDetails)

	post := approvedPost()
	post.SellerID = ""
	mockUC.On("GetFullDetails", "post-1", (*entity.User)(nil)).Return(&usecase.PostDetails{
		Post:      post,
		Addresses: []*entity.Address{{ID: "addr-1", Campus: "woluwe"}},
	}, nil)

	req, _ := http.NewRequest("GET", "/posts/post-1/fulldetails", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "post")
	assert.Contains(t, body, "addresses")
	assert.NotContains(t, body, "seller")
	assert.NotContains(t, string(body["post"]), "seller_id")
}

func TestFullDetails_AuthenticatedIncludesSeller(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	viewer := &entity.User{ID: "seller-1", Username: "alice"}
	router.GET("/posts/:id/fulldetails", asUser(viewer), handler.FullDetails)

	mockUC.On("GetFullDetails", "post-1", viewer).Return(&usecase.PostDetails{
		Post:      approvedPost(),
		Seller:    viewer,
		Addresses: []*entity.Address{{ID: "addr-1"}},
	}, nil)

	req, _ := http.NewRequest("GET", "/posts/post-1/fulldetails", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "seller")
}

func TestCreatePost_FormParsing(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	seller := &entity.User{ID: "seller-1"}
	router.POST("/posts", asUser(seller), handler.CreatePost)

	expected := usecase.PostDraft{
		Nature:      "for_sale",
		Title:       "Desk",
		Description: "Solid oak desk",
		Price:       40,
		Places:      []string{"addr-1", "addr-2"},
		CategoryID:  "cat-1",
	}
	mockUC.On("Create", seller, expected, []usecase.Upload(nil)).Return(approvedPost(), nil)

	form := "post_nature=for_sale&title=Desk&description=Solid+oak+desk&price=40&places=addr-1,+addr-2&category_id=cat-1"
	req, _ := http.NewRequest("POST", "/posts", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockUC.AssertExpectations(t)
}

func TestCreatePost_MissingRequiredField(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	router.POST("/posts", asUser(&entity.User{ID: "seller-1"}), handler.CreatePost)

	form := "post_nature=for_sale&title=Desk"
	req, _ := http.NewRequest("POST", "/posts", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUC.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePost_ValidationErrorFromUseCase(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	seller := &entity.User{ID: "seller-1"}
	router.POST("/posts", asUser(seller), handler.CreatePost)

	mockUC.On("Create", seller, mock.Anything, mock.Anything).
		Return(nil, &entity.ValidationError{Field: "price", Message: "must be strictly positive for a sale"})

	form := "post_nature=for_sale&title=Desk&description=x&price=0&places=addr-1&category_id=cat-1"
	req, _ := http.NewRequest("POST", "/posts", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "price", body["field"])
}

func TestEditPost_PartialBody(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	seller := &entity.User{ID: "seller-1"}
	router.PUT("/posts/:id", asUser(seller), handler.EditPost)

	newTitle := "Bigger desk"
	mockUC.On("Edit", "post-1", seller, usecase.PostPatch{Title: &newTitle}).Return(approvedPost(), nil)

	payload, _ := json.Marshal(map[string]string{"title": "Bigger desk"})
	req, _ := http.NewRequest("PUT", "/posts/post-1", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUC.AssertExpectations(t)
}

func TestChangeState_Admin(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	boss := &entity.User{ID: "admin-1", IsAdmin: true}
	router.POST("/posts/:id/statechange", asUser(boss), handler.ChangeState)

	post := approvedPost()
	mockUC.On("ChangeState", "post-1", boss, "approved").Return(post, nil)

	payload, _ := json.Marshal(ChangeStateRequest{State: "approved"})
	req, _ := http.NewRequest("POST", "/posts/post-1/statechange", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChangeState_MissingState(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	router.POST("/posts/:id/statechange", asUser(&entity.User{ID: "admin-1", IsAdmin: true}), handler.ChangeState)

	req, _ := http.NewRequest("POST", "/posts/post-1/statechange", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUC.AssertNotCalled(t, "ChangeState", mock.Anything, mock.Anything, mock.Anything)
}

func TestSell_RejectedPost(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	seller := &entity.User{ID: "seller-1"}
	router.POST("/posts/:id/sell", asUser(seller), handler.Sell)

	mockUC.On("Sell", "post-1", seller).Return(nil, entity.ErrForbidden)

	req, _ := http.NewRequest("POST", "/posts/post-1/sell", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeletePost_Owner(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	seller := &entity.User{ID: "seller-1"}
	router.DELETE("/posts/:id", asUser(seller), handler.DeletePost)

	mockUC.On("Delete", "post-1", seller).Return(nil)

	req, _ := http.NewRequest("DELETE", "/posts/post-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUC.AssertExpectations(t)
}

func TestDeleteAttachment_UnknownFile(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	seller := &entity.User{ID: "seller-1"}
	router.DELETE("/posts/:id/file/:file_id", asUser(seller), handler.DeleteAttachment)

	mockUC.On("DeleteAttachment", "post-1", seller, "att-404").Return(entity.ErrNotFound)

	req, _ := http.NewRequest("DELETE", "/posts/post-1/file/att-404", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClosedPostsAmount(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	router.GET("/posts/closedpostsamount", handler.ClosedPostsAmount)

	mockUC.On("ClosedPostsCount").Return(int64(3), nil)

	req, _ := http.NewRequest("GET", "/posts/closedpostsamount", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]int64
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body["count"])
}

func TestPendingPosts_NonAdmin(t *testing.T) {
	router := setupRouter()
	mockUC := new(MockPostUseCase)
	handler := NewPostHandler(mockUC, logger.New())
	seller := &entity.User{ID: "seller-1"}
	router.GET("/posts/pending", asUser(seller), handler.PendingPosts)

	mockUC.On("ListByState", seller, entity.StatePending).Return(nil, entity.ErrForbidden)

	req, _ := http.NewRequest("GET", "/posts/pending", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
