package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rengoky/Base-for-films/internal/httpapi/dto"
	"github.com/Rengoky/Base-for-films/internal/httpapi/handler"
	"github.com/Rengoky/Base-for-films/internal/httpapi/models"
	"github.com/Rengoky/Base-for-films/internal/httpapi/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- MOCK SERVICE ---

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ListByTitle(ctx context.Context, titleID int64, limit, offset int) ([]models.Review, int64, error) {
	args := m.Called(ctx, titleID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, titleID int64, authorID, text string, score int) (*models.Review, error) {
	args := m.Called(ctx, titleID, authorID, text, score)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, titleID, reviewID int64, actorID, actorRole string, upd service.ReviewUpdate) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID, actorID, actorRole, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, titleID, reviewID int64, actorID, actorRole string) error {
	args := m.Called(ctx, titleID, reviewID, actorID, actorRole)
	return args.Error(0)
}

func setupReviewRouter(mockService *MockReviewService, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewReviewHandler(mockService)
	h.RegisterRoutes(r.Group("/api/v1/titles"), mockAuthMiddleware(userID, role))
	return r
}

// --- TESTS ---

func TestReviewHandler_List(t *testing.T) {
	mockService := new(MockReviewService)
	r := setupReviewRouter(mockService, "user-id", models.RoleUser)

	expected := []models.Review{
		{
			ID:      1,
			Text:    "masterpiece",
			Score:   10,
			TitleID: 7,
			PubDate: time.Now(),
			Author:  models.User{Username: "critic"},
		},
	}

	t.Run("Success", func(t *testing.T) {
		mockService.On("ListByTitle", mock.Anything, int64(7), 20, 0).
			Return(expected, int64(1), nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/titles/7/reviews", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)

		data := response["data"].([]interface{})
		assert.Len(t, data, 1)
		item := data[0].(map[string]interface{})
		assert.Equal(t, "critic", item["author"])
		assert.Equal(t, float64(10), item["score"])
	})

	t.Run("TitleNotFound", func(t *testing.T) {
		mockService.On("ListByTitle", mock.Anything, int64(404), 20, 0).
			Return(nil, int64(0), service.ErrTitleNotFound).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/titles/404/reviews", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReviewHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, "user-id", models.RoleUser)

		created := &models.Review{
			ID:      42,
			Text:    "great",
			Score:   8,
			TitleID: 7,
			Author:  models.User{Username: "testuser"},
		}
		mockService.On("Create", mock.Anything, int64(7), "user-id", "great", 8).
			Return(created, nil).Once()

		w := postJSON(r, "/api/v1/titles/7/reviews", dto.CreateReviewDTO{Text: "great", Score: 8})

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp dto.ReviewResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Equal(t, int64(42), resp.ID)
		assert.Equal(t, "testuser", resp.Author)
		mockService.AssertExpectations(t)
	})

	t.Run("ScoreOutOfRange", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, "user-id", models.RoleUser)

		// binding catches this before the service is reached
		w := postJSON(r, "/api/v1/titles/7/reviews", dto.CreateReviewDTO{Text: "over", Score: 11})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Create")
	})

	t.Run("Duplicate", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, "user-id", models.RoleUser)

		mockService.On("Create", mock.Anything, int64(7), "user-id", "again", 6).
			Return(nil, service.ErrDuplicateReview).Once()

		w := postJSON(r, "/api/v1/titles/7/reviews", dto.CreateReviewDTO{Text: "again", Score: 6})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReviewHandler_Update(t *testing.T) {
	mockService := new(MockReviewService)
	r := setupReviewRouter(mockService, "user-id", models.RoleUser)

	t.Run("Success", func(t *testing.T) {
		updated := &models.Review{ID: 42, Text: "revised", Score: 9, TitleID: 7}
		mockService.On("Update", mock.Anything, int64(7), int64(42), "user-id", models.RoleUser,
			mock.MatchedBy(func(upd service.ReviewUpdate) bool {
				return upd.Text != nil && *upd.Text == "revised" && *upd.Score == 9
			})).Return(updated, nil).Once()

		w := postJSONMethod(r, http.MethodPatch, "/api/v1/titles/7/reviews/42", dto.UpdateReviewDTO{
			Text:  stringPtr("revised"),
			Score: intPtr(9),
		})

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("PermissionDenied", func(t *testing.T) {
		mockService.On("Update", mock.Anything, int64(7), int64(42), "user-id", models.RoleUser, mock.Anything).
			Return(nil, service.ErrPermissionDenied).Once()

		w := postJSONMethod(r, http.MethodPatch, "/api/v1/titles/7/reviews/42", dto.UpdateReviewDTO{
			Text: stringPtr("hijack"),
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestReviewHandler_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, "user-id", models.RoleUser)

		mockService.On("Delete", mock.Anything, int64(7), int64(42), "user-id", models.RoleUser).
			Return(nil).Once()

		req, _ := http.NewRequest(http.MethodDelete, "/api/v1/titles/7/reviews/42", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, "user-id", models.RoleUser)

		mockService.On("Delete", mock.Anything, int64(7), int64(999), "user-id", models.RoleUser).
			Return(service.ErrReviewNotFound).Once()

		req, _ := http.NewRequest(http.MethodDelete, "/api/v1/titles/7/reviews/999", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
