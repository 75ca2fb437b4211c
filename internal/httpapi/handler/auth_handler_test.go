package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rengoky/Base-for-films/internal/httpapi/dto"
	"github.com/Rengoky/Base-for-films/internal/httpapi/handler"
	"github.com/Rengoky/Base-for-films/internal/httpapi/middleware"
	"github.com/Rengoky/Base-for-films/internal/httpapi/models"
	"github.com/Rengoky/Base-for-films/internal/httpapi/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- MOCK SERVICE ---

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) IssueToken(ctx context.Context, username, code string) (string, error) {
	args := m.Called(ctx, username, code)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

// mockAuthMiddleware injects a fake identity the way the real middleware does.
func mockAuthMiddleware(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, userID)
		c.Set(middleware.CtxUsername, "testuser")
		c.Set(middleware.CtxRole, role)
		c.Next()
	}
}

func setupAuthRouter(mockService *MockAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewAuthHandler(mockService)
	h.RegisterRoutes(r.Group("/api/v1/auth"))
	return r
}

func postJSON(r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	return postJSONMethod(r, http.MethodPost, path, payload)
}

func postJSONMethod(r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- TESTS ---

func TestAuthHandler_SignUp(t *testing.T) {
	mockService := new(MockAuthService)
	r := setupAuthRouter(mockService)

	t.Run("Success", func(t *testing.T) {
		user := &models.User{Username: "newuser", Email: "new@example.com"}
		mockService.On("SignUp", mock.Anything, "newuser", "new@example.com").Return(user, nil).Once()

		w := postJSON(r, "/api/v1/auth/signup", dto.SignUpRequest{
			Username: "newuser",
			Email:    "new@example.com",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.SignUpResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Equal(t, "newuser", resp.Username)
		assert.Equal(t, "new@example.com", resp.Email)
		mockService.AssertExpectations(t)
	})

	t.Run("ReservedUsername", func(t *testing.T) {
		mockService.On("SignUp", mock.Anything, "me", "me@example.com").
			Return(nil, service.ErrReservedUsername).Once()

		w := postJSON(r, "/api/v1/auth/signup", dto.SignUpRequest{
			Username: "me",
			Email:    "me@example.com",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp map[string]string
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Contains(t, resp, "username")
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		w := postJSON(r, "/api/v1/auth/signup", dto.SignUpRequest{
			Username: "newuser",
			Email:    "not-an-email",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "SignUp", mock.Anything, "newuser", "not-an-email")
	})

	t.Run("MailDeliveryFailure", func(t *testing.T) {
		mockService.On("SignUp", mock.Anything, "newuser", "new@example.com").
			Return(nil, service.ErrMailDelivery).Once()

		w := postJSON(r, "/api/v1/auth/signup", dto.SignUpRequest{
			Username: "newuser",
			Email:    "new@example.com",
		})

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestAuthHandler_Token(t *testing.T) {
	mockService := new(MockAuthService)
	r := setupAuthRouter(mockService)

	t.Run("Success", func(t *testing.T) {
		mockService.On("IssueToken", mock.Anything, "testuser", "31245").
			Return("signed.jwt.token", nil).Once()

		w := postJSON(r, "/api/v1/auth/token", dto.TokenRequest{
			Username:         "testuser",
			ConfirmationCode: "31245",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.TokenResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Equal(t, "signed.jwt.token", resp.Token)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		mockService.On("IssueToken", mock.Anything, "ghost", "31245").
			Return("", service.ErrUserNotFound).Once()

		w := postJSON(r, "/api/v1/auth/token", dto.TokenRequest{
			Username:         "ghost",
			ConfirmationCode: "31245",
		})

		// unknown username is a 404, not a 400
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("WrongCode", func(t *testing.T) {
		mockService.On("IssueToken", mock.Anything, "testuser", "00000").
			Return("", service.ErrInvalidConfirmationCode).Once()

		w := postJSON(r, "/api/v1/auth/token", dto.TokenRequest{
			Username:         "testuser",
			ConfirmationCode: "00000",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp map[string]string
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Contains(t, resp, "confirmation_code")
	})
}
