package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Rengoky/Base-for-films/internal/config"
	"github.com/Rengoky/Base-for-films/internal/httpapi/auth"
	"github.com/Rengoky/Base-for-films/internal/httpapi/models"
	"github.com/Rengoky/Base-for-films/internal/httpapi/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsernameAndEmail(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, search string, limit, offset int) ([]models.User, int64, error) {
	args := m.Called(ctx, search, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteByUsername(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

// MockMailer mocks the mail.Mailer interface
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret-that-is-long-enough!",
		AccessTokenTTL: 15 * time.Minute,
	}
}

func TestSignUp_CreatesUserAndMailsCode(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	authService := NewAuthService(mockRepo, mockMailer, testConfig())

	var created *models.User
	mockRepo.On("FindByUsernameAndEmail", mock.Anything, "newuser", "new@example.com").
		Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*models.User) }).
		Return(nil)

	var mailedBody string
	mockMailer.On("Send", mock.Anything, "new@example.com", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { mailedBody = args.String(3) }).
		Return(nil)

	user, err := authService.SignUp(context.Background(), "newuser", "new@example.com")

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "newuser", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)

	// the mailed code must verify against the stored hash
	code := strings.TrimPrefix(mailedBody, "Your confirmation code: ")
	assert.Len(t, code, auth.CodeLength)
	assert.NoError(t, auth.VerifyCode(created.ConfirmationCode, code))
	assert.NotEqual(t, code, created.ConfirmationCode)

	mockRepo.AssertExpectations(t)
	mockMailer.AssertExpectations(t)
}

func TestSignUp_ReservedUsername(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	authService := NewAuthService(mockRepo, mockMailer, testConfig())

	user, err := authService.SignUp(context.Background(), "me", "me@example.com")

	assert.ErrorIs(t, err, ErrReservedUsername)
	assert.Nil(t, user)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestSignUp_RepeatRegeneratesCode(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	authService := NewAuthService(mockRepo, mockMailer, testConfig())

	oldHash, _ := auth.HashCode("12345")
	existing := &models.User{
		ID:               "user-id",
		Username:         "repeat",
		Email:            "repeat@example.com",
		Role:             models.RoleUser,
		ConfirmationCode: oldHash,
	}

	mockRepo.On("FindByUsernameAndEmail", mock.Anything, "repeat", "repeat@example.com").
		Return(existing, nil)
	mockRepo.On("Update", mock.Anything, existing).Return(nil)
	mockMailer.On("Send", mock.Anything, "repeat@example.com", mock.Anything, mock.Anything).Return(nil)

	user, err := authService.SignUp(context.Background(), "repeat", "repeat@example.com")

	assert.NoError(t, err)
	assert.NotEqual(t, oldHash, user.ConfirmationCode)
	mockRepo.AssertNotCalled(t, "Create")
	mockRepo.AssertExpectations(t)
}

func TestSignUp_CredentialsTaken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	authService := NewAuthService(mockRepo, mockMailer, testConfig())

	mockRepo.On("FindByUsernameAndEmail", mock.Anything, "taken", "other@example.com").
		Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Return(repository.ErrDuplicate)

	user, err := authService.SignUp(context.Background(), "taken", "other@example.com")

	assert.ErrorIs(t, err, ErrCredentialsTaken)
	assert.Nil(t, user)
	mockMailer.AssertNotCalled(t, "Send")
}

func TestSignUp_MailDeliveryFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	authService := NewAuthService(mockRepo, mockMailer, testConfig())

	mockRepo.On("FindByUsernameAndEmail", mock.Anything, "newuser", "new@example.com").
		Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	mockMailer.On("Send", mock.Anything, "new@example.com", mock.Anything, mock.Anything).
		Return(errors.New("relay refused"))

	user, err := authService.SignUp(context.Background(), "newuser", "new@example.com")

	assert.ErrorIs(t, err, ErrMailDelivery)
	assert.Nil(t, user)
}

func TestIssueToken_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	authService := NewAuthService(mockRepo, mockMailer, testConfig())

	hash, _ := auth.HashCode("31245")
	user := &models.User{
		ID:               "user-id",
		Username:         "testuser",
		Role:             models.RoleModerator,
		ConfirmationCode: hash,
	}
	mockRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)

	token, err := authService.IssueToken(context.Background(), "testuser", "31245")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-id", claims.UserID)
	assert.Equal(t, "testuser", claims.Username)
	assert.Equal(t, models.RoleModerator, claims.Role)
}

func TestIssueToken_WrongCode(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	authService := NewAuthService(mockRepo, mockMailer, testConfig())

	hash, _ := auth.HashCode("31245")
	user := &models.User{ID: "user-id", Username: "testuser", ConfirmationCode: hash}
	mockRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)

	token, err := authService.IssueToken(context.Background(), "testuser", "99999")

	assert.ErrorIs(t, err, ErrInvalidConfirmationCode)
	assert.Empty(t, token)
}

func TestIssueToken_UnknownUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	authService := NewAuthService(mockRepo, mockMailer, testConfig())

	mockRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	token, err := authService.IssueToken(context.Background(), "ghost", "31245")

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, token)
}

func TestValidateToken_Expired(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	cfg := testConfig()
	authService := NewAuthService(mockRepo, mockMailer, cfg)

	claims := Claims{
		UserID:   "user-id",
		Username: "testuser",
		Role:     models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(cfg.JWTSecret))

	validated, err := authService.ValidateToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, validated)
}

func TestValidateToken_Garbage(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	authService := NewAuthService(mockRepo, mockMailer, testConfig())

	validated, err := authService.ValidateToken("not.a.token")

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, validated)
}
