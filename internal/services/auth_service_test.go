package services_test

import (
	"fmt"
	"testing"

	"gudang/internal/models"
	"gudang/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserStore is a mock implementation of accounts.Store
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserStore) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

const testJWTSecret = "test_jwt_secret"

func TestAuthService_Register(t *testing.T) {
	mockStore := new(MockUserStore)
	authService := services.NewAuthService(mockStore, testJWTSecret)

	// Test successful registration
	user := &models.User{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
	}

	mockStore.On("GetByUsername", user.Username).Return(nil, fmt.Errorf("user testuser not found")).Once()
	mockStore.On("GetByEmail", user.Email).Return(nil, fmt.Errorf("user with email test@example.com not found")).Once()
	mockStore.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := authService.Register(user)
	assert.NoError(t, err)
	// The stored password is hashed, never plaintext.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockStore.AssertExpectations(t)

	// Test username already taken
	mockStore.On("GetByUsername", user.Username).Return(&models.User{ID: "1"}, nil).Once()
	err = authService.Register(user)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "username 'testuser' already taken")
	mockStore.AssertExpectations(t)

	// Test email already registered
	mockStore.On("GetByUsername", user.Username).Return(nil, fmt.Errorf("not found")).Once()
	mockStore.On("GetByEmail", user.Email).Return(&models.User{ID: "1"}, nil).Once()
	err = authService.Register(user)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email 'test@example.com' already registered")
	mockStore.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockStore := new(MockUserStore)
	authService := services.NewAuthService(mockStore, testJWTSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	// Test successful login
	mockStore.On("GetByUsername", user.Username).Return(user, nil).Once()
	token, err := authService.Login("testuser", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// The issued token resolves back to the user.
	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "testuser", claims["username"])

	// Test wrong password
	mockStore.On("GetByUsername", user.Username).Return(user, nil).Once()
	_, err = authService.Login("testuser", "wrongpassword")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")

	// Test unknown user; the message must not reveal which part failed.
	mockStore.On("GetByUsername", "ghost").Return(nil, fmt.Errorf("user ghost not found")).Once()
	_, err = authService.Login("ghost", "password123")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")

	mockStore.AssertExpectations(t)
}

func TestAuthService_SignInAnonymously(t *testing.T) {
	authService := services.NewAuthService(new(MockUserStore), testJWTSecret)

	token, userID, err := authService.SignInAnonymously()
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, userID)

	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims["user_id"])
	// Anonymous sessions carry no username.
	_, hasUsername := claims["username"]
	assert.False(t, hasUsername)

	// Two anonymous sessions never share an identity.
	_, secondID, err := authService.SignInAnonymously()
	assert.NoError(t, err)
	assert.NotEqual(t, userID, secondID)
}

func TestAuthService_ValidateToken_Invalid(t *testing.T) {
	authService := services.NewAuthService(new(MockUserStore), testJWTSecret)
	other := services.NewAuthService(new(MockUserStore), "a_different_secret")

	// Garbage token
	_, err := authService.ValidateToken("not.a.token")
	assert.Error(t, err)

	// Token signed with another secret
	token, _, err := other.SignInAnonymously()
	assert.NoError(t, err)
	_, err = authService.ValidateToken(token)
	assert.Error(t, err)
}
