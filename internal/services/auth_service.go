package services

import (
	"fmt"
	"log"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gudang/internal/accounts"
	"gudang/internal/apperr"
	"gudang/internal/models"
)

// AuthService issues and validates session tokens. Sessions are either
// registered accounts or anonymous (a generated user id carried only by the
// token), mirroring the sign-in-or-anonymous contract of the auth
// collaborator.
type AuthService struct {
	users     accounts.Store
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users accounts.Store, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
}

// SignInAnonymously issues a token for a brand-new anonymous user id.
func (s *AuthService) SignInAnonymously() (token, userID string, err error) {
	userID = uuid.New().String()
	token, err = s.issueToken(userID, "")
	if err != nil {
		return "", "", &apperr.AuthError{Reason: "could not start anonymous session", Err: err}
	}
	return token, userID, nil
}

// Register stores a new account with a hashed password.
func (s *AuthService) Register(user *models.User) error {
	if existing, err := s.users.GetByUsername(user.Username); err == nil && existing != nil {
		return fmt.Errorf("username '%s' already taken", user.Username)
	}
	if existing, err := s.users.GetByEmail(user.Email); err == nil && existing != nil {
		return fmt.Errorf("email '%s' already registered", user.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	if err := s.users.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// Login authenticates a registered account and returns a session token.
func (s *AuthService) Login(username, password string) (string, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		// Do not reveal whether the username exists.
		return "", &apperr.AuthError{Reason: "invalid credentials"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", &apperr.AuthError{Reason: "invalid credentials"}
	}
	token, err := s.issueToken(user.ID, user.Username)
	if err != nil {
		return "", &apperr.AuthError{Reason: "failed to generate token", Err: err}
	}
	return token, nil
}

func (s *AuthService) issueToken(userID, username string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	if username != "" {
		claims["username"] = username
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken parses and validates a session token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
