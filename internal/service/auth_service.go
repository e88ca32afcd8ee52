package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Choos37ricK/blog-engine/internal/db"
	"github.com/Choos37ricK/blog-engine/internal/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService checks credentials and binds session tokens to users.
type AuthService struct {
	db       *gorm.DB
	sessions session.Directory
}

// NewAuthService creates an AuthService instance.
func NewAuthService(gdb *gorm.DB, sessions session.Directory) *AuthService {
	return &AuthService{db: gdb, sessions: sessions}
}

// Login verifies the password and returns a freshly bound session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *db.User, error) {
	trimmedEmail := strings.TrimSpace(email)
	if trimmedEmail == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	var user db.User
	if err := s.db.WithContext(ctx).Where("email = ?", trimmedEmail).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := session.NewToken()
	if err := s.sessions.Bind(ctx, token, user.ID); err != nil {
		return "", nil, fmt.Errorf("bind session: %w", err)
	}
	return token, &user, nil
}

// Logout revokes token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, token)
}

// Current returns the user bound to token, or nil for anonymous visitors.
func (s *AuthService) Current(ctx context.Context, token string) (*db.User, error) {
	userID, ok, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var user db.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}
