package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"quizpanel/models"
	apperrors "quizpanel/pkg/errors"
	"quizpanel/pkg/logger"
	"quizpanel/pkg/security"

	"gorm.io/gorm"
)

type AuthService struct {
	db       *gorm.DB
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(db *gorm.DB, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{db: db, secret: secret, tokenTTL: tokenTTL}
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// Login accepts a username or an email and issues a revocable token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" || req.Password == "" {
		return nil, apperrors.InvalidArgument("Username or email and password are required")
	}

	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		return nil, storageError(err, "find user")
	}
	if !security.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	resp, err := s.issue(ctx, &user)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := db.Model(&user).Update("last_login", now).Error; err != nil {
		return nil, storageError(err, "record login")
	}
	resp.User.LastLogin = &now

	logger.Info("User logged in", "user_id", user.ID, "username", user.Username)
	return resp, nil
}

// ValidateToken checks the signature and that the token has not been revoked.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*security.Claims, error) {
	claims, err := security.ValidateJWT(token, s.secret)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}

	var session models.AuthSession
	err = s.db.WithContext(ctx).
		Where("token_id = ? AND user_id = ? AND expires_at > ?", claims.ID, claims.UserID, time.Now().UTC()).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized("Session expired or revoked")
		}
		return nil, storageError(err, "check auth session")
	}
	return claims, nil
}

// Logout revokes the token identified by tokenID.
func (s *AuthService) Logout(ctx context.Context, tokenID string) error {
	if err := s.db.WithContext(ctx).Where("token_id = ?", tokenID).Delete(&models.AuthSession{}).Error; err != nil {
		return storageError(err, "revoke auth session")
	}
	return nil
}

// Refresh revokes the current token and issues a new one for the same user.
func (s *AuthService) Refresh(ctx context.Context, claims *security.Claims) (*LoginResponse, error) {
	user, err := s.CurrentUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.Logout(ctx, claims.ID); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, lookupError(err, "User not found")
	}
	return &user, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*LoginResponse, error) {
	token, claims, err := security.GenerateJWT(user.ID, user.Username, user.Role, s.secret, s.tokenTTL)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to issue token")
	}

	session := models.AuthSession{
		UserID:    user.ID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, storageError(err, "store auth session")
	}

	return &LoginResponse{Token: token, ExpiresAt: session.ExpiresAt, User: *user}, nil
}
