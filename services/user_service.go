package services

import (
	"context"
	"strings"

	"quizpanel/database"
	"quizpanel/models"
	apperrors "quizpanel/pkg/errors"
	"quizpanel/pkg/security"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required,notblank,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=admin editor"`
}

// DashboardStats are the table counts shown on the admin dashboard.
type DashboardStats struct {
	Users     int64 `json:"users"`
	Languages int64 `json:"languages"`
	Pages     int64 `json:"pages"`
	Content   int64 `json:"content"`
	Quizzes   int64 `json:"quizzes"`
	Questions int64 `json:"questions"`
	Sessions  int64 `json:"sessions"`
	Friends   int64 `json:"friends"`
	Answers   int64 `json:"answers"`
}

func (s *UserService) Stats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{}

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.User{}, &stats.Users},
		{&models.Language{}, &stats.Languages},
		{&models.Page{}, &stats.Pages},
		{&models.ContentItem{}, &stats.Content},
		{&models.Quiz{}, &stats.Quizzes},
		{&models.Question{}, &stats.Questions},
		{&models.QuizSession{}, &stats.Sessions},
		{&models.Friend{}, &stats.Friends},
		{&models.Answer{}, &stats.Answers},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, storageError(err, "count rows")
		}
	}
	return stats, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, storageError(err, "list users")
	}
	return users, nil
}

func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return nil, apperrors.InvalidArgument("Username, email and password are required")
	}
	role := req.Role
	if role == "" {
		role = models.RoleAdmin
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err, "Failed to hash password")
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apperrors.Conflict("Username or email already exists")
		}
		return nil, storageError(err, "create user")
	}
	return &user, nil
}

// Delete removes a user other than the caller. Quizzes they created keep a null creator.
func (s *UserService) Delete(ctx context.Context, callerID, id uint) error {
	if callerID == id {
		return apperrors.InvalidArgument("You cannot delete your own account")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return lookupError(err, "User not found")
		}
		if err := tx.Model(&models.Quiz{}).Where("created_by = ?", id).Update("created_by", nil).Error; err != nil {
			return storageError(err, "detach quizzes")
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.AuthSession{}).Error; err != nil {
			return storageError(err, "revoke user sessions")
		}
		if err := tx.Delete(&user).Error; err != nil {
			return storageError(err, "delete user")
		}
		return nil
	})
}
