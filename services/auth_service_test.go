package services

import (
	"context"
	"testing"
	"time"

	"quizpanel/models"
	apperrors "quizpanel/pkg/errors"
)

func TestLoginValidateLogout(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user, err := NewUserService(db).Create(ctx, &CreateUserRequest{
		Username: "editor", Email: "Editor@Example.com", Password: "secret99", Role: models.RoleEditor,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Email != "editor@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}

	auth := NewAuthService(db, "test-secret", time.Hour)

	_, err = auth.Login(ctx, &LoginRequest{Username: "editor", Password: "wrong"})
	expectCode(t, err, apperrors.ErrCodeUnauthorized)
	_, err = auth.Login(ctx, &LoginRequest{Username: "ghost", Password: "secret99"})
	expectCode(t, err, apperrors.ErrCodeUnauthorized)
	_, err = auth.Login(ctx, &LoginRequest{Password: "secret99"})
	expectCode(t, err, apperrors.ErrCodeInvalidArgument)

	resp, err := auth.Login(ctx, &LoginRequest{Email: "editor@example.com", Password: "secret99"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" || resp.User.Username != "editor" || resp.User.LastLogin == nil {
		t.Fatalf("unexpected login response: %+v", resp)
	}

	claims, err := auth.ValidateToken(ctx, resp.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != models.RoleEditor || claims.ID == "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	refreshed, err := auth.Refresh(ctx, claims)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	_, err = auth.ValidateToken(ctx, resp.Token)
	expectCode(t, err, apperrors.ErrCodeUnauthorized)

	newClaims, err := auth.ValidateToken(ctx, refreshed.Token)
	if err != nil {
		t.Fatalf("validate refreshed: %v", err)
	}
	if err := auth.Logout(ctx, newClaims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, err = auth.ValidateToken(ctx, refreshed.Token)
	expectCode(t, err, apperrors.ErrCodeUnauthorized)

	// Tokens signed with another secret are rejected
	other := NewAuthService(db, "other-secret", time.Hour)
	foreign, err := other.Login(ctx, &LoginRequest{Username: "editor", Password: "secret99"})
	if err != nil {
		t.Fatalf("login with other secret: %v", err)
	}
	_, err = auth.ValidateToken(ctx, foreign.Token)
	expectCode(t, err, apperrors.ErrCodeUnauthorized)
}

func TestUserServiceRules(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserService(db)

	admin, err := users.Create(ctx, &CreateUserRequest{Username: "root", Email: "root@example.com", Password: "secret99"})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Fatalf("expected default admin role, got %q", admin.Role)
	}

	_, err = users.Create(ctx, &CreateUserRequest{Username: "root", Email: "other@example.com", Password: "secret99"})
	expectCode(t, err, apperrors.ErrCodeConflict)

	other, err := users.Create(ctx, &CreateUserRequest{Username: "second", Email: "second@example.com", Password: "secret99"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	quiz, err := NewQuizService(db).CreateQuiz(ctx, &other.ID, &CreateQuizRequest{Title: "Owned"})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if quiz.CreatedByName == nil || *quiz.CreatedByName != "second" {
		t.Fatalf("expected creator name, got %v", quiz.CreatedByName)
	}

	expectCode(t, users.Delete(ctx, admin.ID, admin.ID), apperrors.ErrCodeInvalidArgument)
	if err := users.Delete(ctx, admin.ID, other.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	expectCode(t, users.Delete(ctx, admin.ID, other.ID), apperrors.ErrCodeNotFound)

	detail, err := NewQuizService(db).GetQuizByID(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if detail.CreatedBy != nil {
		t.Fatalf("expected creator to be cleared, got %v", *detail.CreatedBy)
	}

	stats, err := users.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Users != 1 || stats.Quizzes != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
