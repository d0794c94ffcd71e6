package handlers

import (
	"net/http"

	"quizpanel/pkg/security"
	"quizpanel/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, resp, "Login successful")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims := currentClaims(c)
	if err := h.authService.Logout(c.Request.Context(), claims.ID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, nil, "Logged out successfully")
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context(), currentClaims(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, user, "")
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	resp, err := h.authService.Refresh(c.Request.Context(), currentClaims(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, resp, "Token refreshed")
}

// Dashboard

func (h *AuthHandler) Stats(c *gin.Context) {
	stats, err := h.userService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, stats, "")
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, users, "")
}

func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, user, "User created successfully")
}

func (h *AuthHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), currentClaims(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, nil, "User deleted successfully")
}

// currentClaims is only valid behind the auth middleware.
func currentClaims(c *gin.Context) *security.Claims {
	if v, ok := c.Get("claims"); ok {
		if claims, ok := v.(*security.Claims); ok {
			return claims
		}
	}
	return &security.Claims{}
}
