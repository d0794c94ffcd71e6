package handlers

import (
	"net/http"
	"strconv"

	apperrors "quizpanel/pkg/errors"
	"quizpanel/pkg/logger"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

// respondError maps application error codes to HTTP statuses.
// Internal errors are logged and reported with a generic message.
func respondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err, "Internal server error")
	}

	status := statusFor(appErr.Code)
	message := appErr.Message
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		message = "Internal server error"
	}
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, envelope{Success: false, Message: message})
}

func statusFor(code string) int {
	switch code {
	case apperrors.ErrCodeInvalidArgument, apperrors.ErrCodeConflict:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
