package services

import (
	"errors"
	"strings"

	apperrors "quizpanel/pkg/errors"
	"quizpanel/pkg/logger"

	"gorm.io/gorm"
)

// lookupError maps a failed single-row lookup to NotFound or InternalError.
func lookupError(err error, notFoundMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(notFoundMsg)
	}
	return storageError(err, notFoundMsg)
}

// storageError passes application errors through and wraps everything else as internal.
func storageError(err error, context string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	logger.Error("Storage operation failed", "context", context, "error", err)
	return apperrors.Internal(err, "database error")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func nonEmptyPtr(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
