package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	cause := stderrors.New("disk full")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", cause, ErrCodeInternalError},
		{"not found", NotFound("quiz not found"), ErrCodeNotFound},
		{"conflict", Conflict("friend already exists"), ErrCodeConflict},
		{"wrapped internal", Internal(cause, "failed to save"), ErrCodeInternalError},
		{"fmt wrapped app error", fmt.Errorf("outer: %w", InvalidArgument("bad")), ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Fatalf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Internal(cause, "failed to load session")

	if !stderrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
	if err.Error() != "INTERNAL_ERROR: failed to load session (connection reset)" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !IsCode(err, ErrCodeInternalError) {
		t.Fatalf("expected internal code")
	}
}
