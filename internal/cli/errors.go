package cli

import (
	"fmt"

	"github.com/jrsteele09/go-task-client/auth"
	apperrors "github.com/jrsteele09/go-task-client/internal/errors"
)

const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitSessionExpired = 2
)

// ExitCode maps a command error onto the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case apperrors.Is(err, apperrors.ErrSessionExpired):
		return ExitSessionExpired
	}
	return ExitFailure
}

// Describe turns a command error into the one line shown to the user.
func Describe(err error) string {
	var se *apperrors.StatusError
	switch {
	case err == nil:
		return ""
	case apperrors.Is(err, apperrors.ErrSessionExpired):
		return "session expired, run `tasks login`"
	case apperrors.Is(err, auth.InvalidCredentialsErr):
		return "invalid email or password"
	case apperrors.Is(err, auth.EmailTakenErr):
		return "that email is already registered"
	case apperrors.Is(err, apperrors.ErrNetworkFailure):
		return fmt.Sprintf("cannot reach the task API: %v", err)
	case apperrors.As(err, &se):
		return fmt.Sprintf("request failed (%d): %s", se.StatusCode, se.Message)
	}
	return err.Error()
}

// RenderError formats Describe(err) for a terminal.
func RenderError(err error) string {
	return errorStyle.Render("error: ") + Describe(err)
}

func errTaskNotFound(id string) error {
	return fmt.Errorf("task %s: %w", id, apperrors.ErrNotFound)
}
