package tasks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/go-task-client/internal/errors"
	"github.com/jrsteele09/go-task-client/users"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists every valid Status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusDone}
}

// ParseStatus accepts the wire values plus a few spellings people type.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "todo":
		return StatusPending, nil
	case "in-progress", "in_progress", "inprogress", "doing":
		return StatusInProgress, nil
	case "done", "complete", "completed":
		return StatusDone, nil
	}
	return "", fmt.Errorf("%w: unknown status %q (want pending, in-progress or done)", apperrors.ErrInvalidInput, s)
}

// Task is a server-owned task record. ID is assigned by the server.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// UnmarshalJSON accepts the id as a JSON number ({"id":7}) or a string.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var raw struct {
		plain
		ID users.ID `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Task(raw.plain)
	t.ID = raw.ID.String()
	return nil
}

// TaskInput is the body of POST /tasks and PUT /tasks/{id}.
type TaskInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Status      Status `json:"status" validate:"omitempty,oneof=pending in-progress done"`
}

// ListResponse is the body of GET /tasks.
type ListResponse struct {
	Data []Task `json:"data"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims the input and defaults an empty status to pending.
func (in TaskInput) Normalize() TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Status == "" {
		in.Status = StatusPending
	}
	return in
}

// Validate checks the input before it is sent. Errors wrap ErrInvalidInput.
func (in TaskInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if apperrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %q", apperrors.ErrInvalidInput, strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	return nil
}

// Input returns the editable fields of t.
func (t Task) Input() TaskInput {
	return TaskInput{Title: t.Title, Description: t.Description, Status: t.Status}
}
