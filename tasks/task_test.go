package tasks_test

import (
	"encoding/json"
	"strings"
	"testing"

	apperrors "github.com/jrsteele09/go-task-client/internal/errors"
	"github.com/jrsteele09/go-task-client/tasks"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want tasks.Status
	}{
		{"pending", tasks.StatusPending},
		{"TODO", tasks.StatusPending},
		{"in-progress", tasks.StatusInProgress},
		{"in_progress", tasks.StatusInProgress},
		{" done ", tasks.StatusDone},
		{"completed", tasks.StatusDone},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := tasks.ParseStatus(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := tasks.ParseStatus("someday")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestTaskInput_Validate(t *testing.T) {
	t.Run("empty status defaults to pending", func(t *testing.T) {
		in := tasks.TaskInput{Title: "  Buy milk "}.Normalize()
		require.NoError(t, in.Validate())
		require.Equal(t, "Buy milk", in.Title)
		require.Equal(t, tasks.StatusPending, in.Status)
	})

	t.Run("title is required", func(t *testing.T) {
		err := tasks.TaskInput{Title: "   "}.Normalize().Validate()
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		require.Contains(t, err.Error(), "title")
	})

	t.Run("status must be known", func(t *testing.T) {
		err := tasks.TaskInput{Title: "x", Status: "later"}.Validate()
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		require.Contains(t, err.Error(), "status")
	})

	t.Run("title length is bounded", func(t *testing.T) {
		err := tasks.TaskInput{Title: strings.Repeat("a", 201)}.Validate()
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestTask_DecodesNumericAndStringIDs(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"number", `{"id":7,"title":"x","description":"","status":"done"}`, "7"},
		{"string", `{"id":"task-7","title":"x","status":"done"}`, "task-7"},
		{"missing", `{"title":"x","status":"done"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task tasks.Task
			require.NoError(t, json.Unmarshal([]byte(tt.body), &task))
			require.Equal(t, tt.want, task.ID)
			require.Equal(t, "x", task.Title)
			require.Equal(t, tasks.StatusDone, task.Status)
		})
	}

	var list tasks.ListResponse
	require.NoError(t, json.Unmarshal([]byte(`{"data":[{"id":1,"title":"a"},{"id":2,"title":"b"}]}`), &list))
	require.Len(t, list.Data, 2)
	require.Equal(t, "2", list.Data[1].ID)

	var bad tasks.Task
	require.Error(t, json.Unmarshal([]byte(`{"id":true}`), &bad))
}
