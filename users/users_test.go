package users_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-task-client/users"
	"github.com/stretchr/testify/require"
)

func TestUser_UnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		json string
		want users.ID
	}{
		{"numeric id", `{"id":1}`, "1"},
		{"string id", `{"id":"u-42"}`, "u-42"},
		{"large numeric id", `{"id":12345678901234567890}`, "12345678901234567890"},
		{"null id", `{"id":null}`, ""},
		{"missing id", `{"email":"a@b.com"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u users.User
			require.NoError(t, json.Unmarshal([]byte(tt.json), &u))
			require.Equal(t, tt.want, u.ID)
		})
	}

	t.Run("rejects objects", func(t *testing.T) {
		var u users.User
		require.Error(t, json.Unmarshal([]byte(`{"id":{"x":1}}`), &u))
	})
}

func TestUser_DisplayName(t *testing.T) {
	var nilUser *users.User
	require.Equal(t, "", nilUser.DisplayName())
	require.Equal(t, "Ann", (&users.User{ID: "1", Name: "Ann", Email: "a@b.com"}).DisplayName())
	require.Equal(t, "a@b.com", (&users.User{ID: "1", Email: "a@b.com"}).DisplayName())
	require.Equal(t, "1", (&users.User{ID: "1"}).DisplayName())
}
