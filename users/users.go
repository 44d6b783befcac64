package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a server-assigned identifier. The API emits numeric ids ({"id":1}) but the client
// treats them as opaque text, so both JSON numbers and strings are accepted.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// User is the identity the API returns on login.
type User struct {
	ID    ID     `json:"id"`              // Server assigned identifier
	Name  string `json:"name,omitempty"`  // Display name given at registration
	Email string `json:"email,omitempty"` // Login email
}

// DisplayName prefers the name, then the email, then the id.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID.String()
}
