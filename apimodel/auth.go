package apimodel

import "github.com/jrsteele09/go-task-client/users"

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /users/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Tokens is the credential pair issued at login.
type Tokens struct {
	// AccessToken is the short-lived bearer credential.
	// Usage: "Authorization: Bearer <accessToken>" on every task call
	// Storage: memory only
	AccessToken string `json:"accessToken"`

	// RefreshToken is exchanged at /users/refresh-token for a new access token.
	// Storage: the persistent token holder, survives restarts
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse is the 200 body of POST /users/login.
type LoginResponse struct {
	User   *users.User `json:"user"`
	Tokens Tokens      `json:"tokens"`
}

// RefreshRequest is the body of POST /users/refresh-token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse is the 200 body of POST /users/refresh-token. RefreshToken
// is only present when the server rotates refresh tokens.
type RefreshResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken *string `json:"refreshToken,omitempty"`
}
