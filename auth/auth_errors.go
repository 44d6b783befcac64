package auth

import "errors"

var (
	InvalidCredentialsErr = errors.New("invalid email or password")
	EmailTakenErr         = errors.New("email already registered")
	MalformedResponseErr  = errors.New("malformed auth response")
)
