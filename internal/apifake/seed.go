package apifake

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-task-client/tasks"
	"github.com/jrsteele09/go-task-client/users"
	"golang.org/x/crypto/bcrypt"
)

// apiError carries the status a handler answers with.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return e.message
}

func statusFor(err error) int {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.status
	}
	return http.StatusInternalServerError
}

// SeedUser registers an account, as POST /users/register does.
func (s *Server) SeedUser(name, email, password string) (users.ID, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return "", &apiError{status: http.StatusBadRequest, message: "Name, email and password are required"}
	}

	// MinCost keeps the fake fast; nothing here protects real passwords
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", fmt.Errorf("[apifake.SeedUser] %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return "", &apiError{status: http.StatusConflict, message: "Email already registered"}
	}
	acct := &account{id: s.nextUserID, name: name, email: email, passwordHash: string(hash)}
	s.nextUserID++
	s.accounts[email] = acct
	return users.ID(fmt.Sprint(acct.id)), nil
}

// IssueTokens logs email in without a password, returning the access and
// refresh tokens a successful login would.
func (s *Server) IssueTokens(email string) (accessToken, refreshToken string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return "", "", fmt.Errorf("[apifake.IssueTokens] unknown account %q", email)
	}
	resp, err := s.issueTokens(acct)
	if err != nil {
		return "", "", err
	}
	return resp.Tokens.AccessToken, resp.Tokens.RefreshToken, nil
}

// RefreshTokenValid reports whether token would be accepted by the refresh endpoint.
func (s *Server) RefreshTokenValid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.refreshTokens[token]
	return ok
}

// SeedTask stores a task for email's account and returns it with its id.
func (s *Server) SeedTask(email string, in tasks.TaskInput) (tasks.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return tasks.Task{}, fmt.Errorf("[apifake.SeedTask] unknown account %q", email)
	}
	return s.createTask(acct.id, in), nil
}

// Tasks returns a copy of the tasks stored for email's account.
func (s *Server) Tasks(email string) []tasks.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil
	}
	return append([]tasks.Task(nil), s.tasks[acct.id]...)
}

// createTask appends a task for userID. Callers hold s.mu.
func (s *Server) createTask(userID int64, in tasks.TaskInput) tasks.Task {
	in = in.Normalize()
	t := tasks.Task{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	}
	s.tasks[userID] = append(s.tasks[userID], t)
	return t
}
