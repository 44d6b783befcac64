package apifake

import (
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-task-client/apimodel"
	"github.com/jrsteele09/go-task-client/internal/utils"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) handleRegister(c echo.Context) error {
	var req apimodel.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apimodel.ErrorResponse{Message: "Invalid request body"})
	}
	if _, err := s.SeedUser(req.Name, req.Email, req.Password); err != nil {
		return c.JSON(statusFor(err), apimodel.ErrorResponse{Message: err.Error()})
	}
	return c.JSON(http.StatusCreated, apimodel.ErrorResponse{Message: "User registered successfully"})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req apimodel.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apimodel.ErrorResponse{Message: "Invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(req.Email))]
	if !ok || bcrypt.CompareHashAndPassword([]byte(acct.passwordHash), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, apimodel.ErrorResponse{Message: "Invalid email or password"})
	}

	resp, err := s.issueTokens(acct)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, apimodel.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRefresh(c echo.Context) error {
	var req apimodel.RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, apimodel.ErrorResponse{Message: "Refresh token is required"})
	}

	s.mu.Lock()
	delay := s.refreshDelay
	s.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.refreshTokens[req.RefreshToken]
	if s.failRefresh || !ok {
		return c.JSON(http.StatusForbidden, apimodel.ErrorResponse{Message: "Invalid refresh token"})
	}

	access, err := s.mintAccessToken(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, apimodel.ErrorResponse{Error: err.Error()})
	}
	resp := apimodel.RefreshResponse{AccessToken: access}
	if s.rotateRefresh {
		delete(s.refreshTokens, req.RefreshToken)
		resp.RefreshToken = utils.Ptr(s.mintRefreshToken(userID))
	}
	return c.JSON(http.StatusOK, resp)
}

// loginResponse mirrors apimodel.LoginResponse with the numeric user id the
// backend emits.
type loginResponse struct {
	User struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	Tokens apimodel.Tokens `json:"tokens"`
}

// issueTokens builds a login response for acct. Callers hold s.mu.
func (s *Server) issueTokens(acct *account) (*loginResponse, error) {
	access, err := s.mintAccessToken(acct.id)
	if err != nil {
		return nil, err
	}
	resp := &loginResponse{
		Tokens: apimodel.Tokens{
			AccessToken:  access,
			RefreshToken: s.mintRefreshToken(acct.id),
		},
	}
	resp.User.ID = acct.id
	resp.User.Name = acct.name
	resp.User.Email = acct.email
	return resp, nil
}
