package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-task-client/apimodel"
	apperrors "github.com/jrsteele09/go-task-client/internal/errors"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/jrsteele09/go-task-client/token/refresh"
	"github.com/jrsteele09/go-task-client/users"
	"github.com/rs/zerolog/log"
)

// PublicSender sends requests that carry no bearer token. *apiclient.Client satisfies it.
type PublicSender interface {
	SendPublicJSON(ctx context.Context, method, path string, body, out any) error
}

// Service logs users in and out. It is the only writer of the session and
// the refresh token outside of a token refresh.
type Service struct {
	api           PublicSender
	sessions      *session.Store
	refreshTokens *refresh.Manager
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewService initializes a Service with its required dependencies.
func NewService(api PublicSender, sessions *session.Store, refreshTokens *refresh.Manager) (*Service, error) {
	if api == nil {
		return nil, apperrors.New("[auth.NewService] api sender is required")
	}
	if sessions == nil {
		return nil, apperrors.New("[auth.NewService] session store is required")
	}
	if refreshTokens == nil {
		return nil, apperrors.New("[auth.NewService] refresh token manager is required")
	}
	return &Service{api: api, sessions: sessions, refreshTokens: refreshTokens}, nil
}

// Login exchanges credentials for a session. On success the user and access
// token are in the session store and the refresh token is persisted.
func (s *Service) Login(ctx context.Context, email, password string) (*users.User, error) {
	email = strings.TrimSpace(email)
	if err := checkInput(loginInput{Email: email, Password: password}); err != nil {
		return nil, fmt.Errorf("[auth.Login] %w", err)
	}

	var resp apimodel.LoginResponse
	err := s.api.SendPublicJSON(ctx, http.MethodPost, apimodel.RouteLogin, apimodel.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		if statusIs(err, http.StatusUnauthorized) {
			return nil, fmt.Errorf("[auth.Login] %w: %w", InvalidCredentialsErr, err)
		}
		log.Err(err).Msg("Login failed")
		return nil, fmt.Errorf("[auth.Login] %w", err)
	}
	if resp.User == nil || resp.Tokens.AccessToken == "" {
		return nil, fmt.Errorf("[auth.Login] %w: missing user or access token", MalformedResponseErr)
	}

	if resp.Tokens.RefreshToken == "" {
		// The session still works until the access token expires
		log.Warn().Str("user_id", resp.User.ID.String()).Msg("Login response has no refresh token")
		if err := s.refreshTokens.Clear(); err != nil {
			return nil, fmt.Errorf("[auth.Login] %w", err)
		}
	} else if err := s.refreshTokens.Save(resp.Tokens.RefreshToken); err != nil {
		return nil, fmt.Errorf("[auth.Login] %w", err)
	}

	s.sessions.SetCredentials(resp.User, resp.Tokens.AccessToken)
	log.Info().Str("user_id", resp.User.ID.String()).Msg("Logged in")
	return s.sessions.User(), nil
}

// Register creates an account. It does not log in.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	in := registerInput{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email), Password: password}
	if err := checkInput(in); err != nil {
		return fmt.Errorf("[auth.Register] %w", err)
	}

	req := apimodel.RegisterRequest{Name: in.Name, Email: in.Email, Password: in.Password}
	if err := s.api.SendPublicJSON(ctx, http.MethodPost, apimodel.RouteRegister, req, nil); err != nil {
		if statusIs(err, http.StatusConflict) {
			return fmt.Errorf("[auth.Register] %w: %w", EmailTakenErr, err)
		}
		log.Err(err).Msg("Registration failed")
		return fmt.Errorf("[auth.Register] %w", err)
	}
	log.Info().Str("email", in.Email).Msg("Registered")
	return nil
}

// Logout clears the session and forgets the refresh token. The session is
// cleared even when the refresh token cannot be removed.
func (s *Service) Logout() error {
	s.sessions.Logout()
	if err := s.refreshTokens.Clear(); err != nil {
		return fmt.Errorf("[auth.Logout] %w", err)
	}
	return nil
}

// HasStoredSession reports whether a refresh token survives from an earlier
// login, so requests can recover a session without logging in again.
func (s *Service) HasStoredSession() (bool, error) {
	token, err := s.refreshTokens.Read()
	if err != nil {
		return false, fmt.Errorf("[auth.HasStoredSession] %w", err)
	}
	return token != nil, nil
}

func checkInput(in any) error {
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

func statusIs(err error, code int) bool {
	var se *apperrors.StatusError
	return apperrors.As(err, &se) && se.StatusCode == code
}
