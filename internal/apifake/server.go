// Package apifake is an in-memory implementation of the task API. It backs the
// package tests and the dev-server command, and exposes knobs to force the
// authorization paths a real server only hits occasionally.
package apifake

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/go-task-client/apimodel"
	"github.com/jrsteele09/go-task-client/tasks"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const (
	defaultAccessTokenTTL = 15 * time.Minute
	defaultSecret         = "apifake-development-secret"
)

// Server is the fake API. Create it with New and mount Handler on an
// httptest.Server, or call Start.
type Server struct {
	echo *echo.Echo

	mu                sync.Mutex
	secret            []byte
	accessTokenTTL    time.Duration
	authFailureStatus int
	rotateRefresh     bool
	failRefresh       bool
	rejectAllAccess   bool
	refreshDelay      time.Duration
	generation        int64
	nextUserID        int64

	accounts      map[string]*account // by lower-cased email
	refreshTokens map[string]int64    // token -> user id
	tasks         map[int64][]tasks.Task
	calls         map[string]int
	failNext      map[string]injectedFailure
}

type account struct {
	id           int64
	name         string
	email        string
	passwordHash string
}

type injectedFailure struct {
	status  int
	message string
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

// WithAccessTokenTTL sets the lifetime of minted access tokens.
func WithAccessTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.accessTokenTTL = ttl
	}
}

// WithAuthFailureStatus sets the status returned for a missing, invalid or
// expired access token. The default is 403, as the original backend answers.
func WithAuthFailureStatus(status int) Option {
	return func(s *Server) {
		s.authFailureStatus = status
	}
}

// WithSecret sets the HS256 signing key.
func WithSecret(secret []byte) Option {
	return func(s *Server) {
		s.secret = secret
	}
}

// WithoutRotation makes the refresh endpoint return only an access token.
func WithoutRotation() Option {
	return func(s *Server) {
		s.rotateRefresh = false
	}
}

func New(options ...Option) *Server {
	s := &Server{
		secret:            []byte(defaultSecret),
		accessTokenTTL:    defaultAccessTokenTTL,
		authFailureStatus: http.StatusForbidden,
		rotateRefresh:     true,
		nextUserID:        1,
		accounts:          make(map[string]*account),
		refreshTokens:     make(map[string]int64),
		tasks:             make(map[int64][]tasks.Task),
		calls:             make(map[string]int),
		failNext:          make(map[string]injectedFailure),
	}
	for _, opt := range options {
		opt(s)
	}
	s.echo = s.routes()
	return s
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(logRequests, recoverPanics, s.countCalls, s.injectFailures)

	e.POST(apimodel.RouteLogin, s.handleLogin)
	e.POST(apimodel.RouteRegister, s.handleRegister)
	e.POST(apimodel.RouteRefreshToken, s.handleRefresh)

	g := e.Group("", s.requireAuth)
	g.GET(apimodel.RouteTasks, s.handleListTasks)
	g.POST(apimodel.RouteTasks, s.handleCreateTask)
	g.PUT(apimodel.RouteTask, s.handleUpdateTask)
	g.DELETE(apimodel.RouteTask, s.handleDeleteTask)
	return e
}

// Handler returns the API as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("Fake task API listening")
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Calls reports how many requests hit method path. path is the route
// pattern, e.g. apimodel.RouteTask for any single task.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[callKey(method, path)]
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

// ExpireAccessTokens invalidates every access token minted so far.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// RejectAllAccessTokens makes every authenticated route fail authorization,
// including requests carrying freshly refreshed tokens.
func (s *Server) RejectAllAccessTokens(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectAllAccess = reject
}

// FailRefresh makes the refresh endpoint reject every token.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// SetRotation turns refresh token rotation on or off.
func (s *Server) SetRotation(rotate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotateRefresh = rotate
}

// SetRefreshDelay holds every refresh response for d.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// FailNext makes the next request to method path answer status with message,
// before authorization is checked.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[callKey(method, path)] = injectedFailure{status: status, message: message}
}

func callKey(method, path string) string {
	return method + " " + path
}
