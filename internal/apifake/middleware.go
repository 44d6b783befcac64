package apifake

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-task-client/apimodel"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const contextKeyUserID = "user_id"

// logRequests writes one debug line per request. The request id set by the
// client is echoed so both sides of an exchange can be matched up.
func logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		log.Debug().
			Str("request_id", c.Request().Header.Get("X-Request-ID")).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", c.Response().Status).
			Dur("latency", time.Since(start)).
			Msg("Fake API request")
		return err
	}
}

func recoverPanics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("path", c.Path()).Msg(fmt.Sprintf("Recovered from panic: %v", r))
				err = c.JSON(http.StatusInternalServerError, apimodel.ErrorResponse{Error: "internal error"})
			}
		}()
		return next(c)
	}
}

func (s *Server) countCalls(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.calls[callKey(c.Request().Method, c.Path())]++
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) injectFailures(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := callKey(c.Request().Method, c.Path())
		s.mu.Lock()
		failure, ok := s.failNext[key]
		delete(s.failNext, key)
		s.mu.Unlock()

		if ok {
			return c.JSON(failure.status, apimodel.ErrorResponse{Message: failure.message})
		}
		return next(c)
	}
}

// requireAuth validates the Bearer access token and stores the user id on
// the context. Failures answer the configured auth-failure status.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			return s.authFailure(c, "Access token is missing")
		}

		s.mu.Lock()
		userID, err := s.verifyAccessToken(parts[1])
		s.mu.Unlock()
		if err != nil {
			return s.authFailure(c, "Invalid or expired token")
		}

		c.Set(contextKeyUserID, userID)
		return next(c)
	}
}

func (s *Server) authFailure(c echo.Context, message string) error {
	s.mu.Lock()
	status := s.authFailureStatus
	s.mu.Unlock()
	return c.JSON(status, apimodel.ErrorResponse{Message: message})
}

func userIDFrom(c echo.Context) int64 {
	id, _ := c.Get(contextKeyUserID).(int64)
	return id
}
