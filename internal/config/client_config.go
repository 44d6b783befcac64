package config

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	requestTimeoutVar      = "TASKS_REQUEST_TIMEOUT"
	authFailureStatusesVar = "TASKS_AUTH_FAILURE_STATUSES"

	defaultRequestTimeout = 15 * time.Second
)

// StatusSet is a set of HTTP status codes.
type StatusSet map[int]struct{}

func NewStatusSet(codes ...int) StatusSet {
	s := make(StatusSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func (s StatusSet) Contains(code int) bool {
	_, ok := s[code]
	return ok
}

func (s StatusSet) String() string {
	codes := make([]int, 0, len(s))
	for c := range s {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ", ")
}

// DefaultAuthFailureStatuses covers both conventions seen for "token invalid
// or expired": 401 and the 403 the task API actually returns.
func DefaultAuthFailureStatuses() StatusSet {
	return NewStatusSet(http.StatusUnauthorized, http.StatusForbidden)
}

type Client struct {
	requestTimeout      time.Duration
	authFailureStatuses StatusSet
}

var _ ClientConfig = Client{}

func newClient() Client {
	return Client{
		requestTimeout:      parseTimeout(GetEnv(requestTimeoutVar, "")),
		authFailureStatuses: parseStatuses(GetEnv(authFailureStatusesVar, "")),
	}
}

func (c Client) GetRequestTimeout() time.Duration {
	return c.requestTimeout
}

func (c Client) GetAuthFailureStatuses() StatusSet {
	return c.authFailureStatuses
}

func parseTimeout(raw string) time.Duration {
	if raw == "" {
		return defaultRequestTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn().Str("value", raw).Msg("Invalid " + requestTimeoutVar + ", using default")
		return defaultRequestTimeout
	}
	return d
}

func parseStatuses(raw string) StatusSet {
	if strings.TrimSpace(raw) == "" {
		return DefaultAuthFailureStatuses()
	}
	set := StatusSet{}
	for _, part := range strings.Split(raw, ",") {
		code, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || code < 400 || code > 499 {
			log.Warn().Str("value", part).Msg("Ignoring invalid auth failure status")
			continue
		}
		set[code] = struct{}{}
	}
	if len(set) == 0 {
		return DefaultAuthFailureStatuses()
	}
	return set
}
