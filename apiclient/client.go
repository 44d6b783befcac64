package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-task-client/apimodel"
	"github.com/jrsteele09/go-task-client/internal/config"
	apperrors "github.com/jrsteele09/go-task-client/internal/errors"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/jrsteele09/go-task-client/token/refresh"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/ksuid"
	"golang.org/x/sync/singleflight"
)

const (
	headerRequestID = "X-Request-ID"
	contentTypeJSON = "application/json"
	maxBodyBytes    = 10 << 20

	refreshFlightKey = "refresh"
)

// Response is a completed 2xx exchange with the body already read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("[Response.DecodeJSON] empty body (status %d)", r.StatusCode)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("[Response.DecodeJSON] %w", err)
	}
	return nil
}

// Client sends requests to the task API with the session's bearer token and
// recovers from an expired access token by refreshing it once per request.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	sessions      *session.Store
	refreshTokens *refresh.Manager
	authFailures  config.StatusSet
	timeout       time.Duration
	refreshGroup  singleflight.Group
	expireMu      sync.Mutex

	onSessionExpired func()
	observer         func(Transition)
	newRequestID     func() string
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every HTTP call, including the refresh call. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithAuthFailureStatuses sets the statuses that mean "access token invalid or expired".
func WithAuthFailureStatuses(statuses config.StatusSet) Option {
	return func(c *Client) {
		if len(statuses) > 0 {
			c.authFailures = statuses
		}
	}
}

// WithSessionExpiredHandler registers fn to run whenever a request ends in
// SessionExpired, after the session and refresh token have been cleared.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

// WithStateObserver receives every state transition of every request.
func WithStateObserver(fn func(Transition)) Option {
	return func(c *Client) {
		c.observer = fn
	}
}

// WithRequestIDFunc replaces the ksuid request id generator.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		c.newRequestID = fn
	}
}

// New initializes a Client for the API rooted at baseURL.
func New(baseURL string, sessions *session.Store, refreshTokens *refresh.Manager, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, apperrors.New("[apiclient.New] baseURL is required")
	}
	if sessions == nil {
		return nil, apperrors.New("[apiclient.New] session store is required")
	}
	if refreshTokens == nil {
		return nil, apperrors.New("[apiclient.New] refresh token manager is required")
	}

	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    http.DefaultClient,
		sessions:      sessions,
		refreshTokens: refreshTokens,
		authFailures:  config.DefaultAuthFailureStatuses(),
		newRequestID:  func() string { return ksuid.New().String() },
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Send issues method path with body JSON encoded (nil for no body).
//
// On an authorization failure it refreshes the access token and replays the
// request at most once. It returns an error wrapping ErrSessionExpired when
// recovery is impossible, ErrNetworkFailure on transport errors, and a
// *errors.StatusError for every other non-2xx response.
func (c *Client) Send(ctx context.Context, method, path string, body any) (*Response, error) {
	pr, err := c.newPendingRequest(method, path, body)
	if err != nil {
		return nil, err
	}

	accessToken := c.sessions.AccessToken()
	c.transition(pr, StateSending)

	for {
		resp, err := c.do(ctx, pr, accessToken)
		if err != nil {
			c.transition(pr, StateFailed)
			return nil, err
		}

		if !c.authFailures.Contains(resp.StatusCode) {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				c.transition(pr, StateDone)
				return resp, nil
			}
			c.transition(pr, StateFailed)
			return nil, c.statusError(pr, resp)
		}

		c.transition(pr, StateAuthFailed)
		if pr.retried {
			return nil, c.expire(pr, accessToken, c.statusError(pr, resp))
		}

		accessToken, err = c.recoverAccessToken(ctx, pr, accessToken)
		if err != nil {
			return nil, err
		}

		// Marked before the replay so a second failure cannot refresh again
		pr.retried = true
		c.transition(pr, StateRetrying)
	}
}

// SendJSON is Send followed by decoding the response body into out (when out is non-nil).
func (c *Client) SendJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.DecodeJSON(out)
}

// recoverAccessToken returns the token to replay pr with, refreshing it when
// nobody else already has.
func (c *Client) recoverAccessToken(ctx context.Context, pr *pendingRequest, usedToken string) (string, error) {
	if current := c.sessions.AccessToken(); current != "" && current != usedToken {
		log.Debug().Str("request_id", pr.id).Msg("Access token already refreshed, replaying")
		return current, nil
	}

	refreshToken, err := c.refreshTokens.Read()
	if err != nil {
		return "", c.expire(pr, usedToken, err)
	}
	if refreshToken == nil {
		return "", c.expire(pr, usedToken, apperrors.New("no refresh token stored"))
	}

	c.transition(pr, StateRefreshing)

	// Concurrent requests share one in-flight refresh call and one teardown
	ch := c.refreshGroup.DoChan(refreshFlightKey, func() (any, error) {
		accessToken, err := c.refresh(ctx, *refreshToken)
		if err != nil {
			c.endSession(pr.id, usedToken, err)
		}
		return accessToken, err
	})

	select {
	case <-ctx.Done():
		c.transition(pr, StateFailed)
		return "", fmt.Errorf("%w: %w", apperrors.ErrNetworkFailure, ctx.Err())
	case result := <-ch:
		if result.Err != nil {
			return "", c.expired(pr, result.Err)
		}
		if result.Shared {
			log.Debug().Str("request_id", pr.id).Msg("Joined in-flight token refresh")
		}
		return result.Val.(string), nil
	}
}

// refresh exchanges refreshToken for a new access token and stores the
// outcome. It sends no bearer token and ignores cancellation of the caller
// that started it: other requests may be waiting on the same flight.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	ctx = context.WithoutCancel(ctx)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(apimodel.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", fmt.Errorf("[apiclient.refresh] encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apimodel.RouteRefreshToken, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("[apiclient.refresh] build request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	requestID := c.newRequestID()
	req.Header.Set(headerRequestID, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Err(err).Str("request_id", requestID).Msg("Token refresh failed")
		return "", fmt.Errorf("%w: refresh: %w", apperrors.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: refresh: read body: %w", apperrors.ErrNetworkFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Str("request_id", requestID).Int("status", resp.StatusCode).Msg("Token refresh rejected")
		return "", apperrors.NewStatusError(resp.StatusCode, apimodel.ErrorMessage(respBody), respBody, c.classify(resp.StatusCode))
	}

	var rr apimodel.RefreshResponse
	if err := json.Unmarshal(respBody, &rr); err != nil {
		return "", fmt.Errorf("[apiclient.refresh] decode: %w", err)
	}
	if rr.AccessToken == "" {
		return "", apperrors.New("[apiclient.refresh] response has no access token")
	}

	c.sessions.SetAccessToken(rr.AccessToken)
	if err := c.refreshTokens.Rotate(rr.RefreshToken); err != nil {
		// Keep the new access token; the stale refresh token fails on next use.
		log.Err(err).Str("request_id", requestID).Msg("Failed to store rotated refresh token")
	}
	log.Debug().Str("request_id", requestID).Bool("rotated", rr.RefreshToken != nil).Msg("Access token refreshed")
	return rr.AccessToken, nil
}

// expire ends the session pr was sent with and reports SessionExpired.
func (c *Client) expire(pr *pendingRequest, usedToken string, cause error) error {
	c.endSession(pr.id, usedToken, cause)
	return c.expired(pr, cause)
}

// expired reports SessionExpired for pr without touching the session.
func (c *Client) expired(pr *pendingRequest, cause error) error {
	c.transition(pr, StateSessionExpired)
	return fmt.Errorf("[apiclient.Send] %s %s: %w: %w", pr.method, pr.path, apperrors.ErrSessionExpired, cause)
}

// endSession drops the session and the refresh token, then runs the
// session-expired handler. It does nothing when the session no longer holds
// usedToken: a concurrent request already ended it, or a new login replaced it.
func (c *Client) endSession(requestID, usedToken string, cause error) {
	c.expireMu.Lock()
	ending := c.sessions.Snapshot()
	if usedToken != "" && ending.AccessToken != usedToken {
		c.expireMu.Unlock()
		log.Debug().Str("request_id", requestID).Msg("Session already ended")
		return
	}
	c.sessions.Logout()
	if err := c.refreshTokens.Clear(); err != nil {
		log.Err(err).Str("request_id", requestID).Msg("Failed to clear refresh token")
	}
	c.expireMu.Unlock()

	event := log.Warn().Str("request_id", requestID).AnErr("cause", cause)
	if ending.User != nil {
		event = event.Str("user_id", ending.User.ID.String())
	}
	event.Msg("Session expired")
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

// do performs one HTTP exchange for pr.
func (c *Client) do(ctx context.Context, pr *pendingRequest, accessToken string) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := pr.build(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Err(err).Str("request_id", pr.id).Str("method", pr.method).Str("path", pr.path).Msg("Request failed")
		return nil, fmt.Errorf("%w: %s %s: %w", apperrors.ErrNetworkFailure, pr.method, pr.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: read body: %w", apperrors.ErrNetworkFailure, pr.method, pr.path, err)
	}

	log.Debug().
		Str("request_id", pr.id).
		Str("method", pr.method).
		Str("path", pr.path).
		Int("status", resp.StatusCode).
		Bool("retried", pr.retried).
		Msg("Response")

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (c *Client) statusError(pr *pendingRequest, resp *Response) error {
	se := apperrors.NewStatusError(resp.StatusCode, apimodel.ErrorMessage(resp.Body), resp.Body, c.classify(resp.StatusCode))
	return fmt.Errorf("[apiclient.Send] %s %s: %w", pr.method, pr.path, se)
}

func (c *Client) classify(statusCode int) error {
	if class := apperrors.Classify(statusCode, c.authFailures.Contains); class != nil {
		return class
	}
	return apperrors.ErrServerFailure
}
