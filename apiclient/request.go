package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// pendingRequest holds everything needed to replay a call after a token
// refresh: the body is encoded once and re-read for each attempt.
type pendingRequest struct {
	id      string
	method  string
	path    string
	url     string
	header  http.Header
	body    []byte
	retried bool
	state   State
}

func (c *Client) newPendingRequest(method, path string, body any) (*pendingRequest, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return nil, fmt.Errorf("[apiclient.Send] method is required")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	pr := &pendingRequest{
		id:     c.newRequestID(),
		method: method,
		path:   path,
		url:    c.baseURL + path,
		header: http.Header{},
	}
	pr.header.Set("Accept", contentTypeJSON)
	pr.header.Set(headerRequestID, pr.id)

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("[apiclient.Send] encode body: %w", err)
		}
		pr.body = encoded
		pr.header.Set("Content-Type", contentTypeJSON)
	}
	return pr, nil
}

// build creates a fresh *http.Request for one attempt. accessToken may be
// empty, in which case no Authorization header is sent.
func (pr *pendingRequest) build(ctx context.Context, accessToken string) (*http.Request, error) {
	var body io.Reader
	if pr.body != nil {
		body = bytes.NewReader(pr.body)
	}
	req, err := http.NewRequestWithContext(ctx, pr.method, pr.url, body)
	if err != nil {
		return nil, fmt.Errorf("[apiclient.Send] build request: %w", err)
	}
	req.Header = pr.header.Clone()
	if accessToken != "" {
		(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(req)
	}
	return req, nil
}
