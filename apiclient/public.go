package apiclient

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-task-client/apimodel"
	apperrors "github.com/jrsteele09/go-task-client/internal/errors"
)

// SendPublic issues a request without a bearer token and without the
// refresh-and-replay handling of Send. Login and register go through here:
// a 401 from them means bad credentials, not an expired session, and maps to
// ErrValidationFailure.
func (c *Client) SendPublic(ctx context.Context, method, path string, body any) (*Response, error) {
	pr, err := c.newPendingRequest(method, path, body)
	if err != nil {
		return nil, err
	}

	c.transition(pr, StateSending)
	resp, err := c.do(ctx, pr, "")
	if err != nil {
		c.transition(pr, StateFailed)
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.transition(pr, StateDone)
		return resp, nil
	}

	c.transition(pr, StateFailed)
	class := apperrors.Classify(resp.StatusCode, nil)
	if class == nil {
		class = apperrors.ErrServerFailure
	}
	se := apperrors.NewStatusError(resp.StatusCode, apimodel.ErrorMessage(resp.Body), resp.Body, class)
	return nil, fmt.Errorf("[apiclient.SendPublic] %s %s: %w", pr.method, pr.path, se)
}

// SendPublicJSON is SendPublic followed by decoding into out (when non-nil).
func (c *Client) SendPublicJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.SendPublic(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.DecodeJSON(out)
}
