package apiclient

import "github.com/rs/zerolog/log"

// State is a step in the life of one logical request.
//
//	Sending -> Done
//	Sending -> Failed
//	Sending -> AuthFailed -> Refreshing -> Retrying -> Done | Failed | AuthFailed -> SessionExpired
//	AuthFailed -> SessionExpired   (no refresh token, refresh rejected, or already retried)
type State string

const (
	StateSending        State = "sending"
	StateAuthFailed     State = "auth_failed"
	StateRefreshing     State = "refreshing"
	StateRetrying       State = "retrying"
	StateDone           State = "done"
	StateFailed         State = "failed"
	StateSessionExpired State = "session_expired"
)

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateSessionExpired
}

// Transition is reported to a state observer.
type Transition struct {
	RequestID string
	Method    string
	Path      string
	From      State
	To        State
}

func (c *Client) transition(pr *pendingRequest, next State) {
	t := Transition{
		RequestID: pr.id,
		Method:    pr.method,
		Path:      pr.path,
		From:      pr.state,
		To:        next,
	}
	pr.state = next

	log.Trace().
		Str("request_id", t.RequestID).
		Str("from", string(t.From)).
		Str("to", string(t.To)).
		Msg("Request state")
	if next.Terminal() {
		log.Debug().
			Str("request_id", t.RequestID).
			Str("method", t.Method).
			Str("path", t.Path).
			Str("outcome", string(next)).
			Bool("replayed", pr.retried).
			Msg("Request finished")
	}

	if c.observer != nil {
		c.observer(t)
	}
}
