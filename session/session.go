package session

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-task-client/token"
	"github.com/jrsteele09/go-task-client/users"
)

// Session is the client's current identity and access token. It is either
// fully authenticated (token set) or anonymous (both empty).
type Session struct {
	User        *users.User // Identity returned at login; nil when anonymous or unknown after a reload
	AccessToken string      // Short-lived bearer credential; memory only
}

func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Store owns the Session. It starts anonymous and is never persisted.
type Store struct {
	mu      sync.RWMutex
	current Session

	hooksMu     sync.Mutex
	logoutHooks []func()
}

func NewStore() *Store {
	return &Store{}
}

// SetCredentials replaces the whole session.
func (s *Store) SetCredentials(user *users.User, accessToken string) {
	s.mu.Lock()
	s.current = Session{User: cloneUser(user), AccessToken: accessToken}
	s.mu.Unlock()
}

// SetAccessToken swaps in a refreshed access token, keeping the current user.
func (s *Store) SetAccessToken(accessToken string) {
	s.mu.Lock()
	s.current.AccessToken = accessToken
	s.mu.Unlock()
}

// Logout resets the session to anonymous and then runs the logout hooks.
func (s *Store) Logout() {
	s.mu.Lock()
	s.current = Session{}
	s.mu.Unlock()

	s.hooksMu.Lock()
	hooks := append([]func(){}, s.logoutHooks...)
	s.hooksMu.Unlock()
	for _, hook := range hooks {
		hook()
	}
}

// OnLogout registers fn to run after every Logout, e.g. to drop caches that
// were derived from the session.
func (s *Store) OnLogout(fn func()) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.logoutHooks = append(s.logoutHooks, fn)
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AccessToken
}

func (s *Store) User() *users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.current.User)
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Authenticated()
}

// Snapshot returns a copy of the current session, read under one lock.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{User: cloneUser(s.current.User), AccessToken: s.current.AccessToken}
}

// AccessTokenExpiry reads the exp claim of the current access token. ok is
// false when anonymous or when the token carries no readable expiry.
func (s *Store) AccessTokenExpiry() (expiry time.Time, ok bool) {
	accessToken := s.AccessToken()
	if accessToken == "" {
		return time.Time{}, false
	}
	claims, err := token.Inspect(accessToken)
	if err != nil || claims.ExpiresAt.IsZero() {
		return time.Time{}, false
	}
	return claims.ExpiresAt, true
}

func cloneUser(u *users.User) *users.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
