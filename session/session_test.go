package session_test

import (
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/jrsteele09/go-task-client/users"
	"github.com/stretchr/testify/require"
)

func TestStore_StartsAnonymous(t *testing.T) {
	s := session.NewStore()
	require.False(t, s.IsAuthenticated())
	require.Equal(t, "", s.AccessToken())
	require.Nil(t, s.User())
}

func TestStore_SetCredentialsAndLogout(t *testing.T) {
	s := session.NewStore()
	user := &users.User{ID: "1", Email: "a@b.com"}
	s.SetCredentials(user, "A1")

	require.True(t, s.IsAuthenticated())
	require.Equal(t, session.Session{User: &users.User{ID: "1", Email: "a@b.com"}, AccessToken: "A1"}, s.Snapshot())

	// Callers cannot mutate the stored identity through their pointer
	user.Email = "changed@b.com"
	require.Equal(t, "a@b.com", s.User().Email)

	s.Logout()
	require.Equal(t, session.Session{}, s.Snapshot())
	require.False(t, s.IsAuthenticated())
}

func TestStore_SetAccessTokenKeepsUser(t *testing.T) {
	s := session.NewStore()
	s.SetCredentials(&users.User{ID: "1"}, "A1")
	s.SetAccessToken("A2")

	require.Equal(t, "A2", s.AccessToken())
	require.Equal(t, users.ID("1"), s.User().ID)
}

func TestStore_LogoutHooks(t *testing.T) {
	s := session.NewStore()
	calls := 0
	s.OnLogout(func() {
		calls++
		// hooks run outside the lock
		require.False(t, s.IsAuthenticated())
	})
	s.SetCredentials(nil, "A1")
	s.Logout()
	s.Logout()
	require.Equal(t, 2, calls)
}

func TestStore_AccessTokenExpiry(t *testing.T) {
	s := session.NewStore()
	_, ok := s.AccessTokenExpiry()
	require.False(t, ok)

	s.SetCredentials(nil, "opaque")
	_, ok = s.AccessTokenExpiry()
	require.False(t, ok)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	s.SetAccessToken(raw)

	got, ok := s.AccessTokenExpiry()
	require.True(t, ok)
	require.True(t, exp.Equal(got))
}

func TestStore_NoPartialStates(t *testing.T) {
	s := session.NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetCredentials(&users.User{ID: "1"}, "A1")
		}()
		go func() {
			defer wg.Done()
			s.Logout()
		}()
	}
	for i := 0; i < 50; i++ {
		snap := s.Snapshot()
		require.Equal(t, snap.User == nil, snap.AccessToken == "")
	}
	wg.Wait()
}
