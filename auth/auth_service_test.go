package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-task-client/apiclient"
	"github.com/jrsteele09/go-task-client/apimodel"
	"github.com/jrsteele09/go-task-client/auth"
	"github.com/jrsteele09/go-task-client/internal/apifake"
	apperrors "github.com/jrsteele09/go-task-client/internal/errors"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/jrsteele09/go-task-client/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-task-client/token/refresh/repofake"
	"github.com/jrsteele09/go-task-client/users"
	"github.com/stretchr/testify/require"
)

const (
	testUserName     = "Linus"
	testUserEmail    = "linus@example.com"
	testUserPassword = "password123"
)

// testFixture holds all test dependencies
type testFixture struct {
	api         *apifake.Server
	sessions    *session.Store
	refreshRepo *refreshrepofake.FakeRefreshTokenRepo
	service     *auth.Service
}

// setupTestFixture wires an auth.Service to an in-memory API
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	api := apifake.New()
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)

	sessions := session.NewStore()
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	manager := refresh.NewManager(repo)

	client, err := apiclient.New(server.URL, sessions, manager)
	require.NoError(t, err)
	service, err := auth.NewService(client, sessions, manager)
	require.NoError(t, err)

	return &testFixture{api: api, sessions: sessions, refreshRepo: repo, service: service}
}

// cannedSender answers SendPublicJSON with a fixed JSON body.
type cannedSender struct {
	body string
	err  error
	path string
}

func (c *cannedSender) SendPublicJSON(_ context.Context, _ string, path string, _, out any) error {
	c.path = path
	if c.err != nil {
		return c.err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(c.body), out)
}

func TestNewService_RequiresDependencies(t *testing.T) {
	sessions := session.NewStore()
	manager := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo())

	_, err := auth.NewService(nil, sessions, manager)
	require.Error(t, err)
	_, err = auth.NewService(&cannedSender{}, nil, manager)
	require.Error(t, err)
	_, err = auth.NewService(&cannedSender{}, sessions, nil)
	require.Error(t, err)
}

func TestLogin_StoresSessionAndRefreshToken(t *testing.T) {
	sender := &cannedSender{body: `{"user":{"id":1},"tokens":{"accessToken":"A1","refreshToken":"R1"}}`}
	sessions := session.NewStore()
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	service, err := auth.NewService(sender, sessions, refresh.NewManager(repo))
	require.NoError(t, err)

	user, err := service.Login(context.Background(), "user@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, apimodel.RouteLogin, sender.path)

	require.Equal(t, users.ID("1"), user.ID)
	require.Equal(t, users.ID("1"), sessions.User().ID)
	require.Equal(t, "A1", sessions.AccessToken())
	require.Equal(t, "R1", repo.Value())

	stored, err := service.HasStoredSession()
	require.NoError(t, err)
	require.True(t, stored)
}

func TestLogin_MalformedResponse(t *testing.T) {
	sender := &cannedSender{body: `{"user":{"id":1},"tokens":{}}`}
	sessions := session.NewStore()
	service, err := auth.NewService(sender, sessions, refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo()))
	require.NoError(t, err)

	_, err = service.Login(context.Background(), "user@example.com", "pw")
	require.ErrorIs(t, err, auth.MalformedResponseErr)
	require.False(t, sessions.IsAuthenticated())
}

func TestLogin_RefreshTokenNotPersisted(t *testing.T) {
	sender := &cannedSender{body: `{"user":{"id":1},"tokens":{"accessToken":"A1","refreshToken":"R1"}}`}
	sessions := session.NewStore()
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	repo.Err = errors.New("disk full")
	service, err := auth.NewService(sender, sessions, refresh.NewManager(repo))
	require.NoError(t, err)

	_, err = service.Login(context.Background(), "user@example.com", "pw")
	require.Error(t, err)
	require.False(t, sessions.IsAuthenticated())
}

func TestLogin_AgainstAPI(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.api.SeedUser(testUserName, testUserEmail, testUserPassword)
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.service.Login(context.Background(), testUserEmail, "nope")
		require.ErrorIs(t, err, auth.InvalidCredentialsErr)
		require.ErrorIs(t, err, apperrors.ErrValidationFailure)

		var se *apperrors.StatusError
		require.ErrorAs(t, err, &se)
		require.Equal(t, "Invalid email or password", se.Message)
		require.False(t, f.sessions.IsAuthenticated())
		require.Equal(t, 0, f.api.Calls(http.MethodPost, apimodel.RouteRefreshToken))
	})

	t.Run("invalid email is rejected locally", func(t *testing.T) {
		before := f.api.Calls(http.MethodPost, apimodel.RouteLogin)
		_, err := f.service.Login(context.Background(), "not-an-email", testUserPassword)
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		require.Equal(t, before, f.api.Calls(http.MethodPost, apimodel.RouteLogin))
	})

	t.Run("success", func(t *testing.T) {
		user, err := f.service.Login(context.Background(), testUserEmail, testUserPassword)
		require.NoError(t, err)
		require.Equal(t, testUserName, user.Name)
		require.True(t, f.sessions.IsAuthenticated())
		require.True(t, f.api.RefreshTokenValid(f.refreshRepo.Value()))
	})
}

func TestRegister(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.service.Register(context.Background(), testUserName, testUserEmail, testUserPassword))
	require.False(t, f.sessions.IsAuthenticated())

	t.Run("duplicate email", func(t *testing.T) {
		err := f.service.Register(context.Background(), testUserName, testUserEmail, testUserPassword)
		require.ErrorIs(t, err, auth.EmailTakenErr)
		require.ErrorIs(t, err, apperrors.ErrValidationFailure)
	})

	t.Run("missing name", func(t *testing.T) {
		err := f.service.Register(context.Background(), " ", "other@example.com", testUserPassword)
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		require.Contains(t, err.Error(), "name")
	})

	t.Run("registered user can log in", func(t *testing.T) {
		_, err := f.service.Login(context.Background(), testUserEmail, testUserPassword)
		require.NoError(t, err)
	})
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.api.SeedUser(testUserName, testUserEmail, testUserPassword)
	require.NoError(t, err)
	_, err = f.service.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout())
	require.False(t, f.sessions.IsAuthenticated())
	require.Nil(t, f.sessions.User())
	require.Empty(t, f.refreshRepo.Value())

	stored, err := f.service.HasStoredSession()
	require.NoError(t, err)
	require.False(t, stored)
}
