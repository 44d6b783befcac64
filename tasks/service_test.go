package tasks_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-task-client/apiclient"
	"github.com/jrsteele09/go-task-client/apimodel"
	"github.com/jrsteele09/go-task-client/internal/apifake"
	apperrors "github.com/jrsteele09/go-task-client/internal/errors"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/jrsteele09/go-task-client/tasks"
	"github.com/jrsteele09/go-task-client/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-task-client/token/refresh/repofake"
	"github.com/jrsteele09/go-task-client/users"
	"github.com/stretchr/testify/require"
)

const testUserEmail = "grace@example.com"

type testFixture struct {
	api      *apifake.Server
	sessions *session.Store
	store    *tasks.Store
	service  *tasks.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	api := apifake.New()
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)

	userID, err := api.SeedUser("Grace", testUserEmail, "password123")
	require.NoError(t, err)
	access, refreshToken, err := api.IssueTokens(testUserEmail)
	require.NoError(t, err)

	sessions := session.NewStore()
	sessions.SetCredentials(&users.User{ID: userID, Email: testUserEmail}, access)
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	require.NoError(t, repo.Upsert(refreshToken))

	client, err := apiclient.New(server.URL, sessions, refresh.NewManager(repo))
	require.NoError(t, err)

	store := tasks.NewStore()
	sessions.OnLogout(store.Clear)
	service, err := tasks.NewService(client, store)
	require.NoError(t, err)

	return &testFixture{api: api, sessions: sessions, store: store, service: service}
}

func (f *testFixture) seed(t *testing.T, titles ...string) []tasks.Task {
	t.Helper()
	var seeded []tasks.Task
	for _, title := range titles {
		task, err := f.api.SeedTask(testUserEmail, tasks.TaskInput{Title: title})
		require.NoError(t, err)
		seeded = append(seeded, task)
	}
	return seeded
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := tasks.NewService(nil, tasks.NewStore())
	require.Error(t, err)
	_, err = tasks.NewService(&recordingSender{}, nil)
	require.Error(t, err)
}

func TestService_Fetch(t *testing.T) {
	f := setupTestFixture(t)
	seeded := f.seed(t, "one", "two", "three")

	got, err := f.service.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, seeded, got)
	require.Equal(t, seeded, f.store.All())
}

func TestService_FetchFailureLeavesStoreUnchanged(t *testing.T) {
	f := setupTestFixture(t)
	f.store.ReplaceAll(sampleTasks())
	f.api.FailNext(http.MethodGet, apimodel.RouteTasks, http.StatusInternalServerError, "boom")

	_, err := f.service.Fetch(context.Background())
	require.ErrorIs(t, err, apperrors.ErrServerFailure)
	require.Equal(t, sampleTasks(), f.store.All())
}

func TestService_Create(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("inserts the created task", func(t *testing.T) {
		created, err := f.service.Create(context.Background(), tasks.TaskInput{Title: "Buy milk", Description: "2 litres"})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		require.Equal(t, tasks.StatusPending, created.Status)

		got, found := f.store.Get(created.ID)
		require.True(t, found)
		require.Equal(t, created, got)
	})

	t.Run("invalid input is rejected before any request", func(t *testing.T) {
		before := f.api.Calls(http.MethodPost, apimodel.RouteTasks)
		_, err := f.service.Create(context.Background(), tasks.TaskInput{Title: ""})
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		require.Equal(t, before, f.api.Calls(http.MethodPost, apimodel.RouteTasks))
		require.Equal(t, 1, f.store.Len())
	})
}

func TestService_Update(t *testing.T) {
	f := setupTestFixture(t)
	seeded := f.seed(t, "Write report")
	_, err := f.service.Fetch(context.Background())
	require.NoError(t, err)

	t.Run("replaces the stored task", func(t *testing.T) {
		updated, err := f.service.Update(context.Background(), seeded[0].ID, tasks.TaskInput{Title: "Write Q3 report", Status: tasks.StatusInProgress})
		require.NoError(t, err)
		require.Equal(t, seeded[0].ID, updated.ID)

		got, _ := f.store.Get(seeded[0].ID)
		require.Equal(t, "Write Q3 report", got.Title)
		require.Equal(t, tasks.StatusInProgress, got.Status)
	})

	t.Run("not found leaves the store unchanged", func(t *testing.T) {
		before := f.store.All()
		_, err := f.service.Update(context.Background(), "missing", tasks.TaskInput{Title: "x"})
		require.ErrorIs(t, err, apperrors.ErrValidationFailure)

		var se *apperrors.StatusError
		require.ErrorAs(t, err, &se)
		require.Equal(t, http.StatusNotFound, se.StatusCode)
		require.Equal(t, "Task not found", se.Message)
		require.Equal(t, before, f.store.All())
	})

	t.Run("id is required", func(t *testing.T) {
		_, err := f.service.Update(context.Background(), " ", tasks.TaskInput{Title: "x"})
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestService_SetStatus(t *testing.T) {
	f := setupTestFixture(t)
	seeded := f.seed(t, "File taxes")

	// Not cached yet: SetStatus fetches first
	done, err := f.service.SetStatus(context.Background(), seeded[0].ID, tasks.StatusDone)
	require.NoError(t, err)
	require.Equal(t, tasks.StatusDone, done.Status)
	require.Equal(t, "File taxes", done.Title)
	require.Equal(t, 1, f.api.Calls(http.MethodGet, apimodel.RouteTasks))

	_, err = f.service.SetStatus(context.Background(), "missing", tasks.StatusDone)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	f := setupTestFixture(t)
	seeded := f.seed(t, "one", "two")
	_, err := f.service.Fetch(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), seeded[0].ID))
	require.Equal(t, []tasks.Task{seeded[1]}, f.store.All())
	require.Len(t, f.api.Tasks(testUserEmail), 1)

	t.Run("failure leaves the store unchanged", func(t *testing.T) {
		err := f.service.Delete(context.Background(), "missing")
		require.ErrorIs(t, err, apperrors.ErrValidationFailure)
		require.Equal(t, []tasks.Task{seeded[1]}, f.store.All())
	})
}

func TestService_SessionExpiryClearsStore(t *testing.T) {
	f := setupTestFixture(t)
	f.seed(t, "one")
	_, err := f.service.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, f.store.Len())

	f.api.ExpireAccessTokens()
	f.api.FailRefresh(true)

	_, err = f.service.Fetch(context.Background())
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.False(t, f.sessions.IsAuthenticated())
	require.Equal(t, 0, f.store.Len())
}

// recordingSender answers every call with a canned response body.
type recordingSender struct {
	method, path string
	body         any
	response     any
	err          error
}

func (r *recordingSender) SendJSON(_ context.Context, method, path string, body, out any) error {
	r.method, r.path, r.body = method, path, body
	if r.err != nil {
		return r.err
	}
	if out == nil || r.response == nil {
		return nil
	}
	encoded, err := json.Marshal(r.response)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, out)
}

func TestService_UpdateMarksTaskDone(t *testing.T) {
	sender := &recordingSender{response: tasks.Task{ID: "7", Title: "x", Status: tasks.StatusDone}}
	store := tasks.NewStore()
	store.ReplaceAll([]tasks.Task{{ID: "7", Title: "x", Status: tasks.StatusPending}})
	service, err := tasks.NewService(sender, store)
	require.NoError(t, err)

	_, err = service.Update(context.Background(), "7", tasks.TaskInput{Title: "x", Status: tasks.StatusDone})
	require.NoError(t, err)

	require.Equal(t, http.MethodPut, sender.method)
	require.Equal(t, "/tasks/7", sender.path)
	got, found := store.Get("7")
	require.True(t, found)
	require.Equal(t, tasks.StatusDone, got.Status)
	require.Equal(t, 1, store.Len())
}

func TestService_UpdateOfUncachedTaskKeepsStore(t *testing.T) {
	sender := &recordingSender{response: tasks.Task{ID: "8", Title: "y", Status: tasks.StatusDone}}
	store := tasks.NewStore()
	store.ReplaceAll([]tasks.Task{{ID: "7", Title: "x"}})
	service, err := tasks.NewService(sender, store)
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), "8", tasks.TaskInput{Title: "y", Status: tasks.StatusDone})
	require.NoError(t, err)
	require.Equal(t, "8", updated.ID)
	require.Equal(t, []tasks.Task{{ID: "7", Title: "x"}}, store.All())
}

func TestService_UpdateAcceptsNumericTaskID(t *testing.T) {
	sender := &recordingSender{response: json.RawMessage(`{"id":7,"title":"x","description":"","status":"done"}`)}
	store := tasks.NewStore()
	store.ReplaceAll([]tasks.Task{{ID: "7", Title: "x", Status: tasks.StatusPending}})
	service, err := tasks.NewService(sender, store)
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), "7", tasks.TaskInput{Title: "x", Status: tasks.StatusDone})
	require.NoError(t, err)
	require.Equal(t, "7", updated.ID)

	require.Equal(t, "/tasks/7", sender.path)
	got, found := store.Get("7")
	require.True(t, found)
	require.Equal(t, tasks.StatusDone, got.Status)
	require.Equal(t, 1, store.Len())
}
