package refresh_test

import (
	"errors"
	"testing"

	"github.com/jrsteele09/go-task-client/internal/utils"
	"github.com/jrsteele09/go-task-client/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-task-client/token/refresh/repofake"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	setup := func() (*refresh.Manager, *refreshrepofake.FakeRefreshTokenRepo) {
		repo := refreshrepofake.NewFakeRefreshTokenRepo()
		return refresh.NewManager(repo), repo
	}

	t.Run("read when empty is absent", func(t *testing.T) {
		m, _ := setup()
		token, err := m.Read()
		require.NoError(t, err)
		require.Nil(t, token)
	})

	t.Run("save then read", func(t *testing.T) {
		m, _ := setup()
		require.NoError(t, m.Save("R1"))
		token, err := m.Read()
		require.NoError(t, err)
		require.Equal(t, "R1", utils.Value(token))
	})

	t.Run("save rejects empty", func(t *testing.T) {
		m, repo := setup()
		require.ErrorIs(t, m.Save(" "), refresh.ErrEmptyToken)
		require.Equal(t, "", repo.Value())
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		m, _ := setup()
		require.NoError(t, m.Save("R1"))
		require.NoError(t, m.Clear())
		require.NoError(t, m.Clear())
		token, err := m.Read()
		require.NoError(t, err)
		require.Nil(t, token)
	})

	t.Run("rotate keeps token when server did not rotate", func(t *testing.T) {
		m, repo := setup()
		require.NoError(t, m.Save("R1"))
		require.NoError(t, m.Rotate(nil))
		require.NoError(t, m.Rotate(utils.Ptr("")))
		require.Equal(t, "R1", repo.Value())
		require.NoError(t, m.Rotate(utils.Ptr("R2")))
		require.Equal(t, "R2", repo.Value())
	})

	t.Run("repo errors are wrapped", func(t *testing.T) {
		m, repo := setup()
		repo.Err = errors.New("disk full")
		err := m.Save("R1")
		require.ErrorContains(t, err, "disk full")
		_, err = m.Read()
		require.ErrorContains(t, err, "failed to read refresh token")
	})
}
