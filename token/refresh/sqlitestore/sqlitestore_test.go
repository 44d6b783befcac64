package sqlitestore_test

import (
	"testing"

	"github.com/jrsteele09/go-task-client/internal/utils"
	"github.com/jrsteele09/go-task-client/token/refresh/sqlitestore"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	dir := t.TempDir()

	s, err := sqlitestore.Open(dir)
	require.NoError(t, err)

	token, err := s.Get()
	require.NoError(t, err)
	require.Nil(t, token)

	require.NoError(t, s.Upsert("R1"))
	require.NoError(t, s.Upsert("R2"))
	token, err = s.Get()
	require.NoError(t, err)
	require.Equal(t, "R2", utils.Value(token))
	require.NoError(t, s.Close())

	// Durable across reopen
	reopened, err := sqlitestore.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	token, err = reopened.Get()
	require.NoError(t, err)
	require.Equal(t, "R2", utils.Value(token))

	require.NoError(t, reopened.Delete())
	require.NoError(t, reopened.Delete())
	token, err = reopened.Get()
	require.NoError(t, err)
	require.Nil(t, token)
}
