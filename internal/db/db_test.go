package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenMigratesTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tutor.db")

	conn, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	// migrations must be idempotent across restarts
	conn, err = Open(path)
	require.NoError(t, err)
	defer conn.Close()

	var name string
	err = conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='history'`).Scan(&name)
	require.NoError(t, err)
	require.Equal(t, "history", name)
}
