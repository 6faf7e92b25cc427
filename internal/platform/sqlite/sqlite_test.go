package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAppliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blog.db")
	fsys := fstest.MapFS{
		"migrations/001_init.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE notes (id TEXT PRIMARY KEY);\n")},
	}

	db, err := Open(context.Background(), path, fsys, "migrations")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("INSERT INTO notes (id) VALUES ('n1')")
	assert.NoError(t, err)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "", nil, "")
	assert.Error(t, err)
}
