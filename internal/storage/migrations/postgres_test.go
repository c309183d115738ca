package migrations_test

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influencer-stats/internal/storage/migrations"
	"influencer-stats/internal/storage/postgres"
)

// The pool wrapper must keep satisfying the migration statement surface.
var _ migrations.Execer = (*postgres.Pool)(nil)

func TestEmbeddedPostgresMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrations.PostgresFS, "postgres")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		assert.True(t, strings.HasSuffix(entry.Name(), ".sql"), "unexpected file %s", entry.Name())
		data, err := fs.ReadFile(migrations.PostgresFS, "postgres/"+entry.Name())
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(string(data)), "empty migration %s", entry.Name())
	}
}
