package persistence

import (
	"context"
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aquanqa/ticketera/migrations"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrations.Files, ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		assert.False(t, entry.IsDir())
		assert.True(t, strings.HasSuffix(entry.Name(), ".sql"))
		names = append(names, entry.Name())
	}
	assert.True(t, sort.StringsAreSorted(names), "migrations must apply in filename order")

	schema, err := fs.ReadFile(migrations.Files, "001_create_tickets.sql")
	require.NoError(t, err)
	assert.Contains(t, string(schema), "CREATE TABLE IF NOT EXISTS tickets")
	assert.Contains(t, string(schema), "ticket_attachments")
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}
