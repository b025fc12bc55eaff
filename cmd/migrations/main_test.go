package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var migrationsDir = filepath.Join("..", "..", "internal", "adapters", "repository", "postgres", "migrations")

func TestMigrationFilePath(t *testing.T) {
	name, err := migrationFilePath(migrationsDir, "create_votes.up")
	require.NoError(t, err)
	assert.Equal(t, "001_create_votes.up.sql", name)

	name, err = migrationFilePath(migrationsDir, "create_votes.down")
	require.NoError(t, err)
	assert.Equal(t, "001_create_votes.down.sql", name)

	_, err = migrationFilePath(migrationsDir, "drop_everything")
	assert.Error(t, err)
}

func TestMigrationFileContent(t *testing.T) {
	content, err := migrationFileContent(migrationsDir, "create_votes.up")
	require.NoError(t, err)
	assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS votes")
}
