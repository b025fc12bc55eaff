package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
)

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(pgContainer)
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, applyMigrations(db, "migrations"))
	return db
}

func applyMigrations(db *sql.DB, dirPath string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func newVote(c domain.Choice) *domain.Vote {
	return &domain.Vote{ID: uuid.New(), Choice: c, CreatedAt: time.Now()}
}

func TestVoteRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := setupPostgres(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))

	tally, err := repo.CountByChoice(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{}, tally)

	require.NoError(t, repo.SaveVote(ctx, newVote(domain.ChoiceYes)))
	require.NoError(t, repo.SaveVote(ctx, newVote(domain.ChoiceYes)))
	require.NoError(t, repo.SaveVote(ctx, newVote(domain.ChoiceNo)))

	tally, err = repo.CountByChoice(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Yes: 2, No: 1}, tally)

	var walked domain.Tally
	ids := make(map[uuid.UUID]bool)
	require.NoError(t, repo.EachVote(ctx, func(v *domain.Vote) error {
		ids[v.ID] = true
		walked = walked.Increment(v.Choice)
		return nil
	}))
	assert.Equal(t, tally, walked)
	assert.Len(t, ids, 3)

	// The schema refuses anything outside the two choices.
	err = repo.SaveVote(ctx, newVote(domain.Choice("maybe")))
	require.Error(t, err)

	tally, err = repo.CountByChoice(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Yes: 2, No: 1}, tally)
}

func TestVoteRepositoryConcurrentInserts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := setupPostgres(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := domain.ChoiceYes
			if i%3 == 0 {
				c = domain.ChoiceNo
			}
			assert.NoError(t, repo.SaveVote(ctx, newVote(c)))
		}(i)
	}
	wg.Wait()

	tally, err := repo.CountByChoice(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Yes: 20, No: 10}, tally)
}
