// Package testutil builds a vote service on a throwaway sqlite database.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/vncsmyrnk/waterpoll/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
	"github.com/vncsmyrnk/waterpoll/internal/core/services"
)

type TestStack struct {
	Repo    ports.VoteRepository
	Service ports.VoteService
	Logger  *logrus.Logger
	LogHook *logtest.Hook
}

func NewTestStack(t *testing.T) *TestStack {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "votes.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger, hook := logtest.NewNullLogger()
	repo := sqlite.NewVoteRepository(db)

	return &TestStack{
		Repo:    repo,
		Service: services.NewVoteService(repo),
		Logger:  logger,
		LogHook: hook,
	}
}
