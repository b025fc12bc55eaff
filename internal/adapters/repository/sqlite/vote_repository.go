package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    choice TEXT NOT NULL CHECK (choice IN ('yes', 'no')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_votes_choice ON votes (choice);
`

// Open opens the database at path and creates the schema. Safe to call on
// an existing database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite allows one writer; serializing on a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) SaveVote(ctx context.Context, vote *domain.Vote) error {
	query := `INSERT INTO votes (id, choice, created_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, vote.ID.String(), string(vote.Choice), vote.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save vote: %w", err)
	}
	return nil
}

func (r *voteRepository) CountByChoice(ctx context.Context) (domain.Tally, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT choice, COUNT(*) FROM votes GROUP BY choice`)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	var tally domain.Tally
	for rows.Next() {
		var (
			choice string
			count  int64
		)
		if err := rows.Scan(&choice, &count); err != nil {
			return domain.Tally{}, fmt.Errorf("failed to scan vote count: %w", err)
		}
		switch domain.Choice(choice) {
		case domain.ChoiceYes:
			tally.Yes = count
		case domain.ChoiceNo:
			tally.No = count
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Tally{}, fmt.Errorf("error iterating vote counts: %w", err)
	}
	return tally, nil
}

// EachVote reads the whole log before calling fn so the single connection
// is free for writers while fn runs.
func (r *voteRepository) EachVote(ctx context.Context, fn func(*domain.Vote) error) error {
	votes, err := r.listVotes(ctx)
	if err != nil {
		return err
	}
	for i := range votes {
		if err := fn(&votes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *voteRepository) listVotes(ctx context.Context) ([]domain.Vote, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, choice, created_at FROM votes`)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		var id, choice, createdAt string
		if err := rows.Scan(&id, &choice, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		voteID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid vote id %q: %w", id, err)
		}
		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("invalid vote timestamp %q: %w", createdAt, err)
		}
		votes = append(votes, domain.Vote{ID: voteID, Choice: domain.Choice(choice), CreatedAt: created})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

func (r *voteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
