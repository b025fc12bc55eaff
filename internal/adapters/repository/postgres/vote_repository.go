package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) SaveVote(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (id, choice, created_at)
		VALUES ($1, $2, $3);
	`
	_, err := r.db.ExecContext(ctx, query, vote.ID, string(vote.Choice), vote.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save vote: %w", err)
	}
	return nil
}

func (r *voteRepository) CountByChoice(ctx context.Context) (domain.Tally, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE choice = $1),
			COUNT(*) FILTER (WHERE choice = $2)
		FROM votes
	`
	var tally domain.Tally
	err := r.db.QueryRowContext(ctx, query, string(domain.ChoiceYes), string(domain.ChoiceNo)).Scan(&tally.Yes, &tally.No)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("failed to count votes: %w", err)
	}
	return tally, nil
}

func (r *voteRepository) EachVote(ctx context.Context, fn func(*domain.Vote) error) error {
	rows, err := r.db.QueryContext(ctx, `SELECT id, choice, created_at FROM votes`)
	if err != nil {
		return fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			vote   domain.Vote
			choice string
		)
		if err := rows.Scan(&vote.ID, &choice, &vote.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan vote: %w", err)
		}
		vote.Choice = domain.Choice(choice)
		if err := fn(&vote); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating votes: %w", err)
	}
	return nil
}

func (r *voteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
