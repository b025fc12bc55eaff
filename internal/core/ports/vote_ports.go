package ports

import (
	"context"

	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
)

type VoteRepository interface {
	SaveVote(ctx context.Context, vote *domain.Vote) error
	CountByChoice(ctx context.Context) (domain.Tally, error)
	// EachVote calls fn for every vote in the log, stopping at the first error.
	EachVote(ctx context.Context, fn func(*domain.Vote) error) error
	Ping(ctx context.Context) error
}

type VoteService interface {
	GetTally(ctx context.Context) (domain.Tally, error)
	SubmitVote(ctx context.Context, choice string) error
}
