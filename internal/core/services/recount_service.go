package services

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
)

const recountBatchSize = 500

type recountService struct {
	voteRepo ports.VoteRepository
	counter  ports.TallyCounter
}

func NewRecountService(voteRepo ports.VoteRepository, counter ports.TallyCounter) ports.RecountService {
	return &recountService{
		voteRepo: voteRepo,
		counter:  counter,
	}
}

// Recount replays the vote log into the counter and marks it synced. Votes
// recorded while the replay runs are added by their own submissions, and
// since the counter ignores votes it already holds, nothing is lost or
// counted twice. The returned tally is what the replay saw in the log.
func (s *recountService) Recount(ctx context.Context) (domain.Tally, error) {
	var tally domain.Tally
	batch := make([]*domain.Vote, 0, recountBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.counter.Add(ctx, batch...); err != nil {
			return fmt.Errorf("failed to add votes to tally counter: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	err := s.voteRepo.EachVote(ctx, func(vote *domain.Vote) error {
		tally = tally.Increment(vote.Choice)
		batch = append(batch, vote)
		if len(batch) == recountBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return domain.Tally{}, fmt.Errorf("failed to replay vote log: %w", err)
	}
	if err := flush(); err != nil {
		return domain.Tally{}, err
	}

	if err := s.counter.MarkSynced(ctx); err != nil {
		return domain.Tally{}, fmt.Errorf("failed to mark tally counter synced: %w", err)
	}
	return tally, nil
}
