package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
)

type voteService struct {
	voteRepo ports.VoteRepository
}

func NewVoteService(voteRepo ports.VoteRepository) ports.VoteService {
	return &voteService{
		voteRepo: voteRepo,
	}
}

func (s *voteService) GetTally(ctx context.Context) (domain.Tally, error) {
	tally, err := s.voteRepo.CountByChoice(ctx)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("failed to count votes: %w", err)
	}
	return tally, nil
}

func (s *voteService) SubmitVote(ctx context.Context, choice string) error {
	c, err := domain.ParseChoice(choice)
	if err != nil {
		return err
	}

	vote := &domain.Vote{
		ID:        uuid.New(),
		Choice:    c,
		CreatedAt: time.Now(),
	}

	if err := s.voteRepo.SaveVote(ctx, vote); err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	return nil
}
