package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
)

// CountingVoteService appends to the vote log like voteService and also
// adds every vote to a running counter, which it serves tallies from while
// the counter is known to hold every acknowledged vote. Otherwise tallies
// come from the log and the counter is rebuilt.
type CountingVoteService struct {
	voteRepo  ports.VoteRepository
	counter   ports.TallyCounter
	recounter ports.RecountService
	log       logrus.FieldLogger

	// failures counts votes whose counter add failed. repaired holds the
	// value failures had when the last successful recount started; the
	// counter is behind while failures > repaired.
	failures atomic.Uint64
	repaired atomic.Uint64

	recounting sync.Mutex
}

func NewCountingVoteService(voteRepo ports.VoteRepository, counter ports.TallyCounter, log logrus.FieldLogger) *CountingVoteService {
	return &CountingVoteService{
		voteRepo:  voteRepo,
		counter:   counter,
		recounter: NewRecountService(voteRepo, counter),
		log:       log,
	}
}

func (s *CountingVoteService) GetTally(ctx context.Context) (domain.Tally, error) {
	if !s.behind() {
		tally, synced, err := s.counter.Load(ctx)
		if err != nil {
			s.log.WithError(err).Warn("failed to load tally counter, counting the vote log instead")
			return s.countLog(ctx)
		}
		if synced {
			return tally, nil
		}
	}

	// Only one request rebuilds the counter; the others read the log meanwhile.
	if s.recounting.TryLock() {
		defer s.recounting.Unlock()

		tally, err := s.recount(ctx)
		if err == nil {
			return tally, nil
		}
		s.log.WithError(err).Warn("failed to rebuild tally counter")
	}
	return s.countLog(ctx)
}

func (s *CountingVoteService) SubmitVote(ctx context.Context, choice string) error {
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

	// The vote is durable at this point. Until a recount picks it up,
	// tallies are read from the log.
	if err := s.counter.Add(ctx, vote); err != nil {
		s.failures.Add(1)
		s.log.WithError(err).WithField("vote_id", vote.ID).Warn("failed to add vote to tally counter")
	}
	return nil
}

// Recount rebuilds the counter from the vote log. It waits for a rebuild
// already in progress to finish before starting its own.
func (s *CountingVoteService) Recount(ctx context.Context) (domain.Tally, error) {
	s.recounting.Lock()
	defer s.recounting.Unlock()
	return s.recount(ctx)
}

func (s *CountingVoteService) recount(ctx context.Context) (domain.Tally, error) {
	// Any vote counted in seen was saved before the replay reads the log.
	seen := s.failures.Load()

	tally, err := s.recounter.Recount(ctx)
	if err != nil {
		return domain.Tally{}, err
	}
	s.repaired.Store(seen)
	return tally, nil
}

func (s *CountingVoteService) behind() bool {
	return s.failures.Load() > s.repaired.Load()
}

func (s *CountingVoteService) countLog(ctx context.Context) (domain.Tally, error) {
	tally, err := s.voteRepo.CountByChoice(ctx)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("failed to count votes: %w", err)
	}
	return tally, nil
}
