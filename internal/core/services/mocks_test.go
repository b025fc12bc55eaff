package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
)

type mockVoteRepository struct {
	mock.Mock
}

func (m *mockVoteRepository) SaveVote(ctx context.Context, vote *domain.Vote) error {
	args := m.Called(ctx, vote)
	return args.Error(0)
}

func (m *mockVoteRepository) CountByChoice(ctx context.Context) (domain.Tally, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Tally), args.Error(1)
}

func (m *mockVoteRepository) EachVote(ctx context.Context, fn func(*domain.Vote) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func (m *mockVoteRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockTallyCounter struct {
	mock.Mock
}

func (m *mockTallyCounter) Add(ctx context.Context, votes ...*domain.Vote) error {
	args := m.Called(ctx, votes)
	return args.Error(0)
}

func (m *mockTallyCounter) Load(ctx context.Context) (domain.Tally, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Tally), args.Bool(1), args.Error(2)
}

func (m *mockTallyCounter) MarkSynced(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// memoryVoteRepository is an append-only slice guarded by a mutex.
// beforeEach, when set, runs ahead of every EachVote callback without the
// lock held, so a test can record votes in the middle of a replay.
type memoryVoteRepository struct {
	mu         sync.Mutex
	votes      []domain.Vote
	beforeEach func()
}

func (r *memoryVoteRepository) SaveVote(_ context.Context, vote *domain.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes = append(r.votes, *vote)
	return nil
}

func (r *memoryVoteRepository) CountByChoice(_ context.Context) (domain.Tally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tally domain.Tally
	for _, v := range r.votes {
		tally = tally.Increment(v.Choice)
	}
	return tally, nil
}

func (r *memoryVoteRepository) EachVote(_ context.Context, fn func(*domain.Vote) error) error {
	r.mu.Lock()
	snapshot := make([]domain.Vote, len(r.votes))
	copy(snapshot, r.votes)
	r.mu.Unlock()

	for i := range snapshot {
		if r.beforeEach != nil {
			r.beforeEach()
		}
		if err := fn(&snapshot[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryVoteRepository) Ping(context.Context) error {
	return nil
}

// memoryTallyCounter mirrors the Redis counter: a set of vote IDs per
// choice plus a synced flag. addErr makes every Add fail.
type memoryTallyCounter struct {
	mu       sync.Mutex
	counted  map[uuid.UUID]domain.Choice
	synced   bool
	addErr   error
	addCalls int
}

func newMemoryTallyCounter() *memoryTallyCounter {
	return &memoryTallyCounter{counted: make(map[uuid.UUID]domain.Choice)}
}

func (c *memoryTallyCounter) Add(_ context.Context, votes ...*domain.Vote) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addCalls++
	if c.addErr != nil {
		return c.addErr
	}
	for _, v := range votes {
		c.counted[v.ID] = v.Choice
	}
	return nil
}

func (c *memoryTallyCounter) Load(context.Context) (domain.Tally, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var tally domain.Tally
	for _, choice := range c.counted {
		tally = tally.Increment(choice)
	}
	return tally, c.synced, nil
}

func (c *memoryTallyCounter) MarkSynced(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.synced = true
	return nil
}

func (c *memoryTallyCounter) failAdds(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addErr = err
}

// wipe drops everything, like a Redis restart without persistence.
func (c *memoryTallyCounter) wipe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counted = make(map[uuid.UUID]domain.Choice)
	c.synced = false
}
