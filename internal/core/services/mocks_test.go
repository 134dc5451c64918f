package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/vncsmyrnk/pollvotes/internal/core/domain"
)

type mockVoteRepository struct {
	mock.Mock
}

func (m *mockVoteRepository) GetBySessionAndPoll(ctx context.Context, sessionID string, pollID uuid.UUID) (*domain.Vote, error) {
	args := m.Called(ctx, sessionID, pollID)
	vote, _ := args.Get(0).(*domain.Vote)
	return vote, args.Error(1)
}

func (m *mockVoteRepository) SaveVote(ctx context.Context, vote *domain.Vote) error {
	return m.Called(ctx, vote).Error(0)
}

func (m *mockVoteRepository) ReplaceVote(ctx context.Context, previousID uuid.UUID, vote *domain.Vote) error {
	return m.Called(ctx, previousID, vote).Error(0)
}

type mockTallyCounter struct {
	mock.Mock
}

func (m *mockTallyCounter) Increment(ctx context.Context, pollID, pollOptionID uuid.UUID, delta int64) (int64, error) {
	args := m.Called(ctx, pollID, pollOptionID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTallyCounter) Reset(ctx context.Context, pollID uuid.UUID, counts map[uuid.UUID]int64) error {
	return m.Called(ctx, pollID, counts).Error(0)
}

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) Publish(ctx context.Context, pollID uuid.UUID, update domain.TallyUpdate) error {
	return m.Called(ctx, pollID, update).Error(0)
}

type mockVoteCountRepository struct {
	mock.Mock
}

func (m *mockVoteCountRepository) ListPollIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

func (m *mockVoteCountRepository) CountByOption(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, pollID)
	counts, _ := args.Get(0).(map[uuid.UUID]int64)
	return counts, args.Error(1)
}
