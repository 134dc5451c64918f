package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollvotes/internal/core/domain"
)

// TallyCounter keeps one counter per poll option.
type TallyCounter interface {
	// Increment adds delta to the option counter and returns the new value.
	Increment(ctx context.Context, pollID, pollOptionID uuid.UUID, delta int64) (int64, error)
	// Reset replaces every counter of the poll with counts.
	Reset(ctx context.Context, pollID uuid.UUID, counts map[uuid.UUID]int64) error
}

type TallyBroadcaster interface {
	Publish(ctx context.Context, pollID uuid.UUID, update domain.TallyUpdate) error
}

type VoteCountRepository interface {
	ListPollIDs(ctx context.Context) ([]uuid.UUID, error)
	CountByOption(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error)
}

type TallyService interface {
	RebuildAll(ctx context.Context) error
}
