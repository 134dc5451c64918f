package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollvotes/internal/core/domain"
)

type VoteRepository interface {
	// GetBySessionAndPoll returns nil, nil when the session has no vote on the poll.
	GetBySessionAndPoll(ctx context.Context, sessionID string, pollID uuid.UUID) (*domain.Vote, error)
	SaveVote(ctx context.Context, vote *domain.Vote) error
	// ReplaceVote deletes previousID and saves vote as a single unit.
	ReplaceVote(ctx context.Context, previousID uuid.UUID, vote *domain.Vote) error
}

type VoteInput struct {
	PollID       uuid.UUID
	PollOptionID uuid.UUID
	// SessionID is empty for a first-time voter.
	SessionID string
}

type VoteResult struct {
	SessionID  string
	NewSession bool
}

type VoteService interface {
	Vote(ctx context.Context, input VoteInput) (*VoteResult, error)
}
