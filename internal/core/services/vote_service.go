package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollvotes/internal/core/domain"
	"github.com/vncsmyrnk/pollvotes/internal/core/ports"
)

type voteService struct {
	voteRepo    ports.VoteRepository
	tally       ports.TallyCounter
	broadcaster ports.TallyBroadcaster
	newID       func() uuid.UUID
	now         func() time.Time
}

// NewVoteService builds the vote service. tally may be nil, in which case no
// counter is touched and nothing is broadcast. broadcaster may be nil too.
func NewVoteService(voteRepo ports.VoteRepository, tally ports.TallyCounter, broadcaster ports.TallyBroadcaster) ports.VoteService {
	return &voteService{
		voteRepo:    voteRepo,
		tally:       tally,
		broadcaster: broadcaster,
		newID:       uuid.New,
		now:         time.Now,
	}
}

func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) (*ports.VoteResult, error) {
	var previous *domain.Vote
	if input.SessionID != "" {
		var err error
		previous, err = s.voteRepo.GetBySessionAndPoll(ctx, input.SessionID, input.PollID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up previous vote: %w", err)
		}
		if previous != nil && previous.PollOptionID == input.PollOptionID {
			return nil, domain.ErrAlreadyVoted
		}
	}

	result := &ports.VoteResult{SessionID: input.SessionID}
	if result.SessionID == "" {
		result.SessionID = s.newID().String()
		result.NewSession = true
	}

	vote := &domain.Vote{
		ID:           s.newID(),
		SessionID:    result.SessionID,
		PollID:       input.PollID,
		PollOptionID: input.PollOptionID,
		CreatedAt:    s.now(),
	}

	if previous != nil {
		if err := s.voteRepo.ReplaceVote(ctx, previous.ID, vote); err != nil {
			return nil, err
		}
		s.adjustTally(ctx, input.PollID, previous.PollOptionID, -1)
	} else {
		if err := s.voteRepo.SaveVote(ctx, vote); err != nil {
			return nil, err
		}
	}

	s.adjustTally(ctx, input.PollID, input.PollOptionID, 1)

	return result, nil
}

// adjustTally moves the option counter and publishes the new value. The vote
// is already stored when this runs, so failures are logged and left for the
// tally rebuild job.
func (s *voteService) adjustTally(ctx context.Context, pollID, pollOptionID uuid.UUID, delta int64) {
	if s.tally == nil {
		return
	}

	votes, err := s.tally.Increment(ctx, pollID, pollOptionID, delta)
	if err != nil {
		slog.ErrorContext(ctx, "failed to adjust tally",
			"poll_id", pollID,
			"poll_option_id", pollOptionID,
			"delta", delta,
			"error", err,
		)
		return
	}

	if s.broadcaster == nil {
		return
	}

	update := domain.TallyUpdate{PollOptionID: pollOptionID, Votes: votes}
	if err := s.broadcaster.Publish(ctx, pollID, update); err != nil {
		slog.WarnContext(ctx, "failed to broadcast tally update",
			"poll_id", pollID,
			"poll_option_id", pollOptionID,
			"error", err,
		)
	}
}
