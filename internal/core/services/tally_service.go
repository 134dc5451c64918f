package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vncsmyrnk/pollvotes/internal/core/ports"
)

const defaultRebuildConcurrency = 8

type tallyService struct {
	voteCounts  ports.VoteCountRepository
	tally       ports.TallyCounter
	concurrency int
}

func NewTallyService(voteCounts ports.VoteCountRepository, tally ports.TallyCounter, concurrency int) ports.TallyService {
	if concurrency <= 0 {
		concurrency = defaultRebuildConcurrency
	}
	return &tallyService{
		voteCounts:  voteCounts,
		tally:       tally,
		concurrency: concurrency,
	}
}

// RebuildAll recomputes every poll's counters from the vote store and
// overwrites the tally with them.
func (s *tallyService) RebuildAll(ctx context.Context) error {
	pollIDs, err := s.voteCounts.ListPollIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch poll ids: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, pollID := range pollIDs {
		g.Go(func() error {
			return s.rebuild(ctx, pollID)
		})
	}

	return g.Wait()
}

func (s *tallyService) rebuild(ctx context.Context, pollID uuid.UUID) error {
	counts, err := s.voteCounts.CountByOption(ctx, pollID)
	if err != nil {
		return fmt.Errorf("failed to count votes for poll %s: %w", pollID, err)
	}

	if err := s.tally.Reset(ctx, pollID, counts); err != nil {
		return fmt.Errorf("failed to reset tally for poll %s: %w", pollID, err)
	}

	return nil
}
