// Package redis keeps vote tallies in Redis sorted sets, one per poll keyed by
// the poll id with option ids as members, and broadcasts changes over Redis
// pub/sub on a channel named after the poll id.
package redis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type Counter struct {
	client goredis.UniversalClient
}

func NewCounter(client goredis.UniversalClient) *Counter {
	return &Counter{client: client}
}

func (c *Counter) Increment(ctx context.Context, pollID, pollOptionID uuid.UUID, delta int64) (int64, error) {
	votes, err := c.client.ZIncrBy(ctx, pollID.String(), float64(delta), pollOptionID.String()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment tally: %w", err)
	}
	return int64(votes), nil
}

func (c *Counter) Reset(ctx context.Context, pollID uuid.UUID, counts map[uuid.UUID]int64) error {
	key := pollID.String()

	members := make([]goredis.Z, 0, len(counts))
	for optionID, count := range counts {
		members = append(members, goredis.Z{Score: float64(count), Member: optionID.String()})
	}

	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(members) > 0 {
			pipe.ZAdd(ctx, key, members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reset tally: %w", err)
	}
	return nil
}
