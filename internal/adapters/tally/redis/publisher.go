package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vncsmyrnk/pollvotes/internal/core/domain"
)

type Publisher struct {
	client goredis.UniversalClient
}

func NewPublisher(client goredis.UniversalClient) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, pollID uuid.UUID, update domain.TallyUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to encode tally update: %w", err)
	}

	if err := p.client.Publish(ctx, pollID.String(), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish tally update: %w", err)
	}
	return nil
}
