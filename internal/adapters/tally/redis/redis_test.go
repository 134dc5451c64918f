package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/pollvotes/internal/core/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCounterIncrement(t *testing.T) {
	mr, client := newTestClient(t)
	counter := NewCounter(client)
	ctx := context.Background()
	pollID, optionA, optionB := uuid.New(), uuid.New(), uuid.New()

	votes, err := counter.Increment(ctx, pollID, optionA, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), votes)

	votes, err = counter.Increment(ctx, pollID, optionA, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), votes)

	votes, err = counter.Increment(ctx, pollID, optionB, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), votes)

	votes, err = counter.Increment(ctx, pollID, optionA, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), votes)

	score, err := mr.ZScore(pollID.String(), optionA.String())
	require.NoError(t, err)
	assert.Equal(t, float64(1), score)
}

func TestCounterIncrement_Unavailable(t *testing.T) {
	mr, client := newTestClient(t)
	counter := NewCounter(client)
	mr.Close()

	_, err := counter.Increment(context.Background(), uuid.New(), uuid.New(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to increment tally")
}

func TestCounterReset(t *testing.T) {
	mr, client := newTestClient(t)
	counter := NewCounter(client)
	ctx := context.Background()
	pollID, optionA, optionB, stale := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	_, err := counter.Increment(ctx, pollID, stale, 7)
	require.NoError(t, err)

	require.NoError(t, counter.Reset(ctx, pollID, map[uuid.UUID]int64{optionA: 3, optionB: 0}))

	members, err := mr.ZMembers(pollID.String())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{optionA.String(), optionB.String()}, members)

	score, err := mr.ZScore(pollID.String(), optionA.String())
	require.NoError(t, err)
	assert.Equal(t, float64(3), score)

	require.NoError(t, counter.Reset(ctx, pollID, map[uuid.UUID]int64{}))
	assert.False(t, mr.Exists(pollID.String()))
}

func TestPublisher(t *testing.T) {
	_, client := newTestClient(t)
	publisher := NewPublisher(client)
	pollID, optionID := uuid.New(), uuid.New()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, pollID.String())
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(ctx, pollID, domain.TallyUpdate{PollOptionID: optionID, Votes: 5}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, pollID.String(), msg.Channel)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &payload))
	assert.Equal(t, optionID.String(), payload["pollOptionId"])
	assert.Equal(t, float64(5), payload["votes"])
}
