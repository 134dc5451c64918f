package http_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/vncsmyrnk/pollvotes/internal/adapters/handler/http"
	repo "github.com/vncsmyrnk/pollvotes/internal/adapters/repository/postgres"
	tally "github.com/vncsmyrnk/pollvotes/internal/adapters/tally/redis"
	"github.com/vncsmyrnk/pollvotes/internal/core/domain"
	"github.com/vncsmyrnk/pollvotes/internal/core/services"
	"github.com/vncsmyrnk/pollvotes/internal/testutil"
)

type testApp struct {
	DB     *sql.DB
	Redis  *goredis.Client
	Server *httptest.Server
	Client *http.Client
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.StartPostgres(t)
	redisClient := testutil.StartRedis(t)

	voteRepo := repo.NewVoteRepository(db)
	voteSvc := services.NewVoteService(voteRepo, tally.NewCounter(redisClient), tally.NewPublisher(redisClient))

	sessions := handler.NewSessionCookies("integration-secret", "", false, http.SameSiteLaxMode)
	health := handler.NewHealthHandler(map[string]handler.Pinger{
		"postgres": voteRepo,
		"redis": handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
	})
	router := handler.NewHandler(handler.NewVoteHandler(voteSvc, sessions), health, []string{"*"})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testApp{
		DB:     db,
		Redis:  redisClient,
		Server: server,
		Client: server.Client(),
	}
}

func (a *testApp) vote(t *testing.T, pollID, optionID uuid.UUID, cookie *http.Cookie) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]string{"pollOptionId": optionID.String()})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/polls/%s/votes", a.Server.URL, pollID), bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := a.Client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testApp) score(t *testing.T, pollID, optionID uuid.UUID) float64 {
	t.Helper()
	score, err := a.Redis.ZScore(context.Background(), pollID.String(), optionID.String()).Result()
	require.NoError(t, err)
	return score
}

func receiveUpdate(t *testing.T, sub *goredis.PubSub) domain.TallyUpdate {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var update domain.TallyUpdate
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &update))
	return update
}

func findSessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == handler.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestVoteLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	pollID, options := testutil.SeedPoll(t, app.DB, 2)
	optionA, optionB := options[0], options[1]

	sub := app.Redis.Subscribe(context.Background(), pollID.String())
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	// first vote issues a session
	resp := app.vote(t, pollID, optionA, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	_, err = uuid.Parse(created.SessionID)
	require.NoError(t, err)

	cookie := findSessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	assert.Equal(t, float64(1), app.score(t, pollID, optionA))
	assert.Equal(t, domain.TallyUpdate{PollOptionID: optionA, Votes: 1}, receiveUpdate(t, sub))

	// repeating the same option is rejected
	resp = app.vote(t, pollID, optionA, cookie)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var rejected struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rejected))
	assert.Equal(t, "You already voted on this poll.", rejected.Message)
	assert.Equal(t, float64(1), app.score(t, pollID, optionA))

	// switching moves the vote
	resp = app.vote(t, pollID, optionB, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Nil(t, findSessionCookie(resp), "known session should not be reissued")

	var stored uuid.UUID
	err = app.DB.QueryRow(`SELECT poll_option_id FROM votes WHERE session_id = $1 AND poll_id = $2`, created.SessionID, pollID).Scan(&stored)
	require.NoError(t, err)
	assert.Equal(t, optionB, stored)

	var rows int
	require.NoError(t, app.DB.QueryRow(`SELECT COUNT(*) FROM votes WHERE poll_id = $1`, pollID).Scan(&rows))
	assert.Equal(t, 1, rows)

	assert.Equal(t, float64(0), app.score(t, pollID, optionA))
	assert.Equal(t, float64(1), app.score(t, pollID, optionB))
	assert.Equal(t, domain.TallyUpdate{PollOptionID: optionA, Votes: 0}, receiveUpdate(t, sub))
	assert.Equal(t, domain.TallyUpdate{PollOptionID: optionB, Votes: 1}, receiveUpdate(t, sub))
}

func TestVoteRejections(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	pollID, _ := testutil.SeedPoll(t, app.DB, 2)
	_, foreign := testutil.SeedPoll(t, app.DB, 1)

	t.Run("option from another poll", func(t *testing.T) {
		resp := app.vote(t, pollID, foreign[0], nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Nil(t, findSessionCookie(resp))
	})

	t.Run("unknown poll", func(t *testing.T) {
		resp := app.vote(t, uuid.New(), uuid.New(), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("no rows written", func(t *testing.T) {
		var rows int
		require.NoError(t, app.DB.QueryRow(`SELECT COUNT(*) FROM votes WHERE poll_id = $1`, pollID).Scan(&rows))
		assert.Zero(t, rows)
	})

	t.Run("health", func(t *testing.T) {
		resp, err := app.Client.Get(app.Server.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
