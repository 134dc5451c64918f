package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollvotes/internal/core/domain"
)

type VoteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) *VoteRepository {
	return &VoteRepository{
		db: db,
	}
}

func (r *VoteRepository) GetBySessionAndPoll(ctx context.Context, sessionID string, pollID uuid.UUID) (*domain.Vote, error) {
	query := `
		SELECT id, session_id, poll_id, poll_option_id, created_at
		FROM votes
		WHERE session_id = $1 AND poll_id = $2
	`
	vote := &domain.Vote{}
	err := r.db.QueryRowContext(ctx, query, sessionID, pollID).Scan(
		&vote.ID,
		&vote.SessionID,
		&vote.PollID,
		&vote.PollOptionID,
		&vote.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vote: %w", classify(err))
	}
	return vote, nil
}

func (r *VoteRepository) SaveVote(ctx context.Context, vote *domain.Vote) error {
	if err := insertVote(ctx, r.db, vote); err != nil {
		return fmt.Errorf("failed to save vote: %w", classify(err))
	}
	return nil
}

func (r *VoteRepository) ReplaceVote(ctx context.Context, previousID uuid.UUID, vote *domain.Vote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE id = $1`, previousID); err != nil {
		return fmt.Errorf("failed to delete vote: %w", classify(err))
	}

	if err := insertVote(ctx, tx, vote); err != nil {
		return fmt.Errorf("failed to save vote: %w", classify(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", classify(err))
	}

	return nil
}

func (r *VoteRepository) ListPollIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM polls ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", classify(err))
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan poll id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return ids, nil
}

// CountByOption counts votes per option of the poll. Options without votes
// are reported with zero.
func (r *VoteRepository) CountByOption(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error) {
	query := `
		SELECT o.id, COUNT(v.id)
		FROM poll_options o
		LEFT JOIN votes v ON v.poll_option_id = o.id AND v.poll_id = o.poll_id
		WHERE o.poll_id = $1
		GROUP BY o.id
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", classify(err))
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var optionID uuid.UUID
		var count int64
		if err := rows.Scan(&optionID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[optionID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote counts: %w", err)
	}
	return counts, nil
}

// Ping reports whether the store is reachable.
func (r *VoteRepository) Ping(ctx context.Context) error {
	return classify(r.db.PingContext(ctx))
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertVote(ctx context.Context, db execer, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (id, session_id, poll_id, poll_option_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := db.ExecContext(ctx, query, vote.ID, vote.SessionID, vote.PollID, vote.PollOptionID, vote.CreatedAt)
	return err
}
