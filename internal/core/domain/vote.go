package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is a session's current choice on a poll. A (SessionID, PollID) pair
// holds at most one vote at any time.
type Vote struct {
	ID           uuid.UUID `json:"id"`
	SessionID    string    `json:"session_id"`
	PollID       uuid.UUID `json:"poll_id"`
	PollOptionID uuid.UUID `json:"poll_option_id"`
	CreatedAt    time.Time `json:"created_at"`
}
