package domain

import "github.com/google/uuid"

// TallyUpdate is published on a poll's topic every time one of its option
// counters moves.
type TallyUpdate struct {
	PollOptionID uuid.UUID `json:"pollOptionId"`
	Votes        int64     `json:"votes"`
}
