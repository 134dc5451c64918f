package domain

import "errors"

var (
	ErrPollNotFound     = errors.New("poll not found")
	ErrInvalidOption    = errors.New("invalid option for this poll")
	ErrAlreadyVoted     = errors.New("session has already voted for this option")
	ErrVoteConflict     = errors.New("another vote for this poll is being recorded")
	ErrStoreUnavailable = errors.New("vote store unavailable")
)
