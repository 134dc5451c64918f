package postgres

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"github.com/vncsmyrnk/pollvotes/internal/core/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"

	constraintVotePoll = "votes_poll_id_fkey"
)

// classify maps driver errors onto domain errors, keeping the original in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == codeUniqueViolation:
			return fmt.Errorf("%w: %w", domain.ErrVoteConflict, err)
		case pqErr.Code == codeForeignKeyViolation && pqErr.Constraint == constraintVotePoll:
			return fmt.Errorf("%w: %w", domain.ErrPollNotFound, err)
		case pqErr.Code == codeForeignKeyViolation:
			return fmt.Errorf("%w: %w", domain.ErrInvalidOption, err)
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "57":
			// connection exception, operator intervention
			return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		return err
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return err
}
