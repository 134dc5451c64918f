package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollvotes/internal/core/domain"
	"github.com/vncsmyrnk/pollvotes/internal/core/ports"
)

const maxVoteBodyBytes = 1 << 16

var (
	errMalformedUUID = errors.New("malformed uuid")
	errTrailingData  = errors.New("unexpected data after request body")
)

type VoteHandler struct {
	service  ports.VoteService
	sessions *SessionCookies
}

func NewVoteHandler(service ports.VoteService, sessions *SessionCookies) *VoteHandler {
	return &VoteHandler{
		service:  service,
		sessions: sessions,
	}
}

type voteRequest struct {
	PollOptionID string `json:"pollOptionId"`
}

type voteResponse struct {
	SessionID string `json:"sessionId"`
}

// VoteOnPoll godoc
// @Summary      Votes on a poll option
// @Description  Records the caller's vote. A session cookie is issued on the first vote; voting again with another option switches the vote.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Param        pollId  path  string  true  "Poll ID"
// @Success      201
// @Failure      400
// @Failure      404
// @Failure      409
// @Failure      503
// @Router       /polls/{pollId}/votes [post]
func (h *VoteHandler) VoteOnPoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseUUID(chi.URLParam(r, "pollId"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid poll id.")
		return
	}

	req, err := decodeVoteRequest(w, r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	pollOptionID, err := parseUUID(req.PollOptionID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid poll option id.")
		return
	}

	input := ports.VoteInput{
		PollID:       pollID,
		PollOptionID: pollOptionID,
		SessionID:    h.sessions.Read(r),
	}

	result, err := h.service.Vote(r.Context(), input)
	if err != nil {
		h.writeVoteError(w, r, err)
		return
	}

	if result.NewSession {
		if err := h.sessions.Write(w, result.SessionID); err != nil {
			slog.ErrorContext(r.Context(), "failed to issue session cookie", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Internal server error.")
			return
		}
	}

	writeJSON(w, http.StatusCreated, voteResponse{SessionID: result.SessionID})
}

func (h *VoteHandler) writeVoteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrAlreadyVoted):
		writeMessage(w, http.StatusBadRequest, "You already voted on this poll.")
	case errors.Is(err, domain.ErrInvalidOption):
		writeMessage(w, http.StatusBadRequest, "Invalid option for this poll.")
	case errors.Is(err, domain.ErrPollNotFound):
		writeMessage(w, http.StatusNotFound, "Poll not found.")
	case errors.Is(err, domain.ErrVoteConflict):
		writeMessage(w, http.StatusConflict, "Another vote on this poll is being recorded.")
	case errors.Is(err, domain.ErrStoreUnavailable):
		slog.ErrorContext(r.Context(), "vote store unavailable", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "Service temporarily unavailable.")
	default:
		slog.ErrorContext(r.Context(), "failed to record vote", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// decodeVoteRequest reads exactly one JSON object. Unknown fields are ignored.
func decodeVoteRequest(w http.ResponseWriter, r *http.Request) (voteRequest, error) {
	var req voteRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxVoteBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return req, errTrailingData
	}
	return req, nil
}

// parseUUID accepts only the canonical hyphenated form.
func parseUUID(s string) (uuid.UUID, error) {
	if len(s) != 36 {
		return uuid.Nil, errMalformedUUID
	}
	return uuid.Parse(s)
}
