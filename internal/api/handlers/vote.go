package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ramonehamilton/draft-claw/internal/api/response"
	"github.com/ramonehamilton/draft-claw/internal/commands"
	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
	"github.com/ramonehamilton/draft-claw/internal/events"
	"github.com/ramonehamilton/draft-claw/internal/metrics"
	"github.com/ramonehamilton/draft-claw/internal/storage"
)

// VoteHandler handles voting and committing picks.
type VoteHandler struct {
	service    *storage.Service
	dispatcher *events.EventDispatcher
	metrics    *metrics.DraftMetrics
}

// NewVoteHandler creates a new VoteHandler.
func NewVoteHandler(service *storage.Service, dispatcher *events.EventDispatcher, m *metrics.DraftMetrics) *VoteHandler {
	return &VoteHandler{service: service, dispatcher: dispatcher, metrics: m}
}

// VoteRequest casts a vote. Index is 0-based; when it is absent Card is
// matched against the offered cards.
type VoteRequest struct {
	User  string `json:"user"`
	Index *int   `json:"index,omitempty"`
	Card  string `json:"card,omitempty"`
}

// CommitRequest commits the winning vote.
type CommitRequest struct {
	User string `json:"user"`
}

// VotesResponse summarizes the votes of a pick.
type VotesResponse struct {
	Votes        []draft.Vote      `json:"votes"`
	Tally        []draft.VoteCount `json:"tally"`
	WinningIndex *int              `json:"winning_index"`
	State        string            `json:"state"`
}

// CommitResponse reports a commit.
type CommitResponse struct {
	Record  RecordView `json:"record"`
	Card    string     `json:"card"`
	Changed bool       `json:"changed"`
}

func (h *VoteHandler) record(w http.ResponseWriter, r *http.Request) (*draft.Record, bool) {
	gameID, err := gameIDParam(r)
	if err != nil {
		response.BadRequest(w, err)
		return nil, false
	}
	pickID, err := pickIDParam(r)
	if err != nil {
		response.BadRequest(w, err)
		return nil, false
	}
	rec, err := h.service.GetRecord(r.Context(), gameID, pickID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if rec == nil {
		response.NotFound(w, errors.New("record not found"))
		return nil, false
	}
	return rec, true
}

// CastVote records a user's vote for a pick.
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		response.BadRequest(w, errors.New("request body must contain a user"))
		return
	}

	var index int
	switch {
	case req.Index != nil:
		index = *req.Index
		if index < 0 || index >= len(rec.OfferedCards) {
			response.BadRequest(w, draft.ErrInvalidIndex)
			return
		}
	case req.Card != "":
		var err error
		if index, err = commands.VoteIndex(rec.OfferedCards, req.Card); err != nil {
			response.BadRequest(w, err)
			return
		}
	default:
		response.BadRequest(w, errors.New("request body must contain an index or a card"))
		return
	}

	vote := &draft.Vote{GameID: rec.GameID, PickID: rec.PickID, UserID: req.User, Index: index}
	if err := h.service.UpsertVote(r.Context(), vote); err != nil {
		writeError(w, err)
		return
	}
	h.metrics.IncrementVotes()
	h.dispatcher.Dispatch(events.NewTypedEvent(r.Context(), events.TypeVoteCast, events.VoteCastEvent{
		GameID: rec.GameID,
		PickID: rec.PickID,
		Label:  rec.Label(),
		UserID: req.User,
		Index:  index,
		Card:   rec.OfferedCards[index],
	}))
	response.Created(w, vote)
}

// GetVotes returns the votes, tally and current winner of a pick.
func (h *VoteHandler) GetVotes(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	votes, err := h.service.GetVotes(r.Context(), rec.GameID, rec.PickID)
	if err != nil {
		writeError(w, err)
		return
	}
	if votes == nil {
		votes = []draft.Vote{}
	}

	body := VotesResponse{
		Votes: votes,
		Tally: draft.Tally(votes),
		State: draft.StateOf(*rec).String(),
	}
	if winner, err := draft.WinningIndex(draft.InRange(*rec, votes)); err == nil {
		body.WinningIndex = &winner
	}
	response.Success(w, body)
}

// Commit commits the winning vote of a pick for the game owner.
func (h *VoteHandler) Commit(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		response.BadRequest(w, errors.New("request body must contain a user"))
		return
	}

	committed, changed, err := h.service.CommitPick(r.Context(), rec.GameID, rec.PickID, req.User)
	if err != nil {
		writeError(w, err)
		return
	}
	card, _ := committed.Selected()
	if changed {
		h.metrics.IncrementCommits()
		h.dispatcher.Dispatch(events.NewTypedEvent(r.Context(), events.TypePickCommitted, events.PickCommittedEvent{
			GameID: committed.GameID,
			PickID: committed.PickID,
			Label:  committed.Label(),
			UserID: req.User,
			Index:  *committed.SelectedIndex,
			Card:   card,
		}))
	}
	response.Success(w, CommitResponse{Record: viewOf(committed), Card: card, Changed: changed})
}
