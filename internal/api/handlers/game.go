package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ramonehamilton/draft-claw/internal/api/response"
	"github.com/ramonehamilton/draft-claw/internal/events"
	"github.com/ramonehamilton/draft-claw/internal/storage"
)

// GameHandler handles draft game requests.
type GameHandler struct {
	service    *storage.Service
	dispatcher *events.EventDispatcher
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(service *storage.Service, dispatcher *events.EventDispatcher) *GameHandler {
	return &GameHandler{service: service, dispatcher: dispatcher}
}

// OwnerRequest claims a game.
type OwnerRequest struct {
	User string `json:"user"`
}

// ListGames returns the most recent games.
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	games, err := h.service.ListGames(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, games)
}

// CreateGame starts a new game with a generated id.
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.service.CreateGame(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, game)
}

// GetGame returns one game.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	game, err := h.service.GetGame(r.Context(), gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, game)
}

// SetOwner makes the requesting user the owner of the game.
func (h *GameHandler) SetOwner(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	var req OwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		response.BadRequest(w, errors.New("request body must contain a user"))
		return
	}

	game, err := h.service.OwnGame(r.Context(), gameID, req.User)
	if err != nil {
		writeError(w, err)
		return
	}
	h.dispatcher.Dispatch(events.NewTypedEvent(r.Context(), events.TypeGameOwned, events.GameOwnedEvent{
		GameID: game.ID,
		UserID: req.User,
	}))
	response.Success(w, game)
}
