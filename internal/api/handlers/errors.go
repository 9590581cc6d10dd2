// Package handlers implements the REST API endpoints.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/draft-claw/internal/api/response"
	"github.com/ramonehamilton/draft-claw/internal/capture"
	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
	"github.com/ramonehamilton/draft-claw/internal/eternal/resolver"
	"github.com/ramonehamilton/draft-claw/internal/storage"
)

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, draft.ErrInvalidPick),
		errors.Is(err, draft.ErrIncompleteObservation),
		errors.Is(err, draft.ErrInvalidIndex),
		errors.Is(err, resolver.ErrNoMatch),
		errors.Is(err, resolver.ErrAmbiguousMatch),
		errors.Is(err, capture.ErrUnsafeImagePath):
		response.BadRequest(w, err)
	case errors.Is(err, storage.ErrNotFound):
		response.NotFound(w, err)
	case errors.Is(err, draft.ErrNotOwner):
		response.Forbidden(w, err)
	case errors.Is(err, draft.ErrAlreadyCommitted),
		errors.Is(err, draft.ErrNoVotes),
		errors.Is(err, storage.ErrGameOwned):
		response.Conflict(w, err)
	case errors.Is(err, capture.ErrUploadRejected):
		response.BadGateway(w, err)
	default:
		response.InternalError(w, err)
	}
}

func gameIDParam(r *http.Request) (string, error) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		return "", errors.New("game ID is required")
	}
	return gameID, nil
}

func pickIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "pickID")
	pickID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", draft.ErrInvalidPick, raw)
	}
	if _, err := draft.PositionOf(pickID); err != nil {
		return 0, err
	}
	return pickID, nil
}
