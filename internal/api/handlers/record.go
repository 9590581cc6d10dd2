package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ramonehamilton/draft-claw/internal/api/response"
	"github.com/ramonehamilton/draft-claw/internal/capture"
	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
	"github.com/ramonehamilton/draft-claw/internal/storage"
)

// RecordHandler serves draft records and accepts observations.
type RecordHandler struct {
	service  *storage.Service
	pipeline *capture.Pipeline
	inboxDir string
}

// NewRecordHandler creates a new RecordHandler. pipeline may be nil, in
// which case observations are refused. Screenshot paths in posted
// observations must be relative to inboxDir.
func NewRecordHandler(service *storage.Service, pipeline *capture.Pipeline, inboxDir string) *RecordHandler {
	return &RecordHandler{service: service, pipeline: pipeline, inboxDir: inboxDir}
}

// RecordView is a record with its pick label.
type RecordView struct {
	draft.Record
	Label string `json:"label"`
}

// ObservationResponse reports what happened to a posted observation.
type ObservationResponse struct {
	Record  RecordView `json:"record"`
	Written bool       `json:"written"`
}

func viewOf(rec draft.Record) RecordView {
	return RecordView{Record: rec, Label: rec.Label()}
}

// ListRecords returns every record of a game in pick order.
func (h *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	records, err := h.service.ListRecords(r.Context(), gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]RecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, viewOf(*rec))
	}
	response.Success(w, views)
}

// LatestRecord returns the newest record of a game.
func (h *RecordHandler) LatestRecord(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	rec, err := h.service.LatestRecord(r.Context(), gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	if rec == nil {
		response.NotFound(w, errors.New("no records for game"))
		return
	}
	response.Success(w, viewOf(*rec))
}

// GetRecord returns the record of one pick.
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	pickID, err := pickIDParam(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	rec, err := h.service.GetRecord(r.Context(), gameID, pickID)
	if err != nil {
		writeError(w, err)
		return
	}
	if rec == nil {
		response.NotFound(w, errors.New("record not found"))
		return
	}
	response.Success(w, viewOf(*rec))
}

// PostObservation runs an observation through the capture pipeline.
// It answers 201 when the record was written and 200 when it was already
// up to date.
func (h *RecordHandler) PostObservation(w http.ResponseWriter, r *http.Request) {
	if h.pipeline == nil {
		response.ServiceUnavailable(w, errors.New("card data is not loaded"))
		return
	}
	gameID, err := gameIDParam(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	var obs draft.Observation
	if err := json.NewDecoder(r.Body).Decode(&obs); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if obs.ImagePath != "" {
		path, err := capture.ResolveImagePath(h.inboxDir, obs.ImagePath)
		if err != nil {
			writeError(w, err)
			return
		}
		obs.ImagePath = path
	}

	result, err := h.pipeline.Process(r.Context(), gameID, obs)
	if err != nil {
		writeError(w, err)
		return
	}
	body := ObservationResponse{Record: viewOf(result.Record), Written: result.Written}
	if result.Written {
		response.Created(w, body)
		return
	}
	response.Success(w, body)
}
