// Package capture turns screen observations into persisted draft records:
// it resolves the recognized card text, reconciles the result with the
// stored record, uploads the screenshot when the record changes and
// announces the outcome.
package capture

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ramonehamilton/draft-claw/internal/eternal/cards"
	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
	"github.com/ramonehamilton/draft-claw/internal/eternal/resolver"
	"github.com/ramonehamilton/draft-claw/internal/events"
	"github.com/ramonehamilton/draft-claw/internal/metrics"
	"github.com/ramonehamilton/draft-claw/internal/storage"
)

// Store persists reconciled records.
type Store interface {
	SaveObservation(ctx context.Context, observed draft.Record, prepare storage.PrepareFunc) (storage.SaveResult, error)
}

// Pipeline processes one observation at a time. It is safe for concurrent
// use; the store serializes writes to the same pick.
type Pipeline struct {
	assembler  *draft.Assembler
	store      Store
	uploader   Uploader
	dispatcher *events.EventDispatcher
	metrics    *metrics.DraftMetrics
	logger     *slog.Logger
}

// PipelineConfig holds the collaborators of a Pipeline. Uploader,
// Dispatcher and Metrics are optional.
type PipelineConfig struct {
	Catalog    *cards.Catalog
	Resolver   *resolver.Resolver
	Ratings    cards.Ratings
	Lenient    bool
	Store      Store
	Uploader   Uploader
	Dispatcher *events.EventDispatcher
	Metrics    *metrics.DraftMetrics
	Logger     *slog.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Uploader == nil {
		cfg.Uploader = NoopUploader{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewDraftMetrics()
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = events.NewEventDispatcher(cfg.Logger)
	}
	logger := cfg.Logger.With("component", "capture")

	names := &meteredResolver{resolver: cfg.Resolver, metrics: cfg.Metrics, logger: logger}
	return &Pipeline{
		assembler:  draft.NewAssembler(names, cfg.Catalog, cfg.Ratings, cfg.Lenient),
		store:      cfg.Store,
		uploader:   cfg.Uploader,
		dispatcher: cfg.Dispatcher,
		metrics:    cfg.Metrics,
		logger:     logger,
	}
}

// Process assembles, reconciles and persists one observation for gameID.
// The screenshot is uploaded only when the stored record is going to be
// overwritten; an upload failure leaves the stored record untouched.
func (p *Pipeline) Process(ctx context.Context, gameID string, obs draft.Observation) (storage.SaveResult, error) {
	start := time.Now()

	observed, err := p.assembler.Assemble(gameID, obs)
	if err != nil {
		p.metrics.RecordObservation(time.Since(start), false)
		p.reject(ctx, gameID, obs, err)
		return storage.SaveResult{}, err
	}

	result, err := p.store.SaveObservation(ctx, observed, p.prepare(obs.ImagePath))
	p.metrics.RecordObservation(time.Since(start), err == nil)
	if err != nil {
		p.reject(ctx, gameID, obs, err)
		return storage.SaveResult{}, err
	}
	p.metrics.RecordReconcile(result.Written)

	rec := result.Record
	if result.Written {
		p.dispatcher.Dispatch(events.NewTypedEvent(ctx, events.TypeRecordSaved, events.RecordSavedEvent{
			GameID:        rec.GameID,
			PickID:        rec.PickID,
			Label:         rec.Label(),
			OfferedCards:  rec.OfferedCards,
			SelectedIndex: rec.SelectedIndex,
			ImageURL:      rec.ImageURL,
		}))
	} else {
		p.dispatcher.Dispatch(events.NewTypedEvent(ctx, events.TypeRecordSkipped, events.RecordSkippedEvent{
			GameID: rec.GameID,
			PickID: rec.PickID,
			Label:  rec.Label(),
		}))
	}
	return result, nil
}

func (p *Pipeline) prepare(imagePath string) storage.PrepareFunc {
	if imagePath == "" {
		return nil
	}
	return func(ctx context.Context, merged draft.Record) (draft.Record, error) {
		start := time.Now()
		link, err := p.uploader.Upload(ctx, imagePath)
		p.metrics.RecordUpload(time.Since(start), err)
		if err != nil {
			return merged, err
		}
		merged.ImageURL = link
		return merged, nil
	}
}

func (p *Pipeline) reject(ctx context.Context, gameID string, obs draft.Observation, err error) {
	payload := events.ObservationRejectedEvent{
		GameID:    gameID,
		PickCount: obs.PickCount,
		Reason:    err.Error(),
	}
	var incomplete *draft.IncompleteObservationError
	if errors.As(err, &incomplete) {
		payload.Expected = incomplete.Expected
		payload.Resolved = incomplete.Resolved
	}
	p.logger.Warn("observation rejected", "game_id", gameID, "pick_count", obs.PickCount, "error", err)
	p.dispatcher.Dispatch(events.NewTypedEvent(ctx, events.TypeObservationRejected, payload))
}

// meteredResolver counts resolution outcomes while resolving.
type meteredResolver struct {
	resolver *resolver.Resolver
	metrics  *metrics.DraftMetrics
	logger   *slog.Logger
}

func (m *meteredResolver) ResolveMany(fragments []string) []string {
	start := time.Now()
	names := make([]string, 0, len(fragments))
	var ambiguous, unmatched int
	for _, res := range m.resolver.ResolveEach(fragments) {
		switch {
		case res.Err == nil:
			names = append(names, res.Name)
		case errors.Is(res.Err, resolver.ErrAmbiguousMatch):
			ambiguous++
			m.logger.Debug("fragment dropped", "error", res.Err)
		default:
			unmatched++
			m.logger.Debug("fragment dropped", "error", res.Err)
		}
	}
	m.metrics.RecordResolve(time.Since(start), len(names), ambiguous, unmatched)
	return names
}
