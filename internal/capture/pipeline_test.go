package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/draft-claw/internal/eternal/cards"
	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
	"github.com/ramonehamilton/draft-claw/internal/eternal/resolver"
	"github.com/ramonehamilton/draft-claw/internal/events"
	"github.com/ramonehamilton/draft-claw/internal/metrics"
	"github.com/ramonehamilton/draft-claw/internal/storage"
)

type fakeUploader struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if f.err != nil {
		return "", f.err
	}
	return "https://img.example/" + path, nil
}

func (f *fakeUploader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type testEnv struct {
	service  *storage.Service
	pipeline *Pipeline
	uploader *fakeUploader
	metrics  *metrics.DraftMetrics
	events   *[]events.Event
}

func setupPipeline(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := storage.NewTestDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	service := storage.NewService(db, logger)

	catalog, err := cards.NewCatalog([]cards.Card{
		{Name: "card alpha", Cost: 1, Influence: cards.Influence{cards.FactionFire}, Rarity: cards.RarityCommon},
		{Name: "card beta", Cost: 2, Rarity: cards.RarityRare},
		{Name: "card omega", Cost: 3, Rarity: cards.RarityLegendary},
	})
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []events.Event
	dispatcher := events.NewEventDispatcher(logger)
	dispatcher.Register(events.ObserverFunc{Name: "recorder", Fn: func(e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e)
		return nil
	}})

	env := &testEnv{
		service:  service,
		uploader: &fakeUploader{},
		metrics:  metrics.NewDraftMetrics(),
		events:   &seen,
	}
	env.pipeline = NewPipeline(PipelineConfig{
		Catalog:    catalog,
		Resolver:   resolver.New(catalog),
		Ratings:    cards.Ratings{"card alpha": "A"},
		Store:      service,
		Uploader:   env.uploader,
		Dispatcher: dispatcher,
		Metrics:    env.metrics,
		Logger:     logger,
	})
	return env
}

func eventTypes(evs []events.Event) []string {
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}

func TestProcessWritesThenSkips(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()
	obs := draft.Observation{
		PickCount: "Pick 11",
		Cards:     []string{"caru alpha", "card beta"},
		ImagePath: "shot.png",
	}

	result, err := env.pipeline.Process(ctx, "game0001", obs)
	require.NoError(t, err)
	assert.True(t, result.Written)
	assert.Equal(t, []string{"card alpha", "card beta"}, result.Record.OfferedCards)
	assert.Equal(t, "https://img.example/shot.png", result.Record.ImageURL)

	stored, err := env.service.GetRecord(ctx, "game0001", 11)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "https://img.example/shot.png", stored.ImageURL)
	assert.Contains(t, stored.SelectionText, "[A ] C 1F")

	// Same cards again: nothing is uploaded or written.
	result, err = env.pipeline.Process(ctx, "game0001", obs)
	require.NoError(t, err)
	assert.False(t, result.Written)
	assert.Equal(t, 1, env.uploader.count())

	assert.Equal(t, []string{events.TypeRecordSaved, events.TypeRecordSkipped}, eventTypes(*env.events))

	stats := env.metrics.GetStats()
	assert.Equal(t, uint64(2), stats.ObservationsAccepted)
	assert.Equal(t, uint64(1), stats.RecordsWritten)
	assert.Equal(t, uint64(1), stats.RecordsSkipped)
	assert.Equal(t, uint64(4), stats.FragmentsResolved)
	assert.Equal(t, uint64(1), stats.Uploads)
}

func TestProcessUploadFailureKeepsStoredRecord(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()
	env.uploader.err = errors.New("host down")

	_, err := env.pipeline.Process(ctx, "game0001", draft.Observation{
		PickCount: "Pick 12",
		Cards:     []string{"card omega"},
		ImagePath: "shot.png",
	})
	require.Error(t, err)

	stored, err := env.service.GetRecord(ctx, "game0001", 12)
	require.NoError(t, err)
	assert.Nil(t, stored)

	stats := env.metrics.GetStats()
	assert.Equal(t, uint64(1), stats.UploadErrors)
	assert.Equal(t, uint64(1), stats.ObservationsRejected)
	assert.Equal(t, []string{events.TypeObservationRejected}, eventTypes(*env.events))
}

func TestProcessWithoutImageSkipsUpload(t *testing.T) {
	env := setupPipeline(t)

	result, err := env.pipeline.Process(context.Background(), "game0001", draft.Observation{
		PickCount: "Pick 12",
		Cards:     []string{"card omega"},
	})
	require.NoError(t, err)
	assert.True(t, result.Written)
	assert.Empty(t, result.Record.ImageURL)
	assert.Zero(t, env.uploader.count())
}

func TestProcessRejectsIncompleteObservation(t *testing.T) {
	env := setupPipeline(t)

	_, err := env.pipeline.Process(context.Background(), "game0001", draft.Observation{
		PickCount: "Pick 11",
		Cards:     []string{"card alpha", ""},
	})
	require.ErrorIs(t, err, draft.ErrIncompleteObservation)

	require.Len(t, *env.events, 1)
	payload, ok := events.GetTypedData[events.ObservationRejectedEvent]((*env.events)[0])
	require.True(t, ok)
	assert.Equal(t, 2, payload.Expected)
	assert.Equal(t, 1, payload.Resolved)
	assert.Equal(t, uint64(1), env.metrics.GetStats().FragmentsUnmatched)
}

func TestProcessRejectsBadPickCount(t *testing.T) {
	env := setupPipeline(t)

	_, err := env.pipeline.Process(context.Background(), "game0001", draft.Observation{
		PickCount: "Pick 99",
		Cards:     []string{"card alpha"},
	})
	assert.ErrorIs(t, err, draft.ErrInvalidPick)
}
