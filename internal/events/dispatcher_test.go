package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcherFiltersAndOrders(t *testing.T) {
	d := NewEventDispatcher(quietLogger())

	var got []string
	d.Register(ObserverFunc{Name: "all", Fn: func(e Event) error {
		got = append(got, "all:"+e.Type)
		return nil
	}})
	d.Register(ObserverFunc{Name: "votes", Types: []string{TypeVoteCast}, Fn: func(e Event) error {
		got = append(got, "votes:"+e.Type)
		return errors.New("ignored")
	}})
	require.Equal(t, 2, d.ObserverCount())

	d.Dispatch(NewTypedEvent(context.Background(), TypeVoteCast, VoteCastEvent{}))
	d.Dispatch(NewTypedEvent(context.Background(), TypeRecordSaved, RecordSavedEvent{}))

	assert.Equal(t, []string{"all:vote:cast", "votes:vote:cast", "all:record:saved"}, got)
}

func TestDispatcherUnregisterAndClear(t *testing.T) {
	d := NewEventDispatcher(quietLogger())
	a := &LogObserver{logger: quietLogger()}
	b := NewLogObserver(quietLogger(), slog.LevelInfo)

	d.Register(a)
	d.Register(b)
	d.Unregister(a)
	assert.Equal(t, 1, d.ObserverCount())

	d.Clear()
	assert.Equal(t, 0, d.ObserverCount())
}

func TestDispatchAsync(t *testing.T) {
	d := NewEventDispatcher(quietLogger())

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		d.Register(ObserverFunc{Name: "async", Fn: func(Event) error {
			wg.Done()
			return nil
		}})
	}
	d.DispatchAsync(Event{Type: TypePickCommitted})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async observers were not notified")
	}
}

func TestLogObserver(t *testing.T) {
	o := NewLogObserver(quietLogger(), slog.LevelDebug)
	assert.True(t, o.ShouldHandle("anything"))
	assert.NoError(t, o.OnEvent(Event{Type: TypeGameOwned, Data: GameOwnedEvent{GameID: "g"}}))
	assert.Equal(t, "LogObserver", o.GetName())
}
