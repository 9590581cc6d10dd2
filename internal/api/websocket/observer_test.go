package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/draft-claw/internal/events"
)

func TestWebSocketObserverFilters(t *testing.T) {
	all := NewWebSocketObserver(nil)
	assert.True(t, all.ShouldHandle(events.TypeRecordSaved))
	assert.Equal(t, "WebSocketObserver", all.GetName())

	commits := NewWebSocketObserver(nil, events.TypePickCommitted)
	assert.True(t, commits.ShouldHandle(events.TypePickCommitted))
	assert.False(t, commits.ShouldHandle(events.TypeVoteCast))

	assert.NoError(t, all.OnEvent(events.Event{Type: events.TypeVoteCast}))
}

func TestWebSocketObserverForwardsDispatchedEvents(t *testing.T) {
	hub := testHub(t)
	conn := dial(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	dispatcher := events.NewEventDispatcher(nil)
	dispatcher.Register(NewWebSocketObserver(hub))
	dispatcher.Dispatch(events.NewTypedEvent(context.Background(), events.TypePickCommitted, events.PickCommittedEvent{
		GameID: "game0001",
		PickID: 5,
		Label:  "p1p5",
		Index:  2,
		Card:   "card beta",
	}))

	received := readEvent(t, conn)
	assert.Equal(t, events.TypePickCommitted, received.Type)
	data, ok := received.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "p1p5", data["label"])
	assert.Equal(t, float64(2), data["index"])
}
