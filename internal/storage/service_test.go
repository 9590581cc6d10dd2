package storage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/draft-claw/internal/eternal/cards"
	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
)

func observed(gameID string, pickID int, offered ...string) draft.Record {
	return draft.Record{GameID: gameID, PickID: pickID, OfferedCards: offered}
}

func withImage(url string) PrepareFunc {
	return func(_ context.Context, merged draft.Record) (draft.Record, error) {
		merged.ImageURL = url
		return merged, nil
	}
}

func TestService_Games(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	game, err := svc.CreateGame(ctx)
	require.NoError(t, err)
	assert.True(t, draft.ValidGameID(game.ID))

	_, err = svc.GetGame(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	owned, err := svc.OwnGame(ctx, "newgame1", "akio")
	require.NoError(t, err)
	assert.Equal(t, "akio", owned.OwnerID)

	// Same owner again is fine; someone else is rejected.
	_, err = svc.OwnGame(ctx, "newgame1", "akio")
	require.NoError(t, err)
	_, err = svc.OwnGame(ctx, "newgame1", "mallory")
	assert.ErrorIs(t, err, ErrGameOwned)

	latest, err := svc.LatestGameByOwner(ctx, "akio")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "newgame1", latest.ID)
}

func TestService_CurrentGameID(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	id, err := svc.CurrentGameID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, svc.SetCurrentGameID(ctx, "abcd1234"))
	id, err = svc.CurrentGameID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abcd1234", id)
}

func TestService_ChannelList(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	channels, err := svc.ChannelList(ctx)
	require.NoError(t, err)
	assert.Empty(t, channels)

	require.NoError(t, svc.SetChannelList(ctx, []string{"1234", "5678"}))
	channels, err = svc.ChannelList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1234", "5678"}, channels)
}

func TestService_SaveObservation(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	// First observation is always written.
	res, err := svc.SaveObservation(ctx, observed("g1", 1, "a", "b"), withImage("img1"))
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, "img1", res.Record.ImageURL)

	// Same cards with an image stored: nothing to do, prepare not called.
	called := false
	res, err = svc.SaveObservation(ctx, observed("g1", 1, "a", "b"), func(ctx context.Context, r draft.Record) (draft.Record, error) {
		called = true
		return r, nil
	})
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.False(t, called)
	assert.Equal(t, "img1", res.Record.ImageURL)

	// Different cards overwrite.
	res, err = svc.SaveObservation(ctx, observed("g1", 1, "a", "c"), withImage("img2"))
	require.NoError(t, err)
	assert.True(t, res.Written)

	stored, err := svc.GetRecord(ctx, "g1", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, stored.OfferedCards)
	assert.Equal(t, "img2", stored.ImageURL)
}

func TestService_SaveObservationPrepareError(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	boom := errors.New("upload failed")
	_, err := svc.SaveObservation(ctx, observed("g1", 2, "a"), func(context.Context, draft.Record) (draft.Record, error) {
		return draft.Record{}, boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := svc.GetRecord(ctx, "g1", 2)
	require.NoError(t, err)
	assert.Nil(t, stored, "nothing must be written when prepare fails")
}

func TestService_SaveObservationInvalidPick(t *testing.T) {
	svc := setupTestService(t)
	_, err := svc.SaveObservation(context.Background(), observed("g1", 49, "a"), nil)
	assert.ErrorIs(t, err, draft.ErrInvalidPick)
}

func TestService_SaveObservationSerializesPerKey(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	var writes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.SaveObservation(ctx, observed("g1", 3, "a", "b"), withImage("img"))
			assert.NoError(t, err)
			if res.Written {
				writes.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), writes.Load(), "only the first observation may write")
}

func TestService_CommitPick(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.OwnGame(ctx, "g1", "owner")
	require.NoError(t, err)
	_, err = svc.SaveObservation(ctx, observed("g1", 5, "a", "b", "c", "d"), withImage("img"))
	require.NoError(t, err)

	_, _, err = svc.CommitPick(ctx, "g1", 5, "owner")
	assert.ErrorIs(t, err, draft.ErrNoVotes)

	require.NoError(t, svc.UpsertVote(ctx, &draft.Vote{GameID: "g1", PickID: 5, UserID: "u1", Index: 2}))
	require.NoError(t, svc.UpsertVote(ctx, &draft.Vote{GameID: "g1", PickID: 5, UserID: "u2", Index: 3}))

	_, _, err = svc.CommitPick(ctx, "g1", 5, "u1")
	assert.ErrorIs(t, err, draft.ErrNotOwner)

	rec, changed, err := svc.CommitPick(ctx, "g1", 5, "owner")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, *rec.SelectedIndex, "tie goes to the lowest index")

	_, changed, err = svc.CommitPick(ctx, "g1", 5, "owner")
	require.NoError(t, err)
	assert.False(t, changed)

	// Votes move to index 3; committing now conflicts.
	require.NoError(t, svc.UpsertVote(ctx, &draft.Vote{GameID: "g1", PickID: 5, UserID: "u1", Index: 3}))
	_, _, err = svc.CommitPick(ctx, "g1", 5, "owner")
	assert.ErrorIs(t, err, draft.ErrAlreadyCommitted)

	// A later observation keeps the commitment and the votes.
	res, err := svc.SaveObservation(ctx, observed("g1", 5, "a", "b", "c", "e"), withImage("img2"))
	require.NoError(t, err)
	require.NotNil(t, res.Record.SelectedIndex)
	assert.Equal(t, 2, *res.Record.SelectedIndex)
	votes, err := svc.GetVotes(ctx, "g1", 5)
	require.NoError(t, err)
	assert.Len(t, votes, 2)

	_, _, err = svc.CommitPick(ctx, "g1", 6, "owner")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_UpsertVoteValidation(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.UpsertVote(ctx, &draft.Vote{GameID: "g", PickID: 0, UserID: "u"}), draft.ErrInvalidPick)
	assert.Error(t, svc.UpsertVote(ctx, &draft.Vote{GameID: "g", PickID: 1}))
	assert.ErrorIs(t, svc.UpsertVote(ctx, &draft.Vote{GameID: "g", PickID: 1, UserID: "u", Index: -1}), draft.ErrInvalidIndex)
}

func TestService_LatestAndList(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	rec, err := svc.LatestRecord(ctx, "g1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	for _, id := range []int{1, 2, 14} {
		_, err := svc.SaveObservation(ctx, observed("g1", id, "a"), nil)
		require.NoError(t, err)
	}
	rec, err = svc.LatestRecord(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 14, rec.PickID)

	all, err := svc.ListRecords(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestService_ImportRatings(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	n, err := svc.ImportRatings(ctx, "14.0", cards.Ratings{"a": "A", "b": "C"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Re-import replaces the format.
	_, err = svc.ImportRatings(ctx, "14.0", cards.Ratings{"c": "B"})
	require.NoError(t, err)

	r, err := svc.Ratings(ctx, "14.0")
	require.NoError(t, err)
	assert.Equal(t, cards.Ratings{"c": "B"}, r)
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	var k keyedMutex
	k.locks = map[string]*sync.Mutex{}

	unlock := k.lock("a")
	unlock()
	assert.Empty(t, k.locks)
	assert.Empty(t, k.refs)
}
