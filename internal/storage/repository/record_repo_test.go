package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
)

func TestRecordRepository_UpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewGameRepository(db).Create(ctx, &draft.Game{ID: "g1"}))
	repo := NewRecordRepository(db)

	rec, err := repo.Get(ctx, "g1", 1)
	require.NoError(t, err)
	assert.Nil(t, rec)

	in := &draft.Record{
		GameID:        "g1",
		PickID:        1,
		OfferedCards:  []string{"card alpha", "card beta"},
		SelectionText: "1  [A ] ...\n",
		Decklist:      []string{"2x 1F card alpha"},
	}
	require.NoError(t, repo.Upsert(ctx, in))

	got, err := repo.Get(ctx, "g1", 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in.OfferedCards, got.OfferedCards)
	assert.Equal(t, in.Decklist, got.Decklist)
	assert.Equal(t, in.SelectionText, got.SelectionText)
	assert.Nil(t, got.SelectedIndex)
	assert.Empty(t, got.ImageURL)

	idx := 1
	got.SelectedIndex = &idx
	got.ImageURL = "https://i.example.test/x.png"
	require.NoError(t, repo.Upsert(ctx, got))

	again, err := repo.Get(ctx, "g1", 1)
	require.NoError(t, err)
	require.NotNil(t, again.SelectedIndex)
	assert.Equal(t, 1, *again.SelectedIndex)
	assert.Equal(t, "https://i.example.test/x.png", again.ImageURL)
}

func TestRecordRepository_LatestAndList(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewGameRepository(db).Create(ctx, &draft.Game{ID: "g1"}))
	repo := NewRecordRepository(db)

	latest, err := repo.Latest(ctx, "g1")
	require.NoError(t, err)
	assert.Nil(t, latest)

	for _, id := range []int{3, 1, 13} {
		require.NoError(t, repo.Upsert(ctx, &draft.Record{GameID: "g1", PickID: id, OfferedCards: []string{"x"}}))
	}

	latest, err = repo.Latest(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 13, latest.PickID)

	all, err := repo.ListByGame(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 3, 13}, []int{all[0].PickID, all[1].PickID, all[2].PickID})
}

func TestRecordRepository_RejectsInvalidPick(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewGameRepository(db).Create(ctx, &draft.Game{ID: "g1"}))

	err := NewRecordRepository(db).Upsert(ctx, &draft.Record{GameID: "g1", PickID: 49})
	assert.Error(t, err)
}
