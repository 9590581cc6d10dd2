package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/draft-claw/internal/eternal/cards"
)

func TestRatingRepository(t *testing.T) {
	repo := NewRatingRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, []cards.Rating{
		{Format: "14.0", Name: "card alpha", Rating: "A"},
		{Format: "14.0", Name: "card beta", Rating: "C"},
		{Format: "15.1", Name: "card alpha", Rating: "B"},
	}))
	require.NoError(t, repo.Upsert(ctx, []cards.Rating{{Format: "14.0", Name: "card beta", Rating: "D+"}}))

	r, err := repo.GetByFormat(ctx, "14.0")
	require.NoError(t, err)
	assert.Equal(t, cards.Ratings{"card alpha": "A", "card beta": "D+"}, r)

	formats, err := repo.Formats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"14.0", "15.1"}, formats)

	n, err := repo.DeleteFormat(ctx, "15.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	r, err = repo.GetByFormat(ctx, "15.1")
	require.NoError(t, err)
	assert.Empty(t, r)
}
