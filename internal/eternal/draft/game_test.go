package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := NewGameID()
		require.NoError(t, err)
		assert.Len(t, id, GameIDLength)
		assert.True(t, ValidGameID(id), id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestValidGameID(t *testing.T) {
	assert.True(t, ValidGameID("aB3dE5gH"))
	assert.False(t, ValidGameID("short"))
	assert.False(t, ValidGameID("aB3dE5g!"))
}

func TestGameIsOwner(t *testing.T) {
	g := Game{ID: "x", OwnerID: "u1"}
	assert.True(t, g.IsOwner("u1"))
	assert.False(t, g.IsOwner("u2"))
	assert.False(t, Game{ID: "x"}.IsOwner(""))
}
