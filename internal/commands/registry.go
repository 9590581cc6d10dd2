package commands

import (
	"context"
	"sync"

	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
)

// OwnerLookup finds the newest game a user owns.
type OwnerLookup interface {
	LatestGameByOwner(ctx context.Context, user string) (*draft.Game, error)
}

// Registry remembers which game each user is following. Users that never
// registered fall back to the newest game they own.
type Registry struct {
	mu     sync.RWMutex
	games  map[string]string
	owners OwnerLookup
}

// NewRegistry creates an empty registry. owners may be nil.
func NewRegistry(owners OwnerLookup) *Registry {
	return &Registry{games: make(map[string]string), owners: owners}
}

// Register points user at gameID.
func (r *Registry) Register(user, gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[user] = gameID
}

// Lookup returns the game user follows.
func (r *Registry) Lookup(ctx context.Context, user string) (string, bool, error) {
	r.mu.RLock()
	gameID, ok := r.games[user]
	r.mu.RUnlock()
	if ok {
		return gameID, true, nil
	}
	if r.owners == nil {
		return "", false, nil
	}

	game, err := r.owners.LatestGameByOwner(ctx, user)
	if err != nil || game == nil {
		return "", false, err
	}
	r.Register(user, game.ID)
	return game.ID, true, nil
}
