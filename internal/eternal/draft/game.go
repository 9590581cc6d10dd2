package draft

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GameIDLength is the length of generated game ids.
const GameIDLength = 8

const gameIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Game is one draft session. OwnerID is empty until someone claims it.
type Game struct {
	ID        string    `json:"game_id"`
	OwnerID   string    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsOwner reports whether user owns the game.
func (g Game) IsOwner(user string) bool {
	return g.OwnerID != "" && g.OwnerID == user
}

// NewGameID returns a random alphanumeric game id.
func NewGameID() (string, error) {
	id := make([]byte, GameIDLength)
	base := big.NewInt(int64(len(gameIDAlphabet)))
	for i := range id {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("failed to generate game id: %w", err)
		}
		id[i] = gameIDAlphabet[n.Int64()]
	}
	return string(id), nil
}

// ValidGameID reports whether id looks like a generated game id.
func ValidGameID(id string) bool {
	if len(id) != GameIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
