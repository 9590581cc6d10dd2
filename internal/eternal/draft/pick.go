// Package draft models the 48-pick Eternal draft: pick positions, draft
// records and their reconciliation, votes and commits.
package draft

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// PacksPerDraft is the number of packs opened in a draft.
	PacksPerDraft = 4
	// PicksPerPack is the number of picks taken from each pack.
	PicksPerPack = 12
	// MaxPickID is the last pick of the draft.
	MaxPickID = PacksPerDraft * PicksPerPack
)

// Position locates a pick inside the draft.
type Position struct {
	PickID        int `json:"pick_id"`
	Pack          int `json:"pack"`
	Pick          int `json:"pick"`
	ExpectedCount int `json:"expected_count"`
}

// PositionOf derives the pack, the pick within the pack and the number of
// cards that should be on offer. Pick ids outside 1..48 are rejected.
func PositionOf(pickID int) (Position, error) {
	if pickID < 1 || pickID > MaxPickID {
		return Position{}, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidPick, pickID, MaxPickID)
	}
	offset := (pickID - 1) % PicksPerPack
	return Position{
		PickID:        pickID,
		Pack:          (pickID-1)/PicksPerPack + 1,
		Pick:          offset + 1,
		ExpectedCount: PicksPerPack - offset,
	}, nil
}

// FromPackPick is the inverse of PositionOf.
func FromPackPick(pack, pick int) (Position, error) {
	if pack < 1 || pack > PacksPerDraft || pick < 1 || pick > PicksPerPack {
		return Position{}, fmt.Errorf("%w: p%dp%d", ErrInvalidPick, pack, pick)
	}
	return PositionOf((pack-1)*PicksPerPack + pick)
}

// Label renders the position as "p<pack>p<pick>".
func (p Position) Label() string {
	return fmt.Sprintf("p%dp%d", p.Pack, p.Pick)
}

func (p Position) String() string {
	return p.Label()
}

// Next returns the following pick. ok is false after the last pick.
func (p Position) Next() (next Position, ok bool) {
	next, err := PositionOf(p.PickID + 1)
	return next, err == nil
}

// ParsePickCount reads the on-screen pick counter, e.g. "Pick 13". The
// second whitespace-separated token is the pick id.
func ParsePickCount(s string) (Position, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return Position{}, fmt.Errorf("%w: unable to read pick count from %q", ErrInvalidPick, s)
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return Position{}, fmt.Errorf("%w: unable to read pick count from %q", ErrInvalidPick, s)
	}
	return PositionOf(id)
}

// ParseLabel parses a "p<pack>p<pick>" label.
func ParseLabel(s string) (Position, error) {
	var pack, pick int
	if _, err := fmt.Sscanf(strings.ToLower(strings.TrimSpace(s)), "p%dp%d", &pack, &pick); err != nil {
		return Position{}, fmt.Errorf("%w: bad label %q", ErrInvalidPick, s)
	}
	return FromPackPick(pack, pick)
}
