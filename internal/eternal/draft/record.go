package draft

import (
	"slices"
	"time"
)

// Record is what was offered, and eventually picked, at one pick of one
// game. GameID and PickID form the key.
type Record struct {
	GameID        string    `json:"game_id"`
	PickID        int       `json:"pick_id"`
	OfferedCards  []string  `json:"offered_cards"`
	SelectedIndex *int      `json:"selected_index,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	SelectionText string    `json:"selection_text"`
	Decklist      []string  `json:"decklist"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Position returns the record's pick position.
func (r Record) Position() (Position, error) {
	return PositionOf(r.PickID)
}

// Label returns the "p<pack>p<pick>" label, or "" for an invalid pick id.
func (r Record) Label() string {
	pos, err := r.Position()
	if err != nil {
		return ""
	}
	return pos.Label()
}

// Committed reports whether a selection has been written.
func (r Record) Committed() bool {
	return r.SelectedIndex != nil
}

// Selected returns the name of the committed card.
func (r Record) Selected() (string, bool) {
	if r.SelectedIndex == nil {
		return "", false
	}
	i := *r.SelectedIndex
	if i < 0 || i >= len(r.OfferedCards) {
		return "", false
	}
	return r.OfferedCards[i], true
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := r
	out.OfferedCards = slices.Clone(r.OfferedCards)
	out.Decklist = slices.Clone(r.Decklist)
	if r.SelectedIndex != nil {
		i := *r.SelectedIndex
		out.SelectedIndex = &i
	}
	return out
}

// Reconcile merges a fresh observation with the stored record for the same
// pick and decides whether the merge must be written.
//
// With nothing stored the observation is written as is. Otherwise a stored
// selection is always carried forward, and a write is needed only when the
// offered cards changed or the stored record still lacks an image. When no
// write is needed the stored image reference is kept on the merged record.
// Votes are stored separately and are never touched here.
func Reconcile(observed Record, stored *Record) (Record, bool) {
	merged := observed.Clone()
	if stored == nil {
		return merged, true
	}

	if stored.SelectedIndex != nil {
		i := *stored.SelectedIndex
		merged.SelectedIndex = &i
	}
	if !stored.CreatedAt.IsZero() {
		merged.CreatedAt = stored.CreatedAt
	}

	overwrite := !slices.Equal(observed.OfferedCards, stored.OfferedCards) || stored.ImageURL == ""
	if !overwrite && merged.ImageURL == "" {
		merged.ImageURL = stored.ImageURL
	}
	return merged, overwrite
}
