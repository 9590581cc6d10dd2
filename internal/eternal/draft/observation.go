package draft

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/ramonehamilton/draft-claw/internal/eternal/cards"
)

// Observation is one frame of recognized text from the screen reader.
type Observation struct {
	// PickCount is the raw pick counter, e.g. "Pick 13".
	PickCount string `json:"pick_count"`
	// Cards holds one raw fragment per card slot in display order.
	Cards []string `json:"cards"`
	// Deck holds the recognized deck list rows.
	Deck []DeckRow `json:"deck,omitempty"`
	// ImagePath is the screenshot the text was read from.
	ImagePath string `json:"image_path,omitempty"`
}

// DeckRow is a recognized deck list line: a name fragment and a count
// fragment such as "x2".
type DeckRow struct {
	Name  string `json:"name"`
	Count string `json:"count"`
}

// UnmarshalJSON accepts either {"name":..,"count":..} or ["name","count"].
func (d *DeckRow) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("deck row: expected 2 elements, got %d", len(pair))
		}
		d.Name, d.Count = pair[0], pair[1]
		return nil
	}
	type plain DeckRow
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("deck row: %w", err)
	}
	*d = DeckRow(p)
	return nil
}

// NameResolver resolves raw fragments to canonical names, dropping the
// ones that fail.
type NameResolver interface {
	ResolveMany(fragments []string) []string
}

// CardLookup returns catalog cards by canonical name.
type CardLookup interface {
	Get(name string) (cards.Card, bool)
}

// Assembler turns observations into draft records.
type Assembler struct {
	resolver NameResolver
	cards    CardLookup
	ratings  cards.Ratings
	lenient  bool
	now      func() time.Time
}

// NewAssembler creates an assembler. In lenient mode an observation that
// resolves fewer cards than expected is accepted as long as at least one
// card resolved.
func NewAssembler(resolver NameResolver, lookup CardLookup, ratings cards.Ratings, lenient bool) *Assembler {
	return &Assembler{
		resolver: resolver,
		cards:    lookup,
		ratings:  ratings,
		lenient:  lenient,
		now:      time.Now,
	}
}

// Assemble parses the pick counter, resolves the card fragments for the
// expected number of slots and renders the selection and deck text.
// Observations resolving fewer cards than the pick position expects fail
// with ErrIncompleteObservation.
func (a *Assembler) Assemble(gameID string, obs Observation) (Record, error) {
	pos, err := ParsePickCount(obs.PickCount)
	if err != nil {
		return Record{}, err
	}

	fragments := obs.Cards
	if len(fragments) > pos.ExpectedCount {
		fragments = fragments[:pos.ExpectedCount]
	}
	names := a.resolver.ResolveMany(fragments)

	if len(names) == 0 || (!a.lenient && len(names) < pos.ExpectedCount) {
		return Record{}, &IncompleteObservationError{
			PickID:   pos.PickID,
			Expected: pos.ExpectedCount,
			Resolved: len(names),
		}
	}

	offered := make([]cards.Card, 0, len(names))
	for _, name := range names {
		card, ok := a.cards.Get(name)
		if !ok {
			card = cards.Card{Name: name}
		}
		offered = append(offered, card)
	}

	now := a.now()
	return Record{
		GameID:        gameID,
		PickID:        pos.PickID,
		OfferedCards:  names,
		SelectionText: SelectionText(offered, a.ratings),
		Decklist:      a.deckList(obs.Deck),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (a *Assembler) deckList(rows []DeckRow) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		names := a.resolver.ResolveMany([]string{row.Name})
		if len(names) != 1 {
			continue
		}
		card, ok := a.cards.Get(names[0])
		if !ok {
			card = cards.Card{Name: names[0]}
		}
		out = append(out, DeckLine(card, digitsOnly(row.Count)))
	}
	return out
}

// SelectionText renders one line per offered card: the 1-based display
// index, the card's tier and its compact text.
func SelectionText(offered []cards.Card, ratings cards.Ratings) string {
	var b strings.Builder
	for i, card := range offered {
		fmt.Fprintf(&b, "%-2d [%-2s] %s\n", i+1, ratings.Label(card.Name), card.Text())
	}
	return b.String()
}

// DeckLine renders one deck list row, e.g. "2x 3FJ Torch".
func DeckLine(card cards.Card, count string) string {
	return fmt.Sprintf("%sx %-30s", count, card.CostText()+" "+card.Name)
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
