package cards

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmptyCatalog is returned when a catalog would contain no cards.
var ErrEmptyCatalog = errors.New("card catalog is empty")

// Catalog is the immutable set of canonical cards for a session.
// It is safe for concurrent readers once built; nothing mutates it after
// NewCatalog returns.
type Catalog struct {
	cards  []Card
	byName map[string]int
}

// NewCatalog builds a catalog from cards in source order. Cards with an
// empty name are ignored. When a name repeats (reprints across sets) the
// first occurrence wins.
func NewCatalog(cards []Card) (*Catalog, error) {
	c := &Catalog{
		cards:  make([]Card, 0, len(cards)),
		byName: make(map[string]int, len(cards)),
	}
	for _, card := range cards {
		card.Name = strings.TrimSpace(card.Name)
		if card.Name == "" {
			continue
		}
		if _, dup := c.byName[card.Name]; dup {
			continue
		}
		c.byName[card.Name] = len(c.cards)
		c.cards = append(c.cards, card)
	}
	if len(c.cards) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// LoadCatalog reads the JSON card data file (an array of card objects).
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card data: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes JSON card data.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("parse card data: %w", err)
	}
	return NewCatalog(cards)
}

// Get returns the card with the exact canonical name.
func (c *Catalog) Get(name string) (Card, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Card{}, false
	}
	return c.cards[i], true
}

// Has reports whether name is a canonical card name.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Names returns every canonical name in source order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.cards))
	for i, card := range c.cards {
		names[i] = card.Name
	}
	return names
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// Lookup maps names to cards, skipping names not in the catalog.
func (c *Catalog) Lookup(names []string) []Card {
	out := make([]Card, 0, len(names))
	for _, name := range names {
		if card, ok := c.Get(name); ok {
			out = append(out, card)
		}
	}
	return out
}
