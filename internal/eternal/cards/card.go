// Package cards holds the static Eternal card catalog used to resolve
// recognized card names during a draft.
package cards

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Rarity is the printed rarity of a card. Higher values are rarer, so
// Legendary > Rare > Uncommon > Common > Promo > None.
type Rarity int

const (
	RarityNone Rarity = iota
	RarityPromo
	RarityCommon
	RarityUncommon
	RarityRare
	RarityLegendary
)

var rarityNames = map[Rarity]string{
	RarityNone:      "None",
	RarityPromo:     "Promo",
	RarityCommon:    "Common",
	RarityUncommon:  "Uncommon",
	RarityRare:      "Rare",
	RarityLegendary: "Legendary",
}

var rarityLetters = map[Rarity]string{
	RarityNone:      "x",
	RarityPromo:     "P",
	RarityCommon:    "C",
	RarityUncommon:  "U",
	RarityRare:      "R",
	RarityLegendary: "L",
}

// ParseRarity parses either the full rarity name ("Legendary") or its
// single-letter code ("L"). Unknown values map to RarityNone.
func ParseRarity(s string) Rarity {
	s = strings.TrimSpace(s)
	for r, name := range rarityNames {
		if strings.EqualFold(s, name) || s == rarityLetters[r] {
			return r
		}
	}
	return RarityNone
}

func (r Rarity) String() string {
	if name, ok := rarityNames[r]; ok {
		return name
	}
	return rarityNames[RarityNone]
}

// Letter returns the one-letter code used in compact card text.
func (r Rarity) Letter() string {
	if l, ok := rarityLetters[r]; ok {
		return l
	}
	return rarityLetters[RarityNone]
}

// UnmarshalJSON accepts the rarity as a string.
func (r *Rarity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("rarity: %w", err)
	}
	*r = ParseRarity(s)
	return nil
}

// MarshalJSON writes the full rarity name.
func (r Rarity) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// Faction is one influence symbol.
type Faction byte

const (
	FactionFire    Faction = 'F'
	FactionTime    Faction = 'T'
	FactionJustice Faction = 'J'
	FactionPrimal  Faction = 'P'
	FactionShadow  Faction = 'S'
	FactionNone    Faction = 'x'
)

func parseFaction(c byte) Faction {
	switch Faction(c) {
	case FactionFire, FactionTime, FactionJustice, FactionPrimal, FactionShadow:
		return Faction(c)
	default:
		return FactionNone
	}
}

// Influence is the ordered list of influence symbols a card requires.
// The source data encodes it as "{F}{F}{J}".
type Influence []Faction

// ParseInfluence decodes the braced influence notation. Each symbol
// occupies three characters; anything unrecognized becomes FactionNone.
func ParseInfluence(s string) Influence {
	inf := Influence{}
	for i := 1; i < len(s); i += 3 {
		inf = append(inf, parseFaction(s[i]))
	}
	return inf
}

func (inf Influence) String() string {
	var b strings.Builder
	for _, f := range inf {
		b.WriteByte(byte(f))
	}
	return b.String()
}

// UnmarshalJSON accepts the braced string form.
func (inf *Influence) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("influence: %w", err)
	}
	*inf = ParseInfluence(s)
	return nil
}

// MarshalJSON writes the compact letter form ("FFJ").
func (inf Influence) MarshalJSON() ([]byte, error) {
	return json.Marshal(inf.String())
}

// Kind is the base card type.
type Kind string

const (
	KindUnit  Kind = "Unit"
	KindSpell Kind = "Spell"
	KindRelic Kind = "Relic"
	KindPower Kind = "Power"
	KindSite  Kind = "Site"
	KindCurse Kind = "Curse"
	KindNone  Kind = "None"
)

// CardType is the type line of a card, e.g. "Fast Spell".
type CardType struct {
	Kind Kind
	Fast bool
}

// ParseCardType splits the "Fast" keyword from the base type.
func ParseCardType(s string) CardType {
	ct := CardType{Kind: KindNone}
	for _, tok := range strings.Fields(s) {
		if tok == "Fast" {
			ct.Fast = true
			continue
		}
		if ct.Kind != KindNone {
			continue
		}
		switch k := Kind(tok); k {
		case KindUnit, KindSpell, KindRelic, KindPower, KindSite, KindCurse:
			ct.Kind = k
		}
	}
	return ct
}

func (ct CardType) String() string {
	if ct.Fast {
		return "Fast " + string(ct.Kind)
	}
	return string(ct.Kind)
}

// UnmarshalJSON accepts the type line string.
func (ct *CardType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("card type: %w", err)
	}
	*ct = ParseCardType(s)
	return nil
}

// MarshalJSON writes the type line string.
func (ct CardType) MarshalJSON() ([]byte, error) {
	return json.Marshal(ct.String())
}

// Card is one canonical catalog entry. Name is the unique key.
type Card struct {
	SetNumber     int       `json:"SetNumber"`
	Name          string    `json:"Name"`
	CardText      string    `json:"CardText"`
	Cost          int       `json:"Cost"`
	Influence     Influence `json:"Influence"`
	Attack        int       `json:"Attack"`
	Health        int       `json:"Health"`
	Rarity        Rarity    `json:"Rarity"`
	Type          CardType  `json:"Type"`
	ImageURL      string    `json:"ImageUrl"`
	DetailsURL    string    `json:"DetailsUrl"`
	DeckBuildable bool      `json:"DeckBuildable"`
	SetName       string    `json:"SetName"`
}

// HasStats reports whether attack/health are meaningful for the card.
func (c Card) HasStats() bool {
	return c.Type.Kind == KindUnit
}

// Text renders the compact one-line form used in draft selections:
// rarity letter, cost and influence, then the name.
func (c Card) Text() string {
	return fmt.Sprintf("%s %d%-6s %s", c.Rarity.Letter(), c.Cost, c.Influence.String(), c.Name)
}

// CostText renders cost and influence as shown in deck lists ("3FF").
func (c Card) CostText() string {
	return fmt.Sprintf("%d%s", c.Cost, c.Influence.String())
}
