package cards

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRarity(t *testing.T) {
	tests := []struct {
		in   string
		want Rarity
	}{
		{"Legendary", RarityLegendary},
		{"legendary", RarityLegendary},
		{"R", RarityRare},
		{"Uncommon", RarityUncommon},
		{"C", RarityCommon},
		{"Promo", RarityPromo},
		{"", RarityNone},
		{"Mythic", RarityNone},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseRarity(tt.in); got != tt.want {
				t.Errorf("ParseRarity(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRarityOrdering(t *testing.T) {
	assert.Greater(t, RarityLegendary, RarityRare)
	assert.Greater(t, RarityRare, RarityUncommon)
	assert.Greater(t, RarityUncommon, RarityCommon)
	assert.Greater(t, RarityCommon, RarityPromo)
	assert.Greater(t, RarityPromo, RarityNone)
}

func TestParseInfluence(t *testing.T) {
	assert.Equal(t, "FFJ", ParseInfluence("{F}{F}{J}").String())
	assert.Equal(t, "", ParseInfluence("").String())
	assert.Equal(t, "Sx", ParseInfluence("{S}{Q}").String())
}

func TestParseCardType(t *testing.T) {
	ct := ParseCardType("Fast Spell")
	assert.True(t, ct.Fast)
	assert.Equal(t, KindSpell, ct.Kind)
	assert.Equal(t, "Fast Spell", ct.String())

	ct = ParseCardType("Unit")
	assert.False(t, ct.Fast)
	assert.Equal(t, KindUnit, ct.Kind)

	assert.Equal(t, KindNone, ParseCardType("Weapon").Kind)
}

func TestCardJSON(t *testing.T) {
	raw := `{
		"SetNumber": 1,
		"Name": "Torch",
		"CardText": "Deal 2 damage to a unit.",
		"Cost": 1,
		"Influence": "{F}",
		"Attack": 0,
		"Health": 0,
		"Rarity": "Common",
		"Type": "Fast Spell",
		"ImageUrl": "https://example.test/torch.png",
		"DetailsUrl": "https://example.test/torch",
		"DeckBuildable": true,
		"SetName": "The Empty Throne"
	}`

	var c Card
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, "Torch", c.Name)
	assert.Equal(t, RarityCommon, c.Rarity)
	assert.Equal(t, "F", c.Influence.String())
	assert.True(t, c.Type.Fast)
	assert.False(t, c.HasStats())
	assert.Equal(t, "C 1F      Torch", c.Text())
	assert.Equal(t, "1F", c.CostText())
}

func TestCardTextUnit(t *testing.T) {
	c := Card{
		Name:      "Oni Ronin",
		Cost:      1,
		Influence: Influence{FactionFire},
		Attack:    1,
		Health:    1,
		Rarity:    RarityUncommon,
		Type:      CardType{Kind: KindUnit},
	}
	assert.True(t, c.HasStats())
	assert.Equal(t, "U 1F      Oni Ronin", c.Text())
}
