package models

import "testing"

func TestColorRankOrdering(t *testing.T) {
	colors := AllColors()
	for i := 1; i < len(colors); i++ {
		if colors[i-1].Rank() >= colors[i].Rank() {
			t.Errorf("Expected %q to rank before %q", colors[i-1], colors[i])
		}
	}
	if ColorUnknown.Rank() <= ColorLand.Rank() {
		t.Error("Expected Unknown to rank after Land")
	}
}

func TestRarityRankOrdering(t *testing.T) {
	order := []Rarity{RarityMythic, RarityRare, RarityUncommon, RarityCommon, RaritySpecial, RarityUnknown}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Errorf("Expected %q to rank before %q", order[i-1], order[i])
		}
	}
}

func TestRarityFromScryfall(t *testing.T) {
	tests := []struct {
		input    string
		expected Rarity
	}{
		{"mythic", RarityMythic},
		{"rare", RarityRare},
		{"uncommon", RarityUncommon},
		{"common", RarityCommon},
		{"special", RaritySpecial},
		{"bonus", RaritySpecial},
		{"gibberish", RarityUnknown},
		{"", RarityUnknown},
	}

	for _, tt := range tests {
		got := RarityFromScryfall(tt.input)
		if got != tt.expected {
			t.Errorf("RarityFromScryfall(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestHasVariant(t *testing.T) {
	plain := LineItem{CardName: "Opt"}
	if plain.HasVariant() {
		t.Error("Expected no variant")
	}
	variant := LineItem{CardName: "Opt", Variant: "Extended Art"}
	if !variant.HasVariant() {
		t.Error("Expected variant to be detected")
	}
	foil := LineItem{CardName: "Opt", Foil: true}
	if foil.HasVariant() {
		t.Error("Expected foil alone not to count as a variant printing")
	}
}
