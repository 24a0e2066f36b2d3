package services

import (
	"reflect"
	"testing"

	"github.com/codyseavey/pullsheet/internal/models"
)

func item(name string, color models.Color, rarity models.Rarity, variant string, qty int, price float64) models.LineItem {
	return models.LineItem{
		Quantity:      qty,
		CardName:      name,
		Color:         color,
		Rarity:        rarity,
		Variant:       variant,
		UnitPrice:     price,
		ExtendedPrice: float64(qty) * price,
	}
}

func TestPlanPullOrderColorBuckets(t *testing.T) {
	items := []models.LineItem{
		item("Forest", models.ColorLand, models.RarityCommon, "", 1, 0.10),
		item("Lightning Bolt", models.ColorRed, models.RarityUncommon, "", 1, 0.50),
		item("Mystery Card", models.ColorUnknown, models.RarityUnknown, "", 1, 0.25),
		item("Counterspell", models.ColorBlue, models.RarityCommon, "", 1, 1.00),
		item("Sol Ring", models.ColorColorless, models.RarityUncommon, "", 1, 2.00),
		item("Swords to Plowshares", models.ColorWhite, models.RarityUncommon, "", 1, 3.00),
	}

	groups := PlanPullOrder(items)

	wantOrder := []models.Color{
		models.ColorWhite, models.ColorBlue, models.ColorRed,
		models.ColorColorless, models.ColorLand, models.ColorUnknown,
	}
	var gotOrder []models.Color
	for _, g := range groups {
		gotOrder = append(gotOrder, g.Color)
	}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Errorf("Expected color order %v, got %v", wantOrder, gotOrder)
	}
}

func TestPlanPullOrderRarityAndVariant(t *testing.T) {
	items := []models.LineItem{
		item("Zealous Conscripts", models.ColorRed, models.RarityRare, "", 1, 0.50),
		item("Anger", models.ColorRed, models.RarityUncommon, "", 1, 0.30),
		item("Arc Trail", models.ColorRed, models.RarityRare, "Extended Art", 1, 0.40),
		item("Bonecrusher Giant", models.ColorRed, models.RarityRare, "", 1, 1.20),
		item("Emrakul, the Aeons Torn", models.ColorRed, models.RarityMythic, "", 1, 30.00),
	}

	groups := PlanPullOrder(items)

	if len(groups) != 1 {
		t.Fatalf("Expected 1 color group, got %d", len(groups))
	}
	rarities := groups[0].Rarities
	if len(rarities) != 3 {
		t.Fatalf("Expected 3 rarity groups, got %d", len(rarities))
	}
	if rarities[0].Rarity != models.RarityMythic || rarities[1].Rarity != models.RarityRare || rarities[2].Rarity != models.RarityUncommon {
		t.Errorf("Expected rarity order M, R, U; got %q, %q, %q",
			rarities[0].Rarity, rarities[1].Rarity, rarities[2].Rarity)
	}

	// Within a rarity, variant printings come first, then name order.
	rares := rarities[1].Items
	if rares[0].CardName != "Arc Trail" {
		t.Errorf("Expected variant printing first, got %q", rares[0].CardName)
	}
	if rares[1].CardName != "Bonecrusher Giant" || rares[2].CardName != "Zealous Conscripts" {
		t.Errorf("Expected name order after variants, got %q then %q", rares[1].CardName, rares[2].CardName)
	}
}

func TestPlanPullOrderDeterministic(t *testing.T) {
	items := []models.LineItem{
		item("Opt", models.ColorBlue, models.RarityCommon, "", 2, 0.10),
		item("Brainstorm", models.ColorBlue, models.RarityCommon, "", 1, 0.50),
		item("Ponder", models.ColorBlue, models.RarityCommon, "", 3, 0.75),
	}

	first := PlanPullOrder(items)
	second := PlanPullOrder(items)
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical output for identical input")
	}

	// The input slice is not reordered.
	if items[0].CardName != "Opt" || items[2].CardName != "Ponder" {
		t.Error("Expected input slice to be left untouched")
	}
}

func TestPlanPullOrderQuantities(t *testing.T) {
	items := []models.LineItem{
		item("Opt", models.ColorBlue, models.RarityCommon, "", 2, 0.10),
		item("Brainstorm", models.ColorBlue, models.RarityCommon, "", 3, 0.50),
	}

	groups := PlanPullOrder(items)
	if groups[0].Quantity != 5 {
		t.Errorf("Expected color group quantity 5, got %d", groups[0].Quantity)
	}
	if groups[0].Rarities[0].Quantity != 5 {
		t.Errorf("Expected rarity group quantity 5, got %d", groups[0].Rarities[0].Quantity)
	}
}

func TestSummarize(t *testing.T) {
	items := []models.LineItem{
		item("Opt", models.ColorBlue, models.RarityCommon, "", 2, 0.10),
		item("Mystery", models.ColorUnknown, models.RarityUnknown, "", 1, 1.00),
	}
	report := models.ParseReport{UnattributableLines: 3, PriceMismatches: 1}

	summary := Summarize(items, report)
	if summary.TotalCards != 3 {
		t.Errorf("Expected 3 total cards, got %d", summary.TotalCards)
	}
	if summary.TotalLineItems != 2 {
		t.Errorf("Expected 2 line items, got %d", summary.TotalLineItems)
	}
	if absFloat(summary.TotalValue-1.20) > 1e-9 {
		t.Errorf("Expected total value 1.20, got %.2f", summary.TotalValue)
	}
	if summary.UnresolvedColors != 1 {
		t.Errorf("Expected 1 unresolved color, got %d", summary.UnresolvedColors)
	}
	if summary.UnattributableLines != 3 || summary.PriceMismatches != 1 {
		t.Errorf("Expected report counters carried through, got %d and %d",
			summary.UnattributableLines, summary.PriceMismatches)
	}
}
