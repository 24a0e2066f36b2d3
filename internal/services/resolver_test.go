package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codyseavey/pullsheet/internal/models"
)

func newTestAttributeResolver(t *testing.T, baseURL string) *AttributeResolver {
	t.Helper()
	sets := NewSetResolver(nil, nil)
	sets.synced["Foundations"] = "fdn"

	resolver, err := NewAttributeResolver(newTestScryfallService(baseURL), sets, nil)
	if err != nil {
		t.Fatalf("Expected resolver construction to succeed, got %v", err)
	}
	return resolver
}

func TestResolveExactPathCached(t *testing.T) {
	exactCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/cards/fdn/") {
			t.Errorf("Unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		exactCalls++
		w.Write([]byte(`{
			"name": "Lightning Bolt",
			"rarity": "uncommon",
			"type_line": "Instant",
			"colors": ["R"],
			"image_uris": {"normal": "bolt.jpg"}
		}`))
	}))
	defer server.Close()

	resolver := newTestAttributeResolver(t, server.URL)
	items := []models.LineItem{
		{CardName: "Lightning Bolt", SetName: "Foundations", CollectorNumber: "123",
			Rarity: models.RarityUnknown, Color: models.ColorUnknown},
		{CardName: "Lightning Bolt", SetName: "Foundations", CollectorNumber: "123",
			Rarity: models.RarityUnknown, Color: models.ColorUnknown},
	}

	unresolved := resolver.ResolveAll(context.Background(), items)
	if unresolved != 0 {
		t.Fatalf("Expected 0 unresolved, got %d", unresolved)
	}
	if exactCalls != 1 {
		t.Errorf("Expected 1 external call for 2 identical records, got %d", exactCalls)
	}
	for i, item := range items {
		if item.Color != models.ColorRed {
			t.Errorf("Item %d: expected Red, got %q", i, item.Color)
		}
		if item.ImageURL != "bolt.jpg" {
			t.Errorf("Item %d: expected image URL, got %q", i, item.ImageURL)
		}
	}
}

func TestResolveFallsBackToFuzzyFrontFace(t *testing.T) {
	fuzzyCalls := 0
	var gotFuzzy string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/cards/named") {
			fuzzyCalls++
			gotFuzzy = r.URL.Query().Get("fuzzy")
			w.Write([]byte(`{
				"name": "Malakir Rebirth // Malakir Mire",
				"rarity": "uncommon",
				"card_faces": [
					{"type_line": "Instant", "colors": ["B"], "image_uris": {"normal": "front.jpg"}},
					{"type_line": "Land", "colors": []}
				]
			}`))
			return
		}
		// The exact printing lookup misses.
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolver := newTestAttributeResolver(t, server.URL)
	item := models.LineItem{
		CardName: "Malakir Rebirth // Malakir Mire", SetName: "Foundations",
		CollectorNumber: "111", Rarity: models.RarityUnknown, Color: models.ColorUnknown,
	}

	if ok := resolver.Resolve(context.Background(), &item); !ok {
		t.Fatal("Expected fuzzy fallback to resolve the record")
	}
	if gotFuzzy != "Malakir Rebirth" {
		t.Errorf("Expected front-face fuzzy query, got %q", gotFuzzy)
	}
	if item.Color != models.ColorBlack {
		t.Errorf("Expected front-face color Black, got %q", item.Color)
	}

	// The bundle is cached under the fuzzy key, so an unidentifiable second
	// record with the same name costs no second fuzzy call.
	second := models.LineItem{
		CardName: "Malakir Rebirth // Malakir Mire", SetName: "Unknown",
		Rarity: models.RarityUnknown, Color: models.ColorUnknown,
	}
	if ok := resolver.Resolve(context.Background(), &second); !ok {
		t.Fatal("Expected cache hit to resolve the second record")
	}
	if fuzzyCalls != 1 {
		t.Errorf("Expected 1 fuzzy call, got %d", fuzzyCalls)
	}
}

func TestResolveDocumentRarityAuthoritative(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"name": "Lightning Bolt",
			"rarity": "mythic",
			"type_line": "Instant",
			"colors": ["R"]
		}`))
	}))
	defer server.Close()

	resolver := newTestAttributeResolver(t, server.URL)

	// A rarity recovered from the document survives enrichment.
	stated := models.LineItem{
		CardName: "Lightning Bolt", SetName: "Foundations", CollectorNumber: "123",
		Rarity: models.RarityRare, Color: models.ColorUnknown,
	}
	resolver.Resolve(context.Background(), &stated)
	if stated.Rarity != models.RarityRare {
		t.Errorf("Expected document rarity R to survive, got %q", stated.Rarity)
	}

	// An Unknown rarity is filled in from the lookup.
	unknown := models.LineItem{
		CardName: "Shivan Dragon", SetName: "Foundations", CollectorNumber: "124",
		Rarity: models.RarityUnknown, Color: models.ColorUnknown,
	}
	resolver.Resolve(context.Background(), &unknown)
	if unknown.Rarity != models.RarityMythic {
		t.Errorf("Expected Unknown rarity to be filled with M, got %q", unknown.Rarity)
	}
}

func TestResolveBothPathsMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolver := newTestAttributeResolver(t, server.URL)
	item := models.LineItem{
		CardName: "Not a Real Card", SetName: "Foundations", CollectorNumber: "1",
		Rarity: models.RarityUnknown, Color: models.ColorUnknown,
	}

	if ok := resolver.Resolve(context.Background(), &item); ok {
		t.Fatal("Expected resolution to fail")
	}
	// The record keeps its sentinels and stays in the run.
	if item.Color != models.ColorUnknown || item.Rarity != models.RarityUnknown {
		t.Errorf("Expected Unknown sentinels to survive, got %q/%q", item.Color, item.Rarity)
	}
}

func TestResolveAllCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected no requests after cancellation")
	}))
	defer server.Close()

	resolver := newTestAttributeResolver(t, server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []models.LineItem{
		{CardName: "Opt", SetName: "Foundations", Color: models.ColorUnknown},
		{CardName: "Ponder", SetName: "Foundations", Color: models.ColorUnknown},
	}
	unresolved := resolver.ResolveAll(ctx, items)
	if unresolved != 2 {
		t.Errorf("Expected both records counted unresolved, got %d", unresolved)
	}
}

func TestSearchName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Malakir Rebirth // Malakir Mire", "Malakir Rebirth"},
		{"Lightning Bolt (Extended", "Lightning Bolt"},
		{"Opt", "Opt"},
		{"  Opt  ", "Opt"},
	}

	for _, tt := range tests {
		got := SearchName(tt.input)
		if got != tt.expected {
			t.Errorf("SearchName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
