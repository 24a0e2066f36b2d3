package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newSyncedResolver(t *testing.T) *SetResolver {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [
			{"code": "fdn", "name": "Foundations", "set_type": "core"},
			{"code": "war", "name": "War of the Spark", "set_type": "expansion"},
			{"code": "mkm", "name": "Murders at Karlov Manor", "set_type": "expansion"},
			{"code": "otj", "name": "Outlaws of Thunder Junction", "set_type": "expansion"},
			{"code": "pfdn", "name": "Foundations Promos", "set_type": "promo"}
		]}`))
	}))
	t.Cleanup(server.Close)

	resolver := NewSetResolver(newTestScryfallService(server.URL), nil)
	if err := resolver.Sync(context.Background()); err != nil {
		t.Fatalf("Expected sync to succeed, got %v", err)
	}
	return resolver
}

func TestSetResolverExactAndConcatenated(t *testing.T) {
	resolver := newSyncedResolver(t)

	tests := []struct {
		input    string
		expected string
	}{
		{"Foundations", "fdn"},
		{"War of the Spark", "war"},
		{"WaroftheSpark", "war"},
		{"Murders at Karlov Manor", "mkm"},
		{"MurdersatKarlovManor", "mkm"},
	}

	for _, tt := range tests {
		code, ok := resolver.Resolve(tt.input)
		if !ok {
			t.Errorf("Expected %q to resolve", tt.input)
			continue
		}
		if code != tt.expected {
			t.Errorf("Resolve(%q) = %q, want %q", tt.input, code, tt.expected)
		}
	}
}

func TestSetResolverManualOverrideWins(t *testing.T) {
	resolver := newSyncedResolver(t)

	// The Clue Edition never appears in Scryfall under its TCGplayer name.
	for _, name := range []string{
		"Murders at Karlov Manor: Clue Edition",
		"MurdersatKarlovManor:ClueEdition",
	} {
		code, ok := resolver.Resolve(name)
		if !ok || code != "clu" {
			t.Errorf("Resolve(%q) = (%q, %v), want (clu, true)", name, code, ok)
		}
	}
}

func TestSetResolverFuzzyNormalized(t *testing.T) {
	resolver := newSyncedResolver(t)

	// Punctuation and casing noise still resolves via normalization.
	code, ok := resolver.Resolve("outlaws of thunder junction")
	if !ok || code != "otj" {
		t.Errorf("Expected normalized match to otj, got (%q, %v)", code, ok)
	}
}

func TestSetResolverSkipsPromoSets(t *testing.T) {
	resolver := newSyncedResolver(t)

	if _, ok := resolver.Resolve("Foundations Promos"); ok {
		t.Error("Expected promo set to be excluded from the table")
	}
}

func TestSetResolverMissReturnsFalse(t *testing.T) {
	resolver := newSyncedResolver(t)

	if code, ok := resolver.Resolve("Completely Made Up Set"); ok {
		t.Errorf("Expected miss, got %q", code)
	}
}

func TestSetResolverSyncIdempotent(t *testing.T) {
	resolver := newSyncedResolver(t)

	before := len(resolver.synced)
	if err := resolver.Sync(context.Background()); err != nil {
		t.Fatalf("Expected second sync to succeed, got %v", err)
	}
	if len(resolver.synced) != before {
		t.Errorf("Expected re-sync to keep %d entries, got %d", before, len(resolver.synced))
	}
}

func TestSetResolverUsableWithoutSync(t *testing.T) {
	resolver := NewSetResolver(newTestScryfallService("http://unreachable.invalid"), nil)

	// The manual override table alone keeps the resolver usable.
	if !resolver.Usable() {
		t.Error("Expected resolver to be usable from overrides alone")
	}
}

func TestSetResolverSyncFailureReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	resolver := NewSetResolver(newTestScryfallService(server.URL), nil)
	if err := resolver.Sync(context.Background()); err == nil {
		t.Error("Expected sync error when the set listing fails")
	}
}
