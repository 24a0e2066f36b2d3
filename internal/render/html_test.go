package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/codyseavey/pullsheet/internal/models"
)

func testSlip() *models.OrganizedSlip {
	return &models.OrganizedSlip{
		RunID:       "test-run",
		OrderNumber: "ABC-12345",
		Groups: []models.ColorGroup{
			{
				Color:    models.ColorRed,
				Quantity: 2,
				Rarities: []models.RarityGroup{
					{
						Rarity:   models.RarityUncommon,
						Quantity: 2,
						Items: []models.LineItem{
							{
								Quantity: 2, CardName: "Lightning Bolt", SetName: "Foundations",
								CollectorNumber: "123", Condition: "Near Mint",
								UnitPrice: 0.50, ExtendedPrice: 1.00,
								Variant: "Extended Art", Foil: true, Language: "Japanese",
								ImageURL: "https://img.example/bolt.jpg",
							},
						},
					},
				},
			},
		},
		Summary: models.RunSummary{TotalCards: 2, TotalLineItems: 1, TotalValue: 1.00},
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, testSlip()); err != nil {
		t.Fatalf("Expected render to succeed, got %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"ABC-12345",
		"Lightning Bolt",
		"(Extended Art)",
		"FOIL",
		"[Japanese]",
		"Foundations #123 - Near Mint",
		"$1.00",
		"https://img.example/bolt.jpg",
		"Uncommon (2)",
		"Red (2 cards)",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected rendered page to contain %q", want)
		}
	}
}

func TestWriteHTMLEscapesNames(t *testing.T) {
	slip := testSlip()
	slip.Groups[0].Rarities[0].Items[0].CardName = `<script>alert("x")</script>`

	var buf bytes.Buffer
	if err := WriteHTML(&buf, slip); err != nil {
		t.Fatalf("Expected render to succeed, got %v", err)
	}
	if strings.Contains(buf.String(), `<script>alert`) {
		t.Error("Expected card name to be HTML-escaped")
	}
}

func TestWriteHTMLIndexesCardsSequentially(t *testing.T) {
	slip := testSlip()
	slip.Groups = append(slip.Groups, models.ColorGroup{
		Color:    models.ColorBlue,
		Quantity: 1,
		Rarities: []models.RarityGroup{{
			Rarity:   models.RarityCommon,
			Quantity: 1,
			Items:    []models.LineItem{{Quantity: 1, CardName: "Opt", SetName: "Foundations"}},
		}},
	})

	var buf bytes.Buffer
	if err := WriteHTML(&buf, slip); err != nil {
		t.Fatalf("Expected render to succeed, got %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, `data-index="0"`) || !strings.Contains(html, `data-index="1"`) {
		t.Error("Expected sequential data-index values across groups")
	}
}
