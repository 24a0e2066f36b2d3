package services

import (
	"sort"
	"strings"

	"github.com/codyseavey/pullsheet/internal/models"
)

// PlanPullOrder arranges enriched records for presentation. The order is
// total and deterministic: color bucket (WUBRG, then Multicolor, Colorless,
// Land, Unknown), rarity rank, variant printings before traditional-border
// ones, then case-insensitive name as the tiebreak. Records with an
// unresolved color land in the Unknown bucket; nothing is dropped.
func PlanPullOrder(items []models.LineItem) []models.ColorGroup {
	ordered := make([]models.LineItem, len(items))
	copy(ordered, items)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := &ordered[i], &ordered[j]
		if a.Color.Rank() != b.Color.Rank() {
			return a.Color.Rank() < b.Color.Rank()
		}
		if a.Rarity.Rank() != b.Rarity.Rank() {
			return a.Rarity.Rank() < b.Rarity.Rank()
		}
		if a.HasVariant() != b.HasVariant() {
			return a.HasVariant()
		}
		return strings.ToLower(a.CardName) < strings.ToLower(b.CardName)
	})

	var groups []models.ColorGroup
	for _, item := range ordered {
		if len(groups) == 0 || groups[len(groups)-1].Color != item.Color {
			groups = append(groups, models.ColorGroup{Color: item.Color})
		}
		cg := &groups[len(groups)-1]
		if len(cg.Rarities) == 0 || cg.Rarities[len(cg.Rarities)-1].Rarity != item.Rarity {
			cg.Rarities = append(cg.Rarities, models.RarityGroup{Rarity: item.Rarity})
		}
		rg := &cg.Rarities[len(cg.Rarities)-1]
		rg.Items = append(rg.Items, item)
		rg.Quantity += item.Quantity
		cg.Quantity += item.Quantity
	}
	return groups
}

// Summarize computes the run-level counts the renderer and API expose.
func Summarize(items []models.LineItem, report models.ParseReport) models.RunSummary {
	summary := models.RunSummary{
		TotalLineItems:      len(items),
		UnattributableLines: report.UnattributableLines,
		PriceMismatches:     report.PriceMismatches,
	}
	for i := range items {
		summary.TotalCards += items[i].Quantity
		summary.TotalValue += items[i].ExtendedPrice
		if items[i].Color == models.ColorUnknown {
			summary.UnresolvedColors++
		}
	}
	return summary
}
