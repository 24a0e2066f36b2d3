package models

// RarityGroup holds the items of one rarity tier within a color bucket, in
// final presentation order (variant printings first, then by name).
type RarityGroup struct {
	Rarity   Rarity     `json:"rarity"`
	Quantity int        `json:"quantity"`
	Items    []LineItem `json:"items"`
}

// ColorGroup is one color bucket of the pull sheet.
type ColorGroup struct {
	Color    Color         `json:"color"`
	Quantity int           `json:"quantity"`
	Rarities []RarityGroup `json:"rarities"`
}

// OrganizedSlip is the full pipeline output: grouped, ordered, enriched
// records plus the run summary. This is the renderer's input contract.
type OrganizedSlip struct {
	RunID       string       `json:"run_id"`
	OrderNumber string       `json:"order_number,omitempty"`
	Groups      []ColorGroup `json:"groups"`
	Summary     RunSummary   `json:"summary"`
}
