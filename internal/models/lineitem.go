package models

// Color is the presentation bucket a card lands in. ColorUnknown is an
// explicit sentinel for records whose lookup failed; such records still get
// placed, in the last bucket, rather than dropped.
type Color string

const (
	ColorWhite      Color = "White"
	ColorBlue       Color = "Blue"
	ColorBlack      Color = "Black"
	ColorRed        Color = "Red"
	ColorGreen      Color = "Green"
	ColorMulticolor Color = "Multicolor"
	ColorColorless  Color = "Colorless"
	ColorLand       Color = "Land"
	ColorUnknown    Color = "Unknown"
)

// colorOrder is WUBRG order plus the non-colored buckets.
var colorOrder = map[Color]int{
	ColorWhite:      0,
	ColorBlue:       1,
	ColorBlack:      2,
	ColorRed:        3,
	ColorGreen:      4,
	ColorMulticolor: 5,
	ColorColorless:  6,
	ColorLand:       7,
	ColorUnknown:    8,
}

// Rank returns the sort position of the color bucket.
func (c Color) Rank() int {
	if r, ok := colorOrder[c]; ok {
		return r
	}
	return colorOrder[ColorUnknown]
}

// AllColors lists the buckets in presentation order.
func AllColors() []Color {
	return []Color{
		ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen,
		ColorMulticolor, ColorColorless, ColorLand, ColorUnknown,
	}
}

// Rarity as printed on the slip. RarityUnknown means the document's rarity
// field did not parse; the resolver may fill it in from Scryfall, but a
// rarity parsed from the document is authoritative and never overridden.
type Rarity string

const (
	RarityMythic   Rarity = "M"
	RarityRare     Rarity = "R"
	RarityUncommon Rarity = "U"
	RarityCommon   Rarity = "C"
	RaritySpecial  Rarity = "S"
	RarityUnknown  Rarity = "?"
)

var rarityOrder = map[Rarity]int{
	RarityMythic:   0,
	RarityRare:     1,
	RarityUncommon: 2,
	RarityCommon:   3,
	RaritySpecial:  4,
	RarityUnknown:  5,
}

var rarityNames = map[Rarity]string{
	RarityMythic:   "Mythic Rare",
	RarityRare:     "Rare",
	RarityUncommon: "Uncommon",
	RarityCommon:   "Common",
	RaritySpecial:  "Special",
	RarityUnknown:  "Unknown",
}

func (r Rarity) Rank() int {
	if o, ok := rarityOrder[r]; ok {
		return o
	}
	return rarityOrder[RarityUnknown]
}

func (r Rarity) DisplayName() string {
	if n, ok := rarityNames[r]; ok {
		return n
	}
	return string(r)
}

// RarityFromScryfall maps Scryfall's rarity strings onto the slip's
// single-letter codes.
func RarityFromScryfall(s string) Rarity {
	switch s {
	case "mythic":
		return RarityMythic
	case "rare":
		return RarityRare
	case "uncommon":
		return RarityUncommon
	case "common":
		return RarityCommon
	case "special", "bonus":
		return RaritySpecial
	default:
		return RarityUnknown
	}
}

// LineItem is one purchased line on the packing slip: a quantity of a single
// card printing. Color and ImageURL are populated by the attribute resolver;
// everything else comes from the document text.
type LineItem struct {
	Quantity        int     `json:"quantity"`
	SetName         string  `json:"set_name"`
	CardName        string  `json:"card_name"`
	CollectorNumber string  `json:"collector_number"`
	Rarity          Rarity  `json:"rarity"`
	Condition       string  `json:"condition"`
	Foil            bool    `json:"foil"`
	UnitPrice       float64 `json:"unit_price"`
	ExtendedPrice   float64 `json:"extended_price"`
	Variant         string  `json:"variant,omitempty"`
	Language        string  `json:"language,omitempty"`
	Color           Color   `json:"color"`
	ImageURL        string  `json:"image_url,omitempty"`
}

// HasVariant reports whether the item is a non-default print treatment.
// Variant-bearing items sort before traditional-border ones within a rarity.
func (li *LineItem) HasVariant() bool {
	return li.Variant != ""
}

// ParseReport carries the parser's quality counters. None of these are
// errors; the pipeline completes whenever at least one record parsed.
type ParseReport struct {
	Records             int `json:"records"`
	UnattributableLines int `json:"unattributable_lines"`
	PriceMismatches     int `json:"price_mismatches"`
}

// RunSummary is the run-level output contract for the renderer and API.
type RunSummary struct {
	TotalCards          int     `json:"total_cards"`
	TotalLineItems      int     `json:"total_line_items"`
	TotalValue          float64 `json:"total_value"`
	UnresolvedColors    int     `json:"unresolved_colors"`
	UnattributableLines int     `json:"unattributable_lines"`
	PriceMismatches     int     `json:"price_mismatches"`
}
