package services

import (
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/codyseavey/pullsheet/internal/models"
)

// The packing slip has no fixed grammar: field boundaries, optional tokens
// (variant tags, foil markers, language tags) and line wrapping all vary per
// row. The parser is a single-pass scanner over the extracted lines with one
// piece of carried state, the current partially-built block. It never
// returns an error for malformed input; lines that fail every pattern are
// counted and skipped.

// Known set-name prefixes from TCGplayer slips. Concatenated descriptions
// are split against these first, longest match wins.
var knownSetPrefixes = []string{
	"LorwynEclipsed",
	"Avatar:TheLastAirbender:Eternal-Legal",
	"Avatar:TheLastAirbender",
	"MarvelUniverseEternal-Legal",
	"Marvel'sSpider-Man",
	"EdgeofEternities",
	"Commander:EdgeofEternities",
	"FINALFANTASY",
	"Commander:FINALFANTASY",
	"Tarkir:Dragonstorm",
	"Commander:Tarkir:Dragonstorm",
	"Aetherdrift",
	"Phyrexia:AllWillBeOne",
	"WaroftheSpark",
	"Foundations",
	"CommanderLegends:BattleforBaldur'sGate",
	"Commander:OutlawsofThunderJunction",
	"Commander:StreetsofNewCapenna",
	"Commander2016",
	"ModernHorizons3",
	"RavnicaRemastered",
	"TimeSpiral:Remastered",
	"TheListReprints",
	"MysteryBooster2",
	"SecretLairDropSeries",
	"SecretLairCountdownKit",
	"Urza'sLegacy",
	"FromtheVault:Lore",
	"PromoPack:OutlawsofThunderJunction",
	"PromoPack:MarchoftheMachine",
	"PromoPack:Kamigawa:NeonDynasty",
	"CommanderMasters",
	"Innistrad:MidnightHunt",
	"OutlawsofThunderJunction",
	"MurdersatKarlovManor",
	"MurdersatKarlovManor:ClueEdition",
}

// sortedSetPrefixes is knownSetPrefixes ordered longest first so the most
// specific prefix wins.
var sortedSetPrefixes = func() []string {
	prefixes := make([]string, len(knownSetPrefixes))
	copy(prefixes, knownSetPrefixes)
	sort.Slice(prefixes, func(i, j int) bool {
		return len(prefixes[i]) > len(prefixes[j])
	})
	return prefixes
}()

var (
	tcgStartRe     = regexp.MustCompile(`^\d+\s+Magic-`)
	totalLineRe    = regexp.MustCompile(`^\d+\s+Total\s+\$`)
	orderNumberRe  = regexp.MustCompile(`Order\s*Number:\s*([A-Z0-9-]+)`)
	qtyRe          = regexp.MustCompile(`^(\d+)\s+`)
	priceRe        = regexp.MustCompile(`\$(\d+\.?\d*)`)
	magicDescRe    = regexp.MustCompile(`Magic-(.+)`)
	collectorRe    = regexp.MustCompile(`#(\d+[A-Za-z]*)`)
	numberMarkRe   = regexp.MustCompile(`-#\d+`)
	parenVariantRe = regexp.MustCompile(`\(([^)]+)\)`)

	// Whitespace-column layout: qty, name, set, #number, condition, one or
	// two dollar amounts, fields separated by runs of 2+ spaces.
	columnLineRe = regexp.MustCompile(`^(\d+)\s{2,}(\S(?:.*?\S)?)\s{2,}(\S(?:.*?\S)?)\s{2,}#(\w+)\s{2,}(\S(?:.*?\S)?)\s{2,}\$(\d+\.?\d*)(?:\s{2,}\$(\d+\.?\d*))?\s*$`)

	nameFragmentRe = regexp.MustCompile(`^[A-Za-z,'\- ]+$`)
)

// rarityPatterns is the ordered (pattern, extractor) list for rarity
// recovery, most specific first. First match wins. Patterns scan the block's
// description text unless useRaw routes them at the full raw line.
var rarityPatterns = []struct {
	re      *regexp.Regexp
	extract func(m []string) models.Rarity
	useRaw  bool
}{
	// Explicit rarity words. Mythic before Rare so "Mythic Rare" is not
	// claimed by the plain Rare word.
	{re: regexp.MustCompile(`(?i)\bMythic\s?Rare\b|\bMythic\b`), extract: func([]string) models.Rarity { return models.RarityMythic }},
	{re: regexp.MustCompile(`(?i)\bRare\b`), extract: func([]string) models.Rarity { return models.RarityRare }},
	{re: regexp.MustCompile(`(?i)\bUncommon\b`), extract: func([]string) models.Rarity { return models.RarityUncommon }},
	{re: regexp.MustCompile(`(?i)\bCommon\b`), extract: func([]string) models.Rarity { return models.RarityCommon }},
	// Single-letter code between hyphens, the usual TCGplayer position.
	{re: regexp.MustCompile(`-([MRUCS])-`), extract: letterRarity},
	// At end of description or glued onto the condition.
	{re: regexp.MustCompile(`-([MRUCS])(?:$|-?Near|-?Lightly|-?Moderately|-?Heavily|-?Foil)`), extract: letterRarity},
	// Continuation rows where the code lands right after a price; prices are
	// stripped from the description, so this one scans the raw line.
	{re: regexp.MustCompile(`\$\d+\.?\d*([MRUCS])-`), extract: letterRarity, useRaw: true},
}

func letterRarity(m []string) models.Rarity {
	switch m[1] {
	case "M":
		return models.RarityMythic
	case "R":
		return models.RarityRare
	case "U":
		return models.RarityUncommon
	case "C":
		return models.RarityCommon
	case "S":
		return models.RaritySpecial
	}
	return models.RarityUnknown
}

// extractRarity runs the ordered pattern list, each entry against the text
// its useRaw flag selects.
func extractRarity(remainder, rawLine string) models.Rarity {
	for _, rp := range rarityPatterns {
		text := remainder
		if rp.useRaw {
			text = rawLine
		}
		if m := rp.re.FindStringSubmatch(text); m != nil {
			return rp.extract(m)
		}
	}
	return models.RarityUnknown
}

// languagePatterns maps slip text to language tags. Word/hyphen boundaries
// avoid false positives ("RetroFrame" is not French, "Titan" not Italian).
var languagePatterns = []struct {
	re   *regexp.Regexp
	lang string
}{
	{regexp.MustCompile(`[-\s\[]Japanese[-\s\]]|Japanese$`), "Japanese"},
	{regexp.MustCompile(`[-\s\[]German[-\s\]]|German$`), "German"},
	{regexp.MustCompile(`[-\s\[]French[-\s\]]|French$`), "French"},
	{regexp.MustCompile(`[-\s\[]Italian[-\s\]]|Italian$`), "Italian"},
	{regexp.MustCompile(`[-\s\[]Spanish[-\s\]]|Spanish$`), "Spanish"},
	{regexp.MustCompile(`[-\s\[]Portuguese[-\s\]]|Portuguese$`), "Portuguese"},
	{regexp.MustCompile(`[-\s\[]Russian[-\s\]]|Russian$`), "Russian"},
	{regexp.MustCompile(`[-\s\[]Korean[-\s\]]|Korean$`), "Korean"},
	{regexp.MustCompile(`ChineseSimplified|SimplifiedChinese`), "Chinese (Simplified)"},
	{regexp.MustCompile(`ChineseTraditional|TraditionalChinese`), "Chinese (Traditional)"},
	{regexp.MustCompile(`[-\s\[]Phyrexian[-\s\]]|Phyrexian$`), "Phyrexian"},
}

func extractLanguage(line string) string {
	for _, lp := range languagePatterns {
		if lp.re.MatchString(line) {
			return lp.lang
		}
	}
	return ""
}

// variantVocabulary is the closed set of print-treatment labels, checked
// both in their spaced and concatenated forms. Longer labels first so
// "Extended Art" beats "Extended".
var variantVocabulary = []struct {
	token string
	label string
}{
	{"Extended Art", "Extended Art"},
	{"ExtendedArt", "Extended Art"},
	{"Alternate Art", "Alternate Art"},
	{"AlternateArt", "Alternate Art"},
	{"Retro Frame", "Retro Frame"},
	{"RetroFrame", "Retro Frame"},
	{"Foil Etched", "Foil Etched"},
	{"FoilEtched", "Foil Etched"},
	{"White Border", "White Border"},
	{"Future Sight", "Future Sight"},
	{"FutureSight", "Future Sight"},
	{"Borderless", "Borderless"},
	{"Showcase", "Showcase"},
	{"Extended", "Extended Art"},
}

// matchVariantLabel returns the canonical label when text is exactly one
// vocabulary entry (a variant-only continuation line).
func matchVariantLabel(text string) (string, bool) {
	trimmed := strings.Trim(strings.TrimSpace(text), "()-")
	for _, v := range variantVocabulary {
		if strings.EqualFold(trimmed, v.token) {
			return v.label, true
		}
	}
	return "", false
}

// findVariantLabel scans text for the first vocabulary occurrence.
func findVariantLabel(text string) (string, bool) {
	for _, v := range variantVocabulary {
		if strings.Contains(text, v.token) {
			return v.label, true
		}
	}
	return "", false
}

var conditionPatterns = []struct {
	needle    string
	condition string
}{
	{"LightlyPlayed", "Lightly Played"},
	{"Lightly Played", "Lightly Played"},
	{"ModeratelyPlayed", "Moderately Played"},
	{"Moderately Played", "Moderately Played"},
	{"HeavilyPlayed", "Heavily Played"},
	{"Heavily Played", "Heavily Played"},
	{"Damaged", "Damaged"},
}

func extractCondition(line string) string {
	for _, cp := range conditionPatterns {
		if strings.Contains(line, cp.needle) {
			return cp.condition
		}
	}
	return "Near Mint"
}

// ParsedSlip is the parser output: the recovered records plus the quality
// counters and the order number when the document carries one.
type ParsedSlip struct {
	Items       []models.LineItem
	Report      models.ParseReport
	OrderNumber string
}

type blockLayout int

const (
	layoutNone blockLayout = iota
	layoutTCG
	layoutColumns
)

// slipBlock is the carried scanner state: one in-progress record.
type slipBlock struct {
	layout blockLayout
	raw    []string
	// item holds the immediately-parsed record for the column layout;
	// the TCG layout parses its merged text at flush time instead.
	item *models.LineItem
	// extraName accumulates continuation name fragments for column rows.
	extraName string
}

// ParseSlip scans the extracted document lines and recovers one record per
// line-item block. Unattributable lines degrade the report, never the pass.
func ParseSlip(lines []string) *ParsedSlip {
	out := &ParsedSlip{}
	var current *slipBlock

	flush := func() {
		if current == nil {
			return
		}
		block := current
		current = nil
		switch block.layout {
		case layoutTCG:
			merged := strings.Join(block.raw, "")
			item, ok := parseTCGBlock(merged)
			if !ok {
				out.Report.UnattributableLines += len(block.raw)
				log.Printf("slip parser: could not parse block: %.80s", merged)
				return
			}
			finishItem(item, &out.Report)
			out.Items = append(out.Items, *item)
		case layoutColumns:
			item := block.item
			if block.extraName != "" {
				item.CardName = RepairName(item.CardName + block.extraName)
			}
			finishItem(item, &out.Report)
			out.Items = append(out.Items, *item)
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Page headers, footers and the trailing total row terminate any
		// open block but are not records themselves.
		if strings.HasPrefix(line, "Quantity Description") || totalLineRe.MatchString(line) {
			flush()
			continue
		}
		if m := orderNumberRe.FindStringSubmatch(line); m != nil {
			out.OrderNumber = m[1]
			flush()
			continue
		}

		if tcgStartRe.MatchString(line) {
			flush()
			current = &slipBlock{layout: layoutTCG, raw: []string{line}}
			continue
		}
		if m := columnLineRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &slipBlock{layout: layoutColumns, item: parseColumnLine(m)}
			continue
		}

		if current == nil {
			// No record to attach to and no primary match: dropped.
			out.Report.UnattributableLines++
			continue
		}

		switch current.layout {
		case layoutTCG:
			// Wrapped fields are re-joined without a separator; the PDF
			// extraction already stripped the spaces.
			current.raw = append(current.raw, line)
		case layoutColumns:
			applyColumnContinuation(current, line, &out.Report)
		}
	}
	flush()

	out.Report.Records = len(out.Items)
	log.Printf("slip parser: %d records, %d unattributable lines, %d price mismatches",
		out.Report.Records, out.Report.UnattributableLines, out.Report.PriceMismatches)
	return out
}

// applyColumnContinuation scans a continuation line for recognizable
// fragments: a variant label, a foil marker, a language tag, or name text.
func applyColumnContinuation(block *slipBlock, line string, report *models.ParseReport) {
	if label, ok := matchVariantLabel(line); ok {
		block.item.Variant = label
		return
	}
	if strings.EqualFold(strings.TrimSpace(line), "Foil") {
		block.item.Foil = true
		return
	}
	if lang := extractLanguage(line); lang != "" && len(strings.Fields(line)) == 1 {
		block.item.Language = lang
		return
	}
	// Name fragment: letters only, possibly concatenated CamelCase.
	if nameFragmentRe.MatchString(line) {
		block.extraName += line
		return
	}
	report.UnattributableLines++
}

// parseColumnLine builds a record from a whitespace-column match. With a
// single dollar amount the extended price is computed from the quantity.
func parseColumnLine(m []string) *models.LineItem {
	qty, _ := strconv.Atoi(m[1])
	if qty < 1 {
		qty = 1
	}
	unit, _ := strconv.ParseFloat(m[6], 64)
	extended := float64(qty) * unit
	if m[7] != "" {
		extended, _ = strconv.ParseFloat(m[7], 64)
	}

	name := m[2]
	variant := ""
	if vm := parenVariantRe.FindStringSubmatch(name); vm != nil {
		variant = RepairName(vm[1])
		name = strings.TrimSpace(name[:parenVariantRe.FindStringSubmatchIndex(name)[0]])
	}

	raw := strings.Join(m[1:], " ")
	return &models.LineItem{
		Quantity:        qty,
		SetName:         RepairName(m[3]),
		CardName:        RepairName(name),
		CollectorNumber: m[4],
		Rarity:          extractRarity(m[5], raw),
		Condition:       extractCondition(m[5]),
		Foil:            strings.Contains(raw, "Foil"),
		UnitPrice:       unit,
		ExtendedPrice:   extended,
		Variant:         variant,
		Language:        extractLanguage(raw),
		Color:           models.ColorUnknown,
	}
}

// parseTCGBlock parses one merged TCGplayer row:
// "3 Magic-Set-CardName(Variant)-#123-R-NearMint $1.50 $4.50".
func parseTCGBlock(line string) (*models.LineItem, bool) {
	qtyMatch := qtyRe.FindStringSubmatch(line)
	if qtyMatch == nil {
		return nil, false
	}
	qty, _ := strconv.Atoi(qtyMatch[1])
	if qty < 1 {
		return nil, false
	}

	var unit, extended float64
	prices := priceRe.FindAllStringSubmatch(line, -1)
	switch {
	case len(prices) >= 2:
		unit, _ = strconv.ParseFloat(prices[len(prices)-2][1], 64)
		extended, _ = strconv.ParseFloat(prices[len(prices)-1][1], 64)
	case len(prices) == 1:
		unit, _ = strconv.ParseFloat(prices[0][1], 64)
		extended = float64(qty) * unit
	}

	// Strip prices first; wrapped rows put fields after the amounts.
	clean := priceRe.ReplaceAllString(line, "")
	descMatch := magicDescRe.FindStringSubmatch(clean)
	if descMatch == nil {
		return nil, false
	}
	description := strings.TrimSpace(descMatch[1])

	setName, remainder := extractSetAndCard(description)

	collector := ""
	if m := collectorRe.FindStringSubmatch(remainder); m != nil {
		collector = m[1]
	}

	rarity := extractRarity(remainder, line)

	// Card name: everything before the collector number marker, otherwise
	// everything before the rarity code.
	namePart := remainder
	if collector != "" {
		if idx := strings.Index(remainder, "#"+collector); idx >= 0 {
			namePart = remainder[:idx]
		}
	} else if idx := strings.Index(remainder, "-"+string(rarity)+"-"); rarity != models.RarityUnknown && idx >= 0 {
		namePart = remainder[:idx]
	} else {
		namePart = strings.SplitN(remainder, "-", 2)[0]
	}
	namePart = strings.TrimRight(namePart, "-")

	variant := ""
	if vm := parenVariantRe.FindStringSubmatch(namePart); vm != nil {
		variant = RepairName(vm[1])
		namePart = namePart[:parenVariantRe.FindStringSubmatchIndex(namePart)[0]]
	} else if label, ok := findVariantLabel(strings.TrimPrefix(remainder, namePart)); ok {
		// Continuation fragments land after the name; unparenthesized
		// labels still come from the closed vocabulary.
		variant = label
	}

	return &models.LineItem{
		Quantity:        qty,
		SetName:         prettifySetName(setName),
		CardName:        RepairName(strings.TrimSpace(namePart)),
		CollectorNumber: collector,
		Rarity:          rarity,
		Condition:       extractCondition(line),
		Foil:            strings.Contains(line, "Foil"),
		UnitPrice:       unit,
		ExtendedPrice:   extended,
		Variant:         variant,
		Language:        extractLanguage(line),
		Color:           models.ColorUnknown,
	}, true
}

// finishItem applies the price invariant check. A mismatch between the
// stated extended price and quantity x unit is a quality signal only.
func finishItem(item *models.LineItem, report *models.ParseReport) {
	expected := float64(item.Quantity) * item.UnitPrice
	tolerance := 0.01*float64(item.Quantity) + 1e-9
	if item.ExtendedPrice != 0 && absFloat(expected-item.ExtendedPrice) > tolerance {
		report.PriceMismatches++
		log.Printf("slip parser: price mismatch for %q: %d x %.2f != %.2f",
			item.CardName, item.Quantity, item.UnitPrice, item.ExtendedPrice)
	}
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// extractSetAndCard splits a concatenated description into set name and the
// rest. Known prefixes are tried first, then the position of the -#number
// marker, then the first hyphen.
func extractSetAndCard(description string) (string, string) {
	for _, prefix := range sortedSetPrefixes {
		if strings.HasPrefix(description, prefix+"-") {
			return prefix, description[len(prefix)+1:]
		}
	}

	if loc := numberMarkRe.FindStringIndex(description); loc != nil {
		beforeNumber := description[:loc[0]]
		parts := strings.Split(beforeNumber, "-")
		if len(parts) >= 2 {
			var setParts, cardParts []string
			foundCard := false
			for j, part := range parts {
				if !foundCard && j > 0 && part != "" && isUpperStart(part) && !hasSetWordPrefix(part) {
					foundCard = true
				}
				if foundCard {
					cardParts = append(cardParts, part)
				} else {
					setParts = append(setParts, part)
				}
			}
			if len(setParts) > 0 && len(cardParts) > 0 {
				return strings.Join(setParts, "-"),
					strings.Join(cardParts, "-") + description[loc[0]:]
			}
		}
	}

	if idx := strings.Index(description, "-"); idx > 0 {
		return description[:idx], description[idx+1:]
	}
	return "Unknown", description
}

func isUpperStart(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

var setWordPrefixes = []string{"Commander", "Eternal", "Legal", "Remastered", "Promo"}

func hasSetWordPrefix(s string) bool {
	for _, w := range setWordPrefixes {
		if strings.HasPrefix(s, w) {
			return true
		}
	}
	return false
}

var setDisplayFixes = []struct {
	re  *regexp.Regexp
	rep string
}{
	{regexp.MustCompile(`FINALFANTASY`), "FINAL FANTASY"},
	{regexp.MustCompile(`Phyrexia:All Will Be One`), "Phyrexia: All Will Be One"},
	{regexp.MustCompile(`Avatar:The Last Airbender`), "Avatar: The Last Airbender"},
	{regexp.MustCompile(`Tarkir:Dragonstorm`), "Tarkir: Dragonstorm"},
	{regexp.MustCompile(`Commander:`), "Commander: "},
	{regexp.MustCompile(`Promo Pack:`), "Promo Pack: "},
	{regexp.MustCompile(`From the Vault:`), "From the Vault: "},
}

// prettifySetName converts a concatenated slip set name into display form.
func prettifySetName(setName string) string {
	display := RepairName(setName)
	for _, fix := range setDisplayFixes {
		display = fix.re.ReplaceAllString(display, fix.rep)
	}
	return strings.TrimSpace(multiWSRe.ReplaceAllString(display, " "))
}
