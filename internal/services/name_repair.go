package services

import (
	"regexp"
	"strings"
	"unicode"
)

// The PDF extraction step drops most inter-word spaces, so card and set
// names arrive concatenated ("EloquentFirst-Year", "WaroftheSpark"). The
// repair is heuristic and idempotent: running it over an already-correct
// name leaves the name alone.

// repairExceptions are tokens that contain internal capitals or digits on
// purpose and must never be split.
var repairExceptions = map[string]bool{
	"FINALFANTASY": true,
	"TCGplayer":    true,
}

var (
	commaSpaceRe = regexp.MustCompile(`,(\S)`)
	colonSpaceRe = regexp.MustCompile(`:([A-Za-z])`)
	// Common word endings glued onto "of" ("ChampionofthePerished").
	endingOfRe = regexp.MustCompile(`(?i)(ion|ter|ler|ant|ent|int|ard|ack|ock|uck|ime|ame|ome|ple|tle|nce|ise|ose|use|ine|one|ure|ire|are|ore|ide|ade|ude|ive|ave|ove|all|ell|ill|ull|ath|eth|ith|oth|uth|lic|ric|sic|tic|nic|pic)of`)
	pluralOfRe = regexp.MustCompile(`(?i)([^o\s])sof`)
	endingToRe = regexp.MustCompile(`(?i)(ack|ome|urn)to`)
	theAfterRe = regexp.MustCompile(`\bthe([A-Z])`)
	multiWSRe  = regexp.MustCompile(`\s+`)
)

var prepositionTheRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bof ?the\b`),
	regexp.MustCompile(`(?i)\bto ?the\b`),
	regexp.MustCompile(`(?i)\bat ?the\b`),
	regexp.MustCompile(`(?i)\bin ?the\b`),
	regexp.MustCompile(`(?i)\bfor ?the\b`),
	regexp.MustCompile(`(?i)\bfrom ?the\b`),
	regexp.MustCompile(`(?i)\bon ?the\b`),
	regexp.MustCompile(`(?i)\band ?the\b`),
}

var prepositionTheFixed = []string{
	"of the", "to the", "at the", "in the", "for the", "from the", "on the", "and the",
}

// RepairName reinserts spaces into a concatenated card or set name.
// "Abigale,EloquentFirst-Year" -> "Abigale, Eloquent First-Year".
func RepairName(name string) string {
	if name == "" {
		return name
	}

	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 {
			prev := runes[i-1]
			// lowercase -> uppercase transition, but not after an
			// apostrophe ("Urza's") and not right after a hyphen
			// ("First-Year").
			if unicode.IsLower(prev) && unicode.IsUpper(r) &&
				prev != '\'' && (i < 2 || runes[i-2] != '-') {
				if !inExceptionToken(runes, i) {
					b.WriteRune(' ')
				}
			}
			// lowercase letter -> digit ("Momo2" -> "Momo 2"); digits
			// after hyphens ("C-3PO") are left alone.
			if unicode.IsLower(prev) && unicode.IsDigit(r) {
				if !inExceptionToken(runes, i) {
					b.WriteRune(' ')
				}
			}
		}
		b.WriteRune(r)
	}
	name = b.String()

	name = commaSpaceRe.ReplaceAllString(name, ", $1")
	name = colonSpaceRe.ReplaceAllString(name, ": $1")

	name = endingOfRe.ReplaceAllString(name, "$1 of")
	name = pluralOfRe.ReplaceAllString(name, "${1}s of")
	name = endingToRe.ReplaceAllString(name, "$1 to")

	for i, re := range prepositionTheRes {
		name = re.ReplaceAllString(name, prepositionTheFixed[i])
	}
	name = theAfterRe.ReplaceAllString(name, "the $1")

	name = multiWSRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// inExceptionToken reports whether position i falls inside a token from the
// exception table. Tokens are delimited by spaces and hyphens.
func inExceptionToken(runes []rune, i int) bool {
	start := i
	for start > 0 && runes[start-1] != ' ' && runes[start-1] != '-' {
		start--
	}
	end := i
	for end < len(runes) && runes[end] != ' ' && runes[end] != '-' {
		end++
	}
	return repairExceptions[string(runes[start:end])]
}
