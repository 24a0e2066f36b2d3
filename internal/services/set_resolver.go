package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/pullsheet/internal/models"
)

// manualSetOverrides covers TCGplayer names that never match Scryfall's,
// in both spaced and concatenated forms. Overrides win over synced entries.
var manualSetOverrides = map[string]string{
	"SecretLairDropSeries":                      "sld",
	"Secret Lair Drop Series":                   "sld",
	"SecretLairCountdownKit":                    "slc",
	"Secret Lair Countdown Kit":                 "slc",
	"Avatar:TheLastAirbender:Eternal-Legal":     "tle",
	"Avatar: The Last Airbender: Eternal-Legal": "tle",
	"MarvelUniverseEternal-Legal":               "mar",
	"Marvel Universe Eternal-Legal":             "mar",
	"TheListReprints":                           "plst",
	"The List Reprints":                         "plst",
	"TimeSpiral:Remastered":                     "tsr",
	"Time Spiral: Remastered":                   "tsr",
	"MurdersatKarlovManor:ClueEdition":          "clu",
	"Murders at Karlov Manor: Clue Edition":     "clu",
}

// skippedSetTypes are excluded from the synced table; their collector
// numbering diverges from the main sets.
var skippedSetTypes = map[string]bool{
	"token":       true,
	"memorabilia": true,
	"promo":       true,
	"alchemy":     true,
}

// SetResolver maps slip set display-names to Scryfall set codes. The table
// is populated by Sync and read-only between syncs; the mutex lets the
// server's parallel requests read it while a sync swaps it in.
type SetResolver struct {
	scryfall *ScryfallService
	db       *gorm.DB // optional; persists the synced table across runs

	mu       sync.RWMutex
	synced   map[string]string
	setCount int
}

func NewSetResolver(scryfall *ScryfallService, db *gorm.DB) *SetResolver {
	return &SetResolver{
		scryfall: scryfall,
		db:       db,
		synced:   make(map[string]string),
	}
}

// Sync refreshes the reference table from Scryfall. The refresh is
// idempotent: the table is rebuilt wholesale, so re-running cannot
// duplicate entries. A fetch failure degrades to the persisted table (if a
// database is attached) or to the manual overrides alone; it is only fatal
// to the run when the override table is empty too, which callers check via
// Usable.
func (r *SetResolver) Sync(ctx context.Context) error {
	sets, err := r.scryfall.ListSets(ctx)
	if err != nil {
		log.Printf("set resolver: sync failed, falling back: %v", err)
		r.loadPersisted()
		return fmt.Errorf("set sync: %w", err)
	}

	table := make(map[string]string)
	for _, set := range sets {
		if set.Code == "" || set.Name == "" || skippedSetTypes[set.SetType] {
			continue
		}
		// The slip concatenates names in several ways; index all of them.
		table[set.Name] = set.Code
		table[strings.ReplaceAll(set.Name, " ", "")] = set.Code
		table[strings.ReplaceAll(set.Name, ": ", ":")] = set.Code
		allCollapsed := strings.ReplaceAll(strings.ReplaceAll(set.Name, " ", ""), ":", "")
		if _, ok := table[allCollapsed]; !ok {
			table[allCollapsed] = set.Code
		}
	}

	r.mu.Lock()
	r.synced = table
	r.setCount = len(sets)
	r.mu.Unlock()

	r.persist(table)
	log.Printf("set resolver: loaded %d sets from Scryfall", len(sets))
	return nil
}

// Usable reports whether any resolution source exists. False means the run
// cannot produce set-scoped lookups at all.
func (r *SetResolver) Usable() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(manualSetOverrides) > 0 || len(r.synced) > 0
}

// SetCount returns the number of sets loaded by the last successful sync.
func (r *SetResolver) SetCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.setCount
}

// Resolve maps a display name to a set code. Resolution order: manual
// override, synced exact, synced without spaces, normalized fuzzy match.
// Returns ("", false) when everything misses; the caller treats that as a
// valid outcome that forces the fuzzy-name lookup path.
func (r *SetResolver) Resolve(setName string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if code, ok := manualSetOverrides[setName]; ok {
		return code, true
	}
	if code, ok := r.synced[setName]; ok {
		return code, true
	}
	noSpaces := strings.ReplaceAll(setName, " ", "")
	if code, ok := r.synced[noSpaces]; ok {
		return code, true
	}

	normalized := normalizeSetName(setName)
	for name, code := range manualSetOverrides {
		if normalizeSetName(name) == normalized {
			return code, true
		}
	}
	for name, code := range r.synced {
		if normalizeSetName(name) == normalized {
			return code, true
		}
	}
	return "", false
}

// normalizeSetName lowercases and strips punctuation and spacing so fuzzy
// comparison survives the slip's formatting quirks.
func normalizeSetName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (r *SetResolver) persist(table map[string]string) {
	if r.db == nil {
		return
	}
	rows := make([]models.SetMapping, 0, len(table))
	for name, code := range table {
		rows = append(rows, models.SetMapping{Name: name, Code: code})
	}
	if len(rows) == 0 {
		return
	}
	if err := r.db.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, 200).Error; err != nil {
		log.Printf("set resolver: could not persist set table: %v", err)
	}
}

func (r *SetResolver) loadPersisted() {
	if r.db == nil {
		return
	}
	var rows []models.SetMapping
	if err := r.db.Where("manual = ?", false).Find(&rows).Error; err != nil {
		log.Printf("set resolver: could not load persisted set table: %v", err)
		return
	}
	if len(rows) == 0 {
		return
	}
	table := make(map[string]string, len(rows))
	for _, row := range rows {
		table[row.Name] = row.Code
	}
	r.mu.Lock()
	r.synced = table
	r.mu.Unlock()
	log.Printf("set resolver: using %d persisted set mappings", len(rows))
}
