package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/pullsheet/internal/metrics"
	"github.com/codyseavey/pullsheet/internal/models"
)

const resolutionCacheSize = 2048

// AttributeResolver enriches parsed records with color, image reference and
// (when the document's rarity was unresolved) rarity from Scryfall.
//
// Lookup order per record, short-circuiting on first success:
//  1. exact by (set code, collector number), when the set name resolved
//  2. fuzzy by card name, front face only for double-faced names
//
// Every successful bundle is cached under whichever key succeeded, so N
// records sharing a printing cost at most one external call per run. A
// record failing both paths keeps its Unknown sentinels; resolution
// failures never abort the run.
type AttributeResolver struct {
	scryfall *ScryfallService
	sets     *SetResolver
	session  *lru.Cache[string, CardAttributes]
	db       *gorm.DB // optional cross-run cache
}

func NewAttributeResolver(scryfall *ScryfallService, sets *SetResolver, db *gorm.DB) (*AttributeResolver, error) {
	session, err := lru.New[string, CardAttributes](resolutionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolution cache: %w", err)
	}
	return &AttributeResolver{
		scryfall: scryfall,
		sets:     sets,
		session:  session,
		db:       db,
	}, nil
}

// searchArtifacts are variant fragments the parser could not fully detach
// from the card name; they would derail the fuzzy search.
var searchArtifacts = []*regexp.Regexp{
	regexp.MustCompile(`\(Extended$`),
	regexp.MustCompile(`\(Borderless$`),
	regexp.MustCompile(`\(Showcase$`),
	regexp.MustCompile(`\(Retro Frame$`),
	regexp.MustCompile(`\(Foil Etched$`),
	regexp.MustCompile(`\(White Border$`),
	regexp.MustCompile(`\(Future Sight$`),
}

// SearchName strips parsing artifacts and reduces a double-faced name to
// its front face, which is how the external source indexes such cards.
func SearchName(cardName string) string {
	name := strings.TrimSpace(cardName)
	for _, re := range searchArtifacts {
		name = strings.TrimSpace(re.ReplaceAllString(name, ""))
	}
	if idx := strings.Index(name, "//"); idx >= 0 {
		name = strings.TrimSpace(name[:idx])
	}
	return name
}

// ResolveAll enriches every record in place and returns the number left
// unresolved. Single-threaded on purpose: the Scryfall limiter paces the
// calls, and the caches are written only during this phase.
func (r *AttributeResolver) ResolveAll(ctx context.Context, items []models.LineItem) int {
	unresolved := 0
	for i := range items {
		if err := ctx.Err(); err != nil {
			// Count the remainder as unresolved rather than dropping them.
			unresolved += len(items) - i
			break
		}
		if ok := r.Resolve(ctx, &items[i]); !ok {
			unresolved++
			log.Printf("resolver: [%d/%d] %s: NOT FOUND", i+1, len(items), items[i].CardName)
		} else {
			log.Printf("resolver: [%d/%d] %s: %s", i+1, len(items), items[i].CardName, items[i].Color)
		}
	}
	if unresolved > 0 {
		log.Printf("resolver: %d of %d records unresolved", unresolved, len(items))
	}
	return unresolved
}

// Resolve enriches one record. Returns false when both lookup paths failed;
// the record keeps its explicit Unknown sentinels and stays in the run.
func (r *AttributeResolver) Resolve(ctx context.Context, item *models.LineItem) bool {
	searchName := SearchName(item.CardName)
	fuzzyKey := "name:" + strings.ToLower(searchName)

	exactKey := ""
	setCode, setResolved := r.sets.Resolve(item.SetName)
	if setResolved && item.CollectorNumber != "" {
		exactKey = fmt.Sprintf("set:%s/%s", setCode, item.CollectorNumber)
	}

	for _, key := range []string{exactKey, fuzzyKey} {
		if key == "" {
			continue
		}
		if attrs, ok := r.cacheGet(key); ok {
			metrics.ResolutionCacheHits.Inc()
			r.apply(item, attrs)
			return true
		}
	}
	metrics.ResolutionCacheMisses.Inc()

	// Exact path first: collector number disambiguates printings.
	if exactKey != "" {
		attrs, err := r.scryfall.GetCardBySetAndNumber(ctx, setCode, item.CollectorNumber)
		if err != nil {
			log.Printf("resolver: exact lookup %s failed: %v", exactKey, err)
		} else if attrs != nil {
			r.cachePut(exactKey, *attrs)
			r.apply(item, *attrs)
			return true
		}
	}

	attrs, err := r.scryfall.GetCardByFuzzyName(ctx, searchName)
	if err != nil {
		log.Printf("resolver: fuzzy lookup %q failed: %v", searchName, err)
		metrics.ResolutionFailures.Inc()
		return false
	}
	if attrs == nil {
		metrics.ResolutionFailures.Inc()
		return false
	}
	r.cachePut(fuzzyKey, *attrs)
	r.apply(item, *attrs)
	return true
}

// apply writes the bundle onto the record. The document's rarity is
// authoritative; the resolver fills it in only when parsing left it
// Unknown.
func (r *AttributeResolver) apply(item *models.LineItem, attrs CardAttributes) {
	item.Color = attrs.Color
	item.ImageURL = attrs.ImageURL
	if item.Rarity == models.RarityUnknown && attrs.Rarity != models.RarityUnknown {
		item.Rarity = attrs.Rarity
	}
}

func (r *AttributeResolver) cacheGet(key string) (CardAttributes, bool) {
	if attrs, ok := r.session.Get(key); ok {
		return attrs, true
	}
	if r.db != nil {
		var row models.CachedAttribute
		if err := r.db.First(&row, "key = ?", key).Error; err == nil {
			attrs := CardAttributes{
				Name:     row.OracleName,
				Color:    row.Color,
				Rarity:   row.Rarity,
				ImageURL: row.ImageURL,
			}
			r.session.Add(key, attrs)
			return attrs, true
		}
	}
	return CardAttributes{}, false
}

func (r *AttributeResolver) cachePut(key string, attrs CardAttributes) {
	r.session.Add(key, attrs)
	if r.db != nil {
		row := models.CachedAttribute{
			Key:        key,
			Color:      attrs.Color,
			Rarity:     attrs.Rarity,
			ImageURL:   attrs.ImageURL,
			OracleName: attrs.Name,
		}
		if err := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			log.Printf("resolver: could not persist cache entry %s: %v", key, err)
		}
	}
}
