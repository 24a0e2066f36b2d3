package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/codyseavey/pullsheet/internal/metrics"
	"github.com/codyseavey/pullsheet/internal/models"
)

// ErrNoRecords is the fatal outcome for a document that produced no
// parseable line items; everything softer degrades counters instead.
var ErrNoRecords = errors.New("no line items found in document")

// ErrNoSetTable means the reference-table sync failed and no override or
// persisted table exists either, so no meaningful lookup can happen.
var ErrNoSetTable = errors.New("set reference table unavailable")

// Organizer runs the full pipeline: parse lines, sync the set table,
// enrich each record, plan the pull order. Components run strictly in that
// order; each either produces, enriches, or reorders the record sequence.
type Organizer struct {
	sets     *SetResolver
	resolver *AttributeResolver

	syncMu sync.Mutex
	synced bool
}

func NewOrganizer(sets *SetResolver, resolver *AttributeResolver) *Organizer {
	return &Organizer{sets: sets, resolver: resolver}
}

// Organize turns extracted document lines into the grouped, enriched pull
// sheet. It fails only when no records parse at all or when no set table of
// any kind is available; per-record faults degrade the summary counters.
func (o *Organizer) Organize(ctx context.Context, lines []string) (*models.OrganizedSlip, error) {
	parsed := ParseSlip(lines)
	metrics.ParsedRecordsTotal.Add(float64(parsed.Report.Records))
	metrics.UnattributableLinesTotal.Add(float64(parsed.Report.UnattributableLines))
	metrics.PriceMismatchesTotal.Add(float64(parsed.Report.PriceMismatches))
	if len(parsed.Items) == 0 {
		return nil, ErrNoRecords
	}

	o.ensureSynced(ctx)
	if !o.sets.Usable() {
		return nil, ErrNoSetTable
	}

	unresolved := o.resolver.ResolveAll(ctx, parsed.Items)
	metrics.UnresolvedRecordsTotal.Add(float64(unresolved))

	groups := PlanPullOrder(parsed.Items)
	summary := Summarize(parsed.Items, parsed.Report)

	return &models.OrganizedSlip{
		RunID:       uuid.NewString(),
		OrderNumber: parsed.OrderNumber,
		Groups:      groups,
		Summary:     summary,
	}, nil
}

// ensureSynced runs the set sync once per process. Concurrent first requests
// serialize here so only one of them hits Scryfall. A failed sync leaves the
// flag unset: the run continues degraded and the next request tries again.
func (o *Organizer) ensureSynced(ctx context.Context) {
	o.syncMu.Lock()
	defer o.syncMu.Unlock()
	if o.synced {
		return
	}
	if err := o.sets.Sync(ctx); err != nil {
		log.Printf("organizer: continuing with degraded set table: %v", err)
		return
	}
	o.synced = true
}
