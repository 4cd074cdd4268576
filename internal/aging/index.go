package aging

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"
)

// DocumentIndex holds the liability snapshot keyed by counterparty and
// by document id. It is built once per run and read-only afterwards.
type DocumentIndex struct {
	byID           map[string]*LiabilityDocument
	byCounterparty map[string][]*LiabilityDocument
	counterparties []string
}

// NewDocumentIndex indexes the document snapshot. Documents per
// counterparty are kept in date order (id as tie break) so repeated
// runs over the same snapshot iterate identically.
func NewDocumentIndex(docs []LiabilityDocument) *DocumentIndex {
	idx := &DocumentIndex{
		byID:           make(map[string]*LiabilityDocument, len(docs)),
		byCounterparty: make(map[string][]*LiabilityDocument),
	}
	for i := range docs {
		doc := &docs[i]
		idx.byID[doc.ID] = doc
		idx.byCounterparty[doc.CounterpartyID] = append(idx.byCounterparty[doc.CounterpartyID], doc)
	}
	for id, list := range idx.byCounterparty {
		sort.Slice(list, func(i, j int) bool {
			if !list[i].Date.Equal(list[j].Date) {
				return list[i].Date.Before(list[j].Date)
			}
			return list[i].ID < list[j].ID
		})
		idx.counterparties = append(idx.counterparties, id)
	}
	sort.Strings(idx.counterparties)
	return idx
}

// Lookup resolves a document by id.
func (x *DocumentIndex) Lookup(id string) (*LiabilityDocument, bool) {
	doc, ok := x.byID[id]
	return doc, ok
}

// ByCounterparty returns the counterparty's documents in date order.
func (x *DocumentIndex) ByCounterparty(counterpartyID string) []*LiabilityDocument {
	return x.byCounterparty[counterpartyID]
}

// Counterparties lists every counterparty with at least one document,
// sorted for deterministic iteration.
func (x *DocumentIndex) Counterparties() []string {
	return x.counterparties
}

// DocumentsWithinPeriod returns the counterparty's documents dated in
// the given period.
func (x *DocumentIndex) DocumentsWithinPeriod(counterpartyID string, period PeriodKey) []*LiabilityDocument {
	var out []*LiabilityDocument
	for _, doc := range x.byCounterparty[counterpartyID] {
		if PeriodOf(doc.Date) == period {
			out = append(out, doc)
		}
	}
	return out
}

// DocumentsBefore returns the counterparty's documents dated strictly
// before the given period.
func (x *DocumentIndex) DocumentsBefore(counterpartyID string, period PeriodKey) []*LiabilityDocument {
	var out []*LiabilityDocument
	for _, doc := range x.byCounterparty[counterpartyID] {
		if !PeriodOf(doc.Date).Before(period) {
			// byCounterparty is date ordered; nothing later qualifies.
			break
		}
		out = append(out, doc)
	}
	return out
}

// PaymentIndex holds the allocation snapshot keyed by the document each
// allocation settles, with counterparty resolved through the document
// join. Allocations referencing unknown documents are skipped and
// reported as anomalies.
type PaymentIndex struct {
	byDocument     map[string][]*PaymentAllocation
	byCounterparty map[string][]*PaymentAllocation
	anomalies      []Anomaly
}

// NewPaymentIndex indexes the allocation snapshot against the already
// built document index. A single bad row never aborts the run.
func NewPaymentIndex(allocs []PaymentAllocation, docs *DocumentIndex, logger *slog.Logger) *PaymentIndex {
	idx := &PaymentIndex{
		byDocument:     make(map[string][]*PaymentAllocation),
		byCounterparty: make(map[string][]*PaymentAllocation),
	}
	ordered := make([]*PaymentAllocation, 0, len(allocs))
	for i := range allocs {
		ordered = append(ordered, &allocs[i])
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].PaymentDate.Equal(ordered[j].PaymentDate) {
			return ordered[i].PaymentDate.Before(ordered[j].PaymentDate)
		}
		return ordered[i].ID < ordered[j].ID
	})
	for _, alloc := range ordered {
		doc, ok := docs.Lookup(alloc.DocumentID)
		if !ok {
			if logger != nil {
				logger.Warn("skipping allocation for unknown document",
					slog.String("allocation_id", alloc.ID),
					slog.String("document_id", alloc.DocumentID))
			}
			idx.anomalies = append(idx.anomalies, Anomaly{
				Kind:         AnomalyOrphanAllocation,
				DocumentID:   alloc.DocumentID,
				AllocationID: alloc.ID,
				Detail:       fmt.Sprintf("allocation %s references unknown document %s", alloc.ID, alloc.DocumentID),
			})
			continue
		}
		idx.byDocument[alloc.DocumentID] = append(idx.byDocument[alloc.DocumentID], alloc)
		idx.byCounterparty[doc.CounterpartyID] = append(idx.byCounterparty[doc.CounterpartyID], alloc)
	}
	idx.flagOverAllocations(docs, logger)
	return idx
}

// flagOverAllocations records documents settled beyond their gross
// amount. The excess is surfaced as a negative ending balance by the
// aggregator, so the rows stay in; the anomaly only flags them.
func (x *PaymentIndex) flagOverAllocations(docs *DocumentIndex, logger *slog.Logger) {
	ids := make([]string, 0, len(x.byDocument))
	for id := range x.byDocument {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		doc, ok := docs.Lookup(id)
		if !ok {
			continue
		}
		paid := decimal.Zero
		for _, alloc := range x.byDocument[id] {
			paid = paid.Add(alloc.AmountPaid)
		}
		if paid.GreaterThan(doc.GrossAmount) {
			if logger != nil {
				logger.Warn("document over-allocated",
					slog.String("document_id", id),
					slog.String("gross", doc.GrossAmount.String()),
					slog.String("paid", paid.String()))
			}
			x.anomalies = append(x.anomalies, Anomaly{
				Kind:       AnomalyOverAllocation,
				DocumentID: id,
				Detail:     fmt.Sprintf("document %s gross %s settled with %s", id, doc.GrossAmount, paid),
			})
		}
	}
}

// AllocationsForDocument returns the allocations settling one document
// in payment-date order.
func (x *PaymentIndex) AllocationsForDocument(documentID string) []*PaymentAllocation {
	return x.byDocument[documentID]
}

// AllocationsByCounterpartyAndPeriod returns the counterparty's
// allocations paid within the given period, regardless of which period
// the settled documents belong to.
func (x *PaymentIndex) AllocationsByCounterpartyAndPeriod(counterpartyID string, period PeriodKey) []*PaymentAllocation {
	var out []*PaymentAllocation
	for _, alloc := range x.byCounterparty[counterpartyID] {
		if PeriodOf(alloc.PaymentDate) == period {
			out = append(out, alloc)
		}
	}
	return out
}

// AllocationsBefore returns the counterparty's allocations paid
// strictly before the given period.
func (x *PaymentIndex) AllocationsBefore(counterpartyID string, period PeriodKey) []*PaymentAllocation {
	var out []*PaymentAllocation
	for _, alloc := range x.byCounterparty[counterpartyID] {
		if !PeriodOf(alloc.PaymentDate).Before(period) {
			// byCounterparty is payment-date ordered.
			break
		}
		out = append(out, alloc)
	}
	return out
}

// Counterparties lists every counterparty with at least one resolved
// allocation, sorted.
func (x *PaymentIndex) Counterparties() []string {
	ids := make([]string, 0, len(x.byCounterparty))
	for id := range x.byCounterparty {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Anomalies returns the data-integrity conditions collected while
// building the index.
func (x *PaymentIndex) Anomalies() []Anomaly {
	return x.anomalies
}
