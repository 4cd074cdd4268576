package aging

import (
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Params bound one engine run. CompanyID is a pre-applied partition key
// the engine treats as opaque; the date range decides which months are
// reported, while documents and payments dated before the range still
// feed the beginning balances.
type Params struct {
	CompanyID string
	DateFrom  time.Time
	DateTo    time.Time
}

// Validate rejects invalid invocations before any aggregation begins.
func (p Params) Validate() error {
	if p.CompanyID == "" {
		return ErrCompanyRequired
	}
	if p.DateFrom.IsZero() || p.DateTo.IsZero() {
		return ErrInvalidRange
	}
	if p.DateTo.Before(p.DateFrom) {
		return ErrInvalidRange
	}
	return nil
}

// Engine computes the aged-balance rollforward over a snapshot of the
// two input ledgers. It holds no mutable state across runs; concurrent
// runs need only their own snapshots.
type Engine struct {
	logger *slog.Logger
}

// NewEngine constructs an engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Run folds the snapshot period by period, chronologically, producing
// one row per (counterparty, period) with activity plus the aggregate
// rollup. Data-integrity anomalies are returned alongside the rows,
// never raised.
func (e *Engine) Run(params Params, docs []LiabilityDocument, allocs []PaymentAllocation) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	docIdx := NewDocumentIndex(docs)
	payIdx := NewPaymentIndex(allocs, docIdx, e.logger)
	periods := PeriodsBetween(PeriodOf(params.DateFrom), PeriodOf(params.DateTo))

	// carried holds each counterparty's ending balance from its most
	// recent emitted row. Months without activity emit no row and leave
	// the carry untouched, so the chain survives sparse months.
	carried := make(map[string]MoneyQuad)
	var rows []CounterpartyPeriodBalance

	for _, period := range periods {
		for _, counterpartyID := range activeCounterparties(docIdx, payIdx, period) {
			purchases := purchasesBucket(docIdx, counterpartyID, period)
			payments := paymentsBucket(docIdx, payIdx, counterpartyID, period)

			beginning, ok := carried[counterpartyID]
			if !ok {
				beginning = beginningBucket(docIdx, payIdx, counterpartyID, period)
			}
			// The one derived bucket: a closed arithmetic identity over
			// the other three, never re-aggregated from documents.
			ending := beginning.Add(purchases).Sub(payments)
			carried[counterpartyID] = ending

			rows = append(rows, CounterpartyPeriodBalance{
				CounterpartyID: counterpartyID,
				Period:         period,
				Beginning:      beginning,
				Purchases:      purchases,
				Payments:       payments,
				Ending:         ending,
			})
		}
	}

	result := Result{
		Rows:      rows,
		Rollup:    BuildRollup(rows),
		Anomalies: payIdx.Anomalies(),
	}
	e.logger.Info("aging rollforward complete",
		slog.String("company_id", params.CompanyID),
		slog.Int("periods", len(periods)),
		slog.Int("rows", len(rows)),
		slog.Int("anomalies", len(result.Anomalies)))
	return result, nil
}

// activeCounterparties returns, sorted, every counterparty with at
// least one document dated in the period or one allocation paid in it.
func activeCounterparties(docIdx *DocumentIndex, payIdx *PaymentIndex, period PeriodKey) []string {
	set := make(map[string]struct{})
	for _, id := range docIdx.Counterparties() {
		if len(docIdx.DocumentsWithinPeriod(id, period)) > 0 {
			set[id] = struct{}{}
		}
	}
	for _, id := range payIdx.Counterparties() {
		if len(payIdx.AllocationsByCounterpartyAndPeriod(id, period)) > 0 {
			set[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// purchasesBucket sums the counterparty's documents dated in the
// period. Tax is normalised per document with the document's own flags;
// a period can legitimately mix vatable and non-vatable documents.
func purchasesBucket(docIdx *DocumentIndex, counterpartyID string, period PeriodKey) MoneyQuad {
	total := ZeroQuad()
	for _, doc := range docIdx.DocumentsWithinPeriod(counterpartyID, period) {
		total = total.Add(normalizeDocument(doc, doc.GrossAmount, doc.Volume))
	}
	return total
}

// paymentsBucket sums the counterparty's allocations paid in the
// period, whichever period the settled documents belong to.
func paymentsBucket(docIdx *DocumentIndex, payIdx *PaymentIndex, counterpartyID string, period PeriodKey) MoneyQuad {
	return normalizePaymentGroup(payIdx.AllocationsByCounterpartyAndPeriod(counterpartyID, period), docIdx)
}

// normalizePaymentGroup applies the payment-side tax convention to one
// period's allocations: the withholding rate is the mean over the
// distinct documents the group references, applied per allocation with
// the settled document's own VAT and taxable flags.
func normalizePaymentGroup(allocs []*PaymentAllocation, docIdx *DocumentIndex) MoneyQuad {
	total := ZeroQuad()
	if len(allocs) == 0 {
		return total
	}
	rateSum := decimal.Zero
	seen := make(map[string]struct{})
	for _, alloc := range allocs {
		if _, ok := seen[alloc.DocumentID]; ok {
			continue
		}
		seen[alloc.DocumentID] = struct{}{}
		if doc, ok := docIdx.Lookup(alloc.DocumentID); ok {
			rateSum = rateSum.Add(doc.WithholdingRate)
		}
	}
	avgRate := rateSum.Div(decimal.NewFromInt(int64(len(seen))))
	for _, alloc := range allocs {
		doc, ok := docIdx.Lookup(alloc.DocumentID)
		if !ok {
			continue
		}
		b := Normalize(alloc.AmountPaid, doc.IsVatable, doc.IsTaxable, avgRate)
		total = total.Add(MoneyQuad{
			Volume:         alloc.VolumePaid,
			Gross:          alloc.AmountPaid,
			WithholdingTax: b.WithholdingTax,
			Net:            b.NetOfTax,
		})
	}
	return total
}

// beginningBucket reconstructs the unsettled balance the counterparty
// carries into the period, directly from raw documents and payments:
// all documents dated before the period, net of all payments recorded
// before it against those documents. Historical payments are grouped by
// their own payment month and normalised with the same averaged-rate
// convention the payments bucket uses, so this raw derivation agrees
// with the carried ending of any earlier emitted row.
func beginningBucket(docIdx *DocumentIndex, payIdx *PaymentIndex, counterpartyID string, period PeriodKey) MoneyQuad {
	total := ZeroQuad()
	for _, doc := range docIdx.DocumentsBefore(counterpartyID, period) {
		total = total.Add(normalizeDocument(doc, doc.GrossAmount, doc.Volume))
	}

	groups := make(map[PeriodKey][]*PaymentAllocation)
	var order []PeriodKey
	for _, alloc := range payIdx.AllocationsBefore(counterpartyID, period) {
		doc, ok := docIdx.Lookup(alloc.DocumentID)
		if !ok || !PeriodOf(doc.Date).Before(period) {
			continue
		}
		key := PeriodOf(alloc.PaymentDate)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], alloc)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })
	for _, key := range order {
		total = total.Sub(normalizePaymentGroup(groups[key], docIdx))
	}
	return total
}
