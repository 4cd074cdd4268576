package aging

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testDoc(t *testing.T, id, counterparty string, date time.Time, gross, volume string) LiabilityDocument {
	t.Helper()
	return LiabilityDocument{
		ID:              id,
		CounterpartyID:  counterparty,
		Kind:            KindReceipt,
		Date:            date,
		GrossAmount:     dec(t, gross),
		Volume:          dec(t, volume),
		IsVatable:       true,
		IsTaxable:       true,
		WithholdingRate: dec(t, "0.01"),
	}
}

func testAlloc(t *testing.T, id, docID string, date time.Time, amount string) PaymentAllocation {
	t.Helper()
	return PaymentAllocation{
		ID:          id,
		DocumentID:  docID,
		PaymentDate: date,
		AmountPaid:  dec(t, amount),
		VolumePaid:  decimal.Zero,
	}
}

func TestDocumentIndexOrdersByDate(t *testing.T) {
	docs := []LiabilityDocument{
		testDoc(t, "D2", "S1", day(2024, time.February, 1), "50", "1"),
		testDoc(t, "D1", "S1", day(2024, time.January, 10), "100", "2"),
		testDoc(t, "D3", "S2", day(2024, time.January, 5), "75", "3"),
	}
	idx := NewDocumentIndex(docs)

	list := idx.ByCounterparty("S1")
	require.Len(t, list, 2)
	require.Equal(t, "D1", list[0].ID)
	require.Equal(t, "D2", list[1].ID)

	require.Equal(t, []string{"S1", "S2"}, idx.Counterparties())

	doc, ok := idx.Lookup("D3")
	require.True(t, ok)
	require.Equal(t, "S2", doc.CounterpartyID)

	_, ok = idx.Lookup("D9")
	require.False(t, ok)
}

func TestDocumentIndexPeriodQueries(t *testing.T) {
	idx := NewDocumentIndex([]LiabilityDocument{
		testDoc(t, "D1", "S1", day(2024, time.January, 10), "100", "1"),
		testDoc(t, "D2", "S1", day(2024, time.February, 3), "200", "2"),
		testDoc(t, "D3", "S1", day(2024, time.February, 20), "300", "3"),
	})

	feb := PeriodKey{2024, time.February}
	within := idx.DocumentsWithinPeriod("S1", feb)
	require.Len(t, within, 2)
	require.Equal(t, "D2", within[0].ID)

	before := idx.DocumentsBefore("S1", feb)
	require.Len(t, before, 1)
	require.Equal(t, "D1", before[0].ID)

	require.Empty(t, idx.DocumentsBefore("S1", PeriodKey{2024, time.January}))
	require.Empty(t, idx.DocumentsWithinPeriod("S9", feb))
}

func TestPaymentIndexResolvesCounterpartyThroughDocument(t *testing.T) {
	docIdx := NewDocumentIndex([]LiabilityDocument{
		testDoc(t, "D1", "S1", day(2024, time.January, 10), "100", "1"),
		testDoc(t, "D2", "S2", day(2024, time.January, 12), "200", "2"),
	})
	payIdx := NewPaymentIndex([]PaymentAllocation{
		testAlloc(t, "A1", "D1", day(2024, time.February, 5), "40"),
		testAlloc(t, "A2", "D1", day(2024, time.March, 5), "60"),
		testAlloc(t, "A3", "D2", day(2024, time.February, 8), "200"),
	}, docIdx, slog.Default())

	require.Empty(t, payIdx.Anomalies())
	require.Equal(t, []string{"S1", "S2"}, payIdx.Counterparties())

	feb := PeriodKey{2024, time.February}
	s1Feb := payIdx.AllocationsByCounterpartyAndPeriod("S1", feb)
	require.Len(t, s1Feb, 1)
	require.Equal(t, "A1", s1Feb[0].ID)

	before := payIdx.AllocationsBefore("S1", PeriodKey{2024, time.March})
	require.Len(t, before, 1)
	require.Equal(t, "A1", before[0].ID)

	require.Len(t, payIdx.AllocationsForDocument("D1"), 2)
}

func TestPaymentIndexSkipsOrphanAllocations(t *testing.T) {
	docIdx := NewDocumentIndex([]LiabilityDocument{
		testDoc(t, "D1", "S1", day(2024, time.January, 10), "100", "1"),
	})
	payIdx := NewPaymentIndex([]PaymentAllocation{
		testAlloc(t, "A1", "D1", day(2024, time.January, 20), "100"),
		testAlloc(t, "A2", "MISSING", day(2024, time.January, 21), "50"),
	}, docIdx, slog.Default())

	anomalies := payIdx.Anomalies()
	require.Len(t, anomalies, 1)
	require.Equal(t, AnomalyOrphanAllocation, anomalies[0].Kind)
	require.Equal(t, "A2", anomalies[0].AllocationID)
	require.Equal(t, "MISSING", anomalies[0].DocumentID)

	// The orphan must not leak into any lookup.
	require.Empty(t, payIdx.AllocationsForDocument("MISSING"))
	require.Len(t, payIdx.AllocationsByCounterpartyAndPeriod("S1", PeriodKey{2024, time.January}), 1)
}

func TestPaymentIndexFlagsOverAllocation(t *testing.T) {
	docIdx := NewDocumentIndex([]LiabilityDocument{
		testDoc(t, "D1", "S1", day(2024, time.January, 10), "100", "1"),
	})
	payIdx := NewPaymentIndex([]PaymentAllocation{
		testAlloc(t, "A1", "D1", day(2024, time.January, 20), "150"),
	}, docIdx, slog.Default())

	anomalies := payIdx.Anomalies()
	require.Len(t, anomalies, 1)
	require.Equal(t, AnomalyOverAllocation, anomalies[0].Kind)
	require.Equal(t, "D1", anomalies[0].DocumentID)

	// Flagged, not skipped: the allocation still participates.
	require.Len(t, payIdx.AllocationsForDocument("D1"), 1)
}
