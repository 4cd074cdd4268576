package payables

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/aging"
)

func TestDocumentsFromReceipts(t *testing.T) {
	receipts := []TradeReceipt{
		{
			ID:           "RR-9",
			SupplierID:   "S3",
			ReceiptDate:  time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC),
			GrossAmount:  mustDec(t, "500.00"),
			Volume:       mustDec(t, "40"),
			VATInclusive: true,
			EWTApplies:   false,
			EWTRate:      mustDec(t, "0.01"),
		},
	}
	docs := DocumentsFromReceipts(receipts)
	require.Len(t, docs, 1)
	require.Equal(t, aging.KindReceipt, docs[0].Kind)
	require.Equal(t, "S3", docs[0].CounterpartyID)
	require.True(t, docs[0].IsVatable)
	require.False(t, docs[0].IsTaxable)
	require.True(t, docs[0].GrossAmount.Equal(mustDec(t, "500.00")))
}

func TestDocumentsFromDeliveries(t *testing.T) {
	deliveries := []FreightDelivery{
		{
			ID:            "DR-4",
			HaulerID:      "H1",
			DeliveryDate:  time.Date(2024, time.April, 9, 0, 0, 0, 0, time.UTC),
			FreightAmount: mustDec(t, "80.00"),
			Volume:        mustDec(t, "12"),
			EWTApplies:    true,
			EWTRate:       mustDec(t, "0.02"),
		},
	}
	docs := DocumentsFromDeliveries(deliveries)
	require.Len(t, docs, 1)
	require.Equal(t, aging.KindFreight, docs[0].Kind)
	require.Equal(t, "H1", docs[0].CounterpartyID)
	require.False(t, docs[0].IsVatable)
	require.True(t, docs[0].GrossAmount.Equal(mustDec(t, "80.00")))
}

func TestAllocationsFromSettlements(t *testing.T) {
	lines := []SettlementLine{
		{
			ID:          "CV-2",
			DocumentID:  "RR-9",
			VoucherDate: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
			AmountPaid:  mustDec(t, "250.00"),
			VolumePaid:  mustDec(t, "20"),
		},
	}
	allocs := AllocationsFromSettlements(lines)
	require.Len(t, allocs, 1)
	require.Equal(t, "RR-9", allocs[0].DocumentID)
	require.True(t, allocs[0].AmountPaid.Equal(mustDec(t, "250.00")))
	require.Equal(t, lines[0].VoucherDate, allocs[0].PaymentDate)
}
