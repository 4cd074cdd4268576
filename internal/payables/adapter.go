package payables

import (
	"github.com/meridian-erp/meridian-erp/internal/aging"
)

// The adapters are the only place the two payables ledgers differ; the
// engine itself is kind-agnostic and sees a tagged LiabilityDocument.

// DocumentsFromReceipts maps goods receipts to liability documents.
func DocumentsFromReceipts(receipts []TradeReceipt) []aging.LiabilityDocument {
	docs := make([]aging.LiabilityDocument, 0, len(receipts))
	for _, r := range receipts {
		docs = append(docs, aging.LiabilityDocument{
			ID:              r.ID,
			CounterpartyID:  r.SupplierID,
			Kind:            aging.KindReceipt,
			Date:            r.ReceiptDate,
			GrossAmount:     r.GrossAmount,
			Volume:          r.Volume,
			IsVatable:       r.VATInclusive,
			IsTaxable:       r.EWTApplies,
			WithholdingRate: r.EWTRate,
		})
	}
	return docs
}

// DocumentsFromDeliveries maps freight deliveries to liability documents.
func DocumentsFromDeliveries(deliveries []FreightDelivery) []aging.LiabilityDocument {
	docs := make([]aging.LiabilityDocument, 0, len(deliveries))
	for _, d := range deliveries {
		docs = append(docs, aging.LiabilityDocument{
			ID:              d.ID,
			CounterpartyID:  d.HaulerID,
			Kind:            aging.KindFreight,
			Date:            d.DeliveryDate,
			GrossAmount:     d.FreightAmount,
			Volume:          d.Volume,
			IsVatable:       d.VATInclusive,
			IsTaxable:       d.EWTApplies,
			WithholdingRate: d.EWTRate,
		})
	}
	return docs
}

// AllocationsFromSettlements maps voucher lines to payment allocations.
func AllocationsFromSettlements(lines []SettlementLine) []aging.PaymentAllocation {
	allocs := make([]aging.PaymentAllocation, 0, len(lines))
	for _, l := range lines {
		allocs = append(allocs, aging.PaymentAllocation{
			ID:          l.ID,
			DocumentID:  l.DocumentID,
			PaymentDate: l.VoucherDate,
			AmountPaid:  l.AmountPaid,
			VolumePaid:  l.VolumePaid,
		})
	}
	return allocs
}
