package aging

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind tags the source transaction behind a liability document.
type DocumentKind string

const (
	// KindReceipt marks a trade goods receipt.
	KindReceipt DocumentKind = "RECEIPT"
	// KindFreight marks a hauler freight delivery.
	KindFreight DocumentKind = "FREIGHT"
)

var (
	// ErrInvalidRange indicates a missing or reversed report date range.
	ErrInvalidRange = errors.New("aging: invalid date range")
	// ErrCompanyRequired indicates a missing company partition key.
	ErrCompanyRequired = errors.New("aging: company is required")
)

// LiabilityDocument is one payable-creating event. The engine never
// mutates documents; they are a read-only snapshot for the run.
type LiabilityDocument struct {
	ID              string
	CounterpartyID  string
	Kind            DocumentKind
	Date            time.Time
	GrossAmount     decimal.Decimal
	Volume          decimal.Decimal
	IsVatable       bool
	IsTaxable       bool
	WithholdingRate decimal.Decimal
}

// PaymentAllocation records one settlement amount against exactly one
// liability document. Counterparty is resolved through the document.
type PaymentAllocation struct {
	ID          string
	DocumentID  string
	PaymentDate time.Time
	AmountPaid  decimal.Decimal
	VolumePaid  decimal.Decimal
}

// MoneyQuad carries the four measures every rollforward bucket is
// expressed in: physical volume, gross amount, withholding tax and
// net-of-tax amount.
type MoneyQuad struct {
	Volume         decimal.Decimal
	Gross          decimal.Decimal
	WithholdingTax decimal.Decimal
	Net            decimal.Decimal
}

// ZeroQuad returns a quad with all components initialised to zero.
func ZeroQuad() MoneyQuad {
	return MoneyQuad{
		Volume:         decimal.Zero,
		Gross:          decimal.Zero,
		WithholdingTax: decimal.Zero,
		Net:            decimal.Zero,
	}
}

// Add returns the component-wise sum of two quads.
func (q MoneyQuad) Add(o MoneyQuad) MoneyQuad {
	return MoneyQuad{
		Volume:         q.Volume.Add(o.Volume),
		Gross:          q.Gross.Add(o.Gross),
		WithholdingTax: q.WithholdingTax.Add(o.WithholdingTax),
		Net:            q.Net.Add(o.Net),
	}
}

// Sub returns the component-wise difference of two quads.
func (q MoneyQuad) Sub(o MoneyQuad) MoneyQuad {
	return MoneyQuad{
		Volume:         q.Volume.Sub(o.Volume),
		Gross:          q.Gross.Sub(o.Gross),
		WithholdingTax: q.WithholdingTax.Sub(o.WithholdingTax),
		Net:            q.Net.Sub(o.Net),
	}
}

// IsZero reports whether every component is zero.
func (q MoneyQuad) IsZero() bool {
	return q.Volume.IsZero() && q.Gross.IsZero() && q.WithholdingTax.IsZero() && q.Net.IsZero()
}

// Equal reports component-wise numeric equality.
func (q MoneyQuad) Equal(o MoneyQuad) bool {
	return q.Volume.Equal(o.Volume) &&
		q.Gross.Equal(o.Gross) &&
		q.WithholdingTax.Equal(o.WithholdingTax) &&
		q.Net.Equal(o.Net)
}

// GrossPerVolume returns the average gross per unit of volume, or zero
// when the volume is zero.
func (q MoneyQuad) GrossPerVolume() decimal.Decimal {
	if q.Volume.IsZero() {
		return decimal.Zero
	}
	return q.Gross.Div(q.Volume)
}

// NetPerVolume returns the average net per unit of volume, or zero when
// the volume is zero.
func (q MoneyQuad) NetPerVolume() decimal.Decimal {
	if q.Volume.IsZero() {
		return decimal.Zero
	}
	return q.Net.Div(q.Volume)
}

// CounterpartyPeriodBalance is one output row of the rollforward: the
// four aging buckets for a counterparty in a calendar month.
type CounterpartyPeriodBalance struct {
	CounterpartyID string
	Period         PeriodKey
	Beginning      MoneyQuad
	Purchases      MoneyQuad
	Payments       MoneyQuad
	Ending         MoneyQuad
}

// AnomalyKind classifies data-integrity conditions detected during a run.
type AnomalyKind string

const (
	// AnomalyOrphanAllocation marks an allocation referencing an unknown document.
	AnomalyOrphanAllocation AnomalyKind = "orphan_allocation"
	// AnomalyOverAllocation marks a document settled beyond its gross amount.
	AnomalyOverAllocation AnomalyKind = "over_allocation"
)

// Anomaly describes one skipped or flagged record. Anomalies are a side
// channel returned with the result, never a reason to abort the run.
type Anomaly struct {
	Kind         AnomalyKind
	DocumentID   string
	AllocationID string
	Detail       string
}

// Result is the full output of one engine run.
type Result struct {
	Rows      []CounterpartyPeriodBalance
	Rollup    Rollup
	Anomalies []Anomaly
}
