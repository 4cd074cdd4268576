package payables

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/aging"
)

// ReportKind selects which payables ledger a report runs over.
type ReportKind string

const (
	// ReportTrade covers supplier payables created by goods receipts.
	ReportTrade ReportKind = "trade"
	// ReportFreight covers hauler payables created by freight deliveries.
	ReportFreight ReportKind = "freight"
)

var (
	// ErrInvalidRequest indicates the report request failed validation.
	ErrInvalidRequest = errors.New("payables: invalid report request")
	// ErrUnknownKind indicates an unsupported report kind.
	ErrUnknownKind = errors.New("payables: unknown report kind")
)

// TradeReceipt is a posted goods receipt row (RR) as loaded from the
// data store. It creates a supplier payable.
type TradeReceipt struct {
	ID           string
	SupplierID   string
	ReceiptDate  time.Time
	GrossAmount  decimal.Decimal
	Volume       decimal.Decimal
	VATInclusive bool
	EWTApplies   bool
	EWTRate      decimal.Decimal
}

// FreightDelivery is a posted freight delivery row (DR). It creates a
// hauler payable.
type FreightDelivery struct {
	ID            string
	HaulerID      string
	DeliveryDate  time.Time
	FreightAmount decimal.Decimal
	Volume        decimal.Decimal
	VATInclusive  bool
	EWTApplies    bool
	EWTRate       decimal.Decimal
}

// SettlementLine is one voucher line settling a specific source
// document. The counterparty is reached through the document.
type SettlementLine struct {
	ID          string
	DocumentID  string
	VoucherDate time.Time
	AmountPaid  decimal.Decimal
	VolumePaid  decimal.Decimal
}

// AgingReportRequest carries the parameters of one report run.
type AgingReportRequest struct {
	CompanyID string     `validate:"required"`
	Kind      ReportKind `validate:"required,oneof=trade freight"`
	DateFrom  time.Time  `validate:"required"`
	DateTo    time.Time  `validate:"required"`
}

// AgingReport is the rendered result handed to presentation layers.
type AgingReport struct {
	RunID       uuid.UUID                         `json:"run_id"`
	CompanyID   string                            `json:"company_id"`
	Kind        ReportKind                        `json:"kind"`
	DateFrom    time.Time                         `json:"date_from"`
	DateTo      time.Time                         `json:"date_to"`
	GeneratedAt time.Time                         `json:"generated_at"`
	Rows        []aging.CounterpartyPeriodBalance `json:"rows"`
	Rollup      aging.Rollup                      `json:"rollup"`
	Anomalies   []aging.Anomaly                   `json:"anomalies"`
}
