package payables

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// Repository loads snapshot ledgers for one report run. Implementations
// must already apply the company partition and exclude null-dated rows;
// the engine does not handle missing dates. through is the report's
// dateTo: rows dated after it never participate, while rows before the
// range feed the beginning balances.
type Repository interface {
	TradeReceipts(ctx context.Context, companyID string, through time.Time) ([]TradeReceipt, error)
	FreightDeliveries(ctx context.Context, companyID string, through time.Time) ([]FreightDelivery, error)
	TradeSettlements(ctx context.Context, companyID string, through time.Time) ([]SettlementLine, error)
	FreightSettlements(ctx context.Context, companyID string, through time.Time) ([]SettlementLine, error)
}

// Ensure implementation
var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed snapshot loader.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) TradeReceipts(ctx context.Context, companyID string, through time.Time) ([]TradeReceipt, error) {
	rows, err := r.pool.Query(ctx, `SELECT rr.id, rr.supplier_id, rr.receipt_date, rr.gross_amount, rr.volume, rr.vat_inclusive, rr.ewt_applies, rr.ewt_rate
FROM trade_receipts rr
WHERE rr.company_id = $1 AND rr.receipt_date IS NOT NULL AND rr.receipt_date <= $2
ORDER BY rr.receipt_date, rr.id`, companyID, through)
	if err != nil {
		return nil, mapPGError("trade receipts", err)
	}
	defer rows.Close()
	var receipts []TradeReceipt
	for rows.Next() {
		var rec TradeReceipt
		if err := rows.Scan(&rec.ID, &rec.SupplierID, &rec.ReceiptDate, &rec.GrossAmount, &rec.Volume, &rec.VATInclusive, &rec.EWTApplies, &rec.EWTRate); err != nil {
			return nil, err
		}
		receipts = append(receipts, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return receipts, nil
}

func (r *pgRepository) FreightDeliveries(ctx context.Context, companyID string, through time.Time) ([]FreightDelivery, error) {
	rows, err := r.pool.Query(ctx, `SELECT dr.id, dr.hauler_id, dr.delivery_date, dr.freight_amount, dr.volume, dr.vat_inclusive, dr.ewt_applies, dr.ewt_rate
FROM freight_deliveries dr
WHERE dr.company_id = $1 AND dr.delivery_date IS NOT NULL AND dr.delivery_date <= $2
ORDER BY dr.delivery_date, dr.id`, companyID, through)
	if err != nil {
		return nil, mapPGError("freight deliveries", err)
	}
	defer rows.Close()
	var deliveries []FreightDelivery
	for rows.Next() {
		var del FreightDelivery
		if err := rows.Scan(&del.ID, &del.HaulerID, &del.DeliveryDate, &del.FreightAmount, &del.Volume, &del.VATInclusive, &del.EWTApplies, &del.EWTRate); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, del)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return deliveries, nil
}

func (r *pgRepository) TradeSettlements(ctx context.Context, companyID string, through time.Time) ([]SettlementLine, error) {
	return r.settlements(ctx, `SELECT sl.id, sl.document_id, sl.voucher_date, sl.amount_paid, sl.volume_paid
FROM trade_settlement_lines sl
WHERE sl.company_id = $1 AND sl.voucher_date IS NOT NULL AND sl.voucher_date <= $2
ORDER BY sl.voucher_date, sl.id`, companyID, through)
}

func (r *pgRepository) FreightSettlements(ctx context.Context, companyID string, through time.Time) ([]SettlementLine, error) {
	return r.settlements(ctx, `SELECT sl.id, sl.document_id, sl.voucher_date, sl.amount_paid, sl.volume_paid
FROM freight_settlement_lines sl
WHERE sl.company_id = $1 AND sl.voucher_date IS NOT NULL AND sl.voucher_date <= $2
ORDER BY sl.voucher_date, sl.id`, companyID, through)
}

func (r *pgRepository) settlements(ctx context.Context, query, companyID string, through time.Time) ([]SettlementLine, error) {
	rows, err := r.pool.Query(ctx, query, companyID, through)
	if err != nil {
		return nil, mapPGError("settlements", err)
	}
	defer rows.Close()
	var lines []SettlementLine
	for rows.Next() {
		var line SettlementLine
		if err := rows.Scan(&line.ID, &line.DocumentID, &line.VoucherDate, &line.AmountPaid, &line.VolumePaid); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// mapPGError keeps storage errors readable upstream.
func mapPGError(what string, err error) error {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		switch {
		case pgErr.Code == "42P01":
			return fmt.Errorf("payables: %s relation missing: %w", what, shared.ErrNotFound)
		case strings.HasPrefix(pgErr.Code, "08"):
			return fmt.Errorf("payables: %s store unreachable: %w", what, shared.ErrUnavailable)
		}
	}
	return fmt.Errorf("payables: load %s: %w", what, err)
}
