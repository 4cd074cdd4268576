package payables

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/meridian-erp/meridian-erp/internal/aging"
)

// Service runs aging reports: it validates requests, loads the two
// ledger snapshots, feeds them through the rollforward engine and
// caches the rendered report. Each run builds its own indexes, so
// concurrent requests need no coordination beyond the cache.
type Service struct {
	repo     Repository
	engine   *aging.Engine
	cache    *ReportCache
	validate *validator.Validate
	logger   *slog.Logger
	group    singleflight.Group
	now      func() time.Time
}

// NewService wires the report service. cache may be nil, in which case
// every request recomputes.
func NewService(repo Repository, cache *ReportCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		engine:   aging.NewEngine(logger),
		cache:    cache,
		validate: validator.New(),
		logger:   logger,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// AgingReport produces the rollforward report for one request.
// Identical concurrent requests collapse onto a single computation.
func (s *Service) AgingReport(ctx context.Context, req AgingReportRequest) (*AgingReport, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	params := aging.Params{
		CompanyID: req.CompanyID,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	key := cacheKey(req)
	if s.cache != nil {
		if report, ok, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("report cache read failed", slog.Any("error", err))
		} else if ok {
			return report, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.compute(ctx, req, params, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*AgingReport), nil
}

func (s *Service) compute(ctx context.Context, req AgingReportRequest, params aging.Params, key string) (*AgingReport, error) {
	docs, allocs, err := s.loadSnapshot(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Run(params, docs, allocs)
	if err != nil {
		return nil, err
	}

	report := &AgingReport{
		RunID:       uuid.New(),
		CompanyID:   req.CompanyID,
		Kind:        req.Kind,
		DateFrom:    req.DateFrom,
		DateTo:      req.DateTo,
		GeneratedAt: s.now(),
		Rows:        result.Rows,
		Rollup:      result.Rollup,
		Anomalies:   result.Anomalies,
	}
	s.logger.Info("aging report generated",
		slog.String("run_id", report.RunID.String()),
		slog.String("kind", string(req.Kind)),
		slog.String("company_id", req.CompanyID),
		slog.Int("rows", len(report.Rows)),
		slog.Int("anomalies", len(report.Anomalies)))

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, report); err != nil {
			s.logger.Warn("report cache write failed", slog.Any("error", err))
		}
	}
	return report, nil
}

// loadSnapshot fetches the document and settlement ledgers for the
// requested kind. The two loads are independent and run concurrently.
func (s *Service) loadSnapshot(ctx context.Context, req AgingReportRequest) ([]aging.LiabilityDocument, []aging.PaymentAllocation, error) {
	var (
		docs   []aging.LiabilityDocument
		allocs []aging.PaymentAllocation
	)
	g, ctx := errgroup.WithContext(ctx)
	switch req.Kind {
	case ReportTrade:
		g.Go(func() error {
			receipts, err := s.repo.TradeReceipts(ctx, req.CompanyID, req.DateTo)
			if err != nil {
				return err
			}
			docs = DocumentsFromReceipts(receipts)
			return nil
		})
		g.Go(func() error {
			lines, err := s.repo.TradeSettlements(ctx, req.CompanyID, req.DateTo)
			if err != nil {
				return err
			}
			allocs = AllocationsFromSettlements(lines)
			return nil
		})
	case ReportFreight:
		g.Go(func() error {
			deliveries, err := s.repo.FreightDeliveries(ctx, req.CompanyID, req.DateTo)
			if err != nil {
				return err
			}
			docs = DocumentsFromDeliveries(deliveries)
			return nil
		})
		g.Go(func() error {
			lines, err := s.repo.FreightSettlements(ctx, req.CompanyID, req.DateTo)
			if err != nil {
				return err
			}
			allocs = AllocationsFromSettlements(lines)
			return nil
		})
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return docs, allocs, nil
}

func cacheKey(req AgingReportRequest) string {
	return fmt.Sprintf("%s:%s:%s:%s",
		req.Kind, req.CompanyID,
		req.DateFrom.Format("2006-01-02"), req.DateTo.Format("2006-01-02"))
}
