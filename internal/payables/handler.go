package payables

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-erp/internal/aging"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// Handler exposes the aging reports over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the payables HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes mounts the report endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/aging/{kind}", h.handleReport)
	r.Get("/aging/{kind}/export", h.handleExport)
	return r
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	req, err := parseReportRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	report, err := h.service.AgingReport(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	req, err := parseReportRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	report, err := h.service.AgingReport(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	filename := fmt.Sprintf("payables-aging-%s-%s-%s.csv",
		report.Kind,
		report.DateFrom.Format("20060102"),
		report.DateTo.Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := WriteCSV(w, report); err != nil {
		h.logger.Error("stream aging csv", slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrUnknownKind),
		errors.Is(err, aging.ErrInvalidRange),
		errors.Is(err, aging.ErrCompanyRequired):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, shared.ErrUnavailable):
		h.logger.Error("aging report backing store unreachable", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "")
	default:
		h.logger.Error("aging report failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseReportRequest(r *http.Request) (AgingReportRequest, error) {
	kind := ReportKind(chi.URLParam(r, "kind"))
	if kind != ReportTrade && kind != ReportFreight {
		return AgingReportRequest{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	q := r.URL.Query()
	from, err := parseDate(q.Get("date_from"))
	if err != nil {
		return AgingReportRequest{}, fmt.Errorf("date_from: %w", err)
	}
	to, err := parseDate(q.Get("date_to"))
	if err != nil {
		return AgingReportRequest{}, fmt.Errorf("date_to: %w", err)
	}
	return AgingReportRequest{
		CompanyID: q.Get("company_id"),
		Kind:      kind,
		DateFrom:  from,
		DateTo:    to,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("missing date")
	}
	return time.Parse("2006-01-02", value)
}
