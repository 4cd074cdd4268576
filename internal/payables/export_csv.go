package payables

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meridian-erp/meridian-erp/internal/aging"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	if _, err := s.buf.WriteString(line); err != nil {
		return err
	}
	return nil
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

var csvHeader = []string{
	"Period", "Counterparty",
	"Beg Volume", "Beg Gross", "Beg EWT", "Beg Net",
	"Purch Volume", "Purch Gross", "Purch EWT", "Purch Net",
	"Pay Volume", "Pay Gross", "Pay EWT", "Pay Net",
	"End Volume", "End Gross", "End EWT", "End Net",
	"End Gross/Unit",
}

// WriteCSV streams the report in the spreadsheet layout: metadata
// comment lines, one row per counterparty and month, a subtotal row per
// month and the grand total at the bottom.
func WriteCSV(w io.Writer, report *AgingReport) error {
	streamer := newCSVStreamer(w)
	printer := message.NewPrinter(language.English)

	title := "Trade Payables Aging"
	if report.Kind == ReportFreight {
		title = "Hauler Payables Aging"
	}
	if err := streamer.writeComment(fmt.Sprintf("# Report: %s", title)); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Company: %s | From: %s | To: %s | Run: %s",
		report.CompanyID,
		report.DateFrom.Format("2006-01-02"),
		report.DateTo.Format("2006-01-02"),
		report.RunID)); err != nil {
		return err
	}
	if err := streamer.writeComment(printer.Sprintf("# Grand Ending Gross: %.2f | Anomalies: %d",
		report.Rollup.Grand.Ending.Gross.InexactFloat64(), len(report.Anomalies))); err != nil {
		return err
	}
	if err := streamer.writeRow(csvHeader); err != nil {
		return err
	}

	subtotalAt := make(map[aging.PeriodKey]int)
	for i, sub := range report.Rollup.Subtotals {
		subtotalAt[sub.Period] = i
	}
	var current *aging.PeriodKey
	emitSubtotal := func(period aging.PeriodKey) error {
		i, ok := subtotalAt[period]
		if !ok {
			return nil
		}
		sub := report.Rollup.Subtotals[i]
		row := append([]string{period.String(), "TOTAL"}, bucketCells(sub.Beginning, sub.Purchases, sub.Payments, sub.Ending)...)
		return streamer.writeRow(append(row, formatDecimal(sub.Ending.GrossPerVolume())))
	}
	for _, row := range report.Rows {
		if current != nil && *current != row.Period {
			if err := emitSubtotal(*current); err != nil {
				return err
			}
		}
		period := row.Period
		current = &period
		cells := append([]string{row.Period.String(), row.CounterpartyID},
			bucketCells(row.Beginning, row.Purchases, row.Payments, row.Ending)...)
		if err := streamer.writeRow(append(cells, formatDecimal(row.Ending.GrossPerVolume()))); err != nil {
			return err
		}
	}
	if current != nil {
		if err := emitSubtotal(*current); err != nil {
			return err
		}
	}

	grand := report.Rollup.Grand
	row := append([]string{"", "GRAND TOTAL"}, bucketCells(grand.Beginning, grand.Purchases, grand.Payments, grand.Ending)...)
	if err := streamer.writeRow(append(row, formatDecimal(grand.Ending.GrossPerVolume()))); err != nil {
		return err
	}
	return streamer.Close()
}

func bucketCells(beginning, purchases, payments, ending aging.MoneyQuad) []string {
	cells := make([]string, 0, 16)
	for _, q := range []aging.MoneyQuad{beginning, purchases, payments, ending} {
		cells = append(cells,
			formatDecimal(q.Volume),
			formatDecimal(q.Gross),
			formatDecimal(q.WithholdingTax),
			formatDecimal(q.Net))
	}
	return cells
}

func formatDecimal(v decimal.Decimal) string {
	return v.StringFixed(2)
}
