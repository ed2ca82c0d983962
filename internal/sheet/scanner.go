// Package sheet owns the spreadsheet-facing halves of the monitor: the
// scan for rows whose target columns are still blank, and the batched
// write-back of finished results.
package sheet

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/adwatch/internal/model"
	"github.com/sells-group/adwatch/pkg/sheets"
)

// Required column names, matched exactly against the header row.
const (
	ColProfileURL = "profileUrl"
	ColAdsFlag    = "LI Ads?"
	ColLast30     = "30 days"
	ColOverall    = "Overall"
)

// readRange covers every column the store contract allows.
const readRange = "A1:Z"

// profileURLMarker is the identifier pattern a row must carry to qualify.
const profileURLMarker = "linkedin.com/in/"

// Scanner finds rows with an identifier but at least one blank target
// column. Column positions are re-resolved from the header on every scan.
type Scanner struct {
	client  sheets.Client
	sheetID string
	log     *zap.Logger
}

// NewScanner creates a scanner for one spreadsheet.
func NewScanner(client sheets.Client, sheetID string) *Scanner {
	return &Scanner{
		client:  client,
		sheetID: sheetID,
		log:     zap.L().With(zap.String("component", "sheet.scanner")),
	}
}

// Scan returns the pending rows in sheet order. An empty result is the
// normal nothing-to-do signal; a missing required column is an error and
// fails the whole pass.
func (s *Scanner) Scan(ctx context.Context) ([]model.PendingRow, error) {
	title, err := s.client.Title(ctx, s.sheetID)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: resolve sheet title")
	}

	values, err := s.client.Values(ctx, s.sheetID, title+"!"+readRange)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: read values")
	}

	// Need at least the header row and one data row.
	if len(values) < 2 {
		s.log.Info("sheet has no data rows")
		return nil, nil
	}

	headers := values[0]
	urlCol := columnIndex(headers, ColProfileURL)
	adsCol := columnIndex(headers, ColAdsFlag)
	daysCol := columnIndex(headers, ColLast30)
	overallCol := columnIndex(headers, ColOverall)
	for _, col := range []struct {
		name string
		idx  int
	}{
		{ColProfileURL, urlCol},
		{ColAdsFlag, adsCol},
		{ColLast30, daysCol},
		{ColOverall, overallCol},
	} {
		if col.idx < 0 {
			return nil, eris.Errorf("sheet: required column %q not found in header", col.name)
		}
	}

	var pending []model.PendingRow
	for i, row := range values[1:] {
		rowNum := i + 2 // 1-based, after the header row

		u := strings.TrimSpace(cell(row, urlCol))
		if u == "" || !strings.Contains(u, profileURLMarker) {
			continue
		}

		if !blank(row, adsCol) && !blank(row, daysCol) && !blank(row, overallCol) {
			continue
		}

		pending = append(pending, model.PendingRow{
			ProfileURL: u,
			Row:        rowNum,
			AdsCol:     adsCol,
			DaysCol:    daysCol,
			OverallCol: overallCol,
		})
	}

	s.log.Info("scan complete",
		zap.Int("total_rows", len(values)-1),
		zap.Int("pending", len(pending)),
	)
	return pending, nil
}

func columnIndex(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

// cell returns the value at col, or empty when the row is too short.
// The API omits trailing empty cells.
func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return row[col]
}

func blank(row []string, col int) bool {
	return strings.TrimSpace(cell(row, col)) == ""
}
