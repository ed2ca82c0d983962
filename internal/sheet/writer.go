package sheet

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/adwatch/internal/model"
	"github.com/sells-group/adwatch/pkg/sheets"
)

// Writer writes finished row updates back to the spreadsheet, one cell
// range per target column per row, in a single batched request.
type Writer struct {
	client  sheets.Client
	sheetID string
	log     *zap.Logger
}

// NewWriter creates a writer for one spreadsheet.
func NewWriter(client sheets.Client, sheetID string) *Writer {
	return &Writer{
		client:  client,
		sheetID: sheetID,
		log:     zap.L().With(zap.String("component", "sheet.writer")),
	}
}

// Write persists all updates in one batch. Row positions and column
// indices are used exactly as carried from the scan.
func (w *Writer) Write(ctx context.Context, updates []model.RowUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	title, err := w.client.Title(ctx, w.sheetID)
	if err != nil {
		return eris.Wrap(err, "sheet: resolve sheet title")
	}

	data := make([]sheets.ValueRange, 0, len(updates)*3)
	for _, u := range updates {
		data = append(data,
			cellUpdate(title, u.AdsCol, u.Row, u.Flag),
			cellUpdate(title, u.DaysCol, u.Row, u.Last30),
			cellUpdate(title, u.OverallCol, u.Row, u.AllTime),
		)
	}

	if err := w.client.BatchUpdate(ctx, w.sheetID, data); err != nil {
		return eris.Wrap(err, "sheet: write updates")
	}

	w.log.Info("wrote row updates",
		zap.Int("rows", len(updates)),
		zap.Int("cells", len(data)),
	)
	return nil
}

func cellUpdate(title string, col, row int, value any) sheets.ValueRange {
	return sheets.ValueRange{
		Range:  fmt.Sprintf("%s!%s%d", title, model.ColumnLetter(col), row),
		Values: [][]any{{value}},
	}
}
