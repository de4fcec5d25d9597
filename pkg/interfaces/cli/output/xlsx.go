package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/methodtree/pkg/application/dto"
)

const (
	bomSheet     = "BOM"
	routingSheet = "Routing"
)

// sheetWriter writes cells on one sheet and keeps the first error
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(col string, row int, value interface{}) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell(col, row), value)
}

// duration leaves non-finite figures blank
func (w *sheetWriter) duration(col string, row int, ms dto.Milliseconds) {
	if !ms.IsFinite() {
		return
	}
	w.set(col, row, float64(ms))
}

func (w *sheetWriter) header(headers []string) {
	if w.err != nil {
		return
	}
	boldStyle, err := w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		w.err = err
		return
	}

	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			w.err = err
			return
		}
		w.set(col, 1, h)
		if w.err == nil {
			w.err = w.f.SetCellStyle(w.sheet, cell(col, 1), cell(col, 1), boldStyle)
		}
	}
}

func (w *sheetWriter) boldRow(row, columns int) {
	if w.err != nil {
		return
	}
	summaryStyle, err := w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		w.err = err
		return
	}
	last, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, cell("A", row), cell(last, row), summaryStyle)
}

func (w *sheetWriter) widths(widths []float64) {
	for i, width := range widths {
		if w.err != nil {
			return
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			w.err = err
			return
		}
		w.err = w.f.SetColWidth(w.sheet, col, col, width)
	}
}

// newWorkbook creates a workbook whose only sheet is named sheet
func newWorkbook(sheet string) (*excelize.File, *sheetWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, &sheetWriter{f: f, sheet: sheet}, nil
}

// finish returns f, or closes it and returns the first write error
func finish(f *excelize.File, w *sheetWriter) (*excelize.File, error) {
	if w.err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write %s sheet: %w", w.sheet, w.err)
	}
	return f, nil
}

// NewBOMWorkbook writes a BOM view into the "BOM" sheet of a new workbook
func NewBOMWorkbook(view *dto.BOMView) (*excelize.File, error) {
	f, w, err := newWorkbook(bomSheet)
	if err != nil {
		return nil, err
	}

	headers := []string{"BOM ID", "Level", "Item", "Description", "Method", "Item Type", "Qty",
		"Total Qty", "UoM", "Unit Cost", "Total Cost", "Version"}
	w.header(headers)

	for i, item := range view.Rows {
		row := i + 2
		w.set("A", row, item.BOMID)
		w.set("B", row, item.Level)
		w.set("C", row, displayName(item))
		w.set("D", row, item.Description)
		w.set("E", row, item.MethodType.String())
		w.set("F", row, item.ItemType)
		w.set("G", row, item.Quantity.InexactFloat64())
		w.set("H", row, item.TotalQuantity.InexactFloat64())
		w.set("I", row, item.UnitOfMeasureCode)
		if item.UnitCost.Valid {
			w.set("J", row, item.UnitCost.Decimal.InexactFloat64())
		}
		w.set("K", row, item.TotalCost.InexactFloat64())
		w.set("L", row, item.Version)
	}

	summaryRow := len(view.Rows) + 3
	w.set("A", summaryRow, "Total")
	w.set("C", summaryRow, fmt.Sprintf("Rows: %d", len(view.Rows)))
	w.set("K", summaryRow, view.TotalCost.InexactFloat64())
	w.boldRow(summaryRow, len(headers))
	w.widths([]float64{10, 6, 20, 30, 8, 12, 10, 12, 6, 12, 12, 8})

	return finish(f, w)
}

// NewRoutingWorkbook writes a routing view into the "Routing" sheet of a new
// workbook. Non-finite durations are left blank.
func NewRoutingWorkbook(view *dto.RoutingView) (*excelize.File, error) {
	f, w, err := newWorkbook(routingSheet)
	if err != nil {
		return nil, err
	}

	headers := []string{"BOM ID", "Material", "Operation", "Description", "Work Center", "Quantity",
		"Setup ms", "Labor ms", "Machine ms", "Total ms"}
	w.header(headers)

	for i, op := range view.Rows {
		row := i + 2
		w.set("A", row, op.BOMID)
		w.set("B", row, op.MaterialID)
		w.set("C", row, op.OperationID)
		w.set("D", row, op.Description)
		w.set("E", row, op.WorkCenterID)
		w.set("F", row, op.OperationQuantity)
		w.duration("G", row, op.SetupDuration)
		w.duration("H", row, op.LaborDuration)
		w.duration("I", row, op.MachineDuration)
		w.duration("J", row, op.Duration)
	}

	summaryRow := len(view.Rows) + 3
	w.set("A", summaryRow, "Total")
	w.set("C", summaryRow, fmt.Sprintf("Operations: %d", len(view.Rows)))
	w.set("J", summaryRow, float64(view.TotalDuration))
	if view.NonFiniteRowCount > 0 {
		w.set("D", summaryRow, fmt.Sprintf("Non-finite: %d", view.NonFiniteRowCount))
	}
	w.boldRow(summaryRow, len(headers))
	w.widths([]float64{10, 12, 16, 30, 12, 10, 14, 14, 14, 14})

	return finish(f, w)
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
