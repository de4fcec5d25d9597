package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vsinha/methodtree/pkg/application/dto"
)

// Formats supported by WriteBOM and WriteRouting
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var (
	bomCSVHeader = []string{
		"bom_id", "level", "item_readable_id", "description", "method_type", "item_type", "quantity",
		"total_quantity", "unit_of_measure", "unit_cost", "total_cost", "version",
	}
	routingCSVHeader = []string{
		"bom_id", "material_id", "operation", "work_center", "operation_quantity",
		"setup_ms", "labor_ms", "machine_ms", "total_ms",
	}
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string    // when set, results are saved as files instead of written to Writer
	Writer    io.Writer // defaults to stdout
	Verbose   bool
}

func (c Config) writer() io.Writer {
	if c.Writer != nil {
		return c.Writer
	}
	return os.Stdout
}

// ValidFormat reports whether format is supported
func ValidFormat(format string) bool {
	switch format {
	case FormatText, FormatJSON, FormatCSV, FormatXLSX:
		return true
	}
	return false
}

// WriteBOM writes a BOM view in the configured format
func WriteBOM(view *dto.BOMView, config Config) error {
	switch config.Format {
	case FormatText:
		return emit(config, "bom.txt", func(w io.Writer) error { return writeBOMText(w, view) })
	case FormatJSON:
		return emit(config, "bom.json", func(w io.Writer) error { return writeJSON(w, view) })
	case FormatCSV:
		return emit(config, "bom.csv", func(w io.Writer) error { return writeBOMCSV(w, view) })
	case FormatXLSX:
		return emit(config, "bom.xlsx", func(w io.Writer) error {
			f, err := NewBOMWorkbook(view)
			if err != nil {
				return err
			}
			defer f.Close()
			return f.Write(w)
		})
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// WriteRouting writes a routing view in the configured format
func WriteRouting(view *dto.RoutingView, config Config) error {
	switch config.Format {
	case FormatText:
		return emit(config, "routing.txt", func(w io.Writer) error { return writeRoutingText(w, view) })
	case FormatJSON:
		return emit(config, "routing.json", func(w io.Writer) error { return writeJSON(w, view) })
	case FormatCSV:
		return emit(config, "routing.csv", func(w io.Writer) error { return writeRoutingCSV(w, view) })
	case FormatXLSX:
		return emit(config, "routing.xlsx", func(w io.Writer) error {
			f, err := NewRoutingWorkbook(view)
			if err != nil {
				return err
			}
			defer f.Close()
			return f.Write(w)
		})
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// emit runs write against the configured writer, or against filename inside OutputDir
func emit(config Config, filename string, write func(w io.Writer) error) error {
	if config.OutputDir == "" {
		return write(config.writer())
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(config.OutputDir, filename)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := write(file); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 Results saved to: %s\n", path)
	}
	return file.Close()
}

func writeJSON(w io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// writeBOMText creates human-readable text output
func writeBOMText(w io.Writer, view *dto.BOMView) error {
	fmt.Fprintf(w, "📊 Bill of Materials: %s\n", view.MakeMethodID)
	fmt.Fprintf(w, "======================\n\n")

	fmt.Fprintf(w, "%-10s %-24s %-6s %-10s %-12s %-6s %-10s %-12s\n",
		"BOM ID", "Item", "Type", "Qty", "Total Qty", "UoM", "Unit Cost", "Total Cost")
	fmt.Fprintf(w, "%-10s %-24s %-6s %-10s %-12s %-6s %-10s %-12s\n",
		"----------", "------------------------", "------", "----------", "------------", "------", "----------", "------------")

	for _, row := range view.Rows {
		item := strings.Repeat("  ", row.Level) + displayName(row)
		fmt.Fprintf(w, "%-10s %-24s %-6s %-10s %-12s %-6s %-10s %-12s\n",
			row.BOMID,
			item,
			row.MethodType.String(),
			row.Quantity.String(),
			row.TotalQuantity.String(),
			row.UnitOfMeasureCode,
			nullDecimalString(row),
			row.TotalCost.String())
	}

	fmt.Fprintf(w, "\nRows: %d\n", len(view.Rows))
	_, err := fmt.Fprintf(w, "Total Cost: %s\n", view.TotalCost.String())
	return err
}

// writeRoutingText creates human-readable text output
func writeRoutingText(w io.Writer, view *dto.RoutingView) error {
	fmt.Fprintf(w, "⏱️  Routing: %s x %s\n", view.MakeMethodID, strconv.FormatFloat(view.Quantity, 'f', -1, 64))
	fmt.Fprintf(w, "======================\n\n")

	fmt.Fprintf(w, "%-10s %-12s %-16s %-12s %-10s %-12s %-12s %-12s %-14s\n",
		"BOM ID", "Material", "Operation", "Work Center", "Qty", "Setup ms", "Labor ms", "Machine ms", "Total ms")
	fmt.Fprintf(w, "%-10s %-12s %-16s %-12s %-10s %-12s %-12s %-12s %-14s\n",
		"----------", "------------", "----------------", "------------", "----------",
		"------------", "------------", "------------", "--------------")

	for _, row := range view.Rows {
		marker := ""
		if !row.Finite {
			marker = " ⚠️"
		}
		fmt.Fprintf(w, "%-10s %-12s %-16s %-12s %-10s %-12s %-12s %-12s %-14s%s\n",
			row.BOMID,
			row.MaterialID,
			row.OperationID,
			row.WorkCenterID,
			strconv.FormatFloat(row.OperationQuantity, 'f', -1, 64),
			row.SetupDuration.String(),
			row.LaborDuration.String(),
			row.MachineDuration.String(),
			row.Duration.String(),
			marker)
	}

	fmt.Fprintf(w, "\nOperations: %d\n", len(view.Rows))
	fmt.Fprintf(w, "Total Duration: %s ms\n", view.TotalDuration.String())
	if view.NonFiniteRowCount > 0 {
		fmt.Fprintf(w, "⚠️  Non-finite durations excluded from total: %d\n", view.NonFiniteRowCount)
	}
	return nil
}

func writeBOMCSV(w io.Writer, view *dto.BOMView) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(bomCSVHeader); err != nil {
		return err
	}

	for _, row := range view.Rows {
		record := []string{
			row.BOMID,
			strconv.Itoa(row.Level),
			row.ItemReadableID,
			row.Description,
			row.MethodType.String(),
			row.ItemType,
			row.Quantity.String(),
			row.TotalQuantity.String(),
			row.UnitOfMeasureCode,
			nullDecimalString(row),
			row.TotalCost.String(),
			strconv.Itoa(row.Version),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeRoutingCSV(w io.Writer, view *dto.RoutingView) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(routingCSVHeader); err != nil {
		return err
	}

	for _, row := range view.Rows {
		record := []string{
			row.BOMID,
			row.MaterialID,
			row.OperationID,
			row.WorkCenterID,
			strconv.FormatFloat(row.OperationQuantity, 'f', -1, 64),
			row.SetupDuration.String(),
			row.LaborDuration.String(),
			row.MachineDuration.String(),
			row.Duration.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func displayName(row dto.BOMRow) string {
	if row.ItemReadableID != "" {
		return row.ItemReadableID
	}
	return row.ID
}

func nullDecimalString(row dto.BOMRow) string {
	if !row.UnitCost.Valid {
		return ""
	}
	return row.UnitCost.Decimal.String()
}
