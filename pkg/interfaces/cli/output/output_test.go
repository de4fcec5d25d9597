package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/methodtree/pkg/application/dto"
	"github.com/vsinha/methodtree/pkg/application/services/methodview"
	testhelpers "github.com/vsinha/methodtree/pkg/infrastructure/testing"
)

func chairBOM(t *testing.T) *dto.BOMView {
	t.Helper()
	view, err := methodview.BuildBOMView(testhelpers.BuildChairTree())
	if err != nil {
		t.Fatalf("BuildBOMView failed: %v", err)
	}
	return view
}

func sampleRouting() *dto.RoutingView {
	return &dto.RoutingView{
		MakeMethodID: "MM-CHAIR",
		Quantity:     10,
		Rows: []dto.RoutingRow{
			{OperationID: "OP-ASSEMBLE", WorkCenterID: "WC-ASSY", OperationQuantity: 10, SetupDuration: 3_600_000, Duration: 3_600_000, Finite: true},
			{BOMID: "2", MaterialID: "LEG", OperationID: "OP-CUT", OperationQuantity: 40, LaborDuration: dto.Milliseconds(math.Inf(1)), Duration: dto.Milliseconds(math.Inf(1))},
		},
		TotalDuration:     3_600_000,
		NonFiniteRowCount: 1,
	}
}

func TestWriteBOM_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBOM(chairBOM(t), Config{Format: FormatCSV, Writer: &buf}); err != nil {
		t.Fatalf("WriteBOM failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) != 8 {
		t.Fatalf("Expected header plus 7 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(bomCSVHeader, ",") {
		t.Errorf("Unexpected header: %v", records[0])
	}

	tube := records[5]
	if tube[0] != "2.1" || tube[1] != "1" || tube[2] != "TUBE" || tube[7] != "3" || tube[9] != "8" || tube[10] != "24" {
		t.Errorf("Unexpected TUBE row: %v", tube)
	}
	foam := records[2]
	if foam[9] != "" {
		t.Errorf("Expected empty unit cost for FOAM, got %q", foam[9])
	}
}

func TestWriteBOM_TextAndJSON(t *testing.T) {
	var text bytes.Buffer
	if err := WriteBOM(chairBOM(t), Config{Format: FormatText, Writer: &text}); err != nil {
		t.Fatalf("WriteBOM text failed: %v", err)
	}
	if !strings.Contains(text.String(), "Total Cost: 31.6") {
		t.Errorf("Expected total cost in text output, got:\n%s", text.String())
	}
	if !strings.Contains(text.String(), "    FABRIC") {
		t.Errorf("Expected nested rows to be indented, got:\n%s", text.String())
	}

	var raw bytes.Buffer
	if err := WriteBOM(chairBOM(t), Config{Format: FormatJSON, Writer: &raw}); err != nil {
		t.Fatalf("WriteBOM json failed: %v", err)
	}
	var decoded struct {
		Rows []struct {
			BOMID string `json:"bomId"`
		} `json:"rows"`
		TotalCost string `json:"totalCost"`
	}
	if err := json.Unmarshal(raw.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	if len(decoded.Rows) != 7 || decoded.Rows[6].BOMID != "3" || decoded.TotalCost != "31.6" {
		t.Errorf("Unexpected JSON output: %+v", decoded)
	}
}

func TestWriteRouting_CSVKeepsNonFiniteVisible(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRouting(sampleRouting(), Config{Format: FormatCSV, Writer: &buf}); err != nil {
		t.Fatalf("WriteRouting failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[0][1] != "material_id" || records[0][4] != "operation_quantity" {
		t.Errorf("Unexpected header: %v", records[0])
	}
	if records[1][4] != "10" || records[1][5] != "3600000" {
		t.Errorf("Expected quantity 10 and setup 3600000, got %v", records[1])
	}
	if records[2][1] != "LEG" || records[2][4] != "40" {
		t.Errorf("Expected nested LEG operation at quantity 40, got %v", records[2])
	}
	if records[2][6] != "+Inf" {
		t.Errorf("Expected +Inf labor, got %s", records[2][6])
	}
}

func TestWriteRouting_TextFlagsNonFinite(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRouting(sampleRouting(), Config{Format: FormatText, Writer: &buf}); err != nil {
		t.Fatalf("WriteRouting failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Non-finite durations excluded from total: 1") {
		t.Errorf("Expected non-finite summary, got:\n%s", buf.String())
	}
}

func TestWriteXLSX(t *testing.T) {
	dir := t.TempDir()

	if err := WriteBOM(chairBOM(t), Config{Format: FormatXLSX, OutputDir: dir, Writer: &bytes.Buffer{}}); err != nil {
		t.Fatalf("WriteBOM xlsx failed: %v", err)
	}
	if err := WriteRouting(sampleRouting(), Config{Format: FormatXLSX, OutputDir: dir, Writer: &bytes.Buffer{}}); err != nil {
		t.Fatalf("WriteRouting xlsx failed: %v", err)
	}

	bom, err := excelize.OpenFile(filepath.Join(dir, "bom.xlsx"))
	if err != nil {
		t.Fatalf("Failed to open bom.xlsx: %v", err)
	}
	defer bom.Close()

	if v, _ := bom.GetCellValue(bomSheet, "A1"); v != "BOM ID" {
		t.Errorf("Expected header BOM ID, got %q", v)
	}
	if v, _ := bom.GetCellValue(bomSheet, "C6"); v != "TUBE" {
		t.Errorf("Expected TUBE in C6, got %q", v)
	}
	if v, _ := bom.GetCellValue(bomSheet, "K10"); v != "31.6" {
		t.Errorf("Expected total cost 31.6 in summary row, got %q", v)
	}

	routing, err := excelize.OpenFile(filepath.Join(dir, "routing.xlsx"))
	if err != nil {
		t.Fatalf("Failed to open routing.xlsx: %v", err)
	}
	defer routing.Close()

	if v, _ := routing.GetCellValue(routingSheet, "B3"); v != "LEG" {
		t.Errorf("Expected material LEG in B3, got %q", v)
	}
	if v, _ := routing.GetCellValue(routingSheet, "F3"); v != "40" {
		t.Errorf("Expected operation quantity 40 in F3, got %q", v)
	}
	if v, _ := routing.GetCellValue(routingSheet, "H3"); v != "" {
		t.Errorf("Expected blank cell for Inf labor, got %q", v)
	}
}

func TestSheetWriter_KeepsFirstError(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	w := &sheetWriter{f: f, sheet: "Missing"}
	w.set("A", 1, "x")
	if w.err == nil {
		t.Fatal("Expected an error writing to a missing sheet")
	}
	first := w.err

	w.sheet = "Sheet1"
	w.set("A", 1, "x")
	w.header([]string{"BOM ID"})
	if w.err != first {
		t.Errorf("Expected the first error to be kept, got %v", w.err)
	}
	if v, _ := f.GetCellValue("Sheet1", "A1"); v != "" {
		t.Errorf("Expected no writes after an error, got %q", v)
	}
}

func TestFinish_ReturnsWriteError(t *testing.T) {
	f, w, err := newWorkbook(routingSheet)
	if err != nil {
		t.Fatalf("newWorkbook failed: %v", err)
	}
	w.set("", 0, "bad cell")

	if _, err := finish(f, w); err == nil || !strings.Contains(err.Error(), "Routing sheet") {
		t.Errorf("Expected a Routing sheet write error, got %v", err)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if err := WriteBOM(&dto.BOMView{}, Config{Format: "pdf"}); err == nil {
		t.Error("Expected error for unsupported format")
	}
	if ValidFormat("pdf") || !ValidFormat(FormatXLSX) {
		t.Error("ValidFormat returned unexpected result")
	}
}
