package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/methodtree/pkg/domain/entities"
	"github.com/vsinha/methodtree/pkg/domain/repositories"
)

var (
	materialHeader = []string{
		"id", "make_method_id", "material_make_method_id", "order", "item_id", "item_readable_id",
		"item_type", "description", "method_type", "quantity", "unit_cost", "unit_of_measure", "version",
	}
	operationHeader = []string{
		"id", "make_method_id", "order", "description", "work_center_id",
		"setup_time", "setup_unit", "labor_time", "labor_unit", "machine_time", "machine_unit",
	}
)

// Loader handles loading method rows from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// MaterialsFile returns the materials file name of a domain inside dir
func MaterialsFile(dir string, domain entities.MethodDomain) string {
	return filepath.Join(dir, string(domain)+"_materials.csv")
}

// OperationsFile returns the operations file name of a domain inside dir
func OperationsFile(dir string, domain entities.MethodDomain) string {
	return filepath.Join(dir, string(domain)+"_operations.csv")
}

// LoadDirectory loads <domain>_materials.csv and <domain>_operations.csv for
// every domain found in dir into repo. Missing files are skipped, but at
// least one file must exist.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, repo repositories.MethodRepository) error {
	found := 0
	for _, domain := range entities.MethodDomains() {
		materialsFile := MaterialsFile(dir, domain)
		if fileExists(materialsFile) {
			rows, err := l.LoadMaterials(materialsFile)
			if err != nil {
				return err
			}
			if err := repo.LoadMaterials(ctx, domain, rows); err != nil {
				return fmt.Errorf("failed to store %s materials: %w", domain, err)
			}
			found++
		}

		operationsFile := OperationsFile(dir, domain)
		if fileExists(operationsFile) {
			rows, err := l.LoadOperations(operationsFile)
			if err != nil {
				return err
			}
			if err := repo.LoadOperations(ctx, domain, rows); err != nil {
				return fmt.Errorf("failed to store %s operations: %w", domain, err)
			}
			found++
		}
	}

	if found == 0 {
		return fmt.Errorf("no method CSV files found in %s", dir)
	}
	return nil
}

// LoadMaterials loads material rows from a CSV file
func (l *Loader) LoadMaterials(filename string) ([]*entities.MaterialRow, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open materials file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadMaterials(file)
}

// ReadMaterials parses material rows from CSV data
func (l *Loader) ReadMaterials(r io.Reader) ([]*entities.MaterialRow, error) {
	records, err := readRecords(r, "materials", materialHeader)
	if err != nil {
		return nil, err
	}

	materials := make([]*entities.MaterialRow, 0, len(records))
	for i, record := range records {
		row, err := parseMaterial(record)
		if err != nil {
			return nil, fmt.Errorf("materials CSV row %d: %w", i+2, err)
		}
		materials = append(materials, row)
	}

	return materials, nil
}

// LoadOperations loads operation rows from a CSV file
func (l *Loader) LoadOperations(filename string) ([]*entities.OperationRow, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open operations file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadOperations(file)
}

// ReadOperations parses operation rows from CSV data
func (l *Loader) ReadOperations(r io.Reader) ([]*entities.OperationRow, error) {
	records, err := readRecords(r, "operations", operationHeader)
	if err != nil {
		return nil, err
	}

	operations := make([]*entities.OperationRow, 0, len(records))
	for i, record := range records {
		row, err := parseOperation(record)
		if err != nil {
			return nil, fmt.Errorf("operations CSV row %d: %w", i+2, err)
		}
		operations = append(operations, row)
	}

	return operations, nil
}

// Helper functions for parsing CSV records

// readRecords validates the header and column counts and returns the data rows
func readRecords(r io.Reader, kind string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}

	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseMaterial(record []string) (*entities.MaterialRow, error) {
	order, err := parseFloat(record[3], "order")
	if err != nil {
		return nil, err
	}

	methodType, err := entities.ParseMethodType(record[8])
	if err != nil {
		return nil, err
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(record[9]))
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %s", record[9])
	}

	var unitCost decimal.NullDecimal
	if s := strings.TrimSpace(record[10]); s != "" {
		cost, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid unit_cost: %s", record[10])
		}
		unitCost = decimal.NewNullDecimal(cost)
	}

	version := 0
	if s := strings.TrimSpace(record[12]); s != "" {
		version, err = strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid version: %s", record[12])
		}
	}

	makeMethodID := strings.TrimSpace(record[1])
	if makeMethodID == "" {
		return nil, errors.New("make_method_id cannot be empty")
	}

	return &entities.MaterialRow{
		ID:                   idOrNew(record[0]),
		MakeMethodID:         makeMethodID,
		MaterialMakeMethodID: strings.TrimSpace(record[2]),
		Order:                order,
		ItemID:               record[4],
		ItemReadableID:       record[5],
		ItemType:             record[6],
		Description:          record[7],
		MethodType:           methodType,
		Quantity:             quantity,
		UnitCost:             unitCost,
		UnitOfMeasureCode:    record[11],
		Version:              version,
	}, nil
}

func parseOperation(record []string) (*entities.OperationRow, error) {
	makeMethodID := strings.TrimSpace(record[1])
	if makeMethodID == "" {
		return nil, errors.New("make_method_id cannot be empty")
	}

	order, err := parseFloat(record[2], "order")
	if err != nil {
		return nil, err
	}
	setupTime, err := parseFloat(record[5], "setup_time")
	if err != nil {
		return nil, err
	}
	laborTime, err := parseFloat(record[7], "labor_time")
	if err != nil {
		return nil, err
	}
	machineTime, err := parseFloat(record[9], "machine_time")
	if err != nil {
		return nil, err
	}

	// Unit labels are kept verbatim; an unrecognized label contributes 0
	return &entities.OperationRow{
		ID:           idOrNew(record[0]),
		MakeMethodID: makeMethodID,
		Order:        order,
		Description:  record[3],
		WorkCenterID: record[4],
		SetupTime:    setupTime,
		SetupUnit:    record[6],
		LaborTime:    laborTime,
		LaborUnit:    record[8],
		MachineTime:  machineTime,
		MachineUnit:  record[10],
	}, nil
}

// parseFloat treats an empty cell as 0
func parseFloat(s, column string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", column, s)
	}
	return v, nil
}

func idOrNew(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return uuid.NewString()
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}
