// Package sqlite stores method rows of every domain in a SQLite database
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/vsinha/methodtree/pkg/domain/entities"
	"github.com/vsinha/methodtree/pkg/domain/repositories"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = "2"

// MethodRepository implements repositories.MethodRepository using SQLite.
// Each domain gets its own <domain>_materials and <domain>_operations tables.
// Rows are read back in seq order; ids are indexed but not unique.
type MethodRepository struct {
	db   *sql.DB
	path string
}

// Ensure MethodRepository implements the port
var _ repositories.MethodRepository = (*MethodRepository)(nil)

// Open opens or creates the database at path and sets up the schema.
// ":memory:" opens a private in-memory database.
func Open(path string) (*MethodRepository, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases shared and writes serialized
	db.SetMaxOpenConns(1)

	repo := &MethodRepository{db: db, path: path}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *MethodRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *MethodRepository) migrate() error {
	if _, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return err
	}

	var version string
	err := r.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	case version != schemaVersion:
		return fmt.Errorf("database schema version %s, expected %s: re-import into a new database", version, schemaVersion)
	}

	for _, domain := range entities.MethodDomains() {
		materials, operations := tableNames(domain)
		_, err := r.db.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL,
				make_method_id TEXT NOT NULL,
				material_make_method_id TEXT NOT NULL DEFAULT '',
				sort_order REAL NOT NULL DEFAULT 0,
				item_id TEXT NOT NULL DEFAULT '',
				item_readable_id TEXT NOT NULL DEFAULT '',
				item_type TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				method_type TEXT NOT NULL,
				quantity TEXT NOT NULL,
				unit_cost TEXT,
				unit_of_measure TEXT NOT NULL DEFAULT '',
				version INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_%[1]s_id ON %[1]s(id);
			CREATE INDEX IF NOT EXISTS idx_%[1]s_make_method ON %[1]s(make_method_id);
			CREATE INDEX IF NOT EXISTS idx_%[1]s_nested ON %[1]s(material_make_method_id);

			CREATE TABLE IF NOT EXISTS %[2]s (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL,
				make_method_id TEXT NOT NULL,
				sort_order REAL NOT NULL DEFAULT 0,
				description TEXT NOT NULL DEFAULT '',
				work_center_id TEXT NOT NULL DEFAULT '',
				setup_time REAL NOT NULL DEFAULT 0,
				setup_unit TEXT NOT NULL DEFAULT '',
				labor_time REAL NOT NULL DEFAULT 0,
				labor_unit TEXT NOT NULL DEFAULT '',
				machine_time REAL NOT NULL DEFAULT 0,
				machine_unit TEXT NOT NULL DEFAULT ''
			);
			CREATE INDEX IF NOT EXISTS idx_%[2]s_id ON %[2]s(id);
			CREATE INDEX IF NOT EXISTS idx_%[2]s_make_method ON %[2]s(make_method_id);
		`, materials, operations))
		if err != nil {
			return fmt.Errorf("failed to create %s tables: %w", domain, err)
		}
	}

	_, err = r.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion)
	return err
}

// tableNames only ever formats the three known domains into SQL
func tableNames(domain entities.MethodDomain) (materials, operations string) {
	return string(domain) + "_materials", string(domain) + "_operations"
}

func checkDomain(domain entities.MethodDomain) error {
	for _, known := range entities.MethodDomains() {
		if domain == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", repositories.ErrUnknownDomain, domain)
}

// LoadMaterials writes material rows in one transaction. A row whose id is
// already stored updates the stored row and keeps its seq; rows sharing an id
// within one load are all inserted.
func (r *MethodRepository) LoadMaterials(ctx context.Context, domain entities.MethodDomain, rows []*entities.MaterialRow) error {
	if err := checkDomain(domain); err != nil {
		return err
	}
	materials, _ := tableNames(domain)

	return r.withTx(ctx, func(tx *sql.Tx) error {
		ids := make([]string, len(rows))
		for i, row := range rows {
			ids[i] = row.ID
		}
		pending, err := storedSeqs(ctx, tx, materials, ids)
		if err != nil {
			return err
		}

		insert, err := tx.PrepareContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (
				id, make_method_id, material_make_method_id, sort_order, item_id, item_readable_id,
				item_type, description, method_type, quantity, unit_cost, unit_of_measure, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, materials))
		if err != nil {
			return err
		}
		defer insert.Close()

		update, err := tx.PrepareContext(ctx, fmt.Sprintf(`
			UPDATE %s SET
				id = ?, make_method_id = ?, material_make_method_id = ?, sort_order = ?, item_id = ?,
				item_readable_id = ?, item_type = ?, description = ?, method_type = ?, quantity = ?,
				unit_cost = ?, unit_of_measure = ?, version = ?
			WHERE seq = ?
		`, materials))
		if err != nil {
			return err
		}
		defer update.Close()

		for _, row := range rows {
			args := []interface{}{
				row.ID, row.MakeMethodID, row.MaterialMakeMethodID, row.Order, row.ItemID, row.ItemReadableID,
				row.ItemType, row.Description, row.MethodType.String(), row.Quantity, row.UnitCost,
				row.UnitOfMeasureCode, row.Version,
			}
			if queue := pending[row.ID]; len(queue) > 0 {
				pending[row.ID] = queue[1:]
				_, err = update.ExecContext(ctx, append(args, queue[0])...)
			} else {
				_, err = insert.ExecContext(ctx, args...)
			}
			if err != nil {
				return fmt.Errorf("failed to write material %s: %w", row.ID, err)
			}
		}
		return nil
	})
}

// LoadOperations writes operation rows with the same replace rules as LoadMaterials
func (r *MethodRepository) LoadOperations(ctx context.Context, domain entities.MethodDomain, rows []*entities.OperationRow) error {
	if err := checkDomain(domain); err != nil {
		return err
	}
	_, operations := tableNames(domain)

	return r.withTx(ctx, func(tx *sql.Tx) error {
		ids := make([]string, len(rows))
		for i, row := range rows {
			ids[i] = row.ID
		}
		pending, err := storedSeqs(ctx, tx, operations, ids)
		if err != nil {
			return err
		}

		insert, err := tx.PrepareContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (
				id, make_method_id, sort_order, description, work_center_id,
				setup_time, setup_unit, labor_time, labor_unit, machine_time, machine_unit
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, operations))
		if err != nil {
			return err
		}
		defer insert.Close()

		update, err := tx.PrepareContext(ctx, fmt.Sprintf(`
			UPDATE %s SET
				id = ?, make_method_id = ?, sort_order = ?, description = ?, work_center_id = ?,
				setup_time = ?, setup_unit = ?, labor_time = ?, labor_unit = ?, machine_time = ?, machine_unit = ?
			WHERE seq = ?
		`, operations))
		if err != nil {
			return err
		}
		defer update.Close()

		for _, row := range rows {
			args := []interface{}{
				row.ID, row.MakeMethodID, row.Order, row.Description, row.WorkCenterID,
				row.SetupTime, row.SetupUnit, row.LaborTime, row.LaborUnit, row.MachineTime, row.MachineUnit,
			}
			if queue := pending[row.ID]; len(queue) > 0 {
				pending[row.ID] = queue[1:]
				_, err = update.ExecContext(ctx, append(args, queue[0])...)
			} else {
				_, err = insert.ExecContext(ctx, args...)
			}
			if err != nil {
				return fmt.Errorf("failed to write operation %s: %w", row.ID, err)
			}
		}
		return nil
	})
}

// storedSeqs returns the seqs already stored for each id, read before the
// batch writes anything
func storedSeqs(ctx context.Context, tx *sql.Tx, table string, ids []string) (map[string][]int64, error) {
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`SELECT seq FROM %s WHERE id = ? ORDER BY seq`, table))
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	seqs := make(map[string][]int64, len(ids))
	for _, id := range ids {
		if _, ok := seqs[id]; ok {
			continue
		}
		rows, err := stmt.QueryContext(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s: %w", id, err)
		}
		var found []int64
		for rows.Next() {
			var seq int64
			if err := rows.Scan(&seq); err != nil {
				rows.Close()
				return nil, err
			}
			found = append(found, seq)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		seqs[id] = found
	}
	return seqs, nil
}

func (r *MethodRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

const materialColumns = `id, make_method_id, material_make_method_id, sort_order, item_id, item_readable_id,
	item_type, description, method_type, quantity, unit_cost, unit_of_measure, version`

// GetMaterials returns the materials owned by a make method, in insertion order
func (r *MethodRepository) GetMaterials(ctx context.Context, domain entities.MethodDomain, makeMethodID string) ([]*entities.MaterialRow, error) {
	if err := checkDomain(domain); err != nil {
		return nil, err
	}
	materials, _ := tableNames(domain)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM %s WHERE make_method_id = ? ORDER BY seq`, materialColumns, materials), makeMethodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s materials: %w", domain, err)
	}
	return scanMaterials(rows)
}

// GetAllMaterials returns every material row of a domain
func (r *MethodRepository) GetAllMaterials(ctx context.Context, domain entities.MethodDomain) ([]*entities.MaterialRow, error) {
	if err := checkDomain(domain); err != nil {
		return nil, err
	}
	materials, _ := tableNames(domain)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY seq`, materialColumns, materials))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s materials: %w", domain, err)
	}
	return scanMaterials(rows)
}

func scanMaterials(rows *sql.Rows) ([]*entities.MaterialRow, error) {
	defer rows.Close()

	var result []*entities.MaterialRow
	for rows.Next() {
		var (
			row        entities.MaterialRow
			methodType string
			quantity   decimal.Decimal
			unitCost   decimal.NullDecimal
		)
		err := rows.Scan(
			&row.ID, &row.MakeMethodID, &row.MaterialMakeMethodID, &row.Order, &row.ItemID, &row.ItemReadableID,
			&row.ItemType, &row.Description, &methodType, &quantity, &unitCost, &row.UnitOfMeasureCode, &row.Version)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}

		row.MethodType, err = entities.ParseMethodType(methodType)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", row.ID, err)
		}
		row.Quantity = quantity
		row.UnitCost = unitCost
		result = append(result, &row)
	}
	return result, rows.Err()
}

// GetOperations returns the operations attached to a make method, in insertion order
func (r *MethodRepository) GetOperations(ctx context.Context, domain entities.MethodDomain, makeMethodID string) ([]*entities.OperationRow, error) {
	if err := checkDomain(domain); err != nil {
		return nil, err
	}
	_, operations := tableNames(domain)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, make_method_id, sort_order, description, work_center_id,
			setup_time, setup_unit, labor_time, labor_unit, machine_time, machine_unit
		FROM %s WHERE make_method_id = ? ORDER BY seq`, operations), makeMethodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s operations: %w", domain, err)
	}
	defer rows.Close()

	var result []*entities.OperationRow
	for rows.Next() {
		var row entities.OperationRow
		err := rows.Scan(&row.ID, &row.MakeMethodID, &row.Order, &row.Description, &row.WorkCenterID,
			&row.SetupTime, &row.SetupUnit, &row.LaborTime, &row.LaborUnit, &row.MachineTime, &row.MachineUnit)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		result = append(result, &row)
	}
	return result, rows.Err()
}

// HasMakeMethod reports whether makeMethodID owns rows or is referenced as a nested method
func (r *MethodRepository) HasMakeMethod(ctx context.Context, domain entities.MethodDomain, makeMethodID string) (bool, error) {
	if err := checkDomain(domain); err != nil {
		return false, err
	}
	materials, operations := tableNames(domain)

	var exists bool
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %[1]s WHERE make_method_id = ? OR material_make_method_id = ?)
			OR EXISTS (SELECT 1 FROM %[2]s WHERE make_method_id = ?)
	`, materials, operations), makeMethodID, makeMethodID, makeMethodID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up %s make method %s: %w", domain, makeMethodID, err)
	}
	return exists, nil
}
