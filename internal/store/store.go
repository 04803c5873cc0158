// Package store provides the DuckDB-backed vehicle table for evdash.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store owns the vehicles table and all operations against it.
type Store struct {
	db     *sql.DB
	dbPath string
}

// columnKind describes how a CSV value is coerced for a column.
type columnKind int

const (
	kindText columnKind = iota
	kindFloat
	kindInt
)

type column struct {
	name string
	kind columnKind
}

// columns lists the vehicles table columns in insert order.
var columns = []column{
	{"brand", kindText},
	{"model", kindText},
	{"top_speed_kmh", kindFloat},
	{"battery_capacity_kWh", kindFloat},
	{"battery_type", kindText},
	{"number_of_cells", kindInt},
	{"torque_nm", kindFloat},
	{"efficiency_wh_per_km", kindFloat},
	{"range_km", kindFloat},
	{"acceleration_0_100_s", kindFloat},
	{"fast_charging_power_kw_dc", kindFloat},
	{"fast_charge_port", kindText},
	{"towing_capacity_kg", kindFloat},
	{"cargo_volume_l", kindFloat},
	{"seats", kindInt},
	{"drivetrain", kindText},
	{"segment", kindText},
	{"length_mm", kindFloat},
	{"width_mm", kindFloat},
	{"height_mm", kindFloat},
	{"car_body_type", kindText},
	{"source_url", kindText},
}

// requiredColumns must be present and non-empty for a row to be stored.
var requiredColumns = []string{"brand", "model", "segment", "car_body_type"}

// Columns returns the names of all vehicles table columns in schema order.
func Columns() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

// IsColumn reports whether name is a vehicles table column. Field names
// arrive from callers as strings and end up in SQL identifiers, so every
// entry point validates against this before interpolating.
func IsColumn(name string) bool {
	for _, c := range columns {
		if c.name == name {
			return true
		}
	}
	return false
}

// Open opens or creates the database at the given path. An empty path
// opens an in-memory database, which is what tests use. The parent
// directory is created if needed.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Session settings don't propagate across pooled connections, and an
	// in-memory database is per-connection. One connection is plenty for
	// a single-user dashboard.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// InitSchema creates the vehicles table and its indexes if they don't
// exist. Safe to run multiple times.
func (s *Store) InitSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("execute schema.sql: %w", err)
	}
	return nil
}

// withTx executes fn within a database transaction. If fn returns an
// error, the transaction is rolled back; otherwise it is committed.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Count returns the total number of stored vehicles.
func (s *Store) Count() (int64, error) {
	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM vehicles").Scan(&count); err != nil {
		return 0, fmt.Errorf("count vehicles: %w", err)
	}
	return count, nil
}

// Clear removes all rows from the vehicles table. The schema persists.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM vehicles"); err != nil {
		return fmt.Errorf("clear vehicles: %w", err)
	}
	return nil
}

// DistinctValues returns the sorted distinct non-null values of a column.
// The column name is validated against the schema; it cannot be bound as
// a parameter.
func (s *Store) DistinctValues(field string) ([]string, error) {
	if !IsColumn(field) {
		return nil, fmt.Errorf("unknown column %q", field)
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT CAST(%s AS VARCHAR)
		FROM vehicles
		WHERE %s IS NOT NULL
		ORDER BY 1
	`, field, field)

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan distinct %s: %w", field, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate distinct %s: %w", field, err)
	}
	return values, nil
}

// Stats holds database statistics.
type Stats struct {
	VehicleCount int64
	BrandCount   int64
	DatabaseSize int64
}

// GetStats returns statistics about the database.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	queries := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM vehicles", &stats.VehicleCount},
		{"SELECT COUNT(DISTINCT brand) FROM vehicles", &stats.BrandCount},
	}
	for _, q := range queries {
		if err := s.db.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("get stats %q: %w", q.query, err)
		}
	}

	if info, err := os.Stat(s.dbPath); err == nil {
		stats.DatabaseSize = info.Size()
	}

	return stats, nil
}
