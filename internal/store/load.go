package store

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrBadInput marks structurally invalid ingestion input: an unreadable
// file, a missing header, or ragged records. Data-quality problems in
// individual rows never produce this — they only lower the accepted-row
// count. Callers classify with errors.Is.
var ErrBadInput = errors.New("invalid csv input")

// LoadCSV ingests a CSV file into the vehicles table and returns the
// number of rows actually inserted. A structurally unreadable file is a
// hard error; rows failing data-quality checks are silently dropped and
// only reflected in a lower count.
func (s *Store) LoadCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrapf(ErrBadInput, "open csv %s: %v", path, err)
	}
	defer f.Close()

	return s.LoadReader(f)
}

// LoadReader ingests CSV data from r. The first record must be a header
// naming the vehicle columns; column order is insignificant and unknown
// columns are ignored.
func (s *Store) LoadReader(r io.Reader) (int, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return 0, eris.Wrap(ErrBadInput, "csv input is empty: header row required")
	}
	if err != nil {
		return 0, eris.Wrapf(ErrBadInput, "read csv header: %v", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return 0, eris.Wrapf(ErrBadInput, "read csv records: %v", err)
	}

	return s.LoadRows(header, rows)
}

// LoadRows ingests pre-split records against the given header. Numeric
// values that fail to parse become NULL rather than errors; rows missing
// any of brand, model, segment or car_body_type are discarded. Returns
// the count of rows inserted — 0 with a nil error means no row survived,
// which is a valid outcome, not a failure.
func (s *Store) LoadRows(header []string, rows [][]string) (int, error) {
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	var batch [][]any
	for _, row := range rows {
		values, ok := coerceRow(colIndex, row)
		if !ok {
			continue
		}
		batch = append(batch, values)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	err := s.withTx(func(tx *sql.Tx) error {
		return insertInChunks(tx, batch)
	})
	if err != nil {
		return 0, fmt.Errorf("insert vehicles: %w", err)
	}
	return len(batch), nil
}

// coerceRow converts one CSV record into insert values in schema column
// order. The second result is false when the row fails the required-field
// check and must be dropped.
func coerceRow(colIndex map[string]int, row []string) ([]any, bool) {
	values := make([]any, len(columns))
	for i, col := range columns {
		idx, present := colIndex[col.name]
		if !present || idx >= len(row) {
			continue // column absent from input: missing value
		}
		raw := strings.TrimSpace(row[idx])
		if raw == "" {
			continue
		}
		switch col.kind {
		case kindText:
			values[i] = raw
		case kindFloat:
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				values[i] = v
			}
		case kindInt:
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				values[i] = v
			} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
				values[i] = int64(math.Round(f))
			}
		}
	}

	for _, required := range requiredColumns {
		if values[columnOffset(required)] == nil {
			return nil, false
		}
	}
	return values, true
}

// columnOffset returns the schema position of a column. Only called with
// names from requiredColumns, which are known to exist.
func columnOffset(name string) int {
	for i, c := range columns {
		if c.name == name {
			return i
		}
	}
	panic("store: unknown column " + name)
}

// insertInChunks executes multi-row INSERTs in chunks to keep each
// statement's parameter count bounded.
func insertInChunks(tx *sql.Tx, batch [][]any) error {
	const maxParams = 900
	chunkSize := maxParams / len(columns)

	names := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
		placeholders[i] = "?"
	}
	prefix := fmt.Sprintf("INSERT INTO vehicles (%s) VALUES ", strings.Join(names, ", "))
	rowTuple := "(" + strings.Join(placeholders, ", ") + ")"

	for start := 0; start < len(batch); start += chunkSize {
		end := start + chunkSize
		if end > len(batch) {
			end = len(batch)
		}
		chunk := batch[start:end]

		tuples := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*len(columns))
		for i, row := range chunk {
			tuples[i] = rowTuple
			args = append(args, row...)
		}

		if _, err := tx.Exec(prefix+strings.Join(tuples, ","), args...); err != nil {
			return err
		}
	}
	return nil
}
