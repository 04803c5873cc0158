// Package testutil provides shared test helpers for evdash tests.
package testutil

import (
	"testing"

	"github.com/evlens/evdash/internal/store"
)

// MustNoErr fails the test immediately if err is non-nil.
// Use this for setup operations where failure means the test cannot proceed.
func MustNoErr(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// AssertStrings compares two string slices element-by-element.
func AssertStrings(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("got len %d, want %d: %v", len(got), len(want), got)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("at index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

// NewTestStore creates an in-memory store with the schema initialized.
// The store is closed automatically when the test finishes.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open("")
	MustNoErr(t, err, "open in-memory store")
	t.Cleanup(func() { _ = st.Close() })
	MustNoErr(t, st.InitSchema(), "init schema")
	return st
}

// VehicleHeader is the canonical CSV header used by test fixtures.
var VehicleHeader = []string{
	"brand", "model", "segment", "car_body_type",
	"range_km", "acceleration_0_100_s", "battery_capacity_kWh",
	"efficiency_wh_per_km", "seats",
}

// VehicleRow builds a fixture record matching VehicleHeader. Empty
// strings stand for missing values.
func VehicleRow(brand, model, segment, bodyType, rangeKM, accel, battery, efficiency, seats string) []string {
	return []string{brand, model, segment, bodyType, rangeKM, accel, battery, efficiency, seats}
}

// LoadFixtures inserts the given records and fails the test unless all
// of them are accepted.
func LoadFixtures(t *testing.T, st *store.Store, rows [][]string) {
	t.Helper()
	inserted, err := st.LoadRows(VehicleHeader, rows)
	MustNoErr(t, err, "load fixtures")
	if inserted != len(rows) {
		t.Fatalf("loaded %d fixture rows, want %d", inserted, len(rows))
	}
}
