package store_test

import (
	"path/filepath"
	"testing"

	"github.com/evlens/evdash/internal/store"
	"github.com/evlens/evdash/internal/testutil"
)

func loadBrands(t *testing.T, st *store.Store, brands ...string) {
	t.Helper()
	rows := make([][]string, len(brands))
	for i, b := range brands {
		rows[i] = testutil.VehicleRow(b, "M", "C - Medium", "Sedan", "400", "6", "60", "150", "5")
	}
	testutil.LoadFixtures(t, st, rows)
}

func TestDistinctValuesSortedDeduplicated(t *testing.T) {
	st := testutil.NewTestStore(t)
	loadBrands(t, st, "Tesla", "BMW", "Audi", "Tesla")

	values, err := st.DistinctValues("brand")
	testutil.MustNoErr(t, err, "DistinctValues")
	testutil.AssertStrings(t, values, "Audi", "BMW", "Tesla")
}

func TestDistinctValuesEmptyTable(t *testing.T) {
	st := testutil.NewTestStore(t)

	values, err := st.DistinctValues("segment")
	testutil.MustNoErr(t, err, "DistinctValues")
	if len(values) != 0 {
		t.Errorf("DistinctValues on empty table = %v, want none", values)
	}
}

func TestDistinctValuesRejectsUnknownColumn(t *testing.T) {
	st := testutil.NewTestStore(t)

	if _, err := st.DistinctValues("brand; DROP TABLE vehicles--"); err == nil {
		t.Error("DistinctValues accepted a non-column identifier")
	}
}

func TestClearResetsCount(t *testing.T) {
	st := testutil.NewTestStore(t)
	loadBrands(t, st, "Tesla", "BMW", "Audi")

	testutil.MustNoErr(t, st.Clear(), "Clear")

	count, err := st.Count()
	testutil.MustNoErr(t, err, "Count")
	if count != 0 {
		t.Errorf("Count() after Clear = %d, want 0", count)
	}

	// Schema persists: loads still work without re-initializing.
	loadBrands(t, st, "Kia")
	count, err = st.Count()
	testutil.MustNoErr(t, err, "Count")
	if count != 1 {
		t.Errorf("Count() after reload = %d, want 1", count)
	}
}

func TestInitSchemaIdempotent(t *testing.T) {
	st := testutil.NewTestStore(t)
	testutil.MustNoErr(t, st.InitSchema(), "second InitSchema")
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "evdash.duckdb")

	st, err := store.Open(path)
	testutil.MustNoErr(t, err, "Open")
	defer st.Close()
	testutil.MustNoErr(t, st.InitSchema(), "InitSchema")

	count, err := st.Count()
	testutil.MustNoErr(t, err, "Count")
	if count != 0 {
		t.Errorf("fresh database Count() = %d, want 0", count)
	}
}

func TestGetStats(t *testing.T) {
	st := testutil.NewTestStore(t)
	loadBrands(t, st, "Tesla", "Tesla", "BMW")

	stats, err := st.GetStats()
	testutil.MustNoErr(t, err, "GetStats")
	if stats.VehicleCount != 3 {
		t.Errorf("VehicleCount = %d, want 3", stats.VehicleCount)
	}
	if stats.BrandCount != 2 {
		t.Errorf("BrandCount = %d, want 2", stats.BrandCount)
	}
}
