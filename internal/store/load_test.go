package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evlens/evdash/internal/filter"
	"github.com/evlens/evdash/internal/store"
	"github.com/evlens/evdash/internal/testutil"
)

func TestLoadRowsDropsRowsMissingRequiredFields(t *testing.T) {
	st := testutil.NewTestStore(t)

	rows := [][]string{
		testutil.VehicleRow("Tesla", "Model 3", "C - Medium", "Sedan", "500", "5.5", "60", "140", "5"),
		testutil.VehicleRow("", "Ghost", "C - Medium", "Sedan", "400", "6", "50", "150", "5"),      // no brand
		testutil.VehicleRow("BMW", "", "D - Large", "Sedan", "520", "5.7", "80", "170", "5"),       // no model
		testutil.VehicleRow("Audi", "Q4", "", "SUV", "400", "6.8", "77", "180", "5"),               // no segment
		testutil.VehicleRow("Kia", "EV6", "D - Large", "", "480", "5.2", "77", "165", "5"),         // no body type
		testutil.VehicleRow("Polestar", "2", "C - Medium", "Fastback", "460", "4.7", "78", "", ""), // valid, sparse
	}

	inserted, err := st.LoadRows(testutil.VehicleHeader, rows)
	testutil.MustNoErr(t, err, "LoadRows")
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2", inserted)
	}

	count, err := st.Count()
	testutil.MustNoErr(t, err, "Count")
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

func TestLoadRowsIsAdditive(t *testing.T) {
	st := testutil.NewTestStore(t)

	row := testutil.VehicleRow("Tesla", "Model 3", "C - Medium", "Sedan", "500", "5.5", "60", "140", "5")

	// Same row loaded twice: no dedup, no upsert.
	for i := 1; i <= 2; i++ {
		inserted, err := st.LoadRows(testutil.VehicleHeader, [][]string{row})
		testutil.MustNoErr(t, err, "LoadRows")
		if inserted != 1 {
			t.Fatalf("load %d: inserted = %d, want 1", i, inserted)
		}
	}

	count, err := st.Count()
	testutil.MustNoErr(t, err, "Count")
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

func TestLoadRowsCoercesBadNumericsToMissing(t *testing.T) {
	st := testutil.NewTestStore(t)

	rows := [][]string{
		testutil.VehicleRow("Tesla", "Model 3", "C - Medium", "Sedan", "not-a-number", "5.5", "60", "140", "five"),
	}

	inserted, err := st.LoadRows(testutil.VehicleHeader, rows)
	testutil.MustNoErr(t, err, "LoadRows")
	if inserted != 1 {
		t.Fatalf("inserted = %d, want 1 (bad numerics are not row-fatal)", inserted)
	}

	vehicles, err := st.Query(context.Background(), filter.Set{})
	testutil.MustNoErr(t, err, "Query")
	if len(vehicles) != 1 {
		t.Fatalf("got %d vehicles, want 1", len(vehicles))
	}
	v := vehicles[0]
	if v.RangeKM != nil {
		t.Errorf("RangeKM = %v, want missing", *v.RangeKM)
	}
	if v.Seats != nil {
		t.Errorf("Seats = %v, want missing", *v.Seats)
	}
	if v.Acceleration0To100S == nil || *v.Acceleration0To100S != 5.5 {
		t.Errorf("Acceleration0To100S = %v, want 5.5", v.Acceleration0To100S)
	}
}

func TestLoadRowsZeroValidRowsIsNotAnError(t *testing.T) {
	st := testutil.NewTestStore(t)

	rows := [][]string{
		testutil.VehicleRow("", "", "", "", "", "", "", "", ""),
		testutil.VehicleRow("Tesla", "Model 3", "", "", "500", "5.5", "60", "140", "5"),
	}

	inserted, err := st.LoadRows(testutil.VehicleHeader, rows)
	if err != nil {
		t.Fatalf("LoadRows returned error for all-invalid batch: %v", err)
	}
	if inserted != 0 {
		t.Errorf("inserted = %d, want 0", inserted)
	}
}

func TestLoadRowsIgnoresUnknownColumns(t *testing.T) {
	st := testutil.NewTestStore(t)

	header := []string{"brand", "model", "segment", "car_body_type", "launch_party_theme"}
	rows := [][]string{{"Tesla", "Model S", "F - Luxury", "Sedan", "disco"}}

	inserted, err := st.LoadRows(header, rows)
	testutil.MustNoErr(t, err, "LoadRows")
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}
}

func TestLoadReaderEmptyInput(t *testing.T) {
	st := testutil.NewTestStore(t)

	_, err := st.LoadReader(strings.NewReader(""))
	if !errors.Is(err, store.ErrBadInput) {
		t.Errorf("LoadReader(empty) error = %v, want ErrBadInput", err)
	}
}

func TestLoadReaderRaggedRecords(t *testing.T) {
	st := testutil.NewTestStore(t)

	csv := "brand,model,segment,car_body_type\nTesla,Model 3,C - Medium\n"
	_, err := st.LoadReader(strings.NewReader(csv))
	if !errors.Is(err, store.ErrBadInput) {
		t.Errorf("LoadReader(ragged) error = %v, want ErrBadInput", err)
	}
}

func TestLoadReaderHeaderOrderInsignificant(t *testing.T) {
	st := testutil.NewTestStore(t)

	csv := "range_km,car_body_type,brand,segment,model\n410.5,SUV,Audi,D - Large,Q4 e-tron\n"
	inserted, err := st.LoadReader(strings.NewReader(csv))
	testutil.MustNoErr(t, err, "LoadReader")
	if inserted != 1 {
		t.Fatalf("inserted = %d, want 1", inserted)
	}

	vehicles, err := st.Query(context.Background(), filter.Set{})
	testutil.MustNoErr(t, err, "Query")
	if vehicles[0].Brand != "Audi" || vehicles[0].CarBodyType != "SUV" {
		t.Errorf("row mapped wrong: %+v", vehicles[0])
	}
	if vehicles[0].RangeKM == nil || *vehicles[0].RangeKM != 410.5 {
		t.Errorf("RangeKM = %v, want 410.5", vehicles[0].RangeKM)
	}
}

func TestLoadCSVFile(t *testing.T) {
	st := testutil.NewTestStore(t)

	path := filepath.Join(t.TempDir(), "vehicles.csv")
	content := "brand,model,segment,car_body_type,range_km\n" +
		"Tesla,Model 3,C - Medium,Sedan,500\n" +
		"BMW,i4,D - Large,Sedan,520\n"
	testutil.MustNoErr(t, os.WriteFile(path, []byte(content), 0o644), "write csv")

	inserted, err := st.LoadCSV(path)
	testutil.MustNoErr(t, err, "LoadCSV")
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2", inserted)
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	st := testutil.NewTestStore(t)

	_, err := st.LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, store.ErrBadInput) {
		t.Errorf("LoadCSV(missing) error = %v, want ErrBadInput", err)
	}
}
