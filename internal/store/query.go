package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/evlens/evdash/internal/filter"
)

// Vehicle is one stored row. Nullable columns are pointers; brand, model,
// segment and car_body_type are guaranteed non-empty by ingestion.
type Vehicle struct {
	Brand                 string
	Model                 string
	TopSpeedKMH           *float64
	BatteryCapacityKWH    *float64
	BatteryType           *string
	NumberOfCells         *int64
	TorqueNM              *float64
	EfficiencyWhPerKM     *float64
	RangeKM               *float64
	Acceleration0To100S   *float64
	FastChargingPowerKWDC *float64
	FastChargePort        *string
	TowingCapacityKG      *float64
	CargoVolumeL          *float64
	Seats                 *int64
	Drivetrain            *string
	Segment               string
	LengthMM              *float64
	WidthMM               *float64
	HeightMM              *float64
	CarBodyType           string
	SourceURL             *string
}

// BuildWhere turns a filter set into a parameterized WHERE body. Every
// value is bound with a placeholder; only the field name, which comes
// from the closed filter.Field type, is interpolated. Returns "1=1" for
// an empty set so callers can always append the result after WHERE.
func BuildWhere(f filter.Set) (string, []any) {
	var conditions []string
	var args []any

	for _, field := range filter.Fields() {
		values := f[field]
		if len(values) == 0 {
			continue
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = "?"
			args = append(args, v)
		}
		conditions = append(conditions, fmt.Sprintf("%s IN (%s)", field, strings.Join(placeholders, ",")))
	}

	if len(conditions) == 0 {
		return "1=1", args
	}
	return strings.Join(conditions, " AND "), args
}

// Query returns all rows matching the filter set. Fields absent from the
// set are unconstrained; an empty set returns every stored row.
func (s *Store) Query(ctx context.Context, f filter.Set) ([]Vehicle, error) {
	where, args := BuildWhere(f)

	query := fmt.Sprintf(`
		SELECT %s
		FROM vehicles
		WHERE %s
	`, strings.Join(Columns(), ", "), where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	return vehicles, nil
}

func scanVehicle(rows *sql.Rows) (Vehicle, error) {
	var (
		v                                               Vehicle
		topSpeed, battery, torque, efficiency, rangeKM  sql.NullFloat64
		accel, fastCharge, towing, cargo                sql.NullFloat64
		length, width, height                           sql.NullFloat64
		cells, seats                                    sql.NullInt64
		batteryType, chargePort, drivetrain, sourceURL  sql.NullString
	)

	err := rows.Scan(
		&v.Brand, &v.Model, &topSpeed, &battery, &batteryType, &cells,
		&torque, &efficiency, &rangeKM, &accel, &fastCharge, &chargePort,
		&towing, &cargo, &seats, &drivetrain, &v.Segment,
		&length, &width, &height, &v.CarBodyType, &sourceURL,
	)
	if err != nil {
		return Vehicle{}, err
	}

	v.TopSpeedKMH = nullFloat(topSpeed)
	v.BatteryCapacityKWH = nullFloat(battery)
	v.BatteryType = nullString(batteryType)
	v.NumberOfCells = nullInt(cells)
	v.TorqueNM = nullFloat(torque)
	v.EfficiencyWhPerKM = nullFloat(efficiency)
	v.RangeKM = nullFloat(rangeKM)
	v.Acceleration0To100S = nullFloat(accel)
	v.FastChargingPowerKWDC = nullFloat(fastCharge)
	v.FastChargePort = nullString(chargePort)
	v.TowingCapacityKG = nullFloat(towing)
	v.CargoVolumeL = nullFloat(cargo)
	v.Seats = nullInt(seats)
	v.Drivetrain = nullString(drivetrain)
	v.LengthMM = nullFloat(length)
	v.WidthMM = nullFloat(width)
	v.HeightMM = nullFloat(height)
	v.SourceURL = nullString(sourceURL)
	return v, nil
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return &n.Float64
}

func nullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}

func nullString(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return &n.String
}
