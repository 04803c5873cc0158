// Package kpi implements the four aggregate views of the vehicle table.
// Each query is a pure function of (stored rows, filter set): it builds
// one parameterized group-by over the filtered table and has no side
// effects, so the queries may run in any order or concurrently.
package kpi

import (
	"context"
	"fmt"
	"math"

	"github.com/evlens/evdash/internal/filter"
	"github.com/evlens/evdash/internal/store"
)

// SegmentRange is one row of the range-by-segment view.
type SegmentRange struct {
	Segment        string  `json:"segment"`
	AverageRangeKM float64 `json:"average_range_km"`
}

// RangeBySegment computes the average range_km per segment, sorted by
// average descending. Rows with a missing range are excluded; segments
// with no usable rows don't appear. An empty filtered table yields an
// empty result, not an error.
func RangeBySegment(ctx context.Context, st *store.Store, f filter.Set) ([]SegmentRange, error) {
	where, args := store.BuildWhere(f)

	query := fmt.Sprintf(`
		SELECT segment, AVG(range_km) AS average_range_km
		FROM vehicles
		WHERE %s AND range_km IS NOT NULL
		GROUP BY segment
		ORDER BY average_range_km DESC, segment
	`, where)

	rows, err := st.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("range by segment: %w", err)
	}
	defer rows.Close()

	var results []SegmentRange
	for rows.Next() {
		var r SegmentRange
		if err := rows.Scan(&r.Segment, &r.AverageRangeKM); err != nil {
			return nil, fmt.Errorf("scan segment range: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segment ranges: %w", err)
	}
	return results, nil
}

// BrandAcceleration is one row of the acceleration-by-brand view.
type BrandAcceleration struct {
	Brand                 string  `json:"brand"`
	AverageAccelerationS  float64 `json:"average_acceleration_s"`
}

// AccelerationByBrand computes the average 0-100 km/h time per brand,
// sorted ascending (fastest first). The presentation layer may truncate
// to its top 15; the ordering contract lives here.
func AccelerationByBrand(ctx context.Context, st *store.Store, f filter.Set) ([]BrandAcceleration, error) {
	where, args := store.BuildWhere(f)

	query := fmt.Sprintf(`
		SELECT brand, AVG(acceleration_0_100_s) AS average_acceleration_s
		FROM vehicles
		WHERE %s AND acceleration_0_100_s IS NOT NULL
		GROUP BY brand
		ORDER BY average_acceleration_s ASC, brand
	`, where)

	rows, err := st.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("acceleration by brand: %w", err)
	}
	defer rows.Close()

	var results []BrandAcceleration
	for rows.Next() {
		var r BrandAcceleration
		if err := rows.Scan(&r.Brand, &r.AverageAccelerationS); err != nil {
			return nil, fmt.Errorf("scan brand acceleration: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand accelerations: %w", err)
	}
	return results, nil
}

// BatteryEfficiencyPoint is one scatter point of the battery-vs-efficiency
// view. No aggregation: row-level detail is preserved for plotting.
type BatteryEfficiencyPoint struct {
	BatteryCapacityKWH float64 `json:"battery_capacity_kWh"`
	EfficiencyWhPerKM  float64 `json:"efficiency_wh_per_km"`
	Segment            string  `json:"segment"`
	Brand              string  `json:"brand"`
	Model              string  `json:"model"`
}

// BatteryVsEfficiency projects (battery capacity, efficiency, segment,
// brand, model) for rows where both numeric fields are present.
func BatteryVsEfficiency(ctx context.Context, st *store.Store, f filter.Set) ([]BatteryEfficiencyPoint, error) {
	where, args := store.BuildWhere(f)

	query := fmt.Sprintf(`
		SELECT battery_capacity_kWh, efficiency_wh_per_km, segment, brand, model
		FROM vehicles
		WHERE %s
		  AND battery_capacity_kWh IS NOT NULL
		  AND efficiency_wh_per_km IS NOT NULL
	`, where)

	rows, err := st.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("battery vs efficiency: %w", err)
	}
	defer rows.Close()

	var results []BatteryEfficiencyPoint
	for rows.Next() {
		var r BatteryEfficiencyPoint
		if err := rows.Scan(&r.BatteryCapacityKWH, &r.EfficiencyWhPerKM, &r.Segment, &r.Brand, &r.Model); err != nil {
			return nil, fmt.Errorf("scan battery efficiency point: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate battery efficiency points: %w", err)
	}
	return results, nil
}

// BodyTypeShare is one row of the body-type distribution view.
type BodyTypeShare struct {
	CarBodyType string  `json:"car_body_type"`
	Count       int64   `json:"count"`
	Percentage  float64 `json:"percentage"`
}

// BodyTypeDistribution counts rows per body type, sorted by count
// descending, with each count as a percentage of the total rounded to
// two decimals. For non-empty input the percentages sum to 100 within
// rounding tolerance.
func BodyTypeDistribution(ctx context.Context, st *store.Store, f filter.Set) ([]BodyTypeShare, error) {
	where, args := store.BuildWhere(f)

	query := fmt.Sprintf(`
		SELECT car_body_type, COUNT(*) AS cnt
		FROM vehicles
		WHERE %s
		GROUP BY car_body_type
		ORDER BY cnt DESC, car_body_type
	`, where)

	rows, err := st.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("body type distribution: %w", err)
	}
	defer rows.Close()

	var results []BodyTypeShare
	var total int64
	for rows.Next() {
		var r BodyTypeShare
		if err := rows.Scan(&r.CarBodyType, &r.Count); err != nil {
			return nil, fmt.Errorf("scan body type share: %w", err)
		}
		total += r.Count
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate body type shares: %w", err)
	}

	for i := range results {
		results[i].Percentage = round2(float64(results[i].Count) / float64(total) * 100)
	}
	return results, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
