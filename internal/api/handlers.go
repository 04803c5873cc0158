package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/evlens/evdash/internal/filter"
	"github.com/evlens/evdash/internal/kpi"
	"github.com/evlens/evdash/internal/store"
)

// StatsResponse represents the database statistics.
type StatsResponse struct {
	VehicleCount int64 `json:"vehicle_count"`
	BrandCount   int64 `json:"brand_count"`
	DatabaseSize int64 `json:"database_size_bytes"`
}

// FiltersResponse lists the available filter options per field.
type FiltersResponse struct {
	Brand       []string `json:"brand"`
	Segment     []string `json:"segment"`
	CarBodyType []string `json:"car_body_type"`
}

// LoadResponse reports the outcome of a CSV upload.
type LoadResponse struct {
	Inserted int `json:"inserted"`
}

// DashboardResponse bundles all four KPI views plus the filter summary.
type DashboardResponse struct {
	FilterSummary        string                       `json:"filter_summary"`
	RangeBySegment       []kpi.SegmentRange           `json:"range_by_segment"`
	AccelerationByBrand  []kpi.BrandAcceleration      `json:"acceleration_by_brand"`
	BatteryVsEfficiency  []kpi.BatteryEfficiencyPoint `json:"battery_vs_efficiency"`
	BodyTypeDistribution []kpi.BodyTypeShare          `json:"body_type_distribution"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

// filterSetFromQuery builds a normalized filter set from repeatable
// brand/segment/car_body_type query parameters.
func filterSetFromQuery(r *http.Request) filter.Set {
	q := r.URL.Query()
	selection := filter.Set{}
	for _, field := range filter.Fields() {
		selection[field] = q[string(field)]
	}
	return filter.Normalize(selection)
}

// handleStats returns database statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats()
	if err != nil {
		s.logger.Error("failed to get stats", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve statistics")
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		VehicleCount: stats.VehicleCount,
		BrandCount:   stats.BrandCount,
		DatabaseSize: stats.DatabaseSize,
	})
}

// handleFilters returns the available filter options.
func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	resp := FiltersResponse{}
	targets := []struct {
		field filter.Field
		dest  *[]string
	}{
		{filter.FieldBrand, &resp.Brand},
		{filter.FieldSegment, &resp.Segment},
		{filter.FieldBodyType, &resp.CarBodyType},
	}
	for _, t := range targets {
		values, err := s.store.DistinctValues(string(t.field))
		if err != nil {
			s.logger.Error("failed to list filter options", "field", t.field, "error", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve filter options")
			return
		}
		if values == nil {
			values = []string{}
		}
		*t.dest = values
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRangeBySegment(w http.ResponseWriter, r *http.Request) {
	results, err := kpi.RangeBySegment(r.Context(), s.store, filterSetFromQuery(r))
	if err != nil {
		s.logger.Error("range by segment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compute range by segment")
		return
	}
	if results == nil {
		results = []kpi.SegmentRange{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleAccelerationByBrand(w http.ResponseWriter, r *http.Request) {
	results, err := kpi.AccelerationByBrand(r.Context(), s.store, filterSetFromQuery(r))
	if err != nil {
		s.logger.Error("acceleration by brand failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compute acceleration by brand")
		return
	}
	if results == nil {
		results = []kpi.BrandAcceleration{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleBatteryEfficiency(w http.ResponseWriter, r *http.Request) {
	results, err := kpi.BatteryVsEfficiency(r.Context(), s.store, filterSetFromQuery(r))
	if err != nil {
		s.logger.Error("battery vs efficiency failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compute battery vs efficiency")
		return
	}
	if results == nil {
		results = []kpi.BatteryEfficiencyPoint{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleBodyTypeDistribution(w http.ResponseWriter, r *http.Request) {
	results, err := kpi.BodyTypeDistribution(r.Context(), s.store, filterSetFromQuery(r))
	if err != nil {
		s.logger.Error("body type distribution failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compute body type distribution")
		return
	}
	if results == nil {
		results = []kpi.BodyTypeShare{}
	}
	writeJSON(w, http.StatusOK, results)
}

// handleDashboard computes all four KPI views for one filter set. The
// queries only read, so they run concurrently.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	set := filterSetFromQuery(r)
	resp := DashboardResponse{
		FilterSummary:        filter.Summarize(set),
		RangeBySegment:       []kpi.SegmentRange{},
		AccelerationByBrand:  []kpi.BrandAcceleration{},
		BatteryVsEfficiency:  []kpi.BatteryEfficiencyPoint{},
		BodyTypeDistribution: []kpi.BodyTypeShare{},
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		results, err := kpi.RangeBySegment(ctx, s.store, set)
		if err == nil && results != nil {
			resp.RangeBySegment = results
		}
		return err
	})
	g.Go(func() error {
		results, err := kpi.AccelerationByBrand(ctx, s.store, set)
		if err == nil && results != nil {
			resp.AccelerationByBrand = results
		}
		return err
	})
	g.Go(func() error {
		results, err := kpi.BatteryVsEfficiency(ctx, s.store, set)
		if err == nil && results != nil {
			resp.BatteryVsEfficiency = results
		}
		return err
	})
	g.Go(func() error {
		results, err := kpi.BodyTypeDistribution(ctx, s.store, set)
		if err == nil && results != nil {
			resp.BodyTypeDistribution = results
		}
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard computation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compute dashboard")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLoad ingests a CSV file uploaded as multipart form field "file".
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	const maxUpload = 64 << 20 // 64 MiB
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload", "Expected multipart form with a \"file\" field")
		return
	}

	f, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload", "Missing \"file\" field")
		return
	}
	defer f.Close()

	inserted, err := s.store.LoadReader(f)
	if err != nil {
		if errors.Is(err, store.ErrBadInput) {
			writeError(w, http.StatusBadRequest, "invalid_csv", err.Error())
			return
		}
		s.logger.Error("csv load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load CSV")
		return
	}

	vehiclesLoadedTotal.Add(float64(inserted))
	s.logger.Info("csv loaded", "inserted", inserted)
	writeJSON(w, http.StatusOK, LoadResponse{Inserted: inserted})
}

// handleClear removes all stored vehicles.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(); err != nil {
		s.logger.Error("clear failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to clear vehicles")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
