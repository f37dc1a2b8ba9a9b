package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/solartrack/solartrack/pkg/log"
	"github.com/solartrack/solartrack/pkg/types"
	"github.com/solartrack/solartrack/pkg/yield"
)

// loadReadings fetches the complete reading history plus the typed plant
// configuration parsed from the current settings.
func (s *Server) loadReadings(r *http.Request) ([]types.Reading, types.PlantConfig, error) {
	ctx := r.Context()
	readings, err := s.storage.GetAllReadings(ctx)
	if err != nil {
		return nil, types.PlantConfig{}, fmt.Errorf("get readings: %w", err)
	}
	settings, err := s.storage.GetAllSettings(ctx)
	if err != nil {
		return nil, types.PlantConfig{}, fmt.Errorf("get settings: %w", err)
	}
	return readings, settings.PlantConfig(), nil
}

func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	readings, cfg, err := s.loadReadings(r)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to load readings", slog.Any("error", err))
		writeJSONError(w, "failed to load readings", http.StatusInternalServerError)
		return
	}

	derived := yield.Derive(readings, cfg)
	if derived == nil {
		derived = []types.DerivedReading{}
	}
	writeJSON(w, derived)
}

func (s *Server) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Date         string  `json:"date"`
		MeterReading float64 `json:"meter_reading"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		writeJSONError(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if req.MeterReading < 0 {
		writeJSONError(w, "meter reading cannot be negative", http.StatusBadRequest)
		return
	}

	id, err := s.storage.AddReading(ctx, req.Date, req.MeterReading)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to add reading", slog.String("date", req.Date), slog.Any("error", err))
		writeJSONError(w, "failed to add reading", http.StatusBadRequest)
		return
	}

	log.Ctx(ctx).InfoContext(ctx, "reading added", slog.String("date", req.Date), slog.Int64("id", id))
	writeJSON(w, map[string]any{
		"id":      id,
		"message": "Reading added successfully",
	})
}

func (s *Server) handleDeleteReading(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSONError(w, "invalid reading id", http.StatusBadRequest)
		return
	}

	if err := s.storage.DeleteReading(ctx, id); err != nil {
		// deleting an already-gone reading is not worth surfacing
		log.Ctx(ctx).WarnContext(ctx, "failed to delete reading", slog.Int64("id", id), slog.Any("error", err))
	}
	writeJSON(w, map[string]string{"message": "Reading deleted"})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	readings, cfg, err := s.loadReadings(r)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to load readings", slog.Any("error", err))
		writeJSONError(w, "failed to load statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, yield.Statistics(readings, cfg))
}

func (s *Server) handleMonthlyComparison(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	readings, cfg, err := s.loadReadings(r)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to load readings", slog.Any("error", err))
		writeJSONError(w, "failed to load monthly comparison", http.StatusInternalServerError)
		return
	}

	months := yield.MonthlyComparison(readings, cfg)
	if months == nil {
		months = []types.MonthComparison{}
	}
	writeJSON(w, months)
}
