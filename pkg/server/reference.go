package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/solartrack/solartrack/pkg/log"
	"github.com/solartrack/solartrack/pkg/types"
)

// pvgisResponse is the subset of the PVGIS PVcalc payload we care about.
type pvgisResponse struct {
	Outputs struct {
		Totals struct {
			Fixed struct {
				EY float64 `json:"E_y"`
			} `json:"fixed"`
		} `json:"totals"`
		Monthly struct {
			Fixed []struct {
				Month int     `json:"month"`
				EM    float64 `json:"E_m"`
				HM    float64 `json:"H_m"`
			} `json:"fixed"`
		} `json:"monthly"`
	} `json:"outputs"`
}

// handlePVGIS proxies the EU JRC PVGIS irradiance estimate for the given
// location and system, reshaping the response for the frontend. Upstream
// failures surface as 502, never as a local fault.
func (s *Server) handlePVGIS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lat := queryFloat(r, "lat", 48.1351)
	lon := queryFloat(r, "lon", 11.5820)
	peakPower := queryFloat(r, "peakpower", 4.84)
	loss := queryFloat(r, "loss", 14)

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("peakpower", strconv.FormatFloat(peakPower, 'f', -1, 64))
	params.Set("loss", strconv.FormatFloat(loss, 'f', -1, 64))
	params.Set("outputformat", "json")
	// fixed crystalline-silicon rooftop array at the common 35° tilt
	params.Set("pvtechchoice", "crystSi")
	params.Set("mountingplace", "building")
	params.Set("angle", "35")
	params.Set("aspect", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pvgisURL+"?"+params.Encode(), nil)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to build pvgis request", slog.Any("error", err))
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "pvgis request failed", slog.Any("error", err))
		writeJSONError(w, fmt.Sprintf("PVGIS API error: %v", err), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Ctx(ctx).WarnContext(ctx, "pvgis returned non-200", slog.Int("status", resp.StatusCode))
		writeJSONError(w, fmt.Sprintf("PVGIS API error: status %d", resp.StatusCode), http.StatusBadGateway)
		return
	}

	var data pvgisResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to decode pvgis response", slog.Any("error", err))
		writeJSONError(w, fmt.Sprintf("PVGIS API error: %v", err), http.StatusBadGateway)
		return
	}

	estimate := types.ReferenceEstimate{
		YearlyYield:   data.Outputs.Totals.Fixed.EY,
		MonthlyYields: make([]types.MonthlyYield, 0, len(data.Outputs.Monthly.Fixed)),
		Location: types.Location{
			Latitude:  lat,
			Longitude: lon,
		},
		System: types.SystemParams{
			PeakPowerKWP: peakPower,
			LossPct:      loss,
		},
	}
	for _, m := range data.Outputs.Monthly.Fixed {
		estimate.MonthlyYields = append(estimate.MonthlyYields, types.MonthlyYield{
			Month:      m.Month,
			YieldKWH:   m.EM,
			Irradiance: m.HM,
		})
	}

	writeJSON(w, estimate)
}

// handleTypicalYields returns the static regional reference table for
// Germany plus the seasonal distribution of yield across the year.
func (s *Server) handleTypicalYields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, types.TypicalYields{
		GermanyAverage: 950,
		Regions: map[string]types.Region{
			"north":   {Name: "Norddeutschland", YieldPerKWP: 850},
			"central": {Name: "Mitteldeutschland", YieldPerKWP: 950},
			"south":   {Name: "Süddeutschland", YieldPerKWP: 1050},
			"alpine":  {Name: "Alpenregion", YieldPerKWP: 1100},
		},
		MonthlyDistribution: map[int]float64{
			1: 0.03, 2: 0.05, 3: 0.08, 4: 0.10, 5: 0.12, 6: 0.13,
			7: 0.13, 8: 0.11, 9: 0.09, 10: 0.07, 11: 0.04, 12: 0.03,
		},
	})
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
