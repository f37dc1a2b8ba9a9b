// Package yield turns a sequence of cumulative meter readings into per-period
// yield, revenue and performance figures. Dates are ISO-8601 day strings and
// are compared lexically, which orders them chronologically.
package yield

import (
	"math"
	"strconv"

	"github.com/solartrack/solartrack/pkg/types"
)

// resetThresholdKWH is how far a reading must drop below its predecessor
// before we assume the meter counter was reset rather than the data being a
// transient anomaly.
const resetThresholdKWH = 1000

// PeriodYield computes the energy generated between two consecutive readings.
//
// Policy, in priority order:
//  1. First reading on or after the meter-change date: the new meter's
//     counter started near zero, so the reading itself is the yield since the
//     swap, not a delta against the old meter.
//  2. Reading dropped by more than resetThresholdKWH: undetected meter reset,
//     the reading is re-based from zero.
//  3. Otherwise the plain delta current-previous.
//
// The result can be negative on noisy data; clamping is left to callers.
// Multi-month gaps between readings are not interpolated, they show up as a
// single large delta.
func PeriodYield(current, previous float64, date, prevDate, meterChangeDate string) float64 {
	if meterChangeDate != "" && date >= meterChangeDate && (prevDate == "" || prevDate < meterChangeDate) {
		return current
	}
	if current < previous && previous-current > resetThresholdKWH {
		return current
	}
	return current - previous
}

// Derive enriches each reading with its period yield, yield per installed
// kWp and revenue, in ascending date order. Negative period yields are
// clamped to zero for display.
func Derive(readings []types.Reading, cfg types.PlantConfig) []types.DerivedReading {
	derived := make([]types.DerivedReading, 0, len(readings))

	prevReading := cfg.InitialMeterReading
	prevDate := ""
	for _, r := range readings {
		yieldKWH := math.Max(0, PeriodYield(r.MeterReading, prevReading, r.Date, prevDate, cfg.MeterChangeDate))

		var perKWP float64
		if cfg.PlantSizeKWP > 0 {
			perKWP = yieldKWH / cfg.PlantSizeKWP
		}
		derived = append(derived, types.DerivedReading{
			ID:           r.ID,
			Date:         r.Date,
			MeterReading: r.MeterReading,
			YieldKWH:     round2(yieldKWH),
			YieldPerKWP:  round2(perKWP),
			Revenue:      round2(yieldKWH * cfg.PricePerKWH),
		})
		prevReading = r.MeterReading
		prevDate = r.Date
	}

	return derived
}

// Statistics aggregates the full reading history into lifetime totals and
// per-year stats. An empty history yields all-zero statistics with an empty
// (non-nil) yearly list.
func Statistics(readings []types.Reading, cfg types.PlantConfig) types.Statistics {
	stats := types.Statistics{
		YearlyStats: []types.YearlyStat{},
	}
	if len(readings) == 0 {
		return stats
	}

	// Lifetime total straight from the counter, bridging the meter change
	// with the configured offset.
	last := readings[len(readings)-1]
	totalYield := last.MeterReading - cfg.InitialMeterReading
	if cfg.MeterChangeDate != "" && last.Date >= cfg.MeterChangeDate {
		totalYield = cfg.MeterChangeOffset + last.MeterReading - cfg.InitialMeterReading
	}

	stats.TotalYield = round2(totalYield)
	if cfg.PlantSizeKWP > 0 {
		stats.TotalYieldPerKWP = round2(totalYield / cfg.PlantSizeKWP)
	}
	stats.TotalRevenue = round2(totalYield * cfg.PricePerKWH)
	stats.AvgMonthlyYield = round2(totalYield / float64(len(readings)))
	stats.YearsActive = yearOf(last.Date) - yearOf(readings[0].Date) + 1
	stats.ExpectedYearlyYield = round2(cfg.ExpectedYieldPerKWP * cfg.PlantSizeKWP)

	// Per-year sums of the clamped period yields.
	perYear := map[int]*types.YearlyStat{}
	years := []int{}
	prevReading := cfg.InitialMeterReading
	prevDate := ""
	for _, r := range readings {
		year := yearOf(r.Date)
		yieldKWH := math.Max(0, PeriodYield(r.MeterReading, prevReading, r.Date, prevDate, cfg.MeterChangeDate))

		ys, ok := perYear[year]
		if !ok {
			ys = &types.YearlyStat{
				Year:          year,
				ExpectedYield: cfg.ExpectedYieldPerKWP * cfg.PlantSizeKWP,
			}
			perYear[year] = ys
			years = append(years, year)
		}
		ys.YieldKWH += yieldKWH
		ys.Months++
		prevReading = r.MeterReading
		prevDate = r.Date
	}

	// years were appended while walking readings in date order, so they are
	// already ascending
	for _, year := range years {
		ys := perYear[year]
		ys.YieldKWH = round2(ys.YieldKWH)
		if cfg.PlantSizeKWP > 0 {
			ys.YieldPerKWP = round2(ys.YieldKWH / cfg.PlantSizeKWP)
		}
		ys.Revenue = round2(ys.YieldKWH * cfg.PricePerKWH)
		if ys.ExpectedYield > 0 {
			ys.PerformancePct = round1(ys.YieldKWH / ys.ExpectedYield * 100)
		}
		stats.YearlyStats = append(stats.YearlyStats, *ys)
	}

	return stats
}

// MonthlyComparison groups the clamped period yields by calendar month
// across years, sorted by month ascending. A later reading in the same month
// of the same year overwrites the earlier one.
func MonthlyComparison(readings []types.Reading, cfg types.PlantConfig) []types.MonthComparison {
	perMonth := map[int]types.MonthComparison{}

	prevReading := cfg.InitialMeterReading
	prevDate := ""
	for _, r := range readings {
		year := yearOf(r.Date)
		month := monthOf(r.Date)
		if month == 0 {
			continue
		}
		yieldKWH := math.Max(0, PeriodYield(r.MeterReading, prevReading, r.Date, prevDate, cfg.MeterChangeDate))

		mc, ok := perMonth[month]
		if !ok {
			mc = types.MonthComparison{Month: month, Years: map[int]float64{}}
			perMonth[month] = mc
		}
		mc.Years[year] = round2(yieldKWH)
		prevReading = r.MeterReading
		prevDate = r.Date
	}

	out := make([]types.MonthComparison, 0, len(perMonth))
	for month := 1; month <= 12; month++ {
		if mc, ok := perMonth[month]; ok {
			out = append(out, mc)
		}
	}
	return out
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, _ := strconv.Atoi(date[:4])
	return y
}

func monthOf(date string) int {
	if len(date) < 7 {
		return 0
	}
	m, _ := strconv.Atoi(date[5:7])
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
