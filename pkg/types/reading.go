package types

// Reading is one stored meter reading: the cumulative lifetime counter value
// of the production meter on a given calendar day. Readings are unique by
// date; re-entering the same date replaces the stored value.
type Reading struct {
	ID           int64   `json:"id"`
	Date         string  `json:"date"` // YYYY-MM-DD
	MeterReading float64 `json:"meter_reading"`
}

// DerivedReading is a Reading enriched with the values computed from it and
// the current plant configuration. It is never persisted: changing settings
// retroactively changes every derived value.
type DerivedReading struct {
	ID           int64   `json:"id"`
	Date         string  `json:"date"`
	MeterReading float64 `json:"meter_reading"`
	YieldKWH     float64 `json:"yield_kwh"`
	YieldPerKWP  float64 `json:"yield_per_kwp"`
	Revenue      float64 `json:"revenue"`
}

// YearlyStat aggregates the clamped period yields of one calendar year.
type YearlyStat struct {
	Year           int     `json:"year"`
	YieldKWH       float64 `json:"yield_kwh"`
	Months         int     `json:"months"`
	ExpectedYield  float64 `json:"expected_yield"`
	YieldPerKWP    float64 `json:"yield_per_kwp"`
	Revenue        float64 `json:"revenue"`
	PerformancePct float64 `json:"performance_pct"`
}

// Statistics is the lifetime summary of the installation.
type Statistics struct {
	TotalYield          float64      `json:"total_yield"`
	TotalYieldPerKWP    float64      `json:"total_yield_per_kwp"`
	TotalRevenue        float64      `json:"total_revenue"`
	AvgMonthlyYield     float64      `json:"avg_monthly_yield"`
	YearsActive         int          `json:"years_active"`
	ExpectedYearlyYield float64      `json:"expected_yearly_yield"`
	YearlyStats         []YearlyStat `json:"yearly_stats"`
}

// MonthComparison holds the yield of one calendar month (1-12) across all
// recorded years, for the cross-year seasonal comparison chart.
type MonthComparison struct {
	Month int             `json:"month"`
	Years map[int]float64 `json:"years"`
}
