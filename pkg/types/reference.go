package types

// MonthlyYield is one month of reference yield data from an irradiance model.
type MonthlyYield struct {
	Month      int     `json:"month"`
	YieldKWH   float64 `json:"yield_kwh"`
	Irradiance float64 `json:"irradiance"`
}

// ReferenceEstimate is the reshaped response of an external irradiance
// estimate for a location and system.
type ReferenceEstimate struct {
	YearlyYield   float64        `json:"yearly_yield"`
	MonthlyYields []MonthlyYield `json:"monthly_yields"`
	Location      Location       `json:"location"`
	System        SystemParams   `json:"system"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type SystemParams struct {
	PeakPowerKWP float64 `json:"peakpower_kwp"`
	LossPct      float64 `json:"loss_pct"`
}

// Region is one entry of the static regional reference table.
type Region struct {
	Name        string  `json:"name"`
	YieldPerKWP float64 `json:"yield_per_kwp"`
}

// TypicalYields is the static table of regional average yields plus the
// seasonal distribution of yield across the twelve months (fractions summing
// to 1).
type TypicalYields struct {
	GermanyAverage      float64           `json:"germany_average"`
	Regions             map[string]Region `json:"regions"`
	MonthlyDistribution map[int]float64   `json:"monthly_distribution"`
}
