package types

import "strconv"

// Settings is the flat key/value configuration as stored in the database.
// Unknown keys round-trip untouched so old databases keep working when new
// keys are added.
type Settings map[string]string

// Setting keys. The wire format and the stored keys are identical.
const (
	SettingPlantSizeKWP        = "plant_size_kwp"
	SettingPricePerKWH         = "price_per_kwh"
	SettingExpectedYieldPerKWP = "expected_yield_per_kwp"
	SettingStartDate           = "start_date"
	SettingInitialMeterReading = "initial_meter_reading"
	SettingAddress             = "address"
	SettingLatitude            = "latitude"
	SettingLongitude           = "longitude"
	SettingCurrency            = "currency"
	SettingMeterChangeDate     = "meter_change_date"
	SettingMeterChangeOffset   = "meter_change_offset"
	SettingPINHash             = "pin_hash"
)

// ProtectedSettings are secrets that must never be exposed or mutated via the
// settings endpoints.
var ProtectedSettings = map[string]bool{
	SettingPINHash: true,
}

// Numeric defaults used when a setting is missing or unparseable.
const (
	DefaultPlantSizeKWP        = 4.84
	DefaultPricePerKWH         = 0.518
	DefaultExpectedYieldPerKWP = 950.0
)

// PlantConfig is the typed view of the settings the yield engine needs,
// parsed once at the boundary.
type PlantConfig struct {
	PlantSizeKWP        float64
	PricePerKWH         float64
	ExpectedYieldPerKWP float64
	InitialMeterReading float64
	MeterChangeDate     string // YYYY-MM-DD, empty if no meter change
	MeterChangeOffset   float64
}

// PlantConfig parses the typed plant configuration out of the key/value
// settings, falling back to the documented defaults.
func (s Settings) PlantConfig() PlantConfig {
	return PlantConfig{
		PlantSizeKWP:        s.float(SettingPlantSizeKWP, DefaultPlantSizeKWP),
		PricePerKWH:         s.float(SettingPricePerKWH, DefaultPricePerKWH),
		ExpectedYieldPerKWP: s.float(SettingExpectedYieldPerKWP, DefaultExpectedYieldPerKWP),
		InitialMeterReading: s.float(SettingInitialMeterReading, 0),
		MeterChangeDate:     s[SettingMeterChangeDate],
		MeterChangeOffset:   s.float(SettingMeterChangeOffset, 0),
	}
}

func (s Settings) float(key string, fallback float64) float64 {
	v, ok := s[key]
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
