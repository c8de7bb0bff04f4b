package domain

import "time"

// Supported technology identifiers.
const (
	TechSolar      = "solar"
	TechWind       = "wind"
	TechHydro      = "hydro"
	TechGeothermal = "geothermal"
	TechBiomass    = "biomass"
)

// Technologies lists every technology the calculator understands, in a stable
// order used by comparisons.
var Technologies = []string{TechSolar, TechWind, TechHydro, TechGeothermal, TechBiomass}

// KnownTechnology reports whether tech is one of the supported identifiers.
func KnownTechnology(tech string) bool {
	for _, t := range Technologies {
		if t == tech {
			return true
		}
	}
	return false
}

// SiteParameters describes the project site a simulation is computed for.
type SiteParameters struct {
	CapacityKW        float64 `json:"capacity_kw"`
	SolarIrradiance   float64 `json:"solar_irradiance,omitempty"`    // kWh/m²/day
	WindSpeed         float64 `json:"wind_speed,omitempty"`          // m/s annual average
	FlowRate          float64 `json:"flow_rate,omitempty"`           // m³/s, hydro only
	SystemCost        float64 `json:"system_cost"`                   // currency units
	ElectricityPrice  float64 `json:"electricity_price"`             // per kWh
	GridEmissionGrams float64 `json:"grid_emission_grams,omitempty"` // gCO₂/kWh displaced
}

// Simulation is a persisted calculator run: the inputs, the derived figures
// and the 0-100 score assigned to the technology at that site.
type Simulation struct {
	ID             string         `json:"id"`
	Owner          string         `json:"owner"`
	Technology     string         `json:"technology"`
	Site           SiteParameters `json:"site"`
	AnnualEnergyKW float64        `json:"annual_energy_kwh"`
	AnnualSavings  float64        `json:"annual_savings"`
	PaybackYears   float64        `json:"payback_years"`
	CO2OffsetTons  float64        `json:"co2_offset_tons"`
	Score          float64        `json:"score"`
	CreatedAt      time.Time      `json:"created_at"`
}

// AuthEvent is a single audit-trail entry recorded for security-relevant
// actions on the auth surface.
type AuthEvent struct {
	Username  string    `json:"username"`
	Action    string    `json:"action"` // login, register, rate_limited
	Outcome   string    `json:"outcome"`
	ClientIP  string    `json:"client_ip,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
