package config

import "fmt"

// FacilityConfig describes the shared electrical constants of the charging
// facility.
type FacilityConfig struct {
	// Voltage is the nominal AC voltage in V.
	Voltage float64 `json:"voltage"`
	// PeriodMinutes is the simulation step length.
	PeriodMinutes float64 `json:"period_minutes"`
	// MaxRate is the facility-wide maximum pilot signal in A.
	MaxRate float64 `json:"max_rate"`
	// AllowablePilots is the discrete pilot grid in ascending order.
	AllowablePilots []float64 `json:"allowable_pilots"`
}

// SetDefaults applies sane defaults.
func (c *FacilityConfig) SetDefaults() {
	if c.Voltage == 0 {
		c.Voltage = 220
	}
	if c.PeriodMinutes == 0 {
		c.PeriodMinutes = 1
	}
	if c.MaxRate == 0 {
		c.MaxRate = 32
	}
	if len(c.AllowablePilots) == 0 {
		c.AllowablePilots = []float64{0, 8, 16, 24, 32}
	}
}

// Validate checks mandatory fields.
func (c FacilityConfig) Validate() error {
	if c.Voltage <= 0 {
		return fmt.Errorf("facility: voltage must be positive")
	}
	if c.PeriodMinutes <= 0 {
		return fmt.Errorf("facility: period_minutes must be positive")
	}
	if c.MaxRate <= 0 {
		return fmt.Errorf("facility: max_rate must be positive")
	}
	for i := 1; i < len(c.AllowablePilots); i++ {
		if c.AllowablePilots[i] <= c.AllowablePilots[i-1] {
			return fmt.Errorf("facility: allowable_pilots must be strictly ascending")
		}
	}
	return nil
}

// SimulationConfig controls the simulator loop.
type SimulationConfig struct {
	MaxIterations int `json:"max_iterations"`
	// Algorithm selects the scheduling strategy: "edf" or "llf".
	Algorithm string `json:"algorithm"`
	// Seed makes battery noise reproducible.
	Seed uint64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *SimulationConfig) SetDefaults() {
	if c.MaxIterations == 0 {
		c.MaxIterations = 1000
	}
	if c.Algorithm == "" {
		c.Algorithm = "edf"
	}
}

// Validate checks mandatory fields.
func (c SimulationConfig) Validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("simulation: max_iterations must be positive")
	}
	return nil
}

// BatteryConfig parameterizes the two-stage battery assigned to each session.
type BatteryConfig struct {
	// NoiseLevelKW is the std-dev of the charging power noise; zero disables it.
	NoiseLevelKW float64 `json:"noise_level_kw"`
	// TransitionSoC separates the constant-current and taper regimes.
	TransitionSoC float64 `json:"transition_soc"`
}

// SetDefaults applies sane defaults.
func (c *BatteryConfig) SetDefaults() {
	if c.TransitionSoC == 0 {
		c.TransitionSoC = 0.8
	}
}

// Validate checks mandatory fields.
func (c BatteryConfig) Validate() error {
	if c.NoiseLevelKW < 0 {
		return fmt.Errorf("battery: noise_level_kw must be non-negative")
	}
	if c.TransitionSoC <= 0 || c.TransitionSoC >= 1 {
		return fmt.Errorf("battery: transition_soc must be in (0, 1)")
	}
	return nil
}

// SessionsConfig points at the historical session data and its filtering.
type SessionsConfig struct {
	// File is a JSON array of session records.
	File string `json:"file"`
	// MinEnergyKWh drops sessions requesting less than this.
	MinEnergyKWh float64 `json:"min_energy_kwh"`
	// MaxDurationSteps caps each stay.
	MaxDurationSteps int `json:"max_duration_steps"`
	// TZOffsetHours shifts record timestamps before windowing. A pointer so
	// an explicit 0 (UTC) is distinguishable from an unset value.
	TZOffsetHours *int `json:"tz_offset_hours"`
}

// SetDefaults applies sane defaults.
func (c *SessionsConfig) SetDefaults() {
	if c.MinEnergyKWh == 0 {
		c.MinEnergyKWh = 0.5
	}
	if c.MaxDurationSteps == 0 {
		c.MaxDurationSteps = 720
	}
	if c.TZOffsetHours == nil {
		offset := -7
		c.TZOffsetHours = &offset
	}
}

// Validate checks mandatory fields.
func (c SessionsConfig) Validate() error {
	if c.File == "" {
		return fmt.Errorf("sessions: file is required")
	}
	if c.MaxDurationSteps <= 0 {
		return fmt.Errorf("sessions: max_duration_steps must be positive")
	}
	return nil
}
