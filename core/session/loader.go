// Package session turns historical charging records into the EV collection a
// test case runs against. Timestamps become step indices at the configured
// period, energy requests become battery-backed sessions sized by the
// capacity solver.
package session

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tmarcon/chargesim/core/model"
	"github.com/tmarcon/chargesim/core/sizing"
)

// Record is one historical charging session as stored on disk.
type Record struct {
	Arrival   time.Time `json:"arrival"`
	Departure time.Time `json:"departure"`
	EnergyKWh float64   `json:"energy_kwh"`
	UserID    string    `json:"user_id"`
}

// LoaderConfig controls the record-to-session conversion.
type LoaderConfig struct {
	// Start and End bound the accepted arrival window after the timezone
	// offset is applied. Zero values disable the bound.
	Start time.Time
	End   time.Time
	// TZOffset shifts record timestamps before windowing.
	TZOffset time.Duration
	// MinEnergyKWh drops sessions requesting less than this.
	MinEnergyKWh float64
	// MaxDuration caps each stay, in steps.
	MaxDuration int

	Voltage float64 // V
	MaxRate float64 // A
	Period  float64 // minutes

	// Battery parameters applied to every generated session.
	NoiseLevelKW  float64
	TransitionSoC float64
	Seed          uint64
}

// DefaultLoaderConfig mirrors the conventional facility constants: 220 V,
// 32 A, 1 minute steps, a 12 hour stay cap and a Pacific-time offset.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		TZOffset:      -7 * time.Hour,
		MinEnergyKWh:  0.5,
		MaxDuration:   720,
		Voltage:       220,
		MaxRate:       32,
		Period:        1,
		TransitionSoC: 0.8,
	}
}

func (c LoaderConfig) validate() error {
	if c.Voltage <= 0 {
		return fmt.Errorf("%w: voltage must be positive, got %v", model.ErrInvalidArgument, c.Voltage)
	}
	if c.Period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %v", model.ErrInvalidArgument, c.Period)
	}
	if c.MaxRate <= 0 {
		return fmt.Errorf("%w: max rate must be positive, got %v", model.ErrInvalidArgument, c.MaxRate)
	}
	if c.MaxDuration <= 0 {
		return fmt.Errorf("%w: max duration must be positive, got %d", model.ErrInvalidArgument, c.MaxDuration)
	}
	return nil
}

// BuildEVs converts the records into battery-backed sessions. Arrivals are
// normalized so the earliest session starts at step 0; each session gets the
// smallest standard battery able to deliver its request, starting from the
// highest feasible initial charge.
func BuildEVs(records []Record, cfg LoaderConfig) ([]*model.EV, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	type staged struct {
		arrival, departure int
		requested          float64
		energyKWh          float64
		sessionID          string
	}

	var evs []staged
	minArrival := 0
	for _, r := range records {
		arrival := r.Arrival.Add(cfg.TZOffset)
		if !cfg.Start.IsZero() && arrival.Before(cfg.Start) {
			continue
		}
		if !cfg.End.IsZero() && arrival.After(cfg.End) {
			continue
		}
		if r.EnergyKWh < cfg.MinEnergyKWh {
			continue
		}

		arrivalStep := int(math.Floor(float64(arrival.Unix()) / 60 / cfg.Period))
		departureStep := int(math.Ceil(float64(r.Departure.Add(cfg.TZOffset).Unix()) / 60 / cfg.Period))
		// Requested energy in current-steps at the facility voltage.
		requested := r.EnergyKWh * (60 / cfg.Period) * 1000 / cfg.Voltage
		// Extend stays too short to ever satisfy the request at max rate.
		if float64(departureStep-arrivalStep) < requested/cfg.MaxRate {
			departureStep = arrivalStep + int(math.Ceil(requested/cfg.MaxRate))
		}

		id := r.UserID
		if id == "" {
			id = uuid.NewString()
		}
		if len(evs) == 0 || arrivalStep < minArrival {
			minArrival = arrivalStep
		}
		evs = append(evs, staged{
			arrival:   arrivalStep,
			departure: departureStep,
			requested: requested,
			energyKWh: r.EnergyKWh,
			sessionID: id,
		})
	}

	out := make([]*model.EV, 0, len(evs))
	for i, s := range evs {
		s.arrival -= minArrival
		s.departure -= minArrival
		if s.departure-s.arrival > cfg.MaxDuration {
			s.departure = s.arrival + cfg.MaxDuration
		}

		capacity, initCharge, err := sizing.BatteryCapacity(s.energyKWh, s.departure-s.arrival, cfg.Voltage, cfg.Period)
		if err != nil {
			return nil, fmt.Errorf("size battery for session %s: %w", s.sessionID, err)
		}
		// Offset the seed per session so noise streams are independent while
		// the run as a whole stays reproducible.
		battery, err := model.NewTwoStageBattery(capacity, initCharge, cfg.MaxRate*cfg.Voltage/1000,
			cfg.NoiseLevelKW, cfg.TransitionSoC, cfg.Seed+uint64(i))
		if err != nil {
			return nil, fmt.Errorf("battery for session %s: %w", s.sessionID, err)
		}
		ev, err := model.NewEV(s.sessionID, s.arrival, s.departure, s.requested, cfg.MaxRate, battery)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// LoadFile reads a JSON array of records and builds the session collection.
func LoadFile(path string, cfg LoaderConfig) ([]*model.EV, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return BuildEVs(records, cfg)
}
