package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidArgument reports a battery parameter or charge request outside its
// physical domain.
var ErrInvalidArgument = errors.New("invalid argument")

// Charger is the battery-facing contract an EV charges through.
type Charger interface {
	// Charge applies a pilot signal [A] at the given AC voltage [V] for
	// period minutes and returns the realized charging current [A].
	Charge(pilot, voltage, period float64) (float64, error)
	// Reset restores the battery to its construction charge.
	Reset()
	// ResetTo restores the battery to the given charge [kWh].
	ResetTo(charge float64) error
	SoC() float64
	CurrentCharge() float64
	Capacity() float64
	ChargingPower() float64
	MaxChargingPower() float64
}

// Battery models an ideal battery and its management system. Charging power is
// only limited by the pilot signal, the battery's maximum power and the
// remaining capacity. It serves as a coarse baseline for the tapering
// TwoStageBattery.
type Battery struct {
	capacity      float64 // kWh
	charge        float64 // kWh
	initCharge    float64 // kWh
	maxPower      float64 // kW
	chargingPower float64 // kW, realized during the last period
}

// NewBattery creates an ideal battery. capacity and maxPower are in kWh and kW
// respectively; initCharge must not exceed capacity.
func NewBattery(capacity, initCharge, maxPower float64) (*Battery, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %v", ErrInvalidArgument, capacity)
	}
	if maxPower <= 0 {
		return nil, fmt.Errorf("%w: max power must be positive, got %v", ErrInvalidArgument, maxPower)
	}
	if initCharge < 0 || initCharge > capacity {
		return nil, fmt.Errorf("%w: initial charge %v outside [0, %v]", ErrInvalidArgument, initCharge, capacity)
	}
	return &Battery{capacity: capacity, charge: initCharge, initCharge: initCharge, maxPower: maxPower}, nil
}

func checkChargeArgs(voltage, period float64) error {
	if voltage <= 0 {
		return fmt.Errorf("%w: voltage must be positive, got %v", ErrInvalidArgument, voltage)
	}
	if period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %v", ErrInvalidArgument, period)
	}
	return nil
}

// Charge draws the minimum of the pilot-implied power, the battery's maximum
// power and the power that would exactly fill the remaining capacity within
// the period.
func (b *Battery) Charge(pilot, voltage, period float64) (float64, error) {
	if err := checkChargeArgs(voltage, period); err != nil {
		return 0, err
	}
	if pilot < 0 {
		return 0, fmt.Errorf("%w: pilot must be non-negative, got %v", ErrInvalidArgument, pilot)
	}

	// Power which would fill the battery in period minutes.
	rateToFull := (b.capacity - b.charge) / (period / 60)

	power := math.Min(pilot*voltage/1000, math.Min(b.maxPower, rateToFull))
	b.charge += power * (period / 60)
	b.chargingPower = power
	return power * 1000 / voltage, nil
}

// Reset restores the battery to its construction charge.
func (b *Battery) Reset() {
	b.charge = b.initCharge
	b.chargingPower = 0
}

// ResetTo restores the battery to the given charge in kWh.
func (b *Battery) ResetTo(charge float64) error {
	if charge < 0 || charge > b.capacity {
		return fmt.Errorf("%w: charge %v outside [0, %v]", ErrInvalidArgument, charge, b.capacity)
	}
	b.charge = charge
	b.chargingPower = 0
	return nil
}

// SoC returns the state of charge as a fraction of capacity.
func (b *Battery) SoC() float64 { return b.charge / b.capacity }

// CurrentCharge returns the stored energy in kWh.
func (b *Battery) CurrentCharge() float64 { return b.charge }

// Capacity returns the battery capacity in kWh.
func (b *Battery) Capacity() float64 { return b.capacity }

// ChargingPower returns the average power drawn during the last period in kW.
func (b *Battery) ChargingPower() float64 { return b.chargingPower }

// MaxChargingPower returns the maximum charging power in kW.
func (b *Battery) MaxChargingPower() float64 { return b.maxPower }

// TwoStageBattery extends Battery with a piecewise model of battery dynamics.
// Below transitionSoC the battery charges at the commanded power (constant
// current region). Above it the deliverable power decays linearly to zero as
// the state of charge approaches 1, which integrates to an exponential SoC
// trajectory over the period.
//
// Model reference: https://www.sciencedirect.com/science/article/pii/S0378775316317396
type TwoStageBattery struct {
	Battery
	noiseLevel    float64 // kW, std-dev of the measurement noise
	transitionSoC float64
	noise         distuv.Normal
}

// NewTwoStageBattery creates a tapering battery. noiseLevel is the standard
// deviation in kW of a zero-mean Gaussian perturbation of the charging power;
// zero disables noise. transitionSoC must lie in (0, 1). The seed makes noise
// reproducible.
func NewTwoStageBattery(capacity, initCharge, maxPower, noiseLevel, transitionSoC float64, seed uint64) (*TwoStageBattery, error) {
	base, err := NewBattery(capacity, initCharge, maxPower)
	if err != nil {
		return nil, err
	}
	if noiseLevel < 0 {
		return nil, fmt.Errorf("%w: noise level must be non-negative, got %v", ErrInvalidArgument, noiseLevel)
	}
	if transitionSoC <= 0 || transitionSoC >= 1 {
		return nil, fmt.Errorf("%w: transition SoC %v outside (0, 1)", ErrInvalidArgument, transitionSoC)
	}
	return &TwoStageBattery{
		Battery:       *base,
		noiseLevel:    noiseLevel,
		transitionSoC: transitionSoC,
		noise:         distuv.Normal{Mu: 0, Sigma: noiseLevel, Src: rand.NewPCG(seed, seed)},
	}, nil
}

// TransitionSoC returns the SoC separating the constant-current and taper
// charging regimes.
func (b *TwoStageBattery) TransitionSoC() float64 { return b.transitionSoC }

// Charge advances the state of charge using the closed-form solution of the
// two-stage model. The requested pilot implies an effective transition point;
// the SoC advances linearly while the full step stays below it and decays
// exponentially toward 1 otherwise. Noise, when configured, is applied as a
// downward-only bias so it never pushes the battery past a hard limit.
func (b *TwoStageBattery) Charge(pilot, voltage, period float64) (float64, error) {
	if err := checkChargeArgs(voltage, period); err != nil {
		return 0, err
	}
	if pilot < 0 {
		return 0, fmt.Errorf("%w: pilot must be non-negative, got %v", ErrInvalidArgument, pilot)
	}

	// SoC gained per period at the pilot rate, capped by the battery's own
	// maximum power.
	pilotDSoC := pilot * voltage / 1000 / b.capacity / (60 / period)
	maxDSoC := b.maxPower / b.capacity / (60 / period)
	if pilotDSoC > maxDSoC {
		pilotDSoC = maxDSoC
	}
	if pilotDSoC == 0 {
		b.chargingPower = 0
		return 0, nil
	}

	// Transition point implied by the requested pilot. A pilot below the
	// battery maximum prolongs the constant-current region.
	pilotTransition := b.transitionSoC + (pilotDSoC-maxDSoC)/maxDSoC*(b.transitionSoC-1)
	if pilotTransition < b.transitionSoC || pilotTransition > 1 {
		return 0, fmt.Errorf("%w: effective transition SoC %v outside [%v, 1]",
			ErrInvalidArgument, pilotTransition, b.transitionSoC)
	}

	soc := b.SoC()
	var next float64
	if soc < pilotTransition {
		if (pilotTransition-soc)/pilotDSoC >= 1 {
			next = soc + pilotDSoC
		} else {
			next = 1 + math.Exp((pilotDSoC+soc-pilotTransition)/(pilotTransition-1))*(pilotTransition-1)
		}
	} else {
		next = 1 + math.Exp(pilotDSoC/(pilotTransition-1))*(soc-1)
	}
	if b.noiseLevel > 0 {
		scaled := b.noise.Rand() * (period / 60) / b.capacity
		next -= math.Abs(scaled)
	}
	if next < 0 {
		next = 0
	}

	dSoC := next - soc
	b.charge = next * b.capacity
	// Average power over the period.
	b.chargingPower = dSoC * b.capacity / (period / 60)
	return b.chargingPower * 1000 / voltage, nil
}
