// Package sizing finds the smallest standard battery able to deliver a
// session's requested energy within its stay, together with the maximum
// initial charge from which that is still possible. It inverts the same
// two-stage dynamics the battery model integrates forward.
package sizing

import (
	"errors"
	"fmt"
	"math"

	"github.com/tmarcon/chargesim/core/model"
)

// Capacities are the standard battery sizes in kWh, ascending.
var Capacities = []float64{8, 24, 40, 60, 85, 100}

const (
	// refMaxRate is the reference pilot in A the solver assumes the
	// charger sustains.
	refMaxRate = 32.0
	// transitionSoC matches the default taper boundary of the two-stage model.
	transitionSoC = 0.8
	tolerance     = 1e-9
	maxBisections = 200
)

// ErrNoFeasibleSize is returned when no standard capacity can deliver the
// requested energy within the stay.
var ErrNoFeasibleSize = errors.New("no feasible battery size")

// BatteryCapacity returns the smallest standard capacity [kWh] and the
// maximum initial charge [kWh] from which requestedEnergy [kWh] is still
// deliverable within stayDur steps of period minutes at voltage V.
func BatteryCapacity(requestedEnergy float64, stayDur int, voltage, period float64) (capacity, initCharge float64, err error) {
	if requestedEnergy <= 0 {
		return 0, 0, fmt.Errorf("%w: requested energy must be positive, got %v", model.ErrInvalidArgument, requestedEnergy)
	}
	if stayDur <= 0 {
		return 0, 0, fmt.Errorf("%w: stay duration must be positive, got %d", model.ErrInvalidArgument, stayDur)
	}
	if voltage <= 0 {
		return 0, 0, fmt.Errorf("%w: voltage must be positive, got %v", model.ErrInvalidArgument, voltage)
	}
	if period <= 0 {
		return 0, 0, fmt.Errorf("%w: period must be positive, got %v", model.ErrInvalidArgument, period)
	}

	for _, size := range Capacities {
		if requestedEnergy > size {
			continue
		}
		initSoC, ok := maxInitSoC(requestedEnergy, float64(stayDur), size, voltage, period)
		if ok && initSoC >= 0 {
			return size, initSoC * size, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: %v kWh in %d steps", ErrNoFeasibleSize, requestedEnergy, stayDur)
}

// maxInitSoC solves for the largest starting SoC from which deltaSoC =
// requested/size is still deliverable in stay steps at the reference rate.
func maxInitSoC(requested, stay, size, voltage, period float64) (float64, bool) {
	deltaSoC := requested / size
	// Largest SoC gain per step the reference pilot can produce.
	maxDSoC := refMaxRate * voltage / 1000 / size / (60 / period)

	// If the optimal start point lies above the taper transition the answer
	// has a closed form: the exponential trajectory from initSoC must reach
	// initSoC+deltaSoC after stay steps.
	initSoC := 1 + deltaSoC/(math.Exp(maxDSoC*stay/(transitionSoC-1))-1)
	if initSoC >= transitionSoC {
		return initSoC, true
	}

	// deliverable is the SoC gain achievable in stay steps from a given start:
	// linear while below the transition, then exponential decay toward 1.
	deliverable := func(init float64) float64 {
		if stay <= (transitionSoC-init)/maxDSoC {
			return maxDSoC * stay
		}
		return 1 + math.Exp((maxDSoC*stay+init-transitionSoC)/(transitionSoC-1))*(transitionSoC-1) - init
	}

	// Reject the capacity outright when even a full-stay charge from empty
	// cannot deliver the energy.
	if deliverable(0) < deltaSoC {
		return 0, false
	}

	// deliverable is decreasing in the starting SoC, so bisect for the start
	// where it equals deltaSoC.
	lo, hi := 0.0, 1.0
	for i := 0; i < maxBisections; i++ {
		mid := (lo + hi) / 2
		val := deliverable(mid)
		if math.Abs(val-deltaSoC) < tolerance {
			return mid, true
		}
		if val > deltaSoC {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}
