package model

import "fmt"

// EV represents a charging session: one vehicle plugged in between two step
// indices with an energy request. Requested and delivered energy are expressed
// in current-steps [A·step], the unit produced by the session loader.
type EV struct {
	SessionID       string
	Arrival         int
	Departure       int
	RequestedEnergy float64
	MaxRate         float64

	energyDelivered float64
	battery         Charger
}

// NewEV creates a session backed by the given battery.
func NewEV(sessionID string, arrival, departure int, requestedEnergy, maxRate float64, battery Charger) (*EV, error) {
	if battery == nil {
		return nil, fmt.Errorf("%w: session %s has no battery", ErrInvalidArgument, sessionID)
	}
	if departure <= arrival {
		return nil, fmt.Errorf("%w: session %s departs at step %d before arriving at step %d",
			ErrInvalidArgument, sessionID, departure, arrival)
	}
	return &EV{
		SessionID:       sessionID,
		Arrival:         arrival,
		Departure:       departure,
		RequestedEnergy: requestedEnergy,
		MaxRate:         maxRate,
		battery:         battery,
	}, nil
}

// Charge forwards the pilot signal to the battery and accumulates the
// delivered energy. It returns the realized charging current in A.
func (e *EV) Charge(pilot, voltage, period float64) (float64, error) {
	actual, err := e.battery.Charge(pilot, voltage, period)
	if err != nil {
		return 0, err
	}
	e.energyDelivered += actual
	return actual, nil
}

// RemainingDemand returns the requested energy not yet delivered.
func (e *EV) RemainingDemand() float64 { return e.RequestedEnergy - e.energyDelivered }

// EnergyDelivered returns the cumulative delivered energy in current-steps.
func (e *EV) EnergyDelivered() float64 { return e.energyDelivered }

// Battery returns the charger owned by this session.
func (e *EV) Battery() Charger { return e.battery }

// Reset clears the delivered energy and restores the battery to its initial
// charge so the session can be replayed.
func (e *EV) Reset() {
	e.energyDelivered = 0
	e.battery.Reset()
}
