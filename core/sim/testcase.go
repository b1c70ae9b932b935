package sim

import (
	"fmt"

	"github.com/tmarcon/chargesim/core/metrics"
	"github.com/tmarcon/chargesim/core/model"
)

// Facility groups the electrical constants shared by every charging session
// in a test case.
type Facility struct {
	// Voltage is the nominal AC voltage in V.
	Voltage float64
	// MaxRate is the facility-wide maximum pilot signal in A.
	MaxRate float64
	// Period is the step length in minutes.
	Period float64
	// AllowablePilots is the discrete pilot grid in ascending order.
	AllowablePilots []float64
}

// Validate checks the facility constants.
func (f Facility) Validate() error {
	if f.Voltage <= 0 {
		return fmt.Errorf("%w: voltage must be positive, got %v", model.ErrInvalidArgument, f.Voltage)
	}
	if f.Period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %v", model.ErrInvalidArgument, f.Period)
	}
	if f.MaxRate <= 0 {
		return fmt.Errorf("%w: max rate must be positive, got %v", model.ErrInvalidArgument, f.MaxRate)
	}
	if len(f.AllowablePilots) == 0 {
		return fmt.Errorf("%w: allowable pilot grid is empty", model.ErrInvalidArgument)
	}
	for i := 1; i < len(f.AllowablePilots); i++ {
		if f.AllowablePilots[i] <= f.AllowablePilots[i-1] {
			return fmt.Errorf("%w: allowable pilot grid must be strictly ascending", model.ErrInvalidArgument)
		}
	}
	return nil
}

// TestCase owns the session collection of one simulation run. It applies
// pilot signals to the sessions at each step and aggregates the resulting
// charging telemetry.
type TestCase struct {
	facility Facility
	evs      []*model.EV
	data     map[string][]model.ChargingSample
	sink     metrics.TelemetrySink
}

// NewTestCase creates a test case for the given sessions.
func NewTestCase(evs []*model.EV, facility Facility) (*TestCase, error) {
	if err := facility.Validate(); err != nil {
		return nil, err
	}
	return &TestCase{
		facility: facility,
		evs:      evs,
		data:     make(map[string][]model.ChargingSample),
		sink:     metrics.NopSink{},
	}, nil
}

// SetTelemetrySink forwards every recorded charging sample to the sink in
// addition to the in-memory charging data.
func (tc *TestCase) SetTelemetrySink(sink metrics.TelemetrySink) {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	tc.sink = sink
}

// Step applies the per-session pilot signals for one iteration. Sessions
// outside their availability window are skipped; sessions without an assigned
// pilot idle at zero.
func (tc *TestCase) Step(pilots map[string]float64, iteration int) error {
	samples := make([]model.ChargingSample, 0, len(tc.evs))
	for _, ev := range tc.evs {
		if iteration < ev.Arrival || iteration >= ev.Departure {
			continue
		}
		pilot := pilots[ev.SessionID]
		actual, err := ev.Charge(pilot, tc.facility.Voltage, tc.facility.Period)
		if err != nil {
			return fmt.Errorf("charge session %s: %w", ev.SessionID, err)
		}
		sample := model.ChargingSample{
			SessionID:   ev.SessionID,
			Iteration:   iteration,
			PilotSignal: pilot,
			ActualRate:  actual,
			SoC:         ev.Battery().SoC(),
		}
		tc.data[ev.SessionID] = append(tc.data[ev.SessionID], sample)
		samples = append(samples, sample)
	}
	if len(samples) == 0 {
		return nil
	}
	if err := tc.sink.RecordChargingSamples(samples); err != nil {
		return fmt.Errorf("record telemetry: %w", err)
	}
	return nil
}

// ActiveEVs returns the sessions plugged in at the iteration with unmet
// demand.
func (tc *TestCase) ActiveEVs(iteration int) []*model.EV {
	var active []*model.EV
	for _, ev := range tc.evs {
		if ev.Arrival <= iteration && iteration < ev.Departure && ev.RemainingDemand() > 0 {
			active = append(active, ev)
		}
	}
	return active
}

// ChargingData returns the accumulated per-session samples.
func (tc *TestCase) ChargingData() map[string][]model.ChargingSample { return tc.data }

// EVs returns all sessions of the test case.
func (tc *TestCase) EVs() []*model.EV { return tc.evs }

// Facility returns the shared facility constants.
func (tc *TestCase) Facility() Facility { return tc.facility }

// Reset restores every session and clears the charging data so the run can be
// replayed.
func (tc *TestCase) Reset() {
	for _, ev := range tc.evs {
		ev.Reset()
	}
	tc.data = make(map[string][]model.ChargingSample)
}
