package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmarcon/chargesim/core/algorithm"
	"github.com/tmarcon/chargesim/core/logger"
	"github.com/tmarcon/chargesim/core/model"
)

// ErrNoAlgorithm is returned by Run when no scheduling algorithm was bound.
var ErrNoAlgorithm = errors.New("no scheduling algorithm bound")

// Simulator drives a test case through discrete time. At each step it either
// re-invokes the scheduling algorithm or reuses the current schedule, then
// applies the per-session pilots through the test case. It implements
// algorithm.Interface so algorithms can observe the run they are scheduling.
type Simulator struct {
	tc            *TestCase
	alg           algorithm.Algorithm
	maxIterations int
	log           logger.Logger

	iteration   int
	lastUpdate  int
	schedules   model.Schedule
	lastApplied map[string]float64
}

// NewSimulator creates a simulator that will run the test case for
// maxIterations steps. The algorithm is bound afterwards with UseAlgorithm
// since algorithms need the simulator as their facility interface.
func NewSimulator(tc *TestCase, maxIterations int, log logger.Logger) (*Simulator, error) {
	if maxIterations <= 0 {
		return nil, fmt.Errorf("%w: max iterations must be positive, got %d", model.ErrInvalidArgument, maxIterations)
	}
	return &Simulator{
		tc:            tc,
		maxIterations: maxIterations,
		log:           log,
		schedules:     model.Schedule{},
		lastApplied:   make(map[string]float64),
	}, nil
}

// UseAlgorithm binds the scheduling algorithm driving this run.
func (s *Simulator) UseAlgorithm(alg algorithm.Algorithm) { s.alg = alg }

// Run executes the control loop until maxIterations steps have been applied.
// The run does not stop early when every session finishes charging. ctx
// cancellation aborts between steps.
func (s *Simulator) Run(ctx context.Context) error {
	if s.alg == nil {
		return ErrNoAlgorithm
	}
	s.log.Infof("starting simulation: %d sessions, %d iterations, algorithm %s",
		len(s.tc.EVs()), s.maxIterations, s.alg.Name())

	horizon := 0
	for s.iteration < s.maxIterations {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if s.iteration >= s.lastUpdate+horizon {
			algorithm.Run(s.alg, s)
			s.lastUpdate = s.iteration
			horizon = s.schedules.Horizon()
			s.log.Debugw("schedule updated", map[string]any{
				"iteration": s.iteration,
				"horizon":   horizon,
				"sessions":  len(s.schedules),
			})
		}

		pilots := s.currentPilots()
		if err := s.tc.Step(pilots, s.iteration); err != nil {
			return fmt.Errorf("step %d: %w", s.iteration, err)
		}
		s.lastApplied = pilots
		s.iteration++
	}
	s.log.Infof("simulation finished after %d iterations", s.iteration)
	return nil
}

// currentPilots indexes each session's schedule at the offset since the last
// schedule update. Offsets past the end of a list hold the last known pilot.
func (s *Simulator) currentPilots() map[string]float64 {
	pilots := make(map[string]float64, len(s.schedules))
	offset := s.iteration - s.lastUpdate
	for id, list := range s.schedules {
		if len(list) == 0 {
			continue
		}
		i := offset
		if i >= len(list) {
			i = len(list) - 1
		}
		pilots[id] = list[i]
	}
	return pilots
}

// Iteration returns the current step counter.
func (s *Simulator) Iteration() int { return s.iteration }

// ChargingData returns the telemetry accumulated by the test case.
func (s *Simulator) ChargingData() map[string][]model.ChargingSample { return s.tc.ChargingData() }

// MaxChargingRate implements algorithm.Interface.
func (s *Simulator) MaxChargingRate() float64 { return s.tc.Facility().MaxRate }

// AllowablePilotSignals implements algorithm.Interface.
func (s *Simulator) AllowablePilotSignals() []float64 { return s.tc.Facility().AllowablePilots }

// ActiveEVs implements algorithm.Interface.
func (s *Simulator) ActiveEVs() []*model.EV { return s.tc.ActiveEVs(s.iteration) }

// LastAppliedPilotSignals implements algorithm.Interface.
func (s *Simulator) LastAppliedPilotSignals() map[string]float64 {
	out := make(map[string]float64, len(s.lastApplied))
	for id, pilot := range s.lastApplied {
		out[id] = pilot
	}
	return out
}

// SubmitSchedules implements algorithm.Interface.
func (s *Simulator) SubmitSchedules(sched model.Schedule) {
	if sched == nil {
		sched = model.Schedule{}
	}
	s.schedules = sched
}
