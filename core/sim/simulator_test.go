package sim

import (
	"context"
	"testing"

	"github.com/tmarcon/chargesim/core/algorithm"
	"github.com/tmarcon/chargesim/core/model"
	"github.com/tmarcon/chargesim/infra/logger"
)

// fixedAlgorithm always emits the same schedule and counts invocations.
type fixedAlgorithm struct {
	sched model.Schedule
	calls int
}

func (a *fixedAlgorithm) Name() string { return "fixed" }

func (a *fixedAlgorithm) Schedule([]*model.EV) model.Schedule {
	a.calls++
	return a.sched
}

func newSimulator(t *testing.T, evs []*model.EV, maxIterations int) *Simulator {
	t.Helper()
	tc, err := NewTestCase(evs, testFacility())
	if err != nil {
		t.Fatalf("test case: %v", err)
	}
	s, err := NewSimulator(tc, maxIterations, logger.NopLogger{})
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	return s
}

func TestRunRequiresAlgorithm(t *testing.T) {
	s := newSimulator(t, nil, 10)
	if err := s.Run(context.Background()); err != ErrNoAlgorithm {
		t.Fatalf("expected ErrNoAlgorithm, got %v", err)
	}
}

func TestMixedScheduleLengthsForceRescheduling(t *testing.T) {
	a := testEV(t, "a", 0, 100, 10000)
	b := testEV(t, "b", 0, 100, 10000)
	s := newSimulator(t, []*model.EV{a, b}, 5)
	alg := &fixedAlgorithm{sched: model.Schedule{"a": {5, 5, 5}, "b": {5}}}
	s.UseAlgorithm(alg)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	// Horizon is the minimum schedule length, 1, so the scheduler runs on
	// every one of the 5 steps.
	if alg.calls != 5 {
		t.Fatalf("scheduler invoked %d times, want 5", alg.calls)
	}
}

func TestUniformScheduleLengthsSpanTheirHorizon(t *testing.T) {
	a := testEV(t, "a", 0, 100, 10000)
	s := newSimulator(t, []*model.EV{a}, 6)
	alg := &fixedAlgorithm{sched: model.Schedule{"a": {5, 5, 5}}}
	s.UseAlgorithm(alg)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	// Horizon 3 over 6 iterations: re-scheduled at steps 0 and 3.
	if alg.calls != 2 {
		t.Fatalf("scheduler invoked %d times, want 2", alg.calls)
	}
}

func TestEmptyScheduleReschedulesEveryStep(t *testing.T) {
	s := newSimulator(t, nil, 4)
	alg := &fixedAlgorithm{sched: model.Schedule{}}
	s.UseAlgorithm(alg)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if alg.calls != 4 {
		t.Fatalf("scheduler invoked %d times, want 4", alg.calls)
	}
}

func TestCurrentPilotsHoldsLastEntry(t *testing.T) {
	s := newSimulator(t, nil, 10)
	s.schedules = model.Schedule{"a": {8, 16}}
	s.lastUpdate = 0
	s.iteration = 5

	pilots := s.currentPilots()
	if got := pilots["a"]; got != 16 {
		t.Fatalf("pilot %v, want last entry 16", got)
	}
}

func TestCanceledContextStopsRun(t *testing.T) {
	s := newSimulator(t, nil, 1000)
	s.UseAlgorithm(&fixedAlgorithm{sched: model.Schedule{}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEndToEndEarliestDeadlineFirst(t *testing.T) {
	// Two identical sessions, one departing much earlier. EDF must feed the
	// earlier one first; neither may exceed its request.
	early := testEV(t, "early", 0, 50, 5454)
	late := testEV(t, "late", 0, 100, 5454)
	s := newSimulator(t, []*model.EV{early, late}, 100)
	alg, err := algorithm.New("edf", s)
	if err != nil {
		t.Fatalf("algorithm: %v", err)
	}
	s.UseAlgorithm(alg)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, ev := range []*model.EV{early, late} {
		if ev.EnergyDelivered() > ev.RequestedEnergy {
			t.Fatalf("session %s delivered %v above request %v",
				ev.SessionID, ev.EnergyDelivered(), ev.RequestedEnergy)
		}
	}

	var earlyHead, lateHead float64
	for _, sample := range s.ChargingData()["early"] {
		if sample.Iteration < 50 {
			earlyHead += sample.ActualRate
		}
	}
	for _, sample := range s.ChargingData()["late"] {
		if sample.Iteration < 50 {
			lateHead += sample.ActualRate
		}
	}
	if earlyHead <= lateHead {
		t.Fatalf("earlier deadline accumulated %v, later %v; want earlier > later",
			earlyHead, lateHead)
	}
}
