package algorithm

import (
	"fmt"
	"strings"

	"github.com/tmarcon/chargesim/core/model"
)

// Interface exposes the facility state scheduling algorithms read from and
// submit schedules to. It is the only boundary between an algorithm and the
// surrounding control system.
type Interface interface {
	// MaxChargingRate returns the facility-wide maximum pilot signal in A.
	MaxChargingRate() float64
	// AllowablePilotSignals returns the discrete pilot grid in ascending order.
	AllowablePilotSignals() []float64
	// ActiveEVs returns the sessions currently plugged in with unmet demand.
	ActiveEVs() []*model.EV
	// LastAppliedPilotSignals returns the pilot applied to each session at the
	// previous step.
	LastAppliedPilotSignals() map[string]float64
	// SubmitSchedules hands a freshly computed schedule back to the facility.
	SubmitSchedules(model.Schedule)
}

// Algorithm computes a forward-looking charging schedule for the active
// sessions. Implementations must respect the facility pilot grid; global
// power feasibility is not their concern.
type Algorithm interface {
	Name() string
	Schedule(active []*model.EV) model.Schedule
}

// Run executes a single scheduling pass: it pulls the active sessions from the
// facility, computes a schedule and submits it back.
func Run(a Algorithm, iface Interface) {
	iface.SubmitSchedules(a.Schedule(iface.ActiveEVs()))
}

// New resolves an algorithm by its configuration name.
func New(name string, iface Interface) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "edf", "earliest-deadline-first":
		return NewEarliestDeadlineFirst(iface), nil
	case "llf", "least-laxity-first":
		return NewLeastLaxityFirst(iface), nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q", name)
	}
}

// base caches the facility rate grid and provides the one-position ramp
// shared by the deadline-driven algorithms.
type base struct {
	iface   Interface
	maxRate float64
	grid    []float64
}

func newBase(iface Interface) base {
	return base{
		iface:   iface,
		maxRate: iface.MaxChargingRate(),
		grid:    iface.AllowablePilotSignals(),
	}
}

// gridIndex returns the position of current on the grid. A value between two
// grid entries maps to the nearest lower one, a value below the grid to -1.
func (b *base) gridIndex(current float64) int {
	idx := -1
	for i, r := range b.grid {
		if r > current {
			break
		}
		idx = i
	}
	return idx
}

// increaseRate steps one position up the pilot grid, clamped to its top.
func (b *base) increaseRate(current float64) float64 {
	i := b.gridIndex(current) + 1
	if i >= len(b.grid) {
		i = len(b.grid) - 1
	}
	return b.grid[i]
}

// decreaseRate steps one position down the pilot grid, clamped to its bottom.
func (b *base) decreaseRate(current float64) float64 {
	i := b.gridIndex(current) - 1
	if i < 0 {
		i = 0
	}
	return b.grid[i]
}

// rampSchedule builds the one-step schedule both algorithms share: the target
// session is stepped up from its last applied pilot, every other active
// session is stepped down.
func (b *base) rampSchedule(active []*model.EV, targetID string) model.Schedule {
	sched := make(model.Schedule, len(active))
	last := b.iface.LastAppliedPilotSignals()
	for _, ev := range active {
		prev := last[ev.SessionID] // zero when never scheduled
		if ev.SessionID == targetID {
			sched[ev.SessionID] = []float64{b.increaseRate(prev)}
		} else {
			sched[ev.SessionID] = []float64{b.decreaseRate(prev)}
		}
	}
	return sched
}
