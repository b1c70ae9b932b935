package algorithm

import "github.com/tmarcon/chargesim/core/model"

// EarliestDeadlineFirst prioritizes the active session with the closest
// departure: its pilot is stepped up one grid position while every other
// session is stepped down.
type EarliestDeadlineFirst struct {
	base
}

// NewEarliestDeadlineFirst binds the algorithm to a facility interface.
func NewEarliestDeadlineFirst(iface Interface) *EarliestDeadlineFirst {
	return &EarliestDeadlineFirst{base: newBase(iface)}
}

func (a *EarliestDeadlineFirst) Name() string { return "edf" }

// Schedule emits a one-step schedule favoring the earliest-departing session.
// Ties keep the first session encountered.
func (a *EarliestDeadlineFirst) Schedule(active []*model.EV) model.Schedule {
	if len(active) == 0 {
		return model.Schedule{}
	}
	earliest := active[0]
	for _, ev := range active[1:] {
		if ev.Departure < earliest.Departure {
			earliest = ev
		}
	}
	return a.rampSchedule(active, earliest.SessionID)
}
