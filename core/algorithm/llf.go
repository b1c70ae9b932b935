package algorithm

import "github.com/tmarcon/chargesim/core/model"

// LeastLaxityFirst prioritizes the active session with the least slack, where
// slack is the remaining energy demand divided by the facility maximum rate:
// the number of steps of full-rate charging still needed.
type LeastLaxityFirst struct {
	base
}

// NewLeastLaxityFirst binds the algorithm to a facility interface.
func NewLeastLaxityFirst(iface Interface) *LeastLaxityFirst {
	return &LeastLaxityFirst{base: newBase(iface)}
}

func (a *LeastLaxityFirst) Name() string { return "llf" }

// Schedule emits a one-step schedule favoring the session under the most
// deadline pressure. Ties keep the first session encountered.
func (a *LeastLaxityFirst) Schedule(active []*model.EV) model.Schedule {
	if len(active) == 0 {
		return model.Schedule{}
	}
	target := active[0]
	least := a.slack(target)
	for _, ev := range active[1:] {
		if s := a.slack(ev); s < least {
			least = s
			target = ev
		}
	}
	return a.rampSchedule(active, target.SessionID)
}

func (a *LeastLaxityFirst) slack(ev *model.EV) float64 {
	return ev.RemainingDemand() / a.maxRate
}
