package model

// Schedule maps a session id to the pilot signals [A] planned for the coming
// steps, in temporal order.
type Schedule map[string][]float64

// Horizon returns the number of steps the schedule stays valid: the minimum
// pilot list length across sessions. An empty schedule has horizon 0, which
// forces re-scheduling on every step.
func (s Schedule) Horizon() int {
	horizon := 0
	first := true
	for _, pilots := range s {
		if first || len(pilots) < horizon {
			horizon = len(pilots)
			first = false
		}
	}
	return horizon
}

// ChargingSample is one telemetry record: what was commanded and what the
// battery actually drew at one step of one session.
type ChargingSample struct {
	SessionID   string  `json:"session_id"`
	Iteration   int     `json:"iteration"`
	PilotSignal float64 `json:"pilot_signal"`
	ActualRate  float64 `json:"actual_rate"`
	SoC         float64 `json:"soc"`
}
