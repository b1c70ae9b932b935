package metrics

import (
	"sync"

	"github.com/tmarcon/chargesim/core/model"
)

// MemorySink accumulates charging samples in memory, keyed by session id. It
// backs post-run analysis and tests.
type MemorySink struct {
	mu        sync.Mutex
	bySession map[string][]model.ChargingSample
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{bySession: make(map[string][]model.ChargingSample)}
}

// RecordChargingSamples appends the samples to their sessions.
func (s *MemorySink) RecordChargingSamples(samples []model.ChargingSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sample := range samples {
		s.bySession[sample.SessionID] = append(s.bySession[sample.SessionID], sample)
	}
	return nil
}

// Samples returns the recorded samples for one session in step order.
func (s *MemorySink) Samples(sessionID string) []model.ChargingSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChargingSample, len(s.bySession[sessionID]))
	copy(out, s.bySession[sessionID])
	return out
}

// DeliveredEnergy sums the realized charging current over all recorded steps
// of one session, in current-steps.
func (s *MemorySink) DeliveredEnergy(sessionID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, sample := range s.bySession[sessionID] {
		total += sample.ActualRate
	}
	return total
}

// Sessions returns the ids of all sessions with recorded samples.
func (s *MemorySink) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.bySession))
	for id := range s.bySession {
		ids = append(ids, id)
	}
	return ids
}
