package metrics

import "github.com/tmarcon/chargesim/core/model"

// MultiSink fans charging samples out to multiple sinks.
type MultiSink struct {
	Sinks []TelemetrySink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...TelemetrySink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordChargingSamples forwards the samples to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordChargingSamples(samples []model.ChargingSample) error {
	for _, s := range m.Sinks {
		if err := s.RecordChargingSamples(samples); err != nil {
			return err
		}
	}
	return nil
}
