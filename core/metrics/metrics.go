package metrics

import "github.com/tmarcon/chargesim/core/model"

// TelemetrySink records per-step charging samples for observability purposes.
type TelemetrySink interface {
	RecordChargingSamples(samples []model.ChargingSample) error
}

// NopSink implements TelemetrySink with no-op methods.
type NopSink struct{}

func (NopSink) RecordChargingSamples([]model.ChargingSample) error { return nil }
