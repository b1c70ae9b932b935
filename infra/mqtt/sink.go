package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/tmarcon/chargesim/core/model"
)

// Sink adapts a Publisher into a telemetry sink: every charging sample is
// published as JSON to <prefix>/<session_id>.
type Sink struct {
	pub    Publisher
	prefix string
}

// NewSink creates a telemetry sink over the publisher.
func NewSink(pub Publisher, prefix string) *Sink {
	return &Sink{pub: pub, prefix: prefix}
}

// RecordChargingSamples publishes each sample to its session topic.
func (s *Sink) RecordChargingSamples(samples []model.ChargingSample) error {
	for _, sample := range samples {
		payload, err := json.Marshal(sample)
		if err != nil {
			return fmt.Errorf("encode sample: %w", err)
		}
		topic := fmt.Sprintf("%s/%s", s.prefix, sample.SessionID)
		if err := s.pub.Publish(topic, payload); err != nil {
			return err
		}
	}
	return nil
}
