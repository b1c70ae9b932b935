package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmarcon/chargesim/core/model"
)

func TestSinkPublishesPerSessionTopics(t *testing.T) {
	pub := NewMockPublisher()
	sink := NewSink(pub, "chargesim/telemetry")

	samples := []model.ChargingSample{
		{SessionID: "s1", Iteration: 3, PilotSignal: 16, ActualRate: 15.5, SoC: 0.42},
		{SessionID: "s2", Iteration: 3, PilotSignal: 8, ActualRate: 8, SoC: 0.9},
	}
	require.NoError(t, sink.RecordChargingSamples(samples))

	msgs := pub.Messages["chargesim/telemetry/s1"]
	require.Len(t, msgs, 1)
	var decoded model.ChargingSample
	require.NoError(t, json.Unmarshal(msgs[0], &decoded))
	assert.Equal(t, samples[0], decoded)
	assert.Len(t, pub.Messages["chargesim/telemetry/s2"], 1)
}

func TestSinkPropagatesPublishErrors(t *testing.T) {
	pub := NewMockPublisher()
	pub.Fail = true
	sink := NewSink(pub, "chargesim/telemetry")
	err := sink.RecordChargingSamples([]model.ChargingSample{{SessionID: "s1"}})
	require.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	assert.Equal(t, "chargesim/telemetry", cfg.TopicPrefix)
	assert.NotEmpty(t, cfg.ClientID)
}
