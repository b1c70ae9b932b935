package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `facility:
  voltage: 240
  period_minutes: 5
  max_rate: 48
  allowable_pilots: [0, 16, 32, 48]
simulation:
  max_iterations: 200
  algorithm: "llf"
  seed: 7
battery:
  noise_level_kw: 0.25
sessions:
  file: "sessions.json"
metrics:
  prometheus_enabled: true
mqtt:
  enabled: false
  broker: "tcp://localhost:1883"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"voltage", cfg.Facility.Voltage, 240.0},
		{"period", cfg.Facility.PeriodMinutes, 5.0},
		{"max_rate", cfg.Facility.MaxRate, 48.0},
		{"pilots", len(cfg.Facility.AllowablePilots), 4},
		{"max_iterations", cfg.Simulation.MaxIterations, 200},
		{"algorithm", cfg.Simulation.Algorithm, "llf"},
		{"seed", cfg.Simulation.Seed, uint64(7)},
		{"noise", cfg.Battery.NoiseLevelKW, 0.25},
		{"transition default", cfg.Battery.TransitionSoC, 0.8},
		{"sessions file", cfg.Sessions.File, "sessions.json"},
		{"min energy default", cfg.Sessions.MinEnergyKWh, 0.5},
		{"max duration default", cfg.Sessions.MaxDurationSteps, 720},
		{"tz default", *cfg.Sessions.TZOffsetHours, -7},
		{"prometheus", cfg.Metrics.PrometheusEnabled, true},
		{"prom port default", cfg.Metrics.PrometheusPort, "2112"},
		{"mqtt broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt prefix default", cfg.MQTT.TopicPrefix, "chargesim/telemetry"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadDefaultsFacility(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{"sessions": {"file": "sessions.json"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Facility.Voltage != 220 || cfg.Facility.MaxRate != 32 || cfg.Facility.PeriodMinutes != 1 {
		t.Fatalf("facility defaults wrong: %+v", cfg.Facility)
	}
	if cfg.Simulation.MaxIterations != 1000 || cfg.Simulation.Algorithm != "edf" {
		t.Fatalf("simulation defaults wrong: %+v", cfg.Simulation)
	}
}

func TestLoadKeepsExplicitZeroTZOffset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `sessions:
  file: "sessions.json"
  tz_offset_hours: 0
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if got := *cfg.Sessions.TZOffsetHours; got != 0 {
		t.Fatalf("explicit UTC offset overwritten to %d", got)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}

	path = filepath.Join(dir, "config.yaml")
	data := `facility:
  voltage: -5
sessions:
  file: "sessions.json"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for negative voltage")
	}

	data = `simulation:
  max_iterations: 10
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing sessions file")
	}
}
