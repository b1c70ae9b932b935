package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmarcon/chargesim/config"
	"github.com/tmarcon/chargesim/core/session"
)

func writeSessions(t *testing.T, records []session.Record) string {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sessions.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestServiceRunsSimulation(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	path := writeSessions(t, []session.Record{
		{Arrival: base, Departure: base.Add(6 * time.Hour), EnergyKWh: 10, UserID: "veh1"},
		{Arrival: base.Add(30 * time.Minute), Departure: base.Add(8 * time.Hour), EnergyKWh: 15, UserID: "veh2"},
	})

	cfg := &config.Config{}
	cfg.Sessions.File = path
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, svc.Close())
	}()

	require.NoError(t, svc.Run(context.Background()))

	mem := svc.Telemetry()
	assert.ElementsMatch(t, []string{"veh1", "veh2"}, mem.Sessions())
	assert.Greater(t, mem.DeliveredEnergy("veh1"), 0.0)
	assert.Greater(t, mem.DeliveredEnergy("veh2"), 0.0)
}

func TestServiceRejectsUnknownAlgorithm(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	path := writeSessions(t, []session.Record{
		{Arrival: base, Departure: base.Add(6 * time.Hour), EnergyKWh: 10, UserID: "veh1"},
	})

	cfg := &config.Config{}
	cfg.Sessions.File = path
	cfg.SetDefaults()
	cfg.Simulation.Algorithm = "round-robin"

	_, err := New(cfg)
	require.Error(t, err)
}
