package app

import (
	"context"
	"fmt"
	"time"

	"github.com/tmarcon/chargesim/config"
	"github.com/tmarcon/chargesim/core/algorithm"
	coremetrics "github.com/tmarcon/chargesim/core/metrics"
	"github.com/tmarcon/chargesim/core/session"
	"github.com/tmarcon/chargesim/core/sim"
	"github.com/tmarcon/chargesim/infra/logger"
	"github.com/tmarcon/chargesim/infra/metrics"
	"github.com/tmarcon/chargesim/infra/mqtt"
)

// Service wires a configuration into a runnable simulation: sessions, test
// case, algorithm, simulator and telemetry sinks.
type Service struct {
	sim     *sim.Simulator
	tc      *sim.TestCase
	memory  *coremetrics.MemorySink
	log     logger.Logger
	cfg     *config.Config
	closers []func()
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	loaderCfg := session.LoaderConfig{
		TZOffset:      time.Duration(*cfg.Sessions.TZOffsetHours) * time.Hour,
		MinEnergyKWh:  cfg.Sessions.MinEnergyKWh,
		MaxDuration:   cfg.Sessions.MaxDurationSteps,
		Voltage:       cfg.Facility.Voltage,
		MaxRate:       cfg.Facility.MaxRate,
		Period:        cfg.Facility.PeriodMinutes,
		NoiseLevelKW:  cfg.Battery.NoiseLevelKW,
		TransitionSoC: cfg.Battery.TransitionSoC,
		Seed:          cfg.Simulation.Seed,
	}
	evs, err := session.LoadFile(cfg.Sessions.File, loaderCfg)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	logg.Infof("loaded %d sessions from %s", len(evs), cfg.Sessions.File)

	tc, err := sim.NewTestCase(evs, sim.Facility{
		Voltage:         cfg.Facility.Voltage,
		MaxRate:         cfg.Facility.MaxRate,
		Period:          cfg.Facility.PeriodMinutes,
		AllowablePilots: cfg.Facility.AllowablePilots,
	})
	if err != nil {
		return nil, fmt.Errorf("test case: %w", err)
	}

	svc := &Service{
		tc:     tc,
		memory: coremetrics.NewMemorySink(),
		log:    logg,
		cfg:    cfg,
	}

	sinks := []coremetrics.TelemetrySink{svc.memory}
	if cfg.Metrics.PrometheusEnabled {
		promSink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, promSink)
	}
	if cfg.Metrics.InfluxEnabled {
		influxSink := metrics.NewInfluxSinkWithFallback(cfg.Metrics)
		if closer, ok := influxSink.(*metrics.InfluxSink); ok {
			svc.closers = append(svc.closers, closer.Close)
		}
		sinks = append(sinks, influxSink)
	}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.closers = append(svc.closers, pub.Close)
		sinks = append(sinks, mqtt.NewSink(pub, cfg.MQTT.TopicPrefix))
	}
	tc.SetTelemetrySink(coremetrics.NewMultiSink(sinks...))

	simulator, err := sim.NewSimulator(tc, cfg.Simulation.MaxIterations, logger.New("simulator"))
	if err != nil {
		return nil, err
	}
	alg, err := algorithm.New(cfg.Simulation.Algorithm, simulator)
	if err != nil {
		return nil, err
	}
	simulator.UseAlgorithm(alg)
	svc.sim = simulator
	return svc, nil
}

// Run executes the simulation and logs a per-session delivery summary.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			addr := ":" + s.cfg.Metrics.PrometheusPort
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	if err := s.sim.Run(ctx); err != nil {
		return err
	}

	for _, ev := range s.tc.EVs() {
		s.log.Infof("session %s: delivered %.1f of %.1f requested (%.0f%%)",
			ev.SessionID, ev.EnergyDelivered(), ev.RequestedEnergy,
			100*ev.EnergyDelivered()/ev.RequestedEnergy)
	}
	return nil
}

// Telemetry returns the in-memory telemetry recorded during the run.
func (s *Service) Telemetry() *coremetrics.MemorySink { return s.memory }

// Close releases external sinks.
func (s *Service) Close() error {
	for _, c := range s.closers {
		c()
	}
	return nil
}
