package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tmarcon/chargesim/core/model"
)

// PromSink exposes charging telemetry as Prometheus metrics.
type PromSink struct {
	energy *prometheus.CounterVec
	pilot  *prometheus.GaugeVec
	soc    *prometheus.GaugeVec
}

// NewPromSink registers charging metrics on the provided Prometheus
// registerer. If reg is nil, the default registerer is used. If the
// collectors are already registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	energy := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "charging_delivered_current_total",
		Help: "Cumulative realized charging current per session in ampere-steps",
	}, []string{"session_id"})
	pilot := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "charging_pilot_signal_amps",
		Help: "Pilot signal last commanded to the session",
	}, []string{"session_id"})
	soc := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "charging_state_of_charge_ratio",
		Help: "Battery state of charge of the session",
	}, []string{"session_id"})

	if err := reg.Register(energy); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			energy = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(pilot); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			pilot = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(soc); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			soc = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{energy: energy, pilot: pilot, soc: soc}, nil
}

// RecordChargingSamples updates the per-session collectors. Noisy batteries
// can report a negative realized rate for a step; the counter only absorbs
// the non-negative part since Prometheus counters must not decrease.
func (s *PromSink) RecordChargingSamples(samples []model.ChargingSample) error {
	for _, sample := range samples {
		if sample.ActualRate > 0 {
			s.energy.WithLabelValues(sample.SessionID).Add(sample.ActualRate)
		}
		s.pilot.WithLabelValues(sample.SessionID).Set(sample.PilotSignal)
		s.soc.WithLabelValues(sample.SessionID).Set(sample.SoC)
	}
	return nil
}

// StartPromServer starts an HTTP server exposing Prometheus metrics on the
// given address. The server runs until the provided context is canceled. A
// dedicated ServeMux is used to avoid interfering with other handlers.
func StartPromServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
