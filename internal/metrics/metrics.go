// Package metrics exposes tick and population counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "tickworld"

// Metrics holds the server's collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	PhaseDuration   *prometheus.HistogramVec
	TickDuration    prometheus.Histogram
	TickOverruns    prometheus.Counter
	Players         prometheus.Gauge
	Npcs            prometheus.Gauge
	Logins          prometheus.Counter
	Logouts         *prometheus.CounterVec
	LoginRejections *prometheus.CounterVec
	EntityFailures  *prometheus.CounterVec
	Trades          *prometheus.CounterVec
	Sessions        prometheus.Gauge
}

func New() *Metrics {
	tickBuckets := []float64{.001, .005, .01, .025, .05, .1, .2, .3, .45, .6, 1, 2}
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Time spent in each tick phase.",
			Buckets:   tickBuckets,
		}, []string{"phase"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time spent on a whole tick.",
			Buckets:   tickBuckets,
		}),
		TickOverruns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_overruns_total",
			Help:      "Ticks that took longer than the tick rate.",
		}),
		Players: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_online",
			Help:      "Players in the world.",
		}),
		Npcs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "npcs_active",
			Help:      "Npcs holding a slot.",
		}),
		Logins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Players admitted to the world.",
		}),
		Logouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Players that left the world.",
		}, []string{"forced"}),
		LoginRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_rejections_total",
			Help:      "Logins refused, by reason.",
		}, []string{"reason"}),
		EntityFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entity_failures_total",
			Help:      "Entity turns that panicked.",
		}, []string{"kind"}),
		Trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shop_trades_total",
			Help:      "Shop trades, by direction.",
		}, []string{"direction"}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_open",
			Help:      "Open client connections.",
		}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PhaseDuration, m.TickDuration, m.TickOverruns,
		m.Players, m.Npcs, m.Logins, m.Logouts, m.LoginRejections,
		m.EntityFailures, m.Trades, m.Sessions,
	)
	return m
}

// ObservePhase records one phase's duration. The phase label is the phase
// name, or CYCLE for a whole tick.
func (m *Metrics) ObservePhase(phase string, elapsed time.Duration) {
	m.PhaseDuration.WithLabelValues(phase).Observe(elapsed.Seconds())
}

// ObserveTick records a tick and counts it as an overrun when it took
// longer than rate.
func (m *Metrics) ObserveTick(elapsed, rate time.Duration) {
	m.TickDuration.Observe(elapsed.Seconds())
	m.ObservePhase("CYCLE", elapsed)
	if elapsed > rate {
		m.TickOverruns.Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes the registry on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr, path string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", zap.String("addr", addr), zap.String("path", path))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
