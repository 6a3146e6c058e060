package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/tickworld/server/internal/config"
	"github.com/tickworld/server/internal/core/event"
	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/metrics"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/world"
)

// Deps carries what the phase systems are built from. Metrics may be nil.
type Deps struct {
	World    *world.World
	Registry *packet.Registry
	Bus      *event.Bus
	Metrics  *metrics.Metrics
	Network  config.NetworkConfig
	Log      *zap.Logger
}

// RegisterAll registers one system per phase, in tick order.
func RegisterAll(r *coresys.Runner, d Deps) {
	w := d.World
	r.Register(NewEventDispatchSystem(d.Bus))
	r.Register(NewWorldSystem(w))
	r.Register(NewInputSystem(w, d.Registry, d.Network.UserEventsPerTick, d.Network.ClientEventsPerTick, d.Log))
	r.Register(NewNpcEventSystem(w))
	r.Register(NewNpcSystem(w, d.Bus, d.Log))
	r.Register(NewPlayerSystem(w, d.Bus, d.Log))
	r.Register(NewLogoutSystem(w, d.Bus))
	r.Register(NewLoginSystem(w, d.Bus))
	r.Register(NewZoneSystem(w))
	r.Register(NewInfoSystem(w))
	r.Register(NewOutputSystem(w, d.Bus))
	r.Register(NewCleanupSystem(w))
	r.Register(NewPersistenceSystem(w, w.Config().AutosaveTicks))

	if d.Metrics != nil {
		m := d.Metrics
		r.Observe(func(phase coresys.Phase, elapsed time.Duration) {
			m.ObservePhase(phase.String(), elapsed)
		})
		SubscribeMetrics(d.Bus, m)
	}
}

// SubscribeMetrics counts lifecycle events.
func SubscribeMetrics(bus *event.Bus, m *metrics.Metrics) {
	event.Subscribe(bus, func(event.PlayerLoggedIn) { m.Logins.Inc() })
	event.Subscribe(bus, func(ev event.PlayerLoggedOut) {
		forced := "false"
		if ev.Forced {
			forced = "true"
		}
		m.Logouts.WithLabelValues(forced).Inc()
	})
	event.Subscribe(bus, func(ev event.LoginRejected) { m.LoginRejections.WithLabelValues(ev.Reason).Inc() })
	event.Subscribe(bus, func(ev event.EntityFailed) { m.EntityFailures.WithLabelValues(ev.Kind).Inc() })
}

// CountTrades wraps a wealth recorder so shop trades are also counted.
// next may be nil.
func CountTrades(next world.WealthRecorder, m *metrics.Metrics) world.WealthRecorder {
	return tradeCounter{next: next, m: m}
}

type tradeCounter struct {
	next world.WealthRecorder
	m    *metrics.Metrics
}

func (t tradeCounter) RecordWealth(ev world.WealthEvent) {
	dir := "sell"
	if ev.Buy {
		dir = "buy"
	}
	t.m.Trades.WithLabelValues(dir).Inc()
	if t.next != nil {
		t.next.RecordWealth(ev)
	}
}
