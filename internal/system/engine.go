package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/metrics"
	"github.com/tickworld/server/internal/world"
)

// Engine drives the world at a fixed tick rate. Each tick advances the
// world clock and runs every registered phase in order on one goroutine.
type Engine struct {
	world   *world.World
	runner  *coresys.Runner
	rate    time.Duration
	metrics *metrics.Metrics
	log     *zap.Logger

	// ShutdownTicks is the countdown given to players when Run's context
	// is cancelled.
	ShutdownTicks int
}

func NewEngine(w *world.World, runner *coresys.Runner, rate time.Duration, m *metrics.Metrics, log *zap.Logger) *Engine {
	return &Engine{
		world:   w,
		runner:  runner,
		rate:    rate,
		metrics: m,
		log:     log,
	}
}

// SetRate changes the tick period. Run picks it up after the current tick;
// call it from the tick goroutine, as admin commands do.
func (e *Engine) SetRate(rate time.Duration) { e.rate = rate }

func (e *Engine) Rate() time.Duration { return e.rate }

// Step runs a single tick and returns how long it took.
func (e *Engine) Step() time.Duration {
	start := time.Now()
	tick := e.world.AdvanceTick()
	e.runner.Tick(e.rate)
	elapsed := time.Since(start)

	if elapsed > e.rate {
		e.log.Warn("tick overrun",
			zap.Int64("tick", tick),
			zap.Duration("elapsed", elapsed),
			zap.Int("players", e.world.Players.Count()),
			zap.Int("npcs", e.world.Npcs.Count()),
		)
	}
	if e.metrics != nil {
		e.metrics.ObserveTick(elapsed, e.rate)
		e.metrics.Players.Set(float64(e.world.Players.Count()))
		e.metrics.Npcs.Set(float64(e.world.Npcs.Count()))
	}
	return elapsed
}

// Run ticks until the world has shut down and every player has left.
// Cancelling ctx starts the shutdown countdown; the loop keeps ticking so
// players are logged out and saved normally.
func (e *Engine) Run(ctx context.Context) error {
	period := e.rate
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	e.log.Info("game loop started", zap.Duration("tick_rate", e.rate))
	done := ctx.Done()
	for {
		select {
		case <-ticker.C:
			e.Step()
			if e.world.ShutdownComplete() {
				// 等待背景自動存檔寫完再結束，避免行程退出時遺失存檔。
				e.world.SaveAll()
				e.log.Info("game loop stopped", zap.Int64("tick", e.world.Tick()))
				return nil
			}
			if e.rate != period {
				period = e.rate
				ticker.Reset(period)
				e.log.Info("tick rate changed", zap.Duration("tick_rate", period))
			}
		case <-done:
			done = nil
			if !e.world.ShuttingDown() {
				e.world.ScheduleShutdown(e.ShutdownTicks)
			}
		}
	}
}
