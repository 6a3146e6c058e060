package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/tickworld/server/internal/core/event"
	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/world"
)

// PlayerSystem runs every player's queues, timers, interaction and
// movement. A player whose turn panics is logged out. Phase 5 (Player).
type PlayerSystem struct {
	world *world.World
	bus   *event.Bus
	log   *zap.Logger
}

func NewPlayerSystem(w *world.World, bus *event.Bus, log *zap.Logger) *PlayerSystem {
	return &PlayerSystem{world: w, bus: bus, log: log}
}

func (s *PlayerSystem) Phase() coresys.Phase { return coresys.PhasePlayer }

func (s *PlayerSystem) Update(_ time.Duration) {
	for pid, p := range s.world.Players.All() {
		err := world.SafeRun(func() { s.world.ProcessPlayer(p) })
		if err == nil {
			continue
		}
		s.log.Error("player turn failed", zap.Int("pid", pid), zap.String("username", p.Username), zap.Error(err))
		s.world.ForceLogout(p, err)
		event.Emit(s.bus, event.EntityFailed{Tick: s.world.Tick(), Kind: "player", ID: pid})
		event.Emit(s.bus, event.PlayerLoggedOut{Tick: s.world.Tick(), Username: p.Username, Forced: true})
	}
}
