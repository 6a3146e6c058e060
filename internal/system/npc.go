package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/tickworld/server/internal/core/event"
	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/world"
)

// NpcEventSystem fires queued spawn and despawn triggers. Phase 3 (NpcEvents).
type NpcEventSystem struct {
	world *world.World
}

func NewNpcEventSystem(w *world.World) *NpcEventSystem {
	return &NpcEventSystem{world: w}
}

func (s *NpcEventSystem) Phase() coresys.Phase { return coresys.PhaseNpcEvents }

func (s *NpcEventSystem) Update(_ time.Duration) { s.world.ProcessNpcEvents() }

// NpcSystem runs every npc's turn. An npc whose turn panics is taken out
// of the world; the rest carry on. Phase 4 (Npc).
type NpcSystem struct {
	world *world.World
	bus   *event.Bus
	log   *zap.Logger
}

func NewNpcSystem(w *world.World, bus *event.Bus, log *zap.Logger) *NpcSystem {
	return &NpcSystem{world: w, bus: bus, log: log}
}

func (s *NpcSystem) Phase() coresys.Phase { return coresys.PhaseNpc }

func (s *NpcSystem) Update(_ time.Duration) {
	for nid, n := range s.world.Npcs.All() {
		err := world.SafeRun(func() { s.world.ProcessNpc(n) })
		if err == nil {
			continue
		}
		s.log.Error("npc turn failed, removing npc",
			zap.Int("nid", nid),
			zap.Int("type", n.Type),
			zap.Error(err),
		)
		s.world.DiscardNpc(n)
		event.Emit(s.bus, event.EntityFailed{Tick: s.world.Tick(), Kind: "npc", ID: nid})
	}
}
