package system

import (
	"time"

	"github.com/tickworld/server/internal/core/event"
	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/world"
)

// EventDispatchSystem delivers last tick's events. It is registered first
// so subscribers run before any world work. Phase 1 (World).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseWorld }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// WorldSystem starts the tick: shutdown countdown, delayed drops, npc
// despawn and respawn timers and hunt scans. Phase 1 (World).
type WorldSystem struct {
	world *world.World
}

func NewWorldSystem(w *world.World) *WorldSystem {
	return &WorldSystem{world: w}
}

func (s *WorldSystem) Phase() coresys.Phase { return coresys.PhaseWorld }

func (s *WorldSystem) Update(_ time.Duration) {
	s.world.ProcessShutdown()
	s.world.ProcessDelayedObjs()
	s.world.ProcessNpcLifecycles()
	s.world.ProcessHunts()
}
