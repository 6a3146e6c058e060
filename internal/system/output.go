package system

import (
	"time"

	"github.com/tickworld/server/internal/core/event"
	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/world"
)

// OutputSystem writes and flushes every player's tick payload. A player
// whose client cannot be written to is logged out. Phase 10 (ClientOut).
type OutputSystem struct {
	world *world.World
	bus   *event.Bus
}

func NewOutputSystem(w *world.World, bus *event.Bus) *OutputSystem {
	return &OutputSystem{world: w, bus: bus}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseClientOut }

func (s *OutputSystem) Update(_ time.Duration) {
	for _, p := range s.world.Players.All() {
		var werr error
		if err := world.SafeRun(func() { werr = s.world.WriteOutput(p) }); err != nil {
			werr = err
		}
		if werr == nil {
			continue
		}
		s.world.ForceLogout(p, werr)
		event.Emit(s.bus, event.PlayerLoggedOut{Tick: s.world.Tick(), Username: p.Username, Forced: true})
	}
}
