package system

import (
	"time"

	"github.com/tickworld/server/internal/core/event"
	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/world"
)

// LogoutSystem applies timeouts and logout requests. Phase 6 (Logout).
type LogoutSystem struct {
	world *world.World
	bus   *event.Bus
}

func NewLogoutSystem(w *world.World, bus *event.Bus) *LogoutSystem {
	return &LogoutSystem{world: w, bus: bus}
}

func (s *LogoutSystem) Phase() coresys.Phase { return coresys.PhaseLogout }

func (s *LogoutSystem) Update(_ time.Duration) {
	for _, p := range s.world.Players.All() {
		if s.world.ProcessLogoutChecks(p) {
			event.Emit(s.bus, event.PlayerLoggedOut{
				Tick:     s.world.Tick(),
				Username: p.Username,
				Forced:   s.world.ShuttingDown(),
			})
		}
	}
}
