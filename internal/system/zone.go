package system

import (
	"time"

	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/world"
)

// ZoneSystem advances loc and obj lifecycles. Phase 8 (Zone).
type ZoneSystem struct {
	world *world.World
}

func NewZoneSystem(w *world.World) *ZoneSystem { return &ZoneSystem{world: w} }

func (s *ZoneSystem) Phase() coresys.Phase { return coresys.PhaseZone }

func (s *ZoneSystem) Update(_ time.Duration) { s.world.ProcessZones() }

// InfoSystem recentres build areas after this tick's movement so output
// sees the final zone window. Phase 9 (Info).
type InfoSystem struct {
	world *world.World
}

func NewInfoSystem(w *world.World) *InfoSystem { return &InfoSystem{world: w} }

func (s *InfoSystem) Phase() coresys.Phase { return coresys.PhaseInfo }

func (s *InfoSystem) Update(_ time.Duration) {
	for _, p := range s.world.Players.All() {
		s.world.UpdateBuildArea(p)
	}
}
