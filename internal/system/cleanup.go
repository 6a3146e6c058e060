package system

import (
	"time"

	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/world"
)

// CleanupSystem resets per-tick entity and zone state and restocks shops.
// Phase 11 (Cleanup).
type CleanupSystem struct {
	world *world.World
}

func NewCleanupSystem(w *world.World) *CleanupSystem {
	return &CleanupSystem{world: w}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	for _, p := range s.world.Players.All() {
		s.world.CleanupPlayer(p)
	}
	for _, n := range s.world.Npcs.All() {
		s.world.CleanupNpc(n)
	}
	s.world.CleanupShops()
	s.world.ResetZones()
	s.world.RestockShops()
}
