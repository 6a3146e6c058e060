package system

import (
	"time"

	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/world"
)

// PersistenceSystem autosaves every online player each interval ticks.
// Snapshots are taken on the tick goroutine and written in the background.
// Phase 11 (Cleanup), after CleanupSystem.
type PersistenceSystem struct {
	world    *world.World
	interval int64
}

func NewPersistenceSystem(w *world.World, intervalTicks int) *PersistenceSystem {
	return &PersistenceSystem{world: w, interval: int64(intervalTicks)}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *PersistenceSystem) Update(_ time.Duration) {
	if s.interval <= 0 || s.world.Tick()%s.interval != 0 {
		return
	}
	s.world.Autosave()
}
