package system

import (
	"errors"
	"time"

	"github.com/tickworld/server/internal/core/event"
	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/world"
)

// LoginSystem admits the logins queued since last tick, in arrival order.
// Phase 7 (Login).
type LoginSystem struct {
	world *world.World
	bus   *event.Bus
}

func NewLoginSystem(w *world.World, bus *event.Bus) *LoginSystem {
	return &LoginSystem{world: w, bus: bus}
}

func (s *LoginSystem) Phase() coresys.Phase { return coresys.PhaseLogin }

func (s *LoginSystem) Update(_ time.Duration) {
	for _, req := range s.world.TakeLogins() {
		p, err := s.world.Login(req)
		if err != nil {
			event.Emit(s.bus, event.LoginRejected{Tick: s.world.Tick(), Username: req.Username, Reason: rejectReason(err)})
			continue
		}
		addr := ""
		if req.Client != nil {
			addr = req.Client.RemoteAddr()
		}
		event.Emit(s.bus, event.PlayerLoggedIn{
			Tick:       s.world.Tick(),
			Pid:        p.Index,
			Username:   p.Username,
			RemoteAddr: addr,
		})
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, world.ErrWorldFull):
		return "world_full"
	case errors.Is(err, world.ErrAlreadyOnline):
		return "already_online"
	case errors.Is(err, world.ErrShuttingDown):
		return "shutting_down"
	}
	return "other"
}
