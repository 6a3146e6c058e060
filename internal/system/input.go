package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/world"
)

// InputSystem pulls each player's inbound messages off the transport and
// dispatches them through the message registry. User events and client
// housekeeping messages have separate per-tick limits; the excess waits
// for the next tick. Phase 2 (ClientIn).
type InputSystem struct {
	world       *world.World
	registry    *packet.Registry
	userLimit   int
	clientLimit int
	log         *zap.Logger
}

func NewInputSystem(w *world.World, registry *packet.Registry, userLimit, clientLimit int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		world:       w,
		registry:    registry,
		userLimit:   userLimit,
		clientLimit: clientLimit,
		log:         log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseClientIn }

func (s *InputSystem) Update(_ time.Duration) {
	for _, p := range s.world.Players.All() {
		s.world.ReceiveClient(p)
		p.DecodeIn(s.userLimit, s.clientLimit, func(r *packet.Reader) {
			// 只有玩家操作才重置閒置計時，心跳類封包不算。
			if packet.IsUserEvent(r.Type()) {
				p.MarkInput()
			}
			if err := s.registry.DispatchReader(p, packet.StateInWorld, r); err != nil {
				s.log.Debug("message dispatch failed",
					zap.String("username", p.Username),
					zap.String("type", r.Type()),
					zap.Error(err),
				)
			}
		})
	}
}
