package handler

import (
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/world"
)

// HandleLogout processes logout. The player leaves at the next logout
// phase in which nothing holds them in the world.
func HandleLogout(p *world.Player, _ *packet.Reader, _ *Deps) {
	p.RequestLogout()
}

// HandleIdleTimer processes idle_timer, sent by the client after a long
// stretch without input. Any user event before the idle timeout runs out
// cancels it.
func HandleIdleTimer(p *world.Player, _ *packet.Reader, _ *Deps) {
	p.RequestIdleLogout()
}

// HandleNoTimeout processes no_timeout, the client keepalive.
func HandleNoTimeout(p *world.Player, _ *packet.Reader, deps *Deps) {
	p.LastResponse = deps.World.Tick()
}
