package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseWorld      Phase = iota // 1: delayed spawns, respawns, hunt scans
	PhaseClientIn                // 2: drain inbound message queues
	PhaseNpcEvents               // 3: npc spawn/despawn triggers
	PhaseNpc                     // 4: npc ai + movement
	PhasePlayer                  // 5: player queues, timers, interaction, movement
	PhaseLogout                  // 6: timeouts, logout triggers, saves
	PhaseLogin                   // 7: admit new players
	PhaseZone                    // 8: loc/obj lifecycle, shared zone state
	PhaseInfo                    // 9: build areas
	PhaseClientOut               // 10: encode and flush output
	PhaseCleanup                 // 11: reset per-tick state, restock shops
)

var phaseNames = [...]string{
	"WORLD", "CLIENT_IN", "NPC_EVENTS", "NPC", "PLAYER", "LOGOUT",
	"LOGIN", "ZONE", "INFO", "CLIENT_OUT", "CLEANUP",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "UNKNOWN"
	}
	return phaseNames[p]
}

// Phases lists every phase in run order.
func Phases() []Phase {
	out := make([]Phase, len(phaseNames))
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

// System is one unit of per-tick work.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
