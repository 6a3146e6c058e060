package handler

import (
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/world"
)

// maxClickDistance bounds how far from the player a move click may land.
const maxClickDistance = 104

// HandleMoveClick processes move_click: drop whatever the player was doing
// and route to the clicked tile.
func HandleMoveClick(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.MoveClick
	if !decode(p, r, &m, deps) {
		return
	}
	if abs(m.X-p.X) > maxClickDistance || abs(m.Z-p.Z) > maxClickDistance {
		return
	}

	p.ClearInteraction()
	p.CloseModal()
	p.SetRunInput(m.CtrlRun)
	p.PathToMoveClick(m.X, m.Z)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
