package handler

import (
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/script"
	"github.com/tickworld/server/internal/world"
)

// HandleIfButton processes if_button, a click on an interface component.
func HandleIfButton(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.IfButton
	if !decode(p, r, &m, deps) {
		return
	}
	p.Selection = world.Selection{Obj: -1, Slot: -1, Com: m.Component, UseObj: -1, UseSlot: -1, TargetSlot: -1}
	deps.World.RunComponent(p, script.IfButton, m.Component)
}

// HandleCloseModal processes close_modal. Content may react to the main
// interface closing.
func HandleCloseModal(p *world.Player, _ *packet.Reader, deps *Deps) {
	if com := p.ModalMain(); com != -1 {
		deps.World.RunComponent(p, script.IfClose, com)
	}
	p.CloseModal()
}

// HandleResumePauseButton processes resume_pause_button, the "click here to
// continue" or option choice in a chat dialog.
func HandleResumePauseButton(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.ResumePauseButton
	if !decode(p, r, &m, deps) {
		return
	}
	deps.World.ResumeDialog(p, m.Choice)
}

// HandleResumePCountDialog processes resume_p_count_dialog, a number typed
// into a count prompt.
func HandleResumePCountDialog(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.ResumePCountDialog
	if !decode(p, r, &m, deps) || m.Input < 0 {
		return
	}
	deps.World.ResumeDialog(p, m.Input)
}
