package handler

import (
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/script"
	"github.com/tickworld/server/internal/world"
)

// held validates that the client still holds obj in slot and records the
// selection for the trigger about to run.
func held(p *world.Player, obj, slot, com int) bool {
	if !p.Inv(world.InvBackpack).HasAt(slot, obj) {
		return false
	}
	p.Selection = world.Selection{Obj: obj, Slot: slot, Com: com, UseObj: -1, UseSlot: -1, TargetSlot: -1}
	return true
}

func runHeld(p *world.Player, t script.Trigger, obj int, deps *Deps) {
	p.CloseModal()
	if !p.CanAccess() {
		return
	}
	if !deps.World.RunHeld(p, t, obj) {
		p.MessageGame("Nothing interesting happens.")
	}
}

// HandleOpHeld processes op_held, an option on a held obj.
func HandleOpHeld(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpHeld
	if !decode(p, r, &m, deps) || !validOp(m.Op) {
		return
	}
	if !held(p, m.ObjID, m.Slot, m.Component) {
		return
	}
	runHeld(p, script.OpHeld1+script.Trigger(m.Op-1), m.ObjID, deps)
}

// HandleOpHeldU processes op_held_u, one held obj used on another.
func HandleOpHeldU(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpHeld
	if !decode(p, r, &m, deps) {
		return
	}
	if m.Slot == m.TargetSlot || !held(p, m.ObjID, m.Slot, m.Component) {
		return
	}
	if !p.Inv(world.InvBackpack).HasAt(m.TargetSlot, m.TargetObjID) {
		return
	}
	p.Selection.UseObj = m.TargetObjID
	p.Selection.UseSlot = m.TargetSlot
	runHeld(p, script.OpHeldU, m.ObjID, deps)
}

// HandleOpHeldT processes op_held_t, a spell cast on a held obj.
func HandleOpHeldT(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpHeld
	if !decode(p, r, &m, deps) {
		return
	}
	if !held(p, m.ObjID, m.Slot, m.SpellComponent) {
		return
	}
	runHeld(p, script.OpHeldT, m.ObjID, deps)
}

// HandleInvButton processes inv_button, an option on an obj shown in an
// interface inventory such as a shop.
func HandleInvButton(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.InvButton
	if !decode(p, r, &m, deps) || !validOp(m.Op) {
		return
	}
	p.Selection = world.Selection{Obj: m.ObjID, Slot: m.Slot, Com: m.Component, UseObj: -1, UseSlot: -1, TargetSlot: -1}
	deps.World.RunComponent(p, script.InvButton1+script.Trigger(m.Op-1), m.Component)
}

// HandleInvButtonD processes inv_button_d, a drag between two slots. With
// no content handler for the component the backpack slots are swapped.
func HandleInvButtonD(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.InvButtonD
	if !decode(p, r, &m, deps) {
		return
	}
	p.Selection = world.Selection{Obj: -1, Slot: m.FromSlot, Com: m.Component, UseObj: -1, UseSlot: -1, TargetSlot: m.ToSlot}
	if deps.World.RunComponent(p, script.InvButtonD, m.Component) {
		return
	}
	if p.Delayed {
		return
	}
	bp := p.Inv(world.InvBackpack)
	if !bp.ValidSlot(m.FromSlot) || !bp.ValidSlot(m.ToSlot) || m.FromSlot == m.ToSlot {
		return
	}
	bp.Swap(m.FromSlot, m.ToSlot)
}
