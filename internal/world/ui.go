package world

import (
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/script"
)

// Selection is the inventory context of the player's latest held item,
// button or use action. Handlers read it from ctx.Player.
type Selection struct {
	Obj        int
	Slot       int
	Com        int
	UseObj     int
	UseSlot    int
	TargetSlot int
}

// Resume continues a dialog once the client answers it. ctx.LastInt holds
// the choice or the typed number.
type Resume func(ctx *ScriptContext)

// OpenChatModal shows a chat box dialog and waits for the answer.
func (p *Player) OpenChatModal(com int, fn Resume) {
	p.modalChat = com
	p.resume = fn
	p.Write(packet.IfOpenChat{Component: com})
}

// Waiting reports whether a dialog is waiting for an answer.
func (p *Player) Waiting() bool { return p.resume != nil }

// ResumeDialog hands the client's answer to the waiting dialog. The dialog
// may open another one from inside fn.
func (w *World) ResumeDialog(p *Player, value int) bool {
	fn := p.resume
	if fn == nil {
		return false
	}
	p.resume = nil
	p.modalChat = -1
	p.LastInt = value
	fn(&ScriptContext{World: w, Trigger: script.Label, Self: p, Player: p, Target: p.Target, LastInt: value})
	if p.resume == nil && !p.ContainsModal() {
		p.refreshModalClose = true
	}
	return true
}

// RunHeld fires an op_held style trigger keyed by the held obj.
func (w *World) RunHeld(p *Player, t script.Trigger, obj int) bool {
	category := -1
	if ot := w.Stores.Objs.Get(obj); ot != nil {
		category = ot.Category
	}
	return w.runPlayer(p, t, obj, category, nil)
}

// RunComponent fires a button trigger keyed by interface component.
func (w *World) RunComponent(p *Player, t script.Trigger, com int) bool {
	return w.runPlayer(p, t, com, -1, nil)
}

// RunCheat passes an unrecognised :: command to content.
func (w *World) RunCheat(p *Player, command string) bool {
	h, ok := w.Scripts.Get(script.ClientCheat, -1, -1)
	if !ok {
		return false
	}
	h(&ScriptContext{World: w, Trigger: script.ClientCheat, Self: p, Player: p, LastInt: p.LastInt, Text: command})
	return true
}
