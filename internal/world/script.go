package world

import (
	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/script"
)

// ScriptContext is what a content handler sees when it runs. Exactly one of
// Player and Npc is set for entity triggers; world-level triggers leave both
// nil.
type ScriptContext struct {
	World   *World
	Trigger script.Trigger
	Self    entity.Target
	Player  *Player
	Npc     *Npc
	Target  entity.Target
	Args    []int
	LastInt int
	Text    string
}

// Scripts is the handler registry type the world dispatches into.
type Scripts = script.Registry[*ScriptContext]

func NewScripts() *Scripts { return script.NewRegistry[*ScriptContext]() }

// runPlayer resolves and calls a player trigger. It reports whether a
// handler ran.
func (w *World) runPlayer(p *Player, t script.Trigger, typeID, category int, target entity.Target, args ...int) bool {
	h, ok := w.Scripts.Get(t, typeID, category)
	if !ok {
		return false
	}
	h(&ScriptContext{World: w, Trigger: t, Self: p, Player: p, Target: target, Args: args, LastInt: p.LastInt})
	return true
}

func (w *World) runNpc(n *Npc, t script.Trigger, typeID, category int, target entity.Target, args ...int) bool {
	h, ok := w.Scripts.Get(t, typeID, category)
	if !ok {
		return false
	}
	h(&ScriptContext{World: w, Trigger: t, Self: n, Npc: n, Target: target, Args: args, LastInt: n.LastInt})
	return true
}

// RunGlobal calls a trigger that has no entity, such as a world event.
func (w *World) RunGlobal(t script.Trigger, typeID int, args ...int) bool {
	h, ok := w.Scripts.Get(t, typeID, -1)
	if !ok {
		return false
	}
	h(&ScriptContext{World: w, Trigger: t, Args: args, LastInt: -1})
	return true
}

// HasHandler reports whether a trigger would resolve for typeID.
func (w *World) HasHandler(t script.Trigger, typeID, category int) bool {
	_, ok := w.Scripts.Get(t, typeID, category)
	return ok
}
