package handler

import (
	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/world"
)

// validOp reports whether op is one of the five numbered interaction ops.
func validOp(op int) bool { return op >= 1 && op <= 5 }

// interact replaces the player's current action with a new interaction.
// The target is reached and triggered during the player's turn.
func interact(p *world.Player, t entity.Target, op, com int) {
	p.ClearInteraction()
	p.CloseModal()
	p.SetInteraction(entity.InteractionEngine, t, op, com)
}

// useObj validates the backpack obj named by a _u message and records it.
func useObj(p *world.Player, obj, slot, com int) bool {
	if !p.Inv(world.InvBackpack).HasAt(slot, obj) {
		return false
	}
	p.Selection = world.Selection{Obj: obj, Slot: slot, Com: com, UseObj: obj, UseSlot: slot, TargetSlot: -1}
	return true
}

func npcTarget(p *world.Player, nid int, deps *Deps) *world.Npc {
	n, ok := deps.World.Npcs.Get(nid)
	if !ok || !n.IsActive() || n.Level != p.Level {
		return nil
	}
	if !p.Area().KnowsNpc(nid) {
		return nil
	}
	return n
}

func playerTarget(p *world.Player, pid int, deps *Deps) *world.Player {
	other, ok := deps.World.Players.Get(pid)
	if !ok || other == p || other.Level != p.Level {
		return nil
	}
	if !p.Area().KnowsPlayer(pid) {
		return nil
	}
	return other
}

func locTarget(p *world.Player, m *packet.OpTile, deps *Deps) *entity.Loc {
	return deps.World.GetLoc(p.Level, m.X, m.Z, m.ID)
}

func objTarget(p *world.Player, m *packet.OpTile, deps *Deps) *entity.Obj {
	return deps.World.GetObj(p.Level, m.X, m.Z, m.ID, p.Hash64())
}

// HandleOpNpc processes op_npc.
func HandleOpNpc(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpEntity
	if !decode(p, r, &m, deps) || !validOp(m.Op) {
		return
	}
	if n := npcTarget(p, m.ID, deps); n != nil {
		interact(p, n, m.Op-1, -1)
	}
}

// HandleOpNpcU processes op_npc_u, an obj used on an npc.
func HandleOpNpcU(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpEntity
	if !decode(p, r, &m, deps) {
		return
	}
	n := npcTarget(p, m.ID, deps)
	if n == nil || !useObj(p, m.UseObj, m.UseSlot, m.UseComponent) {
		return
	}
	interact(p, n, world.OpUse, m.UseComponent)
}

// HandleOpNpcT processes op_npc_t, a spell cast on an npc.
func HandleOpNpcT(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpEntity
	if !decode(p, r, &m, deps) {
		return
	}
	if n := npcTarget(p, m.ID, deps); n != nil {
		interact(p, n, world.OpSpell, m.SpellComponent)
	}
}

// HandleOpPlayer processes op_player.
func HandleOpPlayer(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpEntity
	if !decode(p, r, &m, deps) || !validOp(m.Op) {
		return
	}
	if other := playerTarget(p, m.ID, deps); other != nil {
		interact(p, other, m.Op-1, -1)
	}
}

func HandleOpPlayerU(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpEntity
	if !decode(p, r, &m, deps) {
		return
	}
	other := playerTarget(p, m.ID, deps)
	if other == nil || !useObj(p, m.UseObj, m.UseSlot, m.UseComponent) {
		return
	}
	interact(p, other, world.OpUse, m.UseComponent)
}

func HandleOpPlayerT(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpEntity
	if !decode(p, r, &m, deps) {
		return
	}
	if other := playerTarget(p, m.ID, deps); other != nil {
		interact(p, other, world.OpSpell, m.SpellComponent)
	}
}

// HandleOpLoc processes op_loc. The loc must exist on the clicked tile.
func HandleOpLoc(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpTile
	if !decode(p, r, &m, deps) || !validOp(m.Op) {
		return
	}
	if loc := locTarget(p, &m, deps); loc != nil {
		interact(p, loc, m.Op-1, -1)
	}
}

func HandleOpLocU(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpTile
	if !decode(p, r, &m, deps) {
		return
	}
	loc := locTarget(p, &m, deps)
	if loc == nil || !useObj(p, m.UseObj, m.UseSlot, m.UseComponent) {
		return
	}
	interact(p, loc, world.OpUse, m.UseComponent)
}

func HandleOpLocT(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpTile
	if !decode(p, r, &m, deps) {
		return
	}
	if loc := locTarget(p, &m, deps); loc != nil {
		interact(p, loc, world.OpSpell, m.SpellComponent)
	}
}

// HandleOpObj processes op_obj. Private objs are only found by their owner.
func HandleOpObj(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpTile
	if !decode(p, r, &m, deps) || !validOp(m.Op) {
		return
	}
	if obj := objTarget(p, &m, deps); obj != nil {
		interact(p, obj, m.Op-1, -1)
	}
}

func HandleOpObjU(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpTile
	if !decode(p, r, &m, deps) {
		return
	}
	obj := objTarget(p, &m, deps)
	if obj == nil || !useObj(p, m.UseObj, m.UseSlot, m.UseComponent) {
		return
	}
	interact(p, obj, world.OpUse, m.UseComponent)
}

func HandleOpObjT(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.OpTile
	if !decode(p, r, &m, deps) {
		return
	}
	if obj := objTarget(p, &m, deps); obj != nil {
		interact(p, obj, world.OpSpell, m.SpellComponent)
	}
}
