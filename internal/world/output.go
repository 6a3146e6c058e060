package world

import (
	"slices"

	"github.com/tickworld/server/internal/inventory"
	"github.com/tickworld/server/internal/net/packet"
)

// WriteOutput assembles a player's payload for this tick and flushes it.
// Map and zone state go first, then info, then inventories, then whatever
// handlers wrote during the tick. A flush error means the client is gone.
// 視野範圍已在 Phase 9 (Info) 更新，這裡不再重算。
func (w *World) WriteOutput(p *Player) error {
	buffered := p.out.Drain()

	a := p.area
	a.writeRebuild(p)
	if p.refreshModalClose {
		p.Write(packet.IfClose{})
		p.refreshModalClose = false
	}

	idxs := make([]int32, 0, len(a.active))
	for idx := range a.active {
		idxs = append(idxs, idx)
	}
	slices.Sort(idxs)
	for _, idx := range idxs {
		zn := a.active[idx]
		if !a.IsLoaded(idx) {
			zn.WriteFullFollows(p)
			a.markLoaded(idx)
			continue
		}
		if !zn.HasEvents() {
			continue
		}
		p.Write(packet.ZonePartialFollows{ZoneX: zn.X, ZoneZ: zn.Z, OriginX: a.OriginX, OriginZ: a.OriginZ})
		zn.WritePartialEncloses(p)
		zn.WritePartialFollows(p)
	}

	p.Write(w.PlayerInfo(p))
	p.Write(w.NpcInfo(p))

	for _, typ := range p.invTypes() {
		if inv := p.Invs[typ]; inv.Update {
			p.Write(invFull(inv))
		}
	}
	if p.OpenShop != -1 {
		if shop, ok := w.shops[p.OpenShop]; ok && shop.Update {
			p.Write(invFull(shop))
		}
	}

	for _, msg := range buffered {
		p.Write(msg)
	}
	return p.FlushOut()
}

func (p *Player) invTypes() []int {
	types := make([]int, 0, len(p.Invs))
	for typ := range p.Invs {
		types = append(types, typ)
	}
	slices.Sort(types)
	return types
}

func invFull(inv *inventory.Inventory) packet.UpdateInvFull {
	msg := packet.UpdateInvFull{Inv: inv.Type, Size: inv.Capacity}
	for slot, it := range inv.Items() {
		if it != nil {
			msg.Items = append(msg.Items, packet.InvItem{Slot: slot, ID: it.ID, Count: it.Count})
		}
	}
	return msg
}

// Phase 11.

// CleanupPlayer clears a player's per-tick state after output.
func (w *World) CleanupPlayer(p *Player) {
	p.ResetPathingEntity()
	p.ChatMessage = nil
	for _, inv := range p.Invs {
		inv.Update = false
	}
}

func (w *World) CleanupNpc(n *Npc) {
	n.ResetPathingEntity()
}

// CleanupShops clears shop update flags once every viewer has been sent
// the change.
func (w *World) CleanupShops() {
	for _, shop := range w.shops {
		shop.Update = false
	}
}
