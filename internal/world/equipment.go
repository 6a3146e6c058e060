package world

import "github.com/tickworld/server/internal/inventory"

// WearPos is a slot in the worn inventory.
type WearPos int

const (
	WearHead WearPos = iota
	WearCape
	WearAmulet
	WearWeapon
	WearBody
	WearShield
	WearArms
	WearLegs
	WearHair
	WearHands
	WearFeet
	WearJaw
	WearRing
	WearQuiver

	WearCount
)

func (w WearPos) Valid() bool { return w >= 0 && w < WearCount }

// Wear moves the obj in a backpack slot to its worn position, swapping out
// whatever was there. It reports whether anything changed.
func (w *World) Wear(p *Player, slot int) bool {
	bp := p.Inv(InvBackpack)
	worn := p.Inv(InvWorn)
	it := bp.Get(slot)
	if it == nil {
		return false
	}
	ot := w.Stores.Objs.Get(it.ID)
	if ot == nil || !WearPos(ot.WearPos).Valid() || ot.WearPos >= worn.Capacity {
		return false
	}
	pos := ot.WearPos
	current := worn.Get(pos)
	if current != nil && current.ID == it.ID && w.stackable(it.ID) {
		worn.Set(pos, &inventory.Item{ID: it.ID, Count: current.Count + it.Count})
		bp.Delete(slot)
		p.Masks |= PlayerAppearance
		return true
	}
	worn.Set(pos, &inventory.Item{ID: it.ID, Count: it.Count})
	if current != nil {
		bp.Set(slot, &inventory.Item{ID: current.ID, Count: current.Count})
	} else {
		bp.Delete(slot)
	}
	p.Masks |= PlayerAppearance
	return true
}

// Unwear moves a worn obj back to the backpack. It fails when the backpack
// has no room.
func (w *World) Unwear(p *Player, pos WearPos) bool {
	worn := p.Inv(InvWorn)
	it := worn.Get(int(pos))
	if it == nil {
		return false
	}
	if p.Inv(InvBackpack).Add(it.ID, it.Count, -1, true, false).Failed() {
		p.MessageGame("You don't have enough free inventory space to do that.")
		return false
	}
	worn.Delete(int(pos))
	p.Masks |= PlayerAppearance
	return true
}

// Worn returns the obj in a worn position, or -1.
func (p *Player) Worn(pos WearPos) int {
	if it := p.Inv(InvWorn).Get(int(pos)); it != nil {
		return it.ID
	}
	return -1
}
