// Package inventory implements fixed-capacity item containers.
package inventory

import "slices"

// StackLimit is the largest total count of one obj an inventory can hold.
const StackLimit = 0x7fffffff

// StackMode decides whether adds merge into one slot.
type StackMode int

const (
	// StackNormal stacks objs whose config says they are stackable.
	StackNormal StackMode = iota
	StackAlways
	StackNever
)

// Item is the content of one occupied slot.
type Item struct {
	ID    int `json:"id"`
	Count int `json:"count"`
}

// Change records one slot touched by a transaction.
type Change struct {
	Slot int
	Item Item
}

// Transaction reports how much of an add or remove went through.
type Transaction struct {
	Requested int
	Completed int
	Items     []Change
}

func (t Transaction) LeftOver() int   { return t.Requested - t.Completed }
func (t Transaction) Succeeded() bool { return t.Completed == t.Requested }
func (t Transaction) Failed() bool    { return !t.Succeeded() }

// Revert undoes a successful add by removing what it placed.
func (t Transaction) Revert(from *Inventory) {
	for _, c := range t.Items {
		from.Remove(c.Item.ID, c.Item.Count, c.Slot, false)
	}
}

// Inventory is a slot array. It is owned by the tick goroutine.
type Inventory struct {
	Type     int
	Capacity int
	Mode     StackMode

	// Update is set by every mutation and cleared at the end of the tick.
	Update bool

	items     []*Item
	stock     []int
	stackable func(id int) bool
}

// New creates an empty inventory. stackable answers for StackNormal
// inventories and may be nil, meaning nothing stacks.
func New(typ, capacity int, mode StackMode, stackable func(id int) bool) *Inventory {
	return &Inventory{
		Type:      typ,
		Capacity:  capacity,
		Mode:      mode,
		items:     make([]*Item, capacity),
		stackable: stackable,
	}
}

// SetStock marks objs whose slots survive reaching zero, as shops need.
func (inv *Inventory) SetStock(ids []int) { inv.stock = slices.Clone(ids) }

func (inv *Inventory) IsStock(id int) bool { return slices.Contains(inv.stock, id) }

func (inv *Inventory) ValidSlot(slot int) bool { return slot >= 0 && slot < inv.Capacity }

// Get returns the item in a slot, or nil when empty or out of range.
func (inv *Inventory) Get(slot int) *Item {
	if !inv.ValidSlot(slot) {
		return nil
	}
	return inv.items[slot]
}

// Set replaces a slot. A nil item empties it.
func (inv *Inventory) Set(slot int, item *Item) {
	if !inv.ValidSlot(slot) {
		return
	}
	inv.items[slot] = item
	inv.Update = true
}

func (inv *Inventory) Delete(slot int) { inv.Set(slot, nil) }

func (inv *Inventory) Swap(from, to int) {
	if !inv.ValidSlot(from) || !inv.ValidSlot(to) {
		return
	}
	inv.items[from], inv.items[to] = inv.items[to], inv.items[from]
	inv.Update = true
}

func (inv *Inventory) RemoveAll() {
	clear(inv.items)
	inv.Update = true
}

// Items returns a copy of the slot array.
func (inv *Inventory) Items() []*Item {
	out := make([]*Item, len(inv.items))
	for i, it := range inv.items {
		if it != nil {
			cp := *it
			out[i] = &cp
		}
	}
	return out
}

func (inv *Inventory) Contains(id int) bool { return inv.indexOf(id) != -1 }

func (inv *Inventory) HasAt(slot, id int) bool {
	it := inv.Get(slot)
	return it != nil && it.ID == id
}

func (inv *Inventory) indexOf(id int) int {
	for i, it := range inv.items {
		if it != nil && it.ID == id {
			return i
		}
	}
	return -1
}

func (inv *Inventory) nextFree(from int) int {
	for i := max(from, 0); i < inv.Capacity; i++ {
		if inv.items[i] == nil {
			return i
		}
	}
	return -1
}

func (inv *Inventory) FreeSlotCount() int {
	n := 0
	for _, it := range inv.items {
		if it == nil {
			n++
		}
	}
	return n
}

func (inv *Inventory) OccupiedSlotCount() int { return inv.Capacity - inv.FreeSlotCount() }
func (inv *Inventory) IsFull() bool           { return inv.FreeSlotCount() == 0 }
func (inv *Inventory) IsEmpty() bool          { return inv.FreeSlotCount() == inv.Capacity }

// ItemCount sums every slot holding id, capped at StackLimit.
func (inv *Inventory) ItemCount(id int) int {
	total := 0
	for _, it := range inv.items {
		if it != nil && it.ID == id {
			total += it.Count
		}
	}
	return min(total, StackLimit)
}

func (inv *Inventory) stacks(id int) bool {
	switch inv.Mode {
	case StackAlways:
		return true
	case StackNever:
		return false
	}
	return inv.stackable != nil && inv.stackable(id)
}

// Add inserts count of id, searching from beginSlot (-1 for the start).
// With assureFull the add is all or nothing. dryRun reports what would
// happen without changing anything.
func (inv *Inventory) Add(id, count, beginSlot int, assureFull, dryRun bool) Transaction {
	return inv.add(id, count, beginSlot, assureFull, false, dryRun)
}

// AddUnstacked inserts one slot per unit even if the obj normally stacks.
func (inv *Inventory) AddUnstacked(id, count int) Transaction {
	return inv.add(id, count, -1, true, true, false)
}

func (inv *Inventory) add(id, count, beginSlot int, assureFull, forceNoStack, dryRun bool) Transaction {
	fail := Transaction{Requested: count}
	if count <= 0 {
		return fail
	}
	stack := !forceNoStack && inv.stacks(id)

	previous := 0
	if stack {
		previous = inv.ItemCount(id)
	}
	if previous == StackLimit {
		return fail
	}

	free := inv.FreeSlotCount()
	if free == 0 && (!stack || (previous == 0 && !inv.IsStock(id))) {
		return fail
	}
	if assureFull {
		if stack && previous > StackLimit-count {
			return fail
		}
		if !stack && count > free {
			return fail
		}
	}

	tx := Transaction{Requested: count}
	if !stack {
		for i := max(beginSlot, 0); i < inv.Capacity; i++ {
			if inv.items[i] != nil {
				continue
			}
			if !dryRun {
				inv.Set(i, &Item{ID: id, Count: 1})
			}
			tx.Items = append(tx.Items, Change{Slot: i, Item: Item{ID: id, Count: 1}})
			tx.Completed++
			if tx.Completed >= count {
				break
			}
		}
		return tx
	}

	slot := inv.indexOf(id)
	if slot == -1 {
		slot = inv.nextFree(beginSlot)
		if slot == -1 {
			return fail
		}
	}
	had := 0
	if it := inv.items[slot]; it != nil {
		had = it.Count
	}
	total := min(StackLimit, had+count)
	if !dryRun {
		inv.Set(slot, &Item{ID: id, Count: total})
	}
	tx.Items = append(tx.Items, Change{Slot: slot, Item: Item{ID: id, Count: total - had}})
	tx.Completed = total - had
	return tx
}

// Remove takes up to count of id, searching from beginSlot (-1 for the
// start). With assureFull nothing is removed unless all of it is present.
// Stock objs keep their slot at zero.
func (inv *Inventory) Remove(id, count, beginSlot int, assureFull bool) Transaction {
	fail := Transaction{Requested: count}
	has := inv.ItemCount(id)
	if count <= 0 || (assureFull && has < count) || has < 1 {
		return fail
	}
	stock := inv.IsStock(id)

	tx := Transaction{Requested: count}
	for i := max(beginSlot, 0); i < inv.Capacity; i++ {
		it := inv.items[i]
		if it == nil || it.ID != id {
			continue
		}
		n := min(it.Count, count-tx.Completed)
		tx.Completed += n
		it.Count -= n
		tx.Items = append(tx.Items, Change{Slot: i, Item: Item{ID: id, Count: n}})
		if it.Count == 0 && !stock {
			inv.items[i] = nil
		}
		if tx.Completed >= count {
			break
		}
	}
	if tx.Completed > 0 {
		inv.Update = true
	}
	return tx
}

// Transfer moves up to item.Count of item.ID into to. It returns the
// removal transaction, or false when nothing moved.
func (inv *Inventory) Transfer(to *Inventory, item Item, fromSlot, toSlot int) (Transaction, bool) {
	if item.Count <= 0 {
		return Transaction{}, false
	}
	count := min(item.Count, inv.ItemCount(item.ID))
	added := to.Add(item.ID, count, toSlot, false, false)
	if added.Completed == 0 {
		return Transaction{}, false
	}
	removed := inv.Remove(item.ID, added.Completed, fromSlot, false)
	if removed.Completed == 0 {
		return Transaction{}, false
	}
	return removed, true
}
