package entity

import (
	"errors"
	"iter"
)

// ErrNoFreeSlot is the panic value raised when a pool is exhausted. Callers
// are expected to check Count against capacity before asking for a slot.
var ErrNoFreeSlot = errors.New("entity list: no free slot")

// priorityBand is the low id range reserved for priority player logins.
const priorityBand = 100

// List maps logical ids to internal storage slots with O(1) lookup.
type List[T any] struct {
	items   []T
	used    []bool
	ids     []int32 // logical id -> storage slot, -1 when free
	free    []int32 // free storage slots, kept sorted descending so pop yields the lowest
	padding int
	last    int
	prio    bool
}

func newList[T any](size, padding int, prio bool) *List[T] {
	l := &List[T]{
		items:   make([]T, size),
		used:    make([]bool, size),
		ids:     make([]int32, size),
		free:    make([]int32, size),
		padding: padding,
		prio:    prio,
	}
	l.Reset()
	return l
}

// NewPlayerList creates a pool for maxPlayers players. Id 0 is reserved.
func NewPlayerList[T any](maxPlayers int) *List[T] {
	return newList[T](maxPlayers+1, 1, true)
}

// NewNpcList creates a pool with ids 0..maxNpcs.
func NewNpcList[T any](maxNpcs int) *List[T] {
	return newList[T](maxNpcs+1, 0, false)
}

// Cap is the number of usable ids.
func (l *List[T]) Cap() int { return len(l.ids) - l.padding }

func (l *List[T]) Count() int { return len(l.ids) - len(l.free) }

// Next returns a free id, scanning forward from the last assigned id and
// wrapping to the first usable id. With priority set on a player list the
// low band is tried first. It panics with ErrNoFreeSlot when the pool is full.
func (l *List[T]) Next(priority bool) int {
	if priority && l.prio {
		for id := l.padding; id < min(priorityBand, len(l.ids)); id++ {
			if l.ids[id] == -1 {
				return id
			}
		}
	}
	start := l.last + 1
	for id := start; id < len(l.ids); id++ {
		if l.ids[id] == -1 {
			return id
		}
	}
	for id := l.padding; id < min(start, len(l.ids)); id++ {
		if l.ids[id] == -1 {
			return id
		}
	}
	panic(ErrNoFreeSlot)
}

// Set binds id to a free storage slot. It panics with ErrNoFreeSlot when no
// slot is left and on an out-of-range id.
func (l *List[T]) Set(id int, v T) {
	if id < 0 || id >= len(l.ids) || len(l.free) == 0 {
		panic(ErrNoFreeSlot)
	}
	if l.ids[id] != -1 {
		l.items[l.ids[id]] = v
		l.last = id
		return
	}
	n := len(l.free)
	slot := l.free[n-1]
	l.free = l.free[:n-1]
	l.ids[id] = slot
	l.items[slot] = v
	l.used[slot] = true
	l.last = id
}

// Get returns the entity at id and whether it is present.
func (l *List[T]) Get(id int) (T, bool) {
	var zero T
	if id < 0 || id >= len(l.ids) {
		return zero, false
	}
	slot := l.ids[id]
	if slot == -1 {
		return zero, false
	}
	return l.items[slot], true
}

func (l *List[T]) Remove(id int) {
	if id < 0 || id >= len(l.ids) {
		return
	}
	slot := l.ids[id]
	if slot == -1 {
		return
	}
	var zero T
	l.ids[id] = -1
	l.items[slot] = zero
	l.used[slot] = false
	l.insertFree(slot)
}

func (l *List[T]) insertFree(slot int32) {
	i := len(l.free)
	l.free = append(l.free, slot)
	for i > 0 && l.free[i-1] < slot {
		l.free[i] = l.free[i-1]
		i--
	}
	l.free[i] = slot
}

// All yields live entities in id order.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for id, slot := range l.ids {
			if slot == -1 || !l.used[slot] {
				continue
			}
			if !yield(id, l.items[slot]) {
				return
			}
		}
	}
}

// Reset empties the pool.
func (l *List[T]) Reset() {
	var zero T
	l.free = l.free[:0]
	for i := range l.ids {
		l.ids[i] = -1
		l.items[i] = zero
		l.used[i] = false
	}
	for i := len(l.ids) - 1; i >= 0; i-- {
		l.free = append(l.free, int32(i))
	}
	l.last = 0
}
