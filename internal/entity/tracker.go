package entity

// EventRef is a handle into a Tracker slot. The zero value refers to nothing.
type EventRef struct {
	Index int32
	Gen   uint32
}

func (r EventRef) IsZero() bool { return r.Gen == 0 }

// Tracked is one live tracker entry. Exactly one of Loc and Obj is set.
type Tracked struct {
	Ref EventRef
	Loc *Loc
	Obj *Obj
}

func (t Tracked) base() *NonPathing {
	if t.Loc != nil {
		return &t.Loc.NonPathing
	}
	return &t.Obj.NonPathing
}

type trackerSlot struct {
	gen  uint32
	live bool
	loc  *Loc
	obj  *Obj
}

// Tracker is an arena of pending lifecycle events for locs and objs. An
// entity's Event field names the single authoritative slot; re-tracking or
// untracking bumps the slot generation so stale handles compare unequal.
type Tracker struct {
	slots []trackerSlot
	free  []int32
	order []EventRef
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) TrackLoc(l *Loc) EventRef {
	return t.track(&l.NonPathing, trackerSlot{loc: l})
}

func (t *Tracker) TrackObj(o *Obj) EventRef {
	return t.track(&o.NonPathing, trackerSlot{obj: o})
}

func (t *Tracker) track(np *NonPathing, slot trackerSlot) EventRef {
	t.release(np.Event)

	var idx int32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = int32(len(t.slots))
		t.slots = append(t.slots, trackerSlot{})
	}
	slot.gen = t.slots[idx].gen + 1
	slot.live = true
	t.slots[idx] = slot

	ref := EventRef{Index: idx, Gen: slot.gen}
	np.Event = ref
	t.order = append(t.order, ref)
	return ref
}

// Untrack drops the entity's pending event, if any.
func (t *Tracker) Untrack(np *NonPathing) {
	t.release(np.Event)
	np.Event = EventRef{}
}

func (t *Tracker) release(ref EventRef) {
	if !t.Valid(ref) {
		return
	}
	s := &t.slots[ref.Index]
	s.live = false
	s.loc = nil
	s.obj = nil
	s.gen++
	t.free = append(t.free, ref.Index)
}

// Valid reports whether ref still names a live slot.
func (t *Tracker) Valid(ref EventRef) bool {
	if ref.IsZero() || int(ref.Index) >= len(t.slots) {
		return false
	}
	s := t.slots[ref.Index]
	return s.live && s.gen == ref.Gen
}

// Each visits live events in insertion order. fn may track or untrack
// entities; events added during the walk are visited on the next call.
// Stale entries are compacted afterwards.
func (t *Tracker) Each(fn func(ev Tracked)) {
	n := len(t.order)
	for i := 0; i < n; i++ {
		ref := t.order[i]
		if !t.Valid(ref) {
			continue
		}
		s := t.slots[ref.Index]
		ev := Tracked{Ref: ref, Loc: s.loc, Obj: s.obj}
		if ev.base().Event != ref {
			// the entity moved on to a newer event
			t.release(ref)
			continue
		}
		fn(ev)
	}

	kept := t.order[:0]
	for _, ref := range t.order {
		if t.Valid(ref) {
			kept = append(kept, ref)
		}
	}
	clear(t.order[len(kept):])
	t.order = kept
}

// Len reports the number of live events.
func (t *Tracker) Len() int {
	return len(t.slots) - len(t.free)
}
