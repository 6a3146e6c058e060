// Package zone buckets the world into 8x8 tile zones. Each zone tracks the
// players and npcs standing in it, the locs and objs placed in it, and the
// per-tick updates owed to viewers.
package zone

import (
	"github.com/tickworld/server/internal/coord"
	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/net/packet"
)

const (
	tiles = 8 * 8
	// MaxObjs caps despawning objs per zone. The oldest is evicted when exceeded.
	MaxObjs = tiles<<1 + 1
)

type Zone struct {
	Index int32
	X     int // zone coordinate
	Z     int
	Level int

	players []int
	npcs    []int
	locs    []*entity.Loc
	objs    []*entity.Obj

	locCount int
	objCount int

	events   []*Event
	byEntity map[*entity.NonPathing]int
	pending  int
}

func newZone(index int32) *Zone {
	x, z, level := UnpackIndex(index)
	return &Zone{
		Index:    index,
		X:        x >> 3,
		Z:        z >> 3,
		Level:    level,
		byEntity: make(map[*entity.NonPathing]int),
	}
}

func (z *Zone) TotalLocs() int { return z.locCount }
func (z *Zone) TotalObjs() int { return z.objCount }

// HasEvents reports whether any update is queued this tick.
func (z *Zone) HasEvents() bool { return z.pending > 0 }

func (z *Zone) EnterPlayer(pid int) { z.players = append(z.players, pid) }
func (z *Zone) EnterNpc(nid int)    { z.npcs = append(z.npcs, nid) }
func (z *Zone) LeavePlayer(pid int) { z.players = removeID(z.players, pid) }
func (z *Zone) LeaveNpc(nid int)    { z.npcs = removeID(z.npcs, nid) }

// Players returns the pids in the zone in arrival order. The slice must not be modified.
func (z *Zone) Players() []int { return z.players }

// Npcs returns the nids in the zone in arrival order. The slice must not be modified.
func (z *Zone) Npcs() []int { return z.npcs }

func removeID(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// AddStaticLoc places a map loc without producing an update.
func (z *Zone) AddStaticLoc(loc *entity.Loc) {
	z.locs = append(z.locs, loc)
	z.locCount++
	loc.SetActive(true)
}

// AddStaticObj places a map obj without producing an update.
func (z *Zone) AddStaticObj(obj *entity.Obj) {
	z.objs = append(z.objs, obj)
	z.objCount++
	obj.SetActive(true)
}

func (z *Zone) AddLoc(loc *entity.Loc) {
	if loc.Lifecycle == entity.Despawn {
		z.locs = append(z.locs, loc)
		z.locCount++
	}
	loc.Revert()
	loc.SetActive(true)
	z.queueEvent(&loc.NonPathing, &Event{Receiver: entity.NoReceiver, Msg: locAdd(loc), op: opLocAdd})
}

func (z *Zone) ChangeLoc(loc *entity.Loc) {
	loc.SetActive(true)
	z.locs = moveToTail(z.locs, loc)
	z.queueEvent(&loc.NonPathing, &Event{Receiver: entity.NoReceiver, Msg: locAdd(loc), op: opLocAdd})
}

func (z *Zone) RemoveLoc(loc *entity.Loc) {
	z.locs = unlink(z.locs, loc)
	if loc.Lifecycle == entity.Respawn {
		z.locs = append(z.locs, loc)
	} else {
		z.locCount--
	}
	z.clearQueuedEvents(&loc.NonPathing)
	loc.SetActive(false)
	z.queueEvent(&loc.NonPathing, &Event{
		Receiver: entity.NoReceiver,
		Msg:      packet.LocDel{Coord: coord.PackZoneCoord(loc.X, loc.Z), Shape: loc.Shape(), Angle: loc.Angle()},
		op:       opLocDel,
	})
}

// GetLoc finds an active loc of the given type on a tile.
func (z *Zone) GetLoc(x, zz, typ int) *entity.Loc {
	for _, loc := range z.locs {
		if loc.IsActive() && loc.X == x && loc.Z == zz && loc.Type() == typ {
			return loc
		}
	}
	return nil
}

// Locs returns every loc in the zone, active or not.
func (z *Zone) Locs() []*entity.Loc { return z.locs }

func (z *Zone) AnimLoc(loc *entity.Loc, seq int) {
	z.queueUntracked(packet.LocAnim{
		Coord: coord.PackZoneCoord(loc.X, loc.Z), LocType: loc.Type(), Shape: loc.Shape(), Angle: loc.Angle(), Seq: seq,
	})
}

func (z *Zone) MergeLoc(loc *entity.Loc, pid, startCycle, endCycle, south, east, north, west int) {
	z.queueUntracked(packet.LocMerge{
		Coord: coord.PackZoneCoord(loc.X, loc.Z), LocType: loc.Type(), Shape: loc.Shape(), Angle: loc.Angle(),
		StartCycle: startCycle, EndCycle: endCycle, South: south, East: east, North: north, West: west, Pid: pid,
	})
}

// AddObj places obj for receiver. When the zone already holds MaxObjs
// despawning objs the oldest one is removed and returned so the caller can
// drop its lifecycle event.
func (z *Zone) AddObj(obj *entity.Obj, receiver int64) (evicted *entity.Obj) {
	if obj.Lifecycle == entity.Despawn {
		if z.objCount >= MaxObjs {
			for _, old := range z.objs {
				if old.Lifecycle == entity.Despawn && old.IsActive() {
					evicted = old
					break
				}
			}
			if evicted != nil {
				z.RemoveObj(evicted)
			}
		}
		z.objs = append(z.objs, obj)
		z.objCount++
	}
	obj.Receiver = receiver
	obj.SetActive(true)

	ev := &Event{Receiver: receiver, Msg: objAdd(obj), op: opObjAdd}
	if obj.Lifecycle != entity.Respawn && receiver != entity.NoReceiver {
		ev.Follows = true
	} else {
		ev.Receiver = entity.NoReceiver
	}
	z.queueEvent(&obj.NonPathing, ev)
	return evicted
}

// RevealObj makes a private obj visible to everyone.
func (z *Zone) RevealObj(obj *entity.Obj) {
	obj.Receiver = entity.NoReceiver
	z.queueEvent(&obj.NonPathing, &Event{
		Receiver: entity.NoReceiver,
		Msg:      packet.ObjReveal{Coord: coord.PackZoneCoord(obj.X, obj.Z), ObjType: obj.Type, Count: obj.Count},
		op:       opObjReveal,
	})
}

func (z *Zone) ChangeObj(obj *entity.Obj, oldCount, newCount int) {
	obj.Count = newCount
	z.queueEvent(&obj.NonPathing, &Event{
		Follows:  obj.Receiver != entity.NoReceiver,
		Receiver: obj.Receiver,
		Msg:      packet.ObjCount{Coord: coord.PackZoneCoord(obj.X, obj.Z), ObjType: obj.Type, OldCount: oldCount, NewCount: newCount},
		op:       opObjCount,
	})
}

func (z *Zone) RemoveObj(obj *entity.Obj) {
	if obj.Lifecycle == entity.Despawn {
		n := len(z.objs)
		if z.objs = unlink(z.objs, obj); len(z.objs) < n {
			z.objCount--
		}
	}
	z.clearQueuedEvents(&obj.NonPathing)
	obj.SetActive(false)

	ev := &Event{
		Receiver: entity.NoReceiver,
		Msg:      packet.ObjDel{Coord: coord.PackZoneCoord(obj.X, obj.Z), ObjType: obj.Type},
		op:       opObjDel,
	}
	if obj.Lifecycle != entity.Respawn && obj.Receiver != entity.NoReceiver {
		ev.Follows = true
		ev.Receiver = obj.Receiver
	}
	z.queueEvent(&obj.NonPathing, ev)
}

// GetObj finds an active obj of the type on a tile visible to receiver.
func (z *Zone) GetObj(x, zz, typ int, receiver int64) *entity.Obj {
	for _, obj := range z.objs {
		if obj.IsActive() && obj.X == x && obj.Z == zz && obj.Type == typ && obj.VisibleTo(receiver) {
			return obj
		}
	}
	return nil
}

// GetObjOfReceiver finds an active obj of the type on a tile owned by receiver.
func (z *Zone) GetObjOfReceiver(x, zz, typ int, receiver int64) *entity.Obj {
	for _, obj := range z.objs {
		if obj.IsActive() && obj.X == x && obj.Z == zz && obj.Type == typ && obj.Receiver == receiver {
			return obj
		}
	}
	return nil
}

// Objs returns every obj in the zone, active or not.
func (z *Zone) Objs() []*entity.Obj { return z.objs }

func (z *Zone) AnimMap(x, zz, spotanim, height, delay int) {
	z.queueUntracked(packet.MapAnim{Coord: coord.PackZoneCoord(x, zz), Spotanim: spotanim, Height: height, Delay: delay})
}

func (z *Zone) MapProjAnim(x, zz, dstX, dstZ, target, spotanim, srcHeight, dstHeight, startDelay, endDelay, peak, arc int) {
	z.queueUntracked(packet.MapProjAnim{
		Coord: coord.PackZoneCoord(x, zz), DstX: dstX, DstZ: dstZ, Target: target, Spotanim: spotanim,
		SrcHeight: srcHeight, DstHeight: dstHeight, StartDelay: startDelay, EndDelay: endDelay, Peak: peak, Arc: arc,
	})
}

// ComputeShared is the hook for encoding enclosed events once per tick for
// every viewer. Events are currently written per viewer as typed messages,
// so there is nothing to precompute.
func (z *Zone) ComputeShared() {}

// WriteFullFollows resynchronises a viewer that just loaded this zone.
func (z *Zone) WriteFullFollows(v Viewer) {
	ox, oz := v.Origin()
	v.Write(packet.ZoneFullFollows{ZoneX: z.X, ZoneZ: z.Z, OriginX: ox, OriginZ: oz})

	hash := v.Hash64()
	for _, obj := range z.objs {
		if obj.IsActive() && obj.VisibleTo(hash) {
			v.Write(objAdd(obj))
		}
	}
	for _, loc := range z.locs {
		switch {
		case loc.Lifecycle == entity.Despawn && loc.IsActive():
			v.Write(locAdd(loc))
		case loc.Lifecycle == entity.Respawn && !loc.IsActive():
			v.Write(packet.LocDel{Coord: coord.PackZoneCoord(loc.X, loc.Z), Shape: loc.Shape(), Angle: loc.Angle()})
		case loc.Lifecycle == entity.Respawn && loc.IsChanged():
			v.Write(locAdd(loc))
		case loc.Lifecycle == entity.Forever && loc.IsChanged():
			v.Write(locAdd(loc))
		}
	}
}

// WritePartialEncloses sends this tick's updates visible to every viewer.
func (z *Zone) WritePartialEncloses(v Viewer) {
	for _, ev := range z.events {
		if ev != nil && !ev.Follows {
			v.Write(ev.Msg)
		}
	}
}

// WritePartialFollows sends this tick's private updates addressed to the viewer.
func (z *Zone) WritePartialFollows(v Viewer) {
	hash := v.Hash64()
	for _, ev := range z.events {
		if ev != nil && ev.Follows && ev.Receiver == hash {
			v.Write(ev.Msg)
		}
	}
}

// Events returns the live queued events in order.
func (z *Zone) Events() []*Event {
	out := make([]*Event, 0, z.pending)
	for _, ev := range z.events {
		if ev != nil {
			out = append(out, ev)
		}
	}
	return out
}

// Reset drops all queued updates. Called once per tick after output.
func (z *Zone) Reset() {
	clear(z.events)
	z.events = z.events[:0]
	clear(z.byEntity)
	z.pending = 0
}

// queueEvent records ev as the entity's only pending update, folding it into
// the previous one so each viewer sees at most one transition per tick.
func (z *Zone) queueEvent(np *entity.NonPathing, ev *Event) {
	if idx, ok := z.byEntity[np]; ok {
		ev = collapse(z.events[idx], ev)
		z.events[idx] = nil
		z.pending--
	}
	z.byEntity[np] = len(z.events)
	z.events = append(z.events, ev)
	z.pending++
}

func (z *Zone) queueUntracked(msg packet.Message) {
	z.events = append(z.events, &Event{Receiver: entity.NoReceiver, Msg: msg, op: opAnim})
	z.pending++
}

func (z *Zone) clearQueuedEvents(np *entity.NonPathing) {
	if idx, ok := z.byEntity[np]; ok {
		z.events[idx] = nil
		z.pending--
		delete(z.byEntity, np)
	}
}

// collapse merges a new update for an entity into the one already queued.
// An add followed by a count change or reveal is still an add, carrying the
// latest count and visibility.
func collapse(prev, next *Event) *Event {
	if prev.op != opObjAdd {
		return next
	}
	add, _ := prev.Msg.(packet.ObjAdd)
	switch next.op {
	case opObjCount:
		c := next.Msg.(packet.ObjCount)
		add.Count = c.NewCount
		return &Event{Follows: prev.Follows, Receiver: prev.Receiver, Msg: add, op: opObjAdd}
	case opObjReveal:
		r := next.Msg.(packet.ObjReveal)
		add.Count = r.Count
		return &Event{Receiver: entity.NoReceiver, Msg: add, op: opObjAdd}
	}
	return next
}

func locAdd(loc *entity.Loc) packet.LocAdd {
	return packet.LocAdd{Coord: coord.PackZoneCoord(loc.X, loc.Z), LocType: loc.Type(), Shape: loc.Shape(), Angle: loc.Angle()}
}

func objAdd(obj *entity.Obj) packet.ObjAdd {
	return packet.ObjAdd{Coord: coord.PackZoneCoord(obj.X, obj.Z), ObjType: obj.Type, Count: obj.Count}
}

func unlink[T comparable](list []T, v T) []T {
	for i, e := range list {
		if e == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func moveToTail[T comparable](list []T, v T) []T {
	return append(unlink(list, v), v)
}
