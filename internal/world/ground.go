package world

import (
	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/zone"
)

// RevealTicks is how long a dropped obj stays private to its dropper.
const RevealTicks = 100

type delayedObj struct {
	obj      *entity.Obj
	receiver int64
	duration int
	delay    int
}

// zoneOf returns the zone holding an entity and marks it for reset.
func (w *World) zoneOf(e *entity.Entity) *zone.Zone {
	zn := w.Map.Zone(e.X, e.Z, e.Level)
	w.trackedZones[zn.Index] = zn
	return zn
}

// AddObj places an obj. A despawning obj with a receiver is private for
// RevealTicks and then public for duration ticks; otherwise it despawns
// after duration. A duration of zero keeps the obj until removed.
func (w *World) AddObj(obj *entity.Obj, receiver int64, duration int) {
	zn := w.zoneOf(&obj.Entity)
	if evicted := zn.AddObj(obj, receiver); evicted != nil {
		w.tracker.Untrack(&evicted.NonPathing)
	}
	if obj.Lifecycle != entity.Despawn {
		w.tracker.Untrack(&obj.NonPathing)
		return
	}
	if receiver != entity.NoReceiver {
		obj.ReceiverTicks = duration
		obj.SetLifecycle(RevealTicks)
		w.tracker.TrackObj(obj)
		return
	}
	if duration > 0 {
		obj.SetLifecycle(duration)
		w.tracker.TrackObj(obj)
	}
}

// AddObjDelayed places the obj after delay ticks.
func (w *World) AddObjDelayed(obj *entity.Obj, receiver int64, duration, delay int) {
	w.objDelayed = append(w.objDelayed, &delayedObj{obj: obj, receiver: receiver, duration: duration, delay: delay})
}

// ProcessDelayedObjs counts down delayed drops and places the due ones.
func (w *World) ProcessDelayedObjs() {
	kept := w.objDelayed[:0]
	for _, d := range w.objDelayed {
		d.delay--
		if d.delay > 0 {
			kept = append(kept, d)
			continue
		}
		w.AddObj(d.obj, d.receiver, d.duration)
	}
	clear(w.objDelayed[len(kept):])
	w.objDelayed = kept
}

// RevealObj makes a private obj public. It despawns after the duration it
// was dropped with.
func (w *World) RevealObj(obj *entity.Obj) {
	zn := w.zoneOf(&obj.Entity)
	zn.RevealObj(obj)
	if obj.Lifecycle == entity.Despawn && obj.ReceiverTicks > 0 {
		obj.SetLifecycle(obj.ReceiverTicks)
		obj.ReceiverTicks = 0
		w.tracker.TrackObj(obj)
	}
}

// ChangeObj updates a stack count in place.
func (w *World) ChangeObj(obj *entity.Obj, count int) {
	zn := w.zoneOf(&obj.Entity)
	zn.ChangeObj(obj, obj.Count, count)
}

// RemoveObj takes an obj off the ground. A respawning obj returns after
// duration ticks.
func (w *World) RemoveObj(obj *entity.Obj, duration int) {
	zn := w.zoneOf(&obj.Entity)
	zn.RemoveObj(obj)
	if obj.Lifecycle == entity.Respawn && duration > 0 {
		obj.SetLifecycle(duration)
		w.tracker.TrackObj(obj)
		return
	}
	w.tracker.Untrack(&obj.NonPathing)
}

// GetObj finds a ground obj visible to receiver.
func (w *World) GetObj(level, x, z, typ int, receiver int64) *entity.Obj {
	zn, ok := w.Map.Zones.Lookup(x, z, level)
	if !ok {
		return nil
	}
	return zn.GetObj(x, z, typ, receiver)
}

// DropObj puts count of typ at a player's feet, private to them.
func (w *World) DropObj(p *Player, typ, count, duration int) *entity.Obj {
	obj := entity.NewObj(p.Level, p.X, p.Z, entity.Despawn, typ, count)
	w.AddObj(obj, p.Hash64(), duration)
	return obj
}

// AnimMap plays a spot animation on a tile.
func (w *World) AnimMap(level, x, z, spotanim, height, delay int) {
	zn := w.Map.Zone(x, z, level)
	w.trackedZones[zn.Index] = zn
	zn.AnimMap(x, z, spotanim, height, delay)
}

// MapProjAnim launches a projectile from a tile.
func (w *World) MapProjAnim(level, x, z, dstX, dstZ, target, spotanim, srcHeight, dstHeight, startDelay, endDelay, peak, arc int) {
	zn := w.Map.Zone(x, z, level)
	w.trackedZones[zn.Index] = zn
	zn.MapProjAnim(x, z, dstX, dstZ, target, spotanim, srcHeight, dstHeight, startDelay, endDelay, peak, arc)
}
