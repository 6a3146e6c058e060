package world

import (
	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/script"
)

// ProcessZones advances loc and obj lifecycles. Expired entities turn:
// despawning ones go away, respawning ones come back, changed locs revert
// and private objs are revealed before they despawn.
func (w *World) ProcessZones() {
	w.tracker.Each(func(ev entity.Tracked) {
		if ev.Loc != nil {
			w.turnLoc(ev.Loc)
		} else {
			w.turnObj(ev.Obj)
		}
	})
	for _, zn := range w.trackedZones {
		zn.ComputeShared()
	}
}

func (w *World) turnLoc(loc *entity.Loc) {
	loc.LifecycleTick--
	if loc.LifecycleTick > 0 {
		return
	}
	w.tracker.Untrack(&loc.NonPathing)
	w.Scripts.Run(script.LocTurn, loc.Type(), -1, &ScriptContext{World: w, Trigger: script.LocTurn, Target: loc, LastInt: -1})

	switch {
	case loc.Lifecycle == entity.Despawn && loc.IsActive():
		w.RemoveLoc(loc, 0)
	case loc.Lifecycle == entity.Respawn && !loc.IsActive():
		w.AddLoc(loc, 0)
	case loc.IsChanged():
		w.RevertLoc(loc)
	}
}

func (w *World) turnObj(obj *entity.Obj) {
	obj.LifecycleTick--
	if obj.LifecycleTick > 0 {
		return
	}
	w.tracker.Untrack(&obj.NonPathing)
	w.Scripts.Run(script.ObjTurn, obj.Type, -1, &ScriptContext{World: w, Trigger: script.ObjTurn, Target: obj, LastInt: -1})

	switch {
	case obj.Lifecycle == entity.Despawn && obj.IsActive() && obj.Receiver != entity.NoReceiver:
		w.RevealObj(obj)
	case obj.Lifecycle == entity.Despawn && obj.IsActive():
		w.RemoveObj(obj, 0)
	case obj.Lifecycle == entity.Respawn && !obj.IsActive():
		w.AddObj(obj, entity.NoReceiver, 0)
	}
}

// ResetZones clears this tick's zone updates after output.
func (w *World) ResetZones() {
	for idx, zn := range w.trackedZones {
		zn.Reset()
		delete(w.trackedZones, idx)
	}
}
