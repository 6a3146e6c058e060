package world

import "github.com/tickworld/server/internal/entity"

// AddLoc places a loc and its collision. A despawning loc goes away after
// duration ticks.
func (w *World) AddLoc(loc *entity.Loc, duration int) {
	zn := w.zoneOf(&loc.Entity)
	zn.AddLoc(loc)
	w.changeLocCollision(loc, true)
	if loc.Lifecycle == entity.Despawn && duration > 0 {
		loc.SetLifecycle(duration)
		w.tracker.TrackLoc(loc)
		return
	}
	w.tracker.Untrack(&loc.NonPathing)
}

// RemoveLoc takes a loc away. A respawning loc returns after duration ticks.
func (w *World) RemoveLoc(loc *entity.Loc, duration int) {
	zn := w.zoneOf(&loc.Entity)
	w.changeLocCollision(loc, false)
	zn.RemoveLoc(loc)
	if loc.Lifecycle == entity.Respawn && duration > 0 {
		loc.SetLifecycle(duration)
		w.tracker.TrackLoc(loc)
		return
	}
	w.tracker.Untrack(&loc.NonPathing)
}

// ChangeLoc swaps a loc's type, shape and angle for duration ticks, after
// which it reverts.
func (w *World) ChangeLoc(loc *entity.Loc, typ, shape, angle, duration int) {
	zn := w.zoneOf(&loc.Entity)
	w.changeLocCollision(loc, false)
	loc.Change(typ, shape, angle)
	zn.ChangeLoc(loc)
	w.changeLocCollision(loc, true)
	if duration > 0 {
		loc.SetLifecycle(duration)
		w.tracker.TrackLoc(loc)
	}
}

// RevertLoc restores a changed loc's base appearance.
func (w *World) RevertLoc(loc *entity.Loc) {
	zn := w.zoneOf(&loc.Entity)
	w.changeLocCollision(loc, false)
	loc.Revert()
	zn.ChangeLoc(loc)
	w.changeLocCollision(loc, true)
	w.tracker.Untrack(&loc.NonPathing)
}

// GetLoc finds an active loc of a type on a tile.
func (w *World) GetLoc(level, x, z, typ int) *entity.Loc {
	zn, ok := w.Map.Zones.Lookup(x, z, level)
	if !ok {
		return nil
	}
	return zn.GetLoc(x, z, typ)
}

func (w *World) AnimLoc(loc *entity.Loc, seq int) {
	w.zoneOf(&loc.Entity).AnimLoc(loc, seq)
}

func (w *World) MergeLoc(loc *entity.Loc, p *Player, startCycle, endCycle, south, east, north, west int) {
	w.zoneOf(&loc.Entity).MergeLoc(loc, p.Index, startCycle, endCycle, south, east, north, west)
}

func (w *World) changeLocCollision(loc *entity.Loc, add bool) {
	t := w.Stores.Locs.Get(loc.Type())
	if t == nil || !t.BlockWalk {
		return
	}
	w.Map.ChangeLocCollision(loc.Shape(), loc.Angle(), t.BlockRange, t.Width, t.Length, loc.X, loc.Z, loc.Level, add)
}
