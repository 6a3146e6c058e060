package world

import (
	"github.com/tickworld/server/internal/coord"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/zone"
)

// A player sees the 7x7 block of zones around the zone they stand in. The
// client map is rebuilt once they move buildRebuild zones from its centre.
const (
	buildRadius  = 3
	buildRebuild = 4
	// InfoRange is how far away, in tiles, other entities appear in info.
	InfoRange = 15
)

// BuildArea is one player's view of the world: the loaded map origin, the
// zones they receive updates from and the entities their client knows.
// Accessed only from the tick goroutine.
type BuildArea struct {
	OriginX int
	OriginZ int

	centreX int
	centreZ int
	level   int
	built   bool
	rebuild bool // a rebuild_normal is owed this tick
	active  map[int32]*zone.Zone
	loaded  map[int32]struct{} // zones the client holds a full copy of
	players map[int]struct{}
	npcs    map[int]struct{}
}

func newBuildArea() *BuildArea {
	return &BuildArea{
		level:   -1,
		active:  make(map[int32]*zone.Zone),
		loaded:  make(map[int32]struct{}),
		players: make(map[int]struct{}),
		npcs:    make(map[int]struct{}),
	}
}

// Reset forgets everything the client was told, forcing a rebuild and full
// zone and info resync. Used when a player reconnects.
func (a *BuildArea) Reset() {
	a.built = false
	a.level = -1
	clear(a.active)
	clear(a.loaded)
	clear(a.players)
	clear(a.npcs)
}

// NeedsRebuild reports whether a player standing on x,z is too far from the
// loaded map's centre.
func (a *BuildArea) NeedsRebuild(x, z int) bool {
	if !a.built {
		return true
	}
	dx := coord.Zone(x) - a.centreX
	dz := coord.Zone(z) - a.centreZ
	return abs(dx) >= buildRebuild || abs(dz) >= buildRebuild
}

func (a *BuildArea) IsLoaded(idx int32) bool {
	_, ok := a.loaded[idx]
	return ok
}

func (a *BuildArea) markLoaded(idx int32) { a.loaded[idx] = struct{}{} }

// ActiveZones returns the zones currently in view.
func (a *BuildArea) ActiveZones() map[int32]*zone.Zone { return a.active }

// KnowsPlayer reports whether the client already had pid last tick.
func (a *BuildArea) KnowsPlayer(pid int) bool {
	_, ok := a.players[pid]
	return ok
}

func (a *BuildArea) KnowsNpc(nid int) bool {
	_, ok := a.npcs[nid]
	return ok
}

// UpdateBuildArea recentres a player's map when needed and refreshes the
// set of active zones. Changing level discards every loaded zone.
func (w *World) UpdateBuildArea(p *Player) {
	a := p.area
	if a.NeedsRebuild(p.X, p.Z) {
		a.centreX = coord.Zone(p.X)
		a.centreZ = coord.Zone(p.Z)
		a.OriginX = coord.ZoneCenter(p.X) << 3
		a.OriginZ = coord.ZoneCenter(p.Z) << 3
		a.built = true
		a.rebuild = true
		clear(a.loaded)
	}
	if a.level != p.Level {
		a.level = p.Level
		clear(a.loaded)
	}

	clear(a.active)
	cx, cz := coord.Zone(p.X), coord.Zone(p.Z)
	for zx := cx - buildRadius; zx <= cx+buildRadius; zx++ {
		for zz := cz - buildRadius; zz <= cz+buildRadius; zz++ {
			if zx < 0 || zz < 0 {
				continue
			}
			zn := w.Map.Zone(zx<<3, zz<<3, p.Level)
			a.active[zn.Index] = zn
		}
	}
	for idx := range a.loaded {
		if _, ok := a.active[idx]; !ok {
			delete(a.loaded, idx)
		}
	}
}

// writeRebuild sends the pending map rebuild, if any.
func (a *BuildArea) writeRebuild(p *Player) {
	if !a.rebuild {
		return
	}
	a.rebuild = false
	p.Write(packet.RebuildNormal{ZoneX: a.centreX, ZoneZ: a.centreZ, OriginX: a.OriginX, OriginZ: a.OriginZ})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
