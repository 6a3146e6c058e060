// Package gamemap owns the collision grid and zone map and answers the
// movement questions entities ask: can I step there, how do I get there,
// am I close enough.
package gamemap

import (
	"go.uber.org/zap"

	"github.com/tickworld/server/internal/collision"
	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/zone"
)

// GameMap is owned by the tick goroutine. None of its methods are safe for
// concurrent use.
type GameMap struct {
	Collision *collision.Grid
	Zones     *zone.Map

	// Spawn records collected while loading. The world turns them into
	// entities and then clears them.
	NpcSpawns []NpcSpawn
	ObjSpawns []ObjSpawn

	members bool
	log     *zap.Logger
	search  *search
}

// NpcSpawn is a map-placed npc awaiting construction.
type NpcSpawn struct {
	Level int
	X     int
	Z     int
	Type  int
}

// ObjSpawn is a map-placed ground item awaiting construction.
type ObjSpawn struct {
	Level int
	X     int
	Z     int
	Type  int
	Count int
}

func New(members bool, log *zap.Logger) *GameMap {
	return &GameMap{
		Collision: collision.NewGrid(),
		Zones:     zone.NewMap(),
		members:   members,
		log:       log,
		search:    newSearch(),
	}
}

var _ entity.Navigator = (*GameMap)(nil)

func (m *GameMap) Members() bool { return m.members }

// Zone returns the zone holding the tile, allocating it on first use.
func (m *GameMap) Zone(x, z, level int) *zone.Zone {
	return m.Zones.Zone(x, z, level)
}

func (m *GameMap) IsFlagged(level, x, z int, flag int32) bool {
	return m.Collision.Get(level, x, z)&flag != 0
}

func (m *GameMap) IsZoneAllocated(level, x, z int) bool {
	return m.Collision.IsAllocated(level, x, z)
}

func (m *GameMap) ChangeNpcCollision(size, x, z, level int, add bool) {
	m.changeFootprint(size, x, z, level, collision.Npc, add)
}

func (m *GameMap) ChangePlayerCollision(size, x, z, level int, add bool) {
	m.changeFootprint(size, x, z, level, collision.Player, add)
}

func (m *GameMap) changeFootprint(size, x, z, level int, flag int32, add bool) {
	for dx := range size {
		for dz := range size {
			m.apply(level, x+dx, z+dz, flag, add)
		}
	}
}

func (m *GameMap) apply(level, x, z int, flag int32, add bool) {
	if add {
		m.Collision.Add(level, x, z, flag)
	} else {
		m.Collision.Remove(level, x, z, flag)
	}
}

// ChangeLocCollision stamps or clears the blocking contributed by a loc.
// Walls (0-3) and centrepieces (10-11) block. Wall decoration, roofs and
// ground decoration do not.
func (m *GameMap) ChangeLocCollision(shape, angle int, blockRange bool, width, length, x, z, level int, add bool) {
	switch {
	case shape >= 0 && shape <= 3:
		m.changeWallCollision(x, z, level, angle, shape, blockRange, add)
	case shape == 10 || shape == 11:
		m.changeLocFullCollision(x, z, level, width, length, angle, blockRange, add)
	}
}

func (m *GameMap) changeLocFullCollision(x, z, level, width, length, angle int, blockRange, add bool) {
	if angle == 1 || angle == 3 {
		width, length = length, width
	}
	for dx := range width {
		for dz := range length {
			m.apply(level, x+dx, z+dz, collision.Loc, add)
			if blockRange {
				m.apply(level, x+dx, z+dz, collision.LocProj, add)
			}
		}
	}
}

// wallSide is one flag on one tile relative to the wall's anchor.
type wallSide struct {
	dx, dz int
	flag   int32
}

// wallSides lists, per shape and angle, every tile edge a wall blocks. Each
// blocked edge appears from both sides.
var wallSides = [4][4][]wallSide{
	// straight
	{
		{{0, 0, collision.WallWest}, {-1, 0, collision.WallEast}},
		{{0, 0, collision.WallNorth}, {0, 1, collision.WallSouth}},
		{{0, 0, collision.WallEast}, {1, 0, collision.WallWest}},
		{{0, 0, collision.WallSouth}, {0, -1, collision.WallNorth}},
	},
	// diagonal corner
	{
		{{0, 0, collision.WallNorthWest}, {-1, 1, collision.WallSouthEast}},
		{{0, 0, collision.WallNorthEast}, {1, 1, collision.WallSouthWest}},
		{{0, 0, collision.WallSouthEast}, {1, -1, collision.WallNorthWest}},
		{{0, 0, collision.WallSouthWest}, {-1, -1, collision.WallNorthEast}},
	},
	// L corner
	{
		{{0, 0, collision.WallNorth | collision.WallWest}, {-1, 0, collision.WallEast}, {0, 1, collision.WallSouth}},
		{{0, 0, collision.WallNorth | collision.WallEast}, {0, 1, collision.WallSouth}, {1, 0, collision.WallWest}},
		{{0, 0, collision.WallSouth | collision.WallEast}, {1, 0, collision.WallWest}, {0, -1, collision.WallNorth}},
		{{0, 0, collision.WallSouth | collision.WallWest}, {0, -1, collision.WallNorth}, {-1, 0, collision.WallEast}},
	},
	// square corner
	{
		{{0, 0, collision.WallNorthWest}, {-1, 1, collision.WallSouthEast}},
		{{0, 0, collision.WallNorthEast}, {1, 1, collision.WallSouthWest}},
		{{0, 0, collision.WallSouthEast}, {1, -1, collision.WallNorthWest}},
		{{0, 0, collision.WallSouthWest}, {-1, -1, collision.WallNorthEast}},
	},
}

func (m *GameMap) changeWallCollision(x, z, level, angle, shape int, blockRange, add bool) {
	for _, s := range wallSides[shape][angle&3] {
		m.apply(level, x+s.dx, z+s.dz, s.flag, add)
		if blockRange {
			m.apply(level, x+s.dx, z+s.dz, projOf(s.flag), add)
		}
	}
}

// projOf maps hard wall bits to their projectile-blocking counterparts.
func projOf(flag int32) int32 {
	return (flag & 0xff) << 9
}

// Relocate moves a pathing entity's zone membership.
func (m *GameMap) Relocate(kind entity.Kind, id, fromLevel, fromX, fromZ, toLevel, toX, toZ int) {
	from := zone.Index(fromX, fromZ, fromLevel)
	to := zone.Index(toX, toZ, toLevel)
	if from == to {
		return
	}
	switch kind {
	case entity.KindPlayer:
		m.Zones.ByIndex(from).LeavePlayer(id)
		m.Zones.ByIndex(to).EnterPlayer(id)
	case entity.KindNpc:
		m.Zones.ByIndex(from).LeaveNpc(id)
		m.Zones.ByIndex(to).EnterNpc(id)
	}
}
