// Package collision stores per-tile blocking flags in lazily allocated
// 8x8 zone blocks.
package collision

// Flag bits. Walls come in three variants: hard (walk), projectile and route.
const (
	Open int32 = 0x0

	WallNorthWest int32 = 0x1
	WallNorth     int32 = 0x2
	WallNorthEast int32 = 0x4
	WallEast      int32 = 0x8
	WallSouthEast int32 = 0x10
	WallSouth     int32 = 0x20
	WallSouthWest int32 = 0x40
	WallWest      int32 = 0x80
	Loc           int32 = 0x100

	WallNorthWestProj int32 = 0x200
	WallNorthProj     int32 = 0x400
	WallNorthEastProj int32 = 0x800
	WallEastProj      int32 = 0x1000
	WallSouthEastProj int32 = 0x2000
	WallSouthProj     int32 = 0x4000
	WallSouthWestProj int32 = 0x8000
	WallWestProj      int32 = 0x10000
	LocProj           int32 = 0x20000

	FloorDecoration int32 = 0x40000
	Npc             int32 = 0x80000
	Player          int32 = 0x100000
	Floor           int32 = 0x200000

	WallNorthWestRoute int32 = 0x400000
	WallNorthRoute     int32 = 0x800000
	WallNorthEastRoute int32 = 0x1000000
	WallEastRoute      int32 = 0x2000000
	WallSouthEastRoute int32 = 0x4000000
	WallSouthRoute     int32 = 0x8000000
	WallSouthWestRoute int32 = 0x10000000
	WallWestRoute      int32 = 0x20000000
	LocRoute           int32 = 0x40000000

	BlockWalk   = Loc | FloorDecoration | Floor
	BlockNpc    = BlockWalk | Npc
	BlockPlayer = BlockWalk | Player

	// Null marks a mover that never contributes collision.
	Null int32 = -1
)

// Type selects which category flags a mover treats as blocking.
type Type int

const (
	Normal Type = iota
	Blocked
	Indoors
	Outdoors
	LineOfSight
)

func (t Type) String() string {
	switch t {
	case Normal:
		return "NORMAL"
	case Blocked:
		return "BLOCKED"
	case Indoors:
		return "INDOORS"
	case Outdoors:
		return "OUTDOORS"
	case LineOfSight:
		return "LINE_OF_SIGHT"
	}
	return "UNKNOWN"
}

// BlockFlags returns the category mask a mover of this type cannot enter.
func (t Type) BlockFlags() int32 {
	if t == Blocked {
		return BlockWalk | FloorDecoration
	}
	return BlockWalk
}
