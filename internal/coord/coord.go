// Package coord packs world positions into scalar keys and provides the
// direction and distance helpers shared by the map, zones and entities.
package coord

// Direction is one of the eight compass steps. -1 means no movement.
type Direction int

const (
	None Direction = -1

	NorthWest Direction = 0
	North     Direction = 1
	NorthEast Direction = 2
	West      Direction = 3
	East      Direction = 4
	SouthWest Direction = 5
	South     Direction = 6
	SouthEast Direction = 7
)

var (
	deltaX = [8]int{-1, 0, 1, -1, 1, -1, 0, 1}
	deltaZ = [8]int{1, 1, 1, 0, 0, -1, -1, -1}
)

// Coord is an absolute tile position.
type Coord struct {
	Level int
	X     int
	Z     int
}

// Pack encodes (level,x,z) into 30 bits: z in bits 0-13, x in 14-27, level in 28-29.
func Pack(level, x, z int) int32 {
	return int32((z & 0x3fff) | ((x & 0x3fff) << 14) | ((level & 0x3) << 28))
}

func Unpack(packed int32) Coord {
	v := int(packed)
	return Coord{
		Level: (v >> 28) & 0x3,
		X:     (v >> 14) & 0x3fff,
		Z:     v & 0x3fff,
	}
}

func (c Coord) Pack() int32 { return Pack(c.Level, c.X, c.Z) }

// Zone returns the zone coordinate (tile >> 3).
func Zone(v int) int { return v >> 3 }

// ZoneCenter is the zone coordinate six zones below v's zone, used as a build area origin.
func ZoneCenter(v int) int { return (v >> 3) - 6 }

// ZoneOrigin is the first tile of the zone containing v.
func ZoneOrigin(v int) int { return (v >> 3) << 3 }

// PackZoneCoord packs the tile's position inside its 8x8 zone.
func PackZoneCoord(x, z int) int {
	return ((x & 0x7) << 4) | (z & 0x7)
}

// Fine converts a tile plus footprint size into the doubled "fine" space
// used for facing, so the centre of a footprint is addressable.
func Fine(v, size int) int { return v*2 + size }

func DeltaX(dir Direction) int {
	if dir < 0 || dir > 7 {
		return 0
	}
	return deltaX[dir]
}

func DeltaZ(dir Direction) int {
	if dir < 0 || dir > 7 {
		return 0
	}
	return deltaZ[dir]
}

func MoveX(x int, dir Direction) int { return x + DeltaX(dir) }
func MoveZ(z int, dir Direction) int { return z + DeltaZ(dir) }

// Face returns the direction from src to dst, or None when they are equal.
func Face(srcX, srcZ, dstX, dstZ int) Direction {
	dx := sign(dstX - srcX)
	dz := sign(dstZ - srcZ)
	switch {
	case dx == -1 && dz == 1:
		return NorthWest
	case dx == 0 && dz == 1:
		return North
	case dx == 1 && dz == 1:
		return NorthEast
	case dx == -1 && dz == 0:
		return West
	case dx == 1 && dz == 0:
		return East
	case dx == -1 && dz == -1:
		return SouthWest
	case dx == 0 && dz == -1:
		return South
	case dx == 1 && dz == -1:
		return SouthEast
	}
	return None
}

// Rect is a footprint anchored at its south-west tile.
type Rect struct {
	X, Z          int
	Width, Length int
}

// DistanceTo is the Chebyshev distance between the closest tiles of two footprints.
func DistanceTo(a, b Rect) int {
	return max(gap(a.X, a.X+a.Width-1, b.X, b.X+b.Width-1), gap(a.Z, a.Z+a.Length-1, b.Z, b.Z+b.Length-1))
}

// DistanceToSW is the Chebyshev distance between the south-west anchors.
func DistanceToSW(a, b Rect) int {
	return max(abs(a.X-b.X), abs(a.Z-b.Z))
}

// Intersects reports whether two footprints overlap.
func Intersects(a, b Rect) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Z < b.Z+b.Length && b.Z < a.Z+a.Length
}

func gap(aLo, aHi, bLo, bHi int) int {
	switch {
	case aHi < bLo:
		return bLo - aHi
	case bHi < aLo:
		return aLo - bHi
	}
	return 0
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
