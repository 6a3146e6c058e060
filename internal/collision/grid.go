package collision

import "github.com/tickworld/server/internal/coord"

const zoneTiles = 64

// Grid is a sparse map of zone blocks. Reads from an unallocated zone are Open.
// Not safe for concurrent mutation; it is owned by the tick goroutine.
type Grid struct {
	zones map[int32]*[zoneTiles]int32
}

func NewGrid() *Grid {
	return &Grid{zones: make(map[int32]*[zoneTiles]int32)}
}

func zoneKey(level, x, z int) int32 {
	return coord.Pack(level, x&^7, z&^7)
}

func tileIndex(x, z int) int {
	return (x&7)*8 + (z & 7)
}

func (g *Grid) block(level, x, z int, alloc bool) *[zoneTiles]int32 {
	key := zoneKey(level, x, z)
	b := g.zones[key]
	if b == nil && alloc {
		b = new([zoneTiles]int32)
		g.zones[key] = b
	}
	return b
}

func (g *Grid) Get(level, x, z int) int32 {
	b := g.block(level, x, z, false)
	if b == nil {
		return Open
	}
	return b[tileIndex(x, z)]
}

func (g *Grid) Set(level, x, z int, flags int32) {
	g.block(level, x, z, true)[tileIndex(x, z)] = flags
}

func (g *Grid) Add(level, x, z int, flags int32) {
	g.block(level, x, z, true)[tileIndex(x, z)] |= flags
}

func (g *Grid) Remove(level, x, z int, flags int32) {
	b := g.block(level, x, z, true)
	b[tileIndex(x, z)] &^= flags
}

// Allocate touches the zone holding (x,z) so IsAllocated reports it as loaded.
func (g *Grid) Allocate(level, x, z int) {
	g.block(level, x, z, true)
}

func (g *Grid) IsAllocated(level, x, z int) bool {
	return g.block(level, x, z, false) != nil
}

// Zones reports how many zone blocks have been allocated.
func (g *Grid) Zones() int { return len(g.zones) }
