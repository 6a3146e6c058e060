package gamemap

import (
	"github.com/tickworld/server/internal/collision"
	"github.com/tickworld/server/internal/coord"
)

const (
	// searchSize is the side of the square window searched around the mover.
	searchSize = 128
	// maxExpansions bounds how many tiles a single search may visit.
	maxExpansions = 4096
	// MaxPathLength matches the waypoint buffer of a pathing entity.
	MaxPathLength = 25
)

// neighbour order is fixed so equal-length routes always resolve the same way.
var neighbours = [8]struct{ dx, dz int }{
	{0, 1}, {0, -1}, {1, 0}, {-1, 0},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// search is reusable scratch for FindPath. visited holds the epoch a tile was
// reached in, so clearing between searches is a counter bump.
type search struct {
	visited [searchSize * searchSize]uint32
	parent  [searchSize * searchSize]int32
	queue   []int32
	epoch   uint32
}

func newSearch() *search {
	return &search{queue: make([]int32, 0, maxExpansions)}
}

func (s *search) begin() {
	s.epoch++
	if s.epoch == 0 {
		clear(s.visited[:])
		s.epoch = 1
	}
	s.queue = s.queue[:0]
}

// CanTravel reports whether a size x size mover at (x,z) may step by (dx,dz).
func (m *GameMap) CanTravel(level, x, z, dx, dz, size int, extra int32, ct collision.Type) bool {
	block := ct.BlockFlags() | extra
	for sx := range size {
		for sz := range size {
			curX, curZ := x+sx, z+sz
			if m.Collision.Get(level, curX+dx, curZ+dz)&block != 0 {
				return false
			}
			if m.Collision.Get(level, curX, curZ)&edgeFlags(dx, dz) != 0 {
				return false
			}
		}
	}
	return true
}

// edgeFlags returns the wall bits on the source tile that stop a step in the
// given direction.
func edgeFlags(dx, dz int) int32 {
	var f int32
	switch dx {
	case -1:
		f |= collision.WallWest
	case 1:
		f |= collision.WallEast
	}
	switch dz {
	case -1:
		f |= collision.WallSouth
	case 1:
		f |= collision.WallNorth
	}
	switch {
	case dx == -1 && dz == 1:
		f |= collision.WallNorthWest
	case dx == 1 && dz == 1:
		f |= collision.WallNorthEast
	case dx == 1 && dz == -1:
		f |= collision.WallSouthEast
	case dx == -1 && dz == -1:
		f |= collision.WallSouthWest
	}
	return f
}

func (m *GameMap) canStep(level, x, z, dx, dz, size int) bool {
	if dx != 0 && dz != 0 {
		return m.CanTravel(level, x, z, dx, 0, size, 0, collision.Normal) &&
			m.CanTravel(level, x, z, 0, dz, size, 0, collision.Normal) &&
			m.CanTravel(level, x+dx, z, 0, dz, size, 0, collision.Normal) &&
			m.CanTravel(level, x, z+dz, dx, 0, size, 0, collision.Normal)
	}
	return m.CanTravel(level, x, z, dx, dz, size, 0, collision.Normal)
}

// FindPath searches breadth first from src toward dest. A non-zero
// destWidth makes dest a footprint to stand next to rather than a tile to
// stand on. When dest cannot be reached the route ends at the visited tile
// closest to it.
//
// The result lists turning points destination first, at most MaxPathLength
// long; when longer, the entries nearest the mover are kept. An empty slice
// means stay put.
func (m *GameMap) FindPath(level, srcX, srcZ, destX, destZ, srcSize, destWidth, destLength int) []int32 {
	srcSize = max(srcSize, 1)
	if srcX == destX && srcZ == destZ && destWidth == 0 {
		return nil
	}

	s := m.search
	s.begin()
	baseX, baseZ := srcX-searchSize/2, srcZ-searchSize/2
	local := func(x, z int) int32 { return int32((x-baseX)*searchSize + (z - baseZ)) }

	reached := func(x, z int) bool {
		if destWidth > 0 {
			return m.ReachedEntity(level, x, z, destX, destZ, destWidth, destLength, srcSize)
		}
		return x == destX && z == destZ
	}
	distance := func(x, z int) int {
		return coord.DistanceTo(
			coord.Rect{X: x, Z: z, Width: srcSize, Length: srcSize},
			coord.Rect{X: destX, Z: destZ, Width: max(destWidth, 1), Length: max(destLength, 1)},
		)
	}

	start := local(srcX, srcZ)
	s.visited[start] = s.epoch
	s.parent[start] = -1
	s.queue = append(s.queue, start)

	found := int32(-1)
	for head := 0; head < len(s.queue); head++ {
		cur := s.queue[head]
		cx, cz := int(cur)/searchSize+baseX, int(cur)%searchSize+baseZ
		if reached(cx, cz) {
			found = cur
			break
		}
		if len(s.queue) >= maxExpansions {
			continue
		}
		for _, n := range neighbours {
			nx, nz := cx+n.dx, cz+n.dz
			if nx-baseX < 0 || nx-baseX >= searchSize || nz-baseZ < 0 || nz-baseZ >= searchSize {
				continue
			}
			idx := local(nx, nz)
			if s.visited[idx] == s.epoch || !m.canStep(level, cx, cz, n.dx, n.dz, srcSize) {
				continue
			}
			s.visited[idx] = s.epoch
			s.parent[idx] = cur
			s.queue = append(s.queue, idx)
		}
	}

	if found == -1 {
		best := -1
		for _, idx := range s.queue {
			x, z := int(idx)/searchSize+baseX, int(idx)%searchSize+baseZ
			if d := distance(x, z); best == -1 || d < best {
				best = d
				found = idx
			}
		}
	}
	if found == start {
		return nil
	}
	return s.backtrace(found, level, baseX, baseZ)
}

// backtrace walks parents from the end tile to the start and keeps the
// tiles where direction changes, plus the end tile itself.
func (s *search) backtrace(end int32, level, baseX, baseZ int) []int32 {
	var tiles []int32
	for idx := end; idx != -1; idx = s.parent[idx] {
		tiles = append(tiles, idx)
	}
	// tiles[len-1] is the start tile.
	path := make([]int32, 0, min(len(tiles)-1, MaxPathLength))
	dirOf := func(from, to int32) int32 { return to - from }
	for i := 0; i < len(tiles)-1; i++ {
		if i > 0 && dirOf(tiles[i+1], tiles[i]) == dirOf(tiles[i], tiles[i-1]) {
			continue
		}
		x, z := int(tiles[i])/searchSize+baseX, int(tiles[i])%searchSize+baseZ
		path = append(path, coord.Pack(level, x, z))
	}
	if len(path) > MaxPathLength {
		path = path[len(path)-MaxPathLength:]
	}
	return path
}

// FindNaivePath heads straight for the destination and lets each step
// resolve collision on its own.
func (m *GameMap) FindNaivePath(level, srcX, srcZ, destX, destZ int) []int32 {
	if srcX == destX && srcZ == destZ {
		return nil
	}
	return []int32{coord.Pack(level, destX, destZ)}
}
