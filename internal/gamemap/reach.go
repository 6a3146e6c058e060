package gamemap

import "github.com/tickworld/server/internal/coord"

// ReachedEntity reports whether any tile of the mover's footprint touches an
// edge of the destination rectangle. Diagonal contact does not count.
func (m *GameMap) ReachedEntity(level, srcX, srcZ, destX, destZ, destWidth, destLength, srcSize int) bool {
	maxX := destX + destWidth - 1
	maxZ := destZ + destLength - 1
	for sx := range srcSize {
		for sz := range srcSize {
			cx, cz := srcX+sx, srcZ+sz
			if (cx >= destX-1 && cx <= maxX+1 && cz >= destZ && cz <= maxZ) ||
				(cz >= destZ-1 && cz <= maxZ+1 && cx >= destX && cx <= maxX) {
				return true
			}
		}
	}
	return false
}

func (m *GameMap) ReachedLoc(level, srcX, srcZ, destX, destZ, destWidth, destLength, srcSize int) bool {
	return m.ReachedEntity(level, srcX, srcZ, destX, destZ, destWidth, destLength, srcSize)
}

func (m *GameMap) ReachedObj(level, srcX, srcZ, destX, destZ, destWidth, destLength, srcSize int) bool {
	return m.ReachedEntity(level, srcX, srcZ, destX, destZ, destWidth, destLength, srcSize)
}

// IsApproached is a rectangle proximity test, not line of sight.
func (m *GameMap) IsApproached(level, srcX, srcZ, destX, destZ, srcWidth, srcLength, destWidth, destLength int) bool {
	return coord.DistanceTo(
		coord.Rect{X: srcX, Z: srcZ, Width: srcWidth, Length: srcLength},
		coord.Rect{X: destX, Z: destZ, Width: destWidth, Length: destLength},
	) <= 1
}
