package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackRoundTrip(t *testing.T) {
	for _, c := range []Coord{{0, 0, 0}, {3, 16383, 16383}, {1, 3200, 3201}, {2, 12, 9000}} {
		assert.Equal(t, c, Unpack(Pack(c.Level, c.X, c.Z)))
	}
}

func TestFaceAndDelta(t *testing.T) {
	assert.Equal(t, None, Face(5, 5, 5, 5))
	assert.Equal(t, North, Face(5, 5, 5, 9))
	assert.Equal(t, SouthWest, Face(5, 5, 1, 2))
	for dir := NorthWest; dir <= SouthEast; dir++ {
		x, z := MoveX(10, dir), MoveZ(10, dir)
		assert.Equal(t, dir, Face(10, 10, x, z))
	}
	assert.Equal(t, 0, DeltaX(None))
}

func TestDistance(t *testing.T) {
	a := Rect{X: 0, Z: 0, Width: 1, Length: 1}
	b := Rect{X: 3, Z: 1, Width: 2, Length: 2}
	assert.Equal(t, 3, DistanceTo(a, b))
	assert.Equal(t, 2, DistanceTo(b, Rect{X: 6, Z: 2, Width: 1, Length: 1}))
	assert.Equal(t, 0, DistanceTo(b, Rect{X: 4, Z: 2, Width: 1, Length: 1}))
	assert.True(t, Intersects(b, Rect{X: 4, Z: 2, Width: 1, Length: 1}))
	assert.False(t, Intersects(a, b))
}

func TestZoneHelpers(t *testing.T) {
	assert.Equal(t, 400, Zone(3200))
	assert.Equal(t, 3200, ZoneOrigin(3207))
	assert.Equal(t, (7<<4)|1, PackZoneCoord(3207, 3201))
}
