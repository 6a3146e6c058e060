package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnallocatedReadsOpen(t *testing.T) {
	g := NewGrid()
	assert.Equal(t, Open, g.Get(0, 3200, 3200))
	assert.False(t, g.IsAllocated(0, 3200, 3200))
	assert.Zero(t, g.Zones())
}

func TestAddRemove(t *testing.T) {
	g := NewGrid()
	g.Add(1, 3201, 3203, Loc)
	g.Add(1, 3201, 3203, WallNorth)
	assert.Equal(t, Loc|WallNorth, g.Get(1, 3201, 3203))
	assert.True(t, g.IsAllocated(1, 3207, 3207))
	assert.False(t, g.IsAllocated(0, 3201, 3203))

	g.Remove(1, 3201, 3203, Loc)
	assert.Equal(t, WallNorth, g.Get(1, 3201, 3203))
	assert.Equal(t, Open, g.Get(1, 3202, 3203))

	g.Set(1, 3201, 3203, Floor)
	assert.Equal(t, Floor, g.Get(1, 3201, 3203))
	assert.Equal(t, 1, g.Zones())
}

func TestBlockFlags(t *testing.T) {
	assert.Equal(t, BlockWalk, Normal.BlockFlags())
	assert.Equal(t, BlockWalk|FloorDecoration, Blocked.BlockFlags())
	assert.NotZero(t, BlockNpc&Npc)
	assert.Zero(t, BlockNpc&Player)
	assert.NotZero(t, BlockPlayer&Player)
}
