package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tickworld/server/internal/data"
	"github.com/tickworld/server/internal/entity"
)

const locTree = 1276

func TestTargetTypeByKind(t *testing.T) {
	w := newTestWorld(t, nil)
	goblin := testNpc(npcGoblin, "goblin", 5)
	goblin.Category = 7
	pot := testObj(objPot, "pot", 1, false)
	pot.Category = 3
	w.Stores.Npcs = data.NewTable[data.NpcType]([]data.NpcType{goblin})
	w.Stores.Objs = data.NewTable[data.ObjType]([]data.ObjType{pot})
	w.Stores.Locs = data.NewTable[data.LocType]([]data.LocType{
		{ID: locTree, Debug: "tree", Width: 1, Length: 1, Category: 9},
	})

	n := spawnNpc(t, w, npcGoblin, 3202, 3202, entity.Despawn)
	p, _ := login(t, w, "alice")

	for name, tc := range map[string]struct {
		target   entity.Target
		typeID   int
		category int
	}{
		"npc":         {n, npcGoblin, 7},
		"loc":         {entity.NewLoc(0, 3204, 3204, 1, 1, entity.Despawn, locTree, 10, 0), locTree, 9},
		"obj":         {entity.NewObj(0, 3205, 3205, entity.Despawn, objPot, 1), objPot, 3},
		"unknown obj": {entity.NewObj(0, 3205, 3205, entity.Despawn, 9999, 1), 9999, -1},
		"player":      {p, -1, -1},
	} {
		t.Run(name, func(t *testing.T) {
			typeID, category := w.targetType(tc.target)
			assert.Equal(t, tc.typeID, typeID)
			assert.Equal(t, tc.category, category)
		})
	}
}
