package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadTableAppliesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "npcs.yaml", `npcs:
  - id: 1
    debug_name: man
    hitpoints: 7
  - id: 3
    debug_name: cow
    wander_range: 2
    give_chase: false
`)
	tbl, err := LoadTable[NpcType](path, "npcs")
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Count())

	man := tbl.Get(1)
	require.NotNil(t, man)
	assert.Equal(t, 7, man.Hitpoints)
	assert.Equal(t, 1, man.Attack)
	assert.Equal(t, 100, man.RespawnRate)
	assert.True(t, man.GiveChase)

	cow := tbl.ByName("cow")
	require.NotNil(t, cow)
	assert.Equal(t, 2, cow.WanderRange)
	assert.False(t, cow.GiveChase)
	assert.Equal(t, 3, tbl.ID("cow"))
	assert.Equal(t, -1, tbl.ID("goblin"))
	assert.Nil(t, tbl.Get(2))
}

func TestTableAllIsOrdered(t *testing.T) {
	tbl := NewTable([]ObjType{{ID: 995}, {ID: 1}, {ID: 526}})
	var ids []int
	for id := range tbl.All() {
		ids = append(ids, id)
	}
	assert.Equal(t, []int{1, 526, 995}, ids)
}

func TestLoadTableErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadTable[LocType](filepath.Join(dir, "missing.yaml"), "locs")
	assert.True(t, IsMissing(err))

	bad := writeFile(t, dir, "bad.yaml", "locs: [")
	_, err = LoadTable[LocType](bad, "locs")
	assert.Error(t, err)
	assert.False(t, IsMissing(err))

	wrongKey := writeFile(t, dir, "wrong.yaml", "objs: []")
	_, err = LoadTable[LocType](wrongKey, "locs")
	assert.ErrorContains(t, err, "missing")
}

func TestLoadStoresToleratesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "invs.yaml", `invs:
  - id: 10
    debug_name: generalshop
    scope: 2
    size: 40
    stack_all: true
    restock: true
    stock:
      - {obj: 1931, count: 5, rate: 100}
`)
	s, err := LoadStores(dir, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, s.Objs.Count())

	shop := s.Invs.ByName("generalshop")
	require.NotNil(t, shop)
	stock, ok := shop.StockFor(1931)
	require.True(t, ok)
	assert.Equal(t, Stock{Obj: 1931, Count: 5, Rate: 100}, stock)
	_, ok = shop.StockFor(1)
	assert.False(t, ok)
	assert.True(t, shop.Protect)
}

func TestLocDefaultsBlock(t *testing.T) {
	var l LocType
	l.setDefaults()
	assert.True(t, l.BlockWalk)
	assert.Equal(t, 1, l.Width)
}

func TestNilTableIsEmpty(t *testing.T) {
	var tbl *Table[ObjType]
	assert.Nil(t, tbl.Get(1))
	assert.Equal(t, 0, tbl.Count())
	assert.Equal(t, -1, tbl.ID("coins"))
}
