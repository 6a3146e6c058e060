package scripting

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tickworld/server/internal/config"
	"github.com/tickworld/server/internal/data"
	"github.com/tickworld/server/internal/gamemap"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/script"
	"github.com/tickworld/server/internal/world"
)

type fakeClient struct {
	out []packet.Message
}

func (c *fakeClient) Receive() ([]byte, bool)  { return nil, false }
func (c *fakeClient) Write(msg packet.Message) { c.out = append(c.out, msg) }
func (c *fakeClient) Flush() error             { return nil }
func (c *fakeClient) IsConnected() bool        { return true }
func (c *fakeClient) Close()                   {}
func (c *fakeClient) RemoteAddr() string       { return "127.0.0.1:40000" }

func testStores() *data.Stores {
	return &data.Stores{
		Objs: data.NewTable[data.ObjType]([]data.ObjType{
			{ID: world.ObjCoins, Debug: "coins", Name: "Coins", Stackable: true, Cost: 1, Category: -1, WearPos: -1, CertLink: -1, CertTemplate: -1},
			{ID: 2309, Debug: "bread", Name: "Bread", Cost: 12, Category: -1, WearPos: -1, CertLink: -1, CertTemplate: -1},
		}),
		Npcs: data.NewTable[data.NpcType]([]data.NpcType{{
			ID: 520, Debug: "shopkeeper", Name: "Shop keeper", Size: 1, VisLevel: -1, HuntMode: -1,
			DefaultMode: int(world.ModeNone), Timer: -1, Hitpoints: 10, Category: -1, MaxRange: 7, AttackRange: 1,
		}}),
		Locs: data.NewTable[data.LocType](nil),
		Invs: data.NewTable[data.InvType]([]data.InvType{{
			ID: 1, Debug: "general_store", Scope: data.ScopeShared, Size: 10, SellPct: 100, BuyPct: 40,
			Stock: []data.Stock{{Obj: 2309, Count: 3, Rate: 50}},
		}}),
		Hunts: data.NewTable[data.HuntType](nil),
	}
}

func newWorld(t *testing.T, stores *data.Stores) *world.World {
	t.Helper()
	m := gamemap.New(true, zap.NewNop())
	for x := 3136; x < 3264; x += 8 {
		for z := 3136; z < 3264; z += 8 {
			m.Collision.Allocate(0, x, z)
		}
	}
	return world.New(world.Options{
		Config: config.WorldConfig{
			MaxPlayers: 4, MaxNpcs: 8, TimeoutIdle: 75, TimeoutNoResponse: 100,
			TimeoutNoConnection: 50, AutosaveTicks: 500, StartX: 3200, StartZ: 3200,
		},
		Map:    m,
		Stores: stores,
		Rand:   rand.New(rand.NewSource(1)),
		Log:    zap.NewNop(),
	})
}

func writeScript(t *testing.T, dir, name, src string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
}

func load(t *testing.T, stores *data.Stores, src string) *Engine {
	t.Helper()
	dir := t.TempDir()
	writeScript(t, dir, "test.lua", src)
	e, err := Load(dir, stores, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func login(t *testing.T, w *world.World, name string) (*world.Player, *fakeClient) {
	t.Helper()
	c := &fakeClient{}
	p, err := w.Login(world.LoginRequest{Username: name, Client: c})
	require.NoError(t, err)
	require.NoError(t, p.FlushOut())
	c.out = nil
	return p, c
}

func games(t *testing.T, p *world.Player, c *fakeClient) []string {
	t.Helper()
	require.NoError(t, p.FlushOut())
	var out []string
	for _, m := range c.out {
		if g, ok := m.(packet.MessageGame); ok {
			out = append(out, g.Text)
		}
	}
	c.out = nil
	return out
}

func run(w *world.World, p *world.Player, h script.Handler[*world.ScriptContext], trig script.Trigger) {
	h(&world.ScriptContext{World: w, Trigger: trig, Self: p, Player: p, LastInt: -1})
}

func TestLoadWalksSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.lua", `on_global("login", function(ctx) end)`)
	writeScript(t, dir, "npc/b.lua", `on("opnpc1", "shopkeeper", function(ctx) end)`)
	writeScript(t, dir, "notes.txt", `not lua`)

	e, err := Load(dir, testStores(), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 2, e.Handlers())
	_, ok := e.Scripts.GetSpecific(script.OpNpc1, 520)
	assert.True(t, ok)
	_, ok = e.Scripts.Get(script.Login, -1, -1)
	assert.True(t, ok)
}

func TestLoadMissingDirIsEmpty(t *testing.T) {
	e, err := Load(filepath.Join(t.TempDir(), "absent"), nil, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	assert.Zero(t, e.Handlers())
}

func TestLoadRejectsBadRegistrations(t *testing.T) {
	for name, src := range map[string]string{
		"unknown trigger": `on_global("opnpc9", function(ctx) end)`,
		"unknown subject": `on("opnpc1", "dragon", function(ctx) end)`,
		"syntax":          `on_global("login", function(ctx)`,
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeScript(t, dir, "bad.lua", src)
			_, err := Load(dir, testStores(), zap.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestHandlerUsesPlayerAPI(t *testing.T) {
	stores := testStores()
	e := load(t, stores, `
on_global("login", function(ctx)
  ctx:mes("Hi " .. ctx:name())
  ctx:inv_add("coins", 25)
  ctx:inv_add(2309, 2)
  ctx:setvar(1, ctx:getvar(1) + 7)
  ctx:give_xp("attack", 1000)
  local x, z, level = ctx:coord()
  ctx:mes(x .. "," .. z .. "," .. level)
end)`)
	w := newWorld(t, stores)
	p, c := login(t, w, "alice")

	h, ok := e.Scripts.Get(script.Login, -1, -1)
	require.True(t, ok)
	run(w, p, h, script.Login)

	assert.Equal(t, []string{"Hi Alice", "3200,3200,0"}, games(t, p, c))
	assert.Equal(t, 25, p.Inv(world.InvBackpack).ItemCount(world.ObjCoins))
	assert.Equal(t, 2, p.Inv(world.InvBackpack).ItemCount(2309))
	assert.Equal(t, 7, p.GetVar(1))
	assert.Equal(t, 1000, p.Stats[world.StatAttack])
}

func TestHandlerErrorIsContained(t *testing.T) {
	e := load(t, testStores(), `
on_global("login", function(ctx)
  ctx:mes("before")
  error("boom")
end)`)
	w := newWorld(t, testStores())
	p, c := login(t, w, "alice")
	h, _ := e.Scripts.Get(script.Login, -1, -1)

	assert.NotPanics(t, func() { run(w, p, h, script.Login) })
	assert.Equal(t, []string{"before"}, games(t, p, c))
}

func TestChatDialogResumes(t *testing.T) {
	e := load(t, testStores(), `
on_global("login", function(ctx)
  ctx:chat(2469, function(answer)
    answer:mes("picked " .. answer:last_int())
    answer:open_shop(1, 3824)
  end)
end)`)
	w := newWorld(t, testStores())
	e.Install(w)
	p, c := login(t, w, "alice")
	h, _ := w.Scripts.Get(script.Login, -1, -1)
	run(w, p, h, script.Login)
	require.True(t, p.Waiting())

	require.True(t, w.ResumeDialog(p, 2))
	assert.False(t, p.Waiting())
	assert.Equal(t, 1, p.OpenShop)
	assert.Equal(t, []string{"picked 2"}, games(t, p, c))
}

func TestShopTrade(t *testing.T) {
	e := load(t, testStores(), `
on_global("if_button", function(ctx)
  ctx:open_shop(1, 3824)
  local n, err = ctx:buy("bread", 5)
  ctx:mes(n .. " " .. tostring(err))
  n, err = ctx:buy("bread", 1)
  ctx:mes(n .. " " .. tostring(err))
end)`)
	w := newWorld(t, testStores())
	p, c := login(t, w, "alice")
	p.Inv(world.InvBackpack).Add(world.ObjCoins, 100, -1, false, false)

	h, _ := e.Scripts.Get(script.IfButton, 1, -1)
	run(w, p, h, script.IfButton)

	assert.Equal(t, []string{"3 nil", "0 " + world.ErrNotInStock.Error()}, games(t, p, c))
	assert.Equal(t, 3, p.Inv(world.InvBackpack).ItemCount(2309))
	assert.Equal(t, 100-36, p.Inv(world.InvBackpack).ItemCount(world.ObjCoins))
}

func TestRepositoryScriptsLoad(t *testing.T) {
	stores, err := data.LoadStores("../../data", zap.NewNop())
	require.NoError(t, err)
	e, err := Load("../../scripts", stores, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Positive(t, e.Handlers())
	_, ok := e.Scripts.GetSpecific(script.OpNpc1, stores.Npcs.ID("shopkeeper"))
	assert.True(t, ok)
	_, ok = e.Scripts.GetSpecific(script.OpHeld1, stores.Objs.ID("bread"))
	assert.True(t, ok)
}
