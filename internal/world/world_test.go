package world

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tickworld/server/internal/config"
	"github.com/tickworld/server/internal/data"
	"github.com/tickworld/server/internal/gamemap"
	"github.com/tickworld/server/internal/net/packet"
)

const (
	objPot    = 1931
	objDagger = 1205
	objRope   = 954

	npcGoblin = 1
	npcGuard  = 2

	invStore = 10
	huntAggr = 1
)

type fakeClient struct {
	in        [][]byte
	out       []packet.Message
	connected bool
	closed    bool
	flushErr  error
}

func (c *fakeClient) Receive() ([]byte, bool) {
	if len(c.in) == 0 {
		return nil, false
	}
	b := c.in[0]
	c.in = c.in[1:]
	return b, true
}

func (c *fakeClient) Write(msg packet.Message) { c.out = append(c.out, msg) }
func (c *fakeClient) Flush() error             { return c.flushErr }
func (c *fakeClient) IsConnected() bool        { return c.connected && !c.closed }
func (c *fakeClient) Close()                   { c.closed = true }
func (c *fakeClient) RemoteAddr() string       { return "127.0.0.1:40000" }

func (c *fakeClient) send(t *testing.T, msg packet.Message) {
	t.Helper()
	b, err := packet.Encode(msg)
	require.NoError(t, err)
	c.in = append(c.in, b)
}

func (c *fakeClient) types() []string {
	out := make([]string, len(c.out))
	for i, m := range c.out {
		out[i] = m.MessageType()
	}
	return out
}

func (c *fakeClient) reset() { c.out = nil }

type memSaver struct {
	saves map[string][]byte
}

func (s *memSaver) SavePlayer(_ context.Context, username string, snap []byte) error {
	if s.saves == nil {
		s.saves = make(map[string][]byte)
	}
	s.saves[username] = snap
	return nil
}

type wealthLog []WealthEvent

func (l *wealthLog) RecordWealth(ev WealthEvent) { *l = append(*l, ev) }

func testObj(id int, name string, cost int, stackable bool) data.ObjType {
	return data.ObjType{
		ID: id, Debug: name, Name: name, Cost: cost, Stackable: stackable,
		Category: -1, WearPos: -1, CertLink: -1, CertTemplate: -1,
	}
}

func testNpc(id int, name string, hitpoints int) data.NpcType {
	return data.NpcType{
		ID: id, Debug: name, Name: name, Size: 1, VisLevel: 2, BlockWalk: 1,
		HuntMode: -1, HuntRange: 5, DefaultMode: int(ModeNone), Timer: -1,
		Attack: 1, Strength: 1, Defence: 1, Hitpoints: hitpoints, Ranged: 1, Magic: 1,
		Category: -1, MaxRange: 7, AttackRange: 1, RespawnRate: 10, GiveChase: true,
	}
}

func testStores() *data.Stores {
	dagger := testObj(objDagger, "bronze_dagger", 10, false)
	dagger.WearPos = int(WearWeapon)
	guard := testNpc(npcGuard, "guard", 20)
	guard.HuntMode = huntAggr

	return &data.Stores{
		Objs: data.NewTable[data.ObjType]([]data.ObjType{
			testObj(ObjCoins, "coins", 1, true),
			testObj(objPot, "pot", 1, false),
			testObj(objRope, "rope", 18, false),
			dagger,
		}),
		Npcs: data.NewTable[data.NpcType]([]data.NpcType{
			testNpc(npcGoblin, "goblin", 5),
			guard,
		}),
		Locs: data.NewTable[data.LocType](nil),
		Invs: data.NewTable[data.InvType]([]data.InvType{{
			ID: invStore, Debug: "general_store", Scope: data.ScopeShared, Size: 40,
			StackAll: true, Restock: true, AllStock: true, SellPct: 100, BuyPct: 60,
			Stock: []data.Stock{{Obj: objPot, Count: 5, Rate: 5}},
		}}),
		Hunts: data.NewTable[data.HuntType]([]data.HuntType{{
			ID: huntAggr, Debug: "aggressive", Kind: data.HuntPlayer, FindNewMode: -1,
			CheckNotCombat: -1, CheckNotCombatSelf: -1, Rate: 1, CheckCategory: -1,
		}}),
	}
}

func testConfig() config.WorldConfig {
	return config.WorldConfig{
		MaxPlayers:          4,
		MaxNpcs:             8,
		TimeoutIdle:         75,
		TimeoutNoResponse:   100,
		TimeoutNoConnection: 50,
		AutosaveTicks:       500,
		StartX:              3200,
		StartZ:              3200,
	}
}

// newTestWorld builds a world over an open 128x128 area around 3200,3200.
func newTestWorld(t *testing.T, saver Saver) *World {
	t.Helper()
	m := gamemap.New(true, zap.NewNop())
	for x := 3136; x < 3264; x += 8 {
		for z := 3136; z < 3264; z += 8 {
			m.Collision.Allocate(0, x, z)
		}
	}
	return New(Options{
		Config: testConfig(),
		NodeID: 10,
		Map:    m,
		Stores: testStores(),
		Saver:  saver,
		Rand:   rand.New(rand.NewSource(1)),
		Log:    zap.NewNop(),
	})
}

func login(t *testing.T, w *World, name string) (*Player, *fakeClient) {
	t.Helper()
	c := &fakeClient{connected: true}
	p, err := w.Login(LoginRequest{Username: name, Client: c})
	require.NoError(t, err)
	return p, c
}

// tickOutput runs the info and output phases for one player.
func tickOutput(w *World, p *Player) error {
	w.UpdateBuildArea(p)
	return w.WriteOutput(p)
}

// settle finishes the login tick so the player moves at normal speed.
func settle(w *World, p *Player) {
	_ = tickOutput(w, p)
	w.CleanupPlayer(p)
}
