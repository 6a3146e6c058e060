package system

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tickworld/server/internal/config"
	"github.com/tickworld/server/internal/core/event"
	coresys "github.com/tickworld/server/internal/core/system"
	"github.com/tickworld/server/internal/data"
	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/gamemap"
	"github.com/tickworld/server/internal/metrics"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/script"
	"github.com/tickworld/server/internal/world"
)

const (
	npcRat   = 1
	objPot   = 1931
	invStore = 10
)

type fakeClient struct {
	mu        sync.Mutex
	in        [][]byte
	out       []packet.Message
	connected bool
	closed    bool
}

func (c *fakeClient) Receive() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.in) == 0 {
		return nil, false
	}
	b := c.in[0]
	c.in = c.in[1:]
	return b, true
}

func (c *fakeClient) Write(msg packet.Message) {
	c.mu.Lock()
	c.out = append(c.out, msg)
	c.mu.Unlock()
}

func (c *fakeClient) Flush() error { return nil }
func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected && !c.closed
}
func (c *fakeClient) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
func (c *fakeClient) RemoteAddr() string { return "127.0.0.1:50000" }

func (c *fakeClient) send(t *testing.T, msg packet.Message) {
	t.Helper()
	b, err := packet.Encode(msg)
	require.NoError(t, err)
	c.mu.Lock()
	c.in = append(c.in, b)
	c.mu.Unlock()
}

func (c *fakeClient) has(typ string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.out {
		if m.MessageType() == typ {
			return true
		}
	}
	return false
}

type memSaver struct {
	mu    sync.Mutex
	saves map[string]int
}

func (s *memSaver) SavePlayer(_ context.Context, username string, _ []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saves == nil {
		s.saves = make(map[string]int)
	}
	s.saves[username]++
	return nil
}

func (s *memSaver) count(username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves[username]
}

type harness struct {
	world    *world.World
	engine   *Engine
	bus      *event.Bus
	metrics  *metrics.Metrics
	registry *packet.Registry
	saver    *memSaver
}

func newHarness(t *testing.T, cfg config.WorldConfig) *harness {
	t.Helper()
	log := zap.NewNop()
	m := gamemap.New(true, log)
	for x := 3136; x < 3264; x += 8 {
		for z := 3136; z < 3264; z += 8 {
			m.Collision.Allocate(0, x, z)
		}
	}
	stores := &data.Stores{
		Objs: data.NewTable[data.ObjType]([]data.ObjType{
			{ID: objPot, Debug: "pot", Name: "Pot", Cost: 1, Category: -1, WearPos: -1, CertLink: -1, CertTemplate: -1},
		}),
		Npcs: data.NewTable[data.NpcType]([]data.NpcType{{
			ID: npcRat, Debug: "rat", Name: "Rat", Size: 1, VisLevel: 2, BlockWalk: 1,
			HuntMode: -1, HuntRange: 5, DefaultMode: int(world.ModeNone), Timer: -1,
			Attack: 1, Strength: 1, Defence: 1, Hitpoints: 2, Ranged: 1, Magic: 1,
			Category: -1, MaxRange: 7, AttackRange: 1, RespawnRate: 10,
		}}),
		Locs: data.NewTable[data.LocType](nil),
		Invs: data.NewTable[data.InvType]([]data.InvType{{
			ID: invStore, Debug: "store", Scope: data.ScopeShared, Size: 10,
			StackAll: true, Restock: true, SellPct: 100, BuyPct: 60,
			Stock: []data.Stock{{Obj: objPot, Count: 3, Rate: 2}},
		}}),
		Hunts: data.NewTable[data.HuntType](nil),
	}
	saver := &memSaver{}
	w := world.New(world.Options{
		Config: cfg,
		NodeID: 10,
		Map:    m,
		Stores: stores,
		Saver:  saver,
		Rand:   rand.New(rand.NewSource(1)),
		Log:    log,
	})

	bus := event.NewBus()
	met := metrics.New()
	reg := packet.NewRegistry(log)
	runner := coresys.NewRunner()
	RegisterAll(runner, Deps{
		World:    w,
		Registry: reg,
		Bus:      bus,
		Metrics:  met,
		Network:  config.NetworkConfig{UserEventsPerTick: 10, ClientEventsPerTick: 50},
		Log:      log,
	})
	return &harness{
		world:    w,
		engine:   NewEngine(w, runner, time.Second, met, log),
		bus:      bus,
		metrics:  met,
		registry: reg,
		saver:    saver,
	}
}

func testWorldConfig() config.WorldConfig {
	return config.WorldConfig{
		MaxPlayers:          2,
		MaxNpcs:             8,
		TimeoutIdle:         75,
		TimeoutNoResponse:   100,
		TimeoutNoConnection: 50,
		AutosaveTicks:       500,
		StartX:              3200,
		StartZ:              3200,
	}
}

func (h *harness) queue(name string) *fakeClient {
	c := &fakeClient{connected: true}
	h.world.QueueLogin(world.LoginRequest{Username: name, Client: c})
	return c
}

func TestLoginAdmittedOnNextTick(t *testing.T) {
	h := newHarness(t, testWorldConfig())
	var logins []event.PlayerLoggedIn
	event.Subscribe(h.bus, func(ev event.PlayerLoggedIn) { logins = append(logins, ev) })

	c := h.queue("alice")
	h.engine.Step()

	p, ok := h.world.PlayerByName("alice")
	require.True(t, ok)
	assert.Equal(t, int64(1), p.LoginTick)
	assert.True(t, c.has("login_accept"))
	assert.True(t, c.has("rebuild_normal"), "output runs after login in the same tick")
	assert.Empty(t, logins, "events are delivered a tick later")

	h.engine.Step()
	require.Len(t, logins, 1)
	assert.Equal(t, "alice", logins[0].Username)
	assert.Equal(t, "127.0.0.1:50000", logins[0].RemoteAddr)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Logins))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Players))
}

func TestLoginCapacity(t *testing.T) {
	h := newHarness(t, testWorldConfig())
	h.queue("alice")
	h.queue("bob")
	carol := h.queue("carol")
	dup := h.queue("alice")

	h.engine.Step()
	assert.Equal(t, 2, h.world.Players.Count())
	assert.True(t, carol.closed)
	assert.True(t, carol.has("login_reject"))
	assert.True(t, dup.closed)

	h.engine.Step()
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.LoginRejections.WithLabelValues("world_full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.LoginRejections.WithLabelValues("already_online")))
}

func TestLoginDuringShutdownIsRejected(t *testing.T) {
	h := newHarness(t, testWorldConfig())
	h.world.ScheduleShutdown(0)
	h.engine.Step()
	require.True(t, h.world.ShuttingDown())

	late := h.queue("dave")
	h.engine.Step()
	assert.True(t, late.closed)
	assert.True(t, late.has("login_reject"))

	h.engine.Step()
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.LoginRejections.WithLabelValues("shutting_down")))
}

func TestMoveClickIsHandledBeforeMovement(t *testing.T) {
	h := newHarness(t, testWorldConfig())
	h.registry.Register("move_click", []packet.SessionState{packet.StateInWorld}, func(sess any, r *packet.Reader) {
		var msg packet.MoveClick
		if err := r.Decode(&msg); err != nil {
			return
		}
		sess.(*world.Player).QueueWaypoint(msg.X, msg.Z)
	})

	c := h.queue("alice")
	h.engine.Step()
	p, _ := h.world.PlayerByName("alice")

	c.send(t, packet.MoveClick{X: 3205, Z: 3200})
	h.engine.Step()
	assert.Equal(t, 3201, p.X, "one walk step in the tick the click arrived")
	assert.Equal(t, int64(2), p.LastResponse)

	h.engine.Step()
	assert.Equal(t, 3202, p.X)
}

func TestNpcFailureIsIsolated(t *testing.T) {
	h := newHarness(t, testWorldConfig())
	h.world.Scripts.Register(script.AiQueue1, npcRat, func(*world.ScriptContext) { panic("broken script") })

	bad := world.NewNpc(h.world.Map, h.world.Stores.Npcs.Get(npcRat), 0, 3205, 3205, entity.Despawn)
	good := world.NewNpc(h.world.Map, h.world.Stores.Npcs.Get(npcRat), 0, 3206, 3206, entity.Despawn)
	require.NoError(t, h.world.AddNpc(bad, 0))
	require.NoError(t, h.world.AddNpc(good, 0))
	bad.Enqueue(1, 0)

	h.engine.Step()
	assert.False(t, bad.IsActive())
	assert.True(t, good.IsActive())
	assert.Equal(t, 1, h.world.Npcs.Count())

	h.engine.Step()
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.EntityFailures.WithLabelValues("npc")))
}

func TestPlayerFailureForcesLogout(t *testing.T) {
	h := newHarness(t, testWorldConfig())
	h.world.Scripts.Register(script.Queue, 7, func(*world.ScriptContext) { panic("broken script") })

	c := h.queue("alice")
	h.queue("bob")
	h.engine.Step()
	alice, _ := h.world.PlayerByName("alice")
	alice.Enqueue(world.QueueStrong, 7, 0)

	h.engine.Step()
	assert.True(t, c.closed)
	assert.False(t, h.world.IsOnline(alice.Hash64()))
	assert.Equal(t, 1, h.world.Players.Count(), "bob is unaffected")
	assert.Equal(t, 1, h.saver.count("alice"), "state is saved on the way out")
}

func TestAutosaveInterval(t *testing.T) {
	cfg := testWorldConfig()
	cfg.AutosaveTicks = 3
	h := newHarness(t, cfg)
	h.queue("alice")

	h.engine.Step()
	h.engine.Step()
	assert.Zero(t, h.saver.count("alice"))
	h.engine.Step()
	assert.Eventually(t, func() bool { return h.saver.count("alice") == 1 }, time.Second, 5*time.Millisecond)
}

func TestCleanupRestocksShops(t *testing.T) {
	h := newHarness(t, testWorldConfig())
	shop := h.world.Shop(invStore)
	shop.Remove(objPot, 3, -1, true)

	h.engine.Step()
	assert.Zero(t, shop.ItemCount(objPot))
	h.engine.Step()
	assert.Equal(t, 1, shop.ItemCount(objPot))
}

func TestRunStopsAfterShutdown(t *testing.T) {
	h := newHarness(t, testWorldConfig())
	h.engine = NewEngine(h.world, h.engine.runner, time.Millisecond, nil, zap.NewNop())
	c := h.queue("alice")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.engine.Run(ctx) }()

	require.Eventually(t, func() bool { return c.has("login_accept") }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("game loop did not stop")
	}
	assert.True(t, c.closed)
	assert.Equal(t, 1, h.saver.count("alice"))
}
