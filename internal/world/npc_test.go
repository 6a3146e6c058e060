package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/script"
)

func spawnNpc(t *testing.T, w *World, typ, x, z int, lc entity.Lifecycle) *Npc {
	t.Helper()
	n := NewNpc(w.Map, w.Stores.Npcs.Get(typ), 0, x, z, lc)
	require.NoError(t, w.AddNpc(n, 0))
	return n
}

func TestHitNpcRunsDeathOnceAndRemovesOnNextTurn(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")

	deaths := 0
	w.Scripts.Register(script.AiQueue1+DeathQueue-1, npcGoblin, func(ctx *ScriptContext) {
		deaths++
		assert.Equal(t, p, ctx.Target)
	})

	n := spawnNpc(t, w, npcGoblin, 3202, 3202, entity.Despawn)
	nid := n.Index

	assert.False(t, w.HitNpc(n, p, 3, 0))
	assert.Equal(t, 2, n.Levels[NpcHitpoints])
	assert.True(t, w.HitNpc(n, p, 4, 0))
	assert.Equal(t, 0, n.Levels[NpcHitpoints])
	assert.Equal(t, 2, n.DamageTaken, "damage is capped at remaining hitpoints")
	assert.False(t, w.HitNpc(n, p, 1, 0), "a dead npc cannot die twice")
	assert.Equal(t, 1, deaths)
	assert.Equal(t, p.Hash64(), n.Heroes.Top())

	// still on the map until its own turn
	assert.True(t, n.IsActive())
	w.ProcessNpc(n)
	assert.False(t, n.IsActive())
	assert.Equal(t, -1, n.Index)
	_, ok := w.Npcs.Get(nid)
	assert.False(t, ok)
	assert.Equal(t, 0, w.Npcs.Count())
}

func TestRespawningNpcKeepsSlotAndReturns(t *testing.T) {
	w := newTestWorld(t, nil)
	n := spawnNpc(t, w, npcGoblin, 3205, 3205, entity.Respawn)
	nid := n.Index

	n.Teleport(3207, 3205, 0)
	require.True(t, w.HitNpc(n, nil, 5, 0))
	w.ProcessNpc(n)

	assert.False(t, n.IsActive())
	assert.Equal(t, nid, n.Index)
	assert.Equal(t, 10, n.LifecycleTick)

	for range 9 {
		w.ProcessNpcLifecycles()
	}
	assert.False(t, n.IsActive())

	w.ProcessNpcLifecycles()
	assert.True(t, n.IsActive())
	assert.False(t, n.IsDead())
	assert.Equal(t, 5, n.Levels[NpcHitpoints])
	assert.Equal(t, 3205, n.X)
	assert.Equal(t, 3205, n.Z)
	assert.Contains(t, w.Map.Zone(3205, 3205, 0).Npcs(), nid)
}

func TestTimedDespawnFreesSlot(t *testing.T) {
	w := newTestWorld(t, nil)
	n := NewNpc(w.Map, w.Stores.Npcs.Get(npcGoblin), 0, 3210, 3210, entity.Despawn)
	require.NoError(t, w.AddNpc(n, 3))

	w.ProcessNpcLifecycles()
	w.ProcessNpcLifecycles()
	assert.True(t, n.IsActive())
	w.ProcessNpcLifecycles()
	assert.False(t, n.IsActive())
	assert.Equal(t, 0, w.Npcs.Count())
}

func TestAddNpcReportsFullPool(t *testing.T) {
	w := newTestWorld(t, nil)
	for i := range w.Npcs.Cap() {
		spawnNpc(t, w, npcGoblin, 3200+i, 3190, entity.Despawn)
	}
	n := NewNpc(w.Map, w.Stores.Npcs.Get(npcGoblin), 0, 3200, 3191, entity.Despawn)
	assert.ErrorIs(t, w.AddNpc(n, 0), ErrWorldFull)
}

func TestNpcEventsSkipStaleSpawns(t *testing.T) {
	w := newTestWorld(t, nil)
	var fired []script.Trigger
	record := func(ctx *ScriptContext) { fired = append(fired, ctx.Trigger) }
	w.Scripts.Register(script.AiSpawn, npcGoblin, record)
	w.Scripts.Register(script.AiDespawn, npcGoblin, record)

	kept := spawnNpc(t, w, npcGoblin, 3200, 3210, entity.Despawn)
	gone := spawnNpc(t, w, npcGoblin, 3201, 3210, entity.Despawn)
	w.RemoveNpc(gone, 0)

	w.ProcessNpcEvents()
	assert.Equal(t, []script.Trigger{script.AiSpawn, script.AiDespawn}, fired)
	assert.True(t, kept.IsActive())

	fired = nil
	w.ProcessNpcEvents()
	assert.Empty(t, fired)
}

func TestNpcEventsSkipDelayedNpc(t *testing.T) {
	w := newTestWorld(t, nil)
	spawns := 0
	w.Scripts.Register(script.AiSpawn, npcGoblin, func(*ScriptContext) { spawns++ })
	n := spawnNpc(t, w, npcGoblin, 3200, 3210, entity.Despawn)
	n.Delay(w.Tick(), 2)

	w.ProcessNpcEvents()
	assert.Zero(t, spawns)
}

func TestNpcQueueRunsAfterDelay(t *testing.T) {
	w := newTestWorld(t, nil)
	var args []int
	w.Scripts.Register(script.AiQueue1+4, npcGoblin, func(ctx *ScriptContext) { args = ctx.Args })

	n := spawnNpc(t, w, npcGoblin, 3200, 3210, entity.Despawn)
	n.Enqueue(5, 1, 42)

	w.ProcessNpc(n)
	assert.Nil(t, args)
	assert.Equal(t, 1, n.QueueLen())
	w.ProcessNpc(n)
	assert.Equal(t, []int{42}, args)
	assert.Zero(t, n.QueueLen())
}

func TestNpcRegenStepsTowardBase(t *testing.T) {
	w := newTestWorld(t, nil)
	n := spawnNpc(t, w, npcGuard, 3220, 3220, entity.Despawn)
	n.huntMode = -1
	n.Levels[NpcHitpoints] = 10
	n.Levels[NpcAttack] = 3

	for range npcRegenTicks - 1 {
		w.ProcessNpc(n)
	}
	assert.Equal(t, 10, n.Levels[NpcHitpoints])
	w.ProcessNpc(n)
	assert.Equal(t, 11, n.Levels[NpcHitpoints])
	assert.Equal(t, 2, n.Levels[NpcAttack])
	assert.Equal(t, 11, n.CurrentHealth)
}

func TestHuntFindsPlayerAndAttacks(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")
	settle(w, p)

	attacks := 0
	w.Scripts.Register(script.AiOpPlayer2, npcGuard, func(ctx *ScriptContext) {
		attacks++
		assert.Equal(t, p, ctx.Target)
	})

	n := spawnNpc(t, w, npcGuard, 3201, 3200, entity.Despawn)
	w.ProcessHunts()
	require.Equal(t, p, n.HuntTarget())

	w.ProcessNpc(n)
	assert.Nil(t, n.HuntTarget())
	assert.Equal(t, ModeOpPlayer2, n.Mode)
	assert.Equal(t, 1, attacks)
}

func TestHuntIgnoresPlayersOutOfRange(t *testing.T) {
	w := newTestWorld(t, nil)
	login(t, w, "alice")

	n := spawnNpc(t, w, npcGuard, 3230, 3230, entity.Despawn)
	w.ProcessHunts()
	assert.Nil(t, n.HuntTarget())
}

func TestUnhandledNpcOpResetsMode(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")
	n := spawnNpc(t, w, npcGoblin, 3201, 3200, entity.Despawn)

	require.True(t, n.SetMode(ModeOpPlayer1, p))
	w.ProcessNpc(n)
	assert.Equal(t, n.DefaultMode, n.Mode)
	assert.Nil(t, n.Target)
}

func TestNpcModeOps(t *testing.T) {
	assert.True(t, ModeOpPlayer2.IsInteraction())
	assert.True(t, ModeOpPlayer2.IsOp())
	assert.False(t, ModeApPlayer2.IsOp())
	assert.True(t, ModeApNpc1.IsInteraction())
	assert.False(t, ModeWander.IsInteraction())
}

func TestHeroPointsOrdering(t *testing.T) {
	var h HeroPoints
	h.Clear()
	assert.Equal(t, int64(-1), h.Top())

	h.Add(100, 5)
	h.Add(200, 5)
	assert.Equal(t, int64(100), h.Top(), "ties go to the first credited")
	h.Add(200, 1)
	assert.Equal(t, int64(200), h.Top())
	h.Add(300, 0)
	assert.Equal(t, int64(200), h.Top())

	for i := range HeroSlots + 4 {
		h.Add(int64(1000+i), 1)
	}
	h.Add(9999, 50)
	assert.Equal(t, int64(200), h.Top(), "a full table ignores newcomers")
}
