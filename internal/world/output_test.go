package world

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/net/packet"
)

func countType(types []string, typ string) int {
	n := 0
	for _, t := range types {
		if t == typ {
			n++
		}
	}
	return n
}

func TestFirstOutputOrder(t *testing.T) {
	w := newTestWorld(t, nil)
	p, c := login(t, w, "alice")

	require.NoError(t, tickOutput(w, p))
	types := c.types()
	require.NotEmpty(t, types)
	assert.Equal(t, "rebuild_normal", types[0])
	assert.Equal(t, 49, countType(types, "zone_full_follows"))

	info := slices.Index(types, "player_info")
	npcs := slices.Index(types, "npc_info")
	inv := slices.Index(types, "update_inv_full")
	accept := slices.Index(types, "login_accept")
	require.NotEqual(t, -1, inv)
	assert.Less(t, slices.Index(types, "zone_full_follows"), info)
	assert.Less(t, info, npcs)
	assert.Less(t, npcs, inv)
	assert.Less(t, inv, accept, "handler output goes last")
	assert.Equal(t, 0, p.Pending())
}

func TestSteadyOutputSkipsLoadedZones(t *testing.T) {
	w := newTestWorld(t, nil)
	p, c := login(t, w, "alice")
	settle(w, p)
	c.reset()

	require.NoError(t, tickOutput(w, p))
	assert.Equal(t, []string{"player_info", "npc_info"}, c.types())
}

func TestOutputLeavesBuildAreaToInfoPhase(t *testing.T) {
	w := newTestWorld(t, nil)
	p, c := login(t, w, "alice")
	settle(w, p)
	p.Teleport(3240, 3200, 0)
	c.reset()

	require.NoError(t, w.WriteOutput(p))
	assert.Zero(t, countType(c.types(), "rebuild_normal"))

	c.reset()
	w.UpdateBuildArea(p)
	require.NoError(t, w.WriteOutput(p))
	assert.Equal(t, 1, countType(c.types(), "rebuild_normal"))
}

func TestZoneUpdatesArePartial(t *testing.T) {
	w := newTestWorld(t, nil)
	p, c := login(t, w, "alice")
	settle(w, p)
	c.reset()

	w.AddObj(entity.NewObj(0, 3202, 3202, entity.Despawn, objRope, 1), entity.NoReceiver, 200)
	require.NoError(t, tickOutput(w, p))
	types := c.types()
	i := slices.Index(types, "zone_partial_follows")
	require.NotEqual(t, -1, i)
	assert.Equal(t, "obj_add", types[i+1])

	w.CleanupPlayer(p)
	w.ResetZones()
	c.reset()
	require.NoError(t, tickOutput(w, p))
	assert.NotContains(t, c.types(), "zone_partial_follows")
}

func TestRebuildWhenFarFromCentre(t *testing.T) {
	w := newTestWorld(t, nil)
	p, c := login(t, w, "alice")
	settle(w, p)
	c.reset()

	p.Teleport(3224, 3200, 0)
	require.NoError(t, tickOutput(w, p))
	assert.NotContains(t, c.types(), "rebuild_normal")
	assert.Equal(t, 21, countType(c.types(), "zone_full_follows"), "only the new columns load")

	w.CleanupPlayer(p)
	c.reset()
	p.Teleport(3232, 3200, 0)
	require.NoError(t, tickOutput(w, p))
	assert.Equal(t, "rebuild_normal", c.types()[0])
	assert.Equal(t, 49, countType(c.types(), "zone_full_follows"))
}

func TestInfoSendsAppearanceToNewViewers(t *testing.T) {
	w := newTestWorld(t, nil)
	alice, ac := login(t, w, "alice")
	settle(w, alice)
	bob, _ := login(t, w, "bob")
	settle(w, bob)
	ac.reset()

	info := w.PlayerInfo(alice)
	require.Len(t, info.Players, 2)
	seen := entryFor(info, bob.Index)
	require.NotNil(t, seen)
	assert.NotZero(t, seen.Masks&PlayerAppearance)
	assert.Equal(t, "bob", seen.Username)
	assert.True(t, seen.Jump)

	info = w.PlayerInfo(alice)
	assert.Zero(t, entryFor(info, bob.Index).Masks&PlayerAppearance, "known players are not resent")

	n := spawnNpc(t, w, npcGoblin, 3203, 3203, entity.Despawn)
	npcs := w.NpcInfo(alice)
	require.Len(t, npcs.Npcs, 1)
	assert.Equal(t, n.Index, npcs.Npcs[0].Nid)
	assert.Equal(t, npcGoblin, npcs.Npcs[0].NpcType)
	assert.True(t, npcs.Npcs[0].Jump)
	w.CleanupNpc(n)
	assert.False(t, w.NpcInfo(alice).Npcs[0].Jump, "only the first sighting jumps")

	n.Teleport(3230, 3230, 0)
	assert.Empty(t, w.NpcInfo(alice).Npcs, "out of range")
}

func entryFor(info packet.PlayerInfo, pid int) *packet.PlayerInfoEntry {
	for i := range info.Players {
		if info.Players[i].Pid == pid {
			return &info.Players[i]
		}
	}
	return nil
}

func TestWriteOutputReportsFlushError(t *testing.T) {
	w := newTestWorld(t, nil)
	p, c := login(t, w, "alice")
	c.flushErr = assert.AnError
	assert.ErrorIs(t, tickOutput(w, p), assert.AnError)
}
