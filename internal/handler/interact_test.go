package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/world"
)

func (h *harness) spawnRat(t *testing.T, x, z int) *world.Npc {
	t.Helper()
	n := world.NewNpc(h.w.Map, h.w.Stores.Npcs.Get(npcRat), 0, x, z, entity.Despawn)
	require.NoError(t, h.w.AddNpc(n, 0))
	return n
}

// see lets p learn about everything around it, as the output phase does.
func (h *harness) see(t *testing.T, p *world.Player) {
	t.Helper()
	h.w.UpdateBuildArea(p)
	require.NoError(t, h.w.WriteOutput(p))
	h.w.CleanupPlayer(p)
}

func TestOpNpcTargetsKnownNpc(t *testing.T) {
	h := newHarness(t)
	p, _ := h.login(t, "alice", 0)
	n := h.spawnRat(t, 3203, 3200)

	h.send(t, p, typed("op_npc", packet.OpEntity{ID: n.Index, Op: 2}))
	assert.Nil(t, p.Target, "npc not yet sent to the client")

	h.see(t, p)
	p.OpenMainModal(300)
	h.send(t, p, typed("op_npc", packet.OpEntity{ID: n.Index, Op: 2}))
	assert.Equal(t, entity.Target(n), p.Target)
	assert.Equal(t, 1, p.TargetOp)
	assert.Equal(t, -1, p.ModalMain())
}

func TestOpNpcRejectsBadOp(t *testing.T) {
	h := newHarness(t)
	p, _ := h.login(t, "alice", 0)
	n := h.spawnRat(t, 3203, 3200)
	h.see(t, p)

	h.send(t, p, typed("op_npc", packet.OpEntity{ID: n.Index, Op: 0}))
	h.send(t, p, typed("op_npc", packet.OpEntity{ID: n.Index, Op: 6}))
	h.send(t, p, typed("op_npc", packet.OpEntity{ID: n.Index + 1, Op: 1}))
	assert.Nil(t, p.Target)
}

func TestOpNpcUNeedsHeldObj(t *testing.T) {
	h := newHarness(t)
	p, _ := h.login(t, "alice", 0)
	n := h.spawnRat(t, 3203, 3200)
	h.see(t, p)

	use := packet.OpEntity{ID: n.Index, UseObj: objPot, UseSlot: 0, UseComponent: 149}
	h.send(t, p, typed("op_npc_u", use))
	assert.Nil(t, p.Target)

	p.Inv(world.InvBackpack).Add(objPot, 1, -1, true, false)
	h.send(t, p, typed("op_npc_u", use))
	assert.Equal(t, entity.Target(n), p.Target)
	assert.Equal(t, world.OpUse, p.TargetOp)
	assert.Equal(t, objPot, p.Selection.UseObj)
	assert.Equal(t, 0, p.Selection.UseSlot)
	assert.Equal(t, 149, p.TargetSubject.Com)
}

func TestOpNpcTIsSpell(t *testing.T) {
	h := newHarness(t)
	p, _ := h.login(t, "alice", 0)
	n := h.spawnRat(t, 3203, 3200)
	h.see(t, p)

	h.send(t, p, typed("op_npc_t", packet.OpEntity{ID: n.Index, SpellComponent: 1152}))
	assert.Equal(t, world.OpSpell, p.TargetOp)
	assert.Equal(t, 1152, p.TargetSubject.Com)
}

func TestOpPlayerSkipsSelf(t *testing.T) {
	h := newHarness(t)
	alice, _ := h.login(t, "alice", 0)
	bob, _ := h.login(t, "bob", 0)
	h.see(t, alice)

	h.send(t, alice, typed("op_player", packet.OpEntity{ID: alice.Index, Op: 1}))
	assert.Nil(t, alice.Target)

	h.send(t, alice, typed("op_player", packet.OpEntity{ID: bob.Index, Op: 4}))
	assert.Equal(t, entity.Target(bob), alice.Target)
	assert.Equal(t, 3, alice.TargetOp)
}

func TestOpObjFindsGroundObj(t *testing.T) {
	h := newHarness(t)
	p, _ := h.login(t, "alice", 0)
	obj := entity.NewObj(0, 3202, 3200, entity.Despawn, objPot, 1)
	h.w.AddObj(obj, entity.NoReceiver, 100)

	h.send(t, p, typed("op_obj", packet.OpTile{X: 3202, Z: 3201, ID: objPot, Op: 3}))
	assert.Nil(t, p.Target, "wrong tile")

	h.send(t, p, typed("op_obj", packet.OpTile{X: 3202, Z: 3200, ID: objPot, Op: 3}))
	assert.Equal(t, entity.Target(obj), p.Target)
	assert.Equal(t, 2, p.TargetOp)
}

func TestOpLocFindsLoc(t *testing.T) {
	h := newHarness(t)
	p, _ := h.login(t, "alice", 0)
	loc := entity.NewLoc(0, 3204, 3204, 1, 1, entity.Despawn, locChest, centrepieceShape, 0)
	h.w.AddLoc(loc, 100)

	h.send(t, p, typed("op_loc", packet.OpTile{X: 3204, Z: 3204, ID: locChest, Op: 1}))
	assert.Equal(t, entity.Target(loc), p.Target)
	assert.Equal(t, 0, p.TargetOp)
}
