package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/script"
	"github.com/tickworld/server/internal/textutil"
)

func TestExperienceTable(t *testing.T) {
	assert.Equal(t, 0, ExpForLevel(1))
	assert.Equal(t, 830, ExpForLevel(2))
	assert.Equal(t, 11540, ExpForLevel(10))
	assert.Equal(t, 130344310, ExpForLevel(99))

	assert.Equal(t, 1, LevelForExp(0))
	assert.Equal(t, 1, LevelForExp(829))
	assert.Equal(t, 2, LevelForExp(830))
	assert.Equal(t, 99, LevelForExp(MaxExp))
}

func TestGiveStatLevelsUp(t *testing.T) {
	w := newTestWorld(t, nil)
	p := w.NewPlayer("alice")
	assert.Equal(t, 3, p.CombatLevel)

	assert.False(t, p.GiveStat(StatAttack, 100))
	assert.Equal(t, 1, p.BaseLevels[StatAttack])
	assert.True(t, p.GiveStat(StatAttack, ExpForLevel(40)))
	assert.Equal(t, 40, p.BaseLevels[StatAttack])
	assert.Equal(t, 40, p.Levels[StatAttack])
	assert.Greater(t, p.CombatLevel, 3)
	assert.NotZero(t, p.Masks&PlayerAppearance)

	p.GiveStat(StatAttack, MaxExp)
	assert.Equal(t, MaxExp, p.Stats[StatAttack])
	assert.False(t, p.GiveStat(-1, 10))
}

func TestHitpointsTrackHealth(t *testing.T) {
	w := newTestWorld(t, nil)
	p := w.NewPlayer("alice")
	p.ApplyDamage(4, 0)
	assert.Equal(t, 6, p.CurrentHealth)
	assert.Equal(t, 10, p.MaxHealth)
	p.ApplyDamage(50, 0)
	assert.Equal(t, 0, p.Levels[StatHitpoints])
	assert.Equal(t, 6, p.DamageTaken)
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := newTestWorld(t, nil)
	p := w.NewPlayer("alice")
	p.Teleport(3210, 3215, 0)
	p.GiveStat(StatMining, ExpForLevel(30))
	p.ChangeStat(StatMining, -3)
	p.SetVar(5, 42)
	p.RunEnergy = 5000
	p.Run = true
	p.MutedUntil = 900
	require.True(t, p.AddFriend(textutil.ToBase37("bob")))
	require.True(t, p.AddIgnore(textutil.ToBase37("eve")))
	p.Inv(InvBackpack).Add(objDagger, 1, -1, true, false)
	p.Inv(InvBackpack).Add(ObjCoins, 250, -1, true, false)
	p.Inv(InvWorn).Set(int(WearWeapon), nil)

	b, err := p.Save()
	require.NoError(t, err)

	q := w.NewPlayer("alice")
	require.NoError(t, q.Load(b))
	assert.Equal(t, 3210, q.X)
	assert.Equal(t, 3215, q.Z)
	assert.Equal(t, p.Stats, q.Stats)
	assert.Equal(t, p.Levels, q.Levels)
	assert.Equal(t, 30, q.BaseLevels[StatMining])
	assert.Equal(t, 27, q.Levels[StatMining])
	assert.Equal(t, 42, q.GetVar(5))
	assert.Equal(t, 5000, q.RunEnergy)
	assert.True(t, q.Run)
	assert.Equal(t, int64(900), q.MutedUntil)
	assert.Equal(t, p.Friends, q.Friends)
	assert.Equal(t, p.Ignores, q.Ignores)
	assert.Equal(t, 1, q.Inv(InvBackpack).ItemCount(objDagger))
	assert.Equal(t, 250, q.Inv(InvBackpack).ItemCount(ObjCoins))
	assert.True(t, q.Inv(InvWorn).IsEmpty())
	assert.Equal(t, p.CombatLevel, q.CombatLevel)
}

func TestSnapshotRejectsBadInput(t *testing.T) {
	w := newTestWorld(t, nil)
	p := w.NewPlayer("alice")
	p.Teleport(3210, 3210, 0)

	assert.Error(t, p.Load([]byte("not json")))
	assert.Error(t, p.Load([]byte(`{"version":99}`)))
	assert.Error(t, p.Load([]byte(`{"version":1,"stats":[1,2],"levels":[1,2]}`)))
	assert.Equal(t, 3210, p.X, "a failed load leaves the player alone")
}

func TestSocialListLimits(t *testing.T) {
	w := newTestWorld(t, nil)
	p := w.NewPlayer("alice")
	for i := range MaxFriends {
		require.True(t, p.AddFriend(int64(i+1)))
	}
	assert.False(t, p.AddFriend(int64(MaxFriends+1)))
	assert.False(t, p.AddFriend(1), "duplicates are refused")
	assert.True(t, p.RemoveFriend(1))
	assert.False(t, p.RemoveFriend(1))
	assert.False(t, p.AddIgnore(0))
}

func TestPrivateMessages(t *testing.T) {
	w := newTestWorld(t, nil)
	alice, _ := login(t, w, "alice")
	bob, _ := login(t, w, "bob")
	bob.out.Drain()

	require.NoError(t, w.PrivateMessage(alice, "Bob", "hello there"))
	msgs := bob.out.Drain()
	require.Len(t, msgs, 1)
	assert.Equal(t, packet.MessagePrivateIn{From: "Alice", Text: "hello there"}, msgs[0])

	assert.ErrorIs(t, w.PrivateMessage(alice, "carol", "hi"), ErrNotOnline)

	require.True(t, w.AddIgnore(bob, "alice"))
	bob.out.Drain()
	require.NoError(t, w.PrivateMessage(alice, "bob", "still there?"))
	assert.Zero(t, bob.out.Len())

	alice.MutedUntil = w.Tick() + 10
	assert.ErrorIs(t, w.PrivateMessage(alice, "bob", "hi"), ErrMuted)
}

func TestFriendStatusHidesIgnorers(t *testing.T) {
	w := newTestWorld(t, nil)
	alice, _ := login(t, w, "alice")
	bob, _ := login(t, w, "bob")

	alice.out.Drain()
	require.True(t, w.AddFriend(alice, "bob"))
	assert.Equal(t, []packet.Message{packet.UpdateFriendList{Name: "Bob", NodeID: 10}}, alice.out.Drain())

	require.True(t, w.AddIgnore(bob, "alice"))
	msgs := alice.out.Drain()
	require.NotEmpty(t, msgs)
	assert.Equal(t, packet.UpdateFriendList{Name: "Bob", NodeID: 0}, msgs[len(msgs)-1])
}

func TestQueueDelayAndOrder(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")
	settle(w, p)

	var ran []int
	for _, id := range []int{1, 2, 3} {
		w.Scripts.Register(script.Queue, id, func(ctx *ScriptContext) { ran = append(ran, ctx.Args[0]) })
	}
	p.Enqueue(QueueNormal, 1, 2, 10)
	p.Enqueue(QueueNormal, 2, 0, 20)
	p.Enqueue(QueueWeak, 3, 0, 30)

	w.ProcessPlayer(p)
	assert.Equal(t, []int{20, 30}, ran)
	w.ProcessPlayer(p)
	assert.Equal(t, []int{20, 30}, ran)
	w.ProcessPlayer(p)
	assert.Equal(t, []int{20, 30, 10}, ran)
	assert.Zero(t, p.QueueLen())
}

func TestNormalQueueWaitsForModal(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")
	settle(w, p)

	ran := 0
	w.Scripts.Register(script.Queue, 7, func(*ScriptContext) { ran++ })
	p.OpenMainModal(300)
	p.Enqueue(QueueNormal, 7, 0)

	w.ProcessPlayer(p)
	assert.Zero(t, ran)
	assert.Equal(t, 1, p.QueueLen())

	p.Enqueue(QueueStrong, 7, 0)
	w.ProcessPlayer(p)
	assert.Equal(t, 2, ran, "a strong request closes the modal and both run")
	assert.False(t, p.ContainsModal())
}

func TestEnqueueDuringQueueIsKept(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")
	settle(w, p)

	ran := 0
	w.Scripts.Register(script.Queue, 1, func(ctx *ScriptContext) {
		ran++
		if ran == 1 {
			ctx.Player.Enqueue(QueueNormal, 1, 0)
		}
	})
	p.Enqueue(QueueNormal, 1, 0)
	w.ProcessPlayer(p)
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, p.QueueLen())
	w.ProcessPlayer(p)
	assert.Equal(t, 2, ran)
}

func TestTimersFireOnInterval(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")
	settle(w, p)

	normal, soft := 0, 0
	w.Scripts.Register(script.Timer, 3, func(*ScriptContext) { normal++ })
	w.Scripts.Register(script.SoftTimer, 4, func(*ScriptContext) { soft++ })
	p.SetTimer(TimerNormal, 3, 2)
	p.SetTimer(TimerSoft, 4, 2)

	for range 4 {
		w.ProcessPlayer(p)
	}
	assert.Equal(t, 2, normal)
	assert.Equal(t, 2, soft)

	p.OpenMainModal(300)
	for range 2 {
		w.ProcessPlayer(p)
	}
	assert.Equal(t, 2, normal, "normal timers wait while busy")
	assert.Equal(t, 3, soft)

	p.CloseModal()
	w.ProcessPlayer(p)
	assert.Equal(t, 3, normal, "an overdue timer fires once free")
}

func TestPlayerWalksToNpcAndOps(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")
	settle(w, p)
	n := spawnNpc(t, w, npcGoblin, 3203, 3200, entity.Despawn)

	ops := 0
	w.Scripts.Register(script.OpNpc1, npcGoblin, func(ctx *ScriptContext) {
		ops++
		assert.Equal(t, n, ctx.Target)
	})
	require.True(t, p.SetInteraction(entity.InteractionScript, n, 0, -1))

	w.ProcessPlayer(p)
	assert.Zero(t, ops)
	assert.Equal(t, 3201, p.X)
	w.CleanupPlayer(p)

	w.ProcessPlayer(p)
	assert.Equal(t, 3202, p.X)
	assert.Equal(t, 1, ops)
	assert.Nil(t, p.Target, "the interaction ends once handled")
}

func TestOpWithoutHandlerSaysNothingInteresting(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")
	settle(w, p)
	n := spawnNpc(t, w, npcGoblin, 3201, 3200, entity.Despawn)
	p.out.Drain()

	require.True(t, p.SetInteraction(entity.InteractionScript, n, 2, -1))
	w.ProcessPlayer(p)
	assert.Contains(t, p.out.Drain(), packet.Message(packet.MessageGame{Text: "Nothing interesting happens."}))
	assert.Nil(t, p.Target)
}

func TestWalkTriggerFiresOnceAfterStep(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")
	settle(w, p)

	fired := 0
	w.Scripts.Register(script.WalkTrigger, 9, func(*ScriptContext) { fired++ })
	p.WalkTrigger = 9
	w.ProcessPlayer(p)
	assert.Zero(t, fired, "no step, no trigger")

	p.QueueWaypoint(3205, 3200)
	w.ProcessPlayer(p)
	w.CleanupPlayer(p)
	w.ProcessPlayer(p)
	assert.Equal(t, 1, fired)
	assert.Equal(t, -1, p.WalkTrigger)
}

func TestRunDrainsEnergy(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")
	settle(w, p)

	p.Run = true
	p.QueueWaypoint(3210, 3200)
	w.ProcessPlayer(p)
	assert.Equal(t, 3202, p.X)
	assert.Equal(t, MaxRunEnergy-runDrain, p.RunEnergy)

	w.CleanupPlayer(p)
	p.SetRunInput(true)
	w.ProcessPlayer(p)
	assert.Equal(t, 3203, p.X, "ctrl inverts the run toggle")
}

func TestReceiveClientQueuesDecodedMessages(t *testing.T) {
	w := newTestWorld(t, nil)
	p, c := login(t, w, "alice")
	w.AdvanceTick()

	c.send(t, packet.MoveClick{X: 3205, Z: 3200})
	c.in = append(c.in, []byte("garbage"))
	c.send(t, packet.MessagePublic{Text: "hi"})

	assert.Equal(t, 2, w.ReceiveClient(p))
	assert.Equal(t, w.Tick(), p.LastResponse)

	var got []string
	p.DecodeIn(1, 50, func(r *packet.Reader) { got = append(got, r.Type()) })
	assert.Equal(t, []string{"move_click"}, got, "user events are capped per tick")
	p.DecodeIn(1, 50, func(r *packet.Reader) { got = append(got, r.Type()) })
	assert.Equal(t, []string{"move_click", "message_public"}, got)
}
