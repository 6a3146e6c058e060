package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/textutil"
)

func TestRequestedLogoutSavesAndCloses(t *testing.T) {
	s := &memSaver{}
	w := newTestWorld(t, s)
	p, c := login(t, w, "alice")
	settle(w, p)
	p.Teleport(3210, 3200, 0)

	p.RequestLogout()
	require.True(t, w.ProcessLogoutChecks(p))
	assert.True(t, c.closed)
	assert.Equal(t, "logout", c.types()[len(c.out)-1])
	assert.Equal(t, 0, w.Players.Count())
	assert.False(t, w.IsOnline(textutil.ToBase37("alice")))
	require.Contains(t, s.saves, "alice")

	// a relog restores the save
	q, err := w.Login(LoginRequest{Username: "alice", Snapshot: s.saves["alice"], Client: &fakeClient{connected: true}})
	require.NoError(t, err)
	assert.Equal(t, 3210, q.X)
}

func TestModalDelaysLogout(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")
	p.OpenMainModal(300)
	p.RequestLogout()

	assert.False(t, w.ProcessLogoutChecks(p))
	assert.True(t, p.LoggingOut())
	assert.Equal(t, 1, w.Players.Count())

	p.CloseModal()
	assert.True(t, w.ProcessLogoutChecks(p))
}

func TestUnresponsiveClientIsForcedOut(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")
	p.OpenMainModal(300)

	w.tick = 99
	assert.False(t, w.ProcessLogoutChecks(p))
	w.tick = 100
	assert.True(t, w.ProcessLogoutChecks(p), "forced even with a modal open")
}

func TestIdleLogout(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")
	check := func(tick int64) bool {
		w.tick = tick
		p.LastResponse = tick
		return w.ProcessLogoutChecks(p)
	}

	p.RequestIdleLogout()
	assert.False(t, check(10))
	assert.False(t, check(84))
	assert.True(t, check(85))
}

func TestInputCancelsIdleLogout(t *testing.T) {
	w := newTestWorld(t, nil)
	p, _ := login(t, w, "alice")

	p.RequestIdleLogout()
	w.tick = 1
	assert.False(t, w.ProcessLogoutChecks(p))
	p.MarkInput()
	w.tick = 90
	p.LastResponse = 90
	assert.False(t, w.ProcessLogoutChecks(p))
	assert.False(t, p.LoggingOut())
}

func TestDisconnectedPlayerLeaves(t *testing.T) {
	w := newTestWorld(t, nil)
	p, c := login(t, w, "alice")
	c.connected = false

	w.tick = 49
	p.LastResponse = 49
	assert.False(t, w.ProcessLogoutChecks(p))
	w.tick = 50
	p.LastResponse = 50
	assert.True(t, w.ProcessLogoutChecks(p))
}

func TestLoginRejections(t *testing.T) {
	w := newTestWorld(t, nil)
	login(t, w, "alice")

	dup := &fakeClient{connected: true}
	_, err := w.Login(LoginRequest{Username: "alice", Client: dup})
	assert.ErrorIs(t, err, ErrAlreadyOnline)
	assert.True(t, dup.closed)
	assert.Equal(t, []string{"login_reject"}, dup.types())

	for _, name := range []string{"bob", "carol", "dave"} {
		login(t, w, name)
	}
	full := &fakeClient{connected: true}
	_, err = w.Login(LoginRequest{Username: "erin", Client: full})
	assert.ErrorIs(t, err, ErrWorldFull)
	assert.True(t, full.closed)
}

func TestQueuedLoginsDrainOnce(t *testing.T) {
	w := newTestWorld(t, nil)
	w.QueueLogin(LoginRequest{Username: "alice"})
	w.QueueLogin(LoginRequest{Username: "bob"})

	reqs := w.TakeLogins()
	require.Len(t, reqs, 2)
	assert.Equal(t, "alice", reqs[0].Username)
	assert.Empty(t, w.TakeLogins())
}

func TestShutdownLogsEveryoneOut(t *testing.T) {
	s := &memSaver{}
	w := newTestWorld(t, s)
	alice, _ := login(t, w, "alice")
	bob, _ := login(t, w, "bob")
	bob.OpenMainModal(300)

	w.ScheduleShutdown(2)
	msgs := alice.out.Drain()
	assert.Equal(t, "update_reboot_timer", msgs[len(msgs)-1].MessageType())

	w.tick = 1
	w.ProcessShutdown()
	assert.False(t, w.ShuttingDown())

	w.tick = 2
	w.ProcessShutdown()
	require.True(t, w.ShuttingDown())
	late := &fakeClient{connected: true}
	_, err := w.Login(LoginRequest{Username: "carol", Client: late})
	assert.ErrorIs(t, err, ErrShuttingDown)
	require.Len(t, late.out, 1)
	assert.Equal(t, RejectShuttingDown, late.out[0].(packet.LoginReject).Code)

	assert.True(t, w.ProcessLogoutChecks(alice))
	assert.False(t, w.ShutdownComplete())
	assert.True(t, w.ProcessLogoutChecks(bob), "modals do not hold up a shutdown")
	assert.True(t, w.ShutdownComplete())
	assert.Len(t, s.saves, 2)
}

func TestForceLogoutRemovesPlayer(t *testing.T) {
	w := newTestWorld(t, nil)
	p, c := login(t, w, "alice")

	w.ForceLogout(p, errors.New("write failed"))
	assert.Equal(t, -1, p.Index)
	assert.True(t, c.closed)
	assert.Equal(t, 0, w.Players.Count())
}
