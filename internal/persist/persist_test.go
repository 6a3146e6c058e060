package persist

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tickworld/server/internal/core/event"
	"github.com/tickworld/server/internal/world"
)

func TestSnapshotCompression(t *testing.T) {
	raw := bytes.Repeat([]byte(`{"x":3200,"z":3200,"stats":[0,0,0,0]}`), 50)
	packed := compress(raw)
	assert.Less(t, len(packed), len(raw))

	got, err := decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = decompress([]byte("not zstd"))
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := hashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, checkPassword(hash, "hunter2"))
	assert.False(t, checkPassword(hash, "hunter3"))
	assert.False(t, checkPassword("", "hunter2"))
}

func TestToAccount(t *testing.T) {
	until := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := toAccount(&AccountRow{Username: "alice", StaffModLevel: 3, MutedUntil: &until})
	assert.Equal(t, "alice", a.Username)
	assert.Equal(t, 3, a.StaffModLevel)
	assert.True(t, a.BannedUntil.IsZero())
	assert.Equal(t, until, a.MutedUntil)
}

func TestWriterRunsJobsInOrder(t *testing.T) {
	w := NewWriter(8, time.Second, zap.NewNop())
	var mu sync.Mutex
	var got []int
	for i := range 5 {
		require.True(t, w.Enqueue("job", func(context.Context) error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			if i == 2 {
				return errors.New("boom")
			}
			return nil
		}))
	}
	w.Close()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.False(t, w.Enqueue("late", func(context.Context) error { return nil }))
	w.Close()
}

func TestWriterDropsWhenFull(t *testing.T) {
	w := NewWriter(1, time.Second, zap.NewNop())
	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, w.Enqueue("block", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started
	assert.True(t, w.Enqueue("queued", func(context.Context) error { return nil }))
	assert.False(t, w.Enqueue("dropped", func(context.Context) error { return nil }))
	close(release)
	w.Close()
}

func TestSessionRepoTracksOpenSessions(t *testing.T) {
	w := NewWriter(1, time.Second, zap.NewNop())
	w.Close()
	r := NewSessionRepo(nil, w)
	bus := event.NewBus()
	r.Subscribe(bus)

	event.Emit(bus, event.PlayerLoggedIn{Username: "alice", RemoteAddr: "10.0.0.1:5000"})
	bus.SwapBuffers()
	bus.DispatchAll()
	require.Contains(t, r.open, "alice")

	event.Emit(bus, event.PlayerLoggedOut{Username: "alice"})
	event.Emit(bus, event.PlayerLoggedOut{Username: "bob"})
	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Empty(t, r.open)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "10.0.0.1", hostOf("10.0.0.1:5000"))
	assert.Equal(t, "pipe", hostOf("pipe"))
}

func TestAppNameCarriesNode(t *testing.T) {
	assert.Equal(t, "tickworld-node-10", appName(10))
}

func TestWealthRepoBatches(t *testing.T) {
	r := NewWealthRepo(nil, 4, zap.NewNop())
	var mu sync.Mutex
	var written []world.WealthEvent
	r.flush = func(_ context.Context, batch []world.WealthEvent) error {
		mu.Lock()
		written = append(written, batch...)
		mu.Unlock()
		return nil
	}

	r.RecordWealth(world.WealthEvent{Username: "alice", Coins: 10, Buy: true})
	r.RecordWealth(world.WealthEvent{Username: "alice", Coins: -4})
	for range 10 {
		r.RecordWealth(world.WealthEvent{Username: "spam"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Run(ctx)

	require.Len(t, written, 4, "queue holds four, the rest were dropped")
	assert.Equal(t, 10, written[0].Coins)
	assert.Equal(t, -4, written[1].Coins)
}
