package world

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// saveOrder keeps snapshot writes for one username in the order they were
// taken. Each snapshot gets a sequence number on the tick goroutine; a write
// holds the username's lock and is skipped when a newer snapshot has already
// been stored.
type saveOrder struct {
	seq int64 // tick goroutine only

	mu    sync.Mutex
	users map[string]*userSaves

	inflight sync.WaitGroup
}

// 同一帳號的存檔依序寫入：登出存檔不會被較舊的自動存檔覆蓋。
type userSaves struct {
	mu     sync.Mutex
	stored int64
}

func (o *saveOrder) next() int64 {
	o.seq++
	return o.seq
}

func (o *saveOrder) user(username string) *userSaves {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.users == nil {
		o.users = make(map[string]*userSaves)
	}
	u, ok := o.users[username]
	if !ok {
		u = &userSaves{}
		o.users[username] = u
	}
	return u
}

// write stores snap unless a later snapshot of the same player is already
// stored. It reports whether the saver was called.
func (o *saveOrder) write(ctx context.Context, saver Saver, username string, seq int64, snap []byte) (bool, error) {
	u := o.user(username)
	u.mu.Lock()
	defer u.mu.Unlock()
	if seq <= u.stored {
		return false, nil
	}
	if err := saver.SavePlayer(ctx, username, snap); err != nil {
		return true, err
	}
	u.stored = seq
	return true, nil
}

// SavePlayer writes a snapshot through the Saver, bounded by the save timeout.
// It waits for an in-flight autosave of the same player so the newer
// snapshot always lands last.
func (w *World) SavePlayer(p *Player) {
	if w.saver == nil {
		return
	}
	snap, err := p.Save()
	if err != nil {
		w.log.Error("snapshot encode failed", zap.String("username", p.Username), zap.Error(err))
		return
	}
	seq := w.saves.next()
	ctx, cancel := context.WithTimeout(context.Background(), w.saveTimeout)
	defer cancel()
	if _, err := w.saves.write(ctx, w.saver, p.Username, seq, snap); err != nil {
		w.log.Error("player save failed", zap.String("username", p.Username), zap.Error(err))
	}
}

// Autosave snapshots every player on the tick goroutine and writes them in
// the background.
func (w *World) Autosave() {
	if w.saver == nil || w.Players.Count() == 0 {
		return
	}
	type pending struct {
		username string
		seq      int64
		snap     []byte
	}
	batch := make([]pending, 0, w.Players.Count())
	for _, p := range w.Players.All() {
		snap, err := p.Save()
		if err != nil {
			w.log.Error("snapshot encode failed", zap.String("username", p.Username), zap.Error(err))
			continue
		}
		batch = append(batch, pending{p.Username, w.saves.next(), snap})
	}
	saver, timeout, log := w.saver, w.saveTimeout, w.log
	order := &w.saves
	order.inflight.Add(1)
	go func() {
		defer order.inflight.Done()
		written := 0
		for _, b := range batch {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			ok, err := order.write(ctx, saver, b.username, b.seq, b.snap)
			cancel()
			if err != nil {
				log.Error("autosave failed", zap.String("username", b.username), zap.Error(err))
				continue
			}
			if ok {
				written++
			}
		}
		log.Debug("autosave complete", zap.Int("players", len(batch)), zap.Int("written", written))
	}()
}

// SaveAll saves every online player and waits for background autosaves to
// finish. The engine calls it once the world has shut down.
func (w *World) SaveAll() {
	for _, p := range w.Players.All() {
		w.SavePlayer(p)
	}
	w.saves.inflight.Wait()
}
