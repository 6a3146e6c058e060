package persist

import (
	"context"
	"fmt"
	"net"

	"github.com/google/uuid"

	"github.com/tickworld/server/internal/core/event"
)

// SessionRepo keeps a row per stay in the world. Event handlers run on the
// tick goroutine; the inserts and updates go through the writer.
type SessionRepo struct {
	db     *DB
	writer *Writer
	open   map[string]uuid.UUID
}

func NewSessionRepo(db *DB, writer *Writer) *SessionRepo {
	return &SessionRepo{db: db, writer: writer, open: make(map[string]uuid.UUID)}
}

// Subscribe records logins and logouts from the world's event bus.
func (r *SessionRepo) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, r.loggedIn)
	event.Subscribe(bus, r.loggedOut)
}

func (r *SessionRepo) loggedIn(ev event.PlayerLoggedIn) {
	id := uuid.New()
	r.open[ev.Username] = id
	r.writer.Enqueue("session open "+ev.Username, func(ctx context.Context) error {
		_, err := r.db.Pool.Exec(ctx,
			`INSERT INTO login_sessions (id, username, ip) VALUES ($1, $2, $3)`,
			id, ev.Username, hostOf(ev.RemoteAddr),
		)
		return err
	})
}

func (r *SessionRepo) loggedOut(ev event.PlayerLoggedOut) {
	id, ok := r.open[ev.Username]
	if !ok {
		return
	}
	delete(r.open, ev.Username)
	r.writer.Enqueue("session close "+ev.Username, func(ctx context.Context) error {
		_, err := r.db.Pool.Exec(ctx,
			`UPDATE login_sessions SET logout_at = NOW(), forced = $2 WHERE id = $1`,
			id, ev.Forced,
		)
		return err
	})
}

// CloseStale ends sessions left open by a previous run that did not shut
// down cleanly.
func (r *SessionRepo) CloseStale(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE login_sessions SET logout_at = NOW(), forced = TRUE WHERE logout_at IS NULL`,
	)
	if err != nil {
		return 0, fmt.Errorf("close stale sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
