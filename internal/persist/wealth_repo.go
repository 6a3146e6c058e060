package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tickworld/server/internal/world"
)

const (
	wealthBatch    = 64
	wealthInterval = time.Second
)

// WealthRepo logs shop trades. RecordWealth only queues the event; Run
// writes them in batches, each batch in one transaction.
type WealthRepo struct {
	db     *DB
	events chan world.WealthEvent
	flush  func(ctx context.Context, batch []world.WealthEvent) error
	log    *zap.Logger
}

func NewWealthRepo(db *DB, size int, log *zap.Logger) *WealthRepo {
	r := &WealthRepo{
		db:     db,
		events: make(chan world.WealthEvent, max(size, 1)),
		log:    log,
	}
	r.flush = r.insert
	return r
}

// RecordWealth implements world.WealthRecorder. A full queue drops the
// record.
func (r *WealthRepo) RecordWealth(ev world.WealthEvent) {
	select {
	case r.events <- ev:
	default:
		r.log.Warn("wealth queue full, dropping record", zap.String("username", ev.Username))
	}
}

// Run batches queued records until ctx ends, then writes what is left.
func (r *WealthRepo) Run(ctx context.Context) {
	t := time.NewTicker(wealthInterval)
	defer t.Stop()
	batch := make([]world.WealthEvent, 0, wealthBatch)
	write := func() {
		if len(batch) == 0 {
			return
		}
		wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.flush(wctx, batch); err != nil {
			r.log.Error("wealth log write failed", zap.Int("records", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}
	for {
		select {
		case ev := <-r.events:
			batch = append(batch, ev)
			if len(batch) >= wealthBatch {
				write()
			}
		case <-t.C:
			write()
		case <-ctx.Done():
			for {
				select {
				case ev := <-r.events:
					batch = append(batch, ev)
				default:
					write()
					return
				}
			}
		}
	}
}

func (r *WealthRepo) insert(ctx context.Context, batch []world.WealthEvent) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		for _, e := range batch {
			b.Queue(`INSERT INTO wealth_log (tick, username, shop, obj, count, coins, buy)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				e.Tick, e.Username, e.Shop, e.Obj, e.Count, e.Coins, e.Buy)
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("wealth insert: %w", err)
		}
		return nil
	})
}
