package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/klauspost/compress/zstd"
)

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// maxSnapshot caps a decompressed snapshot.
const maxSnapshot = 8 << 20

func compress(data []byte) []byte {
	return encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
}

func decompress(data []byte) ([]byte, error) {
	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	if len(out) > maxSnapshot {
		return nil, fmt.Errorf("snapshot too large: %d bytes", len(out))
	}
	return out, nil
}

// SaveRepo stores player snapshots compressed with zstd. It implements
// world.Saver and login.Snapshots.
type SaveRepo struct {
	db *DB
}

func NewSaveRepo(db *DB) *SaveRepo {
	return &SaveRepo{db: db}
}

func (r *SaveRepo) SavePlayer(ctx context.Context, username string, snapshot []byte) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO player_saves (username, data, raw_size, saved_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (username) DO UPDATE
		 SET data = EXCLUDED.data, raw_size = EXCLUDED.raw_size, saved_at = EXCLUDED.saved_at`,
		username, compress(snapshot), len(snapshot),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", username, err)
	}
	return nil
}

// LoadPlayer returns nil, nil for a player who has never been saved.
func (r *SaveRepo) LoadPlayer(ctx context.Context, username string) ([]byte, error) {
	var data []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT data FROM player_saves WHERE username = $1`, username,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", username, err)
	}
	return decompress(data)
}
