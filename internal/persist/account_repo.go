package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tickworld/server/internal/login"
)

type AccountRow struct {
	Username      string
	PasswordHash  string
	StaffModLevel int16
	BannedUntil   *time.Time
	MutedUntil    *time.Time
	IP            string
	CreatedAt     time.Time
	LastLogin     *time.Time
}

// AccountRepo stores accounts. It implements login.Accounts and, through
// its writer, the non-blocking moderation calls made by admin commands.
type AccountRepo struct {
	db     *DB
	writer *Writer
	log    *zap.Logger
}

func NewAccountRepo(db *DB, writer *Writer, log *zap.Logger) *AccountRepo {
	return &AccountRepo{db: db, writer: writer, log: log}
}

func (r *AccountRepo) Load(ctx context.Context, username string) (*AccountRow, error) {
	row := &AccountRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT username, password_hash, staff_mod_level, banned_until, muted_until,
		        COALESCE(ip,''), created_at, last_login
		 FROM accounts WHERE username = $1`, username,
	).Scan(
		&row.Username, &row.PasswordHash, &row.StaffModLevel, &row.BannedUntil, &row.MutedUntil,
		&row.IP, &row.CreatedAt, &row.LastLogin,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", username, err)
	}
	return row, nil
}

func (r *AccountRepo) Create(ctx context.Context, username, rawPassword, ip string) (*AccountRow, error) {
	hash, err := hashPassword(rawPassword)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	row := &AccountRow{
		Username:     username,
		PasswordHash: hash,
		IP:           ip,
		CreatedAt:    now,
		LastLogin:    &now,
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO accounts (username, password_hash, ip, last_login)
		 VALUES ($1, $2, $3, $4)`,
		row.Username, row.PasswordHash, row.IP, row.LastLogin,
	)
	if err != nil {
		return nil, fmt.Errorf("create account %s: %w", username, err)
	}
	return row, nil
}

func (r *AccountRepo) UpdateLastLogin(ctx context.Context, username, ip string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE accounts SET last_login = NOW(), ip = $2 WHERE username = $1`,
		username, ip,
	)
	return err
}

// Authenticate implements login.Accounts.
func (r *AccountRepo) Authenticate(ctx context.Context, username, password, ip string, autoCreate bool) (*login.Account, error) {
	row, err := r.Load(ctx, username)
	if err != nil {
		return nil, err
	}
	if row == nil {
		if !autoCreate {
			return nil, nil
		}
		if row, err = r.Create(ctx, username, password, ip); err != nil {
			return nil, err
		}
		r.log.Info("account created", zap.String("username", username), zap.String("ip", ip))
		return toAccount(row), nil
	}
	if !checkPassword(row.PasswordHash, password) {
		return nil, nil
	}
	if err := r.UpdateLastLogin(ctx, username, ip); err != nil {
		r.log.Warn("last login update failed", zap.String("username", username), zap.Error(err))
	}
	return toAccount(row), nil
}

func toAccount(row *AccountRow) *login.Account {
	a := &login.Account{Username: row.Username, StaffModLevel: int(row.StaffModLevel)}
	if row.BannedUntil != nil {
		a.BannedUntil = *row.BannedUntil
	}
	if row.MutedUntil != nil {
		a.MutedUntil = *row.MutedUntil
	}
	return a
}

// Ban records a ban in the background.
func (r *AccountRepo) Ban(username string, until time.Time, by string) {
	r.writer.Enqueue("ban "+username, func(ctx context.Context) error {
		return r.sanction(ctx, "banned_until", "banned_by", username, until, by)
	})
}

// Mute records a mute in the background.
func (r *AccountRepo) Mute(username string, until time.Time, by string) {
	r.writer.Enqueue("mute "+username, func(ctx context.Context) error {
		return r.sanction(ctx, "muted_until", "muted_by", username, until, by)
	})
}

func (r *AccountRepo) sanction(ctx context.Context, untilCol, byCol, username string, until time.Time, by string) error {
	tag, err := r.db.Pool.Exec(ctx,
		fmt.Sprintf(`UPDATE accounts SET %s = $2, %s = $3 WHERE username = $1`, untilCol, byCol),
		username, until, by,
	)
	if err != nil {
		return fmt.Errorf("set %s for %s: %w", untilCol, username, err)
	}
	if tag.RowsAffected() == 0 {
		r.log.Warn("sanction for unknown account", zap.String("username", username), zap.String("column", untilCol))
	}
	return nil
}

func hashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
