// Package login authenticates new connections and queues them for the
// world's login phase. It runs on the connection goroutines, never on the
// tick goroutine, so storage calls here may block.
package login

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tickworld/server/internal/metrics"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/textutil"
	"github.com/tickworld/server/internal/world"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRateLimited        = errors.New("too many login attempts")
	ErrBanned             = errors.New("account is banned")
	ErrInProgress         = errors.New("login already in progress")
	ErrProtocol           = errors.New("expected a login message")
)

// Account is what the account store knows about a user.
type Account struct {
	Username      string
	StaffModLevel int
	BannedUntil   time.Time
	MutedUntil    time.Time
}

// Accounts checks credentials. A wrong password is reported as a nil
// account and nil error. With autoCreate a missing account is created with
// the given password.
type Accounts interface {
	Authenticate(ctx context.Context, username, password, ip string, autoCreate bool) (*Account, error)
}

// Snapshots loads saved player state. A new player has no snapshot and
// gets nil, nil.
type Snapshots interface {
	LoadPlayer(ctx context.Context, username string) ([]byte, error)
}

// Queue receives authenticated players. *world.World implements it.
type Queue interface {
	QueueLogin(req world.LoginRequest)
}

// Conn is the connection side the service talks to. *net.Session
// implements it.
type Conn interface {
	world.Client
	Next(ctx context.Context) ([]byte, error)
	IP() string
	SetState(st packet.SessionState)
}

type Options struct {
	Accounts   Accounts
	Snapshots  Snapshots // may be nil: everyone starts fresh
	Queue      Queue
	AutoCreate bool
	Attempts   int
	Window     time.Duration
	// Timeout bounds the wait for the login message and the storage calls.
	Timeout  time.Duration
	TickRate time.Duration
	Metrics  *metrics.Metrics // may be nil
	Log      *zap.Logger
}

type Service struct {
	opts    Options
	limiter *ipLimiter
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]bool

	log *zap.Logger
}

func NewService(opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.TickRate <= 0 {
		opts.TickRate = 600 * time.Millisecond
	}
	if opts.Window <= 0 {
		opts.Window = 5 * time.Second
	}
	return &Service{
		opts:    opts,
		limiter: newIPLimiter(opts.Attempts, opts.Window),
		now:     time.Now,
		pending: make(map[string]bool),
		log:     opts.Log,
	}
}

// Serve handles one connection from its first message until it is queued
// for the world or rejected.
func (s *Service) Serve(c Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	defer cancel()

	req, err := s.login(ctx, c)
	if err != nil {
		s.reject(c, err)
		return
	}
	req.Client = c
	c.SetState(packet.StateLoggingIn)
	s.opts.Queue.QueueLogin(req)
	s.log.Info("login accepted",
		zap.String("username", req.Username),
		zap.String("ip", c.IP()),
	)
}

func (s *Service) login(ctx context.Context, c Conn) (world.LoginRequest, error) {
	data, err := c.Next(ctx)
	if err != nil {
		return world.LoginRequest{}, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	r, err := packet.NewReader(data)
	if err != nil || r.Type() != "login" {
		return world.LoginRequest{}, ErrProtocol
	}
	var m packet.Login
	if err := r.Decode(&m); err != nil {
		return world.LoginRequest{}, ErrProtocol
	}
	return s.Authenticate(ctx, m.Username, m.Password, c.IP())
}

// Authenticate runs every check short of the world's own duplicate and
// capacity checks and builds the request to queue.
func (s *Service) Authenticate(ctx context.Context, username, password, ip string) (world.LoginRequest, error) {
	name := textutil.CanonicalName(username)
	if !textutil.ValidName(name) || password == "" {
		return world.LoginRequest{}, ErrInvalidCredentials
	}
	now := s.now()
	if !s.limiter.Allow(ip, now) {
		return world.LoginRequest{}, ErrRateLimited
	}

	if !s.begin(name) {
		return world.LoginRequest{}, ErrInProgress
	}
	defer s.end(name)

	acct, err := s.opts.Accounts.Authenticate(ctx, name, password, ip, s.opts.AutoCreate)
	if err != nil {
		return world.LoginRequest{}, fmt.Errorf("authenticate %s: %w", name, err)
	}
	if acct == nil {
		return world.LoginRequest{}, ErrInvalidCredentials
	}
	if acct.BannedUntil.After(now) {
		return world.LoginRequest{}, ErrBanned
	}

	req := world.LoginRequest{Username: name, StaffModLevel: acct.StaffModLevel}
	if acct.MutedUntil.After(now) {
		req.MutedTicks = int64((acct.MutedUntil.Sub(now) + s.opts.TickRate - 1) / s.opts.TickRate)
	}
	if s.opts.Snapshots != nil {
		snap, err := s.opts.Snapshots.LoadPlayer(ctx, name)
		if err != nil {
			return world.LoginRequest{}, fmt.Errorf("load %s: %w", name, err)
		}
		req.Snapshot = snap
	}
	return req, nil
}

func (s *Service) begin(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[name] {
		return false
	}
	s.pending[name] = true
	return true
}

func (s *Service) end(name string) {
	s.mu.Lock()
	delete(s.pending, name)
	s.mu.Unlock()
}

func (s *Service) reject(c Conn, err error) {
	code, reason, label := rejection(err)
	switch label {
	case "server_error":
		s.log.Error("login failed", zap.String("ip", c.IP()), zap.Error(err))
	case "protocol":
		s.log.Debug("login dropped", zap.String("ip", c.IP()), zap.Error(err))
	default:
		s.log.Info("login rejected", zap.String("ip", c.IP()), zap.String("reason", label))
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.LoginRejections.WithLabelValues(label).Inc()
	}
	if code != 0 {
		c.Write(packet.LoginReject{Code: code, Reason: reason})
		_ = c.Flush()
	}
	c.Close()
}

// rejection maps an error to the login_reject code, its text and a metric
// label. Protocol errors get code 0: the connection is just dropped.
func rejection(err error) (code int, reason, label string) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return world.RejectInvalidCredentials, "Invalid username or password", "invalid_credentials"
	case errors.Is(err, ErrRateLimited):
		return world.RejectRateLimited, "Too many login attempts", "rate_limited"
	case errors.Is(err, ErrBanned):
		return world.RejectBanned, "Account is banned", "banned"
	case errors.Is(err, ErrInProgress):
		return world.RejectAlreadyOnline, "Already logged in", "already_online"
	case errors.Is(err, ErrProtocol), errors.Is(err, context.DeadlineExceeded):
		return 0, "", "protocol"
	}
	return world.RejectServerError, "Server error", "server_error"
}

// SweepLoop drops idle rate limit entries until ctx ends.
func (s *Service) SweepLoop(ctx context.Context) {
	t := time.NewTicker(s.opts.Window)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.limiter.Sweep(s.now())
		}
	}
}
