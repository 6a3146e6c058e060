package net

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tickworld/server/internal/net/packet"
)

var (
	ErrClosed     = errors.New("session closed")
	ErrOutputFull = errors.New("output queue full")
)

var sessionIDs atomic.Uint64

// SessionOptions sizes a session's queues and limits.
type SessionOptions struct {
	InQueueSize      int
	OutQueueSize     int
	PacketsPerSecond int // 0 = unlimited
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

// Session is one client connection. Network I/O runs in dedicated
// goroutines; the pending output buffer belongs to the login service until
// the login is queued and to the tick goroutine after that.
type Session struct {
	ID   uint64
	UUID uuid.UUID

	t     transport
	addr  string
	state atomic.Int32 // packet.SessionState stored as int32

	in  chan []byte // reader goroutine -> tick goroutine
	out chan []byte // tick goroutine -> writer goroutine

	pending []packet.Message

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// Per-second packet rate limiter (readLoop goroutine only, no lock needed)
	pktPerSec  int
	pktCount   int
	pktResetAt int64

	readTimeout  time.Duration
	writeTimeout time.Duration

	log *zap.Logger
}

func newSession(t transport, opts SessionOptions, log *zap.Logger) *Session {
	id := sessionIDs.Add(1)
	s := &Session{
		ID:           id,
		UUID:         uuid.New(),
		t:            t,
		addr:         t.RemoteAddr().String(),
		in:           make(chan []byte, max(opts.InQueueSize, 1)),
		out:          make(chan []byte, max(opts.OutQueueSize, 1)),
		closeCh:      make(chan struct{}),
		pktPerSec:    opts.PacketsPerSecond,
		readTimeout:  opts.ReadTimeout,
		writeTimeout: opts.WriteTimeout,
		log:          log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateHandshake))
	return s
}

// NewSession wraps a stream connection carrying length-prefixed frames.
func NewSession(conn net.Conn, opts SessionOptions, log *zap.Logger) *Session {
	return newSession(frameTransport{conn: conn}, opts, log)
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Receive pops one inbound message without blocking.
func (s *Session) Receive() ([]byte, bool) {
	select {
	case data := <-s.in:
		return data, true
	default:
		return nil, false
	}
}

// Next waits for one inbound message. The login service uses it before the
// player is in the world.
func (s *Session) Next(ctx context.Context) ([]byte, error) {
	select {
	case data := <-s.in:
		return data, nil
	case <-s.closeCh:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Write buffers a message until the next Flush.
func (s *Session) Write(msg packet.Message) {
	if s.closed.Load() {
		return
	}
	s.pending = append(s.pending, msg)
}

// Flush encodes the buffered messages and hands them to the writer
// goroutine. It never blocks: a client whose queue is full is disconnected.
func (s *Session) Flush() error {
	defer func() { s.pending = s.pending[:0] }()
	if s.closed.Load() {
		return ErrClosed
	}
	for _, msg := range s.pending {
		data, err := packet.Encode(msg)
		if err != nil {
			s.log.Error("message encode failed", zap.String("type", msg.MessageType()), zap.Error(err))
			continue
		}
		select {
		case s.out <- data:
		default:
			s.log.Warn("output queue full, dropping slow client")
			s.Close()
			return ErrOutputFull
		}
	}
	return nil
}

// Close shuts the session down. Messages already queued are written first
// when the writer can still reach the client.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
	})
}

func (s *Session) IsConnected() bool { return !s.closed.Load() }

func (s *Session) IsClosed() bool { return s.closed.Load() }

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} { return s.closeCh }

func (s *Session) RemoteAddr() string { return s.addr }

// IP is the remote host without the port.
func (s *Session) IP() string {
	host, _, err := net.SplitHostPort(s.addr)
	if err != nil {
		return s.addr
	}
	return host
}

func (s *Session) readDeadline() time.Time {
	if s.readTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(s.readTimeout)
}

// readLoop runs in its own goroutine. It reads messages from the transport
// and pushes them onto the inbound queue for the tick goroutine.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		data, err := s.t.ReadMessage(s.readDeadline())
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read failed", zap.Error(err))
			}
			return
		}

		if s.pktPerSec > 0 {
			now := time.Now().Unix()
			if now != s.pktResetAt {
				s.pktCount = 0
				s.pktResetAt = now
			}
			s.pktCount++
			if s.pktCount > s.pktPerSec {
				s.log.Warn("packet rate exceeded, disconnecting", zap.Int("pps", s.pktCount))
				return
			}
		}

		// Blocking here only stalls this client's reader.
		select {
		case s.in <- data:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop runs in its own goroutine. It writes queued messages until the
// session closes, then drains what is left and closes the transport.
func (s *Session) writeLoop() {
	defer func() {
		_ = s.t.Close()
	}()

	for {
		select {
		case data := <-s.out:
			if !s.writeOne(data) {
				s.Close()
				return
			}
		case <-s.closeCh:
			for {
				select {
				case data := <-s.out:
					if !s.writeOne(data) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (s *Session) writeOne(data []byte) bool {
	timeout := s.writeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if err := s.t.WriteMessage(data, time.Now().Add(timeout)); err != nil {
		s.log.Debug("write failed", zap.Error(err))
		return false
	}
	return true
}
