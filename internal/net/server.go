package net

import (
	"net"

	"go.uber.org/zap"
)

// Handler takes ownership of a freshly started session. It runs on its own
// goroutine.
type Handler func(sess *Session)

// Server accepts TCP connections and creates Sessions.
type Server struct {
	listener net.Listener
	opts     SessionOptions
	handle   Handler
	log      *zap.Logger
	closeCh  chan struct{}
}

func NewServer(bindAddr string, opts SessionOptions, handle Handler, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return newServer(ln, opts, handle, log), nil
}

func newServer(ln net.Listener, opts SessionOptions, handle Handler, log *zap.Logger) *Server {
	return &Server{
		listener: ln,
		opts:     opts,
		handle:   handle,
		log:      log,
		closeCh:  make(chan struct{}),
	}
}

// AcceptLoop runs in its own goroutine. It accepts connections, starts a
// session for each and hands it to the handler.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return // server shutting down
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		sess := NewSession(conn, s.opts, s.log)
		sess.Start()
		s.log.Debug("client connected",
			zap.Uint64("session", sess.ID),
			zap.String("ip", sess.IP()),
			zap.String("transport", "tcp"),
		)
		go s.handle(sess)
	}
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
