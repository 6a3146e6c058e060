package net

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSServer accepts websocket clients on one HTTP path. Each text frame
// carries one message envelope.
type WSServer struct {
	upgrader websocket.Upgrader
	opts     SessionOptions
	handle   Handler
	log      *zap.Logger
	srv      *http.Server
}

func NewWSServer(bindAddr, path string, opts SessionOptions, handle Handler, log *zap.Logger) *WSServer {
	s := &WSServer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		opts:   opts,
		handle: handle,
		log:    log,
	}
	mux := http.NewServeMux()
	mux.Handle(path, s)
	s.srv = &http.Server{Addr: bindAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	return s
}

func (s *WSServer) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(MaxFrame)

	sess := newSession(wsTransport{conn: conn}, s.opts, s.log)
	sess.Start()
	s.log.Debug("client connected",
		zap.Uint64("session", sess.ID),
		zap.String("ip", sess.IP()),
		zap.String("transport", "websocket"),
	)
	go s.handle(sess)
}

// ListenAndServe blocks until Shutdown.
func (s *WSServer) ListenAndServe() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *WSServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
