package net

import (
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// transport moves whole messages over one connection. Reads happen on the
// session's reader goroutine and writes on its writer goroutine.
type transport interface {
	ReadMessage(deadline time.Time) ([]byte, error)
	WriteMessage(data []byte, deadline time.Time) error
	Close() error
	RemoteAddr() net.Addr
}

// frameTransport carries length-prefixed frames over a stream connection.
type frameTransport struct {
	conn net.Conn
}

func (t frameTransport) ReadMessage(deadline time.Time) ([]byte, error) {
	if !deadline.IsZero() {
		_ = t.conn.SetReadDeadline(deadline)
	}
	return ReadFrame(t.conn)
}

func (t frameTransport) WriteMessage(data []byte, deadline time.Time) error {
	_ = t.conn.SetWriteDeadline(deadline)
	return WriteFrame(t.conn, data)
}

func (t frameTransport) Close() error         { return t.conn.Close() }
func (t frameTransport) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }

// wsTransport carries one message per websocket text frame.
type wsTransport struct {
	conn *websocket.Conn
}

func (t wsTransport) ReadMessage(deadline time.Time) ([]byte, error) {
	if !deadline.IsZero() {
		_ = t.conn.SetReadDeadline(deadline)
	}
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t wsTransport) WriteMessage(data []byte, deadline time.Time) error {
	_ = t.conn.SetWriteDeadline(deadline)
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t wsTransport) Close() error         { return t.conn.Close() }
func (t wsTransport) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }
