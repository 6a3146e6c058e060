package packet

import (
	"encoding/json"
	"fmt"
)

// Message is any server or client message body.
type Message interface {
	MessageType() string
}

// Encode wraps msg in an envelope.
func Encode(msg Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.MessageType(), err)
	}
	if string(body) == "{}" {
		body = nil
	}
	out, err := json.Marshal(Envelope{Type: msg.MessageType(), Data: body})
	if err != nil {
		return nil, fmt.Errorf("encode envelope %s: %w", msg.MessageType(), err)
	}
	return out, nil
}

// Writer buffers outbound messages for one tick.
type Writer struct {
	msgs []Message
}

func NewWriter() *Writer {
	return &Writer{msgs: make([]Message, 0, 16)}
}

func (w *Writer) Write(msg Message) { w.msgs = append(w.msgs, msg) }

// Drain returns the buffered messages and empties the buffer.
func (w *Writer) Drain() []Message {
	out := w.msgs
	w.msgs = make([]Message, 0, cap(out))
	return out
}

func (w *Writer) Len() int { return len(w.msgs) }
