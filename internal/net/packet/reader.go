package packet

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the wire shape of every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Reader gives handlers typed access to one inbound message.
type Reader struct {
	env  Envelope
	size int
}

var errNoType = errors.New("message has no type")

func NewReader(data []byte) (*Reader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty message")
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return nil, errNoType
	}
	return &Reader{env: env, size: len(data)}, nil
}

// NewReaderFrom wraps a message that never went over the wire.
func NewReaderFrom(msg Message) (*Reader, error) {
	data, err := Encode(msg)
	if err != nil {
		return nil, err
	}
	return NewReader(data)
}

func (r *Reader) Type() string { return r.env.Type }
func (r *Reader) Len() int     { return r.size }

// Decode unmarshals the message body into v. A missing body leaves v untouched.
func (r *Reader) Decode(v any) error {
	if len(r.env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.env.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", r.env.Type, err)
	}
	return nil
}
