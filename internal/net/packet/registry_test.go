package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatchDecodesBody(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var got MoveClick
	reg.Register("move_click", []SessionState{StateInWorld}, func(sess any, r *Reader) {
		require.NoError(t, r.Decode(&got))
		assert.Equal(t, "player", sess)
	})

	data, err := Encode(MoveClick{X: 3200, Z: 3201, CtrlRun: true})
	require.NoError(t, err)
	require.NoError(t, reg.Dispatch("player", StateInWorld, data))
	assert.Equal(t, MoveClick{X: 3200, Z: 3201, CtrlRun: true}, got)
}

func TestDispatchUnknownTypeIsIgnored(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	assert.NoError(t, reg.Dispatch(nil, StateInWorld, []byte(`{"type":"nope"}`)))
}

func TestDispatchRejectsWrongState(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register("logout", []SessionState{StateInWorld}, func(any, *Reader) {})
	err := reg.Dispatch(nil, StateHandshake, []byte(`{"type":"logout"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")
}

func TestDispatchRecoversPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register("boom", []SessionState{StateInWorld}, func(any, *Reader) { panic("bad") })
	err := reg.Dispatch(nil, StateInWorld, []byte(`{"type":"boom"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
}

func TestDispatchMalformed(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	assert.Error(t, reg.Dispatch(nil, StateInWorld, nil))
	assert.Error(t, reg.Dispatch(nil, StateInWorld, []byte(`{"data":{}}`)))
	assert.Error(t, reg.Dispatch(nil, StateInWorld, []byte(`not json`)))
}

func TestEncodeEmptyBody(t *testing.T) {
	data, err := Encode(IfClose{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"if_close"}`, string(data))

	data, err = Encode(Typed{Type: "op_npc", Body: OpEntity{ID: 4, Op: 2}})
	require.NoError(t, err)
	r, err := NewReader(data)
	require.NoError(t, err)
	assert.Equal(t, "op_npc", r.Type())
	var op OpEntity
	require.NoError(t, r.Decode(&op))
	assert.Equal(t, 2, op.Op)
}

func TestUserEvents(t *testing.T) {
	assert.True(t, IsUserEvent("move_click"))
	assert.True(t, IsUserEvent("inv_button_d"))
	assert.False(t, IsUserEvent("no_timeout"))
}

func TestWriterDrain(t *testing.T) {
	w := NewWriter()
	w.Write(MessageGame{Text: "hi"})
	w.Write(IfClose{})
	assert.Equal(t, 2, w.Len())
	msgs := w.Drain()
	assert.Len(t, msgs, 2)
	assert.Zero(t, w.Len())
}
