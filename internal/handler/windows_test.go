package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/script"
	"github.com/tickworld/server/internal/world"
)

func TestIfButtonRunsComponentHandler(t *testing.T) {
	h := newHarness(t)
	p, _ := h.login(t, "alice", 0)

	com := -1
	h.w.Scripts.Register(script.IfButton, 2423, func(ctx *world.ScriptContext) {
		com = ctx.Player.Selection.Com
	})
	h.send(t, p, packet.IfButton{Component: 2423})
	assert.Equal(t, 2423, com)
}

func TestCloseModalFiresIfClose(t *testing.T) {
	h := newHarness(t)
	p, _ := h.login(t, "alice", 0)

	closed := 0
	h.w.Scripts.Register(script.IfClose, 3824, func(*world.ScriptContext) { closed++ })

	p.OpenMainModal(3824)
	h.send(t, p, typed("close_modal", struct{}{}))
	assert.Equal(t, 1, closed)
	assert.False(t, p.ContainsModal())

	h.send(t, p, typed("close_modal", struct{}{}))
	assert.Equal(t, 1, closed, "nothing open")
}

func TestResumeDialogChain(t *testing.T) {
	h := newHarness(t)
	p, _ := h.login(t, "alice", 0)

	var answers []int
	p.OpenChatModal(2469, func(ctx *world.ScriptContext) {
		answers = append(answers, ctx.LastInt)
		ctx.Player.OpenChatModal(2469, func(ctx *world.ScriptContext) {
			answers = append(answers, ctx.LastInt)
		})
	})
	require.True(t, p.Waiting())

	h.send(t, p, packet.ResumePauseButton{Choice: 2})
	assert.True(t, p.Waiting(), "second dialog opened")

	h.send(t, p, packet.ResumePCountDialog{Input: -5})
	assert.True(t, p.Waiting(), "negative count ignored")

	h.send(t, p, packet.ResumePCountDialog{Input: 28})
	assert.False(t, p.Waiting())
	assert.Equal(t, []int{2, 28}, answers)
}

func TestResumeWithoutDialog(t *testing.T) {
	h := newHarness(t)
	p, _ := h.login(t, "alice", 0)
	h.send(t, p, packet.ResumePauseButton{Choice: 1})
	assert.False(t, p.Waiting())
}

func TestMoveClickCancelsDialog(t *testing.T) {
	h := newHarness(t)
	p, _ := h.login(t, "alice", 0)
	p.OpenChatModal(2469, func(*world.ScriptContext) { t.Fatal("resumed after walking away") })

	h.send(t, p, packet.MoveClick{X: 3203, Z: 3200})
	assert.False(t, p.Waiting())
	h.send(t, p, packet.ResumePauseButton{Choice: 1})
}
