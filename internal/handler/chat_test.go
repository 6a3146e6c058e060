package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickworld/server/internal/net/packet"
)

func TestMessagePublic(t *testing.T) {
	h := newHarness(t)
	p, _ := h.login(t, "alice", 0)

	h.send(t, p, packet.MessagePublic{Text: "hello world", Color: 3, Effect: 1})
	require.NotNil(t, p.ChatMessage)
	assert.Equal(t, 3, p.ChatMessage.Color)
	assert.Equal(t, 1, p.ChatMessage.Effect)
	assert.NotEmpty(t, p.ChatMessage.Text)
}

func TestMessagePublicRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	p, _ := h.login(t, "alice", 0)

	h.send(t, p, packet.MessagePublic{Text: strings.Repeat("a", maxChat+1)})
	h.send(t, p, packet.MessagePublic{Text: "hi", Color: maxColor + 1})
	h.send(t, p, packet.MessagePublic{Text: "hi", Effect: -1})
	assert.Nil(t, p.ChatMessage)
}

func TestMutedPlayerCannotTalk(t *testing.T) {
	h := newHarness(t)
	p, c := h.login(t, "alice", 0)
	p.MutedUntil = h.w.Tick() + 100

	h.send(t, p, packet.MessagePublic{Text: "hello"})
	assert.Nil(t, p.ChatMessage)
	assert.Equal(t, []string{mutedNotice}, games(t, p, c))

	h.send(t, p, packet.MessagePrivate{Target: "bob", Text: "hello"})
	assert.Equal(t, []string{mutedNotice}, games(t, p, c))
}

func TestMessagePrivate(t *testing.T) {
	h := newHarness(t)
	p, c := h.login(t, "alice", 0)

	h.send(t, p, packet.MessagePrivate{Target: "bob", Text: "hello"})
	assert.Equal(t, []string{"That player is not online."}, games(t, p, c))

	bob, bc := h.login(t, "bob", 0)
	h.send(t, p, packet.MessagePrivate{Target: "Bob", Text: "hello"})
	assert.Empty(t, games(t, p, c))

	require.NoError(t, bob.FlushOut())
	var in []packet.MessagePrivateIn
	for _, m := range bc.out {
		if pm, ok := m.(packet.MessagePrivateIn); ok {
			in = append(in, pm)
		}
	}
	require.Len(t, in, 1)
	assert.Equal(t, "Alice", in[0].From)
}
