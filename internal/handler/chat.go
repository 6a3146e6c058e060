package handler

import (
	"errors"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/textutil"
	"github.com/tickworld/server/internal/world"
)

const (
	maxChat     = 80
	maxColor    = 11
	maxEffect   = 5
	mutedNotice = "You are muted and cannot talk."
)

// HandleMessagePublic processes message_public, overhead chat seen by
// nearby players.
func HandleMessagePublic(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.MessagePublic
	if !decode(p, r, &m, deps) {
		return
	}
	if utf8.RuneCountInString(m.Text) > maxChat {
		return
	}
	if m.Color < 0 || m.Color > maxColor || m.Effect < 0 || m.Effect > maxEffect {
		return
	}
	if p.IsMuted(deps.World.Tick()) {
		p.MessageGame(mutedNotice)
		return
	}
	text := textutil.SanitizeChat(m.Text, maxChat)
	if text == "" {
		return
	}
	p.PublicChat(world.ChatMessage{Text: text, Color: m.Color, Effect: m.Effect})
}

// HandleMessagePrivate processes message_private.
func HandleMessagePrivate(p *world.Player, r *packet.Reader, deps *Deps) {
	var m packet.MessagePrivate
	if !decode(p, r, &m, deps) || m.Target == "" {
		return
	}
	if utf8.RuneCountInString(m.Text) > maxChat {
		return
	}
	err := deps.World.PrivateMessage(p, m.Target, m.Text)
	switch {
	case err == nil:
	case errors.Is(err, world.ErrNotOnline):
		p.MessageGame("That player is not online.")
	case errors.Is(err, world.ErrMuted):
		p.MessageGame(mutedNotice)
	default:
		deps.Log.Warn("private message failed", zap.String("username", p.Username), zap.Error(err))
	}
}
