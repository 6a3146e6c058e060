package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/world"
)

// Moderation persists bans and mutes issued from admin commands. Calls are
// made from the tick goroutine and must not block on storage.
type Moderation interface {
	Ban(username string, until time.Time, by string)
	Mute(username string, until time.Time, by string)
}

// Deps holds shared dependencies injected into all message handlers.
type Deps struct {
	World      *world.World
	Log        *zap.Logger
	TickRate   time.Duration
	Moderation Moderation // may be nil

	// Reload swaps in freshly loaded data tables and scripts. May be nil.
	Reload func() error
	// SetTickRate changes the game loop period. May be nil.
	SetTickRate func(time.Duration)
}

type playerHandler func(p *world.Player, r *packet.Reader, deps *Deps)

// RegisterAll registers all in-world message handlers into the registry.
// Login and handshake messages are handled by the login service before a
// player exists.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	inWorld := []packet.SessionState{packet.StateInWorld}
	register := func(typ string, fn playerHandler) {
		reg.Register(typ, inWorld, func(sess any, r *packet.Reader) {
			fn(sess.(*world.Player), r, deps)
		})
	}

	register("move_click", HandleMoveClick)

	register("op_npc", HandleOpNpc)
	register("op_npc_u", HandleOpNpcU)
	register("op_npc_t", HandleOpNpcT)
	register("op_loc", HandleOpLoc)
	register("op_loc_u", HandleOpLocU)
	register("op_loc_t", HandleOpLocT)
	register("op_obj", HandleOpObj)
	register("op_obj_u", HandleOpObjU)
	register("op_obj_t", HandleOpObjT)
	register("op_player", HandleOpPlayer)
	register("op_player_u", HandleOpPlayerU)
	register("op_player_t", HandleOpPlayerT)

	register("op_held", HandleOpHeld)
	register("op_held_u", HandleOpHeldU)
	register("op_held_t", HandleOpHeldT)
	register("inv_button", HandleInvButton)
	register("inv_button_d", HandleInvButtonD)

	register("if_button", HandleIfButton)
	register("close_modal", HandleCloseModal)
	register("resume_pause_button", HandleResumePauseButton)
	register("resume_p_count_dialog", HandleResumePCountDialog)

	register("message_public", HandleMessagePublic)
	register("message_private", HandleMessagePrivate)
	register("friend_list_add", HandleFriendAdd)
	register("friend_list_del", HandleFriendDel)
	register("ignore_list_add", HandleIgnoreAdd)
	register("ignore_list_del", HandleIgnoreDel)

	register("idle_timer", HandleIdleTimer)
	register("no_timeout", HandleNoTimeout)
	register("logout", HandleLogout)
	register("client_cheat", HandleClientCheat)
}

// decode reads the message body into v, logging and reporting false on a
// malformed body.
func decode(p *world.Player, r *packet.Reader, v any, deps *Deps) bool {
	if err := r.Decode(v); err != nil {
		deps.Log.Debug("malformed message",
			zap.String("username", p.Username),
			zap.String("type", r.Type()),
			zap.Error(err),
		)
		return false
	}
	return true
}
