package handler

import (
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/textutil"
	"github.com/tickworld/server/internal/world"
)

// socialName decodes the username of a friend or ignore list change.
func socialName(p *world.Player, r *packet.Reader, deps *Deps) (string, bool) {
	var m packet.SocialName
	if !decode(p, r, &m, deps) {
		return "", false
	}
	name := textutil.CanonicalName(m.Username)
	if !textutil.ValidName(name) {
		return "", false
	}
	return name, true
}

// HandleFriendAdd processes friend_list_add.
func HandleFriendAdd(p *world.Player, r *packet.Reader, deps *Deps) {
	name, ok := socialName(p, r, deps)
	if !ok {
		return
	}
	if len(p.Friends) >= world.MaxFriends {
		p.MessageGame("Your friend list is full.")
		return
	}
	deps.World.AddFriend(p, name)
}

// HandleFriendDel processes friend_list_del.
func HandleFriendDel(p *world.Player, r *packet.Reader, deps *Deps) {
	if name, ok := socialName(p, r, deps); ok {
		p.RemoveFriend(textutil.ToBase37(name))
	}
}

// HandleIgnoreAdd processes ignore_list_add.
func HandleIgnoreAdd(p *world.Player, r *packet.Reader, deps *Deps) {
	name, ok := socialName(p, r, deps)
	if !ok {
		return
	}
	if len(p.Ignores) >= world.MaxIgnores {
		p.MessageGame("Your ignore list is full.")
		return
	}
	deps.World.AddIgnore(p, name)
}

// HandleIgnoreDel processes ignore_list_del.
func HandleIgnoreDel(p *world.Player, r *packet.Reader, deps *Deps) {
	if name, ok := socialName(p, r, deps); ok {
		deps.World.RemoveIgnore(p, name)
	}
}
