package world

import (
	"errors"

	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/textutil"
)

// MaxPrivateMessage caps a private message after sanitising.
const MaxPrivateMessage = 80

var (
	ErrNotOnline = errors.New("player is not online")
	ErrMuted     = errors.New("player is muted")
)

// friendVisible reports whether owner shows as online to viewer. A player
// who ignores viewer appears offline to them.
func friendVisible(owner, viewer *Player) bool {
	return !owner.IsIgnoring(viewer.hash64)
}

// writeFriend sends one friend list entry with the friend's world or 0
// when offline.
func (w *World) writeFriend(p *Player, hash int64) {
	node := 0
	if f, ok := w.PlayerByHash(hash); ok && !f.loggingOut && friendVisible(f, p) {
		node = w.NodeID
	}
	p.Write(packet.UpdateFriendList{Name: textutil.DisplayName(textutil.FromBase37(hash)), NodeID: node})
}

func (w *World) writeIgnores(p *Player) {
	names := make([]string, 0, len(p.Ignores))
	for _, h := range p.Ignores {
		names = append(names, textutil.DisplayName(textutil.FromBase37(h)))
	}
	p.Write(packet.UpdateIgnoreList{Names: names})
}

// notifyFriends tells everyone who has p as a friend that p went on or
// offline.
func (w *World) notifyFriends(p *Player, online bool) {
	node := 0
	if online {
		node = w.NodeID
	}
	name := textutil.DisplayName(p.Username)
	for _, other := range w.Players.All() {
		if other == p || !other.IsFriend(p.hash64) {
			continue
		}
		n := node
		if !friendVisible(p, other) {
			n = 0
		}
		other.Write(packet.UpdateFriendList{Name: name, NodeID: n})
	}
}

// AddFriend adds a name to p's friend list and reports its status.
func (w *World) AddFriend(p *Player, name string) bool {
	hash := textutil.ToBase37(textutil.CanonicalName(name))
	if hash == p.hash64 || !p.AddFriend(hash) {
		return false
	}
	w.writeFriend(p, hash)
	return true
}

// AddIgnore adds a name to p's ignore list. p disappears from that
// player's friend list.
func (w *World) AddIgnore(p *Player, name string) bool {
	hash := textutil.ToBase37(textutil.CanonicalName(name))
	if hash == p.hash64 || !p.AddIgnore(hash) {
		return false
	}
	w.writeIgnores(p)
	if other, ok := w.PlayerByHash(hash); ok && other.IsFriend(p.hash64) {
		w.writeFriend(other, p.hash64)
	}
	return true
}

func (w *World) RemoveIgnore(p *Player, name string) bool {
	hash := textutil.ToBase37(textutil.CanonicalName(name))
	if !p.RemoveIgnore(hash) {
		return false
	}
	w.writeIgnores(p)
	if other, ok := w.PlayerByHash(hash); ok && other.IsFriend(p.hash64) {
		w.writeFriend(other, p.hash64)
	}
	return true
}

// PrivateMessage delivers text from p to the named player. Messages to
// someone ignoring p are dropped silently.
func (w *World) PrivateMessage(p *Player, name, text string) error {
	if p.IsMuted(w.tick) {
		return ErrMuted
	}
	to, ok := w.PlayerByHash(textutil.ToBase37(textutil.CanonicalName(name)))
	if !ok || to.loggingOut {
		return ErrNotOnline
	}
	text = textutil.SanitizeChat(text, MaxPrivateMessage)
	if text == "" || to.IsIgnoring(p.hash64) {
		return nil
	}
	to.Write(packet.MessagePrivateIn{From: textutil.DisplayName(p.Username), StaffModLevel: p.StaffModLevel, Text: text})
	return nil
}
