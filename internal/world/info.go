package world

import (
	"slices"

	"github.com/tickworld/server/internal/coord"
	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/net/packet"
)

// infoSpeed is the move speed shown to clients for this tick's movement.
func infoSpeed(pe *entity.PathingEntity) entity.MoveSpeed {
	switch {
	case pe.Tele:
		return entity.Instant
	case pe.RunDir != coord.None:
		return entity.Run
	case pe.WalkDir != coord.None:
		return entity.Walk
	}
	return entity.Stationary
}

// visiblePlayers collects pids within InfoRange of viewer from the zones around
// it, sorted ascending.
func (w *World) visiblePlayers(viewer *Player) []int {
	var ids []int
	w.zonesAround(viewer.Level, viewer.X, viewer.Z, InfoRange, func(players, _ []int) {
		for _, pid := range players {
			p, ok := w.Players.Get(pid)
			if !ok || !p.IsActive() || p.Level != viewer.Level {
				continue
			}
			if coord.DistanceTo(viewer.Rect(), p.Rect()) <= InfoRange {
				ids = append(ids, pid)
			}
		}
	})
	slices.Sort(ids)
	return slices.Compact(ids)
}

func (w *World) visibleNpcs(viewer *Player) []int {
	var ids []int
	w.zonesAround(viewer.Level, viewer.X, viewer.Z, InfoRange, func(_, npcs []int) {
		for _, nid := range npcs {
			n, ok := w.Npcs.Get(nid)
			if !ok || !n.IsActive() || n.Level != viewer.Level {
				continue
			}
			if coord.DistanceTo(viewer.Rect(), n.Rect()) <= InfoRange {
				ids = append(ids, nid)
			}
		}
	})
	slices.Sort(ids)
	return slices.Compact(ids)
}

// PlayerInfo builds the player_info for a viewer, the viewer included.
// Players the client has not seen before are sent with their appearance.
func (w *World) PlayerInfo(viewer *Player) packet.PlayerInfo {
	a := viewer.area
	ids := w.visiblePlayers(viewer)
	out := packet.PlayerInfo{Players: make([]packet.PlayerInfoEntry, 0, len(ids))}
	seen := make(map[int]struct{}, len(ids))
	for _, pid := range ids {
		p, _ := w.Players.Get(pid)
		out.Players = append(out.Players, playerEntry(p, !a.KnowsPlayer(pid)))
		seen[pid] = struct{}{}
	}
	a.players = seen
	return out
}

func playerEntry(p *Player, fresh bool) packet.PlayerInfoEntry {
	masks := p.Masks
	if fresh {
		masks |= PlayerAppearance
		if p.FaceEntity != -1 {
			masks |= PlayerFaceEntity
		}
	}
	e := packet.PlayerInfoEntry{
		Pid:       p.Index,
		X:         p.X,
		Z:         p.Z,
		Level:     p.Level,
		MoveSpeed: int(infoSpeed(&p.PathingEntity)),
		WalkDir:   int(p.WalkDir),
		RunDir:    int(p.RunDir),
		Jump:      p.Jump || fresh,
		Masks:     masks,
	}
	if masks&PlayerAppearance != 0 {
		e.Username = p.Username
		e.Combat = p.CombatLevel
	}
	if masks&PlayerFaceCoord != 0 {
		e.FaceX, e.FaceZ = p.FaceX, p.FaceZ
	}
	if masks&PlayerFaceEntity != 0 {
		e.Face = p.FaceEntity
	}
	if masks&PlayerAnim != 0 {
		e.Anim = p.AnimID
	}
	if masks&PlayerSay != 0 {
		e.Chat = p.Chat
	}
	if masks&PlayerChat != 0 && p.ChatMessage != nil {
		e.Chat = p.ChatMessage.Text
	}
	if masks&PlayerDamage != 0 {
		e.Damage = p.DamageTaken
		e.Health = p.CurrentHealth
		e.MaxHealth = p.MaxHealth
	}
	return e
}

// NpcInfo builds the npc_info for a viewer.
func (w *World) NpcInfo(viewer *Player) packet.NpcInfo {
	a := viewer.area
	ids := w.visibleNpcs(viewer)
	out := packet.NpcInfo{Npcs: make([]packet.NpcInfoEntry, 0, len(ids))}
	seen := make(map[int]struct{}, len(ids))
	for _, nid := range ids {
		n, _ := w.Npcs.Get(nid)
		out.Npcs = append(out.Npcs, npcEntry(n, !a.KnowsNpc(nid)))
		seen[nid] = struct{}{}
	}
	a.npcs = seen
	return out
}

func npcEntry(n *Npc, fresh bool) packet.NpcInfoEntry {
	masks := n.Masks
	if fresh && n.FaceEntity != -1 {
		masks |= NpcFaceEntity
	}
	e := packet.NpcInfoEntry{
		Nid:       n.Index,
		NpcType:   n.Type,
		X:         n.X,
		Z:         n.Z,
		Level:     n.Level,
		MoveSpeed: int(infoSpeed(&n.PathingEntity)),
		WalkDir:   int(n.WalkDir),
		RunDir:    int(n.RunDir),
		Jump:      n.Jump || fresh,
		Masks:     masks,
	}
	if masks&NpcFaceCoord != 0 {
		e.FaceX, e.FaceZ = n.FaceX, n.FaceZ
	}
	if masks&NpcFaceEntity != 0 {
		e.Face = n.FaceEntity
	}
	if masks&NpcAnim != 0 {
		e.Anim = n.AnimID
	}
	if masks&NpcSay != 0 {
		e.Say = n.Chat
	}
	if masks&NpcDamage != 0 {
		e.Damage = n.DamageTaken
		e.Health = n.CurrentHealth
		e.MaxHealth = n.MaxHealth
	}
	return e
}
