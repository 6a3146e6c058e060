package world

import (
	"go.uber.org/zap"

	"github.com/tickworld/server/internal/coord"
	"github.com/tickworld/server/internal/data"
	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/script"
)

const (
	npcRegenTicks  = 100
	npcWanderTicks = 5
)

type npcEventKind int

const (
	npcSpawn npcEventKind = iota
	npcDespawn
)

// npcEvent is a spawn or despawn trigger waiting for phase 3.
type npcEvent struct {
	kind npcEventKind
	npc  *Npc
}

// AddNpc places an npc in the pool and on the map. A despawning npc goes
// away after duration ticks, zero meaning never.
func (w *World) AddNpc(n *Npc, duration int) error {
	if w.Npcs.Count() >= w.Npcs.Cap() {
		return ErrWorldFull
	}
	nid := w.Npcs.Next(false)
	w.Npcs.Set(nid, n)
	n.Index = nid
	if n.Lifecycle == entity.Despawn {
		n.SetLifecycle(duration)
	}
	w.placeNpc(n)
	return nil
}

func (w *World) placeNpc(n *Npc) {
	n.SetActive(true)
	w.Map.Zone(n.X, n.Z, n.Level).EnterNpc(n.Index)
	n.AddCollision()
	n.Tele = true
	n.Jump = true
	n.MoveSpeed = entity.Instant
	w.npcEvents = append(w.npcEvents, npcEvent{kind: npcSpawn, npc: n})
}

// RemoveNpc takes an npc off the map. A respawning npc keeps its slot and
// returns after duration ticks; any other npc frees its slot.
func (w *World) RemoveNpc(n *Npc, duration int) {
	if n.Index == -1 {
		return
	}
	if n.IsActive() {
		n.RemoveCollision()
		w.Map.Zone(n.X, n.Z, n.Level).LeaveNpc(n.Index)
		n.SetActive(false)
	}
	n.ClearWaypoints()
	n.ClearInteraction()
	n.Mode = ModeNone
	n.huntTarget = nil
	w.npcEvents = append(w.npcEvents, npcEvent{kind: npcDespawn, npc: n})

	if n.Lifecycle == entity.Respawn {
		n.SetLifecycle(max(duration, 1))
		return
	}
	w.Npcs.Remove(n.Index)
	n.Index = -1
}

// DiscardNpc frees an npc's slot whatever its lifecycle. Used when its
// processing failed and it cannot be trusted to respawn.
func (w *World) DiscardNpc(n *Npc) {
	if n.Index == -1 {
		return
	}
	if n.IsActive() {
		n.RemoveCollision()
		w.Map.Zone(n.X, n.Z, n.Level).LeaveNpc(n.Index)
		n.SetActive(false)
	}
	w.Npcs.Remove(n.Index)
	n.Index = -1
}

// HitNpc damages an npc on behalf of by, which may be nil. When the hit
// kills, the death queue runs at once and the npc is removed on its next
// turn. It reports whether the npc died.
func (w *World) HitNpc(n *Npc, by *Player, amount, typ int) bool {
	if !n.IsValid() || n.dead {
		return false
	}
	var attacker entity.Target
	if by != nil {
		n.Heroes.Add(by.Hash64(), amount)
		attacker = by
	}
	n.LastCombat = w.tick
	if !n.ApplyDamage(amount, typ) {
		return false
	}
	w.runNpc(n, script.AiQueue1+DeathQueue-1, n.Type, n.category, attacker)
	return true
}

// SpawnMapEntities builds the npcs and ground items the map loader found
// and clears the spawn lists.
func (w *World) SpawnMapEntities() {
	spawned := 0
	for _, s := range w.Map.NpcSpawns {
		t := w.Stores.Npcs.Get(s.Type)
		if t == nil {
			w.log.Warn("map npc has no config", zap.Int("type", s.Type), zap.Int("x", s.X), zap.Int("z", s.Z))
			continue
		}
		if err := w.AddNpc(NewNpc(w.Map, t, s.Level, s.X, s.Z, entity.Respawn), 0); err != nil {
			w.log.Error("npc pool full while spawning map", zap.Int("spawned", spawned))
			break
		}
		spawned++
	}
	for _, s := range w.Map.ObjSpawns {
		obj := entity.NewObj(s.Level, s.X, s.Z, entity.Respawn, s.Type, s.Count)
		w.Map.Zone(s.X, s.Z, s.Level).AddStaticObj(obj)
	}
	w.log.Info("map entities spawned", zap.Int("npcs", spawned), zap.Int("objs", len(w.Map.ObjSpawns)))
	w.Map.NpcSpawns = nil
	w.Map.ObjSpawns = nil
	// spawn triggers for the initial population are not fired
	w.npcEvents = w.npcEvents[:0]
}

// Phase 1.

// ProcessNpcLifecycles counts down npc respawns and timed despawns.
func (w *World) ProcessNpcLifecycles() {
	for _, n := range w.Npcs.All() {
		switch {
		case !n.IsActive() && n.Lifecycle == entity.Respawn:
			n.LifecycleTick--
			if n.LifecycleTick <= 0 {
				w.respawnNpc(n)
			}
		case n.IsActive() && n.Lifecycle == entity.Despawn && n.LifecycleTick > 0:
			n.LifecycleTick--
			if n.LifecycleTick == 0 {
				w.RemoveNpc(n, 0)
			}
		}
	}
}

func (w *World) respawnNpc(n *Npc) {
	if n.Type != n.BaseType {
		if t := w.Stores.Npcs.Get(n.BaseType); t != nil {
			n.applyType(t)
		}
		n.Type = n.BaseType
	}
	n.X, n.Z, n.Level = n.StartX, n.StartZ, n.StartLevel
	n.resetStats()
	n.Heroes.Clear()
	n.Vars = make(map[int]int)
	n.queue = nil
	n.dead = false
	n.Delayed = false
	n.DelayedUntil = -1
	n.LastCombat = -1
	n.patrolPoint, n.patrolWait = 0, 0
	n.Mode = n.DefaultMode
	n.SetLifecycle(0)
	w.placeNpc(n)
}

// ProcessHunts runs the hunt scan for every npc due one, so targets are
// fresh when AI runs.
func (w *World) ProcessHunts() {
	for _, n := range w.Npcs.All() {
		if !n.IsValid() || n.dead || n.huntMode < 0 || w.tick < n.nextHuntTick {
			continue
		}
		h := w.Stores.Hunts.Get(n.huntMode)
		if h == nil || h.Kind == data.HuntOff {
			continue
		}
		n.nextHuntTick = w.tick + int64(max(h.Rate, 1))
		if n.Mode.IsInteraction() && n.Target != nil && !h.FindKeepHunting {
			continue
		}
		if h.CheckNotCombatSelf >= 0 && n.LastCombat != -1 && w.tick-n.LastCombat < int64(h.CheckNotCombatSelf) {
			continue
		}
		switch h.Kind {
		case data.HuntPlayer:
			n.huntTarget = w.huntPlayer(n, h)
		case data.HuntNpc:
			n.huntTarget = w.huntNpc(n, h)
		}
		if n.huntTarget == nil && h.NobodyNear == data.PauseHunt {
			n.nextHuntTick = w.tick + int64(max(h.Rate, 1))*4
		}
	}
}

// zonesAround calls fn with every zone overlapping the square of radius r.
func (w *World) zonesAround(level, x, z, r int, fn func(players, npcs []int)) {
	for zx := coord.Zone(x - r); zx <= coord.Zone(x+r); zx++ {
		for zz := coord.Zone(z - r); zz <= coord.Zone(z+r); zz++ {
			if zn, ok := w.Map.Zones.Lookup(zx<<3, zz<<3, level); ok {
				fn(zn.Players(), zn.Npcs())
			}
		}
	}
}

func (w *World) huntPlayer(n *Npc, h *data.HuntType) entity.Target {
	var found []*Player
	w.zonesAround(n.Level, n.X, n.Z, n.huntRange, func(players, _ []int) {
		for _, pid := range players {
			p, ok := w.Players.Get(pid)
			if !ok || !p.IsActive() || p.loggingOut {
				continue
			}
			if coord.DistanceTo(n.Rect(), p.Rect()) > n.huntRange {
				continue
			}
			if h.CheckNotBusy && p.Busy() {
				continue
			}
			if h.CheckNotTooStrong && n.visLevel > 0 && p.CombatLevel > n.visLevel*2 {
				continue
			}
			found = append(found, p)
		}
	})
	if len(found) == 0 {
		return nil
	}
	return found[w.rng.Intn(len(found))]
}

func (w *World) huntNpc(n *Npc, h *data.HuntType) entity.Target {
	var found []*Npc
	w.zonesAround(n.Level, n.X, n.Z, n.huntRange, func(_, npcs []int) {
		for _, nid := range npcs {
			o, ok := w.Npcs.Get(nid)
			if !ok || o == n || !o.IsValid() || o.dead {
				continue
			}
			if h.CheckCategory >= 0 && o.category != h.CheckCategory {
				continue
			}
			if h.CheckNotCombat >= 0 && o.LastCombat != -1 && w.tick-o.LastCombat < int64(h.CheckNotCombat) {
				continue
			}
			if coord.DistanceTo(n.Rect(), o.Rect()) > n.huntRange {
				continue
			}
			found = append(found, o)
		}
	})
	if len(found) == 0 {
		return nil
	}
	return found[w.rng.Intn(len(found))]
}

// Phase 3.

// ProcessNpcEvents fires the spawn and despawn triggers queued since the
// last tick. Events for npcs that changed state again, or are delayed, are
// dropped.
func (w *World) ProcessNpcEvents() {
	events := w.npcEvents
	w.npcEvents = nil
	for _, ev := range events {
		n := ev.npc
		if n.Delayed {
			continue
		}
		var t script.Trigger
		switch ev.kind {
		case npcSpawn:
			if !n.IsValid() {
				continue
			}
			t = script.AiSpawn
		case npcDespawn:
			if n.IsActive() {
				continue
			}
			t = script.AiDespawn
		}
		if err := SafeRun(func() { w.runNpc(n, t, n.Type, n.category, nil) }); err != nil {
			w.log.Error("npc event failed", zap.String("trigger", t.String()), zap.Int("type", n.Type), zap.Error(err))
		}
	}
}

// Phase 4.

// ProcessNpc runs one npc's AI and movement for this tick.
func (w *World) ProcessNpc(n *Npc) {
	if !n.IsActive() {
		return
	}
	if n.dead {
		w.RemoveNpc(n, n.respawnRate)
		return
	}
	if n.Delayed && w.tick >= n.DelayedUntil {
		n.Delayed = false
		n.DelayedUntil = -1
	}
	if n.Delayed {
		return
	}

	w.consumeHunt(n)
	n.regen()
	w.npcTimer(n)
	w.npcQueue(n)
	if !n.IsActive() || n.dead {
		return
	}

	switch {
	case n.Mode.IsInteraction():
		w.npcInteract(n)
	case n.Mode == ModeWander:
		w.npcWander(n)
	case n.Mode == ModePatrol:
		w.npcPatrol(n)
	case n.Mode == ModePlayerEscape:
		w.npcEscape(n)
	case n.Mode == ModePlayerFollow:
		w.npcFollow(n)
	case n.Mode == ModePlayerFace, n.Mode == ModePlayerFaceClose:
		w.npcFace(n)
	default:
		n.UpdateMovement()
	}
}

func (w *World) consumeHunt(n *Npc) {
	target := n.huntTarget
	if target == nil {
		return
	}
	n.huntTarget = nil
	if !target.IsValid() || (n.Mode.IsInteraction() && n.Target != nil) {
		return
	}
	mode := ModeOpPlayer2
	if h := w.Stores.Hunts.Get(n.huntMode); h != nil && h.FindNewMode >= 0 {
		mode = NpcMode(h.FindNewMode)
	}
	n.SetMode(mode, target)
}

func (n *Npc) regen() {
	n.regenClock++
	if n.regenClock < npcRegenTicks {
		return
	}
	n.regenClock = 0
	for i := range n.Levels {
		switch {
		case n.Levels[i] < n.BaseLevels[i]:
			n.Levels[i]++
		case n.Levels[i] > n.BaseLevels[i]:
			n.Levels[i]--
		}
	}
	n.CurrentHealth = n.Levels[NpcHitpoints]
}

func (w *World) npcTimer(n *Npc) {
	if n.timerInterval <= 0 {
		return
	}
	n.timerClock++
	if n.timerClock < n.timerInterval {
		return
	}
	n.timerClock = 0
	w.runNpc(n, script.AiTimer, n.Type, n.category, n.Target)
}

func (w *World) npcQueue(n *Npc) {
	if len(n.queue) == 0 {
		return
	}
	q := n.queue
	n.queue = nil
	kept := drainQueue(q, func(req *QueueRequest) bool {
		if req.ID < 1 || req.ID > 20 {
			return true
		}
		w.runNpc(n, script.AiQueue1+script.Trigger(req.ID-1), n.Type, n.category, n.Target, req.Args...)
		return true
	})
	n.queue = append(kept, n.queue...)
}

// npcInteract tries the interaction before and after stepping so an npc
// already in reach does not walk past its target.
func (w *World) npcInteract(n *Npc) {
	t := n.Target
	if t == nil || !t.IsValid() || t.Base().Level != n.Level {
		n.ResetMode()
		return
	}
	if w.npcTryInteract(n) {
		return
	}
	n.PathToPathingTarget()
	n.UpdateMovement()
	if w.npcTryInteract(n) {
		return
	}
	if !n.giveChase || n.outOfRange() {
		n.ResetMode()
	}
}

func (w *World) npcTryInteract(n *Npc) bool {
	t := n.Target
	if t == nil || !t.IsValid() {
		return false
	}
	reached := false
	if n.Mode.IsOp() {
		reached = n.InOperableDistance(t)
	} else {
		reached = n.InApproachDistance(n.attackRange, t)
	}
	if !reached {
		return false
	}
	trigger := script.AiOpNpc1 + script.Trigger(n.Mode-ModeOpNpc1)
	n.Interacted = true
	if !w.runNpc(n, trigger, n.Type, n.category, t) {
		n.ResetMode()
	}
	return true
}

// outOfRange reports whether the npc has strayed past its max range from
// its spawn point.
func (n *Npc) outOfRange() bool {
	return coord.DistanceTo(n.Rect(), coord.Rect{X: n.StartX, Z: n.StartZ, Width: n.Width, Length: n.Length}) > n.maxRange
}

func (w *World) npcWander(n *Npc) {
	n.wanderClock++
	if !n.HasWaypoints() && n.wanderClock%npcWanderTicks == 0 && n.wanderRange > 0 {
		r := n.wanderRange
		x := n.StartX + w.rng.Intn(2*r+1) - r
		z := n.StartZ + w.rng.Intn(2*r+1) - r
		if x != n.X || z != n.Z {
			n.QueueWaypoint(x, z)
		}
	}
	n.UpdateMovement()
}

func (w *World) npcPatrol(n *Npc) {
	if len(n.patrol) == 0 {
		n.Mode = ModeNone
		return
	}
	stop := n.patrol[n.patrolPoint%len(n.patrol)]
	if n.X == stop.X && n.Z == stop.Z {
		if n.patrolWait < stop.Delay {
			n.patrolWait++
			return
		}
		n.patrolWait = 0
		n.patrolPoint = (n.patrolPoint + 1) % len(n.patrol)
		stop = n.patrol[n.patrolPoint]
	}
	if !n.HasWaypoints() {
		n.QueueWaypoint(stop.X, stop.Z)
	}
	n.UpdateMovement()
}

func (w *World) npcEscape(n *Npc) {
	t := n.Target
	if t == nil || !t.IsValid() || t.Base().Level != n.Level || n.outOfRange() {
		n.ResetMode()
		return
	}
	b := t.Base()
	dx, dz := sign(n.X-b.X), sign(n.Z-b.Z)
	if dx == 0 && dz == 0 {
		dx = 1
	}
	n.QueueWaypoint(n.X+dx, n.Z+dz)
	n.UpdateMovement()
}

func (w *World) npcFollow(n *Npc) {
	t := n.Target
	if t == nil || !t.IsValid() || t.Base().Level != n.Level {
		n.ResetMode()
		return
	}
	if coord.DistanceTo(n.Rect(), t.Base().Rect()) > n.maxRange*2 {
		n.ResetMode()
		return
	}
	if !n.InOperableDistance(t) {
		n.PathToPathingTarget()
	}
	n.UpdateMovement()
}

func (w *World) npcFace(n *Npc) {
	t := n.Target
	if t == nil || !t.IsValid() || t.Base().Level != n.Level {
		n.ResetMode()
		return
	}
	limit := n.maxRange
	if n.Mode == ModePlayerFaceClose {
		limit = 1
	}
	if coord.DistanceTo(n.Rect(), t.Base().Rect()) > limit {
		n.ResetMode()
		return
	}
	n.UpdateMovement()
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
