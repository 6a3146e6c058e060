package world

import (
	"slices"

	"go.uber.org/zap"

	"github.com/tickworld/server/internal/entity"
	"github.com/tickworld/server/internal/net/packet"
	"github.com/tickworld/server/internal/script"
)

// Interaction ops beyond the five numbered ones.
const (
	OpUse   = 5 // an obj used on the target
	OpSpell = 6 // a spell or component targeted at it
)

// apOffset is the distance from an op trigger to its ap counterpart.
const apOffset = script.ApNpc1 - script.OpNpc1

// Phase 2.

// ReceiveClient moves everything the transport has buffered into the
// player's inbound queue. Messages that fail to decode are dropped.
func (w *World) ReceiveClient(p *Player) int {
	if p.client == nil {
		return 0
	}
	n := 0
	for {
		raw, ok := p.client.Receive()
		if !ok {
			break
		}
		r, err := packet.NewReader(raw)
		if err != nil {
			w.log.Debug("dropping malformed message", zap.String("username", p.Username), zap.Error(err))
			continue
		}
		p.QueueMessage(r)
		n++
	}
	if n > 0 {
		p.LastResponse = w.tick
	}
	return n
}

// MarkInput records user activity, cancelling a pending idle logout.
func (p *Player) MarkInput() {
	p.requestIdleLogout = false
	p.idleSince = -1
}

// Phase 5.

// ProcessPlayer runs one player's scripts, interaction and movement.
func (w *World) ProcessPlayer(p *Player) {
	if p.Delayed && w.tick >= p.DelayedUntil {
		p.Delayed = false
		p.DelayedUntil = -1
	}

	w.processQueues(p)
	if !p.loggingOut {
		w.processTimers(p, TimerNormal)
		w.processTimers(p, TimerSoft)
	}
	w.processEngineQueue(p)
	w.processInteraction(p)
	p.processEnergy()
	p.ValidateDistanceWalked()
}

func (w *World) runQueued(p *Player, t script.Trigger, req *QueueRequest) {
	h, ok := w.Scripts.Get(t, req.ID, -1)
	if !ok {
		return
	}
	h(&ScriptContext{World: w, Trigger: t, Self: p, Player: p, Target: p.Target, Args: req.Args, LastInt: req.LastInt})
}

// processQueues runs due requests. Strong requests close the open modal
// first; normal and weak requests wait until the player can be accessed.
func (w *World) processQueues(p *Player) {
	if slices.ContainsFunc(p.queue, func(r *QueueRequest) bool { return r.Kind == QueueStrong }) {
		p.CloseModal()
	}

	q := p.queue
	p.queue = nil
	kept := drainQueue(q, func(req *QueueRequest) bool {
		if (req.Kind == QueueNormal || req.Kind == QueueLong) && !p.CanAccess() {
			return false
		}
		w.runQueued(p, script.Queue, req)
		return true
	})
	p.queue = append(kept, p.queue...)

	q = p.weakQueue
	p.weakQueue = nil
	kept = drainQueue(q, func(req *QueueRequest) bool {
		if !p.CanAccess() {
			return false
		}
		w.runQueued(p, script.WeakQueue, req)
		return true
	})
	p.weakQueue = append(kept, p.weakQueue...)
}

func (w *World) processEngineQueue(p *Player) {
	if len(p.engineQueue) == 0 {
		return
	}
	q := p.engineQueue
	p.engineQueue = nil
	kept := drainQueue(q, func(req *QueueRequest) bool {
		w.runQueued(p, script.Queue, req)
		return true
	})
	p.engineQueue = append(kept, p.engineQueue...)
}

// processTimers advances timers of one kind. A normal timer that comes due
// while the player is busy fires on the first tick they are free.
func (w *World) processTimers(p *Player, kind TimerKind) {
	if len(p.timers) == 0 {
		return
	}
	ids := make([]int, 0, len(p.timers))
	for id, t := range p.timers {
		if t.Kind == kind {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	trigger := script.Timer
	if kind == TimerSoft {
		trigger = script.SoftTimer
	}
	for _, id := range ids {
		t, ok := p.timers[id]
		if !ok {
			continue
		}
		if t.Clock < t.Interval {
			t.Clock++
		}
		if t.Clock < t.Interval || (kind == TimerNormal && !p.CanAccess()) {
			continue
		}
		t.Clock = 0
		w.runPlayer(p, trigger, id, -1, p.Target)
	}
}

// processInteraction tries the current interaction before and after moving,
// so a player already in reach acts without taking a step.
func (w *World) processInteraction(p *Player) {
	if p.Target != nil && !p.Target.IsValid() {
		p.ClearInteraction()
	}
	if p.Target == nil || p.Delayed {
		w.movePlayer(p)
		return
	}
	if w.tryInteract(p) {
		w.movePlayer(p)
		return
	}
	p.PathToPathingTarget()
	w.movePlayer(p)
	if w.tryInteract(p) {
		return
	}
	if p.Target != nil && !p.HasWaypoints() && p.StepsTaken == 0 {
		p.MessageGame("I can't reach that!")
		p.ClearInteraction()
	}
}

// tryInteract fires the op trigger when adjacent or the ap trigger when in
// approach range. A target with neither handler gets the default message
// once reached.
func (w *World) tryInteract(p *Player) bool {
	t := p.Target
	if t == nil || !p.CanAccess() || p.TargetOp < 0 {
		return false
	}
	op := opBase(t.Kind()) + script.Trigger(p.TargetOp)
	ap := op + apOffset
	typeID, category := w.targetType(t)

	switch {
	case p.InOperableDistance(t) && w.HasHandler(op, typeID, category):
		w.fireInteraction(p, op, typeID, category, t)
	case p.InApproachDistance(p.ApRange, t) && w.HasHandler(ap, typeID, category):
		w.fireInteraction(p, ap, typeID, category, t)
	case p.InOperableDistance(t):
		p.MessageGame("Nothing interesting happens.")
		p.ClearInteraction()
	default:
		return false
	}
	p.Interacted = true
	return true
}

func (w *World) fireInteraction(p *Player, trigger script.Trigger, typeID, category int, t entity.Target) {
	p.ClearWeakQueue()
	p.ApRangeCalled = false
	w.runPlayer(p, trigger, typeID, category, t)
	if p.Target == t && !p.ApRangeCalled {
		p.ClearInteraction()
	}
}

// SetApRange changes the approach distance from an ap handler; the
// interaction carries on next tick instead of ending.
func (p *Player) SetApRange(r int) {
	p.ApRange = r
	p.ApRangeCalled = true
}

func opBase(k entity.Kind) script.Trigger {
	switch k {
	case entity.KindNpc:
		return script.OpNpc1
	case entity.KindLoc:
		return script.OpLoc1
	case entity.KindObj:
		return script.OpObj1
	}
	return script.OpPlayer1
}

// targetType returns the trigger lookup keys for a target. Categories come
// from the config type the target currently shows.
func (w *World) targetType(t entity.Target) (typeID, category int) {
	typeID, category = t.TypeID(), -1
	switch t.Kind() {
	case entity.KindNpc:
		if nt := w.Stores.Npcs.Get(typeID); nt != nil {
			category = nt.Category
		}
	case entity.KindLoc:
		if lt := w.Stores.Locs.Get(typeID); lt != nil {
			category = lt.Category
		}
	case entity.KindObj:
		if ot := w.Stores.Objs.Get(typeID); ot != nil {
			category = ot.Category
		}
	default:
		return -1, -1
	}
	return typeID, category
}

// movePlayer walks or runs the queued route and fires a pending walk
// trigger once the player has moved.
func (w *World) movePlayer(p *Player) {
	if !p.Tele && p.HasWaypoints() {
		if p.wantsRun() {
			p.MoveSpeed = entity.Run
		} else {
			p.MoveSpeed = p.DefaultSpeed
		}
	}
	p.UpdateMovement()
	if p.StepsTaken > 0 && p.WalkTrigger != -1 {
		id, arg := p.WalkTrigger, p.WalkTriggerArg
		p.WalkTrigger = -1
		w.runPlayer(p, script.WalkTrigger, id, -1, nil, arg)
	}
	p.Reorient()
}

// Phase 6.

// ProcessLogoutChecks decides whether a player leaves this tick and, if so,
// logs them out. Shutdown and an unresponsive client force the logout;
// otherwise it waits until the player can be accessed.
func (w *World) ProcessLogoutChecks(p *Player) bool {
	force := false
	if w.shutdown || w.tick-p.LastResponse >= int64(w.cfg.TimeoutNoResponse) {
		p.loggingOut = true
		force = true
	}

	if p.IsClientConnected() {
		p.LastConnected = w.tick
	} else if w.tick-p.LastConnected >= int64(w.cfg.TimeoutNoConnection) {
		p.loggingOut = true
	}

	if p.requestIdleLogout {
		if p.idleSince == -1 {
			p.idleSince = w.tick
		}
		if w.tick-p.idleSince >= int64(w.cfg.TimeoutIdle) {
			p.loggingOut = true
			p.requestIdleLogout = false
		}
	}
	if p.requestLogout {
		p.loggingOut = true
		p.requestLogout = false
	}

	if !p.loggingOut || !(force || p.CanAccess()) {
		return false
	}
	w.Logout(p)
	return true
}

// ForceLogout removes a player whose processing failed or whose client
// could not be written to.
func (w *World) ForceLogout(p *Player, reason error) {
	w.log.Warn("forcing logout", zap.String("username", p.Username), zap.Error(reason))
	if err := SafeRun(func() { w.Logout(p) }); err != nil {
		w.log.Error("logout failed, dropping player", zap.String("username", p.Username), zap.Error(err))
		w.RemovePlayer(p)
		if c := p.Client(); c != nil {
			c.Close()
		}
	}
}
