package world

import (
	"github.com/tickworld/server/internal/data"
	"github.com/tickworld/server/internal/entity"
)

// Npc info masks.
const (
	NpcAnim       = 0x1
	NpcFaceEntity = 0x2
	NpcSay        = 0x4
	NpcDamage     = 0x8
	NpcChangeType = 0x10
	NpcSpotanim   = 0x20
	NpcFaceCoord  = 0x40
)

// NpcMode is the AI state an npc runs each tick.
type NpcMode int

const (
	ModeNone NpcMode = iota
	ModeWander
	ModePatrol
	ModePlayerEscape
	ModePlayerFollow
	ModePlayerFace
	ModePlayerFaceClose

	// Interaction modes, in the same order as the ai_op/ai_ap triggers.
	ModeOpNpc1
	ModeOpNpc2
	ModeOpNpc3
	ModeOpNpc4
	ModeOpNpc5
	ModeApNpc1
	ModeApNpc2
	ModeApNpc3
	ModeApNpc4
	ModeApNpc5
	ModeOpLoc1
	ModeOpLoc2
	ModeOpLoc3
	ModeOpLoc4
	ModeOpLoc5
	ModeApLoc1
	ModeApLoc2
	ModeApLoc3
	ModeApLoc4
	ModeApLoc5
	ModeOpObj1
	ModeOpObj2
	ModeOpObj3
	ModeOpObj4
	ModeOpObj5
	ModeApObj1
	ModeApObj2
	ModeApObj3
	ModeApObj4
	ModeApObj5
	ModeOpPlayer1
	ModeOpPlayer2
	ModeOpPlayer3
	ModeOpPlayer4
	ModeOpPlayer5
	ModeApPlayer1
	ModeApPlayer2
	ModeApPlayer3
	ModeApPlayer4
	ModeApPlayer5
)

// IsInteraction reports whether the mode targets something.
func (m NpcMode) IsInteraction() bool { return m >= ModeOpNpc1 && m <= ModeApPlayer5 }

// IsOp reports whether an interaction mode needs the npc adjacent rather
// than merely in range.
func (m NpcMode) IsOp() bool {
	return m.IsInteraction() && (m-ModeOpNpc1)%10 < 5
}

// DeathQueue is the ai_queue content uses for death handling.
const DeathQueue = 3

// Npc is a computer-controlled character.
type Npc struct {
	entity.PathingEntity

	Type       int
	BaseType   int
	StartX     int
	StartZ     int
	StartLevel int

	Levels     [NpcStatCount]int
	BaseLevels [NpcStatCount]int

	Mode        NpcMode
	DefaultMode NpcMode
	Vars        map[int]int
	Heroes      HeroPoints
	LastCombat  int64 // tick last hit, -1 never

	category    int
	visLevel    int
	wanderRange int
	maxRange    int
	attackRange int
	giveChase   bool
	respawnRate int

	queue         []*QueueRequest
	timerInterval int
	timerClock    int
	regenClock    int
	wanderClock   int
	patrolPoint   int
	patrolWait    int

	patrol []data.Patrol

	huntMode     int
	huntRange    int
	huntTarget   entity.Target
	nextHuntTick int64

	dead bool
}

// NewNpc builds an npc of a config type standing at its spawn point.
func NewNpc(nav entity.Navigator, t *data.NpcType, level, x, z int, lifecycle entity.Lifecycle) *Npc {
	n := &Npc{
		PathingEntity: entity.NewPathingEntity(nav, entity.PathingOptions{
			Kind:         entity.KindNpc,
			Level:        level,
			X:            x,
			Z:            z,
			Width:        t.Size,
			Length:       t.Size,
			Lifecycle:    lifecycle,
			MoveRestrict: entity.MoveRestrict(t.MoveRestrict),
			BlockWalk:    entity.BlockWalk(t.BlockWalk),
			MoveStrategy: entity.Naive,
			DefaultSpeed: entity.Walk,
			CoordMask:    NpcFaceCoord,
			EntityMask:   NpcFaceEntity,
		}),
		Type:       t.ID,
		BaseType:   t.ID,
		StartX:     x,
		StartZ:     z,
		StartLevel: level,
		Vars:       make(map[int]int),
		LastCombat: -1,
	}
	n.applyType(t)
	n.resetStats()
	n.Heroes.Clear()
	n.Mode = n.DefaultMode
	return n
}

func (n *Npc) applyType(t *data.NpcType) {
	n.category = t.Category
	n.visLevel = t.VisLevel
	n.wanderRange = t.WanderRange
	n.maxRange = t.MaxRange
	n.attackRange = t.AttackRange
	n.giveChase = t.GiveChase
	n.respawnRate = t.RespawnRate
	n.timerInterval = t.Timer
	n.huntMode = t.HuntMode
	n.huntRange = t.HuntRange
	n.patrol = t.Patrol
	n.BaseLevels = t.Stats()
	switch {
	case t.DefaultMode >= 0:
		n.DefaultMode = NpcMode(t.DefaultMode)
	case len(t.Patrol) > 0:
		n.DefaultMode = ModePatrol
	case t.WanderRange > 0:
		n.DefaultMode = ModeWander
	default:
		n.DefaultMode = ModeNone
	}
}

func (n *Npc) resetStats() {
	n.Levels = n.BaseLevels
	n.CurrentHealth = n.Levels[NpcHitpoints]
	n.MaxHealth = n.BaseLevels[NpcHitpoints]
}

// IsValid is false while the npc waits to respawn.
func (n *Npc) IsValid() bool { return n.Index != -1 && n.IsActive() }

func (n *Npc) TypeID() int   { return n.Type }
func (n *Npc) Category() int { return n.category }
func (n *Npc) VisLevel() int { return n.visLevel }
func (n *Npc) IsDead() bool  { return n.dead }

// ChangeType shows the npc as another type until it respawns.
func (n *Npc) ChangeType(t *data.NpcType) {
	n.Type = t.ID
	n.applyType(t)
	n.Masks |= NpcChangeType
}

// ResetMode drops the current interaction and returns to the default AI.
func (n *Npc) ResetMode() {
	n.Mode = n.DefaultMode
	n.ClearInteraction()
}

// SetMode points the npc at a target with an interaction mode.
func (n *Npc) SetMode(mode NpcMode, target entity.Target) bool {
	if target == nil {
		n.ClearInteraction()
		n.Mode = mode
		return !mode.IsInteraction()
	}
	op := -1
	if mode.IsInteraction() {
		op = int(mode-ModeOpNpc1) % 5
	}
	if !n.SetInteraction(entity.InteractionScript, target, op, -1) {
		return false
	}
	n.Mode = mode
	return true
}

// ApplyDamage lowers hitpoints and reports whether this hit killed the npc.
// Hits on a dead npc are ignored.
func (n *Npc) ApplyDamage(amount, typ int) bool {
	if n.dead {
		return false
	}
	amount = max(0, min(amount, n.Levels[NpcHitpoints]))
	n.Levels[NpcHitpoints] -= amount
	n.CurrentHealth = n.Levels[NpcHitpoints]
	n.DamageTaken = amount
	n.DamageType = typ
	n.Masks |= NpcDamage
	if n.Levels[NpcHitpoints] == 0 {
		n.dead = true
		return true
	}
	return false
}

func (n *Npc) Say(text string) {
	n.Chat = text
	n.Masks |= NpcSay
}

func (n *Npc) PlayAnimation(seq, delay int) {
	n.AnimID = seq
	n.AnimDelay = delay
	n.Masks |= NpcAnim
}

func (n *Npc) SpotAnim(id, height, delay int) {
	n.GraphicID = id
	n.GraphicHeight = height
	n.GraphicDelay = delay
	n.Masks |= NpcSpotanim
}

// Enqueue schedules ai_queue<id> after delay ticks.
func (n *Npc) Enqueue(id, delay int, args ...int) {
	n.queue = append(n.queue, &QueueRequest{Kind: QueueNormal, ID: id, Args: args, Delay: delay, LastInt: -1})
}

func (n *Npc) QueueLen() int { return len(n.queue) }

// SetTimer changes the ai_timer interval; -1 disables it.
func (n *Npc) SetTimer(interval int) {
	n.timerInterval = interval
	n.timerClock = 0
}

// Delay pauses the npc's AI for ticks.
func (n *Npc) Delay(now int64, ticks int) {
	n.Delayed = true
	n.DelayedUntil = now + int64(ticks)
}

func (n *Npc) HuntTarget() entity.Target { return n.huntTarget }
