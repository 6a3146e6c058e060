package entity

import (
	"github.com/tickworld/server/internal/collision"
	"github.com/tickworld/server/internal/coord"
)

// MaxWaypoints is the waypoint buffer capacity.
const MaxWaypoints = 25

// DefaultApRange is the approach distance restored on every new interaction.
const DefaultApRange = 10

// TargetSubject records what was used on the target.
type TargetSubject struct {
	Type int
	Com  int
}

// PathingOptions configures a new pathing entity.
type PathingOptions struct {
	Kind         Kind
	Level        int
	X, Z         int
	Width        int
	Length       int
	Lifecycle    Lifecycle
	MoveRestrict MoveRestrict
	BlockWalk    BlockWalk
	MoveStrategy MoveStrategy
	DefaultSpeed MoveSpeed
	// ExtraFlag is OR'd into the block mask when stepping; collision.Null stops all movement.
	ExtraFlag  int32
	CoordMask  int
	EntityMask int
}

// PathingEntity is the movement and targeting state shared by players and npcs.
type PathingEntity struct {
	Entity

	kind Kind
	nav  Navigator
	// Index is the pool id, -1 until the entity is added to the world.
	Index int

	MoveRestrict MoveRestrict
	BlockWalk    BlockWalk
	MoveStrategy MoveStrategy
	DefaultSpeed MoveSpeed
	ExtraFlag    int32
	coordMask    int
	entityMask   int

	MoveSpeed     MoveSpeed
	WalkDir       coord.Direction
	RunDir        coord.Direction
	waypoints     [MaxWaypoints]int32
	waypointIndex int
	LastTickX     int
	LastTickZ     int
	LastLevel     int
	Tele          bool
	Jump          bool
	LastStepX     int
	LastStepZ     int
	FollowX       int
	FollowZ       int
	StepsTaken    int
	LastInt       int
	lastCrawl     bool

	WalkTrigger    int
	WalkTriggerArg int

	Delayed       bool
	DelayedUntil  int64
	Interacted    bool
	Repathed      bool
	Target        Target
	TargetOp      int
	TargetSubject TargetSubject
	ApRange       int
	ApRangeCalled bool
	TargetX       int
	TargetZ       int

	Masks         int
	FaceX         int
	FaceZ         int
	OrientationX  int
	OrientationZ  int
	FaceEntity    int
	DamageTaken   int
	DamageType    int
	CurrentHealth int
	MaxHealth     int
	AnimID        int
	AnimDelay     int
	Chat          string
	GraphicID     int
	GraphicHeight int
	GraphicDelay  int

	ExactStartX, ExactStartZ int
	ExactEndX, ExactEndZ     int
	ExactMoveStart           int
	ExactMoveEnd             int
	ExactMoveDirection       int
}

func NewPathingEntity(nav Navigator, opts PathingOptions) PathingEntity {
	p := PathingEntity{
		Entity:       NewEntity(opts.Level, opts.X, opts.Z, opts.Width, opts.Length, opts.Lifecycle),
		kind:         opts.Kind,
		nav:          nav,
		Index:        -1,
		MoveRestrict: opts.MoveRestrict,
		BlockWalk:    opts.BlockWalk,
		MoveStrategy: opts.MoveStrategy,
		DefaultSpeed: opts.DefaultSpeed,
		ExtraFlag:    opts.ExtraFlag,
		coordMask:    opts.CoordMask,
		entityMask:   opts.EntityMask,

		MoveSpeed:     Instant,
		WalkDir:       coord.None,
		RunDir:        coord.None,
		waypointIndex: -1,
		LastTickX:     -1,
		LastTickZ:     -1,
		LastLevel:     -1,
		LastStepX:     opts.X - 1,
		LastStepZ:     opts.Z,
		FollowX:       -1,
		FollowZ:       -1,
		LastInt:       -1,
		WalkTrigger:   -1,
		DelayedUntil:  -1,
		TargetOp:      -1,
		TargetSubject: TargetSubject{Type: -1, Com: -1},
		ApRange:       DefaultApRange,
		TargetX:       -1,
		TargetZ:       -1,
		FaceX:         -1,
		FaceZ:         -1,
		OrientationX:  -1,
		OrientationZ:  -1,
		FaceEntity:    -1,
	}
	p.clearScratch()
	return p
}

func (p *PathingEntity) Kind() Kind           { return p.kind }
func (p *PathingEntity) ID() int              { return p.Index }
func (p *PathingEntity) TypeID() int          { return -1 }
func (p *PathingEntity) IsValid() bool        { return p.Index != -1 }
func (p *PathingEntity) Navigator() Navigator { return p.nav }

// SetNavigator rebinds the entity to another map, used when entities are
// restored before the world exists.
func (p *PathingEntity) SetNavigator(nav Navigator) { p.nav = nav }

func (p *PathingEntity) HasWaypoints() bool       { return p.waypointIndex != -1 }
func (p *PathingEntity) IsLastOrNoWaypoint() bool { return p.waypointIndex <= 0 }
func (p *PathingEntity) ClearWaypoints()          { p.waypointIndex = -1 }

// Waypoints returns the pending waypoints, next step first.
func (p *PathingEntity) Waypoints() []coord.Coord {
	out := make([]coord.Coord, 0, p.waypointIndex+1)
	for i := p.waypointIndex; i >= 0; i-- {
		out = append(out, coord.Unpack(p.waypoints[i]))
	}
	return out
}

// QueueWaypoint replaces the route with a single destination.
func (p *PathingEntity) QueueWaypoint(x, z int) {
	p.waypoints[0] = coord.Pack(0, x, z)
	p.waypointIndex = 0
}

// QueueWaypoints replaces the route. path is destination first, as returned
// by the map's path finder; when it is longer than the buffer the entries
// nearest the mover are kept.
func (p *PathingEntity) QueueWaypoints(path []int32) {
	if len(path) > MaxWaypoints {
		path = path[len(path)-MaxWaypoints:]
	}
	copy(p.waypoints[:], path)
	p.waypointIndex = len(path) - 1
}

// ProcessMovement advances up to two steps along the queued route.
func (p *PathingEntity) ProcessMovement() bool {
	if !p.HasWaypoints() || p.MoveSpeed == Stationary || p.MoveSpeed == Instant {
		return false
	}
	if p.MoveSpeed == Crawl {
		p.lastCrawl = !p.lastCrawl
		if p.lastCrawl && p.WalkDir == coord.None {
			p.WalkDir = p.validateAndAdvanceStep()
		}
	} else if p.WalkDir == coord.None {
		p.WalkDir = p.validateAndAdvanceStep()
		if p.MoveSpeed == Run && p.WalkDir != coord.None && p.RunDir == coord.None {
			p.RunDir = p.validateAndAdvanceStep()
		}
	}
	return true
}

// UpdateMovement is the default per-tick movement: a pending teleport shows
// as an instant jump, otherwise the route is walked.
func (p *PathingEntity) UpdateMovement() bool {
	if p.Tele {
		p.MoveSpeed = Instant
		p.Jump = true
		return true
	}
	return p.ProcessMovement()
}

func (p *PathingEntity) validateAndAdvanceStep() coord.Direction {
	for {
		dir, ok := p.takeStep()
		if !ok {
			return coord.None
		}
		if dir == coord.None {
			p.waypointIndex--
			if p.waypointIndex != -1 {
				continue
			}
			return coord.None
		}

		prevX, prevZ := p.X, p.Z
		p.X = coord.MoveX(p.X, dir)
		p.Z = coord.MoveZ(p.Z, dir)
		p.Focus(coord.Fine(coord.MoveX(p.X, dir), p.Width), coord.Fine(coord.MoveZ(p.Z, dir), p.Length), false)
		p.StepsTaken++
		p.refreshZonePresence(prevX, prevZ, p.Level)

		if p.waypointIndex != -1 {
			wp := coord.Unpack(p.waypoints[p.waypointIndex])
			if wp.X == p.X && wp.Z == p.Z {
				p.waypointIndex--
			}
		}
		return dir
	}
}

// takeStep picks the next direction toward the current waypoint. It returns
// (None, true) when the waypoint is already reached and ok=false when the
// mover is blocked.
func (p *PathingEntity) takeStep() (coord.Direction, bool) {
	if p.waypointIndex == -1 {
		return coord.None, false
	}
	ct, ok := p.MoveRestrict.CollisionType()
	if !ok || p.ExtraFlag == collision.Null {
		return coord.None, true
	}

	srcX, srcZ := p.X, p.Z
	wp := coord.Unpack(p.waypoints[p.waypointIndex])

	if p.Width > 1 {
		if dirX := coord.Face(srcX, 0, wp.X, 0); dirX != coord.None &&
			p.nav.CanTravel(p.Level, srcX, srcZ, coord.DeltaX(dirX), 0, p.Width, p.ExtraFlag, ct) {
			return dirX, true
		}
		if dirZ := coord.Face(0, srcZ, 0, wp.Z); dirZ != coord.None &&
			p.nav.CanTravel(p.Level, srcX, srcZ, 0, coord.DeltaZ(dirZ), p.Width, p.ExtraFlag, ct) {
			return dirZ, true
		}
		if srcX == wp.X && srcZ == wp.Z {
			return coord.None, true
		}
		return coord.None, false
	}

	dir := coord.Face(srcX, srcZ, wp.X, wp.Z)
	dx, dz := coord.DeltaX(dir), coord.DeltaZ(dir)
	if dx == 0 && dz == 0 {
		return coord.None, true
	}
	if p.MoveStrategy == Fly {
		return dir, true
	}
	if p.nav.CanTravel(p.Level, srcX, srcZ, dx, dz, p.Width, p.ExtraFlag, ct) {
		return dir, true
	}
	if dx != 0 && p.nav.CanTravel(p.Level, srcX, srcZ, dx, 0, p.Width, p.ExtraFlag, ct) {
		return coord.Face(srcX, srcZ, wp.X, srcZ), true
	}
	if dz != 0 && p.nav.CanTravel(p.Level, srcX, srcZ, 0, dz, p.Width, p.ExtraFlag, ct) {
		return coord.Face(srcX, srcZ, srcX, wp.Z), true
	}
	return coord.None, false
}

func (p *PathingEntity) refreshZonePresence(prevX, prevZ, prevLevel int) {
	if p.X == prevX && p.Z == prevZ && p.Level == prevLevel {
		return
	}
	switch p.BlockWalk {
	case BlockWalkNpc:
		p.nav.ChangeNpcCollision(p.Width, prevX, prevZ, prevLevel, false)
		p.nav.ChangeNpcCollision(p.Width, p.X, p.Z, p.Level, true)
	case BlockWalkAll:
		p.nav.ChangeNpcCollision(p.Width, prevX, prevZ, prevLevel, false)
		p.nav.ChangeNpcCollision(p.Width, p.X, p.Z, p.Level, true)
		p.nav.ChangePlayerCollision(p.Width, prevX, prevZ, prevLevel, false)
		p.nav.ChangePlayerCollision(p.Width, p.X, p.Z, p.Level, true)
	}
	p.LastStepX = prevX
	p.LastStepZ = prevZ

	if p.Index != -1 && (coord.Zone(prevX) != coord.Zone(p.X) || coord.Zone(prevZ) != coord.Zone(p.Z) || prevLevel != p.Level) {
		p.nav.Relocate(p.kind, p.Index, prevLevel, prevX, prevZ, p.Level, p.X, p.Z)
	}
}

// AddCollision stamps the entity's occupancy flags at its current position.
func (p *PathingEntity) AddCollision() { p.changeCollision(true) }

// RemoveCollision clears the entity's occupancy flags at its current position.
func (p *PathingEntity) RemoveCollision() { p.changeCollision(false) }

func (p *PathingEntity) changeCollision(add bool) {
	switch p.BlockWalk {
	case BlockWalkNpc:
		p.nav.ChangeNpcCollision(p.Width, p.X, p.Z, p.Level, add)
	case BlockWalkAll:
		p.nav.ChangeNpcCollision(p.Width, p.X, p.Z, p.Level, add)
		p.nav.ChangePlayerCollision(p.Width, p.X, p.Z, p.Level, add)
	}
}

// Teleport moves the entity without walking. Destinations in unloaded zones
// are ignored. The move is shown as an instant jump this tick.
func (p *PathingEntity) Teleport(x, z, level int) {
	level = max(0, min(level, 3))
	if !p.nav.IsZoneAllocated(level, x, z) {
		return
	}

	prevX, prevZ, prevLevel := p.X, p.Z, p.Level
	p.X, p.Z, p.Level = x, z, level
	dir := coord.Face(prevX, prevZ, x, z)
	p.Focus(coord.Fine(coord.MoveX(p.X, dir), p.Width), coord.Fine(coord.MoveZ(p.Z, dir), p.Length), false)
	p.refreshZonePresence(prevX, prevZ, prevLevel)
	p.LastStepX = p.X - 1
	p.LastStepZ = p.Z
	p.Tele = true
	p.MoveSpeed = Instant
	if prevLevel != level {
		p.Jump = true
	}
}

// TeleJump teleports and always flags the move as a jump.
func (p *PathingEntity) TeleJump(x, z, level int) {
	p.Teleport(x, z, level)
	p.MoveSpeed = Instant
	p.Jump = true
}

// ValidateDistanceWalked flags a jump when the entity moved further than a run allows.
func (p *PathingEntity) ValidateDistanceWalked() {
	last := coord.Rect{X: p.LastTickX, Z: p.LastTickZ, Width: p.Width, Length: p.Length}
	if coord.DistanceTo(p.Rect(), last) > 2 {
		p.Jump = true
	}
}

// Focus turns the entity toward a fine coordinate. With client set the
// change is sent as a face-coord update.
func (p *PathingEntity) Focus(fineX, fineZ int, client bool) {
	p.OrientationX = fineX
	p.OrientationZ = fineZ
	if client {
		p.FaceX = fineX
		p.FaceZ = fineZ
		p.Masks |= p.coordMask
	}
}

func (p *PathingEntity) Unfocus() {
	p.OrientationX = coord.Fine(p.X, p.Width)
	p.OrientationZ = coord.Fine(p.Z-1, p.Length)
}

// Reorient faces the current target, or the remembered target coordinate
// when the entity did not move.
func (p *PathingEntity) Reorient() {
	if t := p.Target; t != nil && (t.Kind() == KindPlayer || t.Kind() == KindNpc) {
		b := t.Base()
		p.Focus(b.FineX(), b.FineZ(), false)
		return
	}
	if p.TargetX != -1 && p.StepsTaken == 0 {
		p.Focus(p.TargetX, p.TargetZ, false)
		p.TargetX = -1
		p.TargetZ = -1
	}
}

func isPathing(t Target) bool {
	k := t.Kind()
	return k == KindPlayer || k == KindNpc
}

// InOperableDistance reports whether the entity is adjacent enough to op the target.
func (p *PathingEntity) InOperableDistance(t Target) bool {
	b := t.Base()
	if b.Level != p.Level {
		return false
	}
	switch t.Kind() {
	case KindPlayer, KindNpc:
		return p.nav.ReachedEntity(p.Level, p.X, p.Z, b.X, b.Z, b.Width, b.Length, p.Width)
	case KindLoc:
		return p.nav.ReachedLoc(p.Level, p.X, p.Z, b.X, b.Z, b.Width, b.Length, p.Width)
	}
	return p.nav.ReachedObj(p.Level, p.X, p.Z, b.X, b.Z, b.Width, b.Length, p.Width)
}

// InApproachDistance reports whether the target is within an ap range.
// Overlapping a pathing target never counts.
func (p *PathingEntity) InApproachDistance(rng int, t Target) bool {
	b := t.Base()
	if b.Level != p.Level {
		return false
	}
	if isPathing(t) && coord.Intersects(p.Rect(), b.Rect()) {
		return false
	}
	return coord.DistanceTo(p.Rect(), b.Rect()) <= rng &&
		p.nav.IsApproached(p.Level, p.X, p.Z, b.X, b.Z, p.Width, p.Length, b.Width, b.Length)
}

// PathToMoveClick queues a route to a clicked tile.
func (p *PathingEntity) PathToMoveClick(destX, destZ int) {
	if p.MoveStrategy == Smart {
		p.QueueWaypoints(p.nav.FindPath(p.Level, p.X, p.Z, destX, destZ, p.Width, 0, 0))
		return
	}
	p.QueueWaypoint(destX, destZ)
}

// PathToPathingTarget re-paths toward a moving target only once the current
// route is nearly used up.
func (p *PathingEntity) PathToPathingTarget() {
	if p.Target == nil {
		return
	}
	if !isPathing(p.Target) {
		p.PathToTarget()
		return
	}
	if !p.IsLastOrNoWaypoint() {
		return
	}
	p.PathToTarget()
}

// PathToTarget queues a route toward the current target using the entity's
// move strategy.
func (p *PathingEntity) PathToTarget() {
	t := p.Target
	if t == nil {
		return
	}
	b := t.Base()

	switch p.MoveStrategy {
	case Smart:
		switch t.Kind() {
		case KindPlayer, KindNpc, KindLoc:
			p.QueueWaypoints(p.nav.FindPath(p.Level, p.X, p.Z, b.X, b.Z, p.Width, b.Width, b.Length))
		default:
			if p.X == b.X && p.Z == b.Z {
				p.QueueWaypoint(b.X, b.Z)
				return
			}
			p.QueueWaypoints(p.nav.FindPath(p.Level, p.X, p.Z, b.X, b.Z, p.Width, 0, 0))
		}
	case Naive:
		if _, ok := p.MoveRestrict.CollisionType(); !ok || p.ExtraFlag == collision.Null {
			return
		}
		if isPathing(t) {
			p.QueueWaypoints(p.nav.FindNaivePath(p.Level, p.X, p.Z, b.X, b.Z))
			return
		}
		p.QueueWaypoint(b.X, b.Z)
	default:
		p.QueueWaypoint(b.X, b.Z)
	}
}

// SetInteraction points the entity at a target. It returns false when the
// target no longer exists.
func (p *PathingEntity) SetInteraction(kind Interaction, t Target, op, com int) bool {
	if t == nil || !t.IsValid() {
		return false
	}
	p.Target = t
	p.TargetOp = op
	p.ApRange = DefaultApRange
	p.ApRangeCalled = false
	p.TargetSubject = TargetSubject{Type: -1, Com: com}

	b := t.Base()
	nonPathing := !isPathing(t)
	if nonPathing {
		p.TargetSubject.Type = t.TypeID()
	}
	p.Focus(b.FineX(), b.FineZ(), nonPathing && kind == InteractionEngine)

	switch t.Kind() {
	case KindPlayer:
		if face := t.ID() + 32768; p.FaceEntity != face {
			p.FaceEntity = face
			p.Masks |= p.entityMask
		}
	case KindNpc:
		if face := t.ID(); p.FaceEntity != face {
			p.FaceEntity = face
			p.Masks |= p.entityMask
		}
	default:
		p.TargetX = b.FineX()
		p.TargetZ = b.FineZ()
	}
	return true
}

func (p *PathingEntity) ClearInteraction() {
	p.Target = nil
	p.TargetOp = -1
	p.TargetSubject = TargetSubject{Type: -1, Com: -1}
	p.ApRange = DefaultApRange
	p.ApRangeCalled = false
}

// ResetPathingEntity clears per-tick movement and display state.
func (p *PathingEntity) ResetPathingEntity() {
	p.MoveSpeed = p.DefaultSpeed
	p.WalkDir = coord.None
	p.RunDir = coord.None
	p.Jump = false
	p.Tele = false
	p.LastTickX = p.X
	p.LastTickZ = p.Z
	p.LastLevel = p.Level
	p.StepsTaken = 0
	p.Interacted = false
	p.ApRangeCalled = false

	p.Masks = 0
	p.clearScratch()
	p.FaceX = -1
	p.FaceZ = -1

	if p.Target == nil && p.FaceEntity != -1 {
		p.Masks |= p.entityMask
		p.FaceEntity = -1
	}
}

func (p *PathingEntity) clearScratch() {
	p.ExactStartX, p.ExactStartZ = -1, -1
	p.ExactEndX, p.ExactEndZ = -1, -1
	p.ExactMoveStart = -1
	p.ExactMoveEnd = -1
	p.ExactMoveDirection = -1
	p.AnimID = -1
	p.AnimDelay = -1
	p.Chat = ""
	p.DamageTaken = -1
	p.DamageType = -1
	p.GraphicID = -1
	p.GraphicHeight = -1
	p.GraphicDelay = -1
}

func (p *PathingEntity) CoordMask() int  { return p.coordMask }
func (p *PathingEntity) EntityMask() int { return p.entityMask }
