package entity

import "github.com/tickworld/server/internal/collision"

type MoveSpeed int

const (
	Stationary MoveSpeed = iota
	Crawl
	Walk
	Run
	Instant
)

func (s MoveSpeed) String() string {
	switch s {
	case Stationary:
		return "STATIONARY"
	case Crawl:
		return "CRAWL"
	case Walk:
		return "WALK"
	case Run:
		return "RUN"
	case Instant:
		return "INSTANT"
	}
	return "UNKNOWN"
}

type MoveStrategy int

const (
	Smart MoveStrategy = iota
	Naive
	Fly
)

// MoveRestrict is the per-mover collision avoidance policy.
type MoveRestrict int

const (
	RestrictNormal MoveRestrict = iota
	RestrictBlocked
	RestrictBlockedNormal
	RestrictIndoors
	RestrictOutdoors
	RestrictNoMove
	RestrictPassThru
)

// CollisionType maps the restriction to a grid collision type. ok is false
// for movers that never step.
func (r MoveRestrict) CollisionType() (t collision.Type, ok bool) {
	switch r {
	case RestrictNormal, RestrictPassThru:
		return collision.Normal, true
	case RestrictBlocked:
		return collision.Blocked, true
	case RestrictBlockedNormal:
		return collision.LineOfSight, true
	case RestrictIndoors:
		return collision.Indoors, true
	case RestrictOutdoors:
		return collision.Outdoors, true
	}
	return collision.Normal, false
}

// BlockWalk says which occupancy flags a mover stamps on the tiles it stands on.
type BlockWalk int

const (
	BlockWalkNone BlockWalk = iota
	BlockWalkNpc
	BlockWalkAll
)

// Interaction distinguishes engine-driven from script-driven targeting.
type Interaction int

const (
	InteractionScript Interaction = iota
	InteractionEngine
)

// Navigator is the slice of the game map a pathing entity needs.
type Navigator interface {
	IsZoneAllocated(level, x, z int) bool
	CanTravel(level, x, z, dx, dz, size int, extra int32, ct collision.Type) bool
	FindPath(level, srcX, srcZ, destX, destZ, srcSize, destWidth, destLength int) []int32
	FindNaivePath(level, srcX, srcZ, destX, destZ int) []int32
	ChangeNpcCollision(size, x, z, level int, add bool)
	ChangePlayerCollision(size, x, z, level int, add bool)
	ReachedEntity(level, srcX, srcZ, destX, destZ, destWidth, destLength, srcSize int) bool
	ReachedLoc(level, srcX, srcZ, destX, destZ, destWidth, destLength, srcSize int) bool
	ReachedObj(level, srcX, srcZ, destX, destZ, destWidth, destLength, srcSize int) bool
	IsApproached(level, srcX, srcZ, destX, destZ, srcWidth, srcLength, destWidth, destLength int) bool
	// Relocate moves zone membership after a position change.
	Relocate(kind Kind, id, fromLevel, fromX, fromZ, toLevel, toX, toZ int)
}
