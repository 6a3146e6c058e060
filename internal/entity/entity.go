// Package entity holds the positional records shared by every simulated
// object: the Entity base, non-pathing locs and ground objs, the lifecycle
// event tracker, the slot-indexed pools, and the pathing state machine used
// by players and npcs.
package entity

import "github.com/tickworld/server/internal/coord"

// Lifecycle decides what happens when an entity's lifecycle timer expires.
type Lifecycle int

const (
	Forever Lifecycle = iota
	Respawn
	Despawn
)

func (l Lifecycle) String() string {
	switch l {
	case Forever:
		return "FOREVER"
	case Respawn:
		return "RESPAWN"
	case Despawn:
		return "DESPAWN"
	}
	return "UNKNOWN"
}

// Kind discriminates the four target categories.
type Kind int

const (
	KindPlayer Kind = iota
	KindNpc
	KindLoc
	KindObj
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindNpc:
		return "npc"
	case KindLoc:
		return "loc"
	case KindObj:
		return "obj"
	}
	return "unknown"
}

// Entity is the base positional record.
type Entity struct {
	Level  int
	X      int
	Z      int
	Width  int
	Length int

	Lifecycle     Lifecycle
	LifecycleTick int

	active bool
}

func NewEntity(level, x, z, width, length int, lifecycle Lifecycle) Entity {
	return Entity{Level: level, X: x, Z: z, Width: width, Length: length, Lifecycle: lifecycle}
}

func (e *Entity) Base() *Entity { return e }

func (e *Entity) IsActive() bool     { return e.active }
func (e *Entity) SetActive(on bool)  { e.active = on }
func (e *Entity) SetLifecycle(t int) { e.LifecycleTick = t }
func (e *Entity) Coord() coord.Coord { return coord.Coord{Level: e.Level, X: e.X, Z: e.Z} }
func (e *Entity) Packed() int32      { return coord.Pack(e.Level, e.X, e.Z) }
func (e *Entity) Rect() coord.Rect   { return coord.Rect{X: e.X, Z: e.Z, Width: e.Width, Length: e.Length} }
func (e *Entity) ZoneX() int         { return coord.Zone(e.X) }
func (e *Entity) ZoneZ() int         { return coord.Zone(e.Z) }
func (e *Entity) FineX() int         { return coord.Fine(e.X, e.Width) }
func (e *Entity) FineZ() int         { return coord.Fine(e.Z, e.Length) }

// Target is anything a pathing entity can interact with. Behaviour that
// differs per category switches on Kind.
type Target interface {
	Kind() Kind
	Base() *Entity
	// ID is the pool slot for players and npcs, -1 otherwise.
	ID() int
	// TypeID is the config type used for trigger lookups, -1 for players.
	TypeID() int
	// IsValid reports whether the target still exists in the world.
	IsValid() bool
}
