package event

// PlayerLoggedIn is emitted by the login phase once a player holds a slot.
type PlayerLoggedIn struct {
	Tick       int64
	Pid        int
	Username   string
	RemoteAddr string
}

// PlayerLoggedOut is emitted after a player's final save.
type PlayerLoggedOut struct {
	Tick     int64
	Username string
	Forced   bool
}

// LoginRejected is emitted when the world refuses a queued login.
type LoginRejected struct {
	Tick     int64
	Username string
	Reason   string
}

// EntityFailed is emitted when a player or npc turn panics.
type EntityFailed struct {
	Tick int64
	Kind string // "player" or "npc"
	ID   int
}
