package zone

import "github.com/tickworld/server/internal/net/packet"

type op int

const (
	opLocAdd op = iota
	opLocDel
	opObjAdd
	opObjReveal
	opObjCount
	opObjDel
	opAnim
)

// Event is one queued zone update. Enclosed events go to every viewer of the
// zone; follows events only to Receiver.
type Event struct {
	Follows  bool
	Receiver int64
	Msg      packet.Message
	op       op
}

// VisibleTo reports whether a viewer with the given hash receives the event.
func (e *Event) VisibleTo(hash int64) bool {
	return !e.Follows || e.Receiver == hash
}

// Viewer is a player receiving zone updates.
type Viewer interface {
	Hash64() int64
	Origin() (x, z int)
	Write(msg packet.Message)
}
