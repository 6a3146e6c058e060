package entity

// Layer is the slot a loc occupies on its tile.
type Layer int

const (
	LayerWall Layer = iota
	LayerWallDecor
	LayerGround
	LayerGroundDecor
)

// ShapeLayer maps a loc shape to the layer it occupies.
func ShapeLayer(shape int) Layer {
	switch {
	case shape >= 0 && shape <= 3:
		return LayerWall
	case shape == 9:
		return LayerWallDecor
	case shape >= 4 && shape <= 8:
		return LayerGround
	case shape >= 12 && shape <= 21:
		return LayerGround
	}
	return LayerGroundDecor
}

// NonPathing is embedded by entities whose only state changes are lifecycle
// transitions. Event is the handle of the tracker slot currently
// authoritative for the entity.
type NonPathing struct {
	Entity
	Event EventRef
}

// Loc is scenery. Type, shape and angle are packed into base and current info
// so a temporary change can be reverted.
type Loc struct {
	NonPathing
	baseInfo    int32
	currentInfo int32
}

func NewLoc(level, x, z, width, length int, lifecycle Lifecycle, typ, shape, angle int) *Loc {
	l := &Loc{NonPathing: NonPathing{Entity: NewEntity(level, x, z, width, length, lifecycle)}}
	l.baseInfo = packLocInfo(typ, shape, angle)
	l.currentInfo = l.baseInfo
	return l
}

func packLocInfo(typ, shape, angle int) int32 {
	layer := int(ShapeLayer(shape))
	return int32((typ & 0x3fff) | ((shape & 0x1f) << 14) | ((angle & 0x3) << 19) | ((layer & 0x3) << 21))
}

func (l *Loc) Kind() Kind    { return KindLoc }
func (l *Loc) ID() int       { return -1 }
func (l *Loc) TypeID() int   { return l.Type() }
func (l *Loc) IsValid() bool { return true }

func (l *Loc) Type() int  { return int(l.currentInfo & 0x3fff) }
func (l *Loc) Shape() int { return int(l.currentInfo>>14) & 0x1f }
func (l *Loc) Angle() int { return int(l.currentInfo>>19) & 0x3 }

// Layer is fixed by the shape the loc was created with.
func (l *Loc) Layer() Layer { return Layer((l.baseInfo >> 21) & 0x3) }

func (l *Loc) BaseType() int  { return int(l.baseInfo & 0x3fff) }
func (l *Loc) BaseShape() int { return int(l.baseInfo>>14) & 0x1f }
func (l *Loc) BaseAngle() int { return int(l.baseInfo>>19) & 0x3 }

func (l *Loc) IsChanged() bool { return l.currentInfo != l.baseInfo }

func (l *Loc) Change(typ, shape, angle int) {
	l.currentInfo = packLocInfo(typ, shape, angle)
}

func (l *Loc) Revert() { l.currentInfo = l.baseInfo }

// NoReceiver marks an obj visible to everyone.
const NoReceiver int64 = -1

// Obj is a ground item stack.
type Obj struct {
	NonPathing
	Type     int
	Count    int
	Receiver int64
	// ReceiverTicks is the public lifetime a private obj gets once revealed.
	ReceiverTicks int
}

func NewObj(level, x, z int, lifecycle Lifecycle, typ, count int) *Obj {
	return &Obj{
		NonPathing: NonPathing{Entity: NewEntity(level, x, z, 1, 1, lifecycle)},
		Type:       typ,
		Count:      count,
		Receiver:   NoReceiver,
	}
}

func (o *Obj) Kind() Kind    { return KindObj }
func (o *Obj) ID() int       { return -1 }
func (o *Obj) TypeID() int   { return o.Type }
func (o *Obj) IsValid() bool { return o.IsActive() }

// VisibleTo reports whether the viewer with the given hash can see the obj.
func (o *Obj) VisibleTo(hash int64) bool {
	return o.Receiver == NoReceiver || o.Receiver == hash
}
