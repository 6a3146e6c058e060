package zone

import "iter"

// Index packs a tile position into its zone key: 11 bits of zone x, 11 bits
// of zone z and 2 bits of level.
func Index(x, z, level int) int32 {
	return int32(((x >> 3) & 0x7ff) | (((z >> 3) & 0x7ff) << 11) | ((level & 0x3) << 22))
}

// UnpackIndex returns the origin tile and level of a zone key.
func UnpackIndex(index int32) (x, z, level int) {
	v := int(index)
	return (v & 0x7ff) << 3, ((v >> 11) & 0x7ff) << 3, (v >> 22) & 0x3
}

// Map owns every zone, creating them on first touch.
type Map struct {
	zones map[int32]*Zone
}

func NewMap() *Map {
	return &Map{zones: make(map[int32]*Zone)}
}

// Zone returns the zone containing the tile, creating it if needed.
func (m *Map) Zone(x, z, level int) *Zone {
	return m.ByIndex(Index(x, z, level))
}

func (m *Map) ByIndex(index int32) *Zone {
	zn, ok := m.zones[index]
	if !ok {
		zn = newZone(index)
		m.zones[index] = zn
	}
	return zn
}

// Lookup returns the zone without creating it.
func (m *Map) Lookup(x, z, level int) (*Zone, bool) {
	zn, ok := m.zones[Index(x, z, level)]
	return zn, ok
}

func (m *Map) All() iter.Seq[*Zone] {
	return func(yield func(*Zone) bool) {
		for _, zn := range m.zones {
			if !yield(zn) {
				return
			}
		}
	}
}

func (m *Map) ZoneCount() int { return len(m.zones) }

func (m *Map) LocCount() int {
	n := 0
	for _, zn := range m.zones {
		n += zn.locCount
	}
	return n
}

func (m *Map) ObjCount() int {
	n := 0
	for _, zn := range m.zones {
		n += zn.objCount
	}
	return n
}
