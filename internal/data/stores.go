package data

import (
	"path/filepath"

	"go.uber.org/zap"
)

// Stores bundles every config table. It is replaced as a whole on reload.
type Stores struct {
	Objs  *Table[ObjType]
	Npcs  *Table[NpcType]
	Locs  *Table[LocType]
	Invs  *Table[InvType]
	Hunts *Table[HuntType]
}

// LoadStores reads all tables from dir. Missing files leave that table empty
// with a warning; malformed files are errors.
func LoadStores(dir string, log *zap.Logger) (*Stores, error) {
	s := &Stores{}
	var err error
	if s.Objs, err = loadOrEmpty[ObjType](dir, "objs.yaml", "objs", log); err != nil {
		return nil, err
	}
	if s.Npcs, err = loadOrEmpty[NpcType](dir, "npcs.yaml", "npcs", log); err != nil {
		return nil, err
	}
	if s.Locs, err = loadOrEmpty[LocType](dir, "locs.yaml", "locs", log); err != nil {
		return nil, err
	}
	if s.Invs, err = loadOrEmpty[InvType](dir, "invs.yaml", "invs", log); err != nil {
		return nil, err
	}
	if s.Hunts, err = loadOrEmpty[HuntType](dir, "hunts.yaml", "hunts", log); err != nil {
		return nil, err
	}
	log.Info("config tables loaded",
		zap.Int("objs", s.Objs.Count()),
		zap.Int("npcs", s.Npcs.Count()),
		zap.Int("locs", s.Locs.Count()),
		zap.Int("invs", s.Invs.Count()),
		zap.Int("hunts", s.Hunts.Count()),
	)
	return s, nil
}

func loadOrEmpty[T any, P record[T]](dir, file, key string, log *zap.Logger) (*Table[T], error) {
	t, err := LoadTable[T, P](filepath.Join(dir, file), key)
	if err != nil {
		if IsMissing(err) {
			log.Warn("config table missing", zap.String("file", file))
			return t, nil
		}
		return nil, err
	}
	return t, nil
}
