package gamemap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tickworld/server/internal/data"
	"github.com/tickworld/server/internal/entity"
)

const squareSize = 64

// LocTypes resolves loc configs for collision while loading.
type LocTypes interface {
	Get(id int) *data.LocType
}

// square is one 64x64 map file. JSON files are read with the same decoder.
type square struct {
	X     int          `yaml:"x"`
	Z     int          `yaml:"z"`
	Tiles []squareTile `yaml:"tiles"`
	Locs  []squareLoc  `yaml:"locs"`
	Npcs  []squareNpc  `yaml:"npcs"`
	Objs  []squareObj  `yaml:"objs"`
}

type squareTile struct {
	X         int   `yaml:"x"`
	Z         int   `yaml:"z"`
	Level     int   `yaml:"level"`
	Collision int32 `yaml:"collision"`
}

type squareLoc struct {
	X     int  `yaml:"x"`
	Z     int  `yaml:"z"`
	Level int  `yaml:"level"`
	Type  int  `yaml:"type"`
	Shape *int `yaml:"shape"` // centrepiece when omitted
	Angle int  `yaml:"angle"`
}

type squareNpc struct {
	X     int `yaml:"x"`
	Z     int `yaml:"z"`
	Level int `yaml:"level"`
	Type  int `yaml:"type"`
}

type squareObj struct {
	X     int  `yaml:"x"`
	Z     int  `yaml:"z"`
	Level int  `yaml:"level"`
	Type  int  `yaml:"type"`
	Count *int `yaml:"count"`
}

// Load reads every map square under dir/maps. A missing directory or a bad
// file is logged and skipped; a partial world still boots.
func (m *GameMap) Load(dir string, locs LocTypes) {
	mapsDir := filepath.Join(dir, "maps")
	entries, err := os.ReadDir(mapsDir)
	if err != nil {
		m.log.Warn("no maps loaded", zap.String("dir", mapsDir), zap.Error(err))
		return
	}

	loaded := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !isSquareFile(name) {
			continue
		}
		path := filepath.Join(mapsDir, name)
		if err := m.LoadFile(path, locs); err != nil {
			m.log.Error("map square skipped", zap.String("file", path), zap.Error(err))
			continue
		}
		loaded++
	}
	m.log.Info("map loaded",
		zap.Int("squares", loaded),
		zap.Int("zones", m.Zones.ZoneCount()),
		zap.Int("locs", m.Zones.LocCount()),
		zap.Int("objs", len(m.ObjSpawns)),
		zap.Int("npcs", len(m.NpcSpawns)),
	)
}

func isSquareFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// LoadFile reads one map square.
func (m *GameMap) LoadFile(path string, locs LocTypes) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read map %s: %w", path, err)
	}
	var sq square
	if err := yaml.Unmarshal(raw, &sq); err != nil {
		return fmt.Errorf("parse map %s: %w", path, err)
	}
	m.loadSquare(&sq, locs)
	return nil
}

func (m *GameMap) loadSquare(sq *square, locs LocTypes) {
	baseX, baseZ := sq.X*squareSize, sq.Z*squareSize

	for level := range 4 {
		for x := 0; x < squareSize; x += 8 {
			for z := 0; z < squareSize; z += 8 {
				m.Collision.Allocate(level, baseX+x, baseZ+z)
			}
		}
	}

	for _, t := range sq.Tiles {
		if t.Collision != 0 {
			m.Collision.Add(t.Level, baseX+t.X, baseZ+t.Z, t.Collision)
		}
	}

	for _, l := range sq.Locs {
		x, z := baseX+l.X, baseZ+l.Z
		shape := 10
		if l.Shape != nil {
			shape = *l.Shape
		}
		width, length := 1, 1
		var cfg *data.LocType
		if locs != nil {
			cfg = locs.Get(l.Type)
		}
		if cfg != nil {
			width, length = max(cfg.Width, 1), max(cfg.Length, 1)
		}
		loc := entity.NewLoc(l.Level, x, z, width, length, entity.Forever, l.Type, shape, l.Angle)
		if cfg != nil && cfg.BlockWalk {
			m.ChangeLocCollision(shape, l.Angle, cfg.BlockRange, width, length, x, z, l.Level, true)
		}
		m.Zones.Zone(x, z, l.Level).AddStaticLoc(loc)
	}

	for _, n := range sq.Npcs {
		m.NpcSpawns = append(m.NpcSpawns, NpcSpawn{Level: n.Level, X: baseX + n.X, Z: baseZ + n.Z, Type: n.Type})
	}

	for _, o := range sq.Objs {
		count := 1
		if o.Count != nil {
			count = *o.Count
		}
		m.ObjSpawns = append(m.ObjSpawns, ObjSpawn{Level: o.Level, X: baseX + o.X, Z: baseZ + o.Z, Type: o.Type, Count: count})
	}
}
