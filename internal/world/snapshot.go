package world

import (
	"encoding/json"
	"fmt"

	"github.com/tickworld/server/internal/inventory"
)

// snapshotVersion is bumped whenever a field changes meaning.
const snapshotVersion = 1

// snapshot is the saved form of a player.
type snapshot struct {
	Version    int                       `json:"version"`
	Username   string                    `json:"username"`
	X          int                       `json:"x"`
	Z          int                       `json:"z"`
	Level      int                       `json:"level"`
	Stats      []int                     `json:"stats"`
	Levels     []int                     `json:"levels"`
	Vars       map[int]int               `json:"vars,omitempty"`
	RunEnergy  int                       `json:"runEnergy"`
	Run        bool                      `json:"run"`
	Friends    []int64                   `json:"friends,omitempty"`
	Ignores    []int64                   `json:"ignores,omitempty"`
	MutedUntil int64                     `json:"mutedUntil,omitempty"`
	Invs       map[int][]*inventory.Item `json:"invs"`
}

// Save encodes the player's persistent state.
func (p *Player) Save() ([]byte, error) {
	s := snapshot{
		Version:    snapshotVersion,
		Username:   p.Username,
		X:          p.X,
		Z:          p.Z,
		Level:      p.Level,
		Stats:      p.Stats[:],
		Levels:     p.Levels[:],
		RunEnergy:  p.RunEnergy,
		Run:        p.Run,
		Friends:    p.Friends,
		Ignores:    p.Ignores,
		MutedUntil: p.MutedUntil,
		Invs:       make(map[int][]*inventory.Item, len(p.Invs)),
	}
	for id, v := range p.Vars {
		if v != 0 {
			if s.Vars == nil {
				s.Vars = make(map[int]int)
			}
			s.Vars[id] = v
		}
	}
	for typ, inv := range p.Invs {
		if typ == p.OpenShop || inv.IsEmpty() {
			continue
		}
		s.Invs[typ] = inv.Items()
	}
	return json.Marshal(&s)
}

// Load restores state written by Save. Base levels are derived from
// experience. On error the player is left unchanged.
func (p *Player) Load(b []byte) error {
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return fmt.Errorf("snapshot version %d, want %d", s.Version, snapshotVersion)
	}
	if len(s.Stats) != StatCount || len(s.Levels) != StatCount {
		return fmt.Errorf("snapshot has %d stats, want %d", len(s.Stats), StatCount)
	}

	p.X, p.Z, p.Level = s.X, s.Z, s.Level
	p.LastStepX, p.LastStepZ = s.X-1, s.Z
	for stat := range StatCount {
		p.Stats[stat] = s.Stats[stat]
		p.BaseLevels[stat] = LevelForExp(s.Stats[stat])
		p.Levels[stat] = s.Levels[stat]
	}
	p.refreshCombatLevel()
	p.syncHealth()
	p.Vars = [VarCount]int{}
	for id, v := range s.Vars {
		p.SetVar(id, v)
	}
	p.RunEnergy = max(0, min(s.RunEnergy, MaxRunEnergy))
	p.Run = s.Run
	p.Friends = s.Friends
	p.Ignores = s.Ignores
	p.MutedUntil = s.MutedUntil
	for typ, items := range s.Invs {
		inv := p.Inv(typ)
		if inv == nil {
			continue
		}
		for slot, it := range items {
			if it != nil && slot < inv.Capacity {
				inv.Set(slot, it)
			}
		}
	}
	return nil
}
