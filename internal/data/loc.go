package data

// LocType is a scenery definition.
type LocType struct {
	ID         int      `yaml:"id"`
	Debug      string   `yaml:"debug_name"`
	Name       string   `yaml:"name"`
	Desc       string   `yaml:"desc"`
	Width      int      `yaml:"width"`
	Length     int      `yaml:"length"`
	BlockWalk  bool     `yaml:"block_walk"`
	BlockRange bool     `yaml:"block_range"`
	Active     bool     `yaml:"active"`
	Anim       int      `yaml:"anim"`
	Ops        []string `yaml:"ops"`
	Category   int      `yaml:"category"`
	ForceDecor bool     `yaml:"force_decor"`
	Members    bool     `yaml:"members"`
}

func (l *LocType) ConfigID() int     { return l.ID }
func (l *LocType) DebugName() string { return l.Debug }

func (l *LocType) setDefaults() {
	l.Width, l.Length = 1, 1
	l.BlockWalk = true
	l.BlockRange = true
	l.Anim = -1
	l.Category = -1
}
