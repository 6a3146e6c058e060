package data

// NpcType is an npc definition.
type NpcType struct {
	ID           int      `yaml:"id"`
	Debug        string   `yaml:"debug_name"`
	Name         string   `yaml:"name"`
	Desc         string   `yaml:"desc"`
	Size         int      `yaml:"size"`
	Ops          []string `yaml:"ops"`
	VisLevel     int      `yaml:"vis_level"` // combat level, -1 hides it
	MoveRestrict int      `yaml:"move_restrict"`
	BlockWalk    int      `yaml:"block_walk"` // 0 none, 1 npcs, 2 all
	HuntMode     int      `yaml:"hunt_mode"`  // hunt type id, -1 for none
	HuntRange    int      `yaml:"hunt_range"`
	DefaultMode  int      `yaml:"default_mode"`
	Timer        int      `yaml:"timer"` // ticks between ai_timer fires, -1 for none
	Attack       int      `yaml:"attack"`
	Strength     int      `yaml:"strength"`
	Defence      int      `yaml:"defence"`
	Hitpoints    int      `yaml:"hitpoints"`
	Ranged       int      `yaml:"ranged"`
	Magic        int      `yaml:"magic"`
	Category     int      `yaml:"category"`
	Members      bool     `yaml:"members"`
	WanderRange  int      `yaml:"wander_range"`
	MaxRange     int      `yaml:"max_range"`
	AttackRange  int      `yaml:"attack_range"`
	RespawnRate  int      `yaml:"respawn_rate"` // ticks
	GiveChase    bool     `yaml:"give_chase"`
	Patrol       []Patrol `yaml:"patrol"`
}

// Patrol is one stop on an npc's patrol route.
type Patrol struct {
	X     int `yaml:"x"`
	Z     int `yaml:"z"`
	Level int `yaml:"level"`
	Delay int `yaml:"delay"`
}

func (n *NpcType) ConfigID() int     { return n.ID }
func (n *NpcType) DebugName() string { return n.Debug }

func (n *NpcType) setDefaults() {
	n.Size = 1
	n.Ops = []string{"", "", "", "", ""}
	n.VisLevel = -1
	n.BlockWalk = 1
	n.HuntMode = -1
	n.HuntRange = 5
	n.DefaultMode = -1
	n.Timer = -1
	n.Attack, n.Strength, n.Defence, n.Hitpoints, n.Ranged, n.Magic = 1, 1, 1, 1, 1, 1
	n.Category = -1
	n.WanderRange = 5
	n.MaxRange = 7
	n.AttackRange = 1
	n.RespawnRate = 100
	n.GiveChase = true
}

// Stats returns the six combat levels in stat order.
func (n *NpcType) Stats() [6]int {
	return [6]int{n.Attack, n.Defence, n.Strength, n.Hitpoints, n.Ranged, n.Magic}
}
