package data

// HuntKind is what a hunting npc looks for.
type HuntKind int

const (
	HuntOff HuntKind = iota
	HuntPlayer
	HuntNpc
	HuntObj
	HuntScenery
)

// HuntVis controls the visibility test applied to candidates.
type HuntVis int

const (
	VisOff HuntVis = iota
	VisLineOfSight
	VisLineOfWalk
)

// NobodyNear says what a hunter does when the scan finds no one.
type NobodyNear int

const (
	KeepHunting NobodyNear = iota
	PauseHunt
)

// HuntType is an npc aggression rule.
type HuntType struct {
	ID                 int        `yaml:"id"`
	Debug              string     `yaml:"debug_name"`
	Kind               HuntKind   `yaml:"kind"`
	CheckVis           HuntVis    `yaml:"check_vis"`
	CheckNotTooStrong  bool       `yaml:"check_not_too_strong"`
	CheckNotBusy       bool       `yaml:"check_not_busy"`
	FindKeepHunting    bool       `yaml:"find_keep_hunting"`
	FindNewMode        int        `yaml:"find_new_mode"`
	NobodyNear         NobodyNear `yaml:"nobody_near"`
	CheckNotCombat     int        `yaml:"check_not_combat"` // ticks since last hit, -1 off
	CheckNotCombatSelf int        `yaml:"check_not_combat_self"`
	CheckAfk           bool       `yaml:"check_afk"`
	Rate               int        `yaml:"rate"` // ticks between scans
	CheckCategory      int        `yaml:"check_category"`
}

func (h *HuntType) ConfigID() int     { return h.ID }
func (h *HuntType) DebugName() string { return h.Debug }

func (h *HuntType) setDefaults() {
	h.FindNewMode = -1
	h.CheckNotCombat = -1
	h.CheckNotCombatSelf = -1
	h.Rate = 1
	h.CheckCategory = -1
}
