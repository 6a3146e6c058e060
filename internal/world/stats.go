package world

import (
	"math"
	"strings"
)

// Player stats.
const (
	StatAttack = iota
	StatDefence
	StatStrength
	StatHitpoints
	StatRanged
	StatPrayer
	StatMagic
	StatCooking
	StatWoodcutting
	StatFletching
	StatFishing
	StatFiremaking
	StatCrafting
	StatSmithing
	StatMining
	StatHerblore
	StatAgility
	StatThieving
	StatSlayer
	StatFarming
	StatRunecraft

	StatCount
)

var statNames = [StatCount]string{
	"attack", "defence", "strength", "hitpoints", "ranged", "prayer", "magic",
	"cooking", "woodcutting", "fletching", "fishing", "firemaking", "crafting",
	"smithing", "mining", "herblore", "agility", "thieving", "slayer", "farming",
	"runecraft",
}

func StatName(stat int) string {
	if stat < 0 || stat >= StatCount {
		return "unknown"
	}
	return statNames[stat]
}

// ParseStat accepts a stat name or returns -1.
func ParseStat(name string) int {
	name = strings.ToLower(name)
	for i, n := range statNames {
		if n == name {
			return i
		}
	}
	return -1
}

// Npc stats, in the order npc configs list them.
const (
	NpcAttack = iota
	NpcDefence
	NpcStrength
	NpcHitpoints
	NpcRanged
	NpcMagic

	NpcStatCount
)

// Experience is stored in tenths of a point.
const (
	MaxLevel = 99
	MaxExp   = 200_000_000
)

var levelExp [MaxLevel + 1]int

func init() {
	acc := 0
	for lvl := 1; lvl < MaxLevel; lvl++ {
		acc += int(float64(lvl) + 300*math.Pow(2, float64(lvl)/7))
		levelExp[lvl+1] = (acc / 4) * 10
	}
}

// ExpForLevel is the experience, in tenths, needed to reach level.
func ExpForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return levelExp[min(level, MaxLevel)]
}

// LevelForExp is the level that exp, in tenths, corresponds to.
func LevelForExp(exp int) int {
	for lvl := MaxLevel; lvl > 1; lvl-- {
		if exp >= levelExp[lvl] {
			return lvl
		}
	}
	return 1
}

// CombatLevel derives the displayed combat level from base levels.
func CombatLevel(base *[StatCount]int) int {
	defence := float64(base[StatDefence] + base[StatHitpoints] + base[StatPrayer]/2)
	melee := 0.325 * float64(base[StatAttack]+base[StatStrength])
	ranged := 0.325 * float64(base[StatRanged]*3/2)
	magic := 0.325 * float64(base[StatMagic]*3/2)
	return int(0.25*defence + max(melee, ranged, magic))
}
