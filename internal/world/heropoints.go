package world

// HeroSlots is how many damage dealers an entity remembers.
const HeroSlots = 16

type hero struct {
	hash64 int64
	points int
}

// HeroPoints tracks who dealt the most damage, for drop ownership.
type HeroPoints struct {
	heroes [HeroSlots]hero
}

func (h *HeroPoints) Clear() {
	for i := range h.heroes {
		h.heroes[i] = hero{hash64: -1}
	}
}

// Add credits points to a player. Once every slot is taken, new players are
// ignored.
func (h *HeroPoints) Add(hash64 int64, points int) {
	if points < 1 {
		return
	}
	empty := -1
	for i := range h.heroes {
		switch h.heroes[i].hash64 {
		case hash64:
			h.heroes[i].points += points
			return
		case -1:
			if empty == -1 {
				empty = i
			}
		}
	}
	if empty != -1 {
		h.heroes[empty] = hero{hash64: hash64, points: points}
	}
}

// Top returns the player with the most points, or -1. Ties go to whoever
// was credited first.
func (h *HeroPoints) Top() int64 {
	best := h.heroes[0]
	for _, c := range h.heroes[1:] {
		if c.points > best.points {
			best = c
		}
	}
	if best.points == 0 {
		return -1
	}
	return best.hash64
}
