package progression

import "errors"

// BaseLevelXP is the experience needed to go from level 1 to level 2
const BaseLevelXP = 100

var ErrNegativeXP = errors.New("experience points must not be negative")

// LevelProgress describes where a total XP value sits on the leveling curve
type LevelProgress struct {
	Level       int `json:"level"`
	XPIntoLevel int `json:"xp_into_level"`
	XPForNext   int `json:"xp_for_next"`
}

// Percent returns how far into the current level the progress is, 0-100
func (p LevelProgress) Percent() int {
	if p.XPForNext <= 0 {
		return 0
	}
	return p.XPIntoLevel * 100 / p.XPForNext
}

// nextRequirement grows a level requirement by 1.5x, truncated
func nextRequirement(req int) int {
	return req + req/2
}

// LevelOf converts total experience into a level and the progress within it.
// Each level requires 1.5x the previous one, starting at BaseLevelXP.
func LevelOf(xp int) (LevelProgress, error) {
	if xp < 0 {
		return LevelProgress{}, ErrNegativeXP
	}

	level := 1
	remaining := xp
	req := BaseLevelXP
	for remaining >= req {
		remaining -= req
		level++
		req = nextRequirement(req)
	}

	return LevelProgress{Level: level, XPIntoLevel: remaining, XPForNext: req}, nil
}

// ThresholdFor returns the total XP at which level starts
func ThresholdFor(level int) int {
	total := 0
	req := BaseLevelXP
	for l := 1; l < level; l++ {
		total += req
		req = nextRequirement(req)
	}
	return total
}
