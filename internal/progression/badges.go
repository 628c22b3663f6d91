package progression

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed badges.yaml
var defaultBadgeCatalog []byte

// BadgeRequirement names the counter a badge rule is measured against
type BadgeRequirement string

const (
	RequireFocusSessions    BadgeRequirement = "focus_sessions"
	RequireDocuments        BadgeRequirement = "documents"
	RequireFlashcardReviews BadgeRequirement = "flashcard_reviews"
	RequireStreak           BadgeRequirement = "streak"
	RequireSummaries        BadgeRequirement = "summaries"
	RequireLevel            BadgeRequirement = "level"
)

var ErrInvalidBadgeRule = errors.New("invalid badge rule")

// BadgeRule is one achievement: reaching Threshold on Requirement earns it
type BadgeRule struct {
	Name        string           `yaml:"name" db:"name" json:"name"`
	Description string           `yaml:"description" db:"description" json:"description"`
	Icon        string           `yaml:"icon" db:"icon" json:"icon"`
	XPReward    int              `yaml:"xp_reward" db:"xp_reward" json:"xp_reward"`
	Requirement BadgeRequirement `yaml:"requirement" db:"requirement_type" json:"requirement"`
	Threshold   int              `yaml:"threshold" db:"requirement_value" json:"threshold"`
}

// AchievementStats holds the counters badge rules are evaluated against
type AchievementStats struct {
	FocusSessions    int `db:"focus_sessions"`
	Documents        int `db:"documents"`
	FlashcardReviews int `db:"flashcard_reviews"`
	Summaries        int `db:"summaries"`
	Streak           int `db:"streak_days"`
	Level            int `db:"level"`
}

// Value returns the counter a requirement refers to
func (s AchievementStats) Value(req BadgeRequirement) (int, bool) {
	switch req {
	case RequireFocusSessions:
		return s.FocusSessions, true
	case RequireDocuments:
		return s.Documents, true
	case RequireFlashcardReviews:
		return s.FlashcardReviews, true
	case RequireStreak:
		return s.Streak, true
	case RequireSummaries:
		return s.Summaries, true
	case RequireLevel:
		return s.Level, true
	}
	return 0, false
}

// Satisfied reports whether stats meet the rule
func (r BadgeRule) Satisfied(stats AchievementStats) bool {
	v, ok := stats.Value(r.Requirement)
	return ok && v >= r.Threshold
}

func (r BadgeRule) validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidBadgeRule)
	}
	if _, ok := (AchievementStats{}).Value(r.Requirement); !ok {
		return fmt.Errorf("%w: %s: unknown requirement %q", ErrInvalidBadgeRule, r.Name, r.Requirement)
	}
	if r.Threshold < 1 {
		return fmt.Errorf("%w: %s: threshold must be positive", ErrInvalidBadgeRule, r.Name)
	}
	if r.XPReward < 0 {
		return fmt.Errorf("%w: %s: negative reward", ErrInvalidBadgeRule, r.Name)
	}
	return nil
}

// ParseBadgeCatalog decodes and validates a YAML list of badge rules
func ParseBadgeCatalog(data []byte) ([]BadgeRule, error) {
	var rules []BadgeRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse badge catalog: %w", err)
	}

	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return nil, err
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("%w: duplicate badge %q", ErrInvalidBadgeRule, r.Name)
		}
		seen[r.Name] = true
	}
	return rules, nil
}

// DefaultBadgeCatalog returns the built-in badge rules
func DefaultBadgeCatalog() ([]BadgeRule, error) {
	return ParseBadgeCatalog(defaultBadgeCatalog)
}
