package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"mentormind/internal/service"
)

// emit prints v as JSON with --json, otherwise runs text
func (c *CLI) emit(v any, text func(w io.Writer)) error {
	if c.json {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(c.out)
	return nil
}

func printOutcome(w io.Writer, out *service.Outcome) {
	if out == nil {
		return
	}
	if out.XPEarned > 0 {
		fmt.Fprintf(w, "+%d XP (total %d)\n", out.XPEarned, out.TotalXP)
	}
	p := out.Progress
	fmt.Fprintf(w, "Level %d %s %d/%d XP\n", p.Level, progressBar(p.Percent(), 20), p.XPIntoLevel, p.XPForNext)
	if out.LeveledUp {
		fmt.Fprintf(w, "Level up! You reached level %d.\n", p.Level)
	}
	if out.Streak > 0 {
		fmt.Fprintf(w, "Streak: %d day(s)\n", out.Streak)
	}
	if !out.NextReview.IsZero() {
		fmt.Fprintf(w, "Next review: %s\n", out.NextReview)
	}
	for _, b := range out.NewBadges {
		fmt.Fprintf(w, "Badge earned: %s %s (+%d XP)\n", b.Icon, b.Name, b.XPReward)
	}
}

// progressBar renders percent as a fixed width bar
func progressBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
