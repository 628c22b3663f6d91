package progression

import (
	"errors"
	"testing"
)

func TestLevelOf(t *testing.T) {
	tests := []struct {
		name string
		xp   int
		want LevelProgress
	}{
		{"zero xp", 0, LevelProgress{Level: 1, XPIntoLevel: 0, XPForNext: 100}},
		{"just below first level", 99, LevelProgress{Level: 1, XPIntoLevel: 99, XPForNext: 100}},
		{"exactly first level", 100, LevelProgress{Level: 2, XPIntoLevel: 0, XPForNext: 150}},
		{"into second level", 130, LevelProgress{Level: 2, XPIntoLevel: 30, XPForNext: 150}},
		{"exactly third level", 250, LevelProgress{Level: 3, XPIntoLevel: 0, XPForNext: 225}},
		{"just below fourth level", 474, LevelProgress{Level: 3, XPIntoLevel: 224, XPForNext: 225}},
		{"truncated requirement", 475, LevelProgress{Level: 4, XPIntoLevel: 0, XPForNext: 337}},
		{"fifth level", 812, LevelProgress{Level: 5, XPIntoLevel: 0, XPForNext: 505}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LevelOf(tt.xp)
			if err != nil {
				t.Fatalf("LevelOf(%d) error = %v", tt.xp, err)
			}
			if got != tt.want {
				t.Errorf("LevelOf(%d) = %+v, want %+v", tt.xp, got, tt.want)
			}
		})
	}
}

func TestLevelOfRejectsNegative(t *testing.T) {
	if _, err := LevelOf(-1); !errors.Is(err, ErrNegativeXP) {
		t.Errorf("LevelOf(-1) error = %v, want %v", err, ErrNegativeXP)
	}
}

func TestLevelOfInvariants(t *testing.T) {
	prevLevel := 1
	for xp := 0; xp <= 20000; xp += 7 {
		p, err := LevelOf(xp)
		if err != nil {
			t.Fatalf("LevelOf(%d) error = %v", xp, err)
		}
		if p.XPIntoLevel < 0 || p.XPIntoLevel >= p.XPForNext {
			t.Fatalf("LevelOf(%d) = %+v, progress out of range", xp, p)
		}
		if p.Level < prevLevel {
			t.Fatalf("LevelOf(%d) level %d decreased from %d", xp, p.Level, prevLevel)
		}
		if ThresholdFor(p.Level)+p.XPIntoLevel != xp {
			t.Fatalf("ThresholdFor(%d)+%d != %d", p.Level, p.XPIntoLevel, xp)
		}
		prevLevel = p.Level
	}
}

func TestThresholdFor(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{0, 0},
		{1, 0},
		{2, 100},
		{3, 250},
		{4, 475},
		{5, 812},
	}

	for _, tt := range tests {
		if got := ThresholdFor(tt.level); got != tt.want {
			t.Errorf("ThresholdFor(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelProgressPercent(t *testing.T) {
	p := LevelProgress{Level: 2, XPIntoLevel: 75, XPForNext: 150}
	if got := p.Percent(); got != 50 {
		t.Errorf("Percent() = %d, want 50", got)
	}
	if got := (LevelProgress{}).Percent(); got != 0 {
		t.Errorf("zero Percent() = %d, want 0", got)
	}
}
