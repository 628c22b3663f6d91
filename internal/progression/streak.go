package progression

// UpdateStreak returns the consecutive-day streak after studying on today.
// Studying again on the same day keeps the streak; a missed day, a missing
// last date or a last date in the future restarts it at 1.
func UpdateStreak(lastStudy Date, streak int, today Date) int {
	if streak < 0 {
		streak = 0
	}
	switch {
	case lastStudy.IsZero():
		return 1
	case lastStudy.Equal(today):
		return streak
	case lastStudy.Equal(today.AddDays(-1)):
		return streak + 1
	default:
		return 1
	}
}

// StreakAtRisk reports whether the streak ends unless the user studies today
func StreakAtRisk(lastStudy Date, streak int, today Date) bool {
	return streak > 0 && !lastStudy.IsZero() && lastStudy.Equal(today.AddDays(-1))
}
