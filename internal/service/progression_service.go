package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mentormind/internal/database"
	"mentormind/internal/models"
	"mentormind/internal/progression"
	"mentormind/internal/repository"
	"mentormind/internal/validation"
)

// maxWeakTopicLength bounds the question text kept as a weak point topic
const maxWeakTopicLength = 100

// ProgressionService applies study events to a user's XP, level, streak,
// goals and badges. Each event is one transaction.
type ProgressionService struct {
	Deps
}

// NewProgressionService creates a new progression service
func NewProgressionService(deps Deps) *ProgressionService {
	return &ProgressionService{Deps: deps}
}

// CompleteFocusSession records a finished focus block of minutes
func (s *ProgressionService) CompleteFocusSession(ctx context.Context, userID int64, minutes int, sessionType string) (*Outcome, error) {
	if minutes < 1 || minutes > MaxFocusMinutes {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, minutes)
	}

	now, today := s.now(), s.today()
	xp := progression.FocusXP(minutes)
	out, err := s.runEvent(ctx, userID, func(tx *database.Tx, a *awarder) error {
		session := &models.FocusSession{
			UserID:          userID,
			DurationMinutes: minutes,
			SessionType:     sessionType,
			SessionDate:     today,
			XPEarned:        xp,
			CompletedAt:     now,
		}
		if err := repository.NewFocusRepository(tx).Record(ctx, session); err != nil {
			return err
		}
		if err := a.grant(ctx, progression.SourceFocusSession, xp); err != nil {
			return err
		}

		goal, err := repository.NewGoalRepository(tx).Accumulate(ctx, userID, today, progression.GoalFocusMinutes, minutes)
		if err != nil {
			return err
		}
		a.out.Goal = goal

		streak := progression.UpdateStreak(a.user.LastStudyDate, a.user.StreakDays, today)
		if err := a.users.UpdateStreak(ctx, userID, streak, today); err != nil {
			return err
		}
		a.out.Streak = streak
		return a.users.AddFocusMinutes(ctx, userID, minutes)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete focus session: %w", err)
	}

	s.logger().Info("focus session completed",
		zap.Int64("user_id", userID),
		zap.Int("minutes", minutes),
		zap.Int("xp", out.XPEarned),
		zap.Int("streak", out.Streak))
	return out, nil
}

// ReviewFlashcard grades one recall of a card and reschedules it
func (s *ProgressionService) ReviewFlashcard(ctx context.Context, userID, cardID int64, quality int) (*Outcome, error) {
	if err := progression.ValidateQuality(quality); err != nil {
		return nil, err
	}

	now, today := s.now(), s.today()
	out, err := s.runEvent(ctx, userID, func(tx *database.Tx, a *awarder) error {
		cards := repository.NewFlashcardRepository(tx)
		card, err := cards.GetForUser(ctx, cardID, userID)
		if err != nil {
			return err
		}

		prev := card.State()
		next, err := progression.Schedule(quality, prev)
		if err != nil {
			return err
		}
		nextReview := next.NextReview(today)
		if err := cards.UpdateSchedule(ctx, card.ID, next, nextReview, today); err != nil {
			return err
		}
		review := &models.FlashcardReview{
			FlashcardID:  card.ID,
			UserID:       userID,
			Quality:      quality,
			PrevInterval: prev.IntervalDays,
			PrevEase:     prev.EaseFactor,
			NewInterval:  next.IntervalDays,
			NewEase:      next.EaseFactor,
			ReviewedAt:   now,
		}
		if err := cards.AppendReview(ctx, review); err != nil {
			return err
		}
		a.out.NextReview = nextReview

		goal, err := repository.NewGoalRepository(tx).Accumulate(ctx, userID, today, progression.GoalFlashcards, 1)
		if err != nil {
			return err
		}
		a.out.Goal = goal
		return a.grant(ctx, progression.SourceFlashcardReview, progression.ReviewXP(quality))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to review flashcard %d: %w", cardID, err)
	}

	s.logger().Debug("flashcard reviewed",
		zap.Int64("user_id", userID),
		zap.Int64("card_id", cardID),
		zap.Int("quality", quality),
		zap.Stringer("next_review", out.NextReview))
	return out, nil
}

// CompleteTask marks a scheduled task done. Completing a task twice is an
// error and awards nothing.
func (s *ProgressionService) CompleteTask(ctx context.Context, userID, taskID int64) (*Outcome, error) {
	now, today := s.now(), s.today()
	out, err := s.runEvent(ctx, userID, func(tx *database.Tx, a *awarder) error {
		plans := repository.NewPlanRepository(tx)
		task, err := plans.GetTask(ctx, taskID, userID)
		if err != nil {
			return err
		}
		if task.IsCompleted {
			return ErrTaskAlreadyCompleted
		}
		if err := plans.CompleteTask(ctx, taskID, userID, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTaskAlreadyCompleted
			}
			return err
		}

		goal, err := repository.NewGoalRepository(tx).Accumulate(ctx, userID, today, progression.GoalTasks, 1)
		if err != nil {
			return err
		}
		a.out.Goal = goal
		return a.grant(ctx, progression.SourceTask, progression.TaskXP)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete task %d: %w", taskID, err)
	}

	s.logger().Info("task completed", zap.Int64("user_id", userID), zap.Int64("task_id", taskID))
	return out, nil
}

// QuizResult is a graded quiz submission
type QuizResult struct {
	Attempt *models.QuizAttempt     `json:"attempt"`
	Results []models.QuestionResult `json:"results"`
	Outcome *Outcome                `json:"outcome"`
}

// Percentage returns the score as a percentage of the questions
func (r *QuizResult) Percentage() float64 {
	if r.Attempt == nil || r.Attempt.Total == 0 {
		return 0
	}
	return float64(r.Attempt.Score) * 100 / float64(r.Attempt.Total)
}

// SubmitQuiz grades answers against a stored quiz. Missing answers count
// as unanswered; answers beyond the last question are ignored. Every wrong
// answer is recorded as a weak point of the quiz subject.
func (s *ProgressionService) SubmitQuiz(ctx context.Context, userID, quizID int64, answers []int, timeSpentSeconds int) (*QuizResult, error) {
	now := s.now()
	result := &QuizResult{}
	out, err := s.runEvent(ctx, userID, func(tx *database.Tx, a *awarder) error {
		quiz, err := repository.NewQuizRepository(tx).GetForUser(ctx, quizID, userID)
		if err != nil {
			return err
		}

		results, normalized, score := gradeQuiz(quiz.Questions, answers)
		weak := repository.NewWeakPointRepository(tx)
		for _, r := range results {
			if r.IsCorrect {
				continue
			}
			if err := weak.Record(ctx, userID, quiz.Subject, validation.Truncate(r.Question, maxWeakTopicLength)); err != nil {
				return err
			}
		}

		attempt := &models.QuizAttempt{
			QuizID:           quiz.ID,
			UserID:           userID,
			Answers:          normalized,
			Score:            score,
			Total:            len(quiz.Questions),
			TimeSpentSeconds: timeSpentSeconds,
			CompletedAt:      now,
		}
		if err := repository.NewQuizRepository(tx).RecordAttempt(ctx, attempt); err != nil {
			return err
		}
		result.Attempt = attempt
		result.Results = results
		return a.grant(ctx, progression.SourceQuiz, progression.QuizXP(score))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit quiz %d: %w", quizID, err)
	}
	result.Outcome = out

	s.logger().Info("quiz submitted",
		zap.Int64("user_id", userID),
		zap.Int64("quiz_id", quizID),
		zap.Int("score", result.Attempt.Score),
		zap.Int("total", result.Attempt.Total))
	return result, nil
}

// gradeQuiz compares answers with the questions' correct indexes. It
// returns one result per question, the answers padded with -1 to the
// number of questions, and the count of correct answers.
func gradeQuiz(questions []models.QuizQuestion, answers []int) ([]models.QuestionResult, models.IntList, int) {
	results := make([]models.QuestionResult, 0, len(questions))
	normalized := make(models.IntList, len(questions))
	score := 0
	for i, q := range questions {
		answer := -1
		if i < len(answers) {
			answer = answers[i]
		}
		normalized[i] = answer
		correct := answer == q.Correct
		if correct {
			score++
		}
		results = append(results, models.QuestionResult{
			Question:    q.Question,
			UserAnswer:  answer,
			Correct:     q.Correct,
			IsCorrect:   correct,
			Explanation: q.Explanation,
		})
	}
	return results, normalized, score
}

// AwardXP grants XP from an arbitrary source and settles badges
func (s *ProgressionService) AwardXP(ctx context.Context, userID int64, source progression.XPSource, amount int) (*Outcome, error) {
	out, err := s.runEvent(ctx, userID, func(_ *database.Tx, a *awarder) error {
		return a.grant(ctx, source, amount)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to award xp: %w", err)
	}
	return out, nil
}

// AccumulateGoal adds delta to one counter of the user's goal record for date
func (s *ProgressionService) AccumulateGoal(ctx context.Context, userID int64, date progression.Date, field progression.GoalField, delta int) (*models.DailyGoal, error) {
	if date.IsZero() {
		date = s.today()
	}
	return repository.NewGoalRepository(s.DB).Accumulate(ctx, userID, date, field, delta)
}

// TodayGoals returns today's goal record, creating it with default targets
func (s *ProgressionService) TodayGoals(ctx context.Context, userID int64) (*models.DailyGoal, error) {
	return repository.NewGoalRepository(s.DB).GetOrCreate(ctx, userID, s.today())
}

// SeedBadges stores the badge catalog rules that are not present yet
func (s *ProgressionService) SeedBadges(ctx context.Context, rules []progression.BadgeRule) (int, error) {
	added, err := repository.NewBadgeRepository(s.DB).Seed(ctx, rules)
	if err != nil {
		return added, err
	}
	if added > 0 {
		s.logger().Info("badge catalog seeded", zap.Int("added", added))
	}
	return added, nil
}

// Badges returns the catalog marked with the user's earned badges
func (s *ProgressionService) Badges(ctx context.Context, userID int64) ([]models.BadgeStatus, error) {
	return repository.NewBadgeRepository(s.DB).ListWithStatus(ctx, userID)
}
