package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mentormind/internal/models"
	"mentormind/internal/notify"
	"mentormind/internal/progression"
	"mentormind/internal/repository"
)

// reminderWorkers bounds concurrent reminder deliveries
const reminderWorkers = 4

// ReminderData is what a reminder is built from
type ReminderData struct {
	User         *models.User
	Goal         *models.DailyGoal
	DueCards     int
	PendingTasks int
	Today        progression.Date
}

// BuildReminder composes the daily reminder. It reports false when there
// is nothing worth saying: no due cards, no open tasks, every goal met and
// no streak at risk.
func BuildReminder(d ReminderData) (notify.Message, bool) {
	var lines []string
	if d.DueCards > 0 {
		lines = append(lines, fmt.Sprintf("You have %d flashcard(s) due for review.", d.DueCards))
	}
	if d.PendingTasks > 0 {
		lines = append(lines, fmt.Sprintf("%d study task(s) are scheduled for today.", d.PendingTasks))
	}
	if d.Goal != nil {
		for _, field := range progression.GoalFields {
			achieved, target := d.Goal.Achieved(field), d.Goal.Target(field)
			if achieved < target {
				lines = append(lines, fmt.Sprintf("Goal %s: %d of %d.", goalLabel(field), achieved, target))
			}
		}
	}
	if progression.StreakAtRisk(d.User.LastStudyDate, d.User.StreakDays, d.Today) {
		lines = append(lines, fmt.Sprintf("Study today to keep your %d day streak.", d.User.StreakDays))
	}
	if len(lines) == 0 {
		return notify.Message{}, false
	}
	return notify.Message{Subject: "Your study reminder", Lines: lines}, true
}

func goalLabel(field progression.GoalField) string {
	switch field {
	case progression.GoalFocusMinutes:
		return "focus minutes"
	case progression.GoalFlashcards:
		return "flashcards"
	case progression.GoalTasks:
		return "tasks"
	}
	return string(field)
}

// ReminderService sends the daily reminders
type ReminderService struct {
	Deps
	notifier notify.Notifier
}

// NewReminderService creates a new reminder service
func NewReminderService(deps Deps, notifier notify.Notifier) *ReminderService {
	return &ReminderService{Deps: deps, notifier: notifier}
}

// Collect gathers the reminder inputs of one user
func (s *ReminderService) Collect(ctx context.Context, user *models.User) (ReminderData, error) {
	today := s.today()
	d := ReminderData{User: user, Today: today}

	goal, err := repository.NewGoalRepository(s.DB).Get(ctx, user.ID, today)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// Nothing done yet today: report against the default targets
		d.Goal = &models.DailyGoal{
			UserID:           user.ID,
			Date:             today,
			FocusGoalMinutes: progression.DefaultFocusGoalMinutes,
			FlashcardsGoal:   progression.DefaultFlashcardsGoal,
			TasksGoal:        progression.DefaultTasksGoal,
		}
	case err != nil:
		return d, err
	default:
		d.Goal = goal
	}

	if d.DueCards, err = repository.NewFlashcardRepository(s.DB).CountDue(ctx, user.ID, today); err != nil {
		return d, err
	}
	if d.PendingTasks, err = repository.NewPlanRepository(s.DB).CountPendingOn(ctx, user.ID, today); err != nil {
		return d, err
	}
	return d, nil
}

// SendDailyReminders notifies every user with reminders enabled and
// returns how many reminders went out. Failures for one user do not stop
// the others; they are joined into the returned error.
func (s *ReminderService) SendDailyReminders(ctx context.Context) (int, error) {
	users, err := repository.NewUserRepository(s.DB).ListForReminders(ctx)
	if err != nil {
		return 0, err
	}

	var (
		mu   sync.Mutex
		sent int
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	g := new(errgroup.Group)
	g.SetLimit(reminderWorkers)
	for i := range users {
		user := &users[i]
		g.Go(func() error {
			data, err := s.Collect(ctx, user)
			if err != nil {
				fail(fmt.Errorf("user %d: %w", user.ID, err))
				return nil
			}
			msg, ok := BuildReminder(data)
			if !ok {
				return nil
			}
			to := notify.Recipient{UserID: user.ID, Name: user.Name, Email: user.Email, TelegramChatID: user.TelegramChatID}
			if err := s.notifier.Notify(ctx, to, msg); err != nil {
				s.logger().Warn("reminder delivery failed", zap.Int64("user_id", user.ID), zap.Error(err))
				fail(fmt.Errorf("user %d: %w", user.ID, err))
				return nil
			}
			mu.Lock()
			sent++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.logger().Info("daily reminders sent", zap.Int("users", len(users)), zap.Int("sent", sent), zap.Int("failed", len(errs)))
	return sent, errors.Join(errs...)
}
