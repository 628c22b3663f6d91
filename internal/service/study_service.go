package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mentormind/internal/database"
	"mentormind/internal/models"
	"mentormind/internal/progression"
	"mentormind/internal/repository"
	"mentormind/internal/validation"
)

const (
	maxFrontLength     = 1000
	maxBackLength      = 2000
	maxNameLength      = 255
	maxDocumentText    = 10000
	maxPlanTasks       = 20
	defaultTaskMinutes = 30
	defaultPriority    = 3
	defaultSubject     = "General"
	defaultPlanTitle   = "My Study Plan"
	defaultDailyHours  = 2
)

var ErrDeadlinePassed = errors.New("plan deadline is in the past")

// TaskDraft describes a task before it is scheduled
type TaskDraft struct {
	Title           string `json:"title"`
	Subject         string `json:"subject"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	Priority        int    `json:"priority"`
}

// PlanInput holds the fields of a new study plan
type PlanInput struct {
	Title      string
	Objective  string
	DailyHours float64
	Deadline   progression.Date
	Subjects   []string
	Tasks      []TaskDraft
}

// TaskPlanner proposes tasks for a plan
type TaskPlanner interface {
	PlanTasks(ctx context.Context, userID int64, in PlanInput) ([]TaskDraft, error)
}

// StudyService manages the material a user studies: flashcards, documents
// and plans
type StudyService struct {
	Deps
	planner TaskPlanner
}

// NewStudyService creates a new study service
func NewStudyService(deps Deps) *StudyService {
	return &StudyService{Deps: deps}
}

// WithPlanner sets the planner consulted when a plan has subjects and a
// deadline but no tasks
func (s *StudyService) WithPlanner(p TaskPlanner) *StudyService {
	s.planner = p
	return s
}

// CreateFlashcard adds a card to a deck. New cards are due today.
func (s *StudyService) CreateFlashcard(ctx context.Context, userID int64, front, back, deck string) (*models.Flashcard, *Outcome, error) {
	front, err := validation.SanitizeAndValidate("front", front, maxFrontLength)
	if err != nil {
		return nil, nil, err
	}
	back, err = validation.SanitizeAndValidate("back", back, maxBackLength)
	if err != nil {
		return nil, nil, err
	}
	deck = validation.Truncate(validation.SanitizeText(deck), maxNameLength)
	if deck == "" {
		deck = models.DefaultDeck
	}

	card := newCard(userID, nil, deck, front, back, s.today(), s.now())
	out, err := s.runEvent(ctx, userID, func(tx *database.Tx, a *awarder) error {
		if err := repository.NewFlashcardRepository(tx).Create(ctx, card); err != nil {
			return err
		}
		return a.grant(ctx, progression.SourceFlashcardCreated, progression.FlashcardCreatedXP)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create flashcard: %w", err)
	}
	return card, out, nil
}

func newCard(userID int64, summaryID *int64, deck, front, back string, today progression.Date, now time.Time) *models.Flashcard {
	state := progression.NewSchedulingState()
	return &models.Flashcard{
		UserID:       userID,
		SummaryID:    summaryID,
		DeckName:     deck,
		Front:        front,
		Back:         back,
		Repetitions:  state.Repetitions,
		EaseFactor:   state.EaseFactor,
		IntervalDays: state.IntervalDays,
		NextReview:   today,
		CreatedAt:    now,
	}
}

// DueFlashcards returns cards due today or earlier, most overdue first
func (s *StudyService) DueFlashcards(ctx context.Context, userID int64, limit int) ([]models.Flashcard, error) {
	if limit <= 0 {
		limit = 50
	}
	return repository.NewFlashcardRepository(s.DB).ListDue(ctx, userID, s.today(), limit)
}

// Flashcards returns every card of the user
func (s *StudyService) Flashcards(ctx context.Context, userID int64) ([]models.Flashcard, error) {
	return repository.NewFlashcardRepository(s.DB).ListByUser(ctx, userID)
}

// RegisterDocument stores the extracted text of a study document
func (s *StudyService) RegisterDocument(ctx context.Context, userID int64, name, subject, text string, pages int) (*models.Document, *Outcome, error) {
	name, err := validation.SanitizeAndValidate("name", name, maxNameLength)
	if err != nil {
		return nil, nil, err
	}
	if pages < 0 {
		return nil, nil, validation.ValidationError{Field: "pages", Message: "page count must not be negative"}
	}
	subject = validation.Truncate(validation.SanitizeText(subject), maxNameLength)
	if subject == "" {
		subject = defaultSubject
	}

	doc := &models.Document{
		UserID:       userID,
		OriginalName: name,
		Subject:      subject,
		ContentText:  validation.Truncate(text, maxDocumentText),
		PageCount:    pages,
		UploadedAt:   s.now(),
	}
	out, err := s.runEvent(ctx, userID, func(tx *database.Tx, a *awarder) error {
		if err := repository.NewContentRepository(tx).CreateDocument(ctx, doc); err != nil {
			return err
		}
		return a.grant(ctx, progression.SourceDocument, progression.DocumentXP)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register document: %w", err)
	}

	s.logger().Info("document registered", zap.Int64("user_id", userID), zap.Int64("document_id", doc.ID))
	return doc, out, nil
}

// CreatePlan stores a plan and its tasks. When no tasks are given but the
// plan has subjects and a deadline, the planner is asked for some; planner
// failures are logged and the plan is created without tasks.
func (s *StudyService) CreatePlan(ctx context.Context, userID int64, in PlanInput) (*models.StudyPlan, []models.StudyTask, *Outcome, error) {
	today := s.today()
	in, err := normalizePlan(in, today)
	if err != nil {
		return nil, nil, nil, err
	}

	if len(in.Tasks) == 0 && len(in.Subjects) > 0 && !in.Deadline.IsZero() && s.planner != nil {
		drafts, err := s.planner.PlanTasks(ctx, userID, in)
		if err != nil {
			s.logger().Warn("plan task generation failed", zap.Int64("user_id", userID), zap.Error(err))
		} else {
			in.Tasks = drafts
		}
	}

	plan := &models.StudyPlan{
		UserID:     userID,
		Title:      in.Title,
		Objective:  in.Objective,
		DailyHours: in.DailyHours,
		Deadline:   in.Deadline,
		Subjects:   models.StringList(in.Subjects),
		IsActive:   true,
		CreatedAt:  s.now(),
	}
	tasks := scheduleTasks(userID, in.Tasks, today, in.Deadline)

	out, err := s.runEvent(ctx, userID, func(tx *database.Tx, a *awarder) error {
		plans := repository.NewPlanRepository(tx)
		if err := plans.CreatePlan(ctx, plan); err != nil {
			return err
		}
		for i := range tasks {
			tasks[i].PlanID = &plan.ID
			if err := plans.AddTask(ctx, &tasks[i]); err != nil {
				return err
			}
		}
		return a.grant(ctx, progression.SourceStudyPlan, progression.StudyPlanXP)
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create study plan: %w", err)
	}

	s.logger().Info("study plan created",
		zap.Int64("user_id", userID),
		zap.Int64("plan_id", plan.ID),
		zap.Int("tasks", len(tasks)))
	return plan, tasks, out, nil
}

func normalizePlan(in PlanInput, today progression.Date) (PlanInput, error) {
	in.Title = validation.Truncate(validation.SanitizeText(in.Title), maxNameLength)
	if in.Title == "" {
		in.Title = defaultPlanTitle
	}
	in.Objective = validation.SanitizeText(in.Objective)
	if in.DailyHours == 0 {
		in.DailyHours = defaultDailyHours
	}
	if in.DailyHours < 0 || in.DailyHours > 24 {
		return in, validation.ValidationError{Field: "daily_hours", Message: "daily hours must be between 0 and 24"}
	}
	if !in.Deadline.IsZero() && in.Deadline.Before(today) {
		return in, ErrDeadlinePassed
	}

	subjects := make([]string, 0, len(in.Subjects))
	for _, subject := range in.Subjects {
		if subject = strings.TrimSpace(validation.SanitizeText(subject)); subject != "" {
			subjects = append(subjects, subject)
		}
	}
	in.Subjects = subjects
	return in, nil
}

// scheduleTasks spreads drafts round-robin over the days from today up to
// the deadline, keeping at most maxPlanTasks. Without a deadline, or with
// a deadline today, every task lands on today.
func scheduleTasks(userID int64, drafts []TaskDraft, today, deadline progression.Date) []models.StudyTask {
	if len(drafts) > maxPlanTasks {
		drafts = drafts[:maxPlanTasks]
	}
	days := 1
	if !deadline.IsZero() {
		days = max(1, today.DaysUntil(deadline))
	}

	tasks := make([]models.StudyTask, 0, len(drafts))
	for _, d := range drafts {
		title := validation.Truncate(validation.SanitizeText(d.Title), maxNameLength)
		if title == "" {
			continue
		}
		tasks = append(tasks, models.StudyTask{
			UserID:          userID,
			Title:           title,
			Subject:         validation.SanitizeText(d.Subject),
			Description:     validation.SanitizeText(d.Description),
			ScheduledDate:   today.AddDays(len(tasks) % days),
			DurationMinutes: positiveOr(d.DurationMinutes, defaultTaskMinutes),
			Priority:        clampPriority(d.Priority),
		})
	}
	return tasks
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func clampPriority(p int) int {
	if p <= 0 {
		return defaultPriority
	}
	return min(p, 5)
}

// AddTask schedules a standalone task on day (today when zero)
func (s *StudyService) AddTask(ctx context.Context, userID int64, draft TaskDraft, day progression.Date) (*models.StudyTask, error) {
	if err := validation.ValidateLength("title", validation.SanitizeText(draft.Title), maxNameLength); err != nil {
		return nil, err
	}
	if day.IsZero() {
		day = s.today()
	}
	tasks := scheduleTasks(userID, []TaskDraft{draft}, day, progression.Date{})
	task := &tasks[0]
	if err := repository.NewPlanRepository(s.DB).AddTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpcomingTasks lists open tasks from today onward
func (s *StudyService) UpcomingTasks(ctx context.Context, userID int64, limit int) ([]models.StudyTask, error) {
	if limit <= 0 {
		limit = 20
	}
	return repository.NewPlanRepository(s.DB).Upcoming(ctx, userID, s.today(), limit)
}
