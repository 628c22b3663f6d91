package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentormind/internal/progression"
	"mentormind/internal/repository"
	"mentormind/internal/validation"
)

type fakePlanner struct {
	drafts []TaskDraft
	err    error
	calls  int
}

func (p *fakePlanner) PlanTasks(context.Context, int64, PlanInput) ([]TaskDraft, error) {
	p.calls++
	return p.drafts, p.err
}

func TestScheduleTasks(t *testing.T) {
	today := progression.NewDate(2024, 3, 10)
	drafts := make([]TaskDraft, 5)
	for i := range drafts {
		drafts[i] = TaskDraft{Title: fmt.Sprintf("Task %d", i+1), DurationMinutes: 45, Priority: 9}
	}

	tasks := scheduleTasks(7, drafts, today, today.AddDays(3))
	require.Len(t, tasks, 5)
	offsets := make([]int, len(tasks))
	for i, task := range tasks {
		offsets[i] = today.DaysUntil(task.ScheduledDate)
		assert.Equal(t, int64(7), task.UserID)
		assert.Equal(t, 45, task.DurationMinutes)
		assert.Equal(t, 5, task.Priority)
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1}, offsets)
}

func TestScheduleTasksLimits(t *testing.T) {
	today := progression.NewDate(2024, 3, 10)
	drafts := make([]TaskDraft, 25)
	for i := range drafts {
		drafts[i] = TaskDraft{Title: "Task"}
	}
	drafts[0].Title = "  "

	tasks := scheduleTasks(1, drafts, today, progression.Date{})
	assert.Len(t, tasks, maxPlanTasks-1)
	for _, task := range tasks {
		assert.Equal(t, today.String(), task.ScheduledDate.String())
	}
}

func TestCreatePlanUsesPlanner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	planner := &fakePlanner{drafts: []TaskDraft{
		{Title: "Algebra review", Subject: "Math"},
		{Title: "Essay outline", Subject: "English"},
		{Title: "Practice set", Subject: "Math"},
	}}
	svc := NewStudyService(f.deps).WithPlanner(planner)
	user := f.createUser(t, "ana")

	plan, tasks, out, err := svc.CreatePlan(ctx, user.ID, PlanInput{
		Objective: "Pass finals",
		Deadline:  f.today().AddDays(2),
		Subjects:  []string{"Math", " ", "English"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, planner.calls)
	assert.Equal(t, defaultPlanTitle, plan.Title)
	assert.Equal(t, float64(defaultDailyHours), plan.DailyHours)
	assert.Equal(t, []string{"Math", "English"}, []string(plan.Subjects))
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		require.NotNil(t, task.PlanID)
		assert.Equal(t, plan.ID, *task.PlanID)
	}
	assert.Equal(t, f.today().AddDays(1).String(), tasks[1].ScheduledDate.String())
	assert.Equal(t, f.today().String(), tasks[2].ScheduledDate.String())
	assert.Equal(t, progression.StudyPlanXP, out.XPEarned)

	stored, err := repository.NewPlanRepository(f.db).ListTasks(ctx, plan.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestCreatePlanSurvivesPlannerFailure(t *testing.T) {
	f := newFixture(t)
	planner := &fakePlanner{err: errors.New("backend unavailable")}
	svc := NewStudyService(f.deps).WithPlanner(planner)
	user := f.createUser(t, "bo")

	plan, tasks, _, err := svc.CreatePlan(context.Background(), user.ID, PlanInput{
		Title:    "Biology",
		Deadline: f.today().AddDays(5),
		Subjects: []string{"Cells"},
	})
	require.NoError(t, err)
	assert.NotZero(t, plan.ID)
	assert.Empty(t, tasks)
}

func TestCreatePlanValidation(t *testing.T) {
	f := newFixture(t)
	planner := &fakePlanner{}
	svc := NewStudyService(f.deps).WithPlanner(planner)
	user := f.createUser(t, "cy")

	_, _, _, err := svc.CreatePlan(context.Background(), user.ID, PlanInput{Deadline: f.today().AddDays(-1)})
	assert.ErrorIs(t, err, ErrDeadlinePassed)

	_, _, _, err = svc.CreatePlan(context.Background(), user.ID, PlanInput{DailyHours: 25})
	var verr validation.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "daily_hours", verr.Field)
	assert.Zero(t, planner.calls)
}

func TestCreateFlashcardValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewStudyService(f.deps)
	user := f.createUser(t, "di")

	_, _, err := svc.CreateFlashcard(ctx, user.ID, "   ", "back", "")
	assert.Error(t, err)

	card, out, err := svc.CreateFlashcard(ctx, user.ID, "<b>Capital</b> of France?", "Paris", "Geography")
	require.NoError(t, err)
	assert.Equal(t, "Capital of France?", card.Front)
	assert.Equal(t, progression.FlashcardCreatedXP, out.XPEarned)

	due, err := svc.DueFlashcards(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, card.ID, due[0].ID)
}

func TestRegisterDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewStudyService(f.deps)
	user := f.createUser(t, "ed")

	doc, out, err := svc.RegisterDocument(ctx, user.ID, "notes.pdf", "", "Photosynthesis converts light into chemical energy.", 3)
	require.NoError(t, err)
	assert.Equal(t, defaultSubject, doc.Subject)
	// 10 for the document plus the Beginner Reader badge
	assert.Equal(t, progression.DocumentXP+25, out.XPEarned)
	assert.Equal(t, []string{"Beginner Reader"}, badgeNames(out.NewBadges))

	_, _, err = svc.RegisterDocument(ctx, user.ID, "notes.pdf", "", "", -1)
	assert.Error(t, err)
}

func TestUpcomingTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewStudyService(f.deps)
	user := f.createUser(t, "fay")

	_, err := svc.AddTask(ctx, user.ID, TaskDraft{Title: "Later"}, f.today().AddDays(2))
	require.NoError(t, err)
	_, err = svc.AddTask(ctx, user.ID, TaskDraft{Title: "Past"}, f.today().AddDays(-2))
	require.NoError(t, err)
	_, err = svc.AddTask(ctx, user.ID, TaskDraft{Title: ""}, progression.Date{})
	assert.Error(t, err)

	tasks, err := svc.UpcomingTasks(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Later", tasks[0].Title)
}
