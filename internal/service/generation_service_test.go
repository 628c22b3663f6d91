package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentormind/internal/models"
	"mentormind/internal/progression"
	"mentormind/internal/repository"
)

// fakeGenerator returns canned replies and records prompts
type fakeGenerator struct {
	mu      sync.Mutex
	text    string
	json    string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

func (g *fakeGenerator) GenerateJSON(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.json, g.err
}

const studyText = "Photosynthesis is the process by which green plants use sunlight, water and carbon dioxide to make glucose and oxygen."

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"wrapped in prose", `Here you go: {"a": {"b": 2}} enjoy`, `{"a": {"b": 2}}`},
		{"no object", "nothing here", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.in))
		})
	}
}

func TestValidQuestions(t *testing.T) {
	in := []models.QuizQuestion{
		{Question: "ok", Options: []string{"a", "b"}, Correct: 1},
		{Question: "one option", Options: []string{"a"}, Correct: 0},
		{Question: "out of range", Options: []string{"a", "b"}, Correct: 2},
		{Question: "", Options: []string{"a", "b"}, Correct: 0},
		{Question: "negative", Options: []string{"a", "b"}, Correct: -1},
		{Question: "second", Options: []string{"<i>x</i>", "y"}, Correct: 0},
		{Question: "third", Options: []string{"x", "y"}, Correct: 0},
	}

	out := validQuestions(in, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "ok", out[0].Question)
	assert.Equal(t, "second", out[1].Question)
	assert.Equal(t, "x", out[1].Options[0])
}

func TestGenerateQuiz(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gen := &fakeGenerator{json: "```json\n" + `{"questions": [
		{"question": "What gas do plants release?", "options": ["Oxygen", "Nitrogen"], "correct": 0, "explanation": "Oxygen is a by-product."},
		{"question": "Broken", "options": ["Only"], "correct": 0}
	]}` + "\n```"}
	svc := NewGenerationService(f.deps, gen, RateLimit{})
	user := f.createUser(t, "ana")

	quiz, err := svc.GenerateQuiz(ctx, user.ID, "Biology", "photosynthesis", 40)
	require.NoError(t, err)
	assert.Equal(t, "Biology", quiz.Subject)
	assert.Equal(t, 1, quiz.TotalQuestions)
	assert.Contains(t, gen.prompts[0], "Write 15 clear questions about Biology.")

	stored, err := repository.NewQuizRepository(f.db).GetForUser(ctx, quiz.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, quiz.Questions, stored.Questions)
}

func TestGenerateQuizRejectsUnusableOutput(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "bo")

	gen := &fakeGenerator{json: `{"questions": []}`}
	_, err := NewGenerationService(f.deps, gen, RateLimit{}).GenerateQuiz(context.Background(), user.ID, "", "", 3)
	assert.ErrorIs(t, err, ErrInvalidGeneration)

	gen = &fakeGenerator{json: `not json at all`}
	_, err = NewGenerationService(f.deps, gen, RateLimit{}).GenerateQuiz(context.Background(), user.ID, "", "", 3)
	assert.ErrorIs(t, err, ErrInvalidGeneration)
}

func TestGenerationDisabledAndRateLimited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "cy")

	_, err := NewGenerationService(f.deps, nil, RateLimit{}).Explain(ctx, user.ID, "entropy")
	assert.ErrorIs(t, err, ErrGenerationDisabled)

	limit := RateLimit{Max: 2, Window: time.Hour}
	svc := NewGenerationService(f.deps, &fakeGenerator{text: "It means disorder."}, limit)
	for i := 0; i < 2; i++ {
		_, err := svc.Explain(ctx, user.ID, "entropy")
		require.NoError(t, err)
	}
	_, err = svc.Explain(ctx, user.ID, "entropy")
	assert.ErrorIs(t, err, ErrRateLimited)

	other := f.createUser(t, "di")
	_, err = svc.Explain(ctx, other.ID, "entropy")
	assert.NoError(t, err)

	// a second service over the same database shares the attempts
	_, err = NewGenerationService(f.deps, &fakeGenerator{text: "again"}, limit).Explain(ctx, user.ID, "entropy")
	assert.ErrorIs(t, err, ErrRateLimited)

	f.advance(1)
	_, err = svc.Explain(ctx, user.ID, "entropy")
	assert.NoError(t, err)

	removed, err := svc.PurgeAttempts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}

func TestGenerateSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var cards []string
	for i := 0; i < 12; i++ {
		cards = append(cards, `{"front": "Q`+string(rune('a'+i))+`", "back": "A"}`)
	}
	gen := &fakeGenerator{json: `{"title": "Photosynthesis", "short_summary": "Plants make food.",
		"full_summary": "Plants turn light into sugar.", "topics": ["light", " "],
		"mind_map": {"central": "Photosynthesis", "branches": []},
		"flashcards": [` + strings.Join(cards, ",") + `]}`}
	svc := NewGenerationService(f.deps, gen, RateLimit{})
	user := f.createUser(t, "ed")

	doc, _, err := NewStudyService(f.deps).RegisterDocument(ctx, user.ID, "bio.pdf", "Biology", studyText, 1)
	require.NoError(t, err)

	result, err := svc.GenerateSummary(ctx, user.ID, &doc.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "Photosynthesis", result.Summary.Title)
	assert.Equal(t, []string{"light"}, []string(result.Summary.Topics))
	assert.JSONEq(t, `{"central": "Photosynthesis", "branches": []}`, result.Summary.MindMap)
	assert.Equal(t, progression.SummaryXP, result.Outcome.XPEarned)
	require.Len(t, result.Flashcards, maxSummaryFlashcards)
	for _, card := range result.Flashcards {
		assert.Equal(t, "Photosynthesis", card.DeckName)
		require.NotNil(t, card.SummaryID)
		assert.Equal(t, result.Summary.ID, *card.SummaryID)
	}
	assert.Contains(t, gen.prompts[0], studyText)

	count, err := repository.NewContentRepository(f.db).CountSummaries(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGenerateSummaryTextTooShort(t *testing.T) {
	f := newFixture(t)
	gen := &fakeGenerator{}
	user := f.createUser(t, "fay")

	_, err := NewGenerationService(f.deps, gen, RateLimit{}).GenerateSummary(context.Background(), user.ID, nil, "too short")
	assert.ErrorIs(t, err, ErrTextTooShort)
	assert.Empty(t, gen.prompts)
}

func TestMindMapJSON(t *testing.T) {
	assert.Equal(t, "{}", mindMapJSON(nil))
	assert.Equal(t, "{}", mindMapJSON([]byte("null")))
	assert.Equal(t, "{}", mindMapJSON([]byte("{broken")))
	assert.Equal(t, `{"central":"x"}`, mindMapJSON([]byte(`{"central":"x"}`)))
}

func TestChat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gen := &fakeGenerator{text: "  Fractions split a whole into equal parts.  "}
	svc := NewGenerationService(f.deps, gen, RateLimit{})
	user := f.createUser(t, "gus")

	reply, err := svc.Chat(ctx, user.ID, "What is a fraction?")
	require.NoError(t, err)
	assert.Equal(t, "Fractions split a whole into equal parts.", reply.Reply)
	assert.Equal(t, progression.TutorReplyXP, reply.Outcome.XPEarned)
	assert.Contains(t, gen.prompts[0], "What is a fraction?")

	history, err := svc.ChatHistory(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
}

func TestChatFailureKeepsQuestionOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewGenerationService(f.deps, &fakeGenerator{err: errors.New("quota exceeded")}, RateLimit{})
	user := f.createUser(t, "hal")

	_, err := svc.Chat(ctx, user.ID, "Help with algebra")
	require.Error(t, err)

	history, err := svc.ChatHistory(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, 0, f.reload(t, user.ID).XP)

	_, err = svc.Chat(ctx, user.ID, "   ")
	assert.Error(t, err)
}

func TestMentorMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gen := &fakeGenerator{text: "Open your books. Now."}
	svc := NewGenerationService(f.deps, gen, RateLimit{})
	user := f.createUser(t, "ida")

	msg, err := svc.MentorMessage(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Open your books. Now.", msg.Message)
	assert.NotZero(t, msg.ID)
	assert.Contains(t, gen.prompts[0], "Focus today: 0/60 min")

	stored, err := repository.NewContentRepository(f.db).RecentMentorMessages(ctx, user.ID, 5)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestPlanTasks(t *testing.T) {
	f := newFixture(t)
	gen := &fakeGenerator{json: `{"tasks": [{"title": "Read", "subject": "History", "duration_minutes": 40, "priority": 2}]}`}
	svc := NewGenerationService(f.deps, gen, RateLimit{})

	drafts, err := svc.PlanTasks(context.Background(), 1, PlanInput{
		Objective:  "Exam",
		Subjects:   []string{"History"},
		DailyHours: 1.5,
		Deadline:   progression.NewDate(2024, 4, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, []TaskDraft{{Title: "Read", Subject: "History", DurationMinutes: 40, Priority: 2}}, drafts)
	assert.Contains(t, gen.prompts[0], "1.5 hours per day until 2024-04-01")
}
