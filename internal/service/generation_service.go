package service

import (
	"context"
	"encoding/json"
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
	maxQuizQuestions     = 15
	minSummaryText       = 50
	maxSummaryPrompt     = 8000
	maxSummaryStored     = 5000
	maxSummaryFlashcards = 10
	maxChatMessage       = 4000
	maxExplainText       = 4000
)

// Generator produces text from a prompt. GenerateJSON asks the backend for
// a JSON document; callers still tolerate fenced or wrapped output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// RateLimit caps generation calls per user within a rolling window.
// A zero Max disables the limit.
type RateLimit struct {
	Max    int
	Window time.Duration
}

// GenerationService turns model output into study content
type GenerationService struct {
	Deps
	gen   Generator
	limit RateLimit
}

// NewGenerationService creates a new generation service. gen may be nil,
// in which case every call fails with ErrGenerationDisabled.
func NewGenerationService(deps Deps, gen Generator, limit RateLimit) *GenerationService {
	return &GenerationService{Deps: deps, gen: gen, limit: limit}
}

// allow checks that a backend exists and records the attempt when the user
// is within the rate limit. Attempts are stored, so the limit spans
// separate processes.
func (s *GenerationService) allow(ctx context.Context, userID int64, kind string) error {
	if s.gen == nil {
		return ErrGenerationDisabled
	}
	if s.limit.Max <= 0 {
		return nil
	}
	now := s.now()
	return s.DB.WithTx(ctx, func(tx *database.Tx) error {
		events := repository.NewGenerationRepository(tx)
		n, err := events.CountSince(ctx, userID, now.Add(-s.limit.Window))
		if err != nil {
			return err
		}
		if n >= s.limit.Max {
			return ErrRateLimited
		}
		return events.Record(ctx, userID, kind, now)
	})
}

// PurgeAttempts drops logged attempts that no longer count against any
// limit and returns how many were removed
func (s *GenerationService) PurgeAttempts(ctx context.Context) (int64, error) {
	return repository.NewGenerationRepository(s.DB).DeleteBefore(ctx, s.now().Add(-s.limit.Window))
}

// GenerateQuiz asks for n multiple-choice questions (clamped to 1..15) and
// stores the quiz. Questions without two options or with an out of range
// answer are dropped; a quiz left with no questions is an error.
func (s *GenerationService) GenerateQuiz(ctx context.Context, userID int64, subject, topic string, n int) (*models.Quiz, error) {
	subject = validation.Truncate(validation.SanitizeText(subject), maxNameLength)
	if subject == "" {
		subject = defaultSubject
	}
	topic = validation.SanitizeText(topic)
	n = min(max(n, 1), maxQuizQuestions)
	if err := s.allow(ctx, userID, "quiz"); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You write study questions. Reply with JSON only:
{"questions": [{"question": "text", "options": ["a", "b", "c", "d"], "correct": 0, "explanation": "why"}]}
"correct" is the zero-based index of the right option.

Write %d clear questions about %s.`, n, subject)
	if topic != "" {
		prompt += " Specific topic: " + topic
	}

	var payload struct {
		Questions []models.QuizQuestion `json:"questions"`
	}
	if err := s.generateJSON(ctx, prompt, &payload); err != nil {
		return nil, fmt.Errorf("failed to generate quiz: %w", err)
	}
	questions := validQuestions(payload.Questions, n)
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: quiz has no usable questions", ErrInvalidGeneration)
	}

	quiz := &models.Quiz{
		UserID:    userID,
		Title:     subject + " quiz",
		Subject:   subject,
		Questions: models.QuestionList(questions),
		CreatedAt: s.now(),
	}
	if err := repository.NewQuizRepository(s.DB).Create(ctx, quiz); err != nil {
		return nil, err
	}

	s.logger().Info("quiz generated",
		zap.Int64("user_id", userID),
		zap.Int64("quiz_id", quiz.ID),
		zap.Int("questions", len(questions)))
	return quiz, nil
}

// validQuestions keeps at most n well-formed questions
func validQuestions(in []models.QuizQuestion, n int) []models.QuizQuestion {
	out := make([]models.QuizQuestion, 0, min(len(in), n))
	for _, q := range in {
		if len(out) == n {
			break
		}
		q.Question = validation.SanitizeText(q.Question)
		if q.Question == "" || len(q.Options) < 2 || q.Correct < 0 || q.Correct >= len(q.Options) {
			continue
		}
		for i := range q.Options {
			q.Options[i] = validation.SanitizeText(q.Options[i])
		}
		q.Explanation = validation.SanitizeText(q.Explanation)
		out = append(out, q)
	}
	return out
}

// SummaryResult is a stored summary with the flashcards made from it
type SummaryResult struct {
	Summary    *models.Summary    `json:"summary"`
	Flashcards []models.Flashcard `json:"flashcards"`
	Outcome    *Outcome           `json:"outcome"`
}

type summaryPayload struct {
	Title        string          `json:"title"`
	ShortSummary string          `json:"short_summary"`
	FullSummary  string          `json:"full_summary"`
	Topics       []string        `json:"topics"`
	MindMap      json.RawMessage `json:"mind_map"`
	Flashcards   []struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	} `json:"flashcards"`
}

// GenerateSummary summarizes text, or the stored text of documentID when
// text is empty, and creates up to ten flashcards from it
func (s *GenerationService) GenerateSummary(ctx context.Context, userID int64, documentID *int64, text string) (*SummaryResult, error) {
	if strings.TrimSpace(text) == "" && documentID != nil {
		doc, err := repository.NewContentRepository(s.DB).GetDocument(ctx, *documentID, userID)
		if err != nil {
			return nil, err
		}
		text = doc.ContentText
	}
	if len([]rune(strings.TrimSpace(text))) < minSummaryText {
		return nil, ErrTextTooShort
	}
	if err := s.allow(ctx, userID, "summary"); err != nil {
		return nil, err
	}

	prompt := `You are a study assistant that writes study summaries.
Reply with JSON only, shaped like:
{"title": "title", "short_summary": "two or three sentences", "full_summary": "detailed summary",
 "topics": ["topic"], "flashcards": [{"front": "question", "back": "answer"}],
 "mind_map": {"central": "main theme", "branches": [{"name": "subtopic", "items": ["item"]}]}}

Summarize the following text:

` + validation.Truncate(text, maxSummaryPrompt)

	var payload summaryPayload
	if err := s.generateJSON(ctx, prompt, &payload); err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	summary := &models.Summary{
		UserID:       userID,
		DocumentID:   documentID,
		Title:        validation.Truncate(validation.SanitizeText(payload.Title), maxNameLength),
		OriginalText: validation.Truncate(text, maxSummaryStored),
		ShortSummary: validation.SanitizeText(payload.ShortSummary),
		FullSummary:  validation.SanitizeText(payload.FullSummary),
		Topics:       models.StringList(sanitizeAll(payload.Topics)),
		MindMap:      mindMapJSON(payload.MindMap),
		CreatedAt:    s.now(),
	}
	if summary.Title == "" {
		summary.Title = "Summary"
	}

	today, now := s.today(), s.now()
	var cards []models.Flashcard
	out, err := s.runEvent(ctx, userID, func(tx *database.Tx, a *awarder) error {
		if err := repository.NewContentRepository(tx).CreateSummary(ctx, summary); err != nil {
			return err
		}
		flashcards := repository.NewFlashcardRepository(tx)
		for _, fc := range payload.Flashcards {
			if len(cards) == maxSummaryFlashcards {
				break
			}
			front := validation.Truncate(validation.SanitizeText(fc.Front), maxFrontLength)
			back := validation.Truncate(validation.SanitizeText(fc.Back), maxBackLength)
			if front == "" || back == "" {
				continue
			}
			card := newCard(userID, &summary.ID, summary.Title, front, back, today, now)
			if err := flashcards.Create(ctx, card); err != nil {
				return err
			}
			cards = append(cards, *card)
		}
		return a.grant(ctx, progression.SourceSummary, progression.SummaryXP)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store summary: %w", err)
	}

	s.logger().Info("summary generated",
		zap.Int64("user_id", userID),
		zap.Int64("summary_id", summary.ID),
		zap.Int("flashcards", len(cards)))
	return &SummaryResult{Summary: summary, Flashcards: cards, Outcome: out}, nil
}

func mindMapJSON(raw json.RawMessage) string {
	if len(raw) == 0 || !json.Valid(raw) || string(raw) == "null" {
		return "{}"
	}
	return string(raw)
}

func sanitizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = validation.SanitizeText(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// PlanTasks asks for up to twenty tasks covering the plan's subjects
func (s *GenerationService) PlanTasks(ctx context.Context, userID int64, in PlanInput) ([]TaskDraft, error) {
	if err := s.allow(ctx, userID, "plan"); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You are a study planner. Build a task schedule.
Reply with JSON only:
{"tasks": [{"title": "title", "subject": "subject", "description": "description", "duration_minutes": 30, "priority": 3}]}
Priority goes from 1 to 5. Vary the tasks and spread them across the subjects. At most %d tasks.

Plan for: %s. Subjects: %s. %.1f hours per day until %s.`,
		maxPlanTasks, in.Objective, strings.Join(in.Subjects, ", "), in.DailyHours, in.Deadline)

	var payload struct {
		Tasks []TaskDraft `json:"tasks"`
	}
	if err := s.generateJSON(ctx, prompt, &payload); err != nil {
		return nil, fmt.Errorf("failed to generate plan tasks: %w", err)
	}
	return payload.Tasks, nil
}

// ChatReply is the tutor's answer to one message
type ChatReply struct {
	Reply   string   `json:"reply"`
	Outcome *Outcome `json:"outcome"`
}

// Chat stores the user's message, asks the tutor and stores the reply. A
// failed generation keeps the question but stores no reply and awards
// nothing.
func (s *GenerationService) Chat(ctx context.Context, userID int64, message string) (*ChatReply, error) {
	message = strings.TrimSpace(message)
	if err := validation.ValidateLength("message", message, maxChatMessage); err != nil {
		return nil, err
	}
	if err := s.allow(ctx, userID, "chat"); err != nil {
		return nil, err
	}

	user, err := repository.NewUserRepository(s.DB).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	content := repository.NewContentRepository(s.DB)
	if err := content.AddChatMessage(ctx, &models.ChatMessage{
		UserID: userID, Role: models.RoleUser, Content: message, CreatedAt: s.now(),
	}); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You are MentorMind, a friendly and patient study tutor.
The student is called %s and is at level %d.
Explain subjects clearly, walk through exercises step by step, share study
and memorization tips, adapt to the student's level and keep them motivated.
Use practical examples.

Student question: %s`, user.Name, user.Level, message)

	reply, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tutor reply: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, fmt.Errorf("%w: empty tutor reply", ErrInvalidGeneration)
	}

	out, err := s.runEvent(ctx, userID, func(tx *database.Tx, a *awarder) error {
		if err := repository.NewContentRepository(tx).AddChatMessage(ctx, &models.ChatMessage{
			UserID: userID, Role: models.RoleAssistant, Content: reply, CreatedAt: s.now(),
		}); err != nil {
			return err
		}
		return a.grant(ctx, progression.SourceTutor, progression.TutorReplyXP)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store tutor reply: %w", err)
	}
	return &ChatReply{Reply: reply, Outcome: out}, nil
}

// ChatHistory returns the latest messages of the tutor conversation in order
func (s *GenerationService) ChatHistory(ctx context.Context, userID int64, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	return repository.NewContentRepository(s.DB).RecentChat(ctx, userID, limit)
}

// MentorMessage writes a short coaching note from the user's level, streak
// and today's goals and stores it
func (s *GenerationService) MentorMessage(ctx context.Context, userID int64) (*models.MentorMessage, error) {
	if err := s.allow(ctx, userID, "mentor"); err != nil {
		return nil, err
	}
	user, err := repository.NewUserRepository(s.DB).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	goal, err := repository.NewGoalRepository(s.DB).GetOrCreate(ctx, userID, s.today())
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You are a demanding study mentor: firm, direct and motivating.
If the student has not studied today, push them hard. If they studied a
little, ask for more. If they are doing well, praise them and raise the bar.
Keep it to two or three sentences.

Student: %s
Level: %d
Streak: %d days
Focus today: %d/%d min
Flashcards: %d/%d
Tasks: %d/%d`,
		user.Name, user.Level, user.StreakDays,
		goal.FocusAchievedMinutes, goal.FocusGoalMinutes,
		goal.FlashcardsDone, goal.FlashcardsGoal,
		goal.TasksDone, goal.TasksGoal)

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate mentor message: %w", err)
	}
	msg := &models.MentorMessage{
		UserID:      userID,
		Message:     strings.TrimSpace(text),
		MessageType: "motivation",
		CreatedAt:   s.now(),
	}
	if msg.Message == "" {
		return nil, fmt.Errorf("%w: empty mentor message", ErrInvalidGeneration)
	}
	if err := repository.NewContentRepository(s.DB).AddMentorMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Explain returns a plain explanation of text. Nothing is stored.
func (s *GenerationService) Explain(ctx context.Context, userID int64, text string) (string, error) {
	text = strings.TrimSpace(text)
	if err := validation.ValidateLength("text", text, maxExplainText); err != nil {
		return "", err
	}
	if err := s.allow(ctx, userID, "explain"); err != nil {
		return "", err
	}

	prompt := `Explain the following text simply, as you would to a student,
with an example where it helps:

` + text
	explanation, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate explanation: %w", err)
	}
	return strings.TrimSpace(explanation), nil
}

// generateJSON runs a JSON prompt and decodes the first object in the reply
func (s *GenerationService) generateJSON(ctx context.Context, prompt string, v any) error {
	raw, err := s.gen.GenerateJSON(ctx, prompt)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGeneration, err)
	}
	return nil
}

// extractJSON strips Markdown code fences and any text around the outermost
// JSON object
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		return s[start : end+1]
	}
	return s
}
