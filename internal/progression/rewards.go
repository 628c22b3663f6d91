package progression

// XPSource tags an entry of the XP ledger
type XPSource string

const (
	SourceFocusSession     XPSource = "focus_session"
	SourceFlashcardReview  XPSource = "flashcard_review"
	SourceFlashcardCreated XPSource = "flashcard_created"
	SourceTask             XPSource = "task"
	SourceQuiz             XPSource = "quiz"
	SourceDocument         XPSource = "document"
	SourceSummary          XPSource = "summary"
	SourceStudyPlan        XPSource = "study_plan"
	SourceTutor            XPSource = "tutor"
	SourceBadge            XPSource = "badge"
)

// XP rewards per event
const (
	FocusXPPerMinute   = 2
	ReviewPassXP       = 5
	ReviewFailXP       = 2
	TaskXP             = 15
	QuizXPPerCorrect   = 10
	FlashcardCreatedXP = 5
	DocumentXP         = 10
	SummaryXP          = 25
	StudyPlanXP        = 20
	TutorReplyXP       = 2
)

func FocusXP(minutes int) int {
	return FocusXPPerMinute * minutes
}

func ReviewXP(quality int) int {
	if IsSuccessfulRecall(quality) {
		return ReviewPassXP
	}
	return ReviewFailXP
}

func QuizXP(correct int) int {
	return QuizXPPerCorrect * correct
}
