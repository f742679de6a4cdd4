package service

import (
	"errors"
	"os"
	"testing"

	"lms_portal_backend/internal/config"
	"lms_portal_backend/internal/model"
	"lms_portal_backend/internal/util"
	"lms_portal_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// fakeQuizStore 只支撑按 ID 取卷，管理端操作在这些测试里不会触达
type fakeQuizStore struct {
	quiz *model.Quiz
}

func (f *fakeQuizStore) find(id string) (*model.Quiz, error) {
	if f.quiz != nil && f.quiz.ID == id {
		return f.quiz, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuizStore) FindByID(id string) (*model.Quiz, error)              { return f.find(id) }
func (f *fakeQuizStore) FindWithQuestions(id string) (*model.Quiz, error)     { return f.find(id) }
func (f *fakeQuizStore) List(page, limit int) ([]model.Quiz, int64, error) { return nil, 0, nil }

func (f *fakeQuizStore) ListByLesson(lessonID string) ([]model.Quiz, error) {
	if f.quiz != nil && f.quiz.LessonID != nil && *f.quiz.LessonID == lessonID {
		return []model.Quiz{*f.quiz}, nil
	}
	return nil, nil
}
func (f *fakeQuizStore) Create(quiz *model.Quiz) error                        { return nil }
func (f *fakeQuizStore) Update(quiz *model.Quiz) error                        { return nil }
func (f *fakeQuizStore) Delete(id string) error                               { return nil }
func (f *fakeQuizStore) ListQuestions(id string) ([]model.Question, error)    { return nil, nil }
func (f *fakeQuizStore) CreateQuestion(q *model.Question) error               { return nil }
func (f *fakeQuizStore) UpdateQuestion(q *model.Question) error               { return nil }
func (f *fakeQuizStore) DeleteQuestion(id string) error                       { return nil }

type fakeAttemptStore struct {
	created   []model.QuizAttempt
	createErr error
}

func (f *fakeAttemptStore) Create(attempt *model.QuizAttempt) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *attempt)
	return nil
}

func (f *fakeAttemptStore) ListByUser(userID uint) ([]model.QuizAttempt, error) { return nil, nil }
func (f *fakeAttemptStore) ListByUserAndQuiz(userID uint, quizID string) ([]model.QuizAttempt, error) {
	return nil, nil
}

type fakeBonusLedger struct {
	calls  int
	awards []int
	err    error
}

func (f *fakeBonusLedger) AddBonusPoints(userID uint, points int) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.awards = append(f.awards, points)
	return nil
}

func testQuizConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Quiz.PassRewardPoints = 10
	cfg.Quiz.AttemptTTLMinutes = 120
	return cfg
}

func choiceQuestion(id string, correct int, texts ...string) NormalizedQuestion {
	options := make([]Option, len(texts))
	for i, text := range texts {
		options[i] = Option{ID: id + "-option-" + string(rune('0'+i)), Text: text, IsCorrect: i == correct}
	}
	return NormalizedQuestion{
		ID:           id,
		QuestionType: model.MultipleChoice,
		Content:      "question " + id,
		Options:      options,
	}
}

func TestScoreQuizChoiceQuestions(t *testing.T) {
	quiz := &NormalizedQuiz{
		ID: "quiz-1",
		Questions: []NormalizedQuestion{
			choiceQuestion("q1", 0, "A", "B"),
			choiceQuestion("q2", 1, "A", "B"),
			choiceQuestion("q3", 0, "A", "B"),
		},
	}

	result := ScoreQuiz(quiz, map[string]string{
		"q1": "q1-option-0", // 对
		"q2": "q2-option-0", // 错
		// q3 未作答
	})

	if result.Score != 1 || result.Total != 3 {
		t.Fatalf("expected score 1/3, got %d/%d", result.Score, result.Total)
	}
	if result.IsPassed {
		t.Fatal("quiz without pass score must never be passed")
	}
	if len(result.Feedback) != 3 {
		t.Fatalf("expected feedback per question, got %d", len(result.Feedback))
	}
	if !result.Feedback[0].IsCorrect || result.Feedback[1].IsCorrect || result.Feedback[2].IsCorrect {
		t.Fatalf("unexpected feedback correctness: %+v", result.Feedback)
	}
}

func TestScoreQuizShortAnswerCaseFolding(t *testing.T) {
	question := NormalizedQuestion{
		ID:                "q1",
		QuestionType:      model.ShortAnswer,
		CorrectAnswerText: "Paris",
	}
	quiz := &NormalizedQuiz{ID: "quiz-1", Questions: []NormalizedQuestion{question}}

	cases := []struct {
		answer string
		want   bool
	}{
		{"Paris", true},
		{"paris", true},
		{"PARIS", true},
		{"pariss", false},
		{" paris", false}, // 不做空白修剪
		{"", false},
	}
	for _, tc := range cases {
		result := ScoreQuiz(quiz, map[string]string{"q1": tc.answer})
		if got := result.Score == 1; got != tc.want {
			t.Errorf("answer %q: correct=%v, want %v", tc.answer, got, tc.want)
		}
	}

	// 完全未作答
	if result := ScoreQuiz(quiz, nil); result.Score != 0 {
		t.Fatalf("missing answer must score 0, got %d", result.Score)
	}
}

func TestScoreQuizEssayNeverAutoCorrect(t *testing.T) {
	question := NormalizedQuestion{
		ID:                "q1",
		QuestionType:      model.Essay,
		CorrectAnswerText: "model answer",
	}
	quiz := &NormalizedQuiz{ID: "quiz-1", Questions: []NormalizedQuestion{question}}

	result := ScoreQuiz(quiz, map[string]string{"q1": "model answer"})
	if result.Score != 0 {
		t.Fatalf("essay must not be auto-scored, got score %d", result.Score)
	}
	if result.Feedback[0].Guidance != "model answer" {
		t.Fatalf("essay feedback should carry guidance, got %+v", result.Feedback[0])
	}
}

func TestScoreQuizPassBoundary(t *testing.T) {
	passScore := 3
	quiz := &NormalizedQuiz{
		ID:        "quiz-1",
		PassScore: &passScore,
		Questions: []NormalizedQuestion{
			choiceQuestion("q1", 0, "A", "B"),
			choiceQuestion("q2", 0, "A", "B"),
			choiceQuestion("q3", 0, "A", "B"),
			choiceQuestion("q4", 0, "A", "B"),
			choiceQuestion("q5", 0, "A", "B"),
		},
	}

	answersFor := func(n int) map[string]string {
		answers := make(map[string]string)
		for i := 0; i < n; i++ {
			id := quiz.Questions[i].ID
			answers[id] = id + "-option-0"
		}
		return answers
	}

	if result := ScoreQuiz(quiz, answersFor(2)); result.IsPassed {
		t.Fatal("score 2 below pass score 3 must fail")
	}
	if result := ScoreQuiz(quiz, answersFor(3)); !result.IsPassed {
		t.Fatal("score exactly at pass score must pass")
	}
	if result := ScoreQuiz(quiz, answersFor(5)); !result.IsPassed {
		t.Fatal("full score must pass")
	}
}

func TestScoreQuizLegacyCorrectIndexFallback(t *testing.T) {
	// 旧数据：选项无 is_correct 标记，靠 correct_answer_index 判定
	idx := 1
	question := NormalizedQuestion{
		ID:           "q1",
		QuestionType: model.MultipleChoice,
		Options: []Option{
			{ID: "q1-option-0", Text: "A"},
			{ID: "q1-option-1", Text: "B"},
		},
		CorrectAnswerIndex: &idx,
	}
	quiz := &NormalizedQuiz{ID: "quiz-1", Questions: []NormalizedQuestion{question}}

	if result := ScoreQuiz(quiz, map[string]string{"q1": "q1-option-1"}); result.Score != 1 {
		t.Fatalf("index fallback should mark option 1 correct, got %d", result.Score)
	}
	if result := ScoreQuiz(quiz, map[string]string{"q1": "q1-option-0"}); result.Score != 0 {
		t.Fatalf("wrong option must not score, got %d", result.Score)
	}

	// 越界索引：判错但不 panic
	bad := 9
	quiz.Questions[0].CorrectAnswerIndex = &bad
	if result := ScoreQuiz(quiz, map[string]string{"q1": "q1-option-0"}); result.Score != 0 {
		t.Fatalf("out-of-range index must mark everything wrong, got %d", result.Score)
	}
}

func TestScoreQuizWrongAnswerCarriesHint(t *testing.T) {
	question := choiceQuestion("q1", 0, "A", "B")
	question.Hint = "think again"
	quiz := &NormalizedQuiz{ID: "quiz-1", Questions: []NormalizedQuestion{question}}

	result := ScoreQuiz(quiz, map[string]string{"q1": "q1-option-1"})
	if result.Feedback[0].Hint != "think again" {
		t.Fatalf("wrong answer should carry the hint, got %+v", result.Feedback[0])
	}

	result = ScoreQuiz(quiz, map[string]string{"q1": "q1-option-0"})
	if result.Feedback[0].Hint != "" {
		t.Fatalf("correct answer should not carry a hint, got %+v", result.Feedback[0])
	}
}

func TestCompleteAttemptSideEffects(t *testing.T) {
	passScore := 2
	quiz := &NormalizedQuiz{
		ID:        "quiz-1",
		PassScore: &passScore,
		Questions: []NormalizedQuestion{
			choiceQuestion("q1", 0, "A", "B"),
			choiceQuestion("q2", 0, "A", "B"),
		},
	}
	passing := map[string]string{"q1": "q1-option-0", "q2": "q2-option-0"}
	failing := map[string]string{"q1": "q1-option-1"}

	cases := []struct {
		name         string
		userID       uint
		answers      map[string]string
		createErr    error
		bonusErr     error
		wantAttempts int
		wantCalls    int
		wantAwards   []int
	}{
		{
			name:         "passed attempt persists and pays the reward",
			userID:       7,
			answers:      passing,
			wantAttempts: 1,
			wantCalls:    1,
			wantAwards:   []int{10},
		},
		{
			name:         "failed attempt persists without reward",
			userID:       7,
			answers:      failing,
			wantAttempts: 1,
		},
		{
			name:    "anonymous attempt is score-only",
			userID:  0,
			answers: passing,
		},
		{
			name:      "reward withheld when the attempt cannot be persisted",
			userID:    7,
			answers:   passing,
			createErr: errors.New("db down"),
		},
		{
			name:         "reward failure does not undo the attempt",
			userID:       7,
			answers:      passing,
			bonusErr:     errors.New("ledger down"),
			wantAttempts: 1,
			wantCalls:    1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attempts := &fakeAttemptStore{createErr: tc.createErr}
			bonus := &fakeBonusLedger{err: tc.bonusErr}
			svc := NewQuizService(&fakeQuizStore{}, attempts, bonus, nil, testQuizConfig())

			result := svc.CompleteAttempt(tc.userID, quiz, tc.answers)
			if result == nil {
				t.Fatal("result must always be returned")
			}
			if len(attempts.created) != tc.wantAttempts {
				t.Fatalf("persisted attempts = %d, want %d", len(attempts.created), tc.wantAttempts)
			}
			if bonus.calls != tc.wantCalls {
				t.Fatalf("bonus ledger calls = %d, want %d", bonus.calls, tc.wantCalls)
			}
			if len(bonus.awards) != len(tc.wantAwards) {
				t.Fatalf("paid awards = %v, want %v", bonus.awards, tc.wantAwards)
			}
			for i := range tc.wantAwards {
				if bonus.awards[i] != tc.wantAwards[i] {
					t.Fatalf("paid awards = %v, want %v", bonus.awards, tc.wantAwards)
				}
			}
		})
	}
}

func TestCompleteAttemptPersistedRecordFields(t *testing.T) {
	passScore := 1
	quiz := &NormalizedQuiz{
		ID:        "quiz-1",
		PassScore: &passScore,
		Questions: []NormalizedQuestion{choiceQuestion("q1", 0, "A", "B")},
	}

	attempts := &fakeAttemptStore{}
	bonus := &fakeBonusLedger{}
	svc := NewQuizService(&fakeQuizStore{}, attempts, bonus, nil, testQuizConfig())

	result := svc.CompleteAttempt(7, quiz, map[string]string{"q1": "q1-option-0"})
	if !result.IsPassed {
		t.Fatal("expected a passing result")
	}

	if len(attempts.created) != 1 {
		t.Fatalf("expected one persisted attempt, got %d", len(attempts.created))
	}
	got := attempts.created[0]
	if got.UserID != 7 || got.QuizID != "quiz-1" || got.ScoreObtained != 1 || !got.IsPassed {
		t.Fatalf("persisted attempt has wrong fields: %+v", got)
	}
	if got.AttemptedAt.IsZero() {
		t.Fatal("persisted attempt must carry a timestamp")
	}
}

func TestCreateQuizRequiresTitle(t *testing.T) {
	svc := NewQuizService(&fakeQuizStore{}, &fakeAttemptStore{}, &fakeBonusLedger{}, nil, testQuizConfig())

	if _, err := svc.CreateQuiz(QuizReq{}); err != util.ErrTitleRequired {
		t.Fatalf("missing title must be rejected, got %v", err)
	}
	empty := ""
	if _, err := svc.CreateQuiz(QuizReq{Title: &empty}); err != util.ErrTitleRequired {
		t.Fatalf("empty title must be rejected, got %v", err)
	}
}

func TestListLessonQuizzes(t *testing.T) {
	lessonID := "lesson-1"
	quiz := &model.Quiz{Title: "attached", LessonID: &lessonID}
	quiz.ID = "quiz-1"
	svc := NewQuizService(&fakeQuizStore{quiz: quiz}, &fakeAttemptStore{}, &fakeBonusLedger{}, nil, testQuizConfig())

	quizzes, err := svc.ListLessonQuizzes("lesson-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].ID != "quiz-1" {
		t.Fatalf("expected the attached quiz, got %+v", quizzes)
	}

	quizzes, err = svc.ListLessonQuizzes("other-lesson")
	if err != nil || len(quizzes) != 0 {
		t.Fatalf("unrelated lesson must list nothing, got %v, %v", quizzes, err)
	}
}
