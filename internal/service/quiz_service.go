package service

import (
	"sort"
	"strings"
	"time"

	"lms_portal_backend/internal/config"
	"lms_portal_backend/internal/model"
	"lms_portal_backend/internal/util"
	"lms_portal_backend/pkg/logger"
	"lms_portal_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizStore 测验与题目的持久化入口，按服务所需裁剪
type QuizStore interface {
	FindByID(id string) (*model.Quiz, error)
	FindWithQuestions(id string) (*model.Quiz, error)
	List(page, limit int) ([]model.Quiz, int64, error)
	ListByLesson(lessonID string) ([]model.Quiz, error)
	Create(quiz *model.Quiz) error
	Update(quiz *model.Quiz) error
	Delete(id string) error
	ListQuestions(quizID string) ([]model.Question, error)
	CreateQuestion(q *model.Question) error
	UpdateQuestion(q *model.Question) error
	DeleteQuestion(id string) error
}

// AttemptStore 答题记录的持久化入口
type AttemptStore interface {
	Create(attempt *model.QuizAttempt) error
	ListByUser(userID uint) ([]model.QuizAttempt, error)
	ListByUserAndQuiz(userID uint, quizID string) ([]model.QuizAttempt, error)
}

// BonusLedger 奖励积分入账
type BonusLedger interface {
	AddBonusPoints(userID uint, points int) error
}

type QuizService struct {
	QuizRepo    QuizStore
	AttemptRepo AttemptStore
	Bonus       BonusLedger
	Sessions    AttemptSessionStore
	Cfg         *config.Config
}

func NewQuizService(
	quizRepo QuizStore,
	attemptRepo AttemptStore,
	bonus BonusLedger,
	sessions AttemptSessionStore,
	cfg *config.Config,
) *QuizService {
	return &QuizService{
		QuizRepo:    quizRepo,
		AttemptRepo: attemptRepo,
		Bonus:       bonus,
		Sessions:    sessions,
		Cfg:         cfg,
	}
}

// NormalizedQuestion 归一化后的题目，评分数据不序列化
type NormalizedQuestion struct {
	ID                 string             `json:"id"`
	QuestionType       model.QuestionType `json:"questionType"`
	Content            string             `json:"content"`
	ImageURL           string             `json:"imageUrl,omitempty"`
	Hint               string             `json:"hint,omitempty"`
	OrderInQuiz        int                `json:"orderInQuiz"`
	Options            []Option           `json:"options"`
	CorrectAnswerIndex *int               `json:"-"`
	CorrectAnswerText  string             `json:"-"`
}

type NormalizedQuiz struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	ImageURL    string               `json:"imageUrl,omitempty"`
	PassScore   *int                 `json:"passScore"`
	Questions   []NormalizedQuestion `json:"questions"`
}

// LoadQuiz 一次请求取回测验和全部题目，按 order_in_quiz 稳定升序，
// 逐题归一化选项；单题选项损坏不阻断整卷加载
func (s *QuizService) LoadQuiz(quizID string) (*NormalizedQuiz, error) {
	quiz, err := s.QuizRepo.FindWithQuestions(quizID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(quiz.Questions, func(i, j int) bool {
		return quiz.Questions[i].OrderInQuiz < quiz.Questions[j].OrderInQuiz
	})

	normalized := &NormalizedQuiz{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		ImageURL:    quiz.ImageURL,
		PassScore:   quiz.PassScore,
		Questions:   make([]NormalizedQuestion, 0, len(quiz.Questions)),
	}

	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		options, err := NormalizeOptions(q)
		if err != nil {
			logger.Log.Warn("malformed question options, using sentinel",
				zap.String("quizId", quiz.ID),
				zap.String("questionId", q.ID),
				zap.Error(err))
			options = SentinelOptions(q.ID, q.Options)
		}
		normalized.Questions = append(normalized.Questions, NormalizedQuestion{
			ID:                 q.ID,
			QuestionType:       q.QuestionType,
			Content:            q.Content,
			ImageURL:           q.ImageURL,
			Hint:               q.Hint,
			OrderInQuiz:        q.OrderInQuiz,
			Options:            options,
			CorrectAnswerIndex: q.CorrectAnswerIndex,
			CorrectAnswerText:  q.CorrectAnswerText,
		})
	}

	return normalized, nil
}

type QuestionFeedback struct {
	QuestionID string `json:"questionId"`
	IsCorrect  bool   `json:"isCorrect"`
	Hint       string `json:"hint,omitempty"`
	Guidance   string `json:"guidance,omitempty"`
}

type AttemptResult struct {
	QuizID   string             `json:"quizId"`
	Score    int                `json:"score"`
	Total    int                `json:"total"`
	IsPassed bool               `json:"isPassed"`
	Feedback []QuestionFeedback `json:"feedback"`
}

// evaluateAnswer 单题判定。缺失答案一律判错，绝不 panic。
func evaluateAnswer(q *NormalizedQuestion, answer string, answered bool) bool {
	switch q.QuestionType {
	case model.ShortAnswer:
		// 大小写不敏感的精确比较
		return answered && strings.EqualFold(answer, q.CorrectAnswerText)
	case model.Essay:
		// 需要人工评阅，自动路径始终判错
		return false
	}

	// 选择题：优先找 is_correct 标记的选项
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return answered && answer == q.Options[i].ID
		}
	}

	// 旧数据回退：correct_answer_index 指向选项列表
	if q.CorrectAnswerIndex != nil {
		idx := *q.CorrectAnswerIndex
		if idx >= 0 && idx < len(q.Options) {
			return answered && answer == q.Options[idx].ID
		}
	}

	return false
}

// ScoreQuiz 同步评分，按题目顺序产出逐题反馈，总分为判对题数
func ScoreQuiz(quiz *NormalizedQuiz, answers map[string]string) *AttemptResult {
	result := &AttemptResult{
		QuizID:   quiz.ID,
		Total:    len(quiz.Questions),
		Feedback: make([]QuestionFeedback, 0, len(quiz.Questions)),
	}

	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		answer, answered := answers[q.ID]

		feedback := QuestionFeedback{QuestionID: q.ID}
		if evaluateAnswer(q, answer, answered) {
			feedback.IsCorrect = true
			result.Score++
		} else {
			feedback.Hint = q.Hint
			if q.QuestionType == model.Essay {
				// 参考答案作为评阅指引给出，不参与比对
				feedback.Guidance = q.CorrectAnswerText
			}
		}
		result.Feedback = append(result.Feedback, feedback)
	}

	if quiz.PassScore != nil {
		result.IsPassed = result.Score >= *quiz.PassScore
	}

	return result
}

// CompleteAttempt 评分并执行两个独立的副作用：先落库答题记录，成功后
// 才会发放通过奖励。两者失败都只记日志，不影响结果返回。
// userID 为 0 表示匿名作答：只评分展示，不落库也不奖励。
func (s *QuizService) CompleteAttempt(userID uint, quiz *NormalizedQuiz, answers map[string]string) *AttemptResult {
	result := ScoreQuiz(quiz, answers)

	label := "ungated"
	if quiz.PassScore != nil {
		if result.IsPassed {
			label = "passed"
		} else {
			label = "failed"
		}
	}
	monitoring.QuizAttemptCounter.WithLabelValues(label).Inc()

	if userID == 0 {
		return result
	}

	attempt := &model.QuizAttempt{
		UserID:        userID,
		QuizID:        quiz.ID,
		ScoreObtained: result.Score,
		IsPassed:      result.IsPassed,
		AttemptedAt:   time.Now(),
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		logger.Log.Error("persist quiz attempt failed",
			zap.Uint("userId", userID),
			zap.String("quizId", quiz.ID),
			zap.Error(err))
		return result
	}

	if result.IsPassed {
		if err := s.Bonus.AddBonusPoints(userID, s.Cfg.Quiz.PassRewardPoints); err != nil {
			logger.Log.Error("award bonus points failed",
				zap.Uint("userId", userID),
				zap.String("quizId", quiz.ID),
				zap.Error(err))
		} else {
			monitoring.QuizBonusCounter.Inc()
		}
	}

	return result
}

// SubmitAnswers 无会话的一次性提交：加载、评分、副作用，一步完成
func (s *QuizService) SubmitAnswers(userID uint, quizID string, answers map[string]string) (*AttemptResult, error) {
	quiz, err := s.LoadQuiz(quizID)
	if err != nil {
		return nil, err
	}
	return s.CompleteAttempt(userID, quiz, answers), nil
}

func (s *QuizService) ListQuizzes(page, limit int) ([]model.Quiz, int64, error) {
	return s.QuizRepo.List(page, limit)
}

// ListLessonQuizzes 课时下挂接的测验
func (s *QuizService) ListLessonQuizzes(lessonID string) ([]model.Quiz, error) {
	return s.QuizRepo.ListByLesson(lessonID)
}

func (s *QuizService) ListUserAttempts(userID uint, quizID string) ([]model.QuizAttempt, error) {
	if quizID != "" {
		return s.AttemptRepo.ListByUserAndQuiz(userID, quizID)
	}
	return s.AttemptRepo.ListByUser(userID)
}
