package service

import (
	"encoding/json"

	"lms_portal_backend/internal/model"
	"lms_portal_backend/internal/util"

	"gorm.io/gorm"
)

// 管理端测验维护。options 按原始 JSON 存储，归一化留给加载路径。

type QuestionReq struct {
	ID                 string          `json:"id"`
	QuestionType       string          `json:"questionType" binding:"required"`
	Content            string          `json:"content" binding:"required"`
	ImageURL           string          `json:"imageUrl"`
	Hint               string          `json:"hint"`
	Options            json.RawMessage `json:"options"`
	CorrectAnswerIndex *int            `json:"correctAnswerIndex"`
	CorrectAnswerText  string          `json:"correctAnswerText"`
	OrderInQuiz        int             `json:"orderInQuiz"`
}

type QuizReq struct {
	LessonID    *string        `json:"lessonId"`
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	ImageURL    *string        `json:"imageUrl"`
	PassScore   *int           `json:"passScore"`
	Questions   *[]QuestionReq `json:"questions"`
}

func applyQuestionReq(q *model.Question, req *QuestionReq) {
	q.QuestionType = model.QuestionType(req.QuestionType)
	q.Content = req.Content
	q.ImageURL = req.ImageURL
	q.Hint = req.Hint
	q.Options = req.Options
	q.CorrectAnswerIndex = req.CorrectAnswerIndex
	q.CorrectAnswerText = req.CorrectAnswerText
	q.OrderInQuiz = req.OrderInQuiz
}

func (s *QuizService) CreateQuiz(req QuizReq) (*model.Quiz, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, util.ErrTitleRequired
	}

	quiz := &model.Quiz{Title: *req.Title}
	if req.LessonID != nil {
		quiz.LessonID = req.LessonID
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.ImageURL != nil {
		quiz.ImageURL = *req.ImageURL
	}
	quiz.PassScore = req.PassScore

	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}

	if req.Questions != nil {
		for i := range *req.Questions {
			qReq := &(*req.Questions)[i]
			q := &model.Question{QuizID: quiz.ID}
			applyQuestionReq(q, qReq)
			if err := s.QuizRepo.CreateQuestion(q); err != nil {
				return nil, err
			}
		}
	}

	return quiz, nil
}

// UpdateQuiz 更新测验。题目按 id 做差异同步：带 id 的更新，缺 id 的新增，
// 请求里不再出现的删除。
func (s *QuizService) UpdateQuiz(quizID string, req QuizReq) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.LessonID != nil {
		quiz.LessonID = req.LessonID
	}
	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.ImageURL != nil {
		quiz.ImageURL = *req.ImageURL
	}
	if req.PassScore != nil {
		quiz.PassScore = req.PassScore
	}

	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}

	if req.Questions != nil {
		existing, err := s.QuizRepo.ListQuestions(quizID)
		if err != nil {
			return nil, err
		}
		existingMap := make(map[string]*model.Question)
		for i := range existing {
			existingMap[existing[i].ID] = &existing[i]
		}

		keepIDs := make(map[string]bool)
		for i := range *req.Questions {
			qReq := &(*req.Questions)[i]
			if qReq.ID != "" {
				if q, ok := existingMap[qReq.ID]; ok {
					applyQuestionReq(q, qReq)
					if err := s.QuizRepo.UpdateQuestion(q); err != nil {
						return nil, err
					}
					keepIDs[q.ID] = true
				}
			} else {
				q := &model.Question{QuizID: quizID}
				applyQuestionReq(q, qReq)
				if err := s.QuizRepo.CreateQuestion(q); err != nil {
					return nil, err
				}
			}
		}

		for id := range existingMap {
			if !keepIDs[id] {
				if err := s.QuizRepo.DeleteQuestion(id); err != nil {
					return nil, err
				}
			}
		}
	}

	return quiz, nil
}

func (s *QuizService) DeleteQuiz(quizID string) error {
	return s.QuizRepo.Delete(quizID)
}

// GetQuizForAdmin 管理端视图，返回原始题目（含答案数据）
func (s *QuizService) GetQuizForAdmin(quizID string) (*model.Quiz, []model.Question, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err == gorm.ErrRecordNotFound {
		return nil, nil, util.ErrQuizNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	questions, err := s.QuizRepo.ListQuestions(quizID)
	return quiz, questions, err
}
