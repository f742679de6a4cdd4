package model

import (
	"encoding/json"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
)

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	LessonID    *string    `gorm:"type:varchar(36);index" json:"lessonId,omitempty"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	ImageURL    string     `gorm:"size:255" json:"imageUrl"`
	PassScore   *int       `gorm:"column:pass_score" json:"passScore"` // 为空表示不设通过线
	Questions   []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Question 归属于一个测验，options 字段保存原始编码，加载时再归一化
type Question struct {
	UUIDBase
	QuizID             string          `gorm:"type:varchar(36);index;not null" json:"quizId"`
	QuestionType       QuestionType    `gorm:"type:enum('multiple_choice','true_false','short_answer','essay');not null" json:"questionType"`
	Content            string          `gorm:"type:text;not null" json:"content"`
	ImageURL           string          `gorm:"size:255" json:"imageUrl"`
	Hint               string          `gorm:"size:500" json:"hint"`
	Options            json.RawMessage `gorm:"type:json" json:"options"`
	CorrectAnswerIndex *int            `gorm:"column:correct_answer_index" json:"-"`
	CorrectAnswerText  string          `gorm:"column:correct_answer_text;size:500" json:"-"`
	OrderInQuiz        int             `gorm:"column:order_in_quiz;default:0" json:"orderInQuiz"`
}

func (Question) TableName() string {
	return "questions"
}
