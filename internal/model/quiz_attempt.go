package model

import (
	"time"
)

// QuizAttempt 一次已完成测验的结果记录，插入后不再修改，重考会新增一行
type QuizAttempt struct {
	BaseModel
	UserID        uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	QuizID        string    `gorm:"column:quiz_id;type:varchar(36);index;not null" json:"quiz_id"`
	ScoreObtained int       `gorm:"column:score_obtained;not null" json:"score_obtained"`
	IsPassed      bool      `gorm:"column:is_passed;default:false" json:"is_passed"`
	AttemptedAt   time.Time `gorm:"column:attempted_at" json:"attempted_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Quiz *Quiz `gorm:"foreignKey:QuizID" json:"-"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
