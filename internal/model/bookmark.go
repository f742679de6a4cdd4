package model

import (
	"time"
)

type Bookmark struct {
	BaseModel
	UserID   uint   `gorm:"index:idx_bookmark_user_lesson,unique;not null" json:"userId"`
	LessonID string `gorm:"type:varchar(36);index:idx_bookmark_user_lesson,unique;not null" json:"lessonId"`

	Lesson *Lesson `gorm:"foreignKey:LessonID" json:"lesson,omitempty"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}

// LessonHistory 学生课时浏览记录，同一课时重复浏览只更新时间
type LessonHistory struct {
	BaseModel
	UserID   uint      `gorm:"index:idx_history_user_lesson,unique;not null" json:"userId"`
	LessonID string    `gorm:"type:varchar(36);index:idx_history_user_lesson,unique;not null" json:"lessonId"`
	ViewedAt time.Time `gorm:"column:viewed_at" json:"viewedAt"`

	Lesson *Lesson `gorm:"foreignKey:LessonID" json:"lesson,omitempty"`
}

func (LessonHistory) TableName() string {
	return "lesson_histories"
}
