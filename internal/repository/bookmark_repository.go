package repository

import (
	"lms_portal_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type BookmarkRepository struct {
	DB *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) *BookmarkRepository {
	return &BookmarkRepository{DB: db}
}

func (r *BookmarkRepository) Add(userID uint, lessonID string) error {
	bookmark := model.Bookmark{UserID: userID, LessonID: lessonID}
	return r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		FirstOrCreate(&bookmark).Error
}

func (r *BookmarkRepository) Remove(userID uint, lessonID string) error {
	return r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Delete(&model.Bookmark{}).Error
}

func (r *BookmarkRepository) ListByUser(userID uint) ([]model.Bookmark, error) {
	var bookmarks []model.Bookmark
	err := r.DB.Preload("Lesson").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&bookmarks).Error
	return bookmarks, err
}

// RecordView 记录课时浏览，重复浏览只刷新时间
func (r *BookmarkRepository) RecordView(userID uint, lessonID string) error {
	var history model.LessonHistory
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&history).Error
	if err == gorm.ErrRecordNotFound {
		history = model.LessonHistory{UserID: userID, LessonID: lessonID, ViewedAt: time.Now()}
		return r.DB.Create(&history).Error
	}
	if err != nil {
		return err
	}
	history.ViewedAt = time.Now()
	return r.DB.Save(&history).Error
}

func (r *BookmarkRepository) ListHistory(userID uint, limit int) ([]model.LessonHistory, error) {
	var history []model.LessonHistory
	err := r.DB.Preload("Lesson").Where("user_id = ?", userID).
		Order("viewed_at DESC").Limit(limit).Find(&history).Error
	return history, err
}
