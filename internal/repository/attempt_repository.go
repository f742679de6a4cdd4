package repository

import (
	"lms_portal_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.QuizAttempt) error {
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = time.Now()
	}
	return r.DB.Create(attempt).Error
}

// ListAllWithUsers 排行榜聚合输入：全部答题记录连同用户资料
func (r *AttemptRepository) ListAllWithUsers() ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Preload("User").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByUser(userID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ?", userID).Order("attempted_at DESC").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByUserAndQuiz(userID uint, quizID string) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempted_at DESC").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).Count(&count).Error
	return count, err
}

type DailyAttemptCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// CountPerDay 管理端统计：最近 days 天每日提交数
func (r *AttemptRepository) CountPerDay(days int) ([]DailyAttemptCount, error) {
	var rows []DailyAttemptCount
	since := time.Now().AddDate(0, 0, -days)
	err := r.DB.Model(&model.QuizAttempt{}).
		Select("DATE(attempted_at) AS day, COUNT(*) AS count").
		Where("attempted_at >= ?", since).
		Group("DATE(attempted_at)").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}
