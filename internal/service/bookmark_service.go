package service

import (
	"lms_portal_backend/internal/model"
	"lms_portal_backend/internal/repository"
	"lms_portal_backend/internal/util"

	"gorm.io/gorm"
)

type BookmarkService struct {
	BookmarkRepo *repository.BookmarkRepository
	CourseRepo   *repository.CourseRepository
}

func NewBookmarkService(bookmarkRepo *repository.BookmarkRepository, courseRepo *repository.CourseRepository) *BookmarkService {
	return &BookmarkService{
		BookmarkRepo: bookmarkRepo,
		CourseRepo:   courseRepo,
	}
}

func (s *BookmarkService) AddBookmark(userID uint, lessonID string) error {
	if _, err := s.CourseRepo.FindLesson(lessonID); err == gorm.ErrRecordNotFound {
		return util.ErrLessonNotFound
	} else if err != nil {
		return err
	}
	return s.BookmarkRepo.Add(userID, lessonID)
}

func (s *BookmarkService) RemoveBookmark(userID uint, lessonID string) error {
	return s.BookmarkRepo.Remove(userID, lessonID)
}

func (s *BookmarkService) ListBookmarks(userID uint) ([]model.Bookmark, error) {
	return s.BookmarkRepo.ListByUser(userID)
}

func (s *BookmarkService) RecordLessonView(userID uint, lessonID string) error {
	if _, err := s.CourseRepo.FindLesson(lessonID); err == gorm.ErrRecordNotFound {
		return util.ErrLessonNotFound
	} else if err != nil {
		return err
	}
	return s.BookmarkRepo.RecordView(userID, lessonID)
}

func (s *BookmarkService) ListHistory(userID uint, limit int) ([]model.LessonHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.BookmarkRepo.ListHistory(userID, limit)
}
