package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"lms_portal_backend/internal/config"
	"lms_portal_backend/internal/model"
	"lms_portal_backend/internal/repository"
	"lms_portal_backend/internal/util"
	"lms_portal_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CourseService struct {
	CourseRepo *repository.CourseRepository
	Storage    *StorageService
	Cfg        *config.Config
}

func NewCourseService(courseRepo *repository.CourseRepository, storage *StorageService, cfg *config.Config) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		Storage:    storage,
		Cfg:        cfg,
	}
}

func (s *CourseService) ListCourses(page, limit int, publishedOnly bool) ([]model.Course, int64, error) {
	return s.CourseRepo.List(page, limit, publishedOnly)
}

func (s *CourseService) GetCourseDetail(id string) (*model.Course, error) {
	course, err := s.CourseRepo.FindDetail(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrCourseNotFound
	}
	return course, err
}

type CourseReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	IsPublished *bool   `json:"isPublished"`
}

func (s *CourseService) CreateCourse(req CourseReq) (*model.Course, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, util.ErrTitleRequired
	}

	course := &model.Course{Title: *req.Title}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.ImageURL != nil {
		course.ImageURL = *req.ImageURL
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}

	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(id string, req CourseReq) (*model.Course, error) {
	course, err := s.CourseRepo.FindDetail(id)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.ImageURL != nil {
		course.ImageURL = *req.ImageURL
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}
	course.UpdatedAt = time.Now()

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(id string) error {
	return s.CourseRepo.Delete(id)
}

type ModuleReq struct {
	CourseID string `json:"courseId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Order    int    `json:"order"`
}

func (s *CourseService) CreateModule(req ModuleReq) (*model.CourseModule, error) {
	m := &model.CourseModule{CourseID: req.CourseID, Title: req.Title, Order: req.Order}
	if err := s.CourseRepo.CreateModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CourseService) DeleteModule(id string) error {
	return s.CourseRepo.DeleteModule(id)
}

type LessonReq struct {
	ModuleID string `json:"moduleId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	VideoURL string `json:"videoUrl"`
	Order    int    `json:"order"`
}

func (s *CourseService) CreateLesson(req LessonReq) (*model.Lesson, error) {
	lesson := &model.Lesson{
		ModuleID: req.ModuleID,
		Title:    req.Title,
		Content:  req.Content,
		VideoURL: req.VideoURL,
		Order:    req.Order,
	}
	if err := s.CourseRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) GetLesson(id string) (*model.Lesson, error) {
	lesson, err := s.CourseRepo.FindLesson(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrLessonNotFound
	}
	return lesson, err
}

func (s *CourseService) DeleteLesson(id string) error {
	return s.CourseRepo.DeleteLesson(id)
}

// UploadMaterial 上传课时资料。本地存储的视频文件会用 ffmpeg 探测时长，
// 回写到所属课时；探测失败不影响上传结果。
func (s *CourseService) UploadMaterial(ctx context.Context, lessonID, title, originalName, contentType string, reader io.Reader, size int64) (*model.LessonMaterial, error) {
	lesson, err := s.CourseRepo.FindLesson(lessonID)
	if err != nil {
		return nil, util.ErrLessonNotFound
	}

	ext := filepath.Ext(originalName)
	filename := "materials/" + lessonID + "/" + uuid.New().String() + ext

	url, err := s.Storage.Upload(ctx, filename, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	material := &model.LessonMaterial{
		LessonID: lessonID,
		Title:    title,
		FileURL:  url,
		FileType: contentType,
		Size:     size,
	}
	if err := s.CourseRepo.CreateMaterial(material); err != nil {
		return nil, err
	}

	if strings.HasPrefix(contentType, "video/") && s.Cfg.Storage.Type == "local" {
		localPath := filepath.Join(s.Cfg.Storage.LocalPath, filename)
		if info, err := util.GetVideoInfo(localPath); err == nil {
			lesson.Duration = info.Duration
			if err := s.CourseRepo.UpdateLesson(lesson); err != nil {
				logger.Log.Warn("update lesson duration failed",
					zap.String("lessonId", lessonID), zap.Error(err))
			}
		} else {
			logger.Log.Warn("probe video material failed",
				zap.String("lessonId", lessonID), zap.Error(err))
		}
	}

	return material, nil
}

func (s *CourseService) DeleteMaterial(ctx context.Context, id string) error {
	material, err := s.CourseRepo.FindMaterial(id)
	if err != nil {
		return err
	}

	// 先删记录，对象删除失败只记日志
	if err := s.CourseRepo.DeleteMaterial(id); err != nil {
		return err
	}
	if err := s.Storage.Delete(ctx, strings.TrimPrefix(material.FileURL, "/uploads/")); err != nil {
		logger.Log.Warn("delete material object failed",
			zap.String("materialId", id), zap.Error(err))
	}
	return nil
}
