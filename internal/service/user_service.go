package service

import (
	"lms_portal_backend/internal/model"
	"lms_portal_backend/internal/repository"
	"lms_portal_backend/internal/util"
	"time"
)

// UserService 处理用户相关的业务逻辑
type UserService struct {
	UserRepo    *repository.UserRepository
	AttemptRepo *repository.AttemptRepository
	CourseRepo  *repository.CourseRepository
}

func NewUserService(userRepo *repository.UserRepository, attemptRepo *repository.AttemptRepository, courseRepo *repository.CourseRepository) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		AttemptRepo: attemptRepo,
		CourseRepo:  courseRepo,
	}
}

func (s *UserService) GetUserByID(id uint) (*model.User, error) {
	return s.UserRepo.FindByID(id)
}

func (s *UserService) GetUsers(page, limit int, role, search string) ([]model.User, int64, error) {
	return s.UserRepo.List(page, limit, role, search)
}

type ProfileUpdate struct {
	FullName *string `json:"fullName"`
	Avatar   *string `json:"avatar"`
}

func (s *UserService) UpdateProfile(userID uint, update ProfileUpdate) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	user.UpdatedAt = time.Now()

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetDisabled 管理端启用/停用账号。管理员账号不允许停用。
func (s *UserService) SetDisabled(userID uint, disabled bool) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}
	if disabled && user.Role == model.Admin {
		return util.ErrPermissionDenied
	}
	user.Disabled = disabled
	return s.UserRepo.Update(user)
}

// PlatformStats 管理端概览统计
type PlatformStats struct {
	TotalUsers    int64                          `json:"totalUsers"`
	TotalCourses  int64                          `json:"totalCourses"`
	TotalAttempts int64                          `json:"totalAttempts"`
	AttemptsByDay []repository.DailyAttemptCount `json:"attemptsByDay"`
}

func (s *UserService) GetPlatformStats() (*PlatformStats, error) {
	users, err := s.UserRepo.Count()
	if err != nil {
		return nil, err
	}
	courses, err := s.CourseRepo.CountCourses()
	if err != nil {
		return nil, err
	}
	attempts, err := s.AttemptRepo.Count()
	if err != nil {
		return nil, err
	}
	byDay, err := s.AttemptRepo.CountPerDay(30)
	if err != nil {
		return nil, err
	}

	return &PlatformStats{
		TotalUsers:    users,
		TotalCourses:  courses,
		TotalAttempts: attempts,
		AttemptsByDay: byDay,
	}, nil
}
