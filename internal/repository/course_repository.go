package repository

import (
	"lms_portal_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) List(page, limit int, publishedOnly bool) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := r.DB.Model(&model.Course{})
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	query.Count(&total)

	offset := (page - 1) * limit
	err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&courses).Error
	return courses, total, err
}

// FindDetail 课程详情，带模块、课时、资料的完整层级
func (r *CourseRepository) FindDetail(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_in_course ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_in_module ASC")
		}).
		Preload("Modules.Lessons.Materials").
		First(&course, "id = ?", id).Error
	return &course, err
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id string) error {
	return r.DB.Delete(&model.Course{}, "id = ?", id).Error
}

func (r *CourseRepository) CreateModule(m *model.CourseModule) error {
	return r.DB.Create(m).Error
}

func (r *CourseRepository) UpdateModule(m *model.CourseModule) error {
	return r.DB.Save(m).Error
}

func (r *CourseRepository) DeleteModule(id string) error {
	return r.DB.Delete(&model.CourseModule{}, "id = ?", id).Error
}

func (r *CourseRepository) FindModule(id string) (*model.CourseModule, error) {
	var m model.CourseModule
	err := r.DB.First(&m, "id = ?", id).Error
	return &m, err
}

func (r *CourseRepository) FindLesson(id string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Preload("Materials").First(&lesson, "id = ?", id).Error
	return &lesson, err
}

func (r *CourseRepository) CreateLesson(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *CourseRepository) UpdateLesson(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *CourseRepository) DeleteLesson(id string) error {
	return r.DB.Delete(&model.Lesson{}, "id = ?", id).Error
}

func (r *CourseRepository) CreateMaterial(m *model.LessonMaterial) error {
	return r.DB.Create(m).Error
}

func (r *CourseRepository) FindMaterial(id string) (*model.LessonMaterial, error) {
	var m model.LessonMaterial
	err := r.DB.First(&m, "id = ?", id).Error
	return &m, err
}

func (r *CourseRepository) DeleteMaterial(id string) error {
	return r.DB.Delete(&model.LessonMaterial{}, "id = ?", id).Error
}

func (r *CourseRepository) CountCourses() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Count(&count).Error
	return count, err
}
