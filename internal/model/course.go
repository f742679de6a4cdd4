package model

// swagger:model Course
type Course struct {
	UUIDBase
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `gorm:"size:255" json:"imageUrl"`
	IsPublished bool           `gorm:"default:false" json:"isPublished"`
	Modules     []CourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

type CourseModule struct {
	UUIDBase
	CourseID string   `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Title    string   `gorm:"size:255;not null" json:"title"`
	Order    int      `gorm:"column:order_in_course;default:0" json:"order"`
	Lessons  []Lesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

type Lesson struct {
	UUIDBase
	ModuleID  string           `gorm:"type:varchar(36);index;not null" json:"moduleId"`
	Title     string           `gorm:"size:255;not null" json:"title"`
	Content   string           `gorm:"type:text" json:"content"`
	VideoURL  string           `gorm:"size:255" json:"videoUrl"`
	Duration  float64          `gorm:"default:0" json:"duration"` // 视频时长（秒）
	Order     int              `gorm:"column:order_in_module;default:0" json:"order"`
	Materials []LessonMaterial `gorm:"foreignKey:LessonID" json:"materials,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

type LessonMaterial struct {
	UUIDBase
	LessonID string `gorm:"type:varchar(36);index;not null" json:"lessonId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	FileURL  string `gorm:"size:255;not null" json:"fileUrl"`
	FileType string `gorm:"size:50" json:"fileType"`
	Size     int64  `gorm:"default:0" json:"size"`
}

func (LessonMaterial) TableName() string {
	return "lesson_materials"
}
