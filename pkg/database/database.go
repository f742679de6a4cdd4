package database

import (
	"encoding/json"
	"fmt"
	"lms_portal_backend/internal/config"
	"lms_portal_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, mode string, forceMigrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式默认跳过自动迁移，需 --migrate 显式开启
	if mode == "release" && !forceMigrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseModule{},
		&model.Lesson{},
		&model.LessonMaterial{},
		&model.Quiz{},
		&model.Question{},
		&model.QuizAttempt{},
		&model.Bookmark{},
		&model.LessonHistory{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 空库时插入一份示例测验，方便前端联调
	var quizCount int64
	db.Model(&model.Quiz{}).Count(&quizCount)
	if quizCount == 0 {
		passScore := 2
		quiz := &model.Quiz{
			Title:       "Go 基础小测",
			Description: "三道题的入门测验",
			PassScore:   &passScore,
		}
		if err := db.Create(quiz).Error; err == nil {
			idx := 0
			options1, _ := json.Marshal([]string{"var x int", "int x", "x := int"})
			options2, _ := json.Marshal([]map[string]interface{}{
				{"id": "t", "option_text": "true", "is_correct": true},
				{"id": "f", "option_text": "false", "is_correct": false},
			})
			questions := []model.Question{
				{
					QuizID:             quiz.ID,
					QuestionType:       model.MultipleChoice,
					Content:            "下列哪种写法可以声明一个整型变量？",
					Options:            options1,
					CorrectAnswerIndex: &idx,
					OrderInQuiz:        0,
				},
				{
					QuizID:       quiz.ID,
					QuestionType: model.TrueFalse,
					Content:      "Go 的切片是引用类型。",
					Options:      options2,
					Hint:         "想想切片底层的数组指针",
					OrderInQuiz:  1,
				},
				{
					QuizID:            quiz.ID,
					QuestionType:      model.ShortAnswer,
					Content:           "Go 的包管理工具命令是什么？",
					CorrectAnswerText: "go mod",
					OrderInQuiz:       2,
				},
			}
			for i := range questions {
				db.Create(&questions[i])
			}
		}
	}

	return db, nil
}
