// 手动触发奖励积分重算脚本
//
// 正常运行时积分随每次通过测验即时发放，此脚本仅用于数据修复，
// 例如历史数据导入或奖励配置变更后，把 bonus_points 对齐到
// "通过次数 × 单次奖励" 的口径。
//
// 用法: go run scripts/recalc_bonus.go

package main

import (
	"log"

	"lms_portal_backend/internal/config"
	"lms_portal_backend/internal/model"
	"lms_portal_backend/pkg/database"
	"lms_portal_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	var users []model.User
	if err := db.Find(&users).Error; err != nil {
		log.Fatalf("读取用户失败: %v", err)
	}

	log.Printf("开始重算 %d 个用户的奖励积分...", len(users))
	for i := range users {
		var passed int64
		if err := db.Model(&model.QuizAttempt{}).
			Where("user_id = ? AND is_passed = ?", users[i].ID, true).
			Count(&passed).Error; err != nil {
			log.Printf("用户 %d 统计失败: %v", users[i].ID, err)
			continue
		}

		points := int(passed) * cfg.Quiz.PassRewardPoints
		if points == users[i].BonusPoints {
			continue
		}
		if err := db.Model(&model.User{}).
			Where("id = ?", users[i].ID).
			Update("bonus_points", points).Error; err != nil {
			log.Printf("用户 %d 更新失败: %v", users[i].ID, err)
			continue
		}
		log.Printf("用户 %d: %d -> %d", users[i].ID, users[i].BonusPoints, points)
	}
	log.Println("完成！")
}
