package controller

import (
	"lms_portal_backend/internal/service"
	"lms_portal_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

// @Summary 获取排行榜
// @Description 按奖励积分、平均分排序的用户排行，每次请求重新聚合
// @Tags 排行榜
// @Produce json
// @Param limit query int false "返回数量" default(50)
// @Success 200 {object} util.Response
// @Router /api/leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	limit := 50
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := c.LeaderboardService.GetLeaderboard()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	util.Success(ctx, entries)
}
