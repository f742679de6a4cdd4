package controller

import (
	"lms_portal_backend/internal/service"
	"lms_portal_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type BookmarkController struct {
	BookmarkService *service.BookmarkService
}

func NewBookmarkController(bookmarkService *service.BookmarkService) *BookmarkController {
	return &BookmarkController{BookmarkService: bookmarkService}
}

// @Summary 收藏课时
// @Tags 收藏
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{id}/bookmark [post]
func (c *BookmarkController) AddBookmark(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.BookmarkService.AddBookmark(claims.UserID, ctx.Param("id")); err != nil {
		if err == util.ErrLessonNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "bookmarked"})
}

// @Summary 取消收藏
// @Tags 收藏
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{id}/bookmark [delete]
func (c *BookmarkController) RemoveBookmark(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.BookmarkService.RemoveBookmark(claims.UserID, ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "bookmark removed"})
}

// @Summary 收藏列表
// @Tags 收藏
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/user/bookmarks [get]
func (c *BookmarkController) ListBookmarks(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	bookmarks, err := c.BookmarkService.ListBookmarks(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, bookmarks)
}

// @Summary 记录课时浏览
// @Tags 收藏
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{id}/view [post]
func (c *BookmarkController) RecordView(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.BookmarkService.RecordLessonView(claims.UserID, ctx.Param("id")); err != nil {
		if err == util.ErrLessonNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "view recorded"})
}

// @Summary 浏览历史
// @Tags 收藏
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "返回数量" default(50)
// @Success 200 {object} util.Response
// @Router /api/user/history [get]
func (c *BookmarkController) ListHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	history, err := c.BookmarkService.ListHistory(claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, history)
}
