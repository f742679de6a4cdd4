package controller

import (
	"lms_portal_backend/internal/model"
	"lms_portal_backend/internal/service"
	"lms_portal_backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// 学生端视图：选项不携带正确性数据
type studentOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type studentQuestion struct {
	ID           string             `json:"id"`
	QuestionType model.QuestionType `json:"questionType"`
	Content      string             `json:"content"`
	ImageURL     string             `json:"imageUrl,omitempty"`
	OrderInQuiz  int                `json:"orderInQuiz"`
	Options      []studentOption    `json:"options"`
}

type studentQuiz struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	ImageURL    string            `json:"imageUrl,omitempty"`
	PassScore   *int              `json:"passScore"`
	Questions   []studentQuestion `json:"questions"`
}

func toStudentQuiz(quiz *service.NormalizedQuiz) *studentQuiz {
	out := &studentQuiz{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		ImageURL:    quiz.ImageURL,
		PassScore:   quiz.PassScore,
		Questions:   make([]studentQuestion, 0, len(quiz.Questions)),
	}
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		options := make([]studentOption, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, studentOption{ID: o.ID, Text: o.Text})
		}
		out.Questions = append(out.Questions, studentQuestion{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Content:      q.Content,
			ImageURL:     q.ImageURL,
			OrderInQuiz:  q.OrderInQuiz,
			Options:      options,
		})
	}
	return out
}

func (c *QuizController) handleAttemptError(ctx *gin.Context, err error) {
	switch err {
	case util.ErrQuizNotFound:
		util.NotFound(ctx)
	case util.ErrQuestionNotFound, util.ErrAnswerRequired, util.ErrAttemptNotFinished, util.ErrNoMoreQuestions:
		util.BadRequest(ctx, err.Error())
	case util.ErrAttemptNotStarted:
		util.Error(ctx, http.StatusConflict, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary 测验列表
// @Tags 测验
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	quizzes, total, err := c.QuizService.ListQuizzes(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: quizzes, Total: total, Page: page, Limit: limit})
}

// @Summary 课时下的测验
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{id}/quizzes [get]
func (c *QuizController) ListLessonQuizzes(ctx *gin.Context) {
	quizzes, err := c.QuizService.ListLessonQuizzes(ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// @Summary 测验详情
// @Description 取回测验及按序归一化后的题目，不含答案数据
// @Tags 测验
// @Produce json
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	quiz, err := c.QuizService.LoadQuiz(ctx.Param("id"))
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, toStudentQuiz(quiz))
}

// @Summary 开始答题
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/attempt/start [post]
func (c *QuizController) StartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	state, err := c.QuizService.StartAttempt(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

type AnswerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// @Summary 提交单题答案
// @Description 同一题重复提交时后写覆盖先写
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Param body body AnswerRequest true "题目与答案"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/attempt/answers [post]
func (c *QuizController) RecordAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	state, err := c.QuizService.RecordAnswer(ctx.Request.Context(), claims.UserID, ctx.Param("id"), req.QuestionID, req.Answer)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// @Summary 下一题
// @Description 当前题未作答时拒绝前进；最后一题请走提交接口
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/attempt/next [post]
func (c *QuizController) AdvanceAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	state, err := c.QuizService.AdvanceAttempt(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// @Summary 收卷评分
// @Description 评分并返回逐题反馈，答题记录落库，通过则发放奖励积分
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/attempt/submit [post]
func (c *QuizController) FinishAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.QuizService.FinishAttempt(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 重考
// @Description 游标归零、答案清空，重新开始本测验
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/attempt/retake [post]
func (c *QuizController) RetakeAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	state, err := c.QuizService.RetakeAttempt(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// @Summary 我的答题记录
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param quizId query string false "按测验过滤"
// @Success 200 {object} util.Response
// @Router /api/attempts [get]
func (c *QuizController) ListMyAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.QuizService.ListUserAttempts(claims.UserID, ctx.Query("quizId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

type PublicSubmitRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// @Summary 一次性提交整卷
// @Description 游客可用：只评分展示，不落库不发奖；登录用户照常落库
// @Tags 测验
// @Accept json
// @Produce json
// @Param id path string true "测验ID"
// @Param body body PublicSubmitRequest true "答案映射"
// @Success 200 {object} util.Response
// @Router /api/public/quizzes/{id}/submit [post]
func (c *QuizController) SubmitAnswersPublic(ctx *gin.Context) {
	var req PublicSubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var userID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = claims.UserID
	}

	result, err := c.QuizService.SubmitAnswers(userID, ctx.Param("id"), req.Answers)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 创建测验
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuizReq true "测验内容"
// @Success 201 {object} util.Response
// @Router /api/admin/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req service.QuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.CreateQuiz(req)
	if err != nil {
		if err == util.ErrTitleRequired {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// @Summary 更新测验
// @Description 题目按 id 差异同步：带 id 更新、缺 id 新增、缺席删除
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Param body body service.QuizReq true "测验内容"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	var req service.QuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.UpdateQuiz(ctx.Param("id"), req)
	if err != nil {
		if err == util.ErrQuizNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// @Summary 删除测验
// @Tags 测验管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	if err := c.QuizService.DeleteQuiz(ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "quiz deleted"})
}

// @Summary 测验详情（管理端）
// @Description 含原始选项编码与答案数据
// @Tags 测验管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id} [get]
func (c *QuizController) GetQuizForAdmin(ctx *gin.Context) {
	quiz, questions, err := c.QuizService.GetQuizForAdmin(ctx.Param("id"))
	if err != nil {
		if err == util.ErrQuizNotFound {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"quiz": quiz, "questions": questions})
}
