package app

import (
	"lms_portal_backend/docs"
	"lms_portal_backend/internal/config"
	"lms_portal_backend/internal/middleware"
	"lms_portal_backend/internal/model"
	"lms_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 排行榜和课程目录对游客开放
		public.GET("/leaderboard", c.leaderboard.GetLeaderboard)
		public.GET("/courses", middleware.TryAuthMiddleware(a.Config), c.course.ListCourses)
		public.GET("/courses/:id", c.course.GetCourse)
		public.GET("/quizzes", c.quiz.ListQuizzes)
		public.GET("/quizzes/:id", c.quiz.GetQuiz)
	}

	// 无需权限的整卷提交接口，登录用户带 token 则照常落库
	publicAPI := router.Group("/api/public")
	{
		publicAPI.POST("/quizzes/:id/submit", middleware.TryAuthMiddleware(a.Config), c.quiz.SubmitAnswersPublic)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/user/profile", c.user.UpdateProfile)
	rg.POST("/user/avatar", c.user.UploadAvatar)
	rg.PUT("/user/password", c.auth.ChangePassword)

	// 课时与资料
	rg.GET("/lessons/:id", c.course.GetLesson)
	rg.GET("/lessons/:id/quizzes", c.quiz.ListLessonQuizzes)
	rg.POST("/lessons/:id/view", c.bookmark.RecordView)

	// 收藏与历史
	rg.POST("/lessons/:id/bookmark", c.bookmark.AddBookmark)
	rg.DELETE("/lessons/:id/bookmark", c.bookmark.RemoveBookmark)
	rg.GET("/user/bookmarks", c.bookmark.ListBookmarks)
	rg.GET("/user/history", c.bookmark.ListHistory)

	// 答题流程
	rg.POST("/quizzes/:id/attempt/start", c.quiz.StartAttempt)
	rg.POST("/quizzes/:id/attempt/answers", c.quiz.RecordAnswer)
	rg.POST("/quizzes/:id/attempt/next", c.quiz.AdvanceAttempt)
	rg.POST("/quizzes/:id/attempt/submit", c.quiz.FinishAttempt)
	rg.POST("/quizzes/:id/attempt/retake", c.quiz.RetakeAttempt)
	rg.GET("/attempts", c.quiz.ListMyAttempts)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.user))
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		// 用户管理
		admin.GET("/users", c.user.ListUsers)
		admin.PATCH("/users/:id/disabled", c.user.SetDisabled)
		admin.GET("/stats", c.user.GetPlatformStats)

		// 测验管理
		admin.POST("/quizzes", c.quiz.CreateQuiz)
		admin.GET("/quizzes/:id", c.quiz.GetQuizForAdmin)
		admin.PUT("/quizzes/:id", c.quiz.UpdateQuiz)
		admin.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)

		// 课程管理
		admin.POST("/courses", c.course.CreateCourse)
		admin.PUT("/courses/:id", c.course.UpdateCourse)
		admin.DELETE("/courses/:id", c.course.DeleteCourse)
		admin.POST("/modules", c.course.CreateModule)
		admin.DELETE("/modules/:id", c.course.DeleteModule)
		admin.POST("/lessons", c.course.CreateLesson)
		admin.DELETE("/lessons/:id", c.course.DeleteLesson)
		admin.POST("/lessons/:id/materials", c.course.UploadMaterial)
		admin.DELETE("/materials/:id", c.course.DeleteMaterial)
	}
}
