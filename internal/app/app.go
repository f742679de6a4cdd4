package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lms_portal_backend/internal/config"
	"lms_portal_backend/internal/controller"
	"lms_portal_backend/internal/repository"
	"lms_portal_backend/internal/service"
	"lms_portal_backend/pkg/database"
	"lms_portal_backend/pkg/logger"
	"lms_portal_backend/pkg/monitoring"
	"lms_portal_backend/pkg/security"
	"lms_portal_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	quiz     *repository.QuizRepository
	attempt  *repository.AttemptRepository
	course   *repository.CourseRepository
	bookmark *repository.BookmarkRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	quiz        *service.QuizService
	leaderboard *service.LeaderboardService
	user        *service.UserService
	course      *service.CourseService
	bookmark    *service.BookmarkService
}

type controllers struct {
	auth        *controller.AuthController
	quiz        *controller.QuizController
	leaderboard *controller.LeaderboardController
	user        *controller.UserController
	course      *controller.CourseController
	bookmark    *controller.BookmarkController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 热更新可在运行期调整的配置项
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config.Quiz = cfg.Quiz
	logger.Log.Info("Config reloaded",
		zap.Int("passRewardPoints", cfg.Quiz.PassRewardPoints),
		zap.Int("attemptTTLMinutes", cfg.Quiz.AttemptTTLMinutes))

	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		quiz:     repository.NewQuizRepository(db),
		attempt:  repository.NewAttemptRepository(db),
		course:   repository.NewCourseRepository(db),
		bookmark: repository.NewBookmarkRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)

	sessions := service.NewRedisAttemptStore(rdb, time.Duration(cfg.Quiz.AttemptTTLMinutes)*time.Minute)
	s.quiz = service.NewQuizService(repos.quiz, repos.attempt, repos.user, sessions, cfg)

	s.leaderboard = service.NewLeaderboardService(repos.attempt)
	s.user = service.NewUserService(repos.user, repos.attempt, repos.course)
	s.course = service.NewCourseService(repos.course, s.storage, cfg)
	s.bookmark = service.NewBookmarkService(repos.bookmark, repos.course)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		quiz:        controller.NewQuizController(s.quiz),
		leaderboard: controller.NewLeaderboardController(s.leaderboard),
		user:        controller.NewUserController(s.user, s.storage, a.Config),
		course:      controller.NewCourseController(s.course),
		bookmark:    controller.NewBookmarkController(s.bookmark),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, cfg.ForceMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("lms-portal", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if err := a.Redis.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}

	log.Println("Server exiting")
}
