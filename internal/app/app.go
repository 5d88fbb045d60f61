package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lughati_backend/internal/config"
	"lughati_backend/internal/controller"
	"lughati_backend/internal/repository"
	"lughati_backend/internal/service"
	"lughati_backend/pkg/configwatcher"
	"lughati_backend/pkg/database"
	"lughati_backend/pkg/logger"
	"lughati_backend/pkg/monitoring"
	"lughati_backend/pkg/security"
	"lughati_backend/pkg/tracing"

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
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	lessonCache *repository.LessonCacheRepository
	quizCache   *repository.QuizCacheRepository
	interaction *repository.InteractionRepository
	enhancement *repository.EnhancementRepository
	journey     *repository.JourneyRepository
	quizAttempt *repository.QuizAttemptRepository
}

type services struct {
	ai          *service.AIService
	embedding   *service.EmbeddingService
	lesson      *service.LessonService
	search      *service.SearchService
	enhancement *service.EnhancementService
	tutor       *service.TutorService
	journey     *service.JourneyService
	quiz        *service.QuizService
	export      *service.ExportService
}

type controllers struct {
	lesson      *controller.LessonController
	quiz        *controller.QuizController
	journey     *controller.JourneyController
	tutor       *controller.TutorController
	enhancement *controller.EnhancementController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		lessonCache: repository.NewLessonCacheRepository(db, rdb, cfg.Redis.CacheTTL),
		quizCache:   repository.NewQuizCacheRepository(db),
		interaction: repository.NewInteractionRepository(db),
		enhancement: repository.NewEnhancementRepository(db),
		journey:     repository.NewJourneyRepository(db),
		quizAttempt: repository.NewQuizAttemptRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) (*services, error) {
	s := &services{}

	s.ai = service.NewAIService(cfg.AI)
	s.embedding = service.NewEmbeddingService(cfg.Embedding)
	s.lesson = service.NewLessonService(repos.lessonCache, s.ai, s.embedding)
	s.search = service.NewSearchService(repos.lessonCache, s.embedding)
	s.enhancement = service.NewEnhancementService(repos.interaction, repos.enhancement, repos.lessonCache, nil)
	s.tutor = service.NewTutorService(repos.lessonCache, s.ai, s.enhancement)
	s.journey = service.NewJourneyService(repos.journey)
	s.quiz = service.NewQuizService(repos.quizCache, repos.quizAttempt, repos.journey, s.ai)

	export, err := service.NewExportService(cfg, repos.enhancement, repos.lessonCache)
	if err != nil {
		return nil, err
	}
	s.export = export

	return s, nil
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		lesson:      controller.NewLessonController(s.lesson, s.search),
		quiz:        controller.NewQuizController(s.quiz),
		journey:     controller.NewJourneyController(s.journey),
		tutor:       controller.NewTutorController(s.tutor),
		enhancement: controller.NewEnhancementController(repos.enhancement, s.export),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks sweeps pending enhancement triggers to object
// storage daily, in addition to the on-demand admin export.
func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		for range ticker.C {
			if _, err := s.export.ExportPending(context.Background()); err != nil {
				logger.Log.Error("scheduled enhancement export error", zap.Error(err))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// The hot cache is an optimization; lesson reads fall back to
		// the database when redis is unavailable.
		logger.Log.Warn("Redis unavailable, continuing without hot cache", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services, err := app.initServices(repos, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, repos, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("lughati-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	app.startBackgroundTasks(services)

	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		logger.Log.Info("Configuration reloaded")
		app.Config = newCfg
		for _, callback := range app.configCallbacks {
			callback(newCfg)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
