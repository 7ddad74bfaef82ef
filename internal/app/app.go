package app

import (
	"context"
	"time"

	"blogapi/internal/config"
	"blogapi/internal/db"
	"blogapi/internal/handlers"
	"blogapi/internal/logger"
	"blogapi/internal/middleware"
	"blogapi/internal/repository"
	"blogapi/internal/routes"
	"blogapi/internal/services"
	"blogapi/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// App — собранное приложение: роутер и освобождение ресурсов.
type App struct {
	Router *mux.Router
	close  func()
}

// Close закрывает пул соединений и останавливает фоновые задачи.
func (a *App) Close() {
	if a.close != nil {
		a.close()
	}
}

func InitApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg); err != nil {
			return nil, err
		}
		logger.Log.Info("Миграции применены")
	}

	pool, err := db.NewPostgresConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Подключение к БД установлено", zap.String("dsn", cfg.GetDSNSafe()))

	if cfg.BodyLimitBytes > 0 {
		helpers.MaxBodyBytes = cfg.BodyLimitBytes
	}

	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	articleRepo := repository.NewArticleRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	tagRepo := repository.NewTagRepository(pool)

	// Сервисы
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiresIn)
	articleSvc := services.NewArticleService(articleRepo, commentRepo)
	commentSvc := services.NewCommentService(articleRepo, commentRepo)
	userSvc := services.NewUserService(userRepo, articleRepo)
	tagSvc := services.NewTagService(tagRepo)

	// Хендлеры
	h := routes.Handlers{
		Auth:     handlers.NewAuthHandler(authSvc),
		Articles: handlers.NewArticleHandler(articleSvc),
		Comments: handlers.NewCommentHandler(commentSvc),
		Users:    handlers.NewUserHandler(userSvc),
		Tags:     handlers.NewTagHandler(tagSvc),
		Health:   handlers.NewHealthHandler(pool),
	}

	bgCtx, stop := context.WithCancel(context.Background())

	opts := routes.Options{Auth: authSvc, MetricsEnabled: cfg.MetricsEnabled}
	if cfg.IsProd() {
		rl := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
		rl.StartCleanup(bgCtx, time.Minute)
		opts.RateLimiter = rl
		logger.Log.Info("Лимит запросов включён",
			zap.Int("requests", cfg.RateLimitRequests),
			zap.Duration("window", cfg.RateLimitWindow))
	}

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, h, opts)

	return &App{
		Router: router,
		close: func() {
			stop()
			pool.Close()
		},
	}, nil
}
