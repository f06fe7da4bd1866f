package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"waypost/internal/config"
	"waypost/internal/database"
	"waypost/internal/handler"
	"waypost/internal/logger"
	"waypost/internal/mail"
	"waypost/internal/migrate"
	"waypost/internal/queue"
	appredis "waypost/internal/redis"
	"waypost/internal/repository"
	"waypost/internal/service"
	"waypost/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// janitorInterval controls how often expired refresh tokens are swept.
const janitorInterval = time.Hour

// Run wires the whole application together and serves until SIGINT or
// SIGTERM.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := migrate.Up(ctx, database.DSN(cfg)); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("create redis client: %w", err)
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		return err
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	resetRepo := repository.NewResetRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	roadmapRepo := repository.NewRoadmapRepository(db)

	// Mail pipeline: publish to a Redis stream, deliver from a worker pool.
	publisher := queue.NewPublisher(redisClient.Client, log)
	consumer := queue.NewConsumer(redisClient.Client, log)
	sender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	mailWorkers := worker.NewManager(consumer, worker.NewHandler(sender, log), log, worker.DefaultManagerConfig())
	if err := mailWorkers.Start(ctx); err != nil {
		return fmt.Errorf("start mail workers: %w", err)
	}
	defer mailWorkers.Stop()

	// Services
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	accountService := service.NewAccountService(db, userRepo, profileRepo, resetRepo, authService, publisher, cfg)
	profileService := service.NewProfileService(profileRepo)
	graphService := service.NewGraphService(db, profileRepo, postRepo)
	postService := service.NewPostService(db, postRepo, profileRepo)
	commentService := service.NewCommentService(commentRepo, postRepo, profileRepo)
	roadmapService := service.NewRoadmapService(roadmapRepo, profileRepo)

	mediaService, err := service.NewMediaService(ctx, cfg, profileRepo)
	if err != nil {
		return fmt.Errorf("init media service: %w", err)
	}

	// Periodic sweep of expired refresh tokens.
	go runTokenJanitor(ctx, authService, log)

	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(accountService, authService, cfg),
		ProfileHandler: handler.NewProfileHandler(profileService, graphService, mediaService),
		PostHandler:    handler.NewPostHandler(postService, graphService),
		CommentHandler: handler.NewCommentHandler(commentService),
		RoadmapHandler: handler.NewRoadmapHandler(roadmapService),
		AccessSecret:   cfg.AccessSecret,
		FrontendURL:    cfg.FrontendURL,
	})

	srv := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runTokenJanitor(ctx context.Context, authService *service.AuthService, log *zap.Logger) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authService.DeleteExpiredTokens(ctx)
			if err != nil {
				log.Error("token sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("expired refresh tokens deleted", zap.Int64("count", n))
			}
		}
	}
}
