package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"telegram-tutoring-bot/internal/config"
	tele "telegram-tutoring-bot/internal/infra/adapters/telegram"
	pg "telegram-tutoring-bot/internal/infra/db/postgres"
	"telegram-tutoring-bot/internal/infra/logging"
	"telegram-tutoring-bot/internal/infra/metrics"
	red "telegram-tutoring-bot/internal/infra/redis"
	"telegram-tutoring-bot/internal/infra/sched"
	"telegram-tutoring-bot/internal/infra/web"
	"telegram-tutoring-bot/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	stateRepo := red.NewConversationStateRepo(redisClient, cfg.Redis.StateTTL)

	// ---- Repositories ----
	studentRepo := pg.NewStudentRepo(pool)
	notifLogRepo := pg.NewNotificationLogRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Telegram (adapter first, use cases talk through the port) ----
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, rateLimiter, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}

	// ---- Use cases ----
	enrollmentUC := usecase.NewEnrollmentUseCase(studentRepo, stateRepo, botAdapter, cfg.AdminID(), cfg.Enrollment, logger)
	approvalUC := usecase.NewApprovalUseCase(studentRepo, notifLogRepo, txManager, botAdapter, cfg.AdminID(), logger)
	expiryUC := usecase.NewExpiryUseCase(studentRepo, notifLogRepo, txManager, botAdapter, cfg.AdminID(), logger)
	statsUC := usecase.NewStatsUseCase(studentRepo, logger)
	botAdapter.Bind(enrollmentUC, approvalUC)

	var wg sync.WaitGroup

	// ---- Polling loop; restarts after a brief delay on fatal faults ----
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			err := botAdapter.StartPolling(ctx)
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			logger.Error().Err(err).Msg("telegram polling stopped; restarting")
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}()

	// ---- Expiry sweeper ----
	worker := sched.NewExpiryWorker(cfg.Sweeper.Interval, expiryUC, statsUC, logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = worker.Run(ctx)
	}()

	// ---- Admin web (health, metrics, enrollment inspection) ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, 30*time.Minute)
	webSrv := web.NewServer(statsUC, auth, cfg.Admin.APIKey, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler: webSrv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("admin web listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("admin web server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	// Let in-flight handlers and the current sweep finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	wg.Wait()
	logger.Info().Msg("shutdown complete")
}
