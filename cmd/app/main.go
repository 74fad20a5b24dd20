package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/roxaimboy784-wq/AdCashy/internal/adplayer"
	"github.com/roxaimboy784-wq/AdCashy/internal/bot"
	"github.com/roxaimboy784-wq/AdCashy/internal/config"
	"github.com/roxaimboy784-wq/AdCashy/internal/db"
	httpServer "github.com/roxaimboy784-wq/AdCashy/internal/http"
	"github.com/roxaimboy784-wq/AdCashy/internal/http/handlers"
	"github.com/roxaimboy784-wq/AdCashy/internal/http/middleware"
	"github.com/roxaimboy784-wq/AdCashy/internal/logger"
	"github.com/roxaimboy784-wq/AdCashy/internal/metrics"
	"github.com/roxaimboy784-wq/AdCashy/internal/repository"
	"github.com/roxaimboy784-wq/AdCashy/internal/service"
	"github.com/roxaimboy784-wq/AdCashy/internal/store"
)

// Version устанавливается при сборке
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid config", "error", err)
	}

	// Инициализация структурированного логгера
	logger.Init(cfg.LogLevel, cfg.JSONLogs())
	log := logger.Get()

	ctx := context.Background()

	// postgres нужен для аудита и для STORE_BACKEND=postgres
	var dbPool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		dbPool, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("postgres unavailable", "error", err)
		}
		defer dbPool.Close()
	}

	// redis для документа, OTP и лимитов
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("redis unavailable", "error", err)
		}
		defer redisClient.Close()
	}

	backend, err := openBackend(ctx, cfg, dbPool, redisClient)
	if err != nil {
		logger.Fatal("failed to open store backend", "backend", cfg.StoreBackend, "error", err)
	}
	defer backend.Close()

	repo := repository.NewDocumentRepository(backend, cfg.StoreKey)
	st, err := store.Open(ctx, repo, store.Options{
		ResetCorrupt: cfg.StoreResetOnCorrupt,
		AdminEmail:   cfg.AdminEmail,
		OnPersist:    metrics.ObservePersist,
	})
	if err != nil {
		logger.Fatal("failed to load document", "key", repo.Key(), "error", err)
	}
	if err := st.Bootstrap(ctx); err != nil {
		logger.Fatal("failed to seed admin", "error", err)
	}
	log.Info("store ready", "backend", cfg.StoreBackend, "key", repo.Key())

	audit := service.NewAuditService(dbPool)
	auth := service.NewAuthService(st, audit)
	rewards := service.NewRewardService(st)
	wallet := service.NewWalletService(st, audit)
	admin := service.NewAdminService(st, audit)

	h := &handlers.Handler{
		Auth:          auth,
		Sessions:      service.NewSessionService(cfg.JWTSecret, cfg.SessionTTL),
		Rewards:       rewards,
		Wallet:        wallet,
		Profile:       service.NewProfileService(st, audit),
		Admin:         admin,
		Audit:         audit,
		Player:        adplayer.NewPlayer(rewards, cfg.AdDuration),
		AllowedOrigin: cfg.AllowedOrigin,
	}
	if cfg.OTPEnabled {
		var challenges service.ChallengeStore = service.NewMemoryChallengeStore()
		if redisClient != nil {
			challenges = service.NewRedisChallengeStore(redisClient)
		}
		h.OTP = service.NewOTPService(auth, challenges, cfg.OTPTTL)
	}

	var limiter middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		if redisClient != nil {
			limiter = middleware.NewRedisRateLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute)
		} else {
			limiter = middleware.NewMemoryRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		}
	}

	if cfg.JSONLogs() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := httpServer.NewRouter(h, httpServer.RouterConfig{
		Version:       Version,
		AllowedOrigin: cfg.AllowedOrigin,
		AuthLimiter:   limiter,
	})

	// Запуск админ бота ПЕРЕД HTTP сервером чтобы callback был установлен
	var adminBot *bot.AdminBot
	if cfg.AdminBotEnabled && len(cfg.AdminTelegramIDs) > 0 {
		adminBot, err = bot.NewAdminBot(cfg.BotToken, admin, cfg.AdminTelegramIDs)
		if err != nil {
			log.Error("failed to start admin bot", "error", err)
		} else {
			go adminBot.Start()
			log.Info("admin bot started", "admin_ids", cfg.AdminTelegramIDs)

			// Уведомление всем админам бота, если запрашивают вывод
			wallet.SetWithdrawalNotifyCallback(adminBot.NotifyAdminsNewWithdrawal)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	// напоминания о заявках, которые долго ждут решения
	var pendingWatcher *service.PendingWatcher
	if adminBot != nil && cfg.PendingRemindAfter > 0 {
		pendingWatcher = service.NewPendingWatcher(st, cfg.PendingRemindAfter, cfg.PendingCheckInterval)
		pendingWatcher.SetNotifyCallback(adminBot.NotifyAdminsPending)
		go pendingWatcher.Start()
		log.Info("pending watcher запущен", "remind_after", cfg.PendingRemindAfter, "interval", cfg.PendingCheckInterval)
	} else {
		log.Warn("pending watcher не запущен: админ бот выключен")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	if adminBot != nil {
		adminBot.Stop()
	}
	if pendingWatcher != nil {
		pendingWatcher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}

// openBackend выбирает хранилище документа по STORE_BACKEND
func openBackend(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client) (repository.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("memory backend: данные пропадут после перезапуска")
		return repository.NewMemoryBackend(), nil
	case config.BackendRedis:
		return repository.NewRedisBackend(rdb), nil
	case config.BackendPostgres:
		return repository.NewPostgresBackend(ctx, pool)
	case config.BackendSQLite:
		return repository.OpenSQLiteBackend(cfg.SQLitePath)
	default:
		return repository.NewFileBackend(cfg.StoreDir)
	}
}
