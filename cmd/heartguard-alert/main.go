package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heartguard-alert/internal/config"
	"heartguard-alert/internal/database"
	httpapi "heartguard-alert/internal/http"
	"heartguard-alert/internal/logger"
	"heartguard-alert/internal/repository"
	"heartguard-alert/internal/service"
	"heartguard-alert/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.Load()

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "heartguard-alert")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. 存储层：优先 Postgres，连接失败回退内存 repo（本地联测不依赖 DB）
	var (
		db           *sql.DB
		rolesRepo    repository.RolesRepository
		alertsRepo   repository.AlertsRepository
		profilesRepo repository.ProfilesRepository
		readingsRepo repository.ReadingsRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			if err := repository.EnsureSchema(ctx, d); err != nil {
				log.Fatal("Failed to ensure database schema", zap.Error(err))
			}
			db = d
			log.Info("DB enabled for heartguard-alert")
		} else {
			log.Warn("DB enabled but connection failed, falling back to in-memory repositories", zap.Error(err))
		}
	}
	if db != nil {
		rolesRepo = repository.NewPostgresRolesRepo(db)
		alertsRepo = repository.NewPostgresAlertsRepo(db, log)
		profilesRepo = repository.NewPostgresProfilesRepo(db)
		readingsRepo = repository.NewPostgresReadingsRepo(db)
	} else {
		rolesRepo = repository.NewMemoryRolesRepo()
		alertsRepo = repository.NewMemoryAlertsRepo()
		profilesRepo = repository.NewMemoryProfilesRepo()
		readingsRepo = repository.NewMemoryReadingsRepo()
	}

	// 4. 缓存（可选）：关闭时传 nil KV，服务层自动跳过
	var kv store.KV
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		kv = store.NewRedisKV(redisClient)
	}

	// 5. 服务层
	accessSvc := service.NewAccessService(rolesRepo, log)
	alertSvc := service.NewAlertService(alertsRepo, accessSvc, kv, log)
	readingSvc := service.NewReadingService(readingsRepo, alertSvc, accessSvc, kv, log)
	profileSvc := service.NewProfileService(profilesRepo, accessSvc, log)

	// 6. HTTP 层
	authStore := httpapi.NewAuthStore()
	identity := httpapi.NewIdentityResolver(authStore, cfg.Auth.AllowHeaderPrincipal)

	router := httpapi.NewRouter(log)
	router.RegisterHealthRoutes()
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authStore, log))
	router.RegisterAccessRoutes(httpapi.NewAccessHandler(accessSvc, identity, log))
	router.RegisterAlertRoutes(httpapi.NewAlertHandler(alertSvc, identity, log))
	router.RegisterReadingRoutes(httpapi.NewReadingHandler(readingSvc, identity, log))
	router.RegisterProfileRoutes(httpapi.NewProfileHandler(profileSvc, identity, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// 7. 等待信号（优雅关闭）
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
