package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/HapoSeiz/AlertShip/internal/auth"
	"github.com/HapoSeiz/AlertShip/internal/geo"
	handlers "github.com/HapoSeiz/AlertShip/internal/handler"
	"github.com/HapoSeiz/AlertShip/internal/listeners"
	"github.com/HapoSeiz/AlertShip/internal/models"
	"github.com/HapoSeiz/AlertShip/pkg/backup"
	"github.com/HapoSeiz/AlertShip/pkg/cache"
	"github.com/HapoSeiz/AlertShip/pkg/config"
	"github.com/HapoSeiz/AlertShip/pkg/i18n"
	"github.com/HapoSeiz/AlertShip/pkg/logger"
	"github.com/HapoSeiz/AlertShip/pkg/metrics"
	"github.com/HapoSeiz/AlertShip/pkg/middleware"
	"github.com/HapoSeiz/AlertShip/pkg/notification"
	"github.com/HapoSeiz/AlertShip/pkg/scheduler"
	"github.com/HapoSeiz/AlertShip/pkg/sse"
	"github.com/HapoSeiz/AlertShip/pkg/util"
)

const (
	draftTTL       = 30 * time.Minute
	draftSweepTick = 5 * time.Minute
	// Expired auth tokens are purged nightly.
	tokenPurgeSpec = "0 3 * * *"
)

func main() {
	if err := config.Load(); err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	cfg := config.GlobalConfig

	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal("init logger", zap.Error(err))
	}
	defer logger.Sync()

	gin.SetMode(cfg.Mode)

	db, err := util.CreateDatabaseInstance(&gorm.Config{}, cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	if err := models.Migrate(db); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	shared, err := cache.NewCache(cache.Config{
		Type: cfg.CacheType,
		Redis: cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		Local: cache.DefaultLocalConfig(),
	})
	if err != nil {
		logger.Fatal("init cache", zap.Error(err))
	}
	defer shared.Close()

	support, err := i18n.New(cfg.LocalesPath)
	if err != nil {
		logger.Fatal("load locales", zap.Error(err))
	}

	places := geo.NewGoogleClient(cfg.GoogleMapsAPIKey, shared)
	workflow := geo.NewWorkflow(places, draftTTL)
	hub := sse.NewHub(30 * time.Second)
	mailer := notification.NewMailNotification(cfg.Mail)

	var verifier auth.TokenVerifier
	if cfg.GoogleClientID != "" {
		verifier = auth.NewGoogleVerifier(cfg.GoogleClientID)
	}

	listeners.InitUserListeners(db, mailer)
	listeners.InitReportListeners(db, hub, mailer)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLog())
	if cfg.MetricsEnabled {
		engine.Use(metrics.Middleware())
		engine.GET("/metrics", metrics.Handler())
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	expireDays := cfg.SessionExpireDays
	if expireDays <= 0 {
		expireDays = 7
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   expireDays * 24 * 3600,
		HttpOnly: true,
	})
	engine.Use(sessions.Sessions("alertship", store))
	engine.Use(middleware.Language())

	h := handlers.NewHandlers(db, workflow, hub, support, mailer, verifier)
	h.Register(engine)
	engine.NoRoute(middleware.LocaleRewrite(engine))

	sched := scheduler.New()
	defer sched.Stop()
	sched.Every(draftSweepTick, scheduler.FuncJob(workflow.Sweep))

	cr := scheduler.NewCron(nil)
	if _, err := cr.Add(tokenPurgeSpec, scheduler.FuncJob(func(ctx context.Context) {
		purged, perr := models.PurgeExpiredTokens(db)
		if perr != nil {
			logger.Warn("token purge failed", zap.Error(perr))
			return
		}
		logger.Info("purged expired tokens", zap.Int64("count", purged))
	})); err != nil {
		logger.Warn("schedule token purge", zap.Error(err))
	}
	if cfg.BackupSchedule != "" {
		if _, err := cr.Add(cfg.BackupSchedule, scheduler.FuncJob(func(ctx context.Context) {
			dst, berr := backup.Execute(cfg.DBDriver, cfg.DSN, cfg.BackupPath)
			if berr != nil {
				logger.Warn("backup failed", zap.Error(berr))
				return
			}
			logger.Info("backup written", zap.String("file", dst))
		})); err != nil {
			logger.Warn("schedule backup", zap.Error(err))
		}
	}
	cr.Start()
	defer cr.Stop()

	srv := &http.Server{Addr: cfg.Addr, Handler: engine}
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
