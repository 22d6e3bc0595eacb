package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"koppo/internal/config"
	cronrunner "koppo/internal/cron"
	"koppo/internal/db"
	"koppo/internal/handler"
	"koppo/internal/logger"
	"koppo/internal/mirror"
	gormrepository "koppo/internal/repository/gorm"
	"koppo/internal/service"
	"koppo/internal/trading"
	"koppo/internal/trading/deriv"
)

func main() {
	cfgPath := os.Getenv("KP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("KP_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	mirrorStore := mirror.NewRedisStore(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer mirrorStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mirrorStore.Ping(ctx); err != nil {
		logger.Warn("redis unreachable at startup, mirror writes will fail until it recovers", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	botSvc := &service.BotService{Repo: store, Mirror: mirrorStore, Logger: logger}
	sessionSvc := &service.SessionService{Mirror: mirrorStore, Logger: logger}
	auditSvc := &service.AuditService{Repo: store}

	var executor trading.Executor
	if cfg.Runner.Simulate {
		executor = &trading.Simulated{}
		logger.Info("using simulated trade executor")
	} else {
		client := deriv.NewClient(cfg.Deriv.URL, cfg.Deriv.AppID, cfg.Deriv.APIToken, cfg.Deriv.Timeout)
		if err := client.Connect(ctx); err != nil {
			logger.Fatal("deriv connect failed", zap.Error(err))
		}
		defer client.Close(websocket.StatusNormalClosure, "shutdown")
		executor = client
	}

	runner := &service.TradeRunner{
		Bots:         botSvc,
		Sessions:     sessionSvc,
		Audits:       auditSvc,
		Executor:     executor,
		Logger:       logger,
		MaxTrades:    cfg.Runner.MaxTradesPerSession,
		TradeTimeout: cfg.Runner.TradeTimeout,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn}
	healthHandler.Register(engine)
	botHandler := &handler.BotHandler{Bots: botSvc}
	botHandler.Register(engine)
	sessionHandler := &handler.SessionHandler{Sessions: sessionSvc}
	sessionHandler.Register(engine)
	auditHandler := &handler.AuditHandler{Audits: auditSvc}
	auditHandler.Register(engine)
	runHandler := &handler.RunHandler{Runner: runner, Logger: logger, BaseCtx: ctx}
	runHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	reconciler := &service.StatusReconciler{Repo: store, Mirror: mirrorStore, Logger: logger}
	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err := cronRunner.Add(cfg.Cron.StatusReconcile, func(ctx context.Context) {
			n, err := reconciler.ReconcileOnce(ctx)
			if err != nil {
				logger.Warn("status reconcile failed", zap.Error(err))
				return
			}
			logger.Debug("status reconcile ok", zap.Int("bots", n))
		})
		if err != nil {
			logger.Warn("cron register status reconcile failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
