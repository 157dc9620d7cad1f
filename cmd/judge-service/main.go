package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"go.uber.org/zap"

	"codejudge/internal/admission"
	"codejudge/internal/audit"
	"codejudge/internal/auth"
	commonmw "codejudge/internal/common/http/middleware"
	"codejudge/internal/config"
	"codejudge/internal/execution"
	"codejudge/internal/judgehttp"
	"codejudge/internal/metrics"
	"codejudge/internal/model"
	"codejudge/internal/policy"
	"codejudge/internal/retention"
	"codejudge/internal/sandbox/driver"
	"codejudge/internal/sandbox/engine"
	"codejudge/internal/sandbox/security"
	"codejudge/internal/service"
	"codejudge/internal/sweep"
	"codejudge/internal/validator"
	"codejudge/pkg/utils/logger"
)

const defaultConfigPath = "configs/judge_service.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()

	registry := buildRegistry(appCfg.Language)

	profileResolver := policy.NewStaticProfileResolver(map[string]security.IsolationProfile{
		"default": {DisableNetwork: true},
	})
	eng, err := engine.NewEngine(appCfg.Sandbox.ToEngineConfig(), profileResolver)
	if err != nil {
		logger.Error(ctx, "init sandbox engine failed", zap.Error(err))
		return
	}

	store, err := execution.NewStore(appCfg.Execution.WorkspaceRoot)
	if err != nil {
		logger.Error(ctx, "init workspace store failed", zap.Error(err))
		return
	}
	if err := sweep.Run(ctx, appCfg.Execution.WorkspaceRoot, map[string]struct{}{}); err != nil {
		logger.Error(ctx, "startup workspace sweep failed", zap.Error(err))
		return
	}

	admissionCtl := admission.New(appCfg.Admission.MaxRequests,
		admission.WithMetrics(metrics.OnAdmit, metrics.OnRelease, metrics.OnThrottle))

	var ceiling *admission.DistributedCeiling
	if appCfg.Redis != nil && appCfg.Redis.Addr != "" {
		redisStore := redis.New(appCfg.Redis.Addr)
		ceiling = admission.NewDistributedCeiling(appCfg.Redis.Rate, appCfg.Redis.Burst, redisStore, appCfg.Redis.Key)
	}

	var auditor *audit.Publisher
	if appCfg.Kafka != nil {
		auditor = audit.NewPublisher(appCfg.Kafka.Brokers, appCfg.Kafka.Topic)
	}

	var archiver *retention.Archiver
	if appCfg.Retention != nil && appCfg.Retention.Enabled {
		archiver, err = retention.NewArchiver(appCfg.Retention.MinIO)
		if err != nil {
			logger.Error(ctx, "init artifact archiver failed", zap.Error(err))
			return
		}
	}

	v := validator.New(validator.Bounds{
		MinTimeSec:  appCfg.Execution.MinTimeSec,
		MaxTimeSec:  appCfg.Execution.MaxTimeSec,
		MinMemoryMB: appCfg.Execution.MinMemoryMB,
		MaxMemoryMB: appCfg.Execution.MaxMemoryMB,
	}, registry)

	judgeSvc := service.New(service.Config{
		Validator: v,
		Registry:  registry,
		Store:     store,
		Admission: admissionCtl,
		Ceiling:   ceiling,
		Driver:    driver.New(eng),
		Archiver:  archiver,
		Auditor:   auditor,
	})

	var authMW gin.HandlerFunc
	if appCfg.Auth != nil && appCfg.Auth.Enabled {
		authMW = auth.Middleware(appCfg.Auth.Secret)
	}

	httpServer := buildHTTPServer(appCfg.Server, judgeSvc, authMW)
	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(ctx, "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "judge http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(ctx, "shutdown signal received")
	}

	shutdownTimeoutCtx, cancel := context.WithTimeout(context.Background(), appCfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownTimeoutCtx); err != nil {
		logger.Error(ctx, "http server shutdown failed", zap.Error(err))
	}
}

func buildRegistry(cfg config.LanguageConfig) *policy.Registry {
	if len(cfg.Languages) == 0 {
		return policy.DefaultRegistry()
	}
	reg := policy.NewRegistry()
	for _, entry := range cfg.Languages {
		reg.Register(model.LanguagePolicy{
			Language:                 entry.Language,
			DisplayName:              entry.DisplayName,
			SourceFilenameConvention: entry.SourceFilename,
			RequiresCompilation:      entry.RequiresBuild,
			BuildTemplate:            entry.BuildTemplate,
			RunCommand:               entry.RunCommand,
			TimeMultiplier:           entry.TimeMultiplier,
			MemoryMultiplier:         entry.MemoryMultiplier,
			Env:                      entry.Env,
		})
	}
	return reg
}

func buildHTTPServer(cfg config.ServerConfig, svc *service.Service, authMW gin.HandlerFunc) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(commonmw.TraceContextMiddleware())
	router.Use(requestLogger())

	handler := judgehttp.NewHandler(svc)
	handler.Register(router, authMW)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
