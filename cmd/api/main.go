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
	"go.uber.org/zap"

	apiBenefits "github.com/nan702ya/skt-ai-adoption-plan/pkg/api/benefits"
	apiConfig "github.com/nan702ya/skt-ai-adoption-plan/pkg/api/config"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/api/health"
	apiSimulation "github.com/nan702ya/skt-ai-adoption-plan/pkg/api/simulation"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/api/storage"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/config"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/benefit"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/store"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/logger"
)

func main() {
	cfgPath := os.Getenv("SIM_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	envOnly := false
	if raw := os.Getenv("SIM_ENV_ONLY"); raw != "" {
		envOnly = strings.EqualFold(raw, "true") || raw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.NewMemory()
	if cfg.DB.DSN != "" {
		st, err = store.Open(ctx, cfg.DB, log)
		if err != nil {
			log.Fatal("store open failed", zap.Error(err))
		}
	} else {
		log.Warn("no database configured, designs and scenarios are kept in memory")
	}
	defer st.Close()

	if cfg.Log.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	(&health.Handler{Store: st}).Register(engine)
	(&apiConfig.Handler{Config: cfg}).Register(engine)
	(&apiSimulation.Handler{Store: st, Defaults: cfg.Simulation, Logger: log}).Register(engine)
	(&storage.Handler{Store: st, Logger: log}).Register(engine)
	(&apiBenefits.Handler{
		Fetcher: benefit.NewFetcher(cfg.Scraper.Timeout, cfg.Scraper.UserAgent, log),
		Logger:  log,
	}).Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
