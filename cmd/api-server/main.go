// cmd/api-server/main.go
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planmytrip/internal/api"
	"planmytrip/internal/common/auth"
	"planmytrip/internal/common/camunda"
	"planmytrip/internal/common/config"
	"planmytrip/internal/common/database"
	"planmytrip/internal/common/logger"
	"planmytrip/internal/common/observability"
	"planmytrip/internal/generation"
	"planmytrip/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}
	if err := cfg.ValidateAPI(); err != nil {
		zap.NewExample().Fatal("invalid api configuration", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": "api-server"})

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	obs := observability.New("api-server", observability.WithSampleRatio(cfg.Server.TraceSampleRate))
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conns, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		zapLog.Fatal("database connection failed", zap.Error(err))
	}
	defer conns.Close()

	db := conns.Postgres.DB
	rdb := conns.Redis.Client

	cache := store.NewItineraryCache(rdb, time.Duration(cfg.Cache.ItineraryTTL)*time.Second)
	itineraries := store.NewItineraryStore(db, cache, log)
	users := store.NewUserStore(db)

	tokens := auth.NewTokenManager(cfg.Auth.JWT.Secret, cfg.JWTTTL(), cfg.Auth.JWT.Issuer)
	accounts := auth.NewService(users, tokens, auth.NewDenylist(rdb), log)

	model, err := generation.NewModelClient(ctx, cfg.LLM)
	if err != nil {
		zapLog.Fatal("model client init failed", zap.Error(err))
	}
	if closer, ok := model.(io.Closer); ok {
		defer closer.Close()
	}
	generator := generation.NewGenerator(model, generation.ConfigFromLLM(cfg.LLM), log, generation.WithObservability(obs))

	deps := api.Deps{
		Generator:   generator,
		Accounts:    accounts,
		Itineraries: itineraries,
		Readiness:   make(map[string]api.ReadinessCheck),
	}
	for name, check := range conns.Checks() {
		deps.Readiness[name] = check
	}

	if conns.Elasticsearch != nil {
		search := store.NewSearchIndex(conns.Elasticsearch.Client, cfg.Database.Elasticsearch.Index, log)
		if err := search.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("search index setup failed", zap.Error(err))
		}
		deps.Search = search
	}

	if cfg.Camunda.BrokerAddress != "" {
		zeebe, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		if err != nil {
			// The synchronous routes do not need the engine.
			log.Warn("workflow engine unavailable, workflow route disabled", map[string]interface{}{"error": err.Error()})
		} else {
			defer zeebe.Close()
			deps.Workflows = zeebe
			deps.Readiness["zeebe"] = zeebe.HealthCheck
		}
	}

	srv := api.NewServer(deps, cfg, log).HTTPServer()

	go func() {
		log.Info("API server listening", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, draining requests", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("API server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("API server stopped", nil)
}
