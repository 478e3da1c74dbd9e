// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"planmytrip/internal/common/aws"
	"planmytrip/internal/common/camunda"
	"planmytrip/internal/common/config"
	"planmytrip/internal/common/database"
	"planmytrip/internal/common/logger"
	"planmytrip/internal/common/observability"
	"planmytrip/internal/generation"
	"planmytrip/internal/store"
	"planmytrip/pkg/registry"

	sie "planmytrip/internal/workers/communication/send-itinerary-email"
	si "planmytrip/internal/workers/itinerary/save-itinerary"
	gi "planmytrip/internal/workers/planning/generate-itinerary"
	vtr "planmytrip/internal/workers/planning/validate-trip-request"
)

type registration struct {
	taskType string
	build    func(timeout time.Duration) camunda.JobHandler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}
	if err := cfg.ValidateWorkers(); err != nil {
		zap.NewExample().Fatal("invalid worker configuration", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": "worker-manager"})

	log.Info("Starting worker manager", nil)

	obs := observability.New("worker-manager", observability.WithSampleRatio(cfg.Server.TraceSampleRate))
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = database.RetryWithBackoff(ctx, func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()

	if cfg.Camunda.DeployOnStart {
		key, err := zeebe.DeployProcess(ctx, cfg.Camunda.ProcessFile)
		if err != nil {
			zapLog.Fatal("process deployment failed", zap.Error(err), zap.String("file", cfg.Camunda.ProcessFile))
		}
		log.Info("Process deployed", map[string]interface{}{"file": cfg.Camunda.ProcessFile, "deploymentKey": key})
	}

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}

	// --- Stores ---
	conns, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		zapLog.Fatal("database connection failed", zap.Error(err))
	}
	defer conns.Close()

	cache := store.NewItineraryCache(conns.Redis.Client, time.Duration(cfg.Cache.ItineraryTTL)*time.Second)
	itineraries := store.NewItineraryStore(conns.Postgres.DB, cache, log)
	users := store.NewUserStore(conns.Postgres.DB)

	var indexer si.Indexer
	if conns.Elasticsearch != nil {
		search := store.NewSearchIndex(conns.Elasticsearch.Client, cfg.Database.Elasticsearch.Index, log)
		if err := search.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("search index setup failed", zap.Error(err))
		}
		indexer = search
	}

	// --- Model ---
	model, err := generation.NewModelClient(ctx, cfg.LLM)
	if err != nil {
		zapLog.Fatal("model client init failed", zap.Error(err))
	}
	if closer, ok := model.(io.Closer); ok {
		defer closer.Close()
	}
	generator := generation.NewGenerator(model, generation.ConfigFromLLM(cfg.LLM), log, generation.WithObservability(obs))

	// --- Mail ---
	var mailer sie.Mailer
	if cfg.Integrations.AWS.SES.Enabled {
		ses, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		mailer = ses
	}

	registrations := []registration{
		{vtr.TaskType, func(timeout time.Duration) camunda.JobHandler {
			return vtr.NewHandler(&vtr.Config{Timeout: timeout}, log).Handle
		}},
		{gi.TaskType, func(timeout time.Duration) camunda.JobHandler {
			return gi.NewHandler(&gi.Config{Timeout: timeout}, log, generator).Handle
		}},
		{si.TaskType, func(timeout time.Duration) camunda.JobHandler {
			return si.NewHandler(&si.Config{Timeout: timeout}, log, itineraries, indexer).Handle
		}},
	}
	if mailer != nil {
		registrations = append(registrations, registration{sie.TaskType, func(timeout time.Duration) camunda.JobHandler {
			return sie.NewHandler(&sie.Config{
				Timeout:      timeout,
				FromEmail:    cfg.Integrations.AWS.SES.FromEmail,
				ShareBaseURL: cfg.Share.BaseURL,
			}, log, mailer, users).Handle
		}})
	} else {
		log.Warn("SES disabled, itinerary emails will not be sent", map[string]interface{}{"taskType": sie.TaskType})
	}

	var workers []*camunda.CamundaWorker
	for _, r := range registrations {
		wcfg, ok := workerConfig(cfg, reg, r.taskType, log)
		if !ok {
			continue
		}
		handler := r.build(config.GetDuration(wcfg.Timeout))
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), r.taskType, wcfg, handler, log, obs))
	}
	log.Info("Workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health & Metrics Server ---
	checks := conns.Checks()
	checks["zeebe"] = zeebe.HealthCheck
	healthSrv := &http.Server{
		Addr:              cfg.Server.MetricsAddress,
		Handler:           healthMux(checks, len(workers)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"address": healthSrv.Addr})
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("Shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("Health server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("Worker manager stopped gracefully", nil)
}

// workerConfig merges the YAML worker settings with the registry entry.
// Workers that are disabled, unregistered or not yet implemented are skipped.
func workerConfig(cfg *config.Config, reg *registry.ActivityRegistry, taskType string, log logger.Logger) (config.WorkerConfig, bool) {
	wcfg := config.GetWorkerConfig(cfg, taskType)
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return wcfg, false
	}

	activity, ok := reg.FindByTaskType(taskType)
	if !ok {
		log.Warn("worker not in activity registry, skipping", map[string]interface{}{"taskType": taskType})
		return wcfg, false
	}
	if !activity.Ready() {
		log.Warn("activity not ready, skipping", map[string]interface{}{
			"taskType": taskType,
			"status":   activity.ImplementationStatus,
		})
		return wcfg, false
	}

	if !activity.InWorkflow(camunda.PlanTripProcessID) {
		log.Warn("activity not part of the deployed process, skipping", map[string]interface{}{"taskType": taskType})
		return wcfg, false
	}

	if _, configured := cfg.Workers[taskType]; !configured {
		if d := activity.TimeoutDuration(); d > 0 {
			wcfg.Timeout = int(d / time.Millisecond)
		}
		if activity.Retries > 0 {
			wcfg.MaxRetries = activity.Retries
		}
	}
	return wcfg, true
}

func healthMux(checks map[string]func(context.Context) error, workers int) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"workers": workers,
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status, code := "ready", http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status, code = "not ready", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		writeJSON(w, code, map[string]interface{}{"status": status, "checks": results})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
