package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmytrip/internal/common/config"
	"planmytrip/internal/common/logger"
	"planmytrip/pkg/registry"
)

func createTestRegistry() *registry.ActivityRegistry {
	return &registry.ActivityRegistry{Activities: []registry.Activity{
		{ID: "generate-itinerary", TaskType: "generate-itinerary", ImplementationStatus: registry.StatusCompleted, Timeout: "3m", Retries: 4, Workflows: []string{"plan-trip"}},
		{ID: "send-itinerary-email", TaskType: "send-itinerary-email", ImplementationStatus: registry.StatusPlanned, Workflows: []string{"plan-trip"}},
		{ID: "save-draft", TaskType: "save-draft", ImplementationStatus: registry.StatusVerified, Workflows: []string{"draft-trip"}},
	}}
}

func TestWorkerConfig(t *testing.T) {
	log := logger.NewNoOpLogger()
	reg := createTestRegistry()

	t.Run("registry timeout used when unconfigured", func(t *testing.T) {
		wcfg, ok := workerConfig(&config.Config{}, reg, "generate-itinerary", log)
		require.True(t, ok)
		assert.Equal(t, 180000, wcfg.Timeout)
		assert.Equal(t, 4, wcfg.MaxRetries)
	})

	t.Run("yaml settings win", func(t *testing.T) {
		cfg := &config.Config{Workers: map[string]config.WorkerConfig{
			"generate-itinerary": {Enabled: true, Timeout: 90000, MaxJobsActive: 2},
		}}
		wcfg, ok := workerConfig(cfg, reg, "generate-itinerary", log)
		require.True(t, ok)
		assert.Equal(t, 90000, wcfg.Timeout)
		assert.Equal(t, 2, wcfg.MaxJobsActive)
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := &config.Config{Workers: map[string]config.WorkerConfig{"generate-itinerary": {Enabled: false}}}
		_, ok := workerConfig(cfg, reg, "generate-itinerary", log)
		assert.False(t, ok)
	})

	t.Run("not ready", func(t *testing.T) {
		_, ok := workerConfig(&config.Config{}, reg, "send-itinerary-email", log)
		assert.False(t, ok)
	})

	t.Run("other process", func(t *testing.T) {
		_, ok := workerConfig(&config.Config{}, reg, "save-draft", log)
		assert.False(t, ok)
	})

	t.Run("unregistered", func(t *testing.T) {
		_, ok := workerConfig(&config.Config{}, reg, "save-itinerary", log)
		assert.False(t, ok)
	})
}

func TestHealthMux(t *testing.T) {
	checks := map[string]func(context.Context) error{
		"postgres": func(context.Context) error { return nil },
		"zeebe":    func(context.Context) error { return errors.New("unavailable") },
	}
	mux := healthMux(checks, 3)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"workers":3`)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body.Status)
	assert.Equal(t, "ok", body.Checks["postgres"])
	assert.Equal(t, "unavailable", body.Checks["zeebe"])

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
