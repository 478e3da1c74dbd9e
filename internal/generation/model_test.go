package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"planmytrip/internal/common/config"
	commonhttp "planmytrip/internal/common/http"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusBadRequest, KindRejected},
		{http.StatusUnauthorized, KindRejected},
		{http.StatusForbidden, KindRejected},
		{http.StatusNotFound, KindRejected},
		{http.StatusUnprocessableEntity, KindRejected},
		{http.StatusRequestTimeout, KindTransient},
		{http.StatusTooManyRequests, KindTransient},
		{http.StatusInternalServerError, KindTransient},
		{http.StatusServiceUnavailable, KindTransient},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, KindForStatus(tt.status))
		})
	}
}

// ==========================
// OpenAI-compatible client
// ==========================

func TestOpenAIClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.1-8b-instant", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		assert.InDelta(t, 0.1, req.Temperature, 1e-9)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(commonhttp.NewClientFrom(srv.Client()), srv.URL+"/", "gsk-test", "llama-3.1-8b-instant")
	out, err := c.Complete(context.Background(), "sys", "user", CompletionOptions{Temperature: 0.1, JSONMode: true})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
}

func TestOpenAIClient_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		status   int
		wantKind ErrorKind
	}{
		{http.StatusBadRequest, KindRejected},
		{http.StatusUnauthorized, KindRejected},
		{http.StatusTooManyRequests, KindTransient},
		{http.StatusBadGateway, KindTransient},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
			}))
			defer srv.Close()

			c := NewOpenAIClient(commonhttp.NewClientFrom(srv.Client()), srv.URL, "k", "m")
			_, err := c.Complete(context.Background(), "s", "u", CompletionOptions{})

			var me *ModelError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.wantKind, me.Kind)
			assert.Equal(t, tt.status, me.StatusCode)
			assert.Contains(t, me.Error(), "nope")
		})
	}
}

func TestOpenAIClient_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewOpenAIClient(commonhttp.NewClient(time.Second), url, "k", "m")
	_, err := c.Complete(context.Background(), "s", "u", CompletionOptions{})

	var me *ModelError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindTransient, me.Kind)
	assert.False(t, IsRejected(err))
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(commonhttp.NewClientFrom(srv.Client()), srv.URL, "k", "m")
	_, err := c.Complete(context.Background(), "s", "u", CompletionOptions{})

	var me *ModelError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindTransient, me.Kind)
}

// ==========================
// Gemini classification
// ==========================

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
		wantCode int
	}{
		{"blocked", &genai.BlockedError{}, KindRejected, 0},
		{"api 400", fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 400, Message: "API key not valid"}), KindRejected, 400},
		{"api 503", &googleapi.Error{Code: 503}, KindTransient, 503},
		{"grpc permission", status.Error(codes.PermissionDenied, "denied"), KindRejected, int(codes.PermissionDenied)},
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), KindTransient, int(codes.Unavailable)},
		{"plain", errors.New("connection reset"), KindTransient, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			me := classifyGeminiError(tt.err)
			assert.Equal(t, tt.wantKind, me.Kind)
			assert.Equal(t, tt.wantCode, me.StatusCode)
			assert.Equal(t, ProviderGemini, me.Provider)
		})
	}
}

func TestNewModelClient(t *testing.T) {
	c, err := NewModelClient(context.Background(), config.LLMConfig{Provider: "openai", APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, c.Provider())

	_, err = NewModelClient(context.Background(), config.LLMConfig{Provider: "ollama"})
	assert.ErrorContains(t, err, "ollama")
}
