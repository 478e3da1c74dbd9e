package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestZapAdapter_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	scoped := log.WithFields(map[string]interface{}{"taskType": "generate-itinerary"})
	scoped.Warn("attempt failed", map[string]interface{}{
		"attempt": 1,
		"reason":  errors.New("malformed output"),
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "attempt failed", entry.Message)
	assert.Equal(t, zapcore.WarnLevel, entry.Level)

	ctx := entry.ContextMap()
	assert.Equal(t, "generate-itinerary", ctx["taskType"])
	assert.EqualValues(t, 1, ctx["attempt"])
	assert.Equal(t, "malformed output", ctx["reason"])
}

func TestZapAdapter_WithError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core)).WithError(errors.New("boom"))

	log.Debug("hidden", nil)
	log.Error("visible", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "boom", logs.All()[0].ContextMap()["error"])
}

func TestNewStructured_DoesNotPanic(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		log := NewStructured("debug", format)
		assert.NotPanics(t, func() {
			log.Info("hello", map[string]interface{}{"format": format})
		})
	}
	assert.NotPanics(t, func() { NewNoOpLogger().Error("dropped", nil) })
}
