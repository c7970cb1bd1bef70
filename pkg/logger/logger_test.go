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
		{"WARN", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"garbage", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestZapLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	log.Debugf("debug %d", 1)
	log.Infof("info %s", "two")
	log.Warnf("warn")
	log.Errorf(errors.New("boom"), "failed to %s", "persist")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "debug 1", entries[0].Message)
	assert.Equal(t, "info two", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "failed to persist", entries[3].Message)
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
}

func TestNewZapLogger_DefaultConfig(t *testing.T) {
	log := NewZapLogger(nil)
	require.NotNil(t, log)
	log.Infof("started")
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.Errorf(errors.New("x"), "ignored")
	})
}
