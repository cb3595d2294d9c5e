package messaging_test

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/serroba/redirect-gateway/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := messaging.NewZapLogger(zap.New(core)).With(watermill.LogFields{"topic": "link.issued"})

	logger.Info("subscribed", watermill.LogFields{"consumer": "analytics"})
	logger.Trace("polling", nil)
	logger.Error("ack failed", errors.New("boom"), nil)

	require.Equal(t, 3, logs.Len())

	entries := logs.All()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "link.issued", entries[0].ContextMap()["topic"])
	assert.Equal(t, "analytics", entries[0].ContextMap()["consumer"])
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
}
