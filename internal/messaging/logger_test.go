package messaging_test

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/therealhieu/wee/internal/messaging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := messaging.NewZapLogger(zap.New(core)).With(watermill.LogFields{"topic": "url.shortened"})

	logger.Info("subscribed", watermill.LogFields{"consumer_group": "analytics"})
	logger.Trace("ack", nil)
	logger.Error("handler failed", errors.New("boom"), nil)

	entries := logs.AllUntimed()
	assert.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "url.shortened", entries[0].ContextMap()["topic"])
	assert.Equal(t, "analytics", entries[0].ContextMap()["consumer_group"])

	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
}
