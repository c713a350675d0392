package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogNotifierLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	notifier := NewLogNotifier(zap.New(core))

	notifier.Notify("saved", LevelSuccess)
	notifier.Notify("careful", LevelWarning)
	notifier.Notify("failed", LevelError)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "failed", entries[2].Message)
}

func TestLogAnalyticsRecordsEvent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	analytics := NewLogAnalytics(zap.New(core))

	analytics.Push(Event{Name: EventButtonClick, WidgetType: WidgetAction, WidgetName: "open_wizard", Resource: "patients"})

	entries := logs.FilterField(zap.String("widget", "open_wizard")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "patients", entries[0].ContextMap()["resource"])
}

func TestNilLoggersFallBackToNop(t *testing.T) {
	assert.NotPanics(t, func() {
		NewLogNotifier(nil).Notify("x", LevelInfo)
		NewLogAnalytics(nil).Push(Event{})
		Nop{}.Notify("x", LevelInfo)
		Nop{}.Push(Event{})
	})
}
