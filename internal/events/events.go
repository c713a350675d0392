// Package events defines the collaborators that surface outcomes to users
// (notifications) and to product analytics.
package events

import "go.uber.org/zap"

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notifier surfaces a message to the user.
type Notifier interface {
	Notify(message string, level Level)
}

// EventName names an analytics event.
type EventName string

const (
	EventButtonClick EventName = "button_click"
	EventInputChange EventName = "input_change"
	EventPageChange  EventName = "page_change"
)

// WidgetType classifies the widget that produced an event.
type WidgetType string

const (
	WidgetAction WidgetType = "action"
	WidgetInput  WidgetType = "input"
	WidgetTable  WidgetType = "table"
)

// Event describes one user interaction.
type Event struct {
	Name       EventName  `json:"eventName"`
	WidgetType WidgetType `json:"widgetType"`
	WidgetName string     `json:"widgetName,omitempty"`
	ViewType   string     `json:"viewType,omitempty"`
	Resource   string     `json:"resource,omitempty"`
	Value      any        `json:"value,omitempty"`
}

// Analytics receives events. Push must not block the caller.
type Analytics interface {
	Push(event Event)
}

// Nop discards notifications and events.
type Nop struct{}

func (Nop) Notify(string, Level) {}
func (Nop) Push(Event)           {}

// LogNotifier writes notifications to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by logger.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the message at a level matching the notification.
func (n *LogNotifier) Notify(message string, level Level) {
	field := zap.String("level", string(level))
	switch level {
	case LevelError:
		n.logger.Error(message, field)
	case LevelWarning:
		n.logger.Warn(message, field)
	default:
		n.logger.Info(message, field)
	}
}

// LogAnalytics writes events to a zap logger at debug level.
type LogAnalytics struct {
	logger *zap.Logger
}

// NewLogAnalytics creates an analytics sink backed by logger.
func NewLogAnalytics(logger *zap.Logger) *LogAnalytics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogAnalytics{logger: logger}
}

// Push logs the event.
func (a *LogAnalytics) Push(event Event) {
	a.logger.Debug("analytics event",
		zap.String("event", string(event.Name)),
		zap.String("widgetType", string(event.WidgetType)),
		zap.String("widget", event.WidgetName),
		zap.String("view", event.ViewType),
		zap.String("resource", event.Resource),
		zap.Any("value", event.Value),
	)
}
