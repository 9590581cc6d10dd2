package events

import (
	"log/slog"
)

// LogObserver writes every event to a structured logger.
type LogObserver struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogObserver creates an observer logging at level.
func NewLogObserver(logger *slog.Logger, level slog.Level) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger.With("component", "events"), level: level}
}

// OnEvent logs the event type and payload.
func (o *LogObserver) OnEvent(event Event) error {
	o.logger.Log(event.Context, o.level, "event", "type", event.Type, "data", event.Data)
	return nil
}

// GetName returns the observer's name.
func (o *LogObserver) GetName() string {
	return "LogObserver"
}

// ShouldHandle accepts every event.
func (o *LogObserver) ShouldHandle(string) bool {
	return true
}

// ObserverFunc adapts a function to the Observer interface. An empty
// Types list receives every event.
type ObserverFunc struct {
	Name  string
	Types []string
	Fn    func(Event) error
}

// OnEvent calls Fn.
func (o ObserverFunc) OnEvent(event Event) error {
	return o.Fn(event)
}

// GetName returns Name.
func (o ObserverFunc) GetName() string {
	return o.Name
}

// ShouldHandle reports whether eventType is in Types.
func (o ObserverFunc) ShouldHandle(eventType string) bool {
	if len(o.Types) == 0 {
		return true
	}
	for _, t := range o.Types {
		if t == eventType {
			return true
		}
	}
	return false
}
