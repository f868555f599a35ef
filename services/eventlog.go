package services

import (
	"sync"
	"time"

	"binance-trade-bot/domain"
)

type eventLogLogger interface {
	Printf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// EventLog keeps a bounded list of recent engine events for the UI
// collaborator, mirroring every entry to the process logger.
type EventLog struct {
	mu      sync.Mutex
	entries []domain.LogEvent
	limit   int
	logger  eventLogLogger
}

func NewEventLog(limit int, eventLogLogger eventLogLogger) *EventLog {
	return &EventLog{limit: limit, logger: eventLogLogger}
}

func (eventLog *EventLog) Info(message string) {
	eventLog.logger.Printf("%s", message)
	eventLog.append(domain.LogEvent{Timestamp: time.Now(), Message: message, Severity: domain.SeverityInfo})
}

func (eventLog *EventLog) Error(message string) {
	eventLog.logger.Errorf("%s", message)
	eventLog.append(domain.LogEvent{Timestamp: time.Now(), Message: message, Severity: domain.SeverityError})
}

func (eventLog *EventLog) append(event domain.LogEvent) {
	eventLog.mu.Lock()
	defer eventLog.mu.Unlock()

	eventLog.entries = append(eventLog.entries, event)
	if len(eventLog.entries) > eventLog.limit {
		eventLog.entries = eventLog.entries[len(eventLog.entries)-eventLog.limit:]
	}
}

// Recent returns the stored events, newest last.
func (eventLog *EventLog) Recent() []domain.LogEvent {
	eventLog.mu.Lock()
	defer eventLog.mu.Unlock()

	return append([]domain.LogEvent(nil), eventLog.entries...)
}
