package services_test

import (
	"fmt"
	"testing"

	"binance-trade-bot/domain"
	"binance-trade-bot/services"

	"github.com/stretchr/testify/assert"
)

type testEventLogLogger struct {
	lines []string
}

func (logger *testEventLogLogger) Printf(format string, args ...interface{}) {
	logger.lines = append(logger.lines, fmt.Sprintf(format, args...))
}

func (logger *testEventLogLogger) Errorf(format string, args ...interface{}) {
	logger.lines = append(logger.lines, fmt.Sprintf(format, args...))
}

func TestEventLogRecordsSeverity(t *testing.T) {
	logger := &testEventLogLogger{}
	eventLog := services.NewEventLog(10, logger)

	eventLog.Info("Engine started")
	eventLog.Error("Buy order failed")

	events := eventLog.Recent()
	assert.Len(t, events, 2)
	assert.Equal(t, "Engine started", events[0].Message)
	assert.Equal(t, domain.SeverityInfo, events[0].Severity)
	assert.Equal(t, domain.SeverityError, events[1].Severity)
	assert.Equal(t, false, events[0].Timestamp.IsZero())

	// Every entry is mirrored to the process logger.
	assert.Equal(t, []string{"Engine started", "Buy order failed"}, logger.lines)
}

func TestEventLogDropsOldestBeyondLimit(t *testing.T) {
	eventLog := services.NewEventLog(3, &testEventLogLogger{})

	for i := 0; i < 5; i++ {
		eventLog.Info(fmt.Sprintf("event %d", i))
	}

	events := eventLog.Recent()
	assert.Len(t, events, 3)
	assert.Equal(t, "event 2", events[0].Message)
	assert.Equal(t, "event 4", events[2].Message)
}
