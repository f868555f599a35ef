package domain

import "time"

type Severity string

const (
	SeverityInfo  = Severity("info")
	SeverityError = Severity("error")
)

// LogEvent is a single entry of the engine's outbound log stream.
type LogEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
}
