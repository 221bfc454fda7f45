package acquire

import (
	"fmt"
	"time"
)

// TimeoutError means a polling loop exhausted its attempt budget or hit its
// wall-clock deadline without finding a qualifying message. Terminal; the
// caller decides on cleanup and diagnostics.
type TimeoutError struct {
	Channel  string
	Attempts int
	Waited   time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("acquire: no qualifying %s message after %d attempts", e.Channel, e.Attempts)
	}
	return fmt.Sprintf("acquire: no qualifying %s message within %s", e.Channel, e.Waited)
}

// ExtractionError means a delivered message body contains no 6-digit code.
// Retrying would not change a malformed message, so it is fatal for the
// acquisition attempt.
type ExtractionError struct {
	MessageID string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("acquire: message %s contains no 6-digit code", e.MessageID)
}
