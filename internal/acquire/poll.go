package acquire

import (
	"context"
	"errors"
	"time"
)

var errExhausted = errors.New("acquire: poll budget exhausted")

// pollUntil drives a bounded retry loop: run attempt, sleep interval, repeat.
// attempt reports done=true to finish successfully; a non-nil error aborts
// the loop immediately. maxAttempts == 0 means no attempt cap; a zero
// deadline means no wall clock cap. The budget is checked only at the top of
// each iteration, so an attempt already in flight runs to completion.
func pollUntil(ctx context.Context, interval time.Duration, maxAttempts int, deadline time.Time, attempt func() (bool, error)) error {
	for attempts := 0; ; attempts++ {
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return errExhausted
		}
		if maxAttempts > 0 && attempts == maxAttempts {
			return errExhausted
		}

		done, err := attempt()
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
