// Package retry bounds re-attempts of transient pipeline faults with
// exponential backoff. Non-transient faults and context cancellation stop
// the loop immediately.
package retry

import (
	"context"
	"time"

	"policyrag/internal/domain/policymodel"
	"policyrag/pkg/logger_i"
)

func Do(ctx context.Context, attempts int, baseDelay time.Duration, log *logger_i.Logger, op func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !policymodel.IsTransient(err) || attempt == attempts {
			return err
		}
		delay := baseDelay << (attempt - 1)
		if log != nil {
			log.Warn("transient failure, backing off", "attempt", attempt, "delay", delay.String(), "error", err)
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
	}
	return err
}
