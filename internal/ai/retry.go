package ai

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultMaxAttempts = 3
	baseRetryDelay     = time.Second
)

// RetryObserver is notified after every failed attempt, before the
// backoff sleep.
type RetryObserver func(attempt int, err error)

// validatable payload types get a structural check after parsing; a
// failed check counts as a parse failure and is retried.
type validatable interface {
	Validate() error
}

// GenerateParsed runs generate-then-parse under the retry policy: up to
// maxAttempts attempts with exponential backoff (base delay doubled per
// attempt). Connectivity and auth failures are never retried; a parse
// failure is, because re-prompting the same input often yields
// conforming output. Returns the parsed value, the number of attempts
// consumed, and the terminal error if all attempts failed.
func GenerateParsed[T any](
	ctx context.Context,
	gw Gateway,
	prompt string,
	opts GenerateOptions,
	maxAttempts int,
	observer RetryObserver,
) (T, int, error) {
	var zero T
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := gw.Generate(ctx, prompt, opts)
		if err == nil {
			var parsed T
			parsed, err = Extract[T](raw)
			if err == nil {
				if v, ok := any(&parsed).(validatable); ok {
					if verr := v.Validate(); verr != nil {
						err = fmt.Errorf("%w: %v", ErrNoJSONFound, verr)
					}
				}
				if err == nil {
					return parsed, attempt, nil
				}
			}
		}

		lastErr = err
		if IsFatal(err) {
			return zero, attempt, err
		}
		if observer != nil {
			observer(attempt, err)
		}
		if attempt == maxAttempts {
			break
		}

		delay := baseRetryDelay * (1 << (attempt - 1))
		select {
		case <-ctx.Done():
			return zero, attempt, fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return zero, maxAttempts, fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
}
