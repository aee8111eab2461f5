package retry

import (
	"context"
	"time"
)

// SleepFunc pauses between attempts. Injectable so tests run without
// real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

// DefaultSleep honors context cancellation while waiting.
func DefaultSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Policy is a bounded fixed-delay retry. Not exponential backoff, no
// jitter: the only use case is tolerating read-after-write lag right
// after sign-in, where a couple of short fixed waits is enough.
type Policy struct {
	Attempts int
	Delay    time.Duration
	Sleep    SleepFunc
}

// DefaultPolicy matches the consistency window seen after a
// redirect-based sign-in.
func DefaultPolicy() Policy {
	return Policy{
		Attempts: 3,
		Delay:    500 * time.Millisecond,
		Sleep:    DefaultSleep,
	}
}

// Do runs fn up to p.Attempts times, sleeping p.Delay between failed
// attempts. The last error is returned once attempts are exhausted.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = DefaultSleep
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if err := sleep(ctx, p.Delay); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
	}

	return lastErr
}
