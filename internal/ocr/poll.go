package ocr

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PollFunc performs one poll attempt. attempt counts from 1. Returning
// done=true or a non-nil error stops polling.
type PollFunc func(ctx context.Context, attempt int) (done bool, err error)

// Poll calls fn up to attempts times, waiting interval before every call.
//
// It returns nil as soon as fn reports done, fn's error as soon as it fails,
// and ErrTimeout after exactly attempts unsuccessful calls. When ctx ends
// first the error matches both ErrTimeout and ctx.Err().
func Poll(ctx context.Context, attempts int, interval time.Duration, fn PollFunc) error {
	if attempts <= 0 {
		return fmt.Errorf("%w: no poll attempts allowed", ErrTimeout)
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		case <-timer.C:
		}

		done, err := fn(ctx, attempt)
		if err != nil {
			if ctx.Err() != nil && !errors.Is(err, ErrTimeout) {
				return fmt.Errorf("%w: %w", ErrTimeout, err)
			}
			return err
		}
		if done {
			return nil
		}
		timer.Reset(interval)
	}

	return fmt.Errorf("%w after %d attempts", ErrTimeout, attempts)
}
