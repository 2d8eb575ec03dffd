// Package poll runs a fetch on a fixed interval until its owner cancels.
package poll

import (
	"context"
	"time"
)

type outcome[T any] struct {
	value T
	err   error
}

// Every calls fetch immediately and then once per interval, handing each
// outcome to deliver. It blocks until ctx is cancelled.
//
// A fetch runs on a context detached from ctx's cancellation, bounded by
// interval. Cancelling ctx does not abort a fetch in flight; its outcome is
// dropped and deliver is never called again once Every returns.
func Every[T any](ctx context.Context, interval time.Duration, fetch func(context.Context) (T, error), deliver func(T, error)) {
	if !run(ctx, interval, fetch, deliver) {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !run(ctx, interval, fetch, deliver) {
				return
			}
		}
	}
}

// run performs one fetch and reports whether the owner is still live.
func run[T any](ctx context.Context, interval time.Duration, fetch func(context.Context) (T, error), deliver func(T, error)) bool {
	done := make(chan outcome[T], 1)
	go func() {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), interval)
		defer cancel()
		v, err := fetch(fetchCtx)
		done <- outcome[T]{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return false
	case out := <-done:
		if ctx.Err() != nil {
			return false
		}
		deliver(out.value, out.err)
		return true
	}
}
