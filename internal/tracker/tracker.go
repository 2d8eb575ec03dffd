// Package tracker follows one order's status for the customer. It only
// reads.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/quickorder/internal/client"
	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/poll"
)

// DefaultInterval is the status poll period.
const DefaultInterval = 3 * time.Second

type OrderGetter interface {
	GetOrder(ctx context.Context, id string) (*model.Order, error)
}

// Finished reports whether the customer has nothing left to wait for.
func Finished(status model.OrderStatus) bool {
	return status == model.StatusServed || status == model.StatusPaid
}

// Watch polls the order every interval and calls onChange whenever its
// status differs from the last one seen. It returns the final order once it
// is served or paid. Transient fetch errors are logged and polling goes on;
// an order the server no longer knows ends the watch with that error.
// Cancelling ctx returns the last order seen together with ctx's error.
func Watch(ctx context.Context, api OrderGetter, id string, interval time.Duration, onChange func(*model.Order)) (*model.Order, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()

	var last *model.Order
	var fatal error
	poll.Every(watchCtx, interval,
		func(ctx context.Context) (*model.Order, error) { return api.GetOrder(ctx, id) },
		func(o *model.Order, err error) {
			if err != nil {
				if errors.Is(err, client.ErrNotFound) {
					fatal = err
					stop()
					return
				}
				log.Warn().Err(err).Str("order_id", id).Msg("tracker: status fetch failed")
				return
			}
			if last == nil || last.Status != o.Status {
				log.Debug().Str("order_id", id).Stringer("status", o.Status).Msg("tracker: status changed")
				if onChange != nil {
					onChange(o)
				}
			}
			last = o
			if Finished(o.Status) {
				stop()
			}
		},
	)

	switch {
	case fatal != nil:
		return last, fatal
	case last != nil && Finished(last.Status):
		return last, nil
	default:
		return last, ctx.Err()
	}
}
