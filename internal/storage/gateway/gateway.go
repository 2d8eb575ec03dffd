// Package gateway routes every persistence operation to the durable
// backend first and to the in-memory fallback store when that fails.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/quickorder/internal/storage"
)

// Source names the backend that produced a result.
type Source string

const (
	SourceDurable  Source = "durable"
	SourceFallback Source = "fallback"
)

// Result is a value together with the backend that served it.
type Result[T any] struct {
	Value  T
	Source Source
}

// Fallback is the store used when the durable backend fails. It is the
// only home of service requests.
type Fallback interface {
	storage.Backend
	storage.ServiceRequestStore
}

type Gateway struct {
	durable  storage.Backend
	fallback Fallback
}

// New builds a gateway. A nil durable backend means permanent demo mode.
func New(durable storage.Backend, fallback Fallback) *Gateway {
	return &Gateway{durable: durable, fallback: fallback}
}

// DurableHealthy reports whether the durable backend answers its probe.
func (g *Gateway) DurableHealthy(ctx context.Context) bool {
	if g.durable == nil {
		return false
	}
	return g.durable.Ping(ctx) == nil
}

// execute applies the operation's declared policy. Validation errors are
// returned as is from either backend. Not-found from the fallback store
// means the entity exists in neither backend. Any other fallback failure
// becomes a FatalError carrying both causes.
func execute[T any](
	ctx context.Context,
	g *Gateway,
	op string,
	durable func(context.Context, storage.Backend) (T, error),
	fallback func(context.Context, Fallback) (T, error),
) (Result[T], error) {
	policy := policyFor(op)

	if policy == FallbackOnly {
		v, err := fallback(ctx, g.fallback)
		if err != nil {
			return Result[T]{}, err
		}
		return Result[T]{Value: v, Source: SourceFallback}, nil
	}

	durableErr := storage.ErrUnavailable
	if g.durable != nil {
		var v T
		var err error
		if policy == ProbeFirst {
			if perr := g.durable.Ping(ctx); perr != nil {
				err = fmt.Errorf("health check: %w", perr)
			}
		}
		if err == nil {
			v, err = durable(ctx, g.durable)
		}
		switch {
		case err == nil:
			return Result[T]{Value: v, Source: SourceDurable}, nil
		case errors.Is(err, storage.ErrValidation):
			return Result[T]{}, err
		case errors.Is(err, storage.ErrNotFound) && policy != LookupBoth:
			return Result[T]{}, err
		}
		durableErr = err
	}

	if errors.Is(durableErr, storage.ErrNotFound) {
		log.Debug().Str("op", op).Msg("gateway: not found in durable backend, checking fallback store")
	} else {
		log.Warn().Err(durableErr).Str("op", op).Stringer("policy", policy).Msg("gateway: durable backend failed, using fallback store")
	}

	v, err := fallback(ctx, g.fallback)
	switch {
	case err == nil:
		return Result[T]{Value: v, Source: SourceFallback}, nil
	case errors.Is(err, storage.ErrValidation), errors.Is(err, storage.ErrNotFound):
		return Result[T]{}, err
	}

	log.Error().Err(err).AnErr("durable_error", durableErr).Str("op", op).Msg("gateway: fallback store failed")
	return Result[T]{}, &storage.FatalError{Op: op, Durable: durableErr, Fallback: err}
}
