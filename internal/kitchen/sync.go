package kitchen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/poll"
)

// DefaultInterval is the kitchen poll period.
const DefaultInterval = 5 * time.Second

// ErrNotOnBoard is returned for actions on orders or requests the board
// does not show.
var ErrNotOnBoard = errors.New("not on board")

// API is the part of the server the kitchen talks to.
type API interface {
	KitchenOrders(ctx context.Context) ([]model.Order, error)
	ServiceRequests(ctx context.Context, status model.RequestStatus) ([]model.ServiceRequest, error)
	SetStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)
	ResolveServiceRequest(ctx context.Context, id string) (*model.ServiceRequest, error)
}

type snapshot struct {
	orders   []model.Order
	requests []model.ServiceRequest
}

// Syncer owns a Board and keeps it reconciled with the server.
type Syncer struct {
	api      API
	board    *Board
	interval time.Duration
	onUpdate func(View)
}

// NewSyncer builds a syncer. onUpdate, if set, is called with the board
// after every successful refresh.
func NewSyncer(api API, interval time.Duration, onUpdate func(View)) *Syncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Syncer{api: api, board: NewBoard(), interval: interval, onUpdate: onUpdate}
}

func (s *Syncer) Board() *Board {
	return s.board
}

// Run polls until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("kitchen: sync loop started")
	poll.Every(ctx, s.interval, s.fetch, s.apply)
	log.Info().Msg("kitchen: sync loop stopped")
}

// Refresh fetches the authoritative state and replaces the board with it.
func (s *Syncer) Refresh(ctx context.Context) error {
	snap, err := s.fetch(ctx)
	s.apply(snap, err)
	return err
}

// Advance moves an order to its next status on the board at once and then
// writes it. A failed write triggers a full refresh. A successful one does
// not; the next poll reconciles.
func (s *Syncer) Advance(ctx context.Context, id string) (model.OrderStatus, error) {
	next, ok := s.board.Advance(id)
	if !ok {
		return next, fmt.Errorf("kitchen: advance %s: %w", id, ErrNotOnBoard)
	}

	if _, err := s.api.SetStatus(ctx, id, next); err != nil {
		log.Warn().Err(err).Str("order_id", id).Stringer("new_status", next).Msg("kitchen: advance failed, reconciling")
		if rerr := s.Refresh(ctx); rerr != nil {
			log.Error().Err(rerr).Msg("kitchen: reconcile after failed advance failed")
		}
		return next, fmt.Errorf("kitchen: advance %s: %w", id, err)
	}

	log.Info().Str("order_id", id).Stringer("new_status", next).Msg("kitchen: order advanced")
	return next, nil
}

// Resolve removes a service request from the board at once and then
// writes it, with the same reconcile rule as Advance.
func (s *Syncer) Resolve(ctx context.Context, id string) error {
	if !s.board.RemoveRequest(id) {
		return fmt.Errorf("kitchen: resolve %s: %w", id, ErrNotOnBoard)
	}

	if _, err := s.api.ResolveServiceRequest(ctx, id); err != nil {
		log.Warn().Err(err).Str("request_id", id).Msg("kitchen: resolve failed, reconciling")
		if rerr := s.Refresh(ctx); rerr != nil {
			log.Error().Err(rerr).Msg("kitchen: reconcile after failed resolve failed")
		}
		return fmt.Errorf("kitchen: resolve %s: %w", id, err)
	}
	return nil
}

// fetch loads the active orders and pending requests concurrently.
func (s *Syncer) fetch(ctx context.Context) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := s.api.KitchenOrders(gctx)
		if err != nil {
			return fmt.Errorf("fetch orders: %w", err)
		}
		snap.orders = orders
		return nil
	})
	g.Go(func() error {
		requests, err := s.api.ServiceRequests(gctx, model.RequestPending)
		if err != nil {
			return fmt.Errorf("fetch service requests: %w", err)
		}
		snap.requests = requests
		return nil
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

// apply keeps the current board when the fetch failed.
func (s *Syncer) apply(snap snapshot, err error) {
	if err != nil {
		log.Warn().Err(err).Msg("kitchen: refresh failed, keeping current board")
		return
	}
	s.board.Replace(snap.orders, snap.requests)
	if s.onUpdate != nil {
		s.onUpdate(s.board.View())
	}
}
