package order

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/storage"
	"github.com/vasiliy-maslov/quickorder/internal/storage/gateway"
)

type RequestStore interface {
	ListServiceRequests(ctx context.Context) (gateway.Result[[]model.ServiceRequest], error)
	CreateServiceRequest(ctx context.Context, r model.ServiceRequest) (gateway.Result[*model.ServiceRequest], error)
	ResolveServiceRequest(ctx context.Context, id string) (gateway.Result[*model.ServiceRequest], error)
}

// RequestService handles waiter calls. They are never stored durably.
type RequestService interface {
	Call(ctx context.Context, tableNumber int, message string, kind model.RequestType) (gateway.Result[*model.ServiceRequest], error)
	// List returns requests newest first, narrowed to status unless it is
	// empty.
	List(ctx context.Context, status model.RequestStatus) (gateway.Result[[]model.ServiceRequest], error)
	Resolve(ctx context.Context, id string) (gateway.Result[*model.ServiceRequest], error)
}

type requestService struct {
	store RequestStore
}

func NewRequestService(store RequestStore) RequestService {
	return &requestService{store: store}
}

func (s *requestService) Call(ctx context.Context, tableNumber int, message string, kind model.RequestType) (gateway.Result[*model.ServiceRequest], error) {
	if tableNumber < 1 {
		return gateway.Result[*model.ServiceRequest]{}, storage.Invalid("tableNumber", "is required")
	}
	if strings.TrimSpace(message) == "" {
		message = model.DefaultRequestMessage
	}
	if kind == "" {
		kind = model.RequestGeneral
	}
	if kind != model.RequestGeneral && kind != model.RequestWaiterCall {
		return gateway.Result[*model.ServiceRequest]{}, storage.Invalid("type", "unknown request type "+string(kind))
	}

	res, err := s.store.CreateServiceRequest(ctx, model.ServiceRequest{
		TableNumber: tableNumber,
		Message:     message,
		Type:        kind,
	})
	if err != nil {
		return res, fmt.Errorf("service: failed to create service request: %w", err)
	}
	log.Info().Str("request_id", res.Value.ID).Str("table", model.TableLabel(tableNumber)).Msg("service: waiter called")
	return res, nil
}

func (s *requestService) List(ctx context.Context, status model.RequestStatus) (gateway.Result[[]model.ServiceRequest], error) {
	if status != "" && status != model.RequestPending && status != model.RequestResolved {
		return gateway.Result[[]model.ServiceRequest]{}, storage.Invalid("status", "unknown request status "+string(status))
	}
	res, err := s.store.ListServiceRequests(ctx)
	if err != nil {
		return res, fmt.Errorf("service: failed to list service requests: %w", err)
	}
	out := make([]model.ServiceRequest, 0, len(res.Value))
	for i := len(res.Value) - 1; i >= 0; i-- {
		if status == "" || res.Value[i].Status == status {
			out = append(out, res.Value[i])
		}
	}
	// Stored in arrival order; the reversal above keeps ties newest first.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	res.Value = out
	return res, nil
}

func (s *requestService) Resolve(ctx context.Context, id string) (gateway.Result[*model.ServiceRequest], error) {
	res, err := s.store.ResolveServiceRequest(ctx, id)
	if err != nil {
		return res, fmt.Errorf("service: failed to resolve service request %s: %w", id, err)
	}
	log.Info().Str("request_id", id).Msg("service: service request resolved")
	return res, nil
}
