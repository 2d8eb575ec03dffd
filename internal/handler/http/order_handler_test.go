package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	orderHandler "github.com/vasiliy-maslov/quickorder/internal/handler/http"
	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/order"
	"github.com/vasiliy-maslov/quickorder/internal/storage"
	"github.com/vasiliy-maslov/quickorder/internal/storage/gateway"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, in order.CreateInput) (gateway.Result[*model.Order], error) {
	args := m.Called(ctx, in)
	return args.Get(0).(gateway.Result[*model.Order]), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id string) (gateway.Result[*model.Order], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(gateway.Result[*model.Order]), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, statuses []model.OrderStatus) (gateway.Result[[]model.Order], error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).(gateway.Result[[]model.Order]), args.Error(1)
}

func (m *MockOrderService) ListActive(ctx context.Context) (gateway.Result[[]model.Order], error) {
	args := m.Called(ctx)
	return args.Get(0).(gateway.Result[[]model.Order]), args.Error(1)
}

func (m *MockOrderService) SetStatus(ctx context.Context, id string, status model.OrderStatus) (gateway.Result[*model.Order], error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(gateway.Result[*model.Order]), args.Error(1)
}

func (m *MockOrderService) Advance(ctx context.Context, id string) (gateway.Result[*model.Order], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(gateway.Result[*model.Order]), args.Error(1)
}

func (m *MockOrderService) DeleteOrders(ctx context.Context, ids []string) (gateway.Result[[]string], error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(gateway.Result[[]string]), args.Error(1)
}

func (m *MockOrderService) ResetCounter() {
	m.Called()
}

type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) Call(ctx context.Context, tableNumber int, message string, kind model.RequestType) (gateway.Result[*model.ServiceRequest], error) {
	args := m.Called(ctx, tableNumber, message, kind)
	return args.Get(0).(gateway.Result[*model.ServiceRequest]), args.Error(1)
}

func (m *MockRequestService) List(ctx context.Context, status model.RequestStatus) (gateway.Result[[]model.ServiceRequest], error) {
	args := m.Called(ctx, status)
	return args.Get(0).(gateway.Result[[]model.ServiceRequest]), args.Error(1)
}

func (m *MockRequestService) Resolve(ctx context.Context, id string) (gateway.Result[*model.ServiceRequest], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(gateway.Result[*model.ServiceRequest]), args.Error(1)
}

func newOrderRouter(orders *MockOrderService, requests *MockRequestService) chi.Router {
	router := chi.NewRouter()
	orderHandler.NewOrderHandler(orders, requests).RegisterRoutes(router)
	return router
}

func serve(t *testing.T, router http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func intPtr(v int) *int { return &v }

func TestOrderHandler_handleCreateOrder_Success(t *testing.T) {
	mockService := new(MockOrderService)
	router := newOrderRouter(mockService, new(MockRequestService))

	requestDTO := orderHandler.CreateOrderRequest{
		TableNumber: intPtr(4),
		Items: []orderHandler.OrderItemRequest{
			{ProductID: "p1", Name: "Koshari", Price: 60, Quantity: 2, Options: []orderHandler.OptionRequest{{Name: "Extra sauce", Price: 5}}},
			{ProductID: "p2", Name: "Tea", Price: 30, Quantity: 1},
		},
		TotalAmount:   160,
		PaymentMethod: "cash",
	}

	created := &model.Order{
		ID:            "mock-order-1",
		OrderNumber:   7,
		TableNumber:   4,
		TotalAmount:   160,
		Status:        model.StatusPending,
		PaymentMethod: model.PaymentCash,
		CreatedAt:     time.Now().Truncate(time.Second),
	}

	mockService.On("CreateOrder", mock.Anything, mock.MatchedBy(func(in order.CreateInput) bool {
		return in.TableNumber != nil && *in.TableNumber == 4 &&
			len(in.Items) == 2 &&
			in.Items[0].Options[0] == model.Option{Name: "Extra sauce", Price: 5} &&
			in.TotalAmount == 160 &&
			in.PaymentMethod == model.PaymentCash
	})).Return(gateway.Result[*model.Order]{Value: created, Source: gateway.SourceFallback}, nil).Once()

	rr := serve(t, router, http.MethodPost, "/orders", requestDTO)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "fallback", rr.Header().Get(orderHandler.DataSourceHeader))

	var actual model.Order
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&actual))
	assert.Equal(t, created.ID, actual.ID)
	assert.Equal(t, 7, actual.OrderNumber)
	assert.Equal(t, model.StatusPending, actual.Status)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_handleCreateOrder_BadPayload(t *testing.T) {
	tests := []struct {
		name      string
		body      interface{}
		wantField string
	}{
		{
			name:      "no_items",
			body:      orderHandler.CreateOrderRequest{TableNumber: intPtr(1), PaymentMethod: "cash"},
			wantField: "items",
		},
		{
			name: "zero_quantity",
			body: orderHandler.CreateOrderRequest{
				TableNumber:   intPtr(1),
				Items:         []orderHandler.OrderItemRequest{{Name: "Tea", Price: 5}},
				PaymentMethod: "cash",
			},
			wantField: "items[0].quantity",
		},
		{
			name: "unknown_payment_method",
			body: orderHandler.CreateOrderRequest{
				TableNumber:   intPtr(1),
				Items:         []orderHandler.OrderItemRequest{{Name: "Tea", Price: 5, Quantity: 1}},
				PaymentMethod: "barter",
			},
			wantField: "paymentMethod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			router := newOrderRouter(mockService, new(MockRequestService))

			rr := serve(t, router, http.MethodPost, "/orders", tt.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)

			var resp orderHandler.ValidationErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, "Validation failed", resp.Error)
			assert.Contains(t, resp.Details, tt.wantField)
			mockService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
		})
	}

	t.Run("unknown_field", func(t *testing.T) {
		mockService := new(MockOrderService)
		router := newOrderRouter(mockService, new(MockRequestService))

		rr := serve(t, router, http.MethodPost, "/orders", `{"items":[],"coupon":"FREE"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})
}

func TestOrderHandler_handleCreateOrder_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "validation",
			err:      fmt.Errorf("service: failed to create order: %w", storage.Invalid("tableId", "missing table info")),
			wantCode: http.StatusBadRequest,
			wantBody: "tableId: missing table info",
		},
		{
			name:     "both_backends_down",
			err:      &storage.FatalError{Op: "CreateOrder", Durable: errors.New("conn refused"), Fallback: errors.New("disk full")},
			wantCode: http.StatusInternalServerError,
			wantBody: "Failed to create order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			router := newOrderRouter(mockService, new(MockRequestService))

			mockService.On("CreateOrder", mock.Anything, mock.AnythingOfType("order.CreateInput")).
				Return(gateway.Result[*model.Order]{}, tt.err).
				Once()

			rr := serve(t, router, http.MethodPost, "/orders", orderHandler.CreateOrderRequest{
				Items:         []orderHandler.OrderItemRequest{{Name: "Tea", Price: 5, Quantity: 1}},
				PaymentMethod: "card",
			})
			require.Equal(t, tt.wantCode, rr.Code)

			var resp map[string]string
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.wantBody, resp["error"])
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_handleListOrders_StatusFilter(t *testing.T) {
	mockService := new(MockOrderService)
	router := newOrderRouter(mockService, new(MockRequestService))

	want := []model.OrderStatus{model.StatusPending, model.StatusReady, model.StatusServed}
	mockService.On("ListOrders", mock.Anything, want).
		Return(gateway.Result[[]model.Order]{Value: []model.Order{{ID: "a"}}, Source: gateway.SourceDurable}, nil).
		Once()

	rr := serve(t, router, http.MethodGet, "/orders?status=pending,ready&status=served", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "durable", rr.Header().Get(orderHandler.DataSourceHeader))

	var orders []model.Order
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&orders))
	assert.Len(t, orders, 1)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_handleGetOrder_NotFound(t *testing.T) {
	mockService := new(MockOrderService)
	router := newOrderRouter(mockService, new(MockRequestService))

	mockService.On("GetOrder", mock.Anything, "missing").
		Return(gateway.Result[*model.Order]{}, fmt.Errorf("service: failed to fetch order missing: %w", storage.ErrNotFound)).
		Once()

	rr := serve(t, router, http.MethodGet, "/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_handleAdvance(t *testing.T) {
	tests := []struct {
		name     string
		result   gateway.Result[*model.Order]
		err      error
		wantCode int
	}{
		{
			name:     "success",
			result:   gateway.Result[*model.Order]{Value: &model.Order{ID: "o1", Status: model.StatusPreparing}, Source: gateway.SourceDurable},
			wantCode: http.StatusOK,
		},
		{
			name:     "not_found",
			err:      fmt.Errorf("service: failed to get order for advance: %w", storage.ErrNotFound),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "terminal",
			err:      fmt.Errorf("service: order o1 in status served: %w", order.ErrCannotAdvance),
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			router := newOrderRouter(mockService, new(MockRequestService))

			mockService.On("Advance", mock.Anything, "o1").Return(tt.result, tt.err).Once()

			rr := serve(t, router, http.MethodPost, "/kitchen/orders/o1/advance", nil)
			assert.Equal(t, tt.wantCode, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_handleSetStatus(t *testing.T) {
	t.Run("any_known_status", func(t *testing.T) {
		mockService := new(MockOrderService)
		router := newOrderRouter(mockService, new(MockRequestService))

		mockService.On("SetStatus", mock.Anything, "o1", model.StatusPaid).
			Return(gateway.Result[*model.Order]{Value: &model.Order{ID: "o1", Status: model.StatusPaid}, Source: gateway.SourceFallback}, nil).
			Once()

		rr := serve(t, router, http.MethodPut, "/kitchen/orders", orderHandler.SetStatusRequest{OrderID: "o1", Status: "paid"})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "fallback", rr.Header().Get(orderHandler.DataSourceHeader))
		mockService.AssertExpectations(t)
	})

	t.Run("unknown_status", func(t *testing.T) {
		mockService := new(MockOrderService)
		router := newOrderRouter(mockService, new(MockRequestService))

		rr := serve(t, router, http.MethodPut, "/kitchen/orders", orderHandler.SetStatusRequest{OrderID: "o1", Status: "lost"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderHandler_handleDeleteOrders(t *testing.T) {
	t.Run("missing_id", func(t *testing.T) {
		mockService := new(MockOrderService)
		router := newOrderRouter(mockService, new(MockRequestService))

		rr := serve(t, router, http.MethodDelete, "/orders", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("partial", func(t *testing.T) {
		mockService := new(MockOrderService)
		router := newOrderRouter(mockService, new(MockRequestService))

		mockService.On("DeleteOrders", mock.Anything, []string{"a", "b"}).
			Return(gateway.Result[[]string]{Value: []string{"a"}, Source: gateway.SourceDurable}, nil).
			Once()

		rr := serve(t, router, http.MethodDelete, "/orders?id=a&id=b", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp orderHandler.DeleteOrdersResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, []string{"a"}, resp.Deleted)
		mockService.AssertExpectations(t)
	})

	t.Run("none_found", func(t *testing.T) {
		mockService := new(MockOrderService)
		router := newOrderRouter(mockService, new(MockRequestService))

		mockService.On("DeleteOrders", mock.Anything, []string{"x"}).
			Return(gateway.Result[[]string]{}, fmt.Errorf("service: none of 1 orders found: %w", storage.ErrNotFound)).
			Once()

		rr := serve(t, router, http.MethodDelete, "/orders?id=x", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestOrderHandler_handleResetCounter(t *testing.T) {
	mockService := new(MockOrderService)
	router := newOrderRouter(mockService, new(MockRequestService))

	mockService.On("ResetCounter").Return().Once()

	rr := serve(t, router, http.MethodPost, "/admin/reset-counter", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_ServiceRequests(t *testing.T) {
	t.Run("create_defaults_type", func(t *testing.T) {
		mockRequests := new(MockRequestService)
		router := newOrderRouter(new(MockOrderService), mockRequests)

		mockRequests.On("Call", mock.Anything, 3, "", model.RequestType("")).
			Return(gateway.Result[*model.ServiceRequest]{
				Value:  &model.ServiceRequest{ID: "req-1", TableNumber: 3, Message: model.DefaultRequestMessage, Type: model.RequestGeneral, Status: model.RequestPending},
				Source: gateway.SourceFallback,
			}, nil).
			Once()

		rr := serve(t, router, http.MethodPost, "/service-requests", orderHandler.ServiceRequestRequest{TableNumber: 3})
		require.Equal(t, http.StatusCreated, rr.Code)

		var got model.ServiceRequest
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, model.RequestGeneral, got.Type)
		mockRequests.AssertExpectations(t)
	})

	t.Run("list_pending", func(t *testing.T) {
		mockRequests := new(MockRequestService)
		router := newOrderRouter(new(MockOrderService), mockRequests)

		mockRequests.On("List", mock.Anything, model.RequestPending).
			Return(gateway.Result[[]model.ServiceRequest]{Value: []model.ServiceRequest{}, Source: gateway.SourceFallback}, nil).
			Once()

		rr := serve(t, router, http.MethodGet, "/service-requests?status=pending", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
		mockRequests.AssertExpectations(t)
	})

	t.Run("only_resolved_transition", func(t *testing.T) {
		mockRequests := new(MockRequestService)
		router := newOrderRouter(new(MockOrderService), mockRequests)

		rr := serve(t, router, http.MethodPut, "/service-requests", orderHandler.ResolveServiceRequestRequest{ID: "req-1", Status: "pending"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockRequests.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("resolve_unknown", func(t *testing.T) {
		mockRequests := new(MockRequestService)
		router := newOrderRouter(new(MockOrderService), mockRequests)

		mockRequests.On("Resolve", mock.Anything, "req-9").
			Return(gateway.Result[*model.ServiceRequest]{}, storage.ErrNotFound).
			Once()

		rr := serve(t, router, http.MethodPut, "/service-requests", orderHandler.ResolveServiceRequestRequest{ID: "req-9", Status: "resolved"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
