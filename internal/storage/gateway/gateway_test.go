package gateway_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/storage"
	"github.com/vasiliy-maslov/quickorder/internal/storage/gateway"
	"github.com/vasiliy-maslov/quickorder/internal/storage/memory"
	"github.com/vasiliy-maslov/quickorder/internal/storage/storagetest"
)

func intPtr(v int) *int { return &v }

func newOrder(table int) model.NewOrder {
	return model.NewOrder{
		RestaurantID:  "1",
		TableNumber:   intPtr(table),
		OrderNumber:   1,
		Items:         []model.OrderItem{{Name: "Tea", Price: 5, Quantity: 2}},
		TotalAmount:   10,
		Status:        model.StatusPending,
		PaymentMethod: model.PaymentCash,
	}
}

// brokenFallback fails every order creation.
type brokenFallback struct {
	*memory.Store
}

var errDiskFull = errors.New("disk full")

func (b brokenFallback) CreateOrder(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	return nil, errDiskFull
}

// durableOnly wraps a second memory store to stand in for a healthy durable
// backend.
type durableOnly struct {
	*memory.Store
}

func TestGateway_CreateOrderFallsBack(t *testing.T) {
	durable := &storagetest.Failing{}
	gw := gateway.New(durable, memory.New("1", memory.WithoutSeed()))

	res, err := gw.CreateOrder(context.Background(), newOrder(3))
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceFallback, res.Source)
	assert.Contains(t, res.Value.ID, "mock-order-")
	assert.Equal(t, int64(10), res.Value.TotalAmount)
	assert.EqualValues(t, 1, durable.Calls.Load())
}

func TestGateway_CreateOrderByTableIDDuringOutage(t *testing.T) {
	gw := gateway.New(&storagetest.Failing{}, memory.New("1", memory.WithoutSeed()))
	ctx := context.Background()

	in := newOrder(0)
	in.TableNumber = nil
	in.TableID = "3f2b6c1e-8d4a-4f4e-9b2a-1c5d7e9f0a11"

	res, err := gw.CreateOrder(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, res.Value)
	assert.Equal(t, gateway.SourceFallback, res.Source)
	assert.Equal(t, in.TableID, res.Value.TableID)
	assert.Equal(t, model.UnknownTableNumber, res.Value.TableNumber)

	got, err := gw.GetOrder(ctx, res.Value.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Value.ID, got.Value.ID)
}

func TestGateway_DemoModeNeverTouchesDurable(t *testing.T) {
	gw := gateway.New(nil, memory.New("1", memory.WithoutSeed()))

	res, err := gw.CreateOrder(context.Background(), newOrder(3))
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceFallback, res.Source)
	assert.False(t, gw.DurableHealthy(context.Background()))
}

func TestGateway_HealthyDurableServes(t *testing.T) {
	fallback := memory.New("1", memory.WithoutSeed())
	gw := gateway.New(durableOnly{memory.New("1", memory.WithoutSeed())}, fallback)
	ctx := context.Background()

	res, err := gw.CreateOrder(ctx, newOrder(3))
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceDurable, res.Source)

	list, err := fallback.ListOrders(ctx, model.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, list, "fallback store must not receive durable writes")
}

func TestGateway_ValidationIsNeverMasked(t *testing.T) {
	durable := &storagetest.Failing{}
	gw := gateway.New(durable, memory.New("1", memory.WithoutSeed()))
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"no_items", func() error {
			in := newOrder(1)
			in.Items = nil
			_, err := gw.CreateOrder(ctx, in)
			return err
		}},
		{"no_table", func() error {
			in := newOrder(1)
			in.TableNumber = nil
			_, err := gw.CreateOrder(ctx, in)
			return err
		}},
		{"bad_status", func() error {
			_, err := gw.UpdateOrderStatus(ctx, "x", "lost")
			return err
		}},
		{"delete_without_id", func() error {
			_, err := gw.DeleteOrder(ctx, "")
			return err
		}},
		{"category_without_name", func() error {
			_, err := gw.CreateCategory(ctx, model.Category{Name: "  "})
			return err
		}},
		{"product_negative_price", func() error {
			_, err := gw.CreateProduct(ctx, model.Product{Name: "X", CategoryID: "c", Price: -1})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), storage.ErrValidation)
		})
	}
	assert.Zero(t, durable.Calls.Load(), "boundary validation runs before any backend call")
}

func TestGateway_TotalFailureIsFatal(t *testing.T) {
	gw := gateway.New(&storagetest.Failing{}, brokenFallback{memory.New("1", memory.WithoutSeed())})

	_, err := gw.CreateOrder(context.Background(), newOrder(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrFatal)
	assert.ErrorIs(t, err, storagetest.ErrDown)
	assert.ErrorIs(t, err, errDiskFull)

	var fatal *storage.FatalError
	require.True(t, errors.As(err, &fatal))
	assert.Equal(t, gateway.OpCreateOrder, fatal.Op)
}

func TestGateway_LookupBothFindsFallbackOrders(t *testing.T) {
	durable := memory.New("1", memory.WithoutSeed())
	fallback := memory.New("1", memory.WithoutSeed())
	gw := gateway.New(durableOnly{durable}, fallback)
	ctx := context.Background()

	// Written while the durable backend was down.
	outage, err := fallback.CreateOrder(ctx, newOrder(2))
	require.NoError(t, err)

	got, err := gw.GetOrder(ctx, outage.ID)
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceFallback, got.Source)

	updated, err := gw.UpdateOrderStatus(ctx, outage.ID, model.StatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPreparing, updated.Value.Status)

	_, err = gw.DeleteOrder(ctx, outage.ID)
	require.NoError(t, err)

	_, err = gw.GetOrder(ctx, outage.ID)
	assert.True(t, storage.IsNotFound(err))
}

func TestGateway_NotFoundWithoutLookupBothIsReturned(t *testing.T) {
	fallback := memory.New("1")
	gw := gateway.New(durableOnly{memory.New("1", memory.WithoutSeed())}, fallback)

	// The seeded fallback has this product, but GetProduct trusts the
	// healthy durable backend's answer.
	_, err := gw.GetProduct(context.Background(), "p_burger_1")
	assert.True(t, storage.IsNotFound(err))
}

func TestGateway_ProbeFirstServesWholeListFromFallback(t *testing.T) {
	durable := &storagetest.Failing{}
	gw := gateway.New(durable, memory.New("1"))

	res, err := gw.ListOrders(context.Background(), model.OrderFilter{Statuses: model.ActiveStatuses})
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceFallback, res.Source)
	assert.Len(t, res.Value, 2)
	assert.EqualValues(t, 1, durable.Calls.Load(), "a failed probe skips the durable read")
}

func TestGateway_ProbePassesButReadFails(t *testing.T) {
	durable := &storagetest.Failing{PingOK: true}
	gw := gateway.New(durable, memory.New("1"))

	res, err := gw.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceFallback, res.Source)
	assert.NotEmpty(t, res.Value)
	assert.EqualValues(t, 2, durable.Calls.Load())
}

func TestGateway_ServiceRequestsAreFallbackOnly(t *testing.T) {
	durable := &storagetest.Failing{PingOK: true}
	gw := gateway.New(durable, memory.New("1", memory.WithoutSeed()))
	ctx := context.Background()

	created, err := gw.CreateServiceRequest(ctx, model.ServiceRequest{TableNumber: 2, Message: "Water", Type: model.RequestGeneral})
	require.NoError(t, err)
	assert.Equal(t, gateway.SourceFallback, created.Source)

	list, err := gw.ListServiceRequests(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Value, 1)

	resolved, err := gw.ResolveServiceRequest(ctx, created.Value.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestResolved, resolved.Value.Status)

	assert.Zero(t, durable.Calls.Load())
}

func TestPolicies_EveryOperationDeclared(t *testing.T) {
	ops := []string{
		gateway.OpListOrders, gateway.OpGetOrder, gateway.OpCreateOrder, gateway.OpUpdateOrderStatus, gateway.OpDeleteOrder,
		gateway.OpListTables, gateway.OpGetTable, gateway.OpResolveTable, gateway.OpUpdateTableStatus,
		gateway.OpListCategories, gateway.OpGetCategory, gateway.OpCreateCategory, gateway.OpUpdateCategory, gateway.OpDeleteCategory,
		gateway.OpListProducts, gateway.OpGetProduct, gateway.OpCreateProduct, gateway.OpUpdateProduct, gateway.OpDeleteProduct,
		gateway.OpGetSettings, gateway.OpUpdateSettings, gateway.OpAnalytics,
		gateway.OpListServiceRequests, gateway.OpCreateServiceRequest, gateway.OpResolveServiceRequest,
	}
	for _, op := range ops {
		_, ok := gateway.Policies[op]
		assert.True(t, ok, op)
	}
	assert.Len(t, gateway.Policies, len(ops))
}
