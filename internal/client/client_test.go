package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/quickorder/internal/catalog"
	"github.com/vasiliy-maslov/quickorder/internal/client"
	apihttp "github.com/vasiliy-maslov/quickorder/internal/handler/http"
	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/order"
	"github.com/vasiliy-maslov/quickorder/internal/storage/gateway"
	"github.com/vasiliy-maslov/quickorder/internal/storage/memory"
)

func newServer(t *testing.T) *client.Client {
	t.Helper()
	gw := gateway.New(nil, memory.New("1"))
	router := apihttp.NewRouter(
		apihttp.NewOrderHandler(order.NewService(gw, order.NewCounter(), "1"), order.NewRequestService(gw)),
		apihttp.NewAdminHandler(catalog.NewService(gw, "1")),
		gw.DurableHealthy,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return client.New(srv.URL + "/")
}

func intPtr(v int) *int { return &v }

func TestClient_OrderLifecycle(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	created, err := c.CreateOrder(ctx, client.NewOrder{
		TableNumber:   intPtr(9),
		Items:         []model.OrderItem{{Name: "Kofta", Price: 80, Quantity: 1, Options: []model.Option{{Name: "Rice", Price: 15}}}},
		PaymentMethod: model.PaymentInstapay,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(95), created.TotalAmount)
	assert.Equal(t, model.StatusPaymentVerification, created.Status)

	got, err := c.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	advanced, err := c.Advance(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, advanced.Status)

	queue, err := c.KitchenOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, queue, 3, "two seeded demo orders plus ours")

	served, err := c.SetStatus(ctx, created.ID, model.StatusServed)
	require.NoError(t, err)
	assert.Equal(t, model.StatusServed, served.Status)

	_, err = c.Advance(ctx, created.ID)
	assert.ErrorIs(t, err, client.ErrConflict)

	list, err := c.ListOrders(ctx, model.StatusServed)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	deleted, err := c.DeleteOrders(ctx, created.ID, "mock-order-0")
	require.NoError(t, err)
	assert.Equal(t, []string{created.ID}, deleted)

	_, err = c.GetOrder(ctx, created.ID)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestClient_ServiceRequests(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	req, err := c.CallWaiter(ctx, 4, "", "")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRequestMessage, req.Message)

	pending, err := c.ServiceRequests(ctx, model.RequestPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = c.ResolveServiceRequest(ctx, req.ID)
	require.NoError(t, err)

	pending, err = c.ServiceRequests(ctx, model.RequestPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := c.ServiceRequests(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = c.CallWaiter(ctx, 0, "", "")
	assert.ErrorIs(t, err, client.ErrBadInput)
}

func TestClient_AdminAndHealth(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	require.NoError(t, c.ResetCounter(ctx))

	durable, err := c.Health(ctx)
	require.NoError(t, err)
	assert.False(t, durable)

	products, err := c.Products(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, products)
}

func TestClient_ErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := client.New(srv.URL).KitchenOrders(context.Background())
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
