package session_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/quickorder/internal/cart"
	"github.com/vasiliy-maslov/quickorder/internal/catalog"
	"github.com/vasiliy-maslov/quickorder/internal/client"
	apihttp "github.com/vasiliy-maslov/quickorder/internal/handler/http"
	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/order"
	"github.com/vasiliy-maslov/quickorder/internal/session"
	"github.com/vasiliy-maslov/quickorder/internal/storage/gateway"
	"github.com/vasiliy-maslov/quickorder/internal/storage/memory"
)

func newAPI(t *testing.T) *client.Client {
	t.Helper()
	gw := gateway.New(nil, memory.New("1", memory.WithoutSeed()))
	srv := httptest.NewServer(apihttp.NewRouter(
		apihttp.NewOrderHandler(order.NewService(gw, order.NewCounter(), "1"), order.NewRequestService(gw)),
		apihttp.NewAdminHandler(catalog.NewService(gw, "1")),
		gw.DurableHealthy,
	))
	t.Cleanup(srv.Close)
	return client.New(srv.URL)
}

var tea = model.OrderItem{ProductID: "p_tea", Name: "Tea", Price: 15, Quantity: 1}

func TestSession_PickupScanClearsHistoryAndCart(t *testing.T) {
	s := session.New(nil)
	s.Scan("1", 4)
	s.Record("o1")
	s.Cart.Add(tea)

	s.Scan("1", 6)
	assert.Equal(t, []string{"o1"}, s.History, "a table scan keeps the history")
	assert.False(t, s.Cart.Empty())

	s.Scan("1", model.PickupTableNumber)
	assert.Empty(t, s.History)
	assert.True(t, s.Cart.Empty())
	assert.Equal(t, model.PickupTableNumber, s.TableNumber)
}

func TestSession_CheckoutRecordsAndClears(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()

	s := session.New(nil)
	s.Scan("1", 3)
	s.Cart.Add(tea)
	s.Cart.Add(model.OrderItem{ProductID: "p_cake", Name: "Cake", Price: 40, Quantity: 2, Options: []model.Option{{Name: "Cream", Price: 5}}})

	o, err := s.Checkout(ctx, api, model.PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, int64(15+2*45), o.TotalAmount)
	assert.Equal(t, 3, o.TableNumber)
	assert.Equal(t, []string{o.ID}, s.History)
	assert.True(t, s.Cart.Empty())

	_, err = s.Checkout(ctx, api, model.PaymentCash)
	assert.ErrorIs(t, err, session.ErrEmptyCart)
}

type failingAPI struct{}

func (failingAPI) CreateOrder(context.Context, client.NewOrder) (*model.Order, error) {
	return nil, errors.New("server unreachable")
}

func (failingAPI) GetOrder(context.Context, string) (*model.Order, error) {
	return nil, errors.New("server unreachable")
}

func TestSession_FailedCheckoutKeepsCart(t *testing.T) {
	s := session.New(nil)
	s.Scan("1", 3)
	s.Cart.Add(tea)

	_, err := s.Checkout(context.Background(), failingAPI{}, model.PaymentCard)
	require.Error(t, err)
	assert.False(t, s.Cart.Empty())
	assert.Empty(t, s.History)
}

func TestSession_OrdersNewestFirstSkippingUnknown(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()

	s := session.New(nil)
	s.Scan("1", 2)

	var placed []string
	for i := 0; i < 3; i++ {
		s.Cart.Add(tea)
		o, err := s.Checkout(ctx, api, model.PaymentCash)
		require.NoError(t, err)
		placed = append(placed, o.ID)
	}
	s.Record("mock-order-0")

	orders, err := s.Orders(ctx, api)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, placed[2], orders[0].ID)
	assert.Equal(t, placed[0], orders[2].ID)

	_, err = s.Orders(ctx, failingAPI{})
	assert.Error(t, err)
}

func TestSession_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s := session.New(cart.New(cart.WithInstructionPolicy(cart.SeparateByInstruction)))
	s.Scan("1", 8)
	s.Record("o1")
	s.Cart.Add(model.OrderItem{ProductID: "p", Name: "Soup", Price: 30, Quantity: 1, Instruction: "hot"})
	s.Cart.Add(model.OrderItem{ProductID: "p", Name: "Soup", Price: 30, Quantity: 1, Instruction: "cold"})
	require.NoError(t, s.Save(path))

	loaded, err := session.Load(path, cart.WithInstructionPolicy(cart.SeparateByInstruction))
	require.NoError(t, err)
	assert.Equal(t, "1", loaded.RestaurantID)
	assert.Equal(t, 8, loaded.TableNumber)
	assert.Equal(t, []string{"o1"}, loaded.History)
	assert.Equal(t, s.Cart.Items(), loaded.Cart.Items())
}

func TestSession_LoadMissingFile(t *testing.T) {
	s, err := session.Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, s.History)
	assert.True(t, s.Cart.Empty())
}
