// Package storagetest provides backends for exercising the gateway.
package storagetest

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/storage"
)

// ErrDown is the error every Failing call returns.
var ErrDown = errors.New("connection refused")

// Failing is a durable backend that is unreachable. Calls counts every
// invocation, probes included.
type Failing struct {
	Calls atomic.Int64
	// PingOK makes the health probe succeed while every other call fails.
	PingOK bool
}

func (f *Failing) fail() error {
	f.Calls.Add(1)
	return ErrDown
}

func (f *Failing) Ping(ctx context.Context) error {
	f.Calls.Add(1)
	if f.PingOK {
		return nil
	}
	return ErrDown
}

func (f *Failing) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	return nil, f.fail()
}

func (f *Failing) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return nil, f.fail()
}

func (f *Failing) CreateOrder(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	return nil, f.fail()
}

func (f *Failing) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	return nil, f.fail()
}

func (f *Failing) DeleteOrder(ctx context.Context, id string) error {
	return f.fail()
}

func (f *Failing) ListTables(ctx context.Context, restaurantID string) ([]model.Table, error) {
	return nil, f.fail()
}

func (f *Failing) GetTable(ctx context.Context, id string) (*model.Table, error) {
	return nil, f.fail()
}

func (f *Failing) ResolveTable(ctx context.Context, restaurantID string, number int) (*model.Table, error) {
	return nil, f.fail()
}

func (f *Failing) UpdateTableStatus(ctx context.Context, id string, status model.TableStatus) (*model.Table, error) {
	return nil, f.fail()
}

func (f *Failing) ListCategories(ctx context.Context) ([]model.Category, error) {
	return nil, f.fail()
}

func (f *Failing) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return nil, f.fail()
}

func (f *Failing) CreateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	return nil, f.fail()
}

func (f *Failing) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	return nil, f.fail()
}

func (f *Failing) DeleteCategory(ctx context.Context, id string) error {
	return f.fail()
}

func (f *Failing) ListProducts(ctx context.Context) ([]model.Product, error) {
	return nil, f.fail()
}

func (f *Failing) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return nil, f.fail()
}

func (f *Failing) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	return nil, f.fail()
}

func (f *Failing) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	return nil, f.fail()
}

func (f *Failing) DeleteProduct(ctx context.Context, id string) error {
	return f.fail()
}

func (f *Failing) GetSettings(ctx context.Context, restaurantID string) (*model.Settings, error) {
	return nil, f.fail()
}

func (f *Failing) UpdateSettings(ctx context.Context, restaurantID string, patch model.SettingsPatch) (*model.Settings, error) {
	return nil, f.fail()
}

func (f *Failing) Analytics(ctx context.Context, since time.Time) (*model.Analytics, error) {
	return nil, f.fail()
}

var _ storage.Backend = (*Failing)(nil)
