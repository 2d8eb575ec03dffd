// Package storage defines the backend contracts shared by the durable
// Postgres store and the in-memory fallback store, and the error taxonomy
// the gateway uses to decide between them.
package storage

import (
	"context"
	"time"

	"github.com/vasiliy-maslov/quickorder/internal/model"
)

type OrderStore interface {
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	// CreateOrder resolves the table (creating it lazily) and stores the order.
	CreateOrder(ctx context.Context, in model.NewOrder) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type TableStore interface {
	ListTables(ctx context.Context, restaurantID string) ([]model.Table, error)
	GetTable(ctx context.Context, id string) (*model.Table, error)
	// ResolveTable returns the table for (restaurantID, number), creating it
	// as occupied when it does not exist yet.
	ResolveTable(ctx context.Context, restaurantID string, number int) (*model.Table, error)
	UpdateTableStatus(ctx context.Context, id string, status model.TableStatus) (*model.Table, error)
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	CreateCategory(ctx context.Context, c model.Category) (*model.Category, error)
	UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type ProductStore interface {
	// ListProducts returns products newest first with Category populated.
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	CreateProduct(ctx context.Context, p model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type SettingsStore interface {
	GetSettings(ctx context.Context, restaurantID string) (*model.Settings, error)
	UpdateSettings(ctx context.Context, restaurantID string, patch model.SettingsPatch) (*model.Settings, error)
}

type AnalyticsStore interface {
	Analytics(ctx context.Context, since time.Time) (*model.Analytics, error)
}

// ServiceRequestStore has no durable implementation; waiter calls live in
// the fallback store only.
type ServiceRequestStore interface {
	ListServiceRequests(ctx context.Context) ([]model.ServiceRequest, error)
	CreateServiceRequest(ctx context.Context, r model.ServiceRequest) (*model.ServiceRequest, error)
	ResolveServiceRequest(ctx context.Context, id string) (*model.ServiceRequest, error)
}

// Backend is implemented by every store the gateway can route to.
type Backend interface {
	// Ping is the cheap existence probe run before read-heavy listings.
	Ping(ctx context.Context) error

	OrderStore
	TableStore
	CategoryStore
	ProductStore
	SettingsStore
	AnalyticsStore
}
