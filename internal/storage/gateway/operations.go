package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/storage"
)

// Orders

func (g *Gateway) ListOrders(ctx context.Context, filter model.OrderFilter) (Result[[]model.Order], error) {
	return execute(ctx, g, OpListOrders,
		func(ctx context.Context, b storage.Backend) ([]model.Order, error) { return b.ListOrders(ctx, filter) },
		func(ctx context.Context, f Fallback) ([]model.Order, error) { return f.ListOrders(ctx, filter) },
	)
}

func (g *Gateway) GetOrder(ctx context.Context, id string) (Result[*model.Order], error) {
	if id == "" {
		return Result[*model.Order]{}, storage.Invalid("id", "is required")
	}
	return execute(ctx, g, OpGetOrder,
		func(ctx context.Context, b storage.Backend) (*model.Order, error) { return b.GetOrder(ctx, id) },
		func(ctx context.Context, f Fallback) (*model.Order, error) { return f.GetOrder(ctx, id) },
	)
}

func (g *Gateway) CreateOrder(ctx context.Context, in model.NewOrder) (Result[*model.Order], error) {
	if err := validateNewOrder(in); err != nil {
		return Result[*model.Order]{}, err
	}
	return execute(ctx, g, OpCreateOrder,
		func(ctx context.Context, b storage.Backend) (*model.Order, error) { return b.CreateOrder(ctx, in) },
		func(ctx context.Context, f Fallback) (*model.Order, error) { return f.CreateOrder(ctx, in) },
	)
}

func (g *Gateway) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (Result[*model.Order], error) {
	if id == "" {
		return Result[*model.Order]{}, storage.Invalid("orderId", "is required")
	}
	if !status.Valid() {
		return Result[*model.Order]{}, storage.Invalid("status", "unknown status "+string(status))
	}
	return execute(ctx, g, OpUpdateOrderStatus,
		func(ctx context.Context, b storage.Backend) (*model.Order, error) {
			return b.UpdateOrderStatus(ctx, id, status)
		},
		func(ctx context.Context, f Fallback) (*model.Order, error) { return f.UpdateOrderStatus(ctx, id, status) },
	)
}

func (g *Gateway) DeleteOrder(ctx context.Context, id string) (Result[struct{}], error) {
	if id == "" {
		return Result[struct{}]{}, storage.Invalid("id", "is required")
	}
	return execute(ctx, g, OpDeleteOrder,
		func(ctx context.Context, b storage.Backend) (struct{}, error) { return struct{}{}, b.DeleteOrder(ctx, id) },
		func(ctx context.Context, f Fallback) (struct{}, error) { return struct{}{}, f.DeleteOrder(ctx, id) },
	)
}

// Tables

func (g *Gateway) ListTables(ctx context.Context, restaurantID string) (Result[[]model.Table], error) {
	return execute(ctx, g, OpListTables,
		func(ctx context.Context, b storage.Backend) ([]model.Table, error) { return b.ListTables(ctx, restaurantID) },
		func(ctx context.Context, f Fallback) ([]model.Table, error) { return f.ListTables(ctx, restaurantID) },
	)
}

func (g *Gateway) GetTable(ctx context.Context, id string) (Result[*model.Table], error) {
	if id == "" {
		return Result[*model.Table]{}, storage.Invalid("id", "is required")
	}
	return execute(ctx, g, OpGetTable,
		func(ctx context.Context, b storage.Backend) (*model.Table, error) { return b.GetTable(ctx, id) },
		func(ctx context.Context, f Fallback) (*model.Table, error) { return f.GetTable(ctx, id) },
	)
}

func (g *Gateway) ResolveTable(ctx context.Context, restaurantID string, number int) (Result[*model.Table], error) {
	if restaurantID == "" {
		return Result[*model.Table]{}, storage.Invalid("restaurantId", "is required")
	}
	if number < 0 {
		return Result[*model.Table]{}, storage.Invalid("tableNumber", "must not be negative")
	}
	return execute(ctx, g, OpResolveTable,
		func(ctx context.Context, b storage.Backend) (*model.Table, error) {
			return b.ResolveTable(ctx, restaurantID, number)
		},
		func(ctx context.Context, f Fallback) (*model.Table, error) {
			return f.ResolveTable(ctx, restaurantID, number)
		},
	)
}

func (g *Gateway) UpdateTableStatus(ctx context.Context, id string, status model.TableStatus) (Result[*model.Table], error) {
	if status != model.TableFree && status != model.TableOccupied {
		return Result[*model.Table]{}, storage.Invalid("status", "unknown table status "+string(status))
	}
	return execute(ctx, g, OpUpdateTableStatus,
		func(ctx context.Context, b storage.Backend) (*model.Table, error) {
			return b.UpdateTableStatus(ctx, id, status)
		},
		func(ctx context.Context, f Fallback) (*model.Table, error) { return f.UpdateTableStatus(ctx, id, status) },
	)
}

// Categories

func (g *Gateway) ListCategories(ctx context.Context) (Result[[]model.Category], error) {
	return execute(ctx, g, OpListCategories,
		func(ctx context.Context, b storage.Backend) ([]model.Category, error) { return b.ListCategories(ctx) },
		func(ctx context.Context, f Fallback) ([]model.Category, error) { return f.ListCategories(ctx) },
	)
}

func (g *Gateway) GetCategory(ctx context.Context, id string) (Result[*model.Category], error) {
	return execute(ctx, g, OpGetCategory,
		func(ctx context.Context, b storage.Backend) (*model.Category, error) { return b.GetCategory(ctx, id) },
		func(ctx context.Context, f Fallback) (*model.Category, error) { return f.GetCategory(ctx, id) },
	)
}

func (g *Gateway) CreateCategory(ctx context.Context, c model.Category) (Result[*model.Category], error) {
	if strings.TrimSpace(c.Name) == "" {
		return Result[*model.Category]{}, storage.Invalid("name", "is required")
	}
	return execute(ctx, g, OpCreateCategory,
		func(ctx context.Context, b storage.Backend) (*model.Category, error) { return b.CreateCategory(ctx, c) },
		func(ctx context.Context, f Fallback) (*model.Category, error) { return f.CreateCategory(ctx, c) },
	)
}

func (g *Gateway) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (Result[*model.Category], error) {
	if id == "" {
		return Result[*model.Category]{}, storage.Invalid("id", "is required")
	}
	return execute(ctx, g, OpUpdateCategory,
		func(ctx context.Context, b storage.Backend) (*model.Category, error) {
			return b.UpdateCategory(ctx, id, patch)
		},
		func(ctx context.Context, f Fallback) (*model.Category, error) { return f.UpdateCategory(ctx, id, patch) },
	)
}

func (g *Gateway) DeleteCategory(ctx context.Context, id string) (Result[struct{}], error) {
	if id == "" {
		return Result[struct{}]{}, storage.Invalid("id", "is required")
	}
	return execute(ctx, g, OpDeleteCategory,
		func(ctx context.Context, b storage.Backend) (struct{}, error) { return struct{}{}, b.DeleteCategory(ctx, id) },
		func(ctx context.Context, f Fallback) (struct{}, error) { return struct{}{}, f.DeleteCategory(ctx, id) },
	)
}

// Products

func (g *Gateway) ListProducts(ctx context.Context) (Result[[]model.Product], error) {
	return execute(ctx, g, OpListProducts,
		func(ctx context.Context, b storage.Backend) ([]model.Product, error) { return b.ListProducts(ctx) },
		func(ctx context.Context, f Fallback) ([]model.Product, error) { return f.ListProducts(ctx) },
	)
}

func (g *Gateway) GetProduct(ctx context.Context, id string) (Result[*model.Product], error) {
	return execute(ctx, g, OpGetProduct,
		func(ctx context.Context, b storage.Backend) (*model.Product, error) { return b.GetProduct(ctx, id) },
		func(ctx context.Context, f Fallback) (*model.Product, error) { return f.GetProduct(ctx, id) },
	)
}

func (g *Gateway) CreateProduct(ctx context.Context, p model.Product) (Result[*model.Product], error) {
	if err := validateProduct(p); err != nil {
		return Result[*model.Product]{}, err
	}
	return execute(ctx, g, OpCreateProduct,
		func(ctx context.Context, b storage.Backend) (*model.Product, error) { return b.CreateProduct(ctx, p) },
		func(ctx context.Context, f Fallback) (*model.Product, error) { return f.CreateProduct(ctx, p) },
	)
}

func (g *Gateway) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (Result[*model.Product], error) {
	if id == "" {
		return Result[*model.Product]{}, storage.Invalid("id", "is required")
	}
	if patch.Price != nil && *patch.Price < 0 {
		return Result[*model.Product]{}, storage.Invalid("price", "must not be negative")
	}
	return execute(ctx, g, OpUpdateProduct,
		func(ctx context.Context, b storage.Backend) (*model.Product, error) {
			return b.UpdateProduct(ctx, id, patch)
		},
		func(ctx context.Context, f Fallback) (*model.Product, error) { return f.UpdateProduct(ctx, id, patch) },
	)
}

func (g *Gateway) DeleteProduct(ctx context.Context, id string) (Result[struct{}], error) {
	if id == "" {
		return Result[struct{}]{}, storage.Invalid("id", "is required")
	}
	return execute(ctx, g, OpDeleteProduct,
		func(ctx context.Context, b storage.Backend) (struct{}, error) { return struct{}{}, b.DeleteProduct(ctx, id) },
		func(ctx context.Context, f Fallback) (struct{}, error) { return struct{}{}, f.DeleteProduct(ctx, id) },
	)
}

// Settings and analytics

func (g *Gateway) GetSettings(ctx context.Context, restaurantID string) (Result[*model.Settings], error) {
	return execute(ctx, g, OpGetSettings,
		func(ctx context.Context, b storage.Backend) (*model.Settings, error) {
			return b.GetSettings(ctx, restaurantID)
		},
		func(ctx context.Context, f Fallback) (*model.Settings, error) { return f.GetSettings(ctx, restaurantID) },
	)
}

func (g *Gateway) UpdateSettings(ctx context.Context, restaurantID string, patch model.SettingsPatch) (Result[*model.Settings], error) {
	return execute(ctx, g, OpUpdateSettings,
		func(ctx context.Context, b storage.Backend) (*model.Settings, error) {
			return b.UpdateSettings(ctx, restaurantID, patch)
		},
		func(ctx context.Context, f Fallback) (*model.Settings, error) {
			return f.UpdateSettings(ctx, restaurantID, patch)
		},
	)
}

func (g *Gateway) Analytics(ctx context.Context, since time.Time) (Result[*model.Analytics], error) {
	return execute(ctx, g, OpAnalytics,
		func(ctx context.Context, b storage.Backend) (*model.Analytics, error) { return b.Analytics(ctx, since) },
		func(ctx context.Context, f Fallback) (*model.Analytics, error) { return f.Analytics(ctx, since) },
	)
}

// Service requests

func (g *Gateway) ListServiceRequests(ctx context.Context) (Result[[]model.ServiceRequest], error) {
	return execute[[]model.ServiceRequest](ctx, g, OpListServiceRequests, nil,
		func(ctx context.Context, f Fallback) ([]model.ServiceRequest, error) { return f.ListServiceRequests(ctx) },
	)
}

func (g *Gateway) CreateServiceRequest(ctx context.Context, r model.ServiceRequest) (Result[*model.ServiceRequest], error) {
	if r.TableNumber < 0 {
		return Result[*model.ServiceRequest]{}, storage.Invalid("tableNumber", "must not be negative")
	}
	return execute[*model.ServiceRequest](ctx, g, OpCreateServiceRequest, nil,
		func(ctx context.Context, f Fallback) (*model.ServiceRequest, error) {
			return f.CreateServiceRequest(ctx, r)
		},
	)
}

func (g *Gateway) ResolveServiceRequest(ctx context.Context, id string) (Result[*model.ServiceRequest], error) {
	if id == "" {
		return Result[*model.ServiceRequest]{}, storage.Invalid("id", "is required")
	}
	return execute[*model.ServiceRequest](ctx, g, OpResolveServiceRequest, nil,
		func(ctx context.Context, f Fallback) (*model.ServiceRequest, error) {
			return f.ResolveServiceRequest(ctx, id)
		},
	)
}

func validateNewOrder(in model.NewOrder) error {
	if in.TableID == "" && in.TableNumber == nil {
		return storage.Invalid("tableId", "missing table info")
	}
	if in.TableNumber != nil && *in.TableNumber < 0 {
		return storage.Invalid("tableNumber", "must not be negative")
	}
	if len(in.Items) == 0 {
		return storage.Invalid("items", "order must contain at least one item")
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return storage.Invalid("items.quantity", "must be at least 1")
		}
		if it.Price < 0 {
			return storage.Invalid("items.price", "must not be negative")
		}
	}
	if !in.Status.Valid() {
		return storage.Invalid("status", "unknown status "+string(in.Status))
	}
	if !in.PaymentMethod.Valid() {
		return storage.Invalid("paymentMethod", "unknown payment method "+string(in.PaymentMethod))
	}
	return nil
}

func validateProduct(p model.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return storage.Invalid("name", "is required")
	}
	if p.CategoryID == "" {
		return storage.Invalid("categoryId", "is required")
	}
	if p.Price < 0 {
		return storage.Invalid("price", "must not be negative")
	}
	return nil
}
