// Package catalog serves the admin side: menu, settings, tables and
// analytics.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/storage/gateway"
)

type Store interface {
	ListCategories(ctx context.Context) (gateway.Result[[]model.Category], error)
	CreateCategory(ctx context.Context, c model.Category) (gateway.Result[*model.Category], error)
	UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (gateway.Result[*model.Category], error)
	DeleteCategory(ctx context.Context, id string) (gateway.Result[struct{}], error)

	ListProducts(ctx context.Context) (gateway.Result[[]model.Product], error)
	GetProduct(ctx context.Context, id string) (gateway.Result[*model.Product], error)
	CreateProduct(ctx context.Context, p model.Product) (gateway.Result[*model.Product], error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (gateway.Result[*model.Product], error)
	DeleteProduct(ctx context.Context, id string) (gateway.Result[struct{}], error)

	GetSettings(ctx context.Context, restaurantID string) (gateway.Result[*model.Settings], error)
	UpdateSettings(ctx context.Context, restaurantID string, patch model.SettingsPatch) (gateway.Result[*model.Settings], error)

	ListTables(ctx context.Context, restaurantID string) (gateway.Result[[]model.Table], error)
	UpdateTableStatus(ctx context.Context, id string, status model.TableStatus) (gateway.Result[*model.Table], error)

	Analytics(ctx context.Context, since time.Time) (gateway.Result[*model.Analytics], error)
}

type Service interface {
	ListCategories(ctx context.Context) (gateway.Result[[]model.Category], error)
	CreateCategory(ctx context.Context, c model.Category) (gateway.Result[*model.Category], error)
	UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (gateway.Result[*model.Category], error)
	DeleteCategory(ctx context.Context, id string) (gateway.Result[struct{}], error)

	ListProducts(ctx context.Context) (gateway.Result[[]model.Product], error)
	GetProduct(ctx context.Context, id string) (gateway.Result[*model.Product], error)
	CreateProduct(ctx context.Context, p model.Product) (gateway.Result[*model.Product], error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (gateway.Result[*model.Product], error)
	DeleteProduct(ctx context.Context, id string) (gateway.Result[struct{}], error)

	Settings(ctx context.Context) (gateway.Result[*model.Settings], error)
	UpdateSettings(ctx context.Context, patch model.SettingsPatch) (gateway.Result[*model.Settings], error)

	ListTables(ctx context.Context) (gateway.Result[[]model.Table], error)
	SetTableStatus(ctx context.Context, id string, status model.TableStatus) (gateway.Result[*model.Table], error)

	// Analytics reports today's totals and the all-time best sellers.
	Analytics(ctx context.Context) (gateway.Result[*model.Analytics], error)
}

type service struct {
	store        Store
	restaurantID string
	now          func() time.Time
}

func NewService(store Store, restaurantID string) Service {
	return &service{store: store, restaurantID: restaurantID, now: time.Now}
}

func (s *service) ListCategories(ctx context.Context) (gateway.Result[[]model.Category], error) {
	res, err := s.store.ListCategories(ctx)
	if err != nil {
		return res, fmt.Errorf("catalog: failed to list categories: %w", err)
	}
	return res, nil
}

func (s *service) CreateCategory(ctx context.Context, c model.Category) (gateway.Result[*model.Category], error) {
	if c.RestaurantID == "" {
		c.RestaurantID = s.restaurantID
	}
	res, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return res, fmt.Errorf("catalog: failed to create category: %w", err)
	}
	log.Info().Str("category_id", res.Value.ID).Str("backend", string(res.Source)).Msg("catalog: category created")
	return res, nil
}

func (s *service) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (gateway.Result[*model.Category], error) {
	res, err := s.store.UpdateCategory(ctx, id, patch)
	if err != nil {
		return res, fmt.Errorf("catalog: failed to update category %s: %w", id, err)
	}
	return res, nil
}

func (s *service) DeleteCategory(ctx context.Context, id string) (gateway.Result[struct{}], error) {
	res, err := s.store.DeleteCategory(ctx, id)
	if err != nil {
		return res, fmt.Errorf("catalog: failed to delete category %s: %w", id, err)
	}
	log.Info().Str("category_id", id).Msg("catalog: category deleted")
	return res, nil
}

func (s *service) ListProducts(ctx context.Context) (gateway.Result[[]model.Product], error) {
	res, err := s.store.ListProducts(ctx)
	if err != nil {
		return res, fmt.Errorf("catalog: failed to list products: %w", err)
	}
	return res, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (gateway.Result[*model.Product], error) {
	res, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return res, fmt.Errorf("catalog: failed to get product %s: %w", id, err)
	}
	return res, nil
}

func (s *service) CreateProduct(ctx context.Context, p model.Product) (gateway.Result[*model.Product], error) {
	if p.RestaurantID == "" {
		p.RestaurantID = s.restaurantID
	}
	res, err := s.store.CreateProduct(ctx, p)
	if err != nil {
		return res, fmt.Errorf("catalog: failed to create product: %w", err)
	}
	log.Info().Str("product_id", res.Value.ID).Str("backend", string(res.Source)).Msg("catalog: product created")
	return res, nil
}

func (s *service) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (gateway.Result[*model.Product], error) {
	res, err := s.store.UpdateProduct(ctx, id, patch)
	if err != nil {
		return res, fmt.Errorf("catalog: failed to update product %s: %w", id, err)
	}
	return res, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) (gateway.Result[struct{}], error) {
	res, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return res, fmt.Errorf("catalog: failed to delete product %s: %w", id, err)
	}
	log.Info().Str("product_id", id).Msg("catalog: product deleted")
	return res, nil
}

func (s *service) Settings(ctx context.Context) (gateway.Result[*model.Settings], error) {
	res, err := s.store.GetSettings(ctx, s.restaurantID)
	if err != nil {
		return res, fmt.Errorf("catalog: failed to load settings: %w", err)
	}
	return res, nil
}

func (s *service) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (gateway.Result[*model.Settings], error) {
	res, err := s.store.UpdateSettings(ctx, s.restaurantID, patch)
	if err != nil {
		return res, fmt.Errorf("catalog: failed to update settings: %w", err)
	}
	log.Info().Str("backend", string(res.Source)).Msg("catalog: settings updated")
	return res, nil
}

func (s *service) ListTables(ctx context.Context) (gateway.Result[[]model.Table], error) {
	res, err := s.store.ListTables(ctx, s.restaurantID)
	if err != nil {
		return res, fmt.Errorf("catalog: failed to list tables: %w", err)
	}
	return res, nil
}

func (s *service) SetTableStatus(ctx context.Context, id string, status model.TableStatus) (gateway.Result[*model.Table], error) {
	res, err := s.store.UpdateTableStatus(ctx, id, status)
	if err != nil {
		return res, fmt.Errorf("catalog: failed to update table %s: %w", id, err)
	}
	return res, nil
}

func (s *service) Analytics(ctx context.Context) (gateway.Result[*model.Analytics], error) {
	res, err := s.store.Analytics(ctx, model.StartOfDay(s.now()))
	if err != nil {
		return res, fmt.Errorf("catalog: failed to compute analytics: %w", err)
	}
	return res, nil
}
