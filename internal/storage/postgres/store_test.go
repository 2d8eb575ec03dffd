package postgres_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/storage"
	"github.com/vasiliy-maslov/quickorder/internal/storage/postgres"
)

// setup connects to QUICKORDER_TEST_DATABASE_URL (postgres://...), applies
// the migrations and truncates every table.
func setup(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := os.Getenv("QUICKORDER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("QUICKORDER_TEST_DATABASE_URL is not set")
	}

	m, err := migrate.New("file://../../../migrations", strings.Replace(dsn, "postgres://", "pgx5://", 1))
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	m.Close()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	truncate := func() {
		_, err := pool.Exec(ctx, `TRUNCATE order_items, orders, restaurant_tables, products, categories, restaurant_settings CASCADE`)
		require.NoError(t, err)
	}
	truncate()

	store := postgres.New(pool)
	t.Cleanup(func() {
		truncate()
		store.Close()
		pool.Close()
	})
	return store
}

func intPtr(v int) *int { return &v }

func TestStore_CreateAndGetOrder(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	created, err := store.CreateOrder(ctx, model.NewOrder{
		RestaurantID: "1",
		TableNumber:  intPtr(7),
		OrderNumber:  1,
		Items: []model.OrderItem{
			{ProductID: "p1", Name: "Burger", Price: 100, Quantity: 2, Options: []model.Option{{Name: "Cheese", Price: 10}}},
			{ProductID: "p2", Name: "Cola", Price: 20, Quantity: 1},
		},
		TotalAmount:   240,
		Status:        model.StatusPending,
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, created.TableNumber)
	require.Len(t, created.Items, 2)
	assert.Equal(t, "Burger", created.Items[0].Name)
	assert.Equal(t, []model.Option{{Name: "Cheese", Price: 10}}, created.Items[0].Options)

	got, err := store.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, int64(240), got.TotalAmount)

	table, err := store.GetTable(ctx, created.TableID)
	require.NoError(t, err)
	assert.Equal(t, model.TableOccupied, table.Status)
}

func TestStore_ResolveTableIsIdempotent(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	first, err := store.ResolveTable(ctx, "1", 3)
	require.NoError(t, err)
	second, err := store.ResolveTable(ctx, "1", 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	tables, err := store.ListTables(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, tables, 1)
}

func TestStore_OrderNotFound(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	_, err := store.GetOrder(ctx, "mock-order-1")
	assert.True(t, storage.IsNotFound(err))

	_, err = store.UpdateOrderStatus(ctx, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", model.StatusReady)
	assert.True(t, storage.IsNotFound(err))

	err = store.DeleteOrder(ctx, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.True(t, storage.IsNotFound(err))
}

func TestStore_ListOrdersFilterAndSort(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	var ids []string
	for i, st := range []model.OrderStatus{model.StatusPending, model.StatusServed, model.StatusReady} {
		o, err := store.CreateOrder(ctx, model.NewOrder{
			RestaurantID:  "1",
			TableNumber:   intPtr(1),
			OrderNumber:   i + 1,
			Items:         []model.OrderItem{{Name: "Tea", Price: 5, Quantity: 1}},
			TotalAmount:   5,
			Status:        st,
			PaymentMethod: model.PaymentCard,
		})
		require.NoError(t, err)
		ids = append(ids, o.ID)
		time.Sleep(5 * time.Millisecond)
	}

	active, err := store.ListOrders(ctx, model.OrderFilter{Statuses: model.ActiveStatuses, Sort: model.OldestFirst})
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, ids[0], active[0].ID)
	assert.Equal(t, ids[2], active[1].ID)

	all, err := store.ListOrders(ctx, model.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
}

func TestStore_InvalidStatusIsValidationError(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	_, err := store.CreateOrder(ctx, model.NewOrder{
		RestaurantID:  "1",
		TableNumber:   intPtr(1),
		Items:         []model.OrderItem{{Name: "Tea", Price: 5, Quantity: 1}},
		Status:        "bogus",
		PaymentMethod: model.PaymentCash,
	})
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestStore_CatalogAndAnalytics(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, model.Category{Name: "Drinks", Order: 1, RestaurantID: "1"})
	require.NoError(t, err)

	prod, err := store.CreateProduct(ctx, model.Product{Name: "Tea", Price: 5, CategoryID: cat.ID, IsAvailable: true, RestaurantID: "1"})
	require.NoError(t, err)
	require.NotNil(t, prod.Category)
	assert.Equal(t, "Drinks", prod.Category.Name)

	price := int64(7)
	updated, err := store.UpdateProduct(ctx, prod.ID, model.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(7), updated.Price)
	assert.Equal(t, "Tea", updated.Name)

	_, err = store.CreateOrder(ctx, model.NewOrder{
		RestaurantID:  "1",
		TableNumber:   intPtr(2),
		Items:         []model.OrderItem{{Name: "Tea", Price: 7, Quantity: 3}},
		TotalAmount:   21,
		Status:        model.StatusPending,
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)

	stats, err := store.Analytics(ctx, model.StartOfDay(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Today.TotalOrders)
	assert.Equal(t, int64(21), stats.Today.TotalRevenue)
	require.Len(t, stats.TopItems, 1)
	assert.Equal(t, model.TopItem{Name: "Tea", Count: 3, Revenue: 21}, stats.TopItems[0])
}

func TestStore_SettingsDefaultsAndUpsert(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	st, err := store.GetSettings(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), *st)

	name := "Night Owl"
	st, err = store.UpdateSettings(ctx, "1", model.SettingsPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Night Owl", st.Name)
	assert.Equal(t, "EGP", st.Currency)

	st, err = store.GetSettings(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Night Owl", st.Name)
}
