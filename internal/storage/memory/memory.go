// Package memory is the process-lifetime fallback store used when the
// durable backend is unreachable. State is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/storage"
)

// Id prefixes, one per entity kind.
const (
	kindOrder    = "mock-order"
	kindCategory = "mock-cat"
	kindProduct  = "mock-prod"
	kindTable    = "mock-table"
	kindRequest  = "req"
)

// Store keeps every entity in slices guarded by one mutex. Operations are
// atomic individually; nothing spans more than one call.
type Store struct {
	mu sync.Mutex

	restaurantID string
	now          func() time.Time
	withSeed     bool
	seeded       bool
	lastStamp    int64

	orders     []model.Order
	tables     []model.Table
	categories []model.Category
	products   []model.Product
	requests   []model.ServiceRequest
	settings   model.Settings
}

type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithoutSeed starts the store empty instead of with the demo data.
func WithoutSeed() Option {
	return func(s *Store) { s.withSeed = false }
}

func New(restaurantID string, opts ...Option) *Store {
	s := &Store{
		restaurantID: restaurantID,
		now:          time.Now,
		withSeed:     true,
		settings:     model.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lock acquires the store and seeds it on first use.
func (s *Store) lock() error {
	s.mu.Lock()
	if s.seeded {
		return nil
	}
	s.seeded = true
	if !s.withSeed {
		return nil
	}
	if err := s.seed(); err != nil {
		s.mu.Unlock()
		return err
	}
	return nil
}

// newID returns "<kind>-<timestamp>" with a timestamp strictly greater than
// any previously issued one.
func (s *Store) newID(kind string) string {
	stamp := s.now().UnixNano()
	if stamp <= s.lastStamp {
		stamp = s.lastStamp + 1
	}
	s.lastStamp = stamp
	return kind + "-" + strconv.FormatInt(stamp, 10)
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Orders

func (s *Store) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	// Insertion order breaks ties between equal timestamps.
	out := make([]model.Order, 0, len(s.orders))
	for i := range s.orders {
		o := s.orders[i]
		if filter.Sort == model.NewestFirst {
			o = s.orders[len(s.orders)-1-i]
		}
		if filter.Matches(o.Status) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if filter.Sort == model.OldestFirst {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	i := s.orderIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("memory: order %s: %w", id, storage.ErrNotFound)
	}
	o := cloneOrder(s.orders[i])
	return &o, nil
}

func (s *Store) CreateOrder(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var table model.Table
	switch {
	case in.TableID != "":
		if i := s.tableIndex(in.TableID); i >= 0 {
			table = s.tables[i]
			break
		}
		// The id was issued by the durable backend before it went away.
		number := model.UnknownTableNumber
		if in.TableNumber != nil {
			number = *in.TableNumber
		}
		table = model.Table{ID: in.TableID, Number: number, RestaurantID: in.RestaurantID, Status: model.TableOccupied, CreatedAt: s.now()}
		s.tables = append(s.tables, table)
	case in.TableNumber != nil:
		table = s.resolveTableLocked(in.RestaurantID, *in.TableNumber)
	default:
		return nil, storage.Invalid("tableId", "missing table info")
	}

	now := s.now()
	o := model.Order{
		ID:            s.newID(kindOrder),
		OrderNumber:   in.OrderNumber,
		TableID:       table.ID,
		TableNumber:   table.Number,
		Items:         cloneItems(in.Items),
		TotalAmount:   in.TotalAmount,
		Status:        in.Status,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.orders = append(s.orders, o)
	out := cloneOrder(o)
	return &out, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	i := s.orderIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("memory: order %s: %w", id, storage.ErrNotFound)
	}
	s.orders[i].Status = status
	s.orders[i].UpdatedAt = s.now()
	o := cloneOrder(s.orders[i])
	return &o, nil
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	i := s.orderIndex(id)
	if i < 0 {
		return fmt.Errorf("memory: order %s: %w", id, storage.ErrNotFound)
	}
	s.orders = append(s.orders[:i], s.orders[i+1:]...)
	return nil
}

func (s *Store) orderIndex(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}

// Tables

func (s *Store) ListTables(ctx context.Context, restaurantID string) ([]model.Table, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.Table, 0, len(s.tables))
	for _, t := range s.tables {
		if restaurantID == "" || t.RestaurantID == restaurantID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *Store) GetTable(ctx context.Context, id string) (*model.Table, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	i := s.tableIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("memory: table %s: %w", id, storage.ErrNotFound)
	}
	t := s.tables[i]
	return &t, nil
}

func (s *Store) ResolveTable(ctx context.Context, restaurantID string, number int) (*model.Table, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	t := s.resolveTableLocked(restaurantID, number)
	return &t, nil
}

func (s *Store) UpdateTableStatus(ctx context.Context, id string, status model.TableStatus) (*model.Table, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	i := s.tableIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("memory: table %s: %w", id, storage.ErrNotFound)
	}
	s.tables[i].Status = status
	t := s.tables[i]
	return &t, nil
}

func (s *Store) resolveTableLocked(restaurantID string, number int) model.Table {
	for _, t := range s.tables {
		if t.RestaurantID == restaurantID && t.Number == number {
			return t
		}
	}
	t := model.Table{
		ID:           s.newID(kindTable),
		Number:       number,
		RestaurantID: restaurantID,
		Status:       model.TableOccupied,
		CreatedAt:    s.now(),
	}
	s.tables = append(s.tables, t)
	return t
}

func (s *Store) tableIndex(id string) int {
	for i := range s.tables {
		if s.tables[i].ID == id {
			return i
		}
	}
	return -1
}

// Categories

func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := append([]model.Category(nil), s.categories...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	i := s.categoryIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("memory: category %s: %w", id, storage.ErrNotFound)
	}
	c := s.categories[i]
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = s.newID(kindCategory)
	}
	if c.RestaurantID == "" {
		c.RestaurantID = s.restaurantID
	}
	c.CreatedAt = s.now()
	s.categories = append(s.categories, c)
	return &c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	i := s.categoryIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("memory: category %s: %w", id, storage.ErrNotFound)
	}
	patch.Apply(&s.categories[i])
	c := s.categories[i]
	return &c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	i := s.categoryIndex(id)
	if i < 0 {
		return fmt.Errorf("memory: category %s: %w", id, storage.ErrNotFound)
	}
	s.categories = append(s.categories[:i], s.categories[i+1:]...)
	return nil
}

func (s *Store) categoryIndex(id string) int {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return i
		}
	}
	return -1
}

// Products

func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.Product, 0, len(s.products))
	for i := len(s.products) - 1; i >= 0; i-- {
		out = append(out, s.populate(s.products[i]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("memory: product %s: %w", id, storage.ErrNotFound)
	}
	p := s.populate(s.products[i])
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.newID(kindProduct)
	}
	if p.RestaurantID == "" {
		p.RestaurantID = s.restaurantID
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	p.Category = nil
	s.products = append(s.products, p)
	out := s.populate(p)
	return &out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("memory: product %s: %w", id, storage.ErrNotFound)
	}
	patch.Apply(&s.products[i])
	p := s.populate(s.products[i])
	return &p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return fmt.Errorf("memory: product %s: %w", id, storage.ErrNotFound)
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

func (s *Store) productIndex(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

// populate embeds the category the way the durable backend's join does.
func (s *Store) populate(p model.Product) model.Product {
	ref := &model.CategoryRef{ID: p.CategoryID, Name: model.UnknownCategoryName}
	if i := s.categoryIndex(p.CategoryID); i >= 0 {
		ref.Name = s.categories[i].Name
	}
	p.Category = ref
	p.Options = append([]model.Option(nil), p.Options...)
	return p
}

// Settings

func (s *Store) GetSettings(ctx context.Context, restaurantID string) (*model.Settings, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := s.settings
	return &out, nil
}

func (s *Store) UpdateSettings(ctx context.Context, restaurantID string, patch model.SettingsPatch) (*model.Settings, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	patch.Apply(&s.settings)
	out := s.settings
	return &out, nil
}

// Analytics

func (s *Store) Analytics(ctx context.Context, since time.Time) (*model.Analytics, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	a := model.ComputeAnalytics(s.orders, since)
	return &a, nil
}

// Service requests

func (s *Store) ListServiceRequests(ctx context.Context) ([]model.ServiceRequest, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	return append([]model.ServiceRequest{}, s.requests...), nil
}

func (s *Store) CreateServiceRequest(ctx context.Context, r model.ServiceRequest) (*model.ServiceRequest, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	r.ID = s.newID(kindRequest)
	r.Status = model.RequestPending
	r.CreatedAt = s.now()
	s.requests = append(s.requests, r)
	return &r, nil
}

func (s *Store) ResolveServiceRequest(ctx context.Context, id string) (*model.ServiceRequest, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	for i := range s.requests {
		if s.requests[i].ID == id {
			s.requests[i].Status = model.RequestResolved
			r := s.requests[i]
			return &r, nil
		}
	}
	return nil, fmt.Errorf("memory: service request %s: %w", id, storage.ErrNotFound)
}

func cloneItems(items []model.OrderItem) []model.OrderItem {
	out := make([]model.OrderItem, len(items))
	for i, it := range items {
		it.Options = append([]model.Option(nil), it.Options...)
		out[i] = it
	}
	return out
}

func cloneOrder(o model.Order) model.Order {
	o.Items = cloneItems(o.Items)
	return o
}
