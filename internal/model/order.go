package model

import "time"

// OrderStatus is the lifecycle stage of an order.
type OrderStatus string

const (
	StatusPaymentVerification OrderStatus = "payment_verification"
	StatusPending             OrderStatus = "pending"
	StatusPreparing           OrderStatus = "preparing"
	StatusReady               OrderStatus = "ready"
	StatusServed              OrderStatus = "served"
	StatusPaid                OrderStatus = "paid"
)

func (s OrderStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPaymentVerification, StatusPending, StatusPreparing, StatusReady, StatusServed, StatusPaid:
		return true
	}
	return false
}

// ActiveStatuses are the statuses shown on the kitchen board.
var ActiveStatuses = []OrderStatus{
	StatusPaymentVerification,
	StatusPending,
	StatusPreparing,
	StatusReady,
}

// IsActive reports whether an order in status s still needs kitchen attention.
func (s OrderStatus) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentInstapay PaymentMethod = "instapay"
	PaymentOnline   PaymentMethod = "online"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentInstapay, PaymentOnline:
		return true
	}
	return false
}

// PickupTableNumber is the table number of the Pick & Go channel.
const PickupTableNumber = 0

// Option is a selected product option, copied into the order at submission.
type Option struct {
	Name  string `json:"name" yaml:"name"`
	Price int64  `json:"price" yaml:"price"`
}

// OrderItem is a snapshot of one cart line. Name, Price and Options are
// never re-derived from the catalog after the order is created.
type OrderItem struct {
	ProductID   string   `json:"productId,omitempty" db:"product_id"`
	Name        string   `json:"name" db:"name"`
	Price       int64    `json:"price" db:"price"`
	Quantity    int      `json:"quantity" db:"quantity"`
	Options     []Option `json:"options,omitempty" db:"-"`
	Instruction string   `json:"instruction,omitempty" db:"instruction"`
}

// UnitPrice is the item price including all selected options.
func (i OrderItem) UnitPrice() int64 {
	total := i.Price
	for _, o := range i.Options {
		total += o.Price
	}
	return total
}

// LineTotal is UnitPrice multiplied by quantity.
func (i OrderItem) LineTotal() int64 {
	return i.UnitPrice() * int64(i.Quantity)
}

// ItemsTotal sums line totals. Amounts are whole currency units.
func ItemsTotal(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

type Order struct {
	ID            string        `json:"id" db:"id"`
	OrderNumber   int           `json:"orderNumber" db:"order_number"`
	TableID       string        `json:"tableId" db:"table_id"`
	TableNumber   int           `json:"tableNumber" db:"table_number"`
	Items         []OrderItem   `json:"items" db:"-"`
	TotalAmount   int64         `json:"totalAmount" db:"total_amount"`
	Status        OrderStatus   `json:"status" db:"status"`
	PaymentMethod PaymentMethod `json:"paymentMethod" db:"payment_method"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}

// IsPickup reports whether the order belongs to the Pick & Go channel.
func (o Order) IsPickup() bool {
	return o.TableNumber == PickupTableNumber
}

// TableLabel is the human-facing location of the order.
func (o Order) TableLabel() string {
	return TableLabel(o.TableNumber)
}

// NewOrder is the input for order creation. Either TableID or TableNumber
// must identify the table.
type NewOrder struct {
	TableID       string
	RestaurantID  string
	TableNumber   *int
	OrderNumber   int
	Items         []OrderItem
	TotalAmount   int64
	Status        OrderStatus
	PaymentMethod PaymentMethod
}

// OrderSort selects the ordering of order listings.
type OrderSort int

const (
	NewestFirst OrderSort = iota
	OldestFirst
)

// OrderFilter narrows order listings. An empty Statuses matches all.
type OrderFilter struct {
	Statuses []OrderStatus
	Sort     OrderSort
}

// Matches reports whether s passes the status filter.
func (f OrderFilter) Matches(s OrderStatus) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, want := range f.Statuses {
		if want == s {
			return true
		}
	}
	return false
}
