// Package kitchen keeps the kitchen display in step with the server: a
// board of status columns, refreshed by polling and updated optimistically
// when staff act.
package kitchen

import (
	"sync"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/order"
)

// Columns are the board's swimlanes, left to right.
var Columns = []model.OrderStatus{
	model.StatusPaymentVerification,
	model.StatusPending,
	model.StatusPreparing,
	model.StatusReady,
}

// ColumnFor returns the index of the column showing status.
func ColumnFor(status model.OrderStatus) (int, bool) {
	for i, c := range Columns {
		if c == status {
			return i, true
		}
	}
	return -1, false
}

type Column struct {
	Status model.OrderStatus
	Orders []model.Order
}

// View is a copy of the board at one moment.
type View struct {
	Columns []Column
	// Unknown holds orders whose status has no column.
	Unknown  []model.Order
	Requests []model.ServiceRequest
}

// Count returns the number of orders on the board, unknown bucket included.
func (v View) Count() int {
	n := len(v.Unknown)
	for _, c := range v.Columns {
		n += len(c.Orders)
	}
	return n
}

// Board is the local kitchen state. It is safe for concurrent use by the
// poll loop and staff actions.
type Board struct {
	mu       sync.Mutex
	columns  [][]model.Order
	unknown  []model.Order
	requests []model.ServiceRequest
}

func NewBoard() *Board {
	return &Board{columns: make([][]model.Order, len(Columns))}
}

// Replace discards local state in favour of a fresh fetch. Served orders
// are dropped; any other status without a column goes to the unknown
// bucket. Orders keep the order they arrive in.
func (b *Board) Replace(orders []model.Order, requests []model.ServiceRequest) {
	columns := make([][]model.Order, len(Columns))
	var unknown []model.Order
	for _, o := range orders {
		if i, ok := ColumnFor(o.Status); ok {
			columns[i] = append(columns[i], o)
			continue
		}
		if o.Status == model.StatusServed {
			continue
		}
		unknown = append(unknown, o)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.columns = columns
	b.unknown = unknown
	b.requests = append([]model.ServiceRequest(nil), requests...)
}

// Advance moves an order one step along the ladder on the board only. An
// order reaching served leaves the board. It reports the new status and
// false when the order is not on the board or cannot advance.
func (b *Board) Advance(id string) (model.OrderStatus, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, col := range b.columns {
		for j, o := range col {
			if o.ID != id {
				continue
			}
			next, ok := order.Next(o.Status)
			if !ok {
				return o.Status, false
			}
			b.columns[i] = append(col[:j:j], col[j+1:]...)
			if to, ok := ColumnFor(next); ok {
				o.Status = next
				b.columns[to] = append(b.columns[to], o)
			}
			return next, true
		}
	}
	return "", false
}

// RemoveRequest drops a service request from the board.
func (b *Board) RemoveRequest(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, r := range b.requests {
		if r.ID == id {
			b.requests = append(b.requests[:i:i], b.requests[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := View{
		Columns:  make([]Column, len(Columns)),
		Unknown:  append([]model.Order(nil), b.unknown...),
		Requests: append([]model.ServiceRequest(nil), b.requests...),
	}
	for i, status := range Columns {
		v.Columns[i] = Column{Status: status, Orders: append([]model.Order(nil), b.columns[i]...)}
	}
	return v
}
