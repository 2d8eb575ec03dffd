package model

import (
	"strconv"
	"time"
)

type TableStatus string

const (
	TableFree     TableStatus = "free"
	TableOccupied TableStatus = "occupied"
)

// Table is a physical table or the Pick & Go channel (Number 0).
// (RestaurantID, Number) is unique.
type Table struct {
	ID           string      `json:"id" db:"id"`
	Number       int         `json:"number" db:"number"`
	RestaurantID string      `json:"restaurantId" db:"restaurant_id"`
	Status       TableStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
}

// UnknownTableNumber marks a table known only by its id, recorded by the
// fallback store while the durable backend that issued the id is away.
const UnknownTableNumber = -1

// TableLabel renders a table number for customers and kitchen staff.
func TableLabel(number int) string {
	switch number {
	case PickupTableNumber:
		return "Pick & Go"
	case UnknownTableNumber:
		return "Unknown table"
	}
	return "Table " + strconv.Itoa(number)
}
