package model

import (
	"sort"
	"time"
)

type DayStats struct {
	TotalOrders  int   `json:"totalOrders" db:"total_orders"`
	TotalRevenue int64 `json:"totalRevenue" db:"total_revenue"`
}

type TopItem struct {
	Name    string `json:"name" db:"name"`
	Count   int    `json:"count" db:"count"`
	Revenue int64  `json:"revenue" db:"revenue"`
}

type Analytics struct {
	Today    DayStats  `json:"today"`
	TopItems []TopItem `json:"topItems"`
}

// TopItemsLimit caps the best-seller list.
const TopItemsLimit = 5

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ComputeAnalytics aggregates orders the same way the SQL backend does:
// today's count and revenue, and all-time best sellers by quantity.
func ComputeAnalytics(orders []Order, since time.Time) Analytics {
	var out Analytics
	byName := make(map[string]*TopItem)
	for _, o := range orders {
		if !o.CreatedAt.Before(since) {
			out.Today.TotalOrders++
			out.Today.TotalRevenue += o.TotalAmount
		}
		for _, it := range o.Items {
			ti, ok := byName[it.Name]
			if !ok {
				ti = &TopItem{Name: it.Name}
				byName[it.Name] = ti
			}
			ti.Count += it.Quantity
			ti.Revenue += it.Price * int64(it.Quantity)
		}
	}

	out.TopItems = make([]TopItem, 0, len(byName))
	for _, ti := range byName {
		out.TopItems = append(out.TopItems, *ti)
	}
	sort.Slice(out.TopItems, func(i, j int) bool {
		if out.TopItems[i].Count != out.TopItems[j].Count {
			return out.TopItems[i].Count > out.TopItems[j].Count
		}
		return out.TopItems[i].Name < out.TopItems[j].Name
	})
	if len(out.TopItems) > TopItemsLimit {
		out.TopItems = out.TopItems[:TopItemsLimit]
	}
	return out
}
