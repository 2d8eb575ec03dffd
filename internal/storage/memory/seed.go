package memory

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vasiliy-maslov/quickorder/internal/model"
)

//go:embed seed.yaml
var seedYAML []byte

type seedItem struct {
	Name     string         `yaml:"name"`
	Quantity int            `yaml:"quantity"`
	Price    int64          `yaml:"price"`
	Options  []model.Option `yaml:"options"`
}

type seedOrder struct {
	ID            string              `yaml:"id"`
	OrderNumber   int                 `yaml:"orderNumber"`
	TableNumber   int                 `yaml:"tableNumber"`
	Status        model.OrderStatus   `yaml:"status"`
	PaymentMethod model.PaymentMethod `yaml:"paymentMethod"`
	AgeMinutes    int                 `yaml:"ageMinutes"`
	Items         []seedItem          `yaml:"items"`
}

type seedData struct {
	Settings   model.Settings   `yaml:"settings"`
	Categories []model.Category `yaml:"categories"`
	Products   []model.Product  `yaml:"products"`
	Orders     []seedOrder      `yaml:"orders"`
}

func loadSeed() (*seedData, error) {
	var data seedData
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return nil, fmt.Errorf("memory: decode seed: %w", err)
	}
	return &data, nil
}

// seed fills an empty store with the demo catalog and demo kitchen orders.
// Caller holds s.mu.
func (s *Store) seed() error {
	data, err := loadSeed()
	if err != nil {
		return err
	}

	now := s.now()
	s.settings = data.Settings

	for _, c := range data.Categories {
		c.RestaurantID = s.restaurantID
		c.CreatedAt = now
		s.categories = append(s.categories, c)
	}
	for _, p := range data.Products {
		p.RestaurantID = s.restaurantID
		p.CreatedAt = now
		s.products = append(s.products, p)
	}
	for _, so := range data.Orders {
		table := s.resolveTableLocked(s.restaurantID, so.TableNumber)
		items := make([]model.OrderItem, 0, len(so.Items))
		for _, si := range so.Items {
			items = append(items, model.OrderItem{
				Name:     si.Name,
				Price:    si.Price,
				Quantity: si.Quantity,
				Options:  si.Options,
			})
		}
		created := now.Add(-time.Duration(so.AgeMinutes) * time.Minute)
		s.orders = append(s.orders, model.Order{
			ID:            so.ID,
			OrderNumber:   so.OrderNumber,
			TableID:       table.ID,
			TableNumber:   table.Number,
			Items:         items,
			TotalAmount:   model.ItemsTotal(items),
			Status:        so.Status,
			PaymentMethod: so.PaymentMethod,
			CreatedAt:     created,
			UpdatedAt:     created,
		})
	}
	return nil
}
