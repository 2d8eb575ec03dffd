package model

import "time"

type Category struct {
	ID           string    `json:"id" db:"id" yaml:"id"`
	Name         string    `json:"name" db:"name" yaml:"name"`
	Order        int       `json:"order" db:"sort_order" yaml:"order"`
	RestaurantID string    `json:"restaurantId" db:"restaurant_id" yaml:"restaurantId"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at" yaml:"-"`
}

// CategoryRef is the populated category embedded in a product listing.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UnknownCategoryName is used when a product points at a missing category.
const UnknownCategoryName = "Unknown"

type Product struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Description  string       `json:"description,omitempty" yaml:"description"`
	Price        int64        `json:"price" yaml:"price"`
	Image        string       `json:"image,omitempty" yaml:"image"`
	CategoryID   string       `json:"categoryId" yaml:"categoryId"`
	Category     *CategoryRef `json:"category,omitempty" yaml:"-"`
	IsAvailable  bool         `json:"isAvailable" yaml:"isAvailable"`
	Options      []Option     `json:"options,omitempty" yaml:"options"`
	RestaurantID string       `json:"restaurantId,omitempty" yaml:"-"`
	CreatedAt    time.Time    `json:"createdAt" yaml:"-"`
}

// CategoryPatch carries the fields of a partial category update.
type CategoryPatch struct {
	Name  *string
	Order *int
}

// ProductPatch carries the fields of a partial product update.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *int64
	Image       *string
	CategoryID  *string
	IsAvailable *bool
	Options     *[]Option
}

func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Order != nil {
		c.Order = *p.Order
	}
}

func (p ProductPatch) Apply(pr *Product) {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.Price != nil {
		pr.Price = *p.Price
	}
	if p.Image != nil {
		pr.Image = *p.Image
	}
	if p.CategoryID != nil {
		pr.CategoryID = *p.CategoryID
	}
	if p.IsAvailable != nil {
		pr.IsAvailable = *p.IsAvailable
	}
	if p.Options != nil {
		pr.Options = *p.Options
	}
}
