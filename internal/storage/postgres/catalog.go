package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/storage"
)

// Categories

const categoryColumns = `id::text, name, sort_order, restaurant_id, created_at`

func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, mapError("failed to query categories", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Order, &c.RestaurantID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating categories: %w", err)
	}
	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if _, ok := parseID(id); !ok {
		return nil, notFound("category", id)
	}
	var c model.Category
	err := s.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Order, &c.RestaurantID, &c.CreatedAt)
	if err != nil {
		return nil, mapError("failed to select category "+id, err)
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO categories (id, name, sort_order, restaurant_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		id, c.Name, c.Order, c.RestaurantID, time.Now().UTC(),
	).Scan(&c.ID, &c.Name, &c.Order, &c.RestaurantID, &c.CreatedAt)
	if err != nil {
		return nil, mapError("failed to insert category", err)
	}
	return &c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	if _, ok := parseID(id); !ok {
		return nil, notFound("category", id)
	}
	var c model.Category
	err := s.pool.QueryRow(ctx, `
		UPDATE categories
		SET name = COALESCE($2, name), sort_order = COALESCE($3, sort_order)
		WHERE id = $1
		RETURNING `+categoryColumns,
		id, patch.Name, patch.Order,
	).Scan(&c.ID, &c.Name, &c.Order, &c.RestaurantID, &c.CreatedAt)
	if err != nil {
		return nil, mapError("failed to update category "+id, err)
	}
	return &c, nil
}

// DeleteCategory also removes the category's products.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if _, ok := parseID(id); !ok {
		return notFound("category", id)
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapError("failed to delete category "+id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("category", id)
	}
	return nil
}

// Products

const productSelect = `
	SELECT p.id::text, p.name, p.description, p.price, p.image, p.category_id::text,
	       COALESCE(c.name, ''), p.is_available, p.options, p.restaurant_id, p.created_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.pool.Query(ctx, productSelect+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, mapError("failed to query products", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if _, ok := parseID(id); !ok {
		return nil, notFound("product", id)
	}
	p, err := scanProduct(s.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, mapError("failed to select product "+id, err)
	}
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	if _, ok := parseID(p.CategoryID); !ok {
		return nil, storage.Invalid("categoryId", "unknown category "+p.CategoryID)
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}
	options, err := encodeOptions(p.Options)
	if err != nil {
		return nil, err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO products (id, name, description, price, image, category_id, is_available, options, restaurant_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, p.Name, p.Description, p.Price, p.Image, p.CategoryID, p.IsAvailable, options, p.RestaurantID, time.Now().UTC(),
	)
	if err != nil {
		return nil, mapError("failed to insert product", err)
	}
	return s.GetProduct(ctx, id.String())
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	if _, ok := parseID(id); !ok {
		return nil, notFound("product", id)
	}
	if patch.CategoryID != nil {
		if _, ok := parseID(*patch.CategoryID); !ok {
			return nil, storage.Invalid("categoryId", "unknown category "+*patch.CategoryID)
		}
	}
	var options []byte
	if patch.Options != nil {
		var err error
		if options, err = encodeOptions(*patch.Options); err != nil {
			return nil, err
		}
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE products SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			price = COALESCE($4, price),
			image = COALESCE($5, image),
			category_id = COALESCE($6::uuid, category_id),
			is_available = COALESCE($7, is_available),
			options = COALESCE($8::jsonb, options)
		WHERE id = $1`,
		id, patch.Name, patch.Description, patch.Price, patch.Image, patch.CategoryID, patch.IsAvailable, options,
	)
	if err != nil {
		return nil, mapError("failed to update product "+id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, notFound("product", id)
	}
	return s.GetProduct(ctx, id)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if _, ok := parseID(id); !ok {
		return notFound("product", id)
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapError("failed to delete product "+id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("product", id)
	}
	return nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var (
		p            model.Product
		categoryName string
		options      []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.CategoryID,
		&categoryName, &p.IsAvailable, &options, &p.RestaurantID, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryName == "" {
		categoryName = model.UnknownCategoryName
	}
	p.Category = &model.CategoryRef{ID: p.CategoryID, Name: categoryName}
	if p.Options, err = decodeOptions(options); err != nil {
		return nil, err
	}
	return &p, nil
}
