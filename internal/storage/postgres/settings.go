package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vasiliy-maslov/quickorder/internal/model"
)

// GetSettings returns the stored settings, or the defaults when the
// restaurant has never saved any.
func (s *Store) GetSettings(ctx context.Context, restaurantID string) (*model.Settings, error) {
	return getSettings(ctx, s.pool, restaurantID)
}

func (s *Store) UpdateSettings(ctx context.Context, restaurantID string, patch model.SettingsPatch) (settings *model.Settings, err error) {
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		current, err := getSettings(ctx, tx, restaurantID)
		if err != nil {
			return err
		}
		patch.Apply(current)

		_, err = tx.Exec(ctx, `
			INSERT INTO restaurant_settings
				(restaurant_id, name, logo_url, currency, instapay_username, tax_id, commercial_reg, is_active, theme_color)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (restaurant_id) DO UPDATE SET
				name = EXCLUDED.name,
				logo_url = EXCLUDED.logo_url,
				currency = EXCLUDED.currency,
				instapay_username = EXCLUDED.instapay_username,
				tax_id = EXCLUDED.tax_id,
				commercial_reg = EXCLUDED.commercial_reg,
				is_active = EXCLUDED.is_active,
				theme_color = EXCLUDED.theme_color`,
			restaurantID, current.Name, current.LogoURL, current.Currency, current.InstapayUsername,
			current.TaxID, current.CommercialReg, current.IsActive, current.ThemeColor,
		)
		if err != nil {
			return mapError("failed to upsert settings", err)
		}
		settings = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func getSettings(ctx context.Context, q querier, restaurantID string) (*model.Settings, error) {
	var st model.Settings
	err := q.QueryRow(ctx, `
		SELECT name, logo_url, currency, instapay_username, tax_id, commercial_reg, is_active, theme_color
		FROM restaurant_settings
		WHERE restaurant_id = $1`, restaurantID,
	).Scan(&st.Name, &st.LogoURL, &st.Currency, &st.InstapayUsername, &st.TaxID, &st.CommercialReg, &st.IsActive, &st.ThemeColor)
	if errors.Is(err, pgx.ErrNoRows) {
		st = model.DefaultSettings()
		return &st, nil
	}
	if err != nil {
		return nil, mapError("failed to select settings", err)
	}
	return &st, nil
}

// Analytics aggregates in SQL. Revenue per item ignores option surcharges,
// matching the in-memory computation.
func (s *Store) Analytics(ctx context.Context, since time.Time) (*model.Analytics, error) {
	var out model.Analytics
	err := s.db.GetContext(ctx, &out.Today, `
		SELECT COUNT(*) AS total_orders, COALESCE(SUM(total_amount), 0)::bigint AS total_revenue
		FROM orders
		WHERE created_at >= $1`, since)
	if err != nil {
		return nil, mapError("failed to aggregate today's orders", err)
	}

	out.TopItems = make([]model.TopItem, 0, model.TopItemsLimit)
	err = s.db.SelectContext(ctx, &out.TopItems, `
		SELECT name, SUM(quantity)::bigint AS count, SUM(price * quantity)::bigint AS revenue
		FROM order_items
		GROUP BY name
		ORDER BY count DESC, name ASC
		LIMIT $1`, model.TopItemsLimit)
	if err != nil {
		return nil, mapError("failed to aggregate top items", err)
	}
	return &out, nil
}
