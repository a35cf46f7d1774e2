package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tripwallet/internal/core"
)

// SeedCountries inserts reference countries, skipping names already present.
// Safe to run on every start; the country set only grows.
func (r *Repository) SeedCountries(ctx context.Context, countries []core.Country) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin seed countries", err)
	}
	defer tx.Rollback()

	for _, c := range countries {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO countries (name, flag, currency) VALUES (?, ?, ?)",
			c.Name, c.Flag, c.Currency); err != nil {
			return storageErr("seed country", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit seed countries", err)
	}
	return nil
}

func (r *Repository) ListCountries(ctx context.Context) ([]core.Country, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, flag, currency FROM countries ORDER BY name")
	if err != nil {
		return nil, storageErr("list countries", err)
	}
	defer rows.Close()

	var out []core.Country
	for rows.Next() {
		var c core.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Flag, &c.Currency); err != nil {
			return nil, storageErr("scan country", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list countries", err)
	}
	return out, nil
}

func (r *Repository) CountryByID(ctx context.Context, id int64) (core.Country, error) {
	var c core.Country
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, flag, currency FROM countries WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Flag, &c.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("country %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return c, storageErr("get country", err)
	}
	return c, nil
}

// AddCustomCategory inserts a user-defined category. Keys colliding with a
// built-in are rejected up front; duplicate custom keys fail on the unique
// constraint.
func (r *Repository) AddCustomCategory(ctx context.Context, c core.CustomCategory) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if core.Builtin(c.Key) {
		return 0, fmt.Errorf("%w: %q is a built-in category", core.ErrValidation, c.Key)
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO custom_categories (key, text, color, icon) VALUES (?, ?, ?, ?)",
		c.Key, c.Text, c.Color, c.Icon)
	if err != nil {
		return 0, storageErr("insert custom category", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert custom category id", err)
	}
	slog.InfoContext(ctx, "Custom category added", "key", c.Key)
	return id, nil
}

func (r *Repository) ListCustomCategories(ctx context.Context) ([]core.CustomCategory, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, key, text, color, icon FROM custom_categories ORDER BY id")
	if err != nil {
		return nil, storageErr("list custom categories", err)
	}
	defer rows.Close()

	var out []core.CustomCategory
	for rows.Next() {
		var c core.CustomCategory
		if err := rows.Scan(&c.ID, &c.Key, &c.Text, &c.Color, &c.Icon); err != nil {
			return nil, storageErr("scan custom category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list custom categories", err)
	}
	return out, nil
}

func (r *Repository) DeleteCustomCategory(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM custom_categories WHERE key = ?", key); err != nil {
		return storageErr("delete custom category", err)
	}
	return nil
}

// CategorySet loads custom categories and merges them with the built-ins.
func (r *Repository) CategorySet(ctx context.Context) (*core.CategorySet, error) {
	custom, err := r.ListCustomCategories(ctx)
	if err != nil {
		return nil, err
	}
	return core.NewCategorySet(custom), nil
}

// HomeCountry resolves the singleton home-country row. A missing row is
// core.ErrNoHomeCountry, never a silent default.
func (r *Repository) HomeCountry(ctx context.Context) (core.Country, error) {
	return r.singletonCountry(ctx, "home_country", core.ErrNoHomeCountry)
}

func (r *Repository) SetHomeCountry(ctx context.Context, countryID int64) error {
	return r.setSingletonCountry(ctx, "home_country", countryID)
}

// CurrentCountry resolves the singleton current-country row, nil when unset.
func (r *Repository) CurrentCountry(ctx context.Context) (*core.Country, error) {
	c, err := r.singletonCountry(ctx, "current_country", core.ErrNotFound)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) SetCurrentCountry(ctx context.Context, countryID int64) error {
	return r.setSingletonCountry(ctx, "current_country", countryID)
}

func (r *Repository) Subscription(ctx context.Context) (core.Subscription, error) {
	var s core.Subscription
	var active int64
	err := r.db.QueryRowContext(ctx, "SELECT active, updated_at FROM subscription WHERE id = 1").
		Scan(&active, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, nil
	}
	if err != nil {
		return s, storageErr("get subscription", err)
	}
	s.Active = active != 0
	return s, nil
}

func (r *Repository) SetSubscription(ctx context.Context, active bool) error {
	v := 0
	if active {
		v = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscription (id, active, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET active = excluded.active, updated_at = excluded.updated_at`,
		v, time.Now().Unix())
	if err != nil {
		return storageErr("set subscription", err)
	}
	return nil
}

func (r *Repository) singletonCountry(ctx context.Context, table string, missing error) (core.Country, error) {
	var c core.Country
	err := r.db.QueryRowContext(ctx,
		"SELECT c.id, c.name, c.flag, c.currency FROM "+table+" s JOIN countries c ON c.id = s.country_id WHERE s.id = 1").
		Scan(&c.ID, &c.Name, &c.Flag, &c.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return c, missing
	}
	if err != nil {
		return c, storageErr("get "+table, err)
	}
	return c, nil
}

func (r *Repository) setSingletonCountry(ctx context.Context, table string, countryID int64) error {
	if _, err := r.CountryByID(ctx, countryID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO "+table+" (id, country_id) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET country_id = excluded.country_id",
		countryID)
	if err != nil {
		return storageErr("set "+table, err)
	}
	return nil
}
