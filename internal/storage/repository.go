package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tripwallet/internal/core"

	_ "modernc.org/sqlite"
)

// Repository is the single shared connection to the embedded store. The
// store serializes writes; multi-statement mutations run inside explicit
// transactions.
type Repository struct {
	db *sql.DB
}

func Open(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const (
	expenseColumns     = "e.id, e.amount, e.amount_in_home_currency, e.home_currency, e.selected_currency, e.country_id, e.trip_id, e.expense_types, e.date"
	expenseColumnsBare = "id, amount, amount_in_home_currency, home_currency, selected_currency, country_id, trip_id, expense_types, date"
)

// ListExpenses returns expenses matching the filter joined with their
// country's display fields, newest first, ties broken by insertion order.
func (r *Repository) ListExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.ExpandedExpense, error) {
	where, args, err := whereFilter(f)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + expenseColumns + ", c.name, c.flag FROM expenses e JOIN countries c ON c.id = e.country_id" +
		where + " ORDER BY e.date DESC, e.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list expenses", err)
	}
	defer rows.Close()

	var out []core.ExpandedExpense
	for rows.Next() {
		var e core.ExpandedExpense
		var tripID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Amount.Cents, &e.AmountInHome.Cents, &e.HomeCurrency,
			&e.SelectedCurrency, &e.CountryID, &tripID, &e.Type, &e.Date, &e.Country, &e.Flag); err != nil {
			return nil, storageErr("scan expense", err)
		}
		if tripID.Valid {
			id := tripID.Int64
			e.TripID = &id
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list expenses", err)
	}
	return out, nil
}

// AddExpense inserts a validated expense and returns its id. Currency
// resolution happened upstream; this layer performs no conversion.
func (r *Repository) AddExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (amount, amount_in_home_currency, home_currency, selected_currency, country_id, trip_id, expense_types, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Amount.Cents, e.AmountInHome.Cents, e.HomeCurrency, e.SelectedCurrency,
		e.CountryID, nullableID(e.TripID), e.Type, e.Date)
	if err != nil {
		return 0, storageErr("insert expense", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert expense id", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"amount_cents", e.Amount.Cents,
		"home_cents", e.AmountInHome.Cents,
		"type", e.Type,
		"country_id", e.CountryID)
	return id, nil
}

// DeleteExpense removes an expense. Deleting a missing id is not an error.
func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id); err != nil {
		return storageErr("delete expense", err)
	}
	return nil
}

// SumHomeCurrency sums amount_in_home_currency over matching rows, restricted
// to rows whose home_currency equals the configured home country's currency.
// Rows recorded under a previously selected home currency are excluded; see
// DESIGN.md for why this stays.
func (r *Repository) SumHomeCurrency(ctx context.Context, f core.ExpenseFilter) (int64, error) {
	home, err := r.HomeCountry(ctx)
	if err != nil {
		return 0, err
	}

	clause, args, err := buildFilter(f)
	if err != nil {
		return 0, err
	}
	query := "SELECT COALESCE(SUM(e.amount_in_home_currency), 0) FROM expenses e WHERE e.home_currency = ?"
	if clause != "" {
		query += " AND " + clause
	}
	args = append([]any{home.Currency}, args...)

	var sum int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, storageErr("sum home currency", err)
	}
	return sum, nil
}

// AllExpenses reads the whole expense table unfiltered, in insertion order.
// Used by the backup codec.
func (r *Repository) AllExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+expenseColumnsBare+" FROM expenses ORDER BY id")
	if err != nil {
		return nil, storageErr("read all expenses", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		var tripID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Amount.Cents, &e.AmountInHome.Cents, &e.HomeCurrency,
			&e.SelectedCurrency, &e.CountryID, &tripID, &e.Type, &e.Date); err != nil {
			return nil, storageErr("scan expense", err)
		}
		if tripID.Valid {
			id := tripID.Int64
			e.TripID = &id
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("read all expenses", err)
	}
	return out, nil
}

// ReplaceAllExpenses deletes every expense row and reinserts the given set in
// one transaction. Any failure rolls the whole replacement back, leaving the
// previous data intact.
func (r *Repository) ReplaceAllExpenses(ctx context.Context, expenses []core.Expense) error {
	for _, e := range expenses {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin restore", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses"); err != nil {
		return storageErr("wipe expenses", err)
	}
	for _, e := range expenses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (amount, amount_in_home_currency, home_currency, selected_currency, country_id, trip_id, expense_types, date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Amount.Cents, e.AmountInHome.Cents, e.HomeCurrency, e.SelectedCurrency,
			e.CountryID, nullableID(e.TripID), e.Type, e.Date); err != nil {
			return storageErr("restore expense", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit restore", err)
	}

	slog.InfoContext(ctx, "Expense table replaced", "rows", len(expenses))
	return nil
}

// AddTrip inserts a trip (inactive). Activation is a separate step so the
// single-active invariant has exactly one writer.
func (r *Repository) AddTrip(ctx context.Context, t core.Trip) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO trips (name, country_id, base_currency, target_currency, start_date, end_date, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		t.Name, t.CountryID, t.BaseCurrency, t.TargetCurrency, nullableID(t.StartDate), nullableID(t.EndDate))
	if err != nil {
		return 0, storageErr("insert trip", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert trip id", err)
	}
	return id, nil
}

func (r *Repository) ListTrips(ctx context.Context) ([]core.Trip, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, country_id, base_currency, target_currency, start_date, end_date, is_active FROM trips ORDER BY id DESC")
	if err != nil {
		return nil, storageErr("list trips", err)
	}
	defer rows.Close()

	var out []core.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list trips", err)
	}
	return out, nil
}

// ActiveTrip returns the active trip, or nil when none is active. No active
// trip is a valid state, not a failure.
func (r *Repository) ActiveTrip(ctx context.Context) (*core.Trip, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, country_id, base_currency, target_currency, start_date, end_date, is_active FROM trips WHERE is_active = 1")
	t, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SetActiveTrip deactivates all trips and activates the target atomically.
func (r *Repository) SetActiveTrip(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin activate trip", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE trips SET is_active = 0 WHERE is_active = 1"); err != nil {
		return storageErr("deactivate trips", err)
	}
	res, err := tx.ExecContext(ctx, "UPDATE trips SET is_active = 1 WHERE id = ?", id)
	if err != nil {
		return storageErr("activate trip", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("activate trip", err)
	}
	if n == 0 {
		return fmt.Errorf("trip %d: %w", id, core.ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit activate trip", err)
	}

	slog.InfoContext(ctx, "Trip activated", "trip_id", id)
	return nil
}

// DeleteTrip removes the trip and its expenses in one transaction, expenses
// first, so a partial cascade is never observed.
func (r *Repository) DeleteTrip(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin delete trip", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE trip_id = ?", id); err != nil {
		return storageErr("delete trip expenses", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM trips WHERE id = ?", id); err != nil {
		return storageErr("delete trip", err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit delete trip", err)
	}

	slog.InfoContext(ctx, "Trip deleted with expenses", "trip_id", id)
	return nil
}

func nullableID(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (core.Trip, error) {
	var t core.Trip
	var start, end sql.NullInt64
	var active int64
	if err := row.Scan(&t.ID, &t.Name, &t.CountryID, &t.BaseCurrency, &t.TargetCurrency, &start, &end, &active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, storageErr("scan trip", err)
	}
	if start.Valid {
		v := start.Int64
		t.StartDate = &v
	}
	if end.Valid {
		v := end.Int64
		t.EndDate = &v
	}
	t.IsActive = active != 0
	return t, nil
}
