// Package backup serializes the expense table to a portable JSON snapshot
// and restores it with all-or-nothing semantics.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"tripwallet/internal/core"
)

// ExpenseStore is the repository surface the codec needs.
type ExpenseStore interface {
	AllExpenses(ctx context.Context) ([]core.Expense, error)
	ReplaceAllExpenses(ctx context.Context, expenses []core.Expense) error
}

// record is the snapshot row. Field names match the Expense entity; unknown
// fields in a newer snapshot are ignored on restore, so older builds can
// read forward.
type record struct {
	ID               int64  `json:"id,omitempty"`
	Amount           int64  `json:"amount"`
	AmountInHome     int64  `json:"amount_in_home_currency"`
	HomeCurrency     string `json:"home_currency"`
	SelectedCurrency string `json:"selected_currency"`
	CountryID        int64  `json:"country_id"`
	TripID           *int64 `json:"trip_id,omitempty"`
	Type             string `json:"expense_types"`
	Date             int64  `json:"date"`
}

type Codec struct {
	store ExpenseStore
}

func New(store ExpenseStore) *Codec {
	return &Codec{store: store}
}

// Dump serializes every expense row to an indented JSON array. An empty
// table dumps as an empty array, which restores cleanly.
func (c *Codec) Dump(ctx context.Context) (string, error) {
	expenses, err := c.store.AllExpenses(ctx)
	if err != nil {
		return "", fmt.Errorf("read expenses: %w", err)
	}

	records := make([]record, len(expenses))
	for i, e := range expenses {
		records[i] = record{
			ID:               e.ID,
			Amount:           e.Amount.Cents,
			AmountInHome:     e.AmountInHome.Cents,
			HomeCurrency:     e.HomeCurrency,
			SelectedCurrency: e.SelectedCurrency,
			CountryID:        e.CountryID,
			TripID:           e.TripID,
			Type:             e.Type,
			Date:             e.Date,
		}
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot dumped", "rows", len(records))
	return string(out), nil
}

// Restore parses the snapshot fully before touching the store, then replaces
// the expense table in one transaction. A parse error or any failed insert
// leaves the pre-restore data intact.
func (c *Codec) Restore(ctx context.Context, snapshot string) error {
	var records []record
	if err := json.Unmarshal([]byte(snapshot), &records); err != nil {
		return fmt.Errorf("%w: malformed snapshot: %v", core.ErrValidation, err)
	}

	expenses := make([]core.Expense, len(records))
	for i, r := range records {
		e := core.Expense{
			Amount:           core.Money{Cents: r.Amount},
			AmountInHome:     core.Money{Cents: r.AmountInHome},
			HomeCurrency:     r.HomeCurrency,
			SelectedCurrency: r.SelectedCurrency,
			CountryID:        r.CountryID,
			TripID:           r.TripID,
			Type:             r.Type,
			Date:             r.Date,
		}
		if err := e.Validate(); err != nil {
			return fmt.Errorf("snapshot record %d: %w", i, err)
		}
		expenses[i] = e
	}

	if err := c.store.ReplaceAllExpenses(ctx, expenses); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot restored", "rows", len(expenses))
	return nil
}
