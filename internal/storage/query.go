package storage

import (
	"strings"

	"tripwallet/internal/core"
)

// buildFilter translates a sparse ExpenseFilter into a SQL predicate over the
// aliased expenses table ("e") plus its ordered positional arguments. Values
// never land in the SQL text. The returned clause is empty when no filter
// field is set, so callers decide whether to prepend WHERE.
func buildFilter(f core.ExpenseFilter) (string, []any, error) {
	var preds []string
	var args []any

	if f.CountryID != nil {
		preds = append(preds, "e.country_id = ?")
		args = append(args, *f.CountryID)
	}
	if f.TripID != nil {
		preds = append(preds, "e.trip_id = ?")
		args = append(args, *f.TripID)
	}
	if f.Category != "" {
		preds = append(preds, "e.expense_types = ?")
		args = append(args, f.Category)
	}
	if f.MonthYear != "" {
		start, end, err := core.MonthRange(f.MonthYear)
		if err != nil {
			return "", nil, err
		}
		preds = append(preds, "e.date >= ? AND e.date < ?")
		args = append(args, start, end)
	}
	if f.DateStart != nil {
		preds = append(preds, "e.date >= ?")
		args = append(args, *f.DateStart)
	}
	if f.DateEnd != nil {
		preds = append(preds, "e.date <= ?")
		args = append(args, *f.DateEnd)
	}

	return strings.Join(preds, " AND "), args, nil
}

// whereFilter is buildFilter with the WHERE keyword prepended when needed.
func whereFilter(f core.ExpenseFilter) (string, []any, error) {
	clause, args, err := buildFilter(f)
	if err != nil {
		return "", nil, err
	}
	if clause == "" {
		return "", nil, nil
	}
	return " WHERE " + clause, args, nil
}
