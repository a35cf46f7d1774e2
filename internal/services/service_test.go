package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tripwallet/internal/core"
	"tripwallet/internal/rates"
	"tripwallet/internal/storage"
)

// fakeRates returns a fixed factor and counts calls.
type fakeRates struct {
	factor float64
	err    error
	calls  int
}

func (f *fakeRates) Resolve(ctx context.Context, from, to, isoDate string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.factor, nil
}

func testService(t *testing.T, r RateResolver) (*Service, []core.Country) {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	if err := repo.SeedCountries(ctx, []core.Country{
		{Name: "Euro Area", Flag: "🇪🇺", Currency: "EUR"},
		{Name: "Japan", Flag: "🇯🇵", Currency: "JPY"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	countries, err := repo.ListCountries(ctx)
	if err != nil {
		t.Fatalf("list countries: %v", err)
	}
	if err := repo.SetHomeCountry(ctx, countries[0].ID); err != nil {
		t.Fatalf("set home: %v", err)
	}
	return New(repo, r), countries
}

func TestCreateExpenseResolvesHomeAmount(t *testing.T) {
	fr := &fakeRates{factor: 0.0065}
	svc, countries := testService(t, fr)
	ctx := context.Background()

	id, err := svc.CreateExpense(ctx, ExpenseDraft{
		AmountCents: 100000, // ¥1000.00
		CountryID:   countries[1].ID,
		Type:        "food",
		Date:        1711929600,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected assigned id")
	}

	list, err := svc.ListExpenses(ctx, core.ExpenseFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("want 1 expense, got %d", len(list))
	}
	e := list[0]
	if e.SelectedCurrency != "JPY" {
		t.Fatalf("selected currency should default to the country's, got %q", e.SelectedCurrency)
	}
	if e.HomeCurrency != "EUR" {
		t.Fatalf("home currency = %q", e.HomeCurrency)
	}
	if e.AmountInHome.Cents != 650 { // 100000 * 0.0065
		t.Fatalf("home amount = %d, want 650", e.AmountInHome.Cents)
	}
}

func TestCreateExpenseBlockedWithoutRate(t *testing.T) {
	boom := &rates.UnavailableError{From: "jpy", To: "eur", Date: "2024-04-01"}
	svc, countries := testService(t, &fakeRates{err: boom})
	ctx := context.Background()

	_, err := svc.CreateExpense(ctx, ExpenseDraft{
		AmountCents: 1000,
		CountryID:   countries[1].ID,
		Type:        "food",
		Date:        1711929600,
	})
	var unavailable *rates.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("got %v, want UnavailableError", err)
	}

	list, err := svc.ListExpenses(ctx, core.ExpenseFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("no expense may be recorded without a resolved rate")
	}
}

func TestCreateExpenseHomeCurrencyKeepsAmount(t *testing.T) {
	fr := &fakeRates{factor: 1}
	svc, countries := testService(t, fr)
	ctx := context.Background()

	if _, err := svc.CreateExpense(ctx, ExpenseDraft{
		AmountCents:      2500,
		SelectedCurrency: "eur",
		CountryID:        countries[0].ID,
		Type:             "food",
		Date:             1711929600,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := svc.ListExpenses(ctx, core.ExpenseFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].SelectedCurrency != "EUR" || list[0].AmountInHome.Cents != 2500 {
		t.Fatalf("home-currency expense should keep its amount: %+v", list[0])
	}
}

func TestReadCachesInvalidatedByMutation(t *testing.T) {
	fr := &fakeRates{factor: 1}
	svc, countries := testService(t, fr)
	ctx := context.Background()

	sum, err := svc.SumHomeCurrency(ctx, core.ExpenseFilter{})
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 0 {
		t.Fatalf("initial sum = %d", sum)
	}

	if _, err := svc.CreateExpense(ctx, ExpenseDraft{
		AmountCents: 1000, SelectedCurrency: "EUR", CountryID: countries[0].ID,
		Type: "food", Date: 1711929600,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// The write must be visible immediately; a cached 0 here is a bug.
	sum, err = svc.SumHomeCurrency(ctx, core.ExpenseFilter{})
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 1000 {
		t.Fatalf("sum after insert = %d, want 1000", sum)
	}

	groups, err := svc.GroupedStatistics(ctx, core.ExpenseFilter{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(groups) != 1 || groups[0].Percentage != 100 {
		t.Fatalf("breakdown = %+v", groups)
	}

	list, err := svc.ListExpenses(ctx, core.ExpenseFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := svc.DeleteExpense(ctx, list[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sum, err = svc.SumHomeCurrency(ctx, core.ExpenseFilter{})
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 0 {
		t.Fatalf("sum after delete = %d, want 0", sum)
	}
	groups, err = svc.GroupedStatistics(ctx, core.ExpenseFilter{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("breakdown should be empty after delete, got %+v", groups)
	}
}

func TestRestoreRoundTripThroughService(t *testing.T) {
	fr := &fakeRates{factor: 1}
	svc, countries := testService(t, fr)
	ctx := context.Background()

	for _, cents := range []int64{1000, 2500} {
		if _, err := svc.CreateExpense(ctx, ExpenseDraft{
			AmountCents: cents, SelectedCurrency: "EUR", CountryID: countries[0].ID,
			Type: "food", Date: 1711929600,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	snapshot, err := svc.Dump(ctx)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if err := svc.Restore(ctx, snapshot); err != nil {
		t.Fatalf("restore: %v", err)
	}

	sum, err := svc.SumHomeCurrency(ctx, core.ExpenseFilter{})
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 3500 {
		t.Fatalf("sum after restore = %d, want 3500", sum)
	}

	// A malformed snapshot leaves everything intact.
	if err := svc.Restore(ctx, "garbage"); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
	sum, _ = svc.SumHomeCurrency(ctx, core.ExpenseFilter{})
	if sum != 3500 {
		t.Fatalf("failed restore must not change data, sum = %d", sum)
	}
}
