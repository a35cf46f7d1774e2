// Package services orchestrates the expense-entry flow and the cached read
// paths. Every mutation invalidates the read caches before it returns, so a
// write followed by a dependent read never sees stale data.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tripwallet/internal/backup"
	"tripwallet/internal/cache"
	"tripwallet/internal/core"
	"tripwallet/internal/stats"
	"tripwallet/internal/storage"
)

// RateResolver is the exchange-rate surface the entry flow needs.
type RateResolver interface {
	Resolve(ctx context.Context, from, to, isoDate string) (float64, error)
}

// ExpenseDraft is the raw expense-entry input before currency resolution.
type ExpenseDraft struct {
	AmountCents      int64  `json:"amount"`
	SelectedCurrency string `json:"selected_currency,omitempty"`
	CountryID        int64  `json:"country_id"`
	TripID           *int64 `json:"trip_id,omitempty"`
	Type             string `json:"expense_types"`
	Date             int64  `json:"date"`
}

type Service struct {
	repo  *storage.Repository
	rates RateResolver
	codec *backup.Codec

	lists      *cache.Versioned[[]core.ExpandedExpense]
	sums       *cache.Versioned[int64]
	breakdowns *cache.Versioned[[]stats.GroupedStat]
}

func New(repo *storage.Repository, rates RateResolver) *Service {
	const readTTL = 5 * time.Minute
	return &Service{
		repo:       repo,
		rates:      rates,
		codec:      backup.New(repo),
		lists:      cache.NewVersioned[[]core.ExpandedExpense](256, readTTL),
		sums:       cache.NewVersioned[int64](256, readTTL),
		breakdowns: cache.NewVersioned[[]stats.GroupedStat](256, readTTL),
	}
}

// invalidateReads drops every cached expense-derived read. Called inside
// each mutation before it reports success.
func (s *Service) invalidateReads() {
	s.lists.Invalidate()
	s.sums.Invalidate()
	s.breakdowns.Invalidate()
}

// CreateExpense resolves the conversion factor for the draft's currency pair
// and date, computes the home-currency amount in minor units, and inserts
// the row. An unavailable rate blocks the insert; no expense is ever
// recorded with a guessed conversion.
func (s *Service) CreateExpense(ctx context.Context, draft ExpenseDraft) (int64, error) {
	home, err := s.repo.HomeCountry(ctx)
	if err != nil {
		return 0, err
	}

	selected := strings.ToUpper(strings.TrimSpace(draft.SelectedCurrency))
	if selected == "" {
		country, err := s.repo.CountryByID(ctx, draft.CountryID)
		if err != nil {
			return 0, err
		}
		selected = country.Currency
	}

	factor, err := s.rates.Resolve(ctx, selected, home.Currency, core.ISODate(draft.Date))
	if err != nil {
		return 0, fmt.Errorf("resolve rate %s->%s: %w", selected, home.Currency, err)
	}

	expense := core.Expense{
		Amount:           core.Money{Cents: draft.AmountCents},
		AmountInHome:     core.Money{Cents: core.Convert(draft.AmountCents, factor)},
		HomeCurrency:     home.Currency,
		SelectedCurrency: selected,
		CountryID:        draft.CountryID,
		TripID:           draft.TripID,
		Type:             draft.Type,
		Date:             draft.Date,
	}
	id, err := s.repo.AddExpense(ctx, expense)
	if err != nil {
		return 0, err
	}
	s.invalidateReads()

	slog.InfoContext(ctx, "Expense entry completed",
		"id", id, "selected", selected, "home", home.Currency, "factor", factor)
	return id, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.invalidateReads()
	return nil
}

func (s *Service) ListExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.ExpandedExpense, error) {
	key := filterKey(f)
	cached, version, ok := s.lists.Get(key)
	if ok {
		return cached, nil
	}
	rows, err := s.repo.ListExpenses(ctx, f)
	if err != nil {
		return nil, err
	}
	s.lists.Set(key, rows, version)
	return rows, nil
}

func (s *Service) SumHomeCurrency(ctx context.Context, f core.ExpenseFilter) (int64, error) {
	key := filterKey(f)
	cached, version, ok := s.sums.Get(key)
	if ok {
		return cached, nil
	}
	sum, err := s.repo.SumHomeCurrency(ctx, f)
	if err != nil {
		return 0, err
	}
	s.sums.Set(key, sum, version)
	return sum, nil
}

// GroupedStatistics returns the category breakdown for the filtered set.
func (s *Service) GroupedStatistics(ctx context.Context, f core.ExpenseFilter) ([]stats.GroupedStat, error) {
	key := filterKey(f)
	cached, version, ok := s.breakdowns.Get(key)
	if ok {
		return cached, nil
	}

	rows, err := s.repo.ListExpenses(ctx, f)
	if err != nil {
		return nil, err
	}
	set, err := s.repo.CategorySet(ctx)
	if err != nil {
		return nil, err
	}
	groups := stats.Group(rows, set)
	s.breakdowns.Set(key, groups, version)
	return groups, nil
}

func (s *Service) AddTrip(ctx context.Context, t core.Trip) (int64, error) {
	return s.repo.AddTrip(ctx, t)
}

func (s *Service) ListTrips(ctx context.Context) ([]core.Trip, error) {
	return s.repo.ListTrips(ctx)
}

func (s *Service) ActiveTrip(ctx context.Context) (*core.Trip, error) {
	return s.repo.ActiveTrip(ctx)
}

func (s *Service) SetActiveTrip(ctx context.Context, id int64) error {
	return s.repo.SetActiveTrip(ctx, id)
}

// DeleteTrip cascades to the trip's expenses, so the read caches go too.
func (s *Service) DeleteTrip(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTrip(ctx, id); err != nil {
		return err
	}
	s.invalidateReads()
	return nil
}

// Caches exposes the read caches for periodic expiry sweeps.
func (s *Service) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.lists, s.sums, s.breakdowns}
}

func (s *Service) Dump(ctx context.Context) (string, error) {
	return s.codec.Dump(ctx)
}

func (s *Service) Restore(ctx context.Context, snapshot string) error {
	if err := s.codec.Restore(ctx, snapshot); err != nil {
		return err
	}
	s.invalidateReads()
	return nil
}

// SetHomeCountry changes the reporting currency, which shifts what
// SumHomeCurrency counts, so cached sums are dropped with the rest.
func (s *Service) SetHomeCountry(ctx context.Context, countryID int64) error {
	if err := s.repo.SetHomeCountry(ctx, countryID); err != nil {
		return err
	}
	s.invalidateReads()
	return nil
}

func (s *Service) ListCountries(ctx context.Context) ([]core.Country, error) {
	return s.repo.ListCountries(ctx)
}

// Categories returns the merged built-in and custom category set in display
// order.
func (s *Service) Categories(ctx context.Context) ([]core.Category, error) {
	set, err := s.repo.CategorySet(ctx)
	if err != nil {
		return nil, err
	}
	return set.All(), nil
}

func (s *Service) AddCustomCategory(ctx context.Context, c core.CustomCategory) (int64, error) {
	return s.repo.AddCustomCategory(ctx, c)
}

// DeleteCustomCategory leaves existing expenses with the orphaned type; the
// breakdown falls back to the generic bucket's color for them, so cached
// breakdowns are dropped.
func (s *Service) DeleteCustomCategory(ctx context.Context, key string) error {
	if err := s.repo.DeleteCustomCategory(ctx, key); err != nil {
		return err
	}
	s.breakdowns.Invalidate()
	return nil
}

func (s *Service) HomeCountry(ctx context.Context) (core.Country, error) {
	return s.repo.HomeCountry(ctx)
}

func (s *Service) CurrentCountry(ctx context.Context) (*core.Country, error) {
	return s.repo.CurrentCountry(ctx)
}

func (s *Service) SetCurrentCountry(ctx context.Context, countryID int64) error {
	return s.repo.SetCurrentCountry(ctx, countryID)
}

func (s *Service) Subscription(ctx context.Context) (core.Subscription, error) {
	return s.repo.Subscription(ctx)
}

func (s *Service) SetSubscription(ctx context.Context, active bool) error {
	return s.repo.SetSubscription(ctx, active)
}

// ResolveRate exposes the resolver for direct rate queries.
func (s *Service) ResolveRate(ctx context.Context, from, to, isoDate string) (float64, error) {
	return s.rates.Resolve(ctx, from, to, isoDate)
}

// filterKey canonicalizes a filter into a cache key.
func filterKey(f core.ExpenseFilter) string {
	var b strings.Builder
	if f.CountryID != nil {
		b.WriteString("c=" + strconv.FormatInt(*f.CountryID, 10) + ";")
	}
	if f.TripID != nil {
		b.WriteString("t=" + strconv.FormatInt(*f.TripID, 10) + ";")
	}
	if f.Category != "" {
		b.WriteString("k=" + f.Category + ";")
	}
	if f.MonthYear != "" {
		b.WriteString("m=" + f.MonthYear + ";")
	}
	if f.DateStart != nil {
		b.WriteString("s=" + strconv.FormatInt(*f.DateStart, 10) + ";")
	}
	if f.DateEnd != nil {
		b.WriteString("e=" + strconv.FormatInt(*f.DateEnd, 10) + ";")
	}
	return b.String()
}
