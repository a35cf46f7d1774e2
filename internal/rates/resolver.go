// Package rates resolves currency conversion factors from a tiered chain of
// HTTP endpoints, caching resolved factors indefinitely for closed calendar
// days.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"tripwallet/internal/cache"
)

// Endpoints holds the four URL templates of the fallback chain, tried in
// order. Templates take {date} (ISO date, or "latest") and {currency}
// (lowercase source code).
type Endpoints struct {
	PrimaryDated  string
	MirrorDated   string
	PrimaryLatest string
	MirrorLatest  string
}

// DefaultEndpoints points at the jsdelivr currency-api CDN and its pages.dev
// mirror. Dated tiers serve closed days; latest tiers cover dates the CDN
// has not published yet, typically today.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		PrimaryDated:  "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@{date}/v1/currencies/{currency}.json",
		MirrorDated:   "https://{date}.currency-api.pages.dev/v1/currencies/{currency}.json",
		PrimaryLatest: "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1/currencies/{currency}.json",
		MirrorLatest:  "https://latest.currency-api.pages.dev/v1/currencies/{currency}.json",
	}
}

// UnavailableError reports an exhausted fallback chain. Callers must block
// the dependent operation rather than substitute a zero or one factor.
type UnavailableError struct {
	From, To, Date string
	Tiers          []error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("rate %s->%s@%s unavailable after %d tiers: %v",
		e.From, e.To, e.Date, len(e.Tiers), errors.Join(e.Tiers...))
}

// Doer is the HTTP client surface; injectable for tests.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

type Options struct {
	Endpoints   Endpoints
	Client      Doer
	TierTimeout time.Duration // per-attempt budget so the chain cannot hang
	TodayTTL    time.Duration // cache lifetime for current-date factors
	CacheSize   int
	Now         func() time.Time // injectable clock, defaults to time.Now
}

// Resolver fetches and caches conversion factors. Factors for past dates
// never change once published, so their cache entries never expire; today's
// factor is provisional until day close and gets TodayTTL. Concurrent
// requests for the same key share one fetch.
type Resolver struct {
	endpoints   Endpoints
	client      Doer
	tierTimeout time.Duration
	todayTTL    time.Duration
	now         func() time.Time
	cache       *cache.LRUCache[float64]
	group       singleflight.Group
}

func NewResolver(opts Options) *Resolver {
	if opts.Endpoints == (Endpoints{}) {
		opts.Endpoints = DefaultEndpoints()
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.TierTimeout <= 0 {
		opts.TierTimeout = 5 * time.Second
	}
	if opts.TodayTTL <= 0 {
		opts.TodayTTL = 10 * time.Minute
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Resolver{
		endpoints:   opts.Endpoints,
		client:      opts.Client,
		tierTimeout: opts.TierTimeout,
		todayTTL:    opts.TodayTTL,
		now:         opts.Now,
		cache:       cache.NewLRUCache[float64](opts.CacheSize, opts.TodayTTL),
	}
}

// Cache exposes the factor cache for expiry sweeps.
func (r *Resolver) Cache() *cache.LRUCache[float64] { return r.cache }

// Resolve returns the factor such that amountInTo = amountInFrom * factor,
// for the given ISO date (YYYY-MM-DD). Identical currencies short-circuit
// to 1.
func (r *Resolver) Resolve(ctx context.Context, from, to, isoDate string) (float64, error) {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	if from == "" || to == "" {
		return 0, fmt.Errorf("empty currency code")
	}
	if from == to {
		return 1, nil
	}

	key := from + "/" + to + "/" + isoDate
	if factor, ok := r.cache.Get(key); ok {
		return factor, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have
		// populated the cache while we queued.
		if factor, ok := r.cache.Get(key); ok {
			return factor, nil
		}
		factor, err := r.fetch(ctx, from, to, isoDate)
		if err != nil {
			return 0.0, err
		}

		ttl := time.Duration(0) // closed days never change
		if isoDate >= r.today() {
			ttl = r.todayTTL
		}
		r.cache.SetWithTTL(key, factor, ttl)
		return factor, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func (r *Resolver) today() string {
	return r.now().UTC().Format("2006-01-02")
}

func (r *Resolver) fetch(ctx context.Context, from, to, isoDate string) (float64, error) {
	tiers := []struct {
		name     string
		template string
		date     string
	}{
		{"primary dated", r.endpoints.PrimaryDated, isoDate},
		{"mirror dated", r.endpoints.MirrorDated, isoDate},
		{"primary latest", r.endpoints.PrimaryLatest, "latest"},
		{"mirror latest", r.endpoints.MirrorLatest, "latest"},
	}

	var tierErrs []error
	for _, tier := range tiers {
		url := expandTemplate(tier.template, tier.date, from)
		factor, err := r.fetchOne(ctx, url, from, to)
		if err == nil {
			slog.DebugContext(ctx, "Rate resolved",
				"from", from, "to", to, "date", isoDate, "tier", tier.name, "factor", factor)
			return factor, nil
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		slog.WarnContext(ctx, "Rate tier failed",
			"tier", tier.name, "from", from, "to", to, "date", isoDate, "error", err)
		tierErrs = append(tierErrs, fmt.Errorf("%s: %w", tier.name, err))
	}
	return 0, &UnavailableError{From: from, To: to, Date: isoDate, Tiers: tierErrs}
}

func (r *Resolver) fetchOne(ctx context.Context, url, from, to string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.tierTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}

	// Payload shape: {"date": "...", "<from>": {"<to>": 0.92, ...}}
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode payload: %w", err)
	}
	raw, ok := payload[from]
	if !ok {
		return 0, fmt.Errorf("payload missing %q table", from)
	}
	var table map[string]float64
	if err := json.Unmarshal(raw, &table); err != nil {
		return 0, fmt.Errorf("decode %q table: %w", from, err)
	}
	factor, ok := table[to]
	if !ok {
		return 0, fmt.Errorf("no rate for %q", to)
	}
	if factor <= 0 {
		return 0, fmt.Errorf("non-positive rate %v", factor)
	}
	return factor, nil
}

func expandTemplate(template, date, currency string) string {
	url := strings.ReplaceAll(template, "{date}", date)
	return strings.ReplaceAll(url, "{currency}", currency)
}
