package rates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

type tierServer struct {
	*httptest.Server
	hits atomic.Int64
}

// newTierServer serves a currency payload, or the given status when it is
// not 200.
func newTierServer(t *testing.T, status int, from, to string, factor float64) *tierServer {
	t.Helper()
	ts := &tierServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		fmt.Fprintf(w, `{"date": "2024-03-15", %q: {%q: %v, "gbp": 0.85}}`, from, to, factor)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func fixedClock(iso string) func() time.Time {
	day, _ := time.Parse("2006-01-02", iso)
	return func() time.Time { return day }
}

func resolverFor(t *testing.T, clockDay string, tiers ...*tierServer) *Resolver {
	t.Helper()
	if len(tiers) != 4 {
		t.Fatalf("need 4 tiers, got %d", len(tiers))
	}
	return NewResolver(Options{
		Endpoints: Endpoints{
			PrimaryDated:  tiers[0].URL + "/{date}/{currency}.json",
			MirrorDated:   tiers[1].URL + "/{date}/{currency}.json",
			PrimaryLatest: tiers[2].URL + "/latest/{currency}.json",
			MirrorLatest:  tiers[3].URL + "/latest/{currency}.json",
		},
		TierTimeout: 2 * time.Second,
		Now:         fixedClock(clockDay),
	})
}

func TestResolveFirstTier(t *testing.T) {
	ok := newTierServer(t, http.StatusOK, "eur", "usd", 1.08)
	rest := []*tierServer{
		newTierServer(t, http.StatusNotFound, "", "", 0),
		newTierServer(t, http.StatusNotFound, "", "", 0),
		newTierServer(t, http.StatusNotFound, "", "", 0),
	}
	r := resolverFor(t, "2024-03-20", ok, rest[0], rest[1], rest[2])

	factor, err := r.Resolve(context.Background(), "EUR", "USD", "2024-03-15")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if factor != 1.08 {
		t.Fatalf("factor = %v, want 1.08", factor)
	}
	for i, ts := range rest {
		if ts.hits.Load() != 0 {
			t.Fatalf("tier %d should not have been tried", i+2)
		}
	}
}

func TestResolveFallsBackToLastTier(t *testing.T) {
	down := func() *tierServer { return newTierServer(t, http.StatusServiceUnavailable, "", "", 0) }
	t1, t2, t3 := down(), down(), down()
	t4 := newTierServer(t, http.StatusOK, "eur", "usd", 0.92)
	r := resolverFor(t, "2024-03-20", t1, t2, t3, t4)

	factor, err := r.Resolve(context.Background(), "eur", "usd", "2024-03-15")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if factor != 0.92 {
		t.Fatalf("factor = %v, want 0.92", factor)
	}
	for i, ts := range []*tierServer{t1, t2, t3} {
		if ts.hits.Load() != 1 {
			t.Fatalf("tier %d should have been tried once, got %d", i+1, ts.hits.Load())
		}
	}

	// Past-date hit is cached indefinitely: no tier is re-fetched.
	factor, err = r.Resolve(context.Background(), "eur", "usd", "2024-03-15")
	if err != nil || factor != 0.92 {
		t.Fatalf("cached resolve: %v %v", factor, err)
	}
	for i, ts := range []*tierServer{t1, t2, t3, t4} {
		if ts.hits.Load() != 1 {
			t.Fatalf("tier %d re-fetched on cache hit (%d hits)", i+1, ts.hits.Load())
		}
	}
}

func TestResolveExhaustedChain(t *testing.T) {
	down := func() *tierServer { return newTierServer(t, http.StatusBadGateway, "", "", 0) }
	r := resolverFor(t, "2024-03-20", down(), down(), down(), down())

	_, err := r.Resolve(context.Background(), "eur", "usd", "2024-03-15")
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("got %v, want UnavailableError", err)
	}
	if len(unavailable.Tiers) != 4 {
		t.Fatalf("want 4 tier errors, got %d", len(unavailable.Tiers))
	}
	// Failures are not cached; whether to retry is the caller's call.
	if r.Cache().Size() != 0 {
		t.Fatalf("failed resolution must not be cached")
	}
}

func TestResolveSameCurrency(t *testing.T) {
	never := newTierServer(t, http.StatusOK, "eur", "eur", 99)
	r := resolverFor(t, "2024-03-20", never, never, never, never)

	factor, err := r.Resolve(context.Background(), "EUR", "eur", "2024-03-15")
	if err != nil || factor != 1 {
		t.Fatalf("same-currency factor = %v, %v; want 1", factor, err)
	}
	if never.hits.Load() != 0 {
		t.Fatalf("same-currency resolution must not hit the network")
	}
}

func TestResolveMissingTargetFails(t *testing.T) {
	// Payload parses but has no jpy entry in any tier.
	mk := func() *tierServer { return newTierServer(t, http.StatusOK, "eur", "usd", 1.08) }
	r := resolverFor(t, "2024-03-20", mk(), mk(), mk(), mk())

	_, err := r.Resolve(context.Background(), "eur", "jpy", "2024-03-15")
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("got %v, want UnavailableError", err)
	}
}

func TestResolveCoalescesConcurrentRequests(t *testing.T) {
	var hits atomic.Int64
	var mu sync.Mutex
	release := make(chan struct{})
	first := true

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		mu.Lock()
		wasFirst := first
		first = false
		mu.Unlock()
		if wasFirst {
			<-release // hold the first request so the others pile up behind it
		}
		fmt.Fprint(w, `{"date": "2024-03-15", "eur": {"usd": 1.08}}`)
	}))
	t.Cleanup(slow.Close)

	r := NewResolver(Options{
		Endpoints: Endpoints{
			PrimaryDated:  slow.URL + "/{date}/{currency}.json",
			MirrorDated:   slow.URL + "/{date}/{currency}.json",
			PrimaryLatest: slow.URL + "/latest/{currency}.json",
			MirrorLatest:  slow.URL + "/latest/{currency}.json",
		},
		TierTimeout: 5 * time.Second,
		Now:         fixedClock("2024-03-20"),
	})

	var g errgroup.Group
	started := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			started <- struct{}{}
			factor, err := r.Resolve(context.Background(), "eur", "usd", "2024-03-15")
			if err != nil {
				return err
			}
			if factor != 1.08 {
				return fmt.Errorf("factor = %v", factor)
			}
			return nil
		})
	}
	for i := 0; i < 10; i++ {
		<-started
	}
	time.Sleep(50 * time.Millisecond) // let the goroutines reach the flight
	close(release)

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent resolve: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected a single shared fetch, got %d", hits.Load())
	}
}
