package serpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Config{APIKey: "key", BaseURL: server.URL, Currency: "INR", Language: "en"},
		WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c, &hits
}

func TestSearchFlightsSendsQueryAndCaches(t *testing.T) {
	t.Parallel()

	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("engine") != "google_flights" || q.Get("departure_id") != "DEL" || q.Get("arrival_id") != "BOM" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("api_key") != "key" || q.Get("currency") != "INR" || q.Get("outbound_date") != "2025-06-15" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"best_flights":[{"price":4500,"total_duration":130,"flights":[{"airline":"IndiGo",
			"departure_airport":{"id":"DEL","time":"2025-06-15 06:10"},"arrival_airport":{"id":"BOM","time":"2025-06-15 08:20"}}]},
			{"total_duration":200}]}`)
	})

	q := FlightQuery{DepartureID: "DEL", ArrivalID: "BOM", OutboundDate: "2025-06-15", ReturnDate: "2025-06-20"}
	resp, err := c.SearchFlights(context.Background(), q)
	if err != nil {
		t.Fatalf("SearchFlights() error = %v", err)
	}
	if len(resp.BestFlights) != 2 {
		t.Fatalf("BestFlights = %d, want 2", len(resp.BestFlights))
	}
	if resp.BestFlights[0].Price == nil || *resp.BestFlights[0].Price != 4500 {
		t.Fatalf("Price = %v, want 4500", resp.BestFlights[0].Price)
	}
	if resp.BestFlights[1].Price != nil {
		t.Fatalf("missing price decoded as %v", *resp.BestFlights[1].Price)
	}
	if resp.BestFlights[0].Flights[0].Airline != "IndiGo" {
		t.Fatalf("Airline = %q", resp.BestFlights[0].Flights[0].Airline)
	}

	if _, err := c.SearchFlights(context.Background(), q); err != nil {
		t.Fatalf("SearchFlights() second call error = %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("server hits = %d, want 1 (cached)", hits.Load())
	}
}

func TestSearchTrimsResults(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("engine") != "google" || r.URL.Query().Get("q") != "goa travel guide" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"organic_results":[{"title":"a"},{"title":"b"},{"title":"c"}]}`)
	})

	got, err := c.Search(context.Background(), "goa travel guide", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 || got[0].Title != "a" {
		t.Fatalf("Search() = %+v", got)
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		_, err := c.Search(context.Background(), fmt.Sprintf("q%d", i), 1)
		if !errors.Is(err, ErrStatus) {
			t.Fatalf("Search() #%d error = %v, want ErrStatus", i, err)
		}
	}

	_, err := c.Search(context.Background(), "q-open", 1)
	if err == nil {
		t.Fatal("Search() error = nil with open breaker")
	}
	if hits.Load() != 5 {
		t.Fatalf("server hits = %d, want 5", hits.Load())
	}
}

type countingObserver struct {
	hits, misses atomic.Int32
}

func (o *countingObserver) CacheHit(string)  { o.hits.Add(1) }
func (o *countingObserver) CacheMiss(string) { o.misses.Add(1) }

func TestCacheObserverSeesHitsAndMisses(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"organic_results":[{"title":"a"}]}`)
	}))
	t.Cleanup(server.Close)

	obs := &countingObserver{}
	c, err := NewClient(Config{APIKey: "key", BaseURL: server.URL}, WithHTTPClient(server.Client()), WithCacheObserver(obs))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := c.Search(context.Background(), "jaipur", 1); err != nil {
			t.Fatalf("Search() error = %v", err)
		}
	}
	if obs.misses.Load() != 1 || obs.hits.Load() != 2 {
		t.Fatalf("misses=%d hits=%d, want 1 and 2", obs.misses.Load(), obs.hits.Load())
	}
}
