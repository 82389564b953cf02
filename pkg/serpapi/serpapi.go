package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"
)

const maxResponseSizeBytes = 4 << 20

var ErrStatus = errors.New("serpapi returned non-2xx status")

type Config struct {
	APIKey   string        `envconfig:"API_KEY" split_words:"true"`
	BaseURL  string        `envconfig:"BASE_URL" split_words:"true" default:"https://serpapi.com/search.json"`
	Timeout  time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"20s"`
	Currency string        `envconfig:"CURRENCY" split_words:"true" default:"INR"`
	Language string        `envconfig:"LANGUAGE" split_words:"true" default:"en"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" split_words:"true" default:"30m"`
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithCircuitBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(c *Client) {
		if cb != nil {
			c.cb = cb
		}
	}
}

// CacheObserver is notified of result cache lookups.
type CacheObserver interface {
	CacheHit(name string)
	CacheMiss(name string)
}

func WithCacheObserver(o CacheObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// Client queries SerpAPI engines. Requests go through a circuit breaker and successful
// responses are cached by query.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	currency   string
	language   string
	cb         *gobreaker.CircuitBreaker
	cache      *cache.Cache
	observer   CacheObserver
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("serpapi api key is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid serpapi url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		currency:   strings.TrimSpace(cfg.Currency),
		language:   strings.TrimSpace(cfg.Language),
		cb:         NewCircuitBreaker("serpapi"),
		cache:      cache.New(ttl, 2*ttl),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// NewCircuitBreaker opens after 5+ requests with a 60% failure ratio.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
}

type FlightQuery struct {
	DepartureID  string
	ArrivalID    string
	OutboundDate string
	ReturnDate   string
}

type FlightsResponse struct {
	BestFlights  []FlightOption `json:"best_flights"`
	OtherFlights []FlightOption `json:"other_flights"`
}

type FlightOption struct {
	Flights       []FlightLeg `json:"flights"`
	TotalDuration int         `json:"total_duration"`
	Price         *float64    `json:"price"`
	Type          string      `json:"type"`
	Airline       string      `json:"airline"`
	AirlineLogo   string      `json:"airline_logo"`
}

type FlightLeg struct {
	DepartureAirport Airport `json:"departure_airport"`
	ArrivalAirport   Airport `json:"arrival_airport"`
	Duration         int     `json:"duration"`
	Airline          string  `json:"airline"`
	AirlineLogo      string  `json:"airline_logo"`
	FlightNumber     string  `json:"flight_number"`
}

type Airport struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"`
}

// SearchFlights runs the google_flights engine for a round trip.
func (c *Client) SearchFlights(ctx context.Context, q FlightQuery) (*FlightsResponse, error) {
	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", q.DepartureID)
	params.Set("arrival_id", q.ArrivalID)
	params.Set("outbound_date", q.OutboundDate)
	params.Set("return_date", q.ReturnDate)
	params.Set("currency", c.currency)
	params.Set("hl", c.language)

	var out FlightsResponse
	if err := c.get(ctx, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type OrganicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	OrganicResults []OrganicResult `json:"organic_results"`
}

// Search runs the google engine and returns at most limit organic results.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]OrganicResult, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("hl", c.language)
	if limit > 0 {
		params.Set("num", fmt.Sprint(limit))
	}

	var out searchResponse
	if err := c.get(ctx, params, &out); err != nil {
		return nil, err
	}
	if limit > 0 && len(out.OrganicResults) > limit {
		out.OrganicResults = out.OrganicResults[:limit]
	}
	return out.OrganicResults, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	key := params.Encode()
	if raw, ok := c.cache.Get(key); ok {
		c.observe(true)
		return json.Unmarshal(raw.([]byte), out)
	}
	c.observe(false)

	result, err := c.cb.Execute(func() (any, error) {
		withKey := url.Values{}
		for k, v := range params {
			withKey[k] = v
		}
		withKey.Set("api_key", c.apiKey)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+withKey.Encode(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
		}
		return raw, nil
	})
	if err != nil {
		return fmt.Errorf("serpapi %s: %w", params.Get("engine"), err)
	}

	raw := result.([]byte)
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode serpapi %s response: %w", params.Get("engine"), err)
	}
	c.cache.Set(key, raw, cache.DefaultExpiration)
	return nil
}

func (c *Client) observe(hit bool) {
	if c.observer == nil {
		return
	}
	if hit {
		c.observer.CacheHit("serpapi")
		return
	}
	c.observer.CacheMiss("serpapi")
}
