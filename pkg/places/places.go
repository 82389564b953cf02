package places

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

type Config struct {
	APIKey    string  `envconfig:"API_KEY" split_words:"true"`
	Language  string  `envconfig:"LANGUAGE" split_words:"true" default:"en"`
	MinRating float32 `envconfig:"MIN_RATING" split_words:"true" default:"4.0"`
}

type Kind string

const (
	KindLodging    Kind = "lodging"
	KindRestaurant Kind = "restaurant"
)

type Place struct {
	Name             string
	Address          string
	Rating           float32
	PlaceID          string
	UserRatingsTotal int
}

// Client runs Google Places text searches.
type Client struct {
	client    *maps.Client
	language  string
	minRating float32
}

func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("maps api key is required")
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Client{
		client:    client,
		language:  strings.TrimSpace(cfg.Language),
		minRating: cfg.MinRating,
	}, nil
}

// Search returns up to limit well-rated places of the given kind matching query.
func (c *Client) Search(ctx context.Context, query string, kind Kind, limit int) ([]Place, error) {
	r := &maps.TextSearchRequest{
		Query:    query,
		Language: c.language,
	}
	switch kind {
	case KindLodging:
		r.Type = maps.PlaceTypeLodging
	case KindRestaurant:
		r.Type = maps.PlaceTypeRestaurant
	}

	resp, err := c.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	var results []Place
	for _, result := range resp.Results {
		if result.Rating < c.minRating {
			continue
		}
		results = append(results, Place{
			Name:             result.Name,
			Address:          result.FormattedAddress,
			Rating:           result.Rating,
			PlaceID:          result.PlaceID,
			UserRatingsTotal: result.UserRatingsTotal,
		})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}
