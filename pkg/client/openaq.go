package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultOpenAQURL   = "https://api.openaq.org/v2"
	DefaultOpenAQLimit = 10000
)

type OpenAQClient struct {
	*BaseClient
	baseURL string
	limit   int
}

type OpenAQMeasurementsResponse struct {
	Meta struct {
		Name  string `json:"name"`
		Page  int    `json:"page"`
		Limit int    `json:"limit"`
		Found int    `json:"found"`
	} `json:"meta"`
	Results []OpenAQMeasurement `json:"results"`
}

type OpenAQMeasurement struct {
	Location  string  `json:"location"`
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Date      struct {
		UTC   string `json:"utc"`
		Local string `json:"local"`
	} `json:"date"`
}

func NewOpenAQClient(baseURL string, limit int, config ClientConfig, logger *zap.Logger) *OpenAQClient {
	if baseURL == "" {
		baseURL = DefaultOpenAQURL
	}
	if limit <= 0 {
		limit = DefaultOpenAQLimit
	}
	return &OpenAQClient{
		BaseClient: NewBaseClient("openaq", config, logger),
		baseURL:    baseURL,
		limit:      limit,
	}
}

// GetMeasurements fetches every measurement of one pollutant in one metro
// area between from and to, inclusive.
func (c *OpenAQClient) GetMeasurements(ctx context.Context, city models.City, pollutant models.Pollutant, from, to models.Date) ([]models.RawMeasurement, error) {
	query := url.Values{}
	query.Set("city", city.MetroName())
	query.Set("parameter", pollutant.String())
	query.Set("date_from", from.String())
	query.Set("date_to", to.String())
	query.Set("limit", strconv.Itoa(c.limit))

	endpoint := fmt.Sprintf("%s/measurements?%s", c.baseURL, query.Encode())

	body, err := c.GetWithRetry(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s for %s: %w", pollutant, city, err)
	}

	var resp OpenAQMeasurementsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse measurements response: %w", err)
	}

	if resp.Meta.Found > len(resp.Results) {
		c.logger.Warn("Measurement response truncated",
			zap.String("city", city.String()),
			zap.String("pollutant", pollutant.String()),
			zap.Int("found", resp.Meta.Found),
			zap.Int("returned", len(resp.Results)))
	}

	measurements := make([]models.RawMeasurement, len(resp.Results))
	for i, r := range resp.Results {
		measurements[i] = models.RawMeasurement{
			Location:  r.Location,
			Parameter: r.Parameter,
			Value:     r.Value,
			Unit:      r.Unit,
			DateUTC:   r.Date.UTC,
		}
	}

	return measurements, nil
}
