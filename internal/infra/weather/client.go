package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5"

	defaultMaxRetries = 2
	baseDelay         = 200 * time.Millisecond
	maxDelay          = 2 * time.Second
)

// Condition is the coarse weather category derived from OpenWeatherMap's "main" field
type Condition string

const (
	ConditionClear        Condition = "clear"
	ConditionClouds       Condition = "clouds"
	ConditionRain         Condition = "rain"
	ConditionDrizzle      Condition = "drizzle"
	ConditionThunderstorm Condition = "thunderstorm"
	ConditionSnow         Condition = "snow"
	ConditionFog          Condition = "fog"
	ConditionUnknown      Condition = "unknown"
)

// ClassifyMain maps an OpenWeatherMap "main" value to a Condition
func ClassifyMain(main string) Condition {
	switch main {
	case "Clear":
		return ConditionClear
	case "Clouds":
		return ConditionClouds
	case "Rain":
		return ConditionRain
	case "Drizzle":
		return ConditionDrizzle
	case "Thunderstorm":
		return ConditionThunderstorm
	case "Snow":
		return ConditionSnow
	case "Mist", "Smoke", "Haze", "Dust", "Fog", "Sand", "Ash", "Squall", "Tornado":
		return ConditionFog
	default:
		return ConditionUnknown
	}
}

// Config configures the OpenWeatherMap client
type Config struct {
	APIKey     string
	BaseURL    string // defaults to the public endpoint
	MaxRetries int
	HTTPClient *http.Client
}

// Client is an OpenWeatherMap current-weather client
type Client struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	executor failsafe.Executor[Condition]
}

// NewClient creates a new weather client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	retry := retrypolicy.NewBuilder[Condition]().
		WithBackoff(baseDelay, maxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(func(_ Condition, err error) bool {
			return isRetryable(err)
		}).
		Build()

	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		http:     cfg.HTTPClient,
		executor: failsafe.With[Condition](retry),
	}
}

// Current returns the weather condition at the coordinate.
// Transient failures (network errors, 5xx, 429) are retried within ctx.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Condition, error) {
	if c.apiKey == "" {
		return ConditionUnknown, fmt.Errorf("weather API key not configured")
	}
	cond, err := c.executor.WithContext(ctx).Get(func() (Condition, error) {
		return c.fetch(ctx, lat, lon)
	})
	if err != nil {
		return ConditionUnknown, err
	}
	return cond, nil
}

type currentResponse struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (Condition, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return ConditionUnknown, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ConditionUnknown, &transientError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := fmt.Errorf("weather API status %d: %s", resp.StatusCode, body)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return ConditionUnknown, &transientError{err: statusErr}
		}
		return ConditionUnknown, statusErr
	}

	var data currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return ConditionUnknown, fmt.Errorf("failed to decode weather response: %w", err)
	}
	if len(data.Weather) == 0 {
		return ConditionUnknown, nil
	}
	return ClassifyMain(data.Weather[0].Main), nil
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
