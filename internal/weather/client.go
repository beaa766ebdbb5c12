// Package weather fetches current conditions from Open-Meteo.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"postboard/internal/logging"
	"postboard/internal/metrics"
	"postboard/internal/models"
)

// ErrUpstream wraps every failure to obtain a usable forecast.
var ErrUpstream = errors.New("weather upstream failure")

const breakerName = "open-meteo"

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature *float64 `json:"temperature"`
		Windspeed   *float64 `json:"windspeed"`
		Weathercode *int     `json:"weathercode"`
	} `json:"current_weather"`
}

// Client calls the Open-Meteo forecast endpoint through a circuit breaker.
// Calls are never retried.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[*models.CurrentWeather]
}

// NewClient builds a client for baseURL (scheme and host, no path).
func NewClient(baseURL string, timeout time.Duration) *Client {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*models.CurrentWeather](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		// A visitor leaving mid-request says nothing about the upstream.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cb:      cb,
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// ForecastURL is the request URL for a city's current weather.
func (c *Client) ForecastURL(city City) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(city.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(city.Lon, 'f', -1, 64))
	q.Set("current_weather", "true")
	return c.baseURL + "/v1/forecast?" + q.Encode()
}

// Current returns the current weather for city.
func (c *Client) Current(ctx context.Context, city City) (*models.CurrentWeather, error) {
	w, err := c.cb.Execute(func() (*models.CurrentWeather, error) {
		return c.fetch(ctx, city)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.WeatherRequests.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	case errors.Is(err, context.Canceled):
		metrics.WeatherRequests.WithLabelValues("canceled").Inc()
		return nil, err
	case err != nil:
		metrics.WeatherRequests.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.WeatherRequests.WithLabelValues("success").Inc()
	return w, nil
}

func (c *Client) fetch(ctx context.Context, city City) (*models.CurrentWeather, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ForecastURL(city), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	cw := body.CurrentWeather
	if cw == nil || cw.Temperature == nil || cw.Windspeed == nil || cw.Weathercode == nil {
		return nil, fmt.Errorf("%w: current_weather missing from response", ErrUpstream)
	}

	return &models.CurrentWeather{
		City:        city.Name,
		Temperature: *cw.Temperature,
		Windspeed:   *cw.Windspeed,
		Weathercode: *cw.Weathercode,
	}, nil
}
