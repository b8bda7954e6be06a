// Package weatherapi is a minimal WeatherAPI.com forecast client.
package weatherapi

import (
	"chatrouter/app/config"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/samber/do"
)

var (
	ErrNotFound      = errors.New("location not found")
	ErrNotConfigured = errors.New("weather API key is not configured")
)

// WeatherAPI.com error code for an unresolvable q parameter.
const codeNoMatchingLocation = 1006

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewClientWithConfig(cfg.Weather), nil
}

func NewClientWithConfig(cfg config.Weather) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Configured() bool {
	return c.token != ""
}

// Forecast returns current conditions and today's forecast for query.
func (c *Client) Forecast(ctx context.Context, query string) (*Forecast, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNotFound
	}
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	endpoint, err := url.Parse(c.baseURL + "/forecast.json")
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	params := url.Values{}
	params.Set("key", c.token)
	params.Set("q", query)
	params.Set("days", "1")
	params.Set("aqi", "no")
	params.Set("alerts", "no")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var payload forecastResponse
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode forecast: %w", err)
	}

	return payload.normalize(query), nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var payload errorResponse
	if json.Unmarshal(body, &payload) == nil && payload.Error != nil {
		if payload.Error.Code == codeNoMatchingLocation {
			return fmt.Errorf("%w: %s", ErrNotFound, payload.Error.Message)
		}
		return fmt.Errorf("forecast request failed with status %d: %s", resp.StatusCode, payload.Error.Message)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	return fmt.Errorf("forecast request failed with status %d", resp.StatusCode)
}
