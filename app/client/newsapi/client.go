// Package newsapi is a minimal NewsAPI.org top-headlines client.
package newsapi

import (
	"chatrouter/app/config"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/do"
)

var ErrNotConfigured = errors.New("news API key is not configured")

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewClientWithConfig(cfg.News), nil
}

func NewClientWithConfig(cfg config.News) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Configured() bool {
	return c.token != ""
}

func (c *Client) TopHeadlines(ctx context.Context, q Query) ([]Article, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	endpoint, err := url.Parse(c.baseURL + "/top-headlines")
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	params := url.Values{}
	if q.Region != "" {
		params.Set("country", strings.ToLower(q.Region))
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Keywords != "" {
		params.Set("q", q.Keywords)
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("headlines request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload headlinesResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || payload.Status == "error" {
		if decodeErr == nil && payload.Message != "" {
			return nil, fmt.Errorf("headlines request failed with status %d (%s): %s", resp.StatusCode, payload.Code, payload.Message)
		}
		return nil, fmt.Errorf("headlines request failed with status %d", resp.StatusCode)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode headlines: %w", decodeErr)
	}

	return payload.articles(), nil
}
