package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tangpeiwen/clipsync/internal/config"
	"github.com/tangpeiwen/clipsync/internal/domain"
	"github.com/tangpeiwen/clipsync/internal/ports"
)

// Client talks to the Firecrawl scrape API.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.WebScraper = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.FirecrawlConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.firecrawl.dev/v1/scrape"
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 40 * time.Second,
		},
	}
}

// Scrape requests the page's main content as Markdown.
func (c *Client) Scrape(ctx context.Context, pageURL string) (domain.ScrapedPage, error) {
	var page domain.ScrapedPage
	if c.apiKey == "" {
		return page, fmt.Errorf("firecrawl client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"url":             pageURL,
		"formats":         []string{"markdown"},
		"onlyMainContent": true,
		"blockAds":        true,
		"timeout":         30000,
	})
	if err != nil {
		return page, fmt.Errorf("marshal scrape payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return page, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return page, fmt.Errorf("scrape page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return page, fmt.Errorf("firecrawl error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var scraped struct {
		Success bool `json:"success"`
		Data    struct {
			Markdown string `json:"markdown"`
			Metadata struct {
				Title string `json:"title"`
			} `json:"metadata"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&scraped); err != nil {
		return page, fmt.Errorf("decode scrape response: %w", err)
	}
	if !scraped.Success {
		return page, fmt.Errorf("firecrawl reported failure for %s", pageURL)
	}

	page.Title = scraped.Data.Metadata.Title
	page.Markdown = scraped.Data.Markdown
	return page, nil
}
