package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tangpeiwen/clipsync/internal/config"
	"github.com/tangpeiwen/clipsync/internal/domain"
	"github.com/tangpeiwen/clipsync/internal/ports"
)

const apiVersion = "2022-06-28"

// maxImageURLLength is the longest external image URL the API accepts.
const maxImageURLLength = 2000

// Client talks to the Notion REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ ports.DocumentStore = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.NotionConfig) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.notion.com"
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreatePage submits the composed page and returns the created page ID.
func (c *Client) CreatePage(ctx context.Context, databaseID string, page domain.PageComposition) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("notion client misconfigured")
	}

	payload := map[string]any{
		"parent":     map[string]any{"database_id": databaseID},
		"properties": propertiesPayload(page.Properties),
	}
	if len(page.Blocks) > 0 {
		children := make([]map[string]any, 0, len(page.Blocks))
		for _, block := range page.Blocks {
			children = append(children, blockPayload(block))
		}
		payload["children"] = children
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal page: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/pages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("notion error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}

	return created.ID, nil
}

// DatabaseSchema retrieves the database's property-name to type mapping.
func (c *Client) DatabaseSchema(ctx context.Context, databaseID string) (map[string]string, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("notion client misconfigured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/databases/"+databaseID, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieve database: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("notion error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var database struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&database); err != nil {
		return nil, fmt.Errorf("decode database: %w", err)
	}

	schema := make(map[string]string, len(database.Properties))
	for name, prop := range database.Properties {
		schema[name] = prop.Type
	}

	return schema, nil
}

// CheckImageURL applies the constraints the API enforces on external image
// URLs without a network round trip.
func (c *Client) CheckImageURL(imageURL string) error {
	if imageURL == "" {
		return fmt.Errorf("empty image url")
	}
	if len(imageURL) > maxImageURLLength {
		return fmt.Errorf("image url longer than %d characters", maxImageURLLength)
	}

	parsed, err := url.Parse(imageURL)
	if err != nil {
		return fmt.Errorf("invalid image url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("image url has no host")
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")
}
