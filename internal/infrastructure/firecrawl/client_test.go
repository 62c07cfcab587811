package firecrawl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangpeiwen/clipsync/internal/config"
)

func TestScrape(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer fc-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{
			"success": true,
			"data": {
				"markdown": "# 正文\n\n第一段。",
				"metadata": {"title": "文章标题"}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(config.FirecrawlConfig{APIKey: "fc-key", Endpoint: server.URL})

	page, err := client.Scrape(context.Background(), "https://example.com/post")
	require.NoError(t, err)
	assert.Equal(t, "文章标题", page.Title)
	assert.Equal(t, "# 正文\n\n第一段。", page.Markdown)

	assert.Equal(t, "https://example.com/post", payload["url"])
	assert.Equal(t, []any{"markdown"}, payload["formats"])
	assert.Equal(t, true, payload["onlyMainContent"])
	assert.Equal(t, true, payload["blockAds"])
	assert.Equal(t, float64(30000), payload["timeout"])
}

func TestScrapeReportedFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false}`))
	}))
	defer server.Close()

	client := NewClient(config.FirecrawlConfig{APIKey: "fc-key", Endpoint: server.URL})
	_, err := client.Scrape(context.Background(), "https://example.com/post")
	assert.Error(t, err)
}

func TestScrapeHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":"insufficient credits"}`))
	}))
	defer server.Close()

	client := NewClient(config.FirecrawlConfig{APIKey: "fc-key", Endpoint: server.URL})
	_, err := client.Scrape(context.Background(), "https://example.com/post")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient credits")
}

func TestScrapeWithoutKey(t *testing.T) {
	t.Parallel()

	client := NewClient(config.FirecrawlConfig{})
	_, err := client.Scrape(context.Background(), "https://example.com/post")
	assert.Error(t, err)
}
