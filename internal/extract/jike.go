package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tangpeiwen/clipsync/internal/domain"
)

// jikeContentSelector is the hashed class of the post body container on
// shared Jike post pages. The hash is part of the served markup and changes
// only when the platform redeploys its frontend.
const jikeContentSelector = "div.jsx-3930310120.wrap"

// JikeStrategy extracts Jike posts from their shared web pages.
type JikeStrategy struct {
	client *http.Client
}

var _ Strategy = (*JikeStrategy)(nil)

// NewJikeStrategy wires an HTTP client; a nil client gets a 10s default.
func NewJikeStrategy(client *http.Client) *JikeStrategy {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &JikeStrategy{client: client}
}

// Platform identifies the strategy inside the registry.
func (j *JikeStrategy) Platform() domain.Platform {
	return domain.PlatformJike
}

// Extract fetches the post page and pulls the text out of its content div.
func (j *JikeStrategy) Extract(ctx context.Context, link domain.Classification) domain.NormalizedContent {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.URL, nil)
	if err != nil {
		return Failure(link, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := j.client.Do(req)
	if err != nil {
		return Failure(link, fmt.Errorf("request post page: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Failure(link, fmt.Errorf("jike returned %s", resp.Status))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Failure(link, fmt.Errorf("parse post page: %w", err))
	}

	content := doc.Find(jikeContentSelector).First()
	if content.Length() == 0 {
		return Failure(link, fmt.Errorf("no post content found at %s", link.URL))
	}

	var lines []string
	content.Contents().Each(func(i int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	body := strings.Join(lines, "\n")
	if body == "" {
		return Failure(link, fmt.Errorf("post content empty at %s", link.URL))
	}

	return domain.NormalizedContent{
		Success:     true,
		Kind:        domain.KindURL,
		Title:       LeadTitle(body),
		Body:        body,
		Source:      domain.PlatformJike.DisplayName(),
		Category:    domain.CategoryLink,
		Tags:        []string{},
		OriginalURL: link.URL,
	}
}
