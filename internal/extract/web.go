package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/tangpeiwen/clipsync/internal/domain"
	"github.com/tangpeiwen/clipsync/internal/ports"
)

// noiseSelectors are removed before local readability extraction; they never
// contribute to the page's main text.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"iframe", "svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// WebStrategy extracts arbitrary web pages. With a scraper configured it
// delegates to the hosted scrape API; without one it fetches the page itself
// and converts the main content container to Markdown.
type WebStrategy struct {
	scraper ports.WebScraper
	client  *http.Client
	logger  *slog.Logger
}

var _ Strategy = (*WebStrategy)(nil)

// NewWebStrategy wires the optional scraper and an HTTP client for the local
// fallback; a nil client gets a 15s default.
func NewWebStrategy(scraper ports.WebScraper, client *http.Client, log *slog.Logger) *WebStrategy {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &WebStrategy{scraper: scraper, client: client, logger: log}
}

// Platform identifies the strategy inside the registry.
func (w *WebStrategy) Platform() domain.Platform {
	return domain.PlatformWeb
}

// Extract produces a Markdown body for the page.
func (w *WebStrategy) Extract(ctx context.Context, link domain.Classification) domain.NormalizedContent {
	if w.scraper != nil {
		page, err := w.scraper.Scrape(ctx, link.URL)
		if err != nil {
			return Failure(link, fmt.Errorf("scrape page: %w", err))
		}
		return w.pageContent(link, page)
	}

	if w.logger != nil {
		w.logger.Debug("no scraper configured, extracting locally", "url", link.URL)
	}

	page, err := w.extractLocally(ctx, link.URL)
	if err != nil {
		return Failure(link, err)
	}
	return w.pageContent(link, page)
}

func (w *WebStrategy) pageContent(link domain.Classification, page domain.ScrapedPage) domain.NormalizedContent {
	return domain.NormalizedContent{
		Success:     true,
		Kind:        domain.KindURL,
		Title:       page.Title,
		Body:        page.Markdown,
		Images:      page.Images,
		Source:      "", // plain web pages carry no platform label
		Category:    domain.CategoryLink,
		Tags:        []string{},
		OriginalURL: link.URL,
	}
}

// extractLocally fetches the page, strips noise, and converts the best
// content container to Markdown.
func (w *WebStrategy) extractLocally(ctx context.Context, pageURL string) (domain.ScrapedPage, error) {
	var page domain.ScrapedPage

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return page, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return page, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return page, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return page, fmt.Errorf("parse page: %w", err)
	}

	page.Title = pageTitle(doc)

	doc.Find(`meta[property="og:image"]`).Each(func(i int, sel *goquery.Selection) {
		if content, ok := sel.Attr("content"); ok && content != "" {
			page.Images = append(page.Images, content)
		}
	})

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// <main> is the most semantically specific container, then <article>,
	// then the whole body.
	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		if sel := doc.Find(tag); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		return page, fmt.Errorf("no content container found at %s", pageURL)
	}

	fragment, err := goquery.OuterHtml(content)
	if err != nil {
		return page, fmt.Errorf("serialize content: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return page, fmt.Errorf("convert to markdown: %w", err)
	}

	page.Markdown = strings.TrimSpace(markdown)
	return page, nil
}

func pageTitle(doc *goquery.Document) string {
	if title, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
