package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tangpeiwen/clipsync/internal/domain"
)

// browserUserAgent impersonates a desktop browser; several platforms serve
// empty metadata to unknown agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Safari/537.36"

const xhsReferer = "https://www.xiaohongshu.com/"

// XHSStrategy extracts Xiaohongshu notes. Share sheets hand out short links,
// so the strategy first resolves redirects to the canonical note URL and
// then reads the note's Open Graph metadata.
type XHSStrategy struct {
	client *http.Client
	logger *slog.Logger
}

var _ Strategy = (*XHSStrategy)(nil)

// NewXHSStrategy wires an HTTP client; a nil client gets a 10s default.
func NewXHSStrategy(client *http.Client, log *slog.Logger) *XHSStrategy {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &XHSStrategy{client: client, logger: log}
}

// Platform identifies the strategy inside the registry.
func (x *XHSStrategy) Platform() domain.Platform {
	return domain.PlatformXHS
}

// Extract resolves the share link and reads note metadata from the page.
func (x *XHSStrategy) Extract(ctx context.Context, link domain.Classification) domain.NormalizedContent {
	finalURL, err := x.resolveFinalURL(ctx, link.URL)
	if err != nil {
		return Failure(link, fmt.Errorf("resolve short link: %w", err))
	}

	doc, err := x.fetchDocument(ctx, finalURL)
	if err != nil {
		return Failure(link, err)
	}

	// A player element means the note is a video post.
	isVideo := doc.Find("div.player-el").Length() > 0
	if x.logger != nil {
		subtype := "图文"
		if isVideo {
			subtype = "视频"
		}
		x.logger.Debug("xhs note fetched", "url", finalURL, "type", subtype)
	}

	var images []string
	doc.Find(`meta[name="og:image"]`).Each(func(i int, sel *goquery.Selection) {
		if content, exists := sel.Attr("content"); exists && content != "" {
			images = append(images, content)
		}
	})

	title, _ := doc.Find(`meta[name="og:title"]`).First().Attr("content")
	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")

	return domain.NormalizedContent{
		Success:     true,
		Kind:        domain.KindURL,
		Title:       title,
		Body:        description,
		Images:      images,
		Source:      domain.PlatformXHS.DisplayName(),
		Category:    domain.CategoryLink,
		Tags:        []string{},
		OriginalURL: finalURL,
	}
}

// resolveFinalURL follows the short-link redirect chain and returns the
// canonical note URL. A link that cannot be resolved fails the extraction.
func (x *XHSStrategy) resolveFinalURL(ctx context.Context, shortURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shortURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("follow redirect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("short link returned %s", resp.Status)
	}

	return resp.Request.URL.String(), nil
}

func (x *XHSStrategy) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Referer", xhsReferer)

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request note page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("note page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse note page: %w", err)
	}

	return doc, nil
}
