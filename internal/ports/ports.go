package ports

import (
	"context"

	"github.com/tangpeiwen/clipsync/internal/domain"
)

// DocumentStore is the destination document database (Notion).
type DocumentStore interface {
	CreatePage(ctx context.Context, databaseID string, page domain.PageComposition) (string, error)
	DatabaseSchema(ctx context.Context, databaseID string) (map[string]string, error)
}

// ImageHost rehosts images on an embed-friendly CDN.
type ImageHost interface {
	Upload(ctx context.Context, sourceURL string) (string, error)
}

// WebScraper extracts readable content from arbitrary web pages.
type WebScraper interface {
	Scrape(ctx context.Context, pageURL string) (domain.ScrapedPage, error)
}

// MediaGateway resolves media references that require an authenticated session.
type MediaGateway interface {
	MediaInfo(ctx context.Context, mediaURL string) (domain.InstagramMedia, error)
}

// PublishLog records successfully published pages for audit and listing.
type PublishLog interface {
	Record(ctx context.Context, pub domain.Publication) error
	Recent(ctx context.Context, limit int) ([]domain.Publication, error)
}
