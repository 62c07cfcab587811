package extract

import (
	"context"
	"fmt"

	"github.com/tangpeiwen/clipsync/internal/domain"
	"github.com/tangpeiwen/clipsync/internal/ports"
)

// InstagramStrategy extracts posts through an authenticated media gateway.
// The gateway owns the session; this strategy only maps the resolved media
// record onto the normalized shape.
type InstagramStrategy struct {
	gateway ports.MediaGateway
}

var _ Strategy = (*InstagramStrategy)(nil)

// NewInstagramStrategy wires the media gateway.
func NewInstagramStrategy(gateway ports.MediaGateway) *InstagramStrategy {
	return &InstagramStrategy{gateway: gateway}
}

// Platform identifies the strategy inside the registry.
func (i *InstagramStrategy) Platform() domain.Platform {
	return domain.PlatformInstagram
}

// Extract resolves the media reference and normalizes it. Video posts carry
// only their caption; photo and album posts also carry image URLs.
func (i *InstagramStrategy) Extract(ctx context.Context, link domain.Classification) domain.NormalizedContent {
	if i.gateway == nil {
		return Failure(link, fmt.Errorf("instagram session is not configured"))
	}

	media, err := i.gateway.MediaInfo(ctx, link.URL)
	if err != nil {
		return Failure(link, fmt.Errorf("resolve media: %w", err))
	}

	images := make([]string, 0, len(media.Images))
	for _, img := range media.Images {
		if img != "" {
			images = append(images, img)
		}
	}

	originalURL := media.URL
	if originalURL == "" {
		originalURL = link.URL
	}

	return domain.NormalizedContent{
		Success:     true,
		Kind:        domain.KindURL,
		Title:       fmt.Sprintf("%s的Instagram", media.Username),
		Body:        media.Caption,
		Images:      images,
		Source:      domain.PlatformInstagram.DisplayName(),
		Category:    domain.CategoryLink,
		Tags:        []string{},
		OriginalURL: originalURL,
	}
}
