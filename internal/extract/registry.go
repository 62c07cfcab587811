package extract

import (
	"context"
	"strings"

	"github.com/tangpeiwen/clipsync/internal/domain"
)

// Strategy captures a single platform extraction implementation. Strategies
// never return errors: failures become NormalizedContent records with
// Success set to false.
type Strategy interface {
	Platform() domain.Platform
	Extract(ctx context.Context, link domain.Classification) domain.NormalizedContent
}

// Registry keeps a mapping from platforms to their extraction strategies.
type Registry struct {
	strategies map[domain.Platform]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[domain.Platform]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[domain.Platform]Strategy{}
	}
	r.strategies[strategy.Platform()] = strategy
}

// Resolve returns the strategy registered for a platform.
func (r *Registry) Resolve(platform domain.Platform) (Strategy, bool) {
	strategy, ok := r.strategies[platform]
	return strategy, ok
}

// Failure builds the uniform unextractable-link record: the URL is echoed as
// the body so the destination page still points somewhere useful.
func Failure(link domain.Classification, err error) domain.NormalizedContent {
	record := domain.NormalizedContent{
		Kind:        domain.KindURL,
		Body:        link.URL,
		Source:      link.Platform.DisplayName(),
		Category:    domain.CategoryLink,
		Tags:        []string{},
		OriginalURL: link.URL,
	}
	if err != nil {
		record.Error = err.Error()
	}
	return record
}

// LeadTitle derives a title from body text: the first line for multi-line
// content, otherwise the first 50 characters.
func LeadTitle(body string) string {
	if idx := strings.Index(body, "\n"); idx >= 0 {
		return body[:idx]
	}
	runes := []rune(body)
	if len(runes) > 50 {
		return string(runes[:50])
	}
	return body
}
