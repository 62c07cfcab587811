package extract

import (
	"context"
	"log/slog"

	"github.com/tangpeiwen/clipsync/internal/domain"
)

// Service dispatches classified input to the matching extraction strategy.
// It is total over every classification: plain text is normalized inline,
// unregistered platforms fall back to the echo record.
type Service struct {
	registry *Registry
	logger   *slog.Logger
}

// NewService wires the strategy registry into the dispatch service.
func NewService(registry *Registry, log *slog.Logger) *Service {
	return &Service{registry: registry, logger: log}
}

// Extract produces the normalized record for one classified input. It never
// returns an error: extraction failures are structured records with Success
// set to false.
func (s *Service) Extract(ctx context.Context, link domain.Classification) domain.NormalizedContent {
	if link.Kind == domain.KindText {
		return textContent(link.Raw)
	}

	s.debug("extract url content", "platform", link.Platform, "url", link.URL)

	strategy, ok := s.registry.Resolve(link.Platform)
	if !ok {
		s.debug("no strategy registered", "platform", link.Platform)
		return Failure(link, nil)
	}

	return strategy.Extract(ctx, link)
}

// textContent builds the record for pasted plain text: the text itself is
// the body, the title is its 50-rune lead.
func textContent(text string) domain.NormalizedContent {
	title := text
	if runes := []rune(text); len(runes) > 50 {
		title = string(runes[:50]) + "..."
	}

	return domain.NormalizedContent{
		Success:  true,
		Kind:     domain.KindText,
		Title:    title,
		Body:     text,
		Source:   "",
		Category: domain.CategoryText,
		Tags:     []string{},
	}
}

func (s *Service) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
