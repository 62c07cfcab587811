package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangpeiwen/clipsync/internal/domain"
)

type stubStrategy struct {
	platform domain.Platform
	result   domain.NormalizedContent
}

func (s *stubStrategy) Platform() domain.Platform { return s.platform }

func (s *stubStrategy) Extract(ctx context.Context, link domain.Classification) domain.NormalizedContent {
	return s.result
}

func TestServiceExtractText(t *testing.T) {
	t.Parallel()

	service := NewService(NewRegistry(), nil)

	got := service.Extract(context.Background(), domain.Classification{
		Kind: domain.KindText,
		Raw:  "随手记一句话",
	})

	require.True(t, got.Success)
	assert.Equal(t, domain.KindText, got.Kind)
	assert.Equal(t, "随手记一句话", got.Title)
	assert.Equal(t, "随手记一句话", got.Body)
	assert.Equal(t, domain.CategoryText, got.Category)
	assert.Empty(t, got.Source)
	assert.Equal(t, []string{}, got.Tags)
}

func TestServiceExtractTextTruncatesTitle(t *testing.T) {
	t.Parallel()

	service := NewService(NewRegistry(), nil)
	long := strings.Repeat("字", 80)

	got := service.Extract(context.Background(), domain.Classification{
		Kind: domain.KindText,
		Raw:  long,
	})

	require.True(t, got.Success)
	assert.Equal(t, strings.Repeat("字", 50)+"...", got.Title)
	assert.Equal(t, long, got.Body)
}

func TestServiceExtractDispatchesToStrategy(t *testing.T) {
	t.Parallel()

	want := domain.NormalizedContent{Success: true, Kind: domain.KindURL, Title: "note"}
	registry := NewRegistry()
	registry.Register(&stubStrategy{platform: domain.PlatformXHS, result: want})

	service := NewService(registry, nil)
	got := service.Extract(context.Background(), domain.Classification{
		Kind:     domain.KindURL,
		Platform: domain.PlatformXHS,
		URL:      "https://xhslink.com/a/AbCdEf",
	})

	assert.Equal(t, want, got)
}

func TestServiceExtractUnregisteredPlatformEchoesURL(t *testing.T) {
	t.Parallel()

	service := NewService(NewRegistry(), nil)
	got := service.Extract(context.Background(), domain.Classification{
		Kind:     domain.KindURL,
		Platform: domain.PlatformWeb,
		URL:      "https://example.org/post",
	})

	require.False(t, got.Success)
	assert.Equal(t, "https://example.org/post", got.Body)
	assert.Equal(t, "https://example.org/post", got.OriginalURL)
	assert.Equal(t, domain.CategoryLink, got.Category)
	assert.Equal(t, []string{}, got.Tags)
}

func TestLeadTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "第一行", LeadTitle("第一行\n第二行"))
	assert.Equal(t, "短内容", LeadTitle("短内容"))
	assert.Equal(t, strings.Repeat("长", 50), LeadTitle(strings.Repeat("长", 60)))
}
