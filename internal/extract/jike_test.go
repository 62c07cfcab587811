package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangpeiwen/clipsync/internal/domain"
)

func TestJikeExtract(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
		<div class="jsx-3930310120 wrap">
			<span>想到一个点子</span>
			<span>明天试试看</span>
		</div>
		</body></html>`))
	}))
	defer server.Close()

	strategy := NewJikeStrategy(server.Client())
	got := strategy.Extract(context.Background(), domain.Classification{
		Kind:     domain.KindURL,
		Platform: domain.PlatformJike,
		URL:      server.URL + "/originalPosts/65f1a2b3c4",
	})

	require.True(t, got.Success, "error: %s", got.Error)
	assert.Equal(t, "想到一个点子\n明天试试看", got.Body)
	assert.Equal(t, "想到一个点子", got.Title)
	assert.Equal(t, "即刻", got.Source)
	assert.Empty(t, got.Images)
}

func TestJikeExtractFailsWithoutContentDiv(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="other">nothing here</div></body></html>`))
	}))
	defer server.Close()

	strategy := NewJikeStrategy(server.Client())
	got := strategy.Extract(context.Background(), domain.Classification{
		Kind: domain.KindURL,
		URL:  server.URL + "/originalPosts/missing",
	})

	require.False(t, got.Success)
	assert.Contains(t, got.Error, "no post content")
}
