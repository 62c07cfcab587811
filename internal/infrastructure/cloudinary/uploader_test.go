package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangpeiwen/clipsync/internal/config"
)

func newTestUploader(endpoint string) *Uploader {
	uploader := NewUploader(config.CloudinaryConfig{
		CloudName: "demo",
		APIKey:    "key-1",
		APISecret: "secret-1",
	})
	uploader.endpoint = endpoint
	uploader.now = func() time.Time { return time.Unix(1700000000, 0) }
	return uploader
}

func TestUpload(t *testing.T) {
	t.Parallel()

	var form url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/image/upload/v1/notion_images/a.jpg"}`))
	}))
	defer server.Close()

	hosted, err := newTestUploader(server.URL).Upload(context.Background(), "https://img.example.com/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/notion_images/a.jpg", hosted)

	assert.Equal(t, "https://img.example.com/a.jpg", form.Get("file"))
	assert.Equal(t, "key-1", form.Get("api_key"))
	assert.Equal(t, "notion_images", form.Get("folder"))
	assert.Equal(t, "q_auto,f_auto", form.Get("transformation"))
	assert.Equal(t, "1700000000", form.Get("timestamp"))

	// signature covers the sorted upload params plus the secret
	signed := "folder=notion_images&timestamp=1700000000&transformation=q_auto,f_auto" + "secret-1"
	sum := sha1.Sum([]byte(signed))
	assert.Equal(t, hex.EncodeToString(sum[:]), form.Get("signature"))
}

func TestUploadServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid transformation"}}`))
	}))
	defer server.Close()

	_, err := newTestUploader(server.URL).Upload(context.Background(), "https://img.example.com/a.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid transformation")
}

func TestUploadMissingSecureURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := newTestUploader(server.URL).Upload(context.Background(), "https://img.example.com/a.jpg")
	assert.Error(t, err)
}

func TestUploadMisconfigured(t *testing.T) {
	t.Parallel()

	uploader := NewUploader(config.CloudinaryConfig{})
	_, err := uploader.Upload(context.Background(), "https://img.example.com/a.jpg")
	assert.Error(t, err)
}
