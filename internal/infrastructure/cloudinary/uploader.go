package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tangpeiwen/clipsync/internal/config"
	"github.com/tangpeiwen/clipsync/internal/ports"
)

const (
	uploadFolder = "notion_images"
	// transformation keeps hosted copies small without visible quality loss.
	uploadTransformation = "q_auto,f_auto"
)

// Uploader rehosts images through Cloudinary's signed upload endpoint.
type Uploader struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
}

var _ ports.ImageHost = (*Uploader)(nil)

// NewUploader builds an uploader from configuration.
func NewUploader(cfg config.CloudinaryConfig) *Uploader {
	return &Uploader{
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		endpoint:  fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", cfg.CloudName),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// Upload submits a remote image URL for rehosting and returns the stable
// hosted URL. Callers fall back to the source URL on error.
func (u *Uploader) Upload(ctx context.Context, sourceURL string) (string, error) {
	if u.cloudName == "" || u.apiKey == "" || u.apiSecret == "" {
		return "", fmt.Errorf("cloudinary uploader misconfigured")
	}

	params := map[string]string{
		"folder":         uploadFolder,
		"timestamp":      strconv.FormatInt(u.now().Unix(), 10),
		"transformation": uploadTransformation,
	}

	form := url.Values{}
	form.Set("file", sourceURL)
	form.Set("api_key", u.apiKey)
	form.Set("signature", u.sign(params))
	for key, value := range params {
		form.Set(key, value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("cloudinary error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var uploaded struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if uploaded.SecureURL == "" {
		return "", fmt.Errorf("upload response has no secure_url")
	}

	return uploaded.SecureURL, nil
}

// sign computes the SHA-1 upload signature over the sorted parameter string
// plus the API secret, per Cloudinary's signing scheme.
func (u *Uploader) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + u.apiSecret))
	return hex.EncodeToString(sum[:])
}
