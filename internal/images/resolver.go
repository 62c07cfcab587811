package images

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tangpeiwen/clipsync/internal/domain"
	"github.com/tangpeiwen/clipsync/internal/ports"
)

const verifyUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Safari/537.36"

// Resolver turns raw image URLs into embed-ready references. It is strictly
// best-effort: rehosting and reachability failures degrade to the raw URL,
// never to an error.
type Resolver struct {
	host   ports.ImageHost
	client *http.Client
	logger *slog.Logger
}

// NewResolver wires the optional rehosting collaborator. A nil client gets
// the 5s verification default.
func NewResolver(host ports.ImageHost, client *http.Client, log *slog.Logger) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Resolver{host: host, client: client, logger: log}
}

// Resolve processes one raw image URL: normalize the scheme to HTTPS, probe
// reachability, and rehost when a host is configured. The returned primary
// URL is non-empty whenever the input was.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) domain.ResolvedImage {
	resolved := domain.ResolvedImage{Raw: rawURL, Backups: []string{}}
	if rawURL == "" {
		return resolved
	}

	primary := rawURL
	if strings.HasPrefix(primary, "http://") {
		primary = "https://" + strings.TrimPrefix(primary, "http://")
	}

	if err := r.verify(ctx, primary); err != nil {
		r.debug("image url not verifiable", "url", primary, "error", err)
	}

	if r.host != nil {
		hosted, err := r.host.Upload(ctx, primary)
		if err != nil {
			r.debug("rehost failed, keeping source url", "url", primary, "error", err)
		} else if hosted != "" {
			primary = hosted
		}
	}

	resolved.URL = primary
	return resolved
}

// ResolveAll resolves a list of raw URLs in order, dropping empty entries.
func (r *Resolver) ResolveAll(ctx context.Context, rawURLs []string) []domain.ResolvedImage {
	resolved := make([]domain.ResolvedImage, 0, len(rawURLs))
	for _, raw := range rawURLs {
		if raw == "" {
			continue
		}
		resolved = append(resolved, r.Resolve(ctx, raw))
	}
	return resolved
}

// verify probes the URL with a HEAD request. A 403 gets exactly one retry;
// some CDNs reject the first anonymous probe. The outcome is advisory only.
func (r *Resolver) verify(ctx context.Context, imageURL string) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", verifyUserAgent)
		req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8")
		if strings.Contains(imageURL, "xhscdn.com") || strings.Contains(imageURL, "xiaohongshu.com") {
			req.Header.Set("Referer", "https://www.xiaohongshu.com/")
		}

		resp, err := r.client.Do(req)
		if err != nil {
			return fmt.Errorf("head request: %w", err)
		}
		resp.Body.Close()

		if resp.StatusCode < http.StatusBadRequest {
			return nil
		}

		lastErr = fmt.Errorf("image returned %s", resp.Status)
		if resp.StatusCode != http.StatusForbidden {
			return lastErr
		}
	}
	return lastErr
}

func (r *Resolver) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
