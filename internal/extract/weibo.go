package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/tangpeiwen/clipsync/internal/domain"
)

// statusIDPattern matches the numeric status ID in both public URL forms:
// weibo.com/<uid>/<id> and m.weibo.cn/status/<id>.
var statusIDPattern = regexp.MustCompile(`(?:status/|com/\d+/)(\d+)`)

// WeiboStrategy extracts Weibo statuses through the mobile JSON endpoint,
// which serves full status text and picture URLs without a login.
type WeiboStrategy struct {
	endpoint string
	client   *http.Client
}

var _ Strategy = (*WeiboStrategy)(nil)

// NewWeiboStrategy wires an HTTP client; a nil client gets a 10s default.
func NewWeiboStrategy(client *http.Client) *WeiboStrategy {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WeiboStrategy{
		endpoint: "https://m.weibo.cn/statuses/show",
		client:   client,
	}
}

// Platform identifies the strategy inside the registry.
func (w *WeiboStrategy) Platform() domain.Platform {
	return domain.PlatformWeibo
}

type weiboStatus struct {
	OK   int `json:"ok"`
	Data struct {
		Text string `json:"text"`
		Pics []struct {
			Large struct {
				URL string `json:"url"`
			} `json:"large"`
		} `json:"pics"`
	} `json:"data"`
}

// Extract looks up the status by ID and converts its HTML text to plain text.
func (w *WeiboStrategy) Extract(ctx context.Context, link domain.Classification) domain.NormalizedContent {
	match := statusIDPattern.FindStringSubmatch(link.URL)
	if match == nil {
		return Failure(link, fmt.Errorf("no status id in url %s", link.URL))
	}

	status, err := w.fetchStatus(ctx, match[1])
	if err != nil {
		return Failure(link, err)
	}

	body := HTMLToText(status.Data.Text)
	if body == "" {
		return Failure(link, fmt.Errorf("status %s has no text", match[1]))
	}

	images := make([]string, 0, len(status.Data.Pics))
	for _, pic := range status.Data.Pics {
		if pic.Large.URL != "" {
			images = append(images, pic.Large.URL)
		}
	}

	return domain.NormalizedContent{
		Success:     true,
		Kind:        domain.KindURL,
		Title:       LeadTitle(body),
		Body:        body,
		Images:      images,
		Source:      domain.PlatformWeibo.DisplayName(),
		Category:    domain.CategoryLink,
		Tags:        []string{},
		OriginalURL: link.URL,
	}
}

func (w *WeiboStrategy) fetchStatus(ctx context.Context, id string) (weiboStatus, error) {
	var status weiboStatus

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+"?id="+id, nil)
	if err != nil {
		return status, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return status, fmt.Errorf("request status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return status, fmt.Errorf("weibo returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, fmt.Errorf("decode status: %w", err)
	}

	if status.OK != 1 {
		return status, fmt.Errorf("weibo rejected status lookup (ok=%d)", status.OK)
	}

	return status, nil
}
