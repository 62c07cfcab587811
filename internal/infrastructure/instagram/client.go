package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/tangpeiwen/clipsync/internal/config"
	"github.com/tangpeiwen/clipsync/internal/domain"
	"github.com/tangpeiwen/clipsync/internal/ports"
)

const (
	mediaEndpoint = "https://i.instagram.com/api/v1/media"

	// shortcodeAlphabet is the URL-safe base64 alphabet Instagram uses to
	// encode media PKs into post shortcodes.
	shortcodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	defaultUserAgent = "Instagram 269.0.0.18.75 Android (26/8.0.0; 480dpi; 1080x1920; OnePlus; 6T Dev; devitron; qcom; en_US; 314665256)"
)

var shortcodePattern = regexp.MustCompile(`instagram\.com/(?:p|reel|tv)/([A-Za-z0-9_-]+)`)

// Client resolves Instagram media through a previously saved login session.
// The session file is read, never written; login flows live elsewhere.
type Client struct {
	sessionFile string
	endpoint    string
	httpClient  *http.Client
}

var _ ports.MediaGateway = (*Client)(nil)

// NewClient builds a gateway from configuration.
func NewClient(cfg config.InstagramConfig) *Client {
	return &Client{
		sessionFile: cfg.SessionFile,
		endpoint:    mediaEndpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type session struct {
	SessionID string `json:"sessionid"`
	UserAgent string `json:"user_agent"`
	Authorization struct {
		SessionID string `json:"sessionid"`
	} `json:"authorization_data"`
}

func (s session) sessionID() string {
	if s.Authorization.SessionID != "" {
		return s.Authorization.SessionID
	}
	return s.SessionID
}

// MediaInfo resolves one post URL to its caption, author, and image URLs.
func (c *Client) MediaInfo(ctx context.Context, mediaURL string) (domain.InstagramMedia, error) {
	var media domain.InstagramMedia

	sess, err := c.loadSession()
	if err != nil {
		return media, err
	}

	pk, err := MediaPK(mediaURL)
	if err != nil {
		return media, err
	}

	info, err := c.fetchMedia(ctx, sess, pk)
	if err != nil {
		return media, err
	}

	media.MediaType = info.MediaType
	media.Caption = info.Caption.Text
	media.Username = info.User.Username
	media.URL = mediaURL

	// 1 photo, 8 album; video posts (2) carry only their caption.
	switch info.MediaType {
	case 1:
		if len(info.ImageVersions.Candidates) > 0 {
			media.Images = append(media.Images, SimplifyImageURL(info.ImageVersions.Candidates[0].URL))
		}
	case 8:
		for _, item := range info.CarouselMedia {
			if len(item.ImageVersions.Candidates) > 0 {
				media.Images = append(media.Images, SimplifyImageURL(item.ImageVersions.Candidates[0].URL))
			}
		}
	}

	return media, nil
}

func (c *Client) loadSession() (session, error) {
	var sess session

	raw, err := os.ReadFile(c.sessionFile)
	if err != nil {
		return sess, fmt.Errorf("read session file: %w", err)
	}
	if err := json.Unmarshal(raw, &sess); err != nil {
		return sess, fmt.Errorf("parse session file: %w", err)
	}
	if sess.sessionID() == "" {
		return sess, fmt.Errorf("session file %s has no sessionid", c.sessionFile)
	}

	return sess, nil
}

type mediaItem struct {
	MediaType int `json:"media_type"`
	Caption   struct {
		Text string `json:"text"`
	} `json:"caption"`
	User struct {
		Username string `json:"username"`
	} `json:"user"`
	ImageVersions struct {
		Candidates []struct {
			URL string `json:"url"`
		} `json:"candidates"`
	} `json:"image_versions2"`
	CarouselMedia []struct {
		ImageVersions struct {
			Candidates []struct {
				URL string `json:"url"`
			} `json:"candidates"`
		} `json:"image_versions2"`
	} `json:"carousel_media"`
}

func (c *Client) fetchMedia(ctx context.Context, sess session, pk int64) (mediaItem, error) {
	var item mediaItem

	endpoint := fmt.Sprintf("%s/%d/info/", c.endpoint, pk)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return item, fmt.Errorf("new request: %w", err)
	}

	agent := sess.UserAgent
	if agent == "" {
		agent = defaultUserAgent
	}
	req.Header.Set("User-Agent", agent)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: sess.sessionID()})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return item, fmt.Errorf("request media info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return item, fmt.Errorf("session expired or invalid (%s)", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return item, fmt.Errorf("instagram error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var payload struct {
		Items []mediaItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return item, fmt.Errorf("decode media info: %w", err)
	}
	if len(payload.Items) == 0 {
		return item, fmt.Errorf("media %d not found", pk)
	}

	return payload.Items[0], nil
}

// MediaPK derives the numeric media PK from a post URL. Shortcodes are the
// PK encoded in the URL-safe base64 alphabet; only the leading 11 characters
// belong to the PK.
func MediaPK(mediaURL string) (int64, error) {
	match := shortcodePattern.FindStringSubmatch(mediaURL)
	if match == nil {
		return 0, fmt.Errorf("no media shortcode in url %s", mediaURL)
	}

	code := match[1]
	if len(code) > 11 {
		code = code[:11]
	}

	var pk int64
	for _, ch := range code {
		idx := strings.IndexRune(shortcodeAlphabet, ch)
		if idx < 0 {
			return 0, fmt.Errorf("invalid shortcode character %q", ch)
		}
		pk = pk*64 + int64(idx)
	}

	return pk, nil
}

// SimplifyImageURL strips CDN query parameters that break external embeds,
// keeping only the signature parameters cdninstagram requires.
func SimplifyImageURL(imageURL string) string {
	if imageURL == "" {
		return ""
	}

	parsed, err := url.Parse(imageURL)
	if err != nil {
		return imageURL
	}

	base := fmt.Sprintf("%s://%s%s", parsed.Scheme, parsed.Host, parsed.Path)
	if !strings.Contains(parsed.Host, "cdninstagram.com") {
		return base
	}

	query := parsed.Query()
	kept := url.Values{}
	for _, key := range []string{"se", "stp"} {
		if value := query.Get(key); value != "" {
			kept.Set(key, value)
		}
	}
	if len(kept) == 0 {
		return base
	}

	return base + "?" + kept.Encode()
}
