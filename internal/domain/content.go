package domain

import "time"

// Platform identifies a supported content source.
type Platform string

const (
	PlatformXHS       Platform = "xhs"
	PlatformWeibo     Platform = "weibo"
	PlatformJike      Platform = "jike"
	PlatformInstagram Platform = "instagram"
	PlatformWeb       Platform = "web"
	PlatformUnknown   Platform = "unknown"
)

// DisplayName returns the user-facing source label written to destination pages.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformXHS:
		return "小红书"
	case PlatformWeibo:
		return "微博"
	case PlatformJike:
		return "即刻"
	case PlatformInstagram:
		return "Instagram"
	case PlatformWeb:
		return "网页"
	default:
		return ""
	}
}

// ContentKind separates pasted plain text from shared links.
type ContentKind string

const (
	KindText ContentKind = "text"
	KindURL  ContentKind = "url"
)

// Category labels written to the destination Category property.
const (
	CategoryLink = "链接"
	CategoryText = "文本"
)

// Classification is the detector's verdict about one piece of user input.
type Classification struct {
	Kind     ContentKind
	Platform Platform
	URL      string // first URL found in the input, empty for plain text
	Raw      string // original input, untouched
}

// NormalizedContent is the platform-independent extraction result. Strategies
// always return it fully populated; extraction failures set Success to false
// and echo the URL as the body instead of raising.
type NormalizedContent struct {
	Success     bool        `json:"success"`
	Kind        ContentKind `json:"type"`
	Title       string      `json:"title"`
	Body        string      `json:"content"`
	Source      string      `json:"source"`
	Category    string      `json:"category"`
	Tags        []string    `json:"tags"`
	Images      []string    `json:"images,omitempty"`
	OriginalURL string      `json:"original_url,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// ResolvedImage is one image reference after URL resolution. Backups holds
// alternative URLs to try when the primary cannot be embedded; it may be
// empty but is never nil.
type ResolvedImage struct {
	Raw     string   `json:"raw"`
	URL     string   `json:"url"`
	Backups []string `json:"backups"`
}

// ScrapedPage is the readable content of a generic web page. Images may be
// empty; hosted scrape APIs return Markdown without separate image refs.
type ScrapedPage struct {
	Title    string
	Markdown string
	Images   []string
}

// InstagramMedia is the media record resolved through an authenticated session.
// MediaType follows the platform encoding: 1 photo, 2 video, 8 album.
type InstagramMedia struct {
	MediaType int
	Caption   string
	Username  string
	URL       string
	Images    []string
}

// Publication is one publish-history row.
type Publication struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Source     string    `json:"source"`
	Title      string    `json:"title"`
	PageID     string    `json:"page_id"`
	DatabaseID string    `json:"database_id"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
}
