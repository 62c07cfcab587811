package detect

import (
	"regexp"
	"strings"

	"github.com/tangpeiwen/clipsync/internal/domain"
)

// urlPattern matches the first URL in pasted text. Share sheets on Chinese
// platforms separate the link from the surrounding blurb with a full-width
// comma, so the match stops at whitespace or U+FF0C.
var urlPattern = regexp.MustCompile(`https?://[^\s，]+`)

// platformKeys maps URL substrings to platforms. Order is authoritative:
// the first matching key wins, so more specific markers come before the
// generic scheme catch-alls.
var platformKeys = []struct {
	key      string
	platform domain.Platform
}{
	{"xhslink", domain.PlatformXHS},
	{"xiaohongshu", domain.PlatformXHS},
	{"xhs", domain.PlatformXHS},
	{"weibo", domain.PlatformWeibo},
	{"okjike", domain.PlatformJike},
	{"instagram", domain.PlatformInstagram},
	{"http", domain.PlatformWeb},
	{"https", domain.PlatformWeb},
}

// Classify decides whether the input is plain text or a shared link and, for
// links, which platform the link belongs to. It is a pure function: the same
// input always yields the same classification.
func Classify(content string) domain.Classification {
	match := urlPattern.FindString(content)
	if match == "" {
		return domain.Classification{
			Kind:     domain.KindText,
			Platform: domain.PlatformUnknown,
			Raw:      content,
		}
	}

	platform := domain.PlatformWeb
	lower := strings.ToLower(match)
	for _, entry := range platformKeys {
		if strings.Contains(lower, entry.key) {
			platform = entry.platform
			break
		}
	}

	return domain.Classification{
		Kind:     domain.KindURL,
		Platform: platform,
		URL:      match,
		Raw:      content,
	}
}
