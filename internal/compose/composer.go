package compose

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/tangpeiwen/clipsync/internal/chunk"
	"github.com/tangpeiwen/clipsync/internal/domain"
)

const (
	bodyHeading    = "正文内容"
	imageHeading   = "图片内容"
	noEmbedWarning = "无法直接嵌入图片，请访问原始链接查看图片内容。"

	// backupExpiry is the expiry stamp written on file-type image blocks.
	backupExpiry = "2025-12-31T23:59:59Z"
)

// EmbedChecker reports whether the destination will accept an image URL.
type EmbedChecker interface {
	CheckImageURL(url string) error
}

// embedState tracks one image through the fallback chain. States are
// terminal once reached; there are no retries past the backup list.
type embedState int

const (
	statePending embedState = iota
	stateEmbedded
	stateBackupEmbedded
	stateTextOnly
)

// Composer assembles a normalized record and its resolved images into the
// destination page payload.
type Composer struct {
	chunker *chunk.Chunker
	checker EmbedChecker
	logger  *slog.Logger
}

// NewComposer wires the embed checker; a nil checker accepts every URL.
func NewComposer(checker EmbedChecker, log *slog.Logger) *Composer {
	return &Composer{
		chunker: chunk.NewChunker(),
		checker: checker,
		logger:  log,
	}
}

// Compose builds the full page: properties, chunked body blocks, and image
// blocks with the backup fallback chain applied per image.
func (c *Composer) Compose(content domain.NormalizedContent, images []domain.ResolvedImage) domain.PageComposition {
	page := domain.PageComposition{
		Properties: c.properties(content),
	}

	if content.Body != "" {
		page.Blocks = append(page.Blocks, textBlock(domain.BlockHeading2, bodyHeading))
		for _, chunked := range c.chunker.Split(content.Body) {
			page.Blocks = append(page.Blocks, textBlock(domain.BlockParagraph, chunked))
		}
	}

	if len(images) > 0 {
		page.Blocks = append(page.Blocks, c.imageBlocks(images)...)
	}

	return page
}

func (c *Composer) properties(content domain.NormalizedContent) domain.PageProperties {
	props := domain.PageProperties{
		Name:     pageName(content),
		Preview:  leadRunes(strings.TrimSpace(content.Body), 150),
		Source:   content.Source,
		Category: content.Category,
		Tags:     content.Tags,
	}
	if props.Tags == nil {
		props.Tags = []string{}
	}

	if content.Kind == domain.KindURL && content.OriginalURL != "" {
		props.URL = content.OriginalURL
		// Xiaohongshu note URLs carry per-share tracking tokens; only the
		// path identifies the note.
		if strings.Contains(props.URL, "xiaohongshu.com") {
			props.URL = strings.SplitN(props.URL, "?", 2)[0]
		}
	}

	return props
}

func pageName(content domain.NormalizedContent) string {
	if content.Kind == domain.KindURL {
		if content.Title != "" {
			return content.Title
		}
		return "Untitled"
	}

	name := leadRunes(strings.TrimSpace(content.Body), 20)
	if name == "" {
		return "Untitled"
	}
	return name
}

// imageBlocks walks every image through the embed state machine. No image
// reference is ever dropped: exhausted images become plain text links, and a
// page with zero embedded images gets a warning plus the full URL listing.
func (c *Composer) imageBlocks(images []domain.ResolvedImage) []domain.Block {
	blocks := []domain.Block{
		{Type: domain.BlockDivider},
		textBlock(domain.BlockHeading3, imageHeading),
	}

	embedded := 0
	var allBackups []string

	for _, img := range images {
		if img.URL == "" {
			continue
		}
		allBackups = append(allBackups, img.Backups...)

		switch state, chosen := c.embed(img); state {
		case stateEmbedded:
			blocks = append(blocks,
				domain.Block{Type: domain.BlockImage, ImageURL: chosen, ImageKind: domain.ImageExternal},
				linkParagraph("图片链接: "+chosen, chosen),
			)
			embedded++
		case stateBackupEmbedded:
			blocks = append(blocks,
				domain.Block{Type: domain.BlockImage, ImageURL: chosen, ImageKind: domain.ImageFile, ImageExpiry: backupExpiry},
				textBlock(domain.BlockParagraph, "备用图片链接: "+chosen),
			)
			embedded++
		case stateTextOnly:
			blocks = append(blocks, domain.Block{
				Type: domain.BlockParagraph,
				Spans: []domain.TextSpan{
					{Text: "图片链接(无法嵌入): "},
					{Text: img.URL, Link: img.URL},
				},
			})
		}
	}

	if embedded == 0 {
		blocks = append(blocks, domain.Block{
			Type:  domain.BlockParagraph,
			Spans: []domain.TextSpan{{Text: noEmbedWarning, Bold: true, Color: "red"}},
		})

		count := 0
		for _, img := range images {
			if img.Raw == "" {
				continue
			}
			count++
			blocks = append(blocks, numberedLink("原始图片", count, img.Raw))
		}

		if len(allBackups) > 0 {
			blocks = append(blocks, domain.Block{
				Type:  domain.BlockParagraph,
				Spans: []domain.TextSpan{{Text: "备用图片链接:", Bold: true}},
			})
			for i, backup := range allBackups {
				blocks = append(blocks, numberedLink("备用链接", i+1, backup))
			}
		}
	}

	return blocks
}

// embed runs the fallback chain for one image: primary first, then each
// backup in order, stopping at the first URL the destination accepts.
func (c *Composer) embed(img domain.ResolvedImage) (embedState, string) {
	if err := c.check(img.URL); err == nil {
		return stateEmbedded, img.URL
	} else if c.logger != nil {
		c.logger.Warn("image rejected, trying backups", "url", img.URL, "backups", len(img.Backups), "error", err)
	}

	for _, backup := range img.Backups {
		if err := c.check(backup); err == nil {
			return stateBackupEmbedded, backup
		}
	}

	return stateTextOnly, ""
}

func (c *Composer) check(url string) error {
	if c.checker == nil {
		return nil
	}
	return c.checker.CheckImageURL(url)
}

func textBlock(kind domain.BlockType, text string) domain.Block {
	return domain.Block{Type: kind, Spans: []domain.TextSpan{{Text: text}}}
}

func linkParagraph(text, url string) domain.Block {
	return domain.Block{
		Type:  domain.BlockParagraph,
		Spans: []domain.TextSpan{{Text: text, Link: url}},
	}
}

func numberedLink(label string, n int, url string) domain.Block {
	return domain.Block{
		Type: domain.BlockParagraph,
		Spans: []domain.TextSpan{
			{Text: label + " " + strconv.Itoa(n) + ": "},
			{Text: url, Link: url},
		},
	}
}

func leadRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
