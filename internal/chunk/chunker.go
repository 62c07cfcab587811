package chunk

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Destination paragraph blocks reject rich text longer than 2000 characters;
// packing to 1900 leaves headroom for separators.
const (
	DefaultSoftLimit = 1900
	DefaultHardLimit = 2000
)

var blankRunPattern = regexp.MustCompile(`\n\s*\n`)

// Chunker splits body text into destination-sized blocks. Lengths are counted
// in runes, matching how the destination counts characters.
type Chunker struct {
	SoftLimit int
	HardLimit int
}

// NewChunker returns a chunker with the default limits.
func NewChunker() *Chunker {
	return &Chunker{SoftLimit: DefaultSoftLimit, HardLimit: DefaultHardLimit}
}

// Normalize cleans markdown-ish text before chunking: HTML line breaks become
// newlines, escaped quotes and newlines are unescaped, runs of blank lines
// collapse into a single blank line, and the result is trimmed.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "<br>", "\n")
	text = strings.ReplaceAll(text, "<br/>", "\n")
	text = strings.ReplaceAll(text, "<br />", "\n")

	text = strings.ReplaceAll(text, `\'`, "'")
	text = strings.ReplaceAll(text, `\"`, `"`)
	text = strings.ReplaceAll(text, `\n`, "\n")

	text = blankRunPattern.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// Split normalizes the text and packs its paragraphs greedily into blocks no
// longer than the soft limit. Paragraphs longer than the soft limit are cut
// into soft-limit slices. A final pass re-slices anything that still exceeds
// the hard limit, so no returned block can be rejected by the destination.
func (c *Chunker) Split(text string) []string {
	soft := c.SoftLimit
	if soft <= 0 {
		soft = DefaultSoftLimit
	}
	hard := c.HardLimit
	if hard <= 0 {
		hard = DefaultHardLimit
	}

	content := Normalize(text)
	if content == "" {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, paragraph := range strings.Split(content, "\n") {
		length := utf8.RuneCountInString(paragraph)

		if length > soft {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, "\n"))
				current = nil
				currentLen = 0
			}
			chunks = append(chunks, sliceRunes(paragraph, soft)...)
			continue
		}

		if currentLen+length+1 > soft {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = []string{paragraph}
			currentLen = length
		} else {
			current = append(current, paragraph)
			currentLen += length + 1
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	final := make([]string, 0, len(chunks))
	for _, block := range chunks {
		if utf8.RuneCountInString(block) > hard {
			final = append(final, sliceRunes(block, soft)...)
			continue
		}
		final = append(final, block)
	}

	return final
}

func sliceRunes(text string, size int) []string {
	runes := []rune(text)
	slices := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		slices = append(slices, string(runes[start:end]))
	}
	return slices
}
