package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	in := "  第一行<br>第二行<br/>第三行<br />\\n还有\\'引号\\\"\n\n\n\n结尾  "
	got := Normalize(in)

	assert.Equal(t, "第一行\n第二行\n第三行\n\n还有'引号\"\n\n结尾", got)
}

func TestSplitShortText(t *testing.T) {
	t.Parallel()

	chunker := NewChunker()
	got := chunker.Split("一段很短的笔记")

	require.Len(t, got, 1)
	assert.Equal(t, "一段很短的笔记", got[0])
}

func TestSplitEmptyText(t *testing.T) {
	t.Parallel()

	chunker := NewChunker()
	assert.Empty(t, chunker.Split("   \n  "))
}

func TestSplitPacksGreedily(t *testing.T) {
	t.Parallel()

	first := strings.Repeat("a", 1000)
	second := strings.Repeat("b", 1000)
	third := strings.Repeat("c", 100)
	text := first + "\n" + second + "\n" + third

	chunker := NewChunker()
	got := chunker.Split(text)

	require.Len(t, got, 2)
	assert.Equal(t, first, got[0])
	assert.Equal(t, second+"\n"+third, got[1])
	assert.Equal(t, 1101, utf8.RuneCountInString(got[1]))
}

func TestSplitForceSplitsLongParagraph(t *testing.T) {
	t.Parallel()

	chunker := NewChunker()
	got := chunker.Split(strings.Repeat("x", 5000))

	require.Len(t, got, 3)
	assert.Equal(t, 1900, utf8.RuneCountInString(got[0]))
	assert.Equal(t, 1900, utf8.RuneCountInString(got[1]))
	assert.Equal(t, 1200, utf8.RuneCountInString(got[2]))
	assert.Equal(t, strings.Repeat("x", 5000), strings.Join(got, ""))
}

func TestSplitCountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	chunker := NewChunker()
	got := chunker.Split(strings.Repeat("汉", 5000))

	require.Len(t, got, 3)
	assert.Equal(t, 1900, utf8.RuneCountInString(got[0]))
	assert.Equal(t, 1900, utf8.RuneCountInString(got[1]))
	assert.Equal(t, 1200, utf8.RuneCountInString(got[2]))
}

func TestSplitRespectsHardLimit(t *testing.T) {
	t.Parallel()

	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, strings.Repeat("段", 350))
	}
	text := strings.Join(lines, "\n")

	chunker := NewChunker()
	for i, block := range chunker.Split(text) {
		assert.LessOrEqual(t, utf8.RuneCountInString(block), DefaultHardLimit, "block %d", i)
	}
}

func TestSplitReconstructsInput(t *testing.T) {
	t.Parallel()

	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, strings.Repeat("词", 120+i))
	}
	text := strings.Join(lines, "\n")

	chunker := NewChunker()
	got := chunker.Split(text)

	require.NotEmpty(t, got)
	assert.Equal(t, Normalize(text), strings.Join(got, "\n"))
}
