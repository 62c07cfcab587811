package domain

// BlockType enumerates the destination block shapes the composer emits.
type BlockType string

const (
	BlockHeading2  BlockType = "heading_2"
	BlockHeading3  BlockType = "heading_3"
	BlockParagraph BlockType = "paragraph"
	BlockDivider   BlockType = "divider"
	BlockImage     BlockType = "image"
)

// ImageSourceKind distinguishes externally hosted embeds from expiring file URLs.
type ImageSourceKind string

const (
	ImageExternal ImageSourceKind = "external"
	ImageFile     ImageSourceKind = "file"
)

// TextSpan is one rich-text run inside a block.
type TextSpan struct {
	Text  string
	Link  string
	Bold  bool
	Color string
}

// Block is a destination-agnostic content block. Text blocks carry Spans;
// image blocks carry the image fields instead.
type Block struct {
	Type        BlockType
	Spans       []TextSpan
	ImageURL    string
	ImageKind   ImageSourceKind
	ImageExpiry string
}

// PageProperties is the fixed property set written to the destination database.
// Empty strings map to the explicit empty representation of each property type
// (null select, null url), never to an omitted property.
type PageProperties struct {
	Name     string
	Preview  string
	URL      string
	Source   string
	Category string
	Tags     []string
}

// PageComposition is the full page payload submitted in a single create call.
type PageComposition struct {
	Properties PageProperties
	Blocks     []Block
}
