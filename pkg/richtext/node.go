package richtext

import "encoding/json"

// Kind is the tag carried in the "type" field of a stored node.
type Kind string

const (
	KindDoc         Kind = "doc"
	KindParagraph   Kind = "paragraph"
	KindHeading     Kind = "heading"
	KindBulletList  Kind = "bulletList"
	KindOrderedList Kind = "orderedList"
	KindListItem    Kind = "listItem"
	KindBlockquote  Kind = "blockquote"
	KindCodeBlock   Kind = "codeBlock"
	KindImage       Kind = "image"
	KindText        Kind = "text"
	KindHardBreak   Kind = "hardBreak"
)

const (
	MinHeadingLevel     = 1
	MaxHeadingLevel     = 4
	DefaultHeadingLevel = 2
)

// Node is a block or inline element of a Document.
// The set of implementations is closed; use a type switch to inspect it.
type Node interface {
	Kind() Kind
	isNode()
}

type Paragraph struct {
	Content []Node
}

// Heading carries a level which is clamped to [MinHeadingLevel, MaxHeadingLevel]
// by NewHeading, by the decoder and again by every consumer.
type Heading struct {
	Level   int
	Content []Node
}

type BulletList struct {
	Items []ListItem
}

type OrderedList struct {
	Items []ListItem
}

// ListItem wraps block content, typically a single Paragraph.
type ListItem struct {
	Content []Node
}

// Blockquote holds paragraphs.
type Blockquote struct {
	Content []Node
}

// CodeBlock holds raw code. Marks never apply to it.
type CodeBlock struct {
	Language string
	Code     string
}

// Image is a leaf. Title doubles as the caption.
type Image struct {
	Src   string
	Alt   string
	Title string
}

type Text struct {
	Text  string
	Marks []Mark
}

type HardBreak struct{}

// Unknown preserves a node whose type is not part of the vocabulary.
// It is skipped by the serializer and the renderer but survives a JSON
// round-trip untouched.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

func (Paragraph) Kind() Kind   { return KindParagraph }
func (Heading) Kind() Kind     { return KindHeading }
func (BulletList) Kind() Kind  { return KindBulletList }
func (OrderedList) Kind() Kind { return KindOrderedList }
func (ListItem) Kind() Kind    { return KindListItem }
func (Blockquote) Kind() Kind  { return KindBlockquote }
func (CodeBlock) Kind() Kind   { return KindCodeBlock }
func (Image) Kind() Kind       { return KindImage }
func (Text) Kind() Kind        { return KindText }
func (HardBreak) Kind() Kind   { return KindHardBreak }
func (u Unknown) Kind() Kind   { return Kind(u.Type) }

func (Paragraph) isNode()   {}
func (Heading) isNode()     {}
func (BulletList) isNode()  {}
func (OrderedList) isNode() {}
func (ListItem) isNode()    {}
func (Blockquote) isNode()  {}
func (CodeBlock) isNode()   {}
func (Image) isNode()       {}
func (Text) isNode()        {}
func (HardBreak) isNode()   {}
func (Unknown) isNode()     {}

// ClampHeadingLevel maps any level into [MinHeadingLevel, MaxHeadingLevel].
// Zero means "unset" and yields DefaultHeadingLevel.
func ClampHeadingLevel(level int) int {
	switch {
	case level == 0:
		return DefaultHeadingLevel
	case level < MinHeadingLevel:
		return MinHeadingLevel
	case level > MaxHeadingLevel:
		return MaxHeadingLevel
	default:
		return level
	}
}

func NewParagraph(content ...Node) Paragraph {
	return Paragraph{Content: content}
}

func NewHeading(level int, content ...Node) Heading {
	return Heading{Level: ClampHeadingLevel(level), Content: content}
}

func NewText(text string, marks ...Mark) Text {
	return Text{Text: text, Marks: marks}
}

// NewListItem wraps content in a single paragraph, which is the shape
// produced by the markup parser.
func NewListItem(content ...Node) ListItem {
	return ListItem{Content: []Node{NewParagraph(content...)}}
}
