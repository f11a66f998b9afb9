// Package richtext defines the rich-text document tree stored for every
// post: a sequence of block nodes (paragraphs, headings, lists, quotes,
// code, images) whose text leaves carry inline marks.
//
// A Document is value data. Producers never hand out a Document with an
// empty Content: the canonical empty document is a single empty paragraph
// (see [Empty]). Stored JSON that cannot be read resolves to that same
// canonical value instead of an error, see [Parse].
package richtext

// Document is the root of the tree.
type Document struct {
	Content []Node
}

// Empty returns the canonical empty document.
func Empty() Document {
	return Document{Content: []Node{Paragraph{}}}
}

// New builds a Document from top-level nodes, skipping nils.
// No nodes yields Empty().
func New(content ...Node) Document {
	nodes := make([]Node, 0, len(content))
	for _, n := range content {
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		return Empty()
	}
	return Document{Content: nodes}
}

// IsEmpty reports whether the document carries no visible content.
func (d Document) IsEmpty() bool {
	for _, n := range d.Content {
		if p, ok := n.(Paragraph); ok && len(p.Content) == 0 {
			continue
		}
		if n != nil {
			return false
		}
	}
	return true
}

// Blocks returns the top-level nodes, substituting the canonical empty
// paragraph for a zero-value Document.
func (d Document) Blocks() []Node {
	if len(d.Content) == 0 {
		return Empty().Content
	}
	return d.Content
}

func (d Document) String() string {
	return string(Encode(d))
}

func (d Document) MarshalJSON() ([]byte, error) {
	return Encode(d), nil
}

// UnmarshalJSON never fails on a malformed tree; it stores Empty() instead.
func (d *Document) UnmarshalJSON(data []byte) error {
	*d, _ = Decode(data)
	return nil
}
