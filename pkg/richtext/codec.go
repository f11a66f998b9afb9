package richtext

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ErrMalformed is returned by Decode when the input is not a stored document.
var ErrMalformed = errors.New("malformed document")

// EmptyJSON is the stored form of Empty().
const EmptyJSON = `{"type":"doc","content":[{"type":"paragraph","content":[]}]}`

// Parse reads a stored document. It cannot fail: absent, invalid or
// non-document input yields Empty().
func Parse(content string) Document {
	doc, _ := Decode([]byte(content))
	return doc
}

// IsDocument reports whether data looks like a stored document, i.e. valid
// JSON with a top-level "type" equal to "doc".
func IsDocument(data []byte) bool {
	return gjson.ValidBytes(data) && gjson.GetBytes(data, "type").String() == string(KindDoc)
}

// Decode reads a stored document. The returned Document is always usable;
// on malformed input it is Empty() and the error wraps ErrMalformed.
// Empty input is not an error.
func Decode(data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Empty(), nil
	}
	if !gjson.ValidBytes(data) {
		return Empty(), errors.Wrap(ErrMalformed, "invalid JSON")
	}
	if typ := gjson.GetBytes(data, "type").String(); typ != string(KindDoc) {
		return Empty(), errors.Wrapf(ErrMalformed, "unexpected top-level type %q", typ)
	}

	var raw struct {
		Content []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Empty(), errors.Wrap(ErrMalformed, err.Error())
	}

	return New(decodeNodes(raw.Content)...), nil
}

type rawNode struct {
	Type    string            `json:"type"`
	Attrs   map[string]any    `json:"attrs"`
	Text    string            `json:"text"`
	Marks   []json.RawMessage `json:"marks"`
	Content []json.RawMessage `json:"content"`
}

type rawMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs"`
}

// decodeNodes drops children which are not JSON objects with a type.
func decodeNodes(items []json.RawMessage) []Node {
	result := make([]Node, 0, len(items))
	for _, item := range items {
		if n, ok := decodeNode(item); ok {
			result = append(result, n)
		}
	}
	return result
}

func decodeNode(data json.RawMessage) (Node, bool) {
	var r rawNode
	if err := json.Unmarshal(data, &r); err != nil || r.Type == "" {
		return nil, false
	}

	switch Kind(r.Type) {
	case KindParagraph:
		return Paragraph{Content: decodeNodes(r.Content)}, true
	case KindHeading:
		return Heading{
			Level:   ClampHeadingLevel(attrInt(r.Attrs, "level")),
			Content: decodeNodes(r.Content),
		}, true
	case KindBulletList:
		return BulletList{Items: decodeItems(r.Content)}, true
	case KindOrderedList:
		return OrderedList{Items: decodeItems(r.Content)}, true
	case KindListItem:
		return ListItem{Content: decodeNodes(r.Content)}, true
	case KindBlockquote:
		return Blockquote{Content: decodeNodes(r.Content)}, true
	case KindCodeBlock:
		return CodeBlock{
			Language: attrString(r.Attrs, "language"),
			Code:     rawText(decodeNodes(r.Content)),
		}, true
	case KindImage:
		return Image{
			Src:   attrString(r.Attrs, "src"),
			Alt:   attrString(r.Attrs, "alt"),
			Title: attrString(r.Attrs, "title"),
		}, true
	case KindText:
		return Text{Text: r.Text, Marks: decodeMarks(r.Marks)}, true
	case KindHardBreak:
		return HardBreak{}, true
	default:
		return Unknown{Type: r.Type, Raw: append(json.RawMessage(nil), data...)}, true
	}
}

// decodeItems keeps lists well-formed: any child that is not a list item is
// wrapped in one.
func decodeItems(items []json.RawMessage) []ListItem {
	nodes := decodeNodes(items)
	result := make([]ListItem, 0, len(nodes))
	for _, n := range nodes {
		if item, ok := n.(ListItem); ok {
			result = append(result, item)
		} else {
			result = append(result, ListItem{Content: []Node{n}})
		}
	}
	return result
}

func decodeMarks(items []json.RawMessage) []Mark {
	if len(items) == 0 {
		return nil
	}
	result := make([]Mark, 0, len(items))
	for _, item := range items {
		var r rawMark
		if err := json.Unmarshal(item, &r); err != nil || r.Type == "" {
			continue
		}
		switch r.Type {
		case MarkBold, "strong":
			result = append(result, Bold{})
		case MarkItalic, "em":
			result = append(result, Italic{})
		case MarkUnderline:
			result = append(result, Underline{})
		case MarkCode:
			result = append(result, Code{})
		case MarkLink:
			result = append(result, NewLink(attrString(r.Attrs, "href")))
		default:
			result = append(result, UnknownMark{Type: r.Type, Attrs: r.Attrs})
		}
	}
	return result
}

// rawText concatenates text leaves, ignoring marks.
func rawText(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case Text:
			b.WriteString(n.Text)
		case HardBreak:
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func attrString(attrs map[string]any, key string) string {
	if v, ok := attrs[key].(string); ok {
		return v
	}
	return ""
}

func attrInt(attrs map[string]any, key string) int {
	switch v := attrs[key].(type) {
	case float64:
		return int(v)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(v))
		return i
	default:
		return 0
	}
}

type wireNode struct {
	Type    Kind           `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []wireMark     `json:"marks,omitempty"`
	Content *[]any         `json:"content,omitempty"`
}

type wireMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

type wireDoc struct {
	Type    Kind  `json:"type"`
	Content []any `json:"content"`
}

// Encode returns the stored JSON form of doc.
func Encode(doc Document) []byte {
	w := wireDoc{Type: KindDoc, Content: encodeNodes(New(doc.Content...).Content)}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return []byte(EmptyJSON)
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}

func encodeNodes(nodes []Node) []any {
	result := make([]any, 0, len(nodes))
	for _, n := range nodes {
		if v := encodeNode(n); v != nil {
			result = append(result, v)
		}
	}
	return result
}

func container(kind Kind, attrs map[string]any, children []Node) wireNode {
	content := encodeNodes(children)
	return wireNode{Type: kind, Attrs: attrs, Content: &content}
}

func encodeNode(n Node) any {
	switch n := n.(type) {
	case Paragraph:
		return container(KindParagraph, nil, n.Content)
	case Heading:
		return container(KindHeading, map[string]any{"level": ClampHeadingLevel(n.Level)}, n.Content)
	case BulletList:
		return container(KindBulletList, nil, itemNodes(n.Items))
	case OrderedList:
		return container(KindOrderedList, nil, itemNodes(n.Items))
	case ListItem:
		return container(KindListItem, nil, n.Content)
	case Blockquote:
		return container(KindBlockquote, nil, n.Content)
	case CodeBlock:
		var attrs map[string]any
		if n.Language != "" {
			attrs = map[string]any{"language": n.Language}
		}
		var children []Node
		if n.Code != "" {
			children = []Node{Text{Text: n.Code}}
		}
		return container(KindCodeBlock, attrs, children)
	case Image:
		attrs := map[string]any{"src": n.Src, "alt": n.Alt}
		if n.Title != "" {
			attrs["title"] = n.Title
		}
		return wireNode{Type: KindImage, Attrs: attrs}
	case Text:
		return wireNode{Type: KindText, Text: n.Text, Marks: encodeMarks(n.Marks)}
	case HardBreak:
		return wireNode{Type: KindHardBreak}
	case Unknown:
		if json.Valid(n.Raw) {
			return n.Raw
		}
		return wireNode{Type: Kind(n.Type)}
	default:
		return nil
	}
}

func itemNodes(items []ListItem) []Node {
	nodes := make([]Node, 0, len(items))
	for _, item := range items {
		nodes = append(nodes, item)
	}
	return nodes
}

func encodeMarks(marks []Mark) []wireMark {
	if len(marks) == 0 {
		return nil
	}
	result := make([]wireMark, 0, len(marks))
	for _, m := range marks {
		switch m := m.(type) {
		case Link:
			result = append(result, wireMark{Type: MarkLink, Attrs: map[string]any{"href": NormalizeHref(m.Href)}})
		case UnknownMark:
			result = append(result, wireMark{Type: m.Type, Attrs: m.Attrs})
		case nil:
		default:
			result = append(result, wireMark{Type: m.MarkType()})
		}
	}
	return result
}
