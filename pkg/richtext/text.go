package richtext

import (
	"strings"
	"unicode/utf8"
)

// PlainText returns the text of doc without formatting. Blocks are
// separated by a blank line, list items and quote lines by a newline.
func PlainText(doc Document) string {
	blocks := make([]string, 0, len(doc.Content))
	for _, n := range doc.Content {
		if s := strings.TrimSpace(plainText(n)); s != "" {
			blocks = append(blocks, s)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func plainText(n Node) string {
	switch n := n.(type) {
	case Text:
		return n.Text
	case HardBreak:
		return "\n"
	case Paragraph:
		return plainInline(n.Content)
	case Heading:
		return plainInline(n.Content)
	case ListItem:
		return plainInline(n.Content)
	case BulletList:
		return plainItems(n.Items)
	case OrderedList:
		return plainItems(n.Items)
	case Blockquote:
		lines := make([]string, 0, len(n.Content))
		for _, child := range n.Content {
			lines = append(lines, plainText(child))
		}
		return strings.Join(lines, "\n")
	case CodeBlock:
		return n.Code
	case Image:
		if n.Title != "" {
			return n.Title
		}
		return n.Alt
	default:
		return ""
	}
}

func plainInline(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(plainText(n))
	}
	return b.String()
}

func plainItems(items []ListItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, plainText(item))
	}
	return strings.Join(lines, "\n")
}

// Excerpt returns at most limit runes of the document's plain text,
// cut at a word boundary and suffixed with an ellipsis when shortened.
func Excerpt(doc Document, limit int) string {
	text := strings.Join(strings.Fields(PlainText(doc)), " ")
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)[:limit]
	cut := string(runes)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
