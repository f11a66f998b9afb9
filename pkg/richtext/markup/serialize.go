package markup

import (
	"strconv"
	"strings"

	"github.com/rdharma/folio/pkg/richtext"
)

// Serialize converts a Document into markup. Blocks are separated by a
// blank line and blocks that render to nothing are dropped. Ordered lists
// are renumbered from 1. Nodes of unknown kind serialize to nothing.
func Serialize(doc richtext.Document) string {
	blocks := make([]string, 0, len(doc.Content))
	for _, n := range doc.Blocks() {
		if s := serializeBlock(n); s != "" {
			blocks = append(blocks, s)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func serializeBlock(n richtext.Node) string {
	switch n := n.(type) {
	case richtext.Paragraph:
		return serializeInline(n.Content)
	case richtext.Heading:
		level := richtext.ClampHeadingLevel(n.Level)
		return strings.TrimSpace(strings.Repeat("#", level) + " " + serializeInline(n.Content))
	case richtext.BulletList:
		lines := make([]string, 0, len(n.Items))
		for _, item := range n.Items {
			lines = append(lines, strings.TrimSpace("- "+serializeItem(item)))
		}
		return strings.Join(lines, "\n")
	case richtext.OrderedList:
		lines := make([]string, 0, len(n.Items))
		for i, item := range n.Items {
			lines = append(lines, strings.TrimSpace(strconv.Itoa(i+1)+". "+serializeItem(item)))
		}
		return strings.Join(lines, "\n")
	case richtext.ListItem:
		return serializeItem(n)
	case richtext.Blockquote:
		var lines []string
		for _, child := range n.Content {
			for _, line := range strings.Split(serializeBlock(child), "\n") {
				lines = append(lines, strings.TrimSpace("> "+line))
			}
		}
		return strings.Join(lines, "\n")
	case richtext.CodeBlock:
		return fence + n.Language + "\n" + n.Code + "\n" + fence
	case richtext.Image:
		if n.Src == "" {
			return ""
		}
		title := ""
		if n.Title != "" {
			title = ` "` + n.Title + `"`
		}
		return "![" + n.Alt + "](" + n.Src + title + ")"
	case richtext.Text, richtext.HardBreak:
		return serializeInline([]richtext.Node{n})
	default:
		return ""
	}
}

// serializeItem flattens the blocks of a list item onto one line.
func serializeItem(item richtext.ListItem) string {
	parts := make([]string, 0, len(item.Content))
	for _, child := range item.Content {
		if s := serializeBlock(child); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func serializeInline(nodes []richtext.Node) string {
	var b strings.Builder
	for _, span := range richtext.Spans(nodes) {
		if span.Mark == nil {
			b.WriteString(serializeLeaf(span.Children[0]))
			continue
		}
		b.WriteString(wrap(span.Mark, serializeInline(span.Children)))
	}
	return b.String()
}

func serializeLeaf(n richtext.Node) string {
	switch n := n.(type) {
	case richtext.Text:
		return n.Text
	case richtext.HardBreak:
		return "\n"
	case richtext.Unknown:
		return ""
	default:
		return serializeBlock(n)
	}
}

func wrap(mark richtext.Mark, s string) string {
	switch m := mark.(type) {
	case richtext.Bold:
		return "**" + s + "**"
	case richtext.Italic:
		return "*" + s + "*"
	case richtext.Underline:
		return underlineOpen + s + underlineClose
	case richtext.Code:
		return codeSpan(s)
	case richtext.Link:
		return "[" + s + "](" + linkDestination(richtext.NormalizeHref(m.Href)) + ")"
	default:
		return s
	}
}

// codeSpan fences s with one more backtick than its longest backtick run.
// Padding keeps a leading or trailing backtick, or a pair of surrounding
// spaces, from being consumed by the fence.
func codeSpan(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)

	pad := strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") ||
		(len(s) > 1 && s[0] == ' ' && s[len(s)-1] == ' ' && strings.Trim(s, " ") != "")
	if pad {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}

// linkDestination wraps href in angle brackets when it could not be read
// back as a bare destination.
func linkDestination(href string) string {
	if strings.ContainsAny(href, "<>\n") {
		return href
	}
	if strings.ContainsAny(href, " \t") || !balancedParens(href) {
		return "<" + href + ">"
	}
	return href
}

func balancedParens(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
