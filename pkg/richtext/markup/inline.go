package markup

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	gparser "github.com/yuin/goldmark/parser"
	gtext "github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/rdharma/folio/pkg/richtext"
)

const (
	underlineOpen  = "<u>"
	underlineClose = "</u>"
)

// inlineParser only knows paragraphs, so block syntax inside inline text
// ("# x" as a list item's text) stays text.
var inlineParser = gparser.NewParser(
	gparser.WithBlockParsers(util.Prioritized(gparser.NewParagraphParser(), 1000)),
	gparser.WithInlineParsers(gparser.DefaultInlineParsers()...),
)

// parseInline converts a single line of inline markup into text nodes.
// Marks are ordered innermost first.
func parseInline(s string) []richtext.Node {
	source := []byte(s)
	root := inlineParser.Parse(gtext.NewReader(source))

	var nodes []richtext.Node
	for block := root.FirstChild(); block != nil; block = block.NextSibling() {
		nodes = append(nodes, convertInline(block, source, nil)...)
	}
	if len(nodes) == 0 {
		return []richtext.Node{richtext.Text{Text: s}}
	}
	return mergeText(nodes)
}

func convertInline(parent ast.Node, source []byte, outer []richtext.Mark) []richtext.Node {
	var children []ast.Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		children = append(children, c)
	}
	paired := pairUnderlines(children, source)

	var (
		nodes []richtext.Node
		depth int
	)
	for _, child := range children {
		marks := outer
		if depth > 0 {
			marks = withMark(richtext.Underline{}, outer)
		}

		switch n := child.(type) {
		case *ast.Text:
			if value := string(n.Segment.Value(source)); value != "" {
				nodes = append(nodes, newText(value, marks))
			}
			if n.HardLineBreak() {
				nodes = append(nodes, richtext.HardBreak{})
			} else if n.SoftLineBreak() {
				nodes = append(nodes, newText(" ", marks))
			}
		case *ast.String:
			nodes = append(nodes, newText(string(n.Value), marks))
		case *ast.Emphasis:
			var mark richtext.Mark = richtext.Italic{}
			if n.Level >= 2 {
				mark = richtext.Bold{}
			}
			nodes = append(nodes, convertInline(n, source, withMark(mark, marks))...)
		case *ast.CodeSpan:
			nodes = append(nodes, newText(inlineText(n, source), withMark(richtext.Code{}, marks)))
		case *ast.Link:
			link := richtext.NewLink(string(n.Destination))
			nodes = append(nodes, convertInline(n, source, withMark(link, marks))...)
		case *ast.AutoLink:
			href := string(n.URL(source))
			if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(href, "mailto:") {
				href = "mailto:" + href
			}
			nodes = append(nodes, newText(string(n.Label(source)), withMark(richtext.NewLink(href), marks)))
		case *ast.RawHTML:
			raw := rawHTML(n, source)
			if paired[n] {
				if raw == underlineOpen {
					depth++
				} else {
					depth--
				}
				continue
			}
			nodes = append(nodes, newText(raw, marks))
		case *ast.Image:
			// Images are blocks here; inline ones stay literal.
			literal := "![" + inlineText(n, source) + "](" + string(n.Destination) + ")"
			nodes = append(nodes, newText(literal, marks))
		default:
			nodes = append(nodes, convertInline(child, source, marks)...)
		}
	}
	return nodes
}

// pairUnderlines finds "<u>"/"</u>" raw HTML siblings that balance each
// other. Unbalanced tags are kept as literal text.
func pairUnderlines(children []ast.Node, source []byte) map[ast.Node]bool {
	paired := make(map[ast.Node]bool)
	var open []ast.Node
	for _, c := range children {
		raw, ok := c.(*ast.RawHTML)
		if !ok {
			continue
		}
		switch rawHTML(raw, source) {
		case underlineOpen:
			open = append(open, c)
		case underlineClose:
			if len(open) == 0 {
				continue
			}
			paired[open[len(open)-1]] = true
			paired[c] = true
			open = open[:len(open)-1]
		}
	}
	return paired
}

func rawHTML(n *ast.RawHTML, source []byte) string {
	var b strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		segment := n.Segments.At(i)
		b.Write(segment.Value(source))
	}
	return b.String()
}

func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(source))
		case *ast.String:
			b.Write(c.Value)
		default:
			b.WriteString(inlineText(c, source))
		}
	}
	return b.String()
}

// withMark returns a new slice with mark placed inside the outer marks.
func withMark(mark richtext.Mark, outer []richtext.Mark) []richtext.Mark {
	marks := make([]richtext.Mark, 0, len(outer)+1)
	marks = append(marks, mark)
	return append(marks, outer...)
}

func newText(value string, marks []richtext.Mark) richtext.Text {
	if len(marks) == 0 {
		return richtext.Text{Text: value}
	}
	return richtext.Text{Text: value, Marks: append([]richtext.Mark(nil), marks...)}
}

// mergeText joins adjacent text nodes carrying the same marks. goldmark
// splits text at every potential delimiter.
func mergeText(nodes []richtext.Node) []richtext.Node {
	if len(nodes) <= 1 {
		return nodes
	}
	merged := []richtext.Node{nodes[0]}
	for _, n := range nodes[1:] {
		cur, ok := n.(richtext.Text)
		prev, prevOK := merged[len(merged)-1].(richtext.Text)
		if ok && prevOK && richtext.SameMarks(prev.Marks, cur.Marks) {
			prev.Text += cur.Text
			merged[len(merged)-1] = prev
			continue
		}
		merged = append(merged, n)
	}
	return merged
}
