// Package present renders a richtext.Document into an HTML node tree for
// display. Rendering is a pure function of the document and never fails:
// unknown nodes and images without a source render as nothing.
package present

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/rdharma/folio/pkg/richtext"
)

// Classes applied to rendered elements.
const (
	ClassBlockquote = "border-l-4 border-slate-200 pl-4 italic text-slate-600"
	ClassPre        = "mt-4 overflow-x-auto rounded-2xl bg-slate-900 p-4 text-sm text-white"
	ClassFigure     = "my-8 space-y-4"
	ClassImage      = "w-full rounded-2xl border border-slate-200 object-cover shadow-lg"
	ClassCaption    = "text-sm text-slate-500"
	ClassUnderline  = "underline"
	ClassCode       = "rounded bg-slate-100 px-1 py-0.5 text-sm text-slate-700"
	ClassLink       = "text-brand-blue underline underline-offset-4"
)

var headings = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4}

// Render returns one HTML node per rendered top-level block.
func Render(doc richtext.Document) []*html.Node {
	return renderBlocks(doc.Blocks())
}

// RenderHTML writes the rendered document to w.
func RenderHTML(w io.Writer, doc richtext.Document) error {
	for _, n := range Render(doc) {
		if err := html.Render(w, n); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// HTML returns the rendered document as a string.
func HTML(doc richtext.Document) string {
	var buf bytes.Buffer
	// Rendering into memory only fails on nodes Render never produces.
	_ = RenderHTML(&buf, doc)
	return buf.String()
}

func renderBlocks(nodes []richtext.Node) []*html.Node {
	result := make([]*html.Node, 0, len(nodes))
	for _, n := range nodes {
		if el := renderBlock(n); el != nil {
			result = append(result, el)
		}
	}
	return result
}

func renderBlock(n richtext.Node) *html.Node {
	switch n := n.(type) {
	case richtext.Paragraph:
		return element(atom.P, renderInline(n.Content)...)
	case richtext.Heading:
		level := richtext.ClampHeadingLevel(n.Level)
		return element(headings[level-1], renderInline(n.Content)...)
	case richtext.BulletList:
		return element(atom.Ul, renderItems(n.Items)...)
	case richtext.OrderedList:
		return element(atom.Ol, renderItems(n.Items)...)
	case richtext.ListItem:
		return renderItem(n)
	case richtext.Blockquote:
		el := element(atom.Blockquote, renderBlocks(n.Content)...)
		setAttr(el, "class", ClassBlockquote)
		return el
	case richtext.CodeBlock:
		code := element(atom.Code, textNode(n.Code))
		if n.Language != "" {
			setAttr(code, "class", "language-"+n.Language)
			setAttr(code, "data-language", n.Language)
		}
		pre := element(atom.Pre, code)
		setAttr(pre, "class", ClassPre)
		return pre
	case richtext.Image:
		return renderImage(n)
	default:
		return nil
	}
}

func renderItems(items []richtext.ListItem) []*html.Node {
	result := make([]*html.Node, 0, len(items))
	for _, item := range items {
		result = append(result, renderItem(item))
	}
	return result
}

// renderItem keeps block children as blocks and inline children inline.
func renderItem(item richtext.ListItem) *html.Node {
	li := element(atom.Li)
	var inline []richtext.Node
	flush := func() {
		appendChildren(li, renderInline(inline)...)
		inline = nil
	}
	for _, child := range item.Content {
		switch child.(type) {
		case richtext.Text, richtext.HardBreak:
			inline = append(inline, child)
		default:
			flush()
			if el := renderBlock(child); el != nil {
				li.AppendChild(el)
			}
		}
	}
	flush()
	return li
}

func renderImage(img richtext.Image) *html.Node {
	if img.Src == "" {
		return nil
	}
	el := element(atom.Img)
	setAttr(el, "src", img.Src)
	setAttr(el, "alt", img.Alt)
	setAttr(el, "class", ClassImage)

	figure := element(atom.Figure, el)
	setAttr(figure, "class", ClassFigure)
	if img.Title != "" {
		caption := element(atom.Figcaption, textNode(img.Title))
		setAttr(caption, "class", ClassCaption)
		figure.AppendChild(caption)
	}
	return figure
}

// renderInline nests mark wrappers the same way the markup serializer does,
// so the rendered and textual forms agree.
func renderInline(nodes []richtext.Node) []*html.Node {
	var result []*html.Node
	for _, span := range richtext.Spans(nodes) {
		if span.Mark == nil {
			if el := renderLeaf(span.Children[0]); el != nil {
				result = append(result, el)
			}
			continue
		}
		children := renderInline(span.Children)
		if wrapper := markElement(span.Mark); wrapper != nil {
			appendChildren(wrapper, children...)
			result = append(result, wrapper)
		} else {
			result = append(result, children...)
		}
	}
	return result
}

func renderLeaf(n richtext.Node) *html.Node {
	switch n := n.(type) {
	case richtext.Text:
		return textNode(n.Text)
	case richtext.HardBreak:
		return element(atom.Br)
	default:
		return renderBlock(n)
	}
}

// markElement returns the wrapper for mark, or nil for marks rendered
// without one.
func markElement(mark richtext.Mark) *html.Node {
	switch m := mark.(type) {
	case richtext.Bold:
		return element(atom.Strong)
	case richtext.Italic:
		return element(atom.Em)
	case richtext.Underline:
		el := element(atom.Span)
		setAttr(el, "class", ClassUnderline)
		return el
	case richtext.Code:
		el := element(atom.Code)
		setAttr(el, "class", ClassCode)
		return el
	case richtext.Link:
		el := element(atom.A)
		setAttr(el, "href", richtext.NormalizeHref(m.Href))
		setAttr(el, "class", ClassLink)
		if isExternal(m.Href) {
			setAttr(el, "rel", "noopener noreferrer")
		}
		return el
	default:
		return nil
	}
}

func isExternal(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

func element(a atom.Atom, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	appendChildren(n, children...)
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func appendChildren(parent *html.Node, children ...*html.Node) {
	for _, c := range children {
		parent.AppendChild(c)
	}
}

func setAttr(n *html.Node, key, val string) {
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
