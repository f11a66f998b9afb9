// Package markup converts between a richtext.Document and the line-oriented
// text syntax used as the editing surface: "#" headings, "-" and "N." lists,
// ">" quotes, fenced code, standalone "![alt](src "title")" images and
// paragraphs.
//
// Parse and Serialize are inverses over the documents Parse itself
// produces. They are not a general Markdown implementation.
package markup

import (
	"regexp"
	"strings"

	"github.com/rdharma/folio/pkg/richtext"
)

const fence = "```"

var (
	headingRe     = regexp.MustCompile(`^(#+)\s+`)
	orderedItemRe = regexp.MustCompile(`^\d+\.\s+`)
	bulletItemRe  = regexp.MustCompile(`^-\s+`)
	quoteRe       = regexp.MustCompile(`^>\s?`)
	imageRe       = regexp.MustCompile(`^!\[([^\]]*)\]\(([^\s)]+)(?:\s+"([^"]*)")?\)$`)
)

type parser struct {
	lines   []string
	pos     int
	literal bool
}

// Parse converts markup into a Document. Processing is a single pass over
// lines. It never fails: blank input yields richtext.Empty(), malformed
// constructs degrade to paragraph text and an unterminated code fence runs
// to the end of the input.
func Parse(src string, opts ...Option) richtext.Document {
	if strings.TrimSpace(src) == "" {
		return richtext.Empty()
	}

	p := &parser{
		lines: strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n"),
	}
	for _, opt := range opts {
		opt(p)
	}

	var nodes []richtext.Node
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		if line == "" {
			p.pos++
			continue
		}
		nodes = append(nodes, p.block(line))
	}

	return richtext.New(nodes...)
}

// block consumes one block starting at the current line.
func (p *parser) block(line string) richtext.Node {
	switch {
	case strings.HasPrefix(line, fence):
		return p.codeBlock(line)
	case headingRe.MatchString(line):
		p.pos++
		return p.heading(line)
	case strings.HasPrefix(line, ">"):
		return p.blockquote()
	case orderedItemRe.MatchString(line):
		return richtext.OrderedList{Items: p.listItems(orderedItemRe)}
	case strings.HasPrefix(line, "- "):
		return richtext.BulletList{Items: p.listItems(bulletItemRe)}
	}
	if img, ok := parseImage(line); ok {
		p.pos++
		return img
	}
	return p.paragraph()
}

func (p *parser) heading(line string) richtext.Node {
	m := headingRe.FindStringSubmatch(line)
	text := strings.TrimSpace(line[len(m[0]):])
	return richtext.Heading{
		Level:   richtext.ClampHeadingLevel(len(m[1])),
		Content: p.inline(text),
	}
}

// codeBlock captures the info string as the language and keeps every
// following line verbatim until a closing fence or the end of input.
func (p *parser) codeBlock(line string) richtext.Node {
	language := strings.TrimSpace(strings.Replace(line, fence, "", 1))
	p.pos++

	var code []string
	for p.pos < len(p.lines) && !strings.HasPrefix(p.lines[p.pos], fence) {
		code = append(code, p.lines[p.pos])
		p.pos++
	}
	if p.pos < len(p.lines) {
		p.pos++
	}

	return richtext.CodeBlock{
		Language: language,
		Code:     strings.Join(code, "\n"),
	}
}

// blockquote turns every consecutive ">" line into its own paragraph.
func (p *parser) blockquote() richtext.Node {
	var paragraphs []richtext.Node
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		if line == "" || !strings.HasPrefix(line, ">") {
			break
		}
		text := strings.TrimSpace(quoteRe.ReplaceAllString(line, ""))
		paragraphs = append(paragraphs, richtext.Paragraph{Content: p.inline(text)})
		p.pos++
	}
	return richtext.Blockquote{Content: paragraphs}
}

// listItems groups consecutive lines matching marker. The marker itself,
// including any number, is discarded.
func (p *parser) listItems(marker *regexp.Regexp) []richtext.ListItem {
	var items []richtext.ListItem
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		loc := marker.FindStringIndex(line)
		if line == "" || loc == nil {
			break
		}
		text := strings.TrimSpace(line[loc[1]:])
		items = append(items, richtext.ListItem{
			Content: []richtext.Node{richtext.Paragraph{Content: p.inline(text)}},
		})
		p.pos++
	}
	return items
}

// paragraph joins lines with a single space until a blank line or the
// start of another block.
func (p *parser) paragraph() richtext.Node {
	parts := []string{strings.TrimSpace(p.lines[p.pos])}
	p.pos++
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		if line == "" || startsBlock(line) {
			break
		}
		parts = append(parts, line)
		p.pos++
	}
	return richtext.Paragraph{Content: p.inline(strings.Join(parts, " "))}
}

func (p *parser) inline(text string) []richtext.Node {
	if text == "" {
		return nil
	}
	if p.literal {
		return []richtext.Node{richtext.Text{Text: text}}
	}
	return parseInline(text)
}

func startsBlock(line string) bool {
	if strings.HasPrefix(line, fence) ||
		strings.HasPrefix(line, ">") ||
		strings.HasPrefix(line, "- ") ||
		headingRe.MatchString(line) ||
		orderedItemRe.MatchString(line) {
		return true
	}
	_, ok := parseImage(line)
	return ok
}

// parseImage accepts a line made of exactly one image reference.
func parseImage(line string) (richtext.Image, bool) {
	if !strings.HasPrefix(line, "![") {
		return richtext.Image{}, false
	}
	m := imageRe.FindStringSubmatch(line)
	if m == nil {
		return richtext.Image{}, false
	}
	return richtext.Image{Src: m[2], Alt: m[1], Title: m[3]}, true
}
