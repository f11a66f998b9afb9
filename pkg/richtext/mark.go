package richtext

import "net/url"

const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkUnderline = "underline"
	MarkCode      = "code"
	MarkLink      = "link"
)

// DefaultHref replaces a missing or malformed link target.
const DefaultHref = "#"

// Mark is inline formatting attached to a Text node. Marks are applied in
// slice order, the first one being the innermost wrapper.
type Mark interface {
	MarkType() string
	isMark()
}

type Bold struct{}

type Italic struct{}

type Underline struct{}

type Code struct{}

type Link struct {
	Href string
}

// UnknownMark keeps a mark type outside the vocabulary. Consumers ignore it.
type UnknownMark struct {
	Type  string
	Attrs map[string]any
}

func (Bold) MarkType() string          { return MarkBold }
func (Italic) MarkType() string        { return MarkItalic }
func (Underline) MarkType() string     { return MarkUnderline }
func (Code) MarkType() string          { return MarkCode }
func (Link) MarkType() string          { return MarkLink }
func (m UnknownMark) MarkType() string { return m.Type }

func (Bold) isMark()        {}
func (Italic) isMark()      {}
func (Underline) isMark()   {}
func (Code) isMark()        {}
func (Link) isMark()        {}
func (UnknownMark) isMark() {}

// NewLink returns a link mark with a normalized target.
func NewLink(href string) Link {
	return Link{Href: NormalizeHref(href)}
}

// NormalizeHref returns DefaultHref for empty, unparsable or script targets.
func NormalizeHref(href string) string {
	if href == "" {
		return DefaultHref
	}
	u, err := url.Parse(href)
	if err != nil {
		return DefaultHref
	}
	if u.Scheme == "javascript" || u.Scheme == "vbscript" || u.Scheme == "data" {
		return DefaultHref
	}
	return href
}

// SameMark reports whether a and b are the same formatting. Links are equal
// only when they point to the same target.
func SameMark(a, b Mark) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.MarkType() != b.MarkType() {
		return false
	}
	if la, ok := a.(Link); ok {
		lb, ok := b.(Link)
		return ok && la.Href == lb.Href
	}
	return true
}

// SameMarks compares two mark sequences element-wise.
func SameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SameMark(a[i], b[i]) {
			return false
		}
	}
	return true
}
