// Package casestudy loads case studies from a directory of markup files
// with an optional frontmatter header.
package casestudy

import (
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rdharma/folio/pkg/richtext"
	"github.com/rdharma/folio/pkg/richtext/markup"
)

const (
	DefaultAuthor    = "Ryan Dharma"
	DefaultBackHref  = "/"
	DefaultBackLabel = "← Back to main site"
	DefaultLabel     = "CASE STUDY"
)

// Meta is the frontmatter of a case study after defaults are applied.
type Meta struct {
	Title       string `yaml:"title" toml:"title" json:"title"`
	Summary     string `yaml:"summary" toml:"summary" json:"summary,omitempty"`
	Description string `yaml:"description" toml:"description" json:"description,omitempty"`
	Author      string `yaml:"author" toml:"author" json:"author"`
	Date        string `yaml:"date" toml:"date" json:"date,omitempty"`
	BackHref    string `yaml:"backHref" toml:"backHref" json:"backHref"`
	BackLabel   string `yaml:"backLabel" toml:"backLabel" json:"backLabel"`
	Label       string `yaml:"label" toml:"label" json:"label"`
	CoverImage  string `yaml:"coverImage" toml:"coverImage" json:"coverImage,omitempty"`
}

var dateLayouts = []string{
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
	"January 2, 2006",
	"Jan 2, 2006",
}

// Time parses Date. An empty or unparsable date is the zero time.
func (m Meta) Time() time.Time {
	date := strings.TrimSpace(m.Date)
	if date == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t
		}
	}
	return time.Time{}
}

type CaseStudy struct {
	// Slug is the file name without its extension. A slug in the
	// frontmatter is ignored.
	Slug string            `json:"slug"`
	Meta Meta              `json:"meta"`
	Doc  richtext.Document `json:"doc"`
}

func (c *CaseStudy) Identifier() string {
	return c.Slug
}

// Defaults fill frontmatter fields that a file leaves empty.
type Defaults struct {
	Author    string
	BackHref  string
	BackLabel string
	Label     string
}

func DefaultDefaults() Defaults {
	return Defaults{
		Author:    DefaultAuthor,
		BackHref:  DefaultBackHref,
		BackLabel: DefaultBackLabel,
		Label:     DefaultLabel,
	}
}

func (d Defaults) apply(slug string, meta *Meta) {
	setDefault(&meta.Title, slug)
	setDefault(&meta.Author, d.Author)
	setDefault(&meta.BackHref, d.BackHref)
	setDefault(&meta.BackLabel, d.BackLabel)
	setDefault(&meta.Label, d.Label)
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

type frontmatterFormat int

const (
	formatNone frontmatterFormat = iota
	formatYAML
	formatTOML
)

// splitFrontmatter separates a leading "---" (YAML) or "+++" (TOML) block
// from the body. Without a closing delimiter the whole source is the body.
func splitFrontmatter(source string) (frontmatterFormat, string, string) {
	var format frontmatterFormat
	var delim string
	switch {
	case strings.HasPrefix(source, "---"):
		format, delim = formatYAML, "---"
	case strings.HasPrefix(source, "+++"):
		format, delim = formatTOML, "+++"
	default:
		return formatNone, "", source
	}

	end := strings.Index(source[len(delim):], "\n"+delim)
	if end == -1 {
		return formatNone, "", source
	}
	end += len(delim)

	raw := strings.TrimSpace(source[len(delim):end])
	body := strings.TrimLeft(source[end+1+len(delim):], " \t\r\n")
	return format, raw, body
}

func decodeMeta(format frontmatterFormat, raw string) (Meta, error) {
	var meta Meta
	if raw == "" {
		return meta, nil
	}

	var err error
	switch format {
	case formatYAML:
		err = yaml.Unmarshal([]byte(raw), &meta)
	case formatTOML:
		err = toml.Unmarshal([]byte(raw), &meta)
	}
	if err != nil {
		return Meta{}, errors.Wrap(err, "failed to decode frontmatter")
	}
	return meta, nil
}

// Parse builds a case study from a file's source. The error reports
// malformed frontmatter; the returned case study is usable either way,
// with the frontmatter ignored.
func Parse(slug, source string, defaults Defaults) (*CaseStudy, error) {
	format, raw, body := splitFrontmatter(source)
	meta, err := decodeMeta(format, raw)
	defaults.apply(slug, &meta)

	return &CaseStudy{
		Slug: slug,
		Meta: meta,
		Doc:  markup.Parse(body),
	}, err
}
