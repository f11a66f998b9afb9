// Package post manages blog posts: the record stored in the database, the
// store abstraction with its SQL implementation, and the service used by
// the admin pages and the CLI.
package post

import (
	"strings"
	"time"

	"github.com/rdharma/folio/internal/config"
	"github.com/rdharma/folio/pkg/richtext"
	"github.com/rdharma/folio/pkg/richtext/markup"
)

// Post is a blog post. Content holds the stored JSON form of a
// richtext.Document.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Subtitle   *string   `json:"subtitle"`
	Author     string    `json:"author"`
	CoverImage *string   `json:"coverImage"`
	Content    string    `json:"content"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Document decodes the content. Malformed content yields richtext.Empty().
func (p *Post) Document() richtext.Document {
	return richtext.Parse(p.Content)
}

// Markup returns the content in its editable text form.
func (p *Post) Markup() string {
	return markup.Serialize(p.Document())
}

// Status is "published" or "draft".
func (p *Post) Status() string {
	if p.Published {
		return "published"
	}
	return "draft"
}

// FilterEnv converts the post into the environment of post filters.
func (p *Post) FilterEnv() config.FilterPostEnv {
	return config.FilterPostEnv{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Author:    p.Author,
		Published: p.Published,
		HasCover:  p.CoverImage != nil && *p.CoverImage != "",
		Words:     len(strings.Fields(richtext.PlainText(p.Document()))),
		CreatedAt: p.CreatedAt,
	}
}

// CanonicalContent converts editor input, either stored document JSON or
// markup text, into stored document JSON.
func CanonicalContent(content string) string {
	if richtext.IsDocument([]byte(content)) {
		return string(richtext.Encode(richtext.Parse(content)))
	}
	return string(richtext.Encode(markup.Parse(content)))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
