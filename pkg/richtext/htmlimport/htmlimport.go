// Package htmlimport turns pasted HTML into a richtext.Document. The HTML is
// first converted to Markdown, which is then read by the markup parser, so
// anything the markup grammar does not know degrades to paragraph text.
package htmlimport

import (
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/pkg/errors"

	"github.com/rdharma/folio/pkg/richtext"
	"github.com/rdharma/folio/pkg/richtext/markup"
)

// Convert parses an HTML fragment into a Document. On error the returned
// Document is richtext.Empty().
func Convert(src string) (richtext.Document, error) {
	md, err := htmltomarkdown.ConvertString(src)
	if err != nil {
		return richtext.Empty(), errors.Wrap(err, "failed to convert HTML")
	}
	return markup.Parse(md), nil
}

// Markup converts an HTML fragment into canonical markup.
func Markup(src string) (string, error) {
	doc, err := Convert(src)
	if err != nil {
		return "", err
	}
	return markup.Serialize(doc), nil
}
