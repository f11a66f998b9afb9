package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rdharma/folio/pkg/richtext"
	"github.com/rdharma/folio/pkg/richtext/htmlimport"
	"github.com/rdharma/folio/pkg/richtext/markup"
	"github.com/rdharma/folio/pkg/richtext/present"
)

const (
	formatMarkup = "markup"
	formatJSON   = "json"
	formatHTML   = "html"
)

// readInput reads a file, stdin when fileName is "-", or a remote file
// when it is an https URL.
func readInput(cmd *cobra.Command, fileName string) ([]byte, error) {
	switch {
	case fileName == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return data, errors.Wrap(err, "failed to read from stdin")
	case strings.HasPrefix(fileName, "https://"):
		client := http.Client{
			Timeout: time.Second * 10,
		}
		resp, err := client.Get(fileName)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get a file %q", fileName)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return nil, errors.Errorf("failed to get a file %q: %s", fileName, resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		return data, errors.Wrap(err, "failed to read body")
	default:
		data, err := os.ReadFile(fileName)
		return data, errors.Wrapf(err, "failed to read from file %q", fileName)
	}
}

// decodeInput builds a document from data in the given format. In strict
// mode, malformed JSON is an error instead of an empty document.
func decodeInput(data []byte, from string, strict bool) (richtext.Document, error) {
	switch from {
	case "", formatMarkup:
		return markup.Parse(string(data)), nil
	case formatJSON:
		if !strict {
			return richtext.Parse(string(data)), nil
		}
		doc, err := richtext.Decode(data)
		return doc, errors.Wrap(err, "invalid document")
	case formatHTML:
		return htmlimport.Convert(string(data))
	default:
		return richtext.Document{}, errors.Errorf("unknown input format: %s", from)
	}
}

func encodeOutput(doc richtext.Document, to string) ([]byte, error) {
	switch to {
	case formatMarkup:
		return []byte(markup.Serialize(doc) + "\n"), nil
	case formatJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, richtext.Encode(doc), "", "  "); err != nil {
			return nil, errors.WithStack(err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case formatHTML:
		var buf bytes.Buffer
		if err := present.RenderHTML(&buf, doc); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	default:
		return nil, errors.Errorf("unknown output format: %s", to)
	}
}
