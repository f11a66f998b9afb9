package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdharma/folio/pkg/richtext"
)

func TestReadInput(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("from stdin"))

	data, err := readInput(cmd, "-")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", string(data))

	fileName := filepath.Join(t.TempDir(), "post.md")
	require.NoError(t, os.WriteFile(fileName, []byte("from file"), 0o600))
	data, err = readInput(cmd, fileName)
	require.NoError(t, err)
	assert.Equal(t, "from file", string(data))

	_, err = readInput(cmd, filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestDecodeInput(t *testing.T) {
	t.Run("Markup", func(t *testing.T) {
		doc, err := decodeInput([]byte("# Hi"), formatMarkup, false)
		require.NoError(t, err)
		out, err := encodeOutput(doc, formatMarkup)
		require.NoError(t, err)
		assert.Equal(t, "# Hi\n", string(out))
	})

	t.Run("HTML", func(t *testing.T) {
		doc, err := decodeInput([]byte("<h2>Hi</h2><p><strong>x</strong></p>"), formatHTML, false)
		require.NoError(t, err)
		out, err := encodeOutput(doc, formatMarkup)
		require.NoError(t, err)
		assert.Equal(t, "## Hi\n\n**x**\n", string(out))
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		doc, err := decodeInput([]byte("{not json"), formatJSON, false)
		require.NoError(t, err)
		out, err := encodeOutput(doc, formatHTML)
		require.NoError(t, err)
		assert.Equal(t, "<p></p>\n", string(out))

		_, err = decodeInput([]byte("{not json"), formatJSON, true)
		assert.ErrorContains(t, err, "invalid document")
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := decodeInput(nil, "rtf", false)
		assert.ErrorContains(t, err, "unknown input format: rtf")

		_, err = encodeOutput(richtext.Empty(), "rtf")
		assert.ErrorContains(t, err, "unknown output format: rtf")
	})
}

func TestEncodeOutput_JSONRoundTrip(t *testing.T) {
	doc, err := decodeInput([]byte("- a\n- **b**"), formatMarkup, false)
	require.NoError(t, err)

	data, err := encodeOutput(doc, formatJSON)
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix(data, []byte("}\n")))

	back, err := decodeInput(data, formatJSON, true)
	require.NoError(t, err)
	out, err := encodeOutput(back, formatMarkup)
	require.NoError(t, err)
	assert.Equal(t, "- a\n- **b**\n", string(out))
}

func TestCanonicalMarkup(t *testing.T) {
	assert.Equal(t, "", canonicalMarkup("  \n"))
	assert.Equal(t, "1. a\n2. b\n", canonicalMarkup("3. a\n4. b"))
	assert.Equal(t, "# Title\n\ntext\n", canonicalMarkup("# Title\n\ntext\n"))
}

func TestWriteDiff(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	var buf bytes.Buffer
	require.NoError(t, writeDiff(&buf, "same\n", "same\n"))
	assert.Empty(t, buf.String())

	require.NoError(t, writeDiff(&buf, "# Title\n##### deep\n", "# Title\n\n#### deep\n"))
	assert.Equal(t, " # Title\n-##### deep\n+\n+#### deep\n", buf.String())

	buf.Reset()
	require.NoError(t, writeDiff(&buf, "intro\n\n3. one\n7. two\n", "intro\n\n1. one\n2. two\n"))
	assert.Equal(t, " intro\n \n-3. one\n-7. two\n+1. one\n+2. two\n", buf.String())

	buf.Reset()
	require.NoError(t, writeDiff(&buf, "a\nb\n", "a\n\nb\n"))
	assert.Equal(t, " a\n+\n b\n", buf.String())
}
