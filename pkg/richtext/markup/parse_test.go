package markup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdharma/folio/pkg/richtext"
)

func text(s string, marks ...richtext.Mark) richtext.Text {
	return richtext.NewText(s, marks...)
}

func paragraph(content ...richtext.Node) richtext.Paragraph {
	return richtext.NewParagraph(content...)
}

func assertDocument(t *testing.T, expected []richtext.Node, actual richtext.Document) {
	t.Helper()
	if diff := cmp.Diff(richtext.Document{Content: expected}, actual, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("unexpected document (-want +got):\n%s", diff)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, input := range []string{"", " ", "\n\n\t\n", "\r\n"} {
		assert.Equal(t, richtext.Empty(), Parse(input))
	}
}

func TestParse_Blocks(t *testing.T) {
	input := "# Title\n\nHello world\n\n- a\n- b\n\n1. x\n2. y\n\n> quote\n\n```js\nconsole.log(1)\n```"

	assertDocument(t, []richtext.Node{
		richtext.Heading{Level: 1, Content: []richtext.Node{text("Title")}},
		paragraph(text("Hello world")),
		richtext.BulletList{Items: []richtext.ListItem{
			richtext.NewListItem(text("a")),
			richtext.NewListItem(text("b")),
		}},
		richtext.OrderedList{Items: []richtext.ListItem{
			richtext.NewListItem(text("x")),
			richtext.NewListItem(text("y")),
		}},
		richtext.Blockquote{Content: []richtext.Node{paragraph(text("quote"))}},
		richtext.CodeBlock{Language: "js", Code: "console.log(1)"},
	}, Parse(input))
}

func TestParse_Heading(t *testing.T) {
	testCases := []struct {
		input string
		level int
		text  string
	}{
		{input: "# one", level: 1, text: "one"},
		{input: "## two", level: 2, text: "two"},
		{input: "#### four", level: 4, text: "four"},
		{input: "##### too deep", level: 4, text: "too deep"},
		{input: "###\tTabbed  ", level: 3, text: "Tabbed"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assertDocument(t, []richtext.Node{
				richtext.Heading{Level: tc.level, Content: []richtext.Node{text(tc.text)}},
			}, Parse(tc.input))
		})
	}

	t.Run("NoSpace", func(t *testing.T) {
		assertDocument(t, []richtext.Node{paragraph(text("#hashtag"))}, Parse("#hashtag"))
	})
}

func TestParse_Paragraph(t *testing.T) {
	t.Run("JoinsLines", func(t *testing.T) {
		assertDocument(t, []richtext.Node{
			paragraph(text("first line second line")),
			paragraph(text("next")),
		}, Parse("first line\n  second line  \n\nnext"))
	})

	t.Run("StopsAtBlock", func(t *testing.T) {
		assertDocument(t, []richtext.Node{
			paragraph(text("intro")),
			richtext.BulletList{Items: []richtext.ListItem{richtext.NewListItem(text("item"))}},
		}, Parse("intro\n- item"))
	})

	t.Run("DashWithoutSpace", func(t *testing.T) {
		assertDocument(t, []richtext.Node{paragraph(text("-not a list"))}, Parse("-not a list"))
	})
}

func TestParse_List(t *testing.T) {
	t.Run("OrderedNumbersDiscarded", func(t *testing.T) {
		doc := Parse("3. c\n7. d")
		require.Len(t, doc.Content, 1)
		list, ok := doc.Content[0].(richtext.OrderedList)
		require.True(t, ok)
		assert.Len(t, list.Items, 2)
	})

	t.Run("KindChangeEndsList", func(t *testing.T) {
		assertDocument(t, []richtext.Node{
			richtext.BulletList{Items: []richtext.ListItem{richtext.NewListItem(text("a"))}},
			richtext.OrderedList{Items: []richtext.ListItem{richtext.NewListItem(text("b"))}},
		}, Parse("- a\n1. b"))
	})
}

func TestParse_Blockquote(t *testing.T) {
	assertDocument(t, []richtext.Node{
		richtext.Blockquote{Content: []richtext.Node{
			paragraph(text("one")),
			paragraph(text("two")),
		}},
	}, Parse("> one\n>two"))
}

func TestParse_CodeBlock(t *testing.T) {
	t.Run("Verbatim", func(t *testing.T) {
		assertDocument(t, []richtext.Node{
			richtext.CodeBlock{Code: "  indented\n\n# not a heading"},
		}, Parse("```\n  indented\n\n# not a heading\n```"))
	})

	t.Run("Unterminated", func(t *testing.T) {
		assertDocument(t, []richtext.Node{
			paragraph(text("before")),
			richtext.CodeBlock{Language: "go", Code: "x := 1\ny := 2"},
		}, Parse("before\n\n```go\nx := 1\ny := 2"))
	})
}

func TestParse_Image(t *testing.T) {
	t.Run("WithTitle", func(t *testing.T) {
		assertDocument(t, []richtext.Node{
			richtext.Image{Src: "/uploads/a.png", Alt: "A cat", Title: "Caption"},
		}, Parse(`![A cat](/uploads/a.png "Caption")`))
	})

	t.Run("WithoutTitle", func(t *testing.T) {
		assertDocument(t, []richtext.Node{
			richtext.Image{Src: "https://example.com/b.jpg"},
		}, Parse(`![](https://example.com/b.jpg)`))
	})

	t.Run("Malformed", func(t *testing.T) {
		assertDocument(t, []richtext.Node{paragraph(text("![bad(syntax"))}, Parse("![bad(syntax"))
	})

	t.Run("TrailingText", func(t *testing.T) {
		doc := Parse("![a](/a.png) and more")
		require.Len(t, doc.Content, 1)
		_, ok := doc.Content[0].(richtext.Paragraph)
		assert.True(t, ok)
	})
}

func TestParse_Inline(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []richtext.Node
	}{
		{
			name:     "Bold",
			input:    "Hello **world**",
			expected: []richtext.Node{text("Hello "), text("world", richtext.Bold{})},
		},
		{
			name:     "Italic",
			input:    "*soft* words",
			expected: []richtext.Node{text("soft", richtext.Italic{}), text(" words")},
		},
		{
			name:     "Code",
			input:    "run `go test` now",
			expected: []richtext.Node{text("run "), text("go test", richtext.Code{}), text(" now")},
		},
		{
			name:     "Underline",
			input:    "<u>under</u>line",
			expected: []richtext.Node{text("under", richtext.Underline{}), text("line")},
		},
		{
			name:     "UnmatchedUnderline",
			input:    "a <u>b",
			expected: []richtext.Node{text("a <u>b")},
		},
		{
			name:     "Link",
			input:    "see [docs](https://example.com/docs)",
			expected: []richtext.Node{text("see "), text("docs", richtext.Link{Href: "https://example.com/docs"})},
		},
		{
			name:     "UnsafeLink",
			input:    "[x](javascript:alert(1))",
			expected: []richtext.Node{text("x", richtext.Link{Href: richtext.DefaultHref})},
		},
		{
			name:  "Nested",
			input: "**bold *and italic***",
			expected: []richtext.Node{
				text("bold ", richtext.Bold{}),
				text("and italic", richtext.Italic{}, richtext.Bold{}),
			},
		},
		{
			name:     "BoldLink",
			input:    "[**x**](/a)",
			expected: []richtext.Node{text("x", richtext.Bold{}, richtext.Link{Href: "/a"})},
		},
		{
			name:     "LoneAsterisk",
			input:    "2 * 3 = 6",
			expected: []richtext.Node{text("2 * 3 = 6")},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assertDocument(t, []richtext.Node{paragraph(tc.expected...)}, Parse(tc.input))
		})
	}
}

func TestParse_LiteralInline(t *testing.T) {
	assertDocument(t, []richtext.Node{
		paragraph(text("Hello **world**")),
	}, Parse("Hello **world**", WithLiteralInline()))
}
