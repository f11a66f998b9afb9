package post

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rdharma/folio/internal/config"
	"github.com/rdharma/folio/internal/ulid"
	"github.com/rdharma/folio/pkg/richtext"
	"github.com/rdharma/folio/pkg/richtext/markup"
)

var testClock = func() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(newTestStore(t), zaptest.NewLogger(t), WithClock(testClock))
}

func validForm() Form {
	return Form{
		Title:   "Hello World",
		Author:  "Ryan",
		Content: "# Heading\n\nSome **bold** text",
	}
}

func TestFormFromValues(t *testing.T) {
	form := FormFromValues(url.Values{
		"id":         {" 01HZX0000000000000000000AA "},
		"title":      {"  Title  "},
		"subtitle":   {"   "},
		"author":     {"Ryan"},
		"coverImage": {""},
		"content":    {"text\n"},
		"intent":     {"publish"},
	})

	assert.Equal(t, Form{
		ID:      "01HZX0000000000000000000AA",
		Title:   "Title",
		Author:  "Ryan",
		Content: "text",
		Intent:  IntentPublish,
	}, form)
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool("true"))
	assert.False(t, ParseBool("TRUE"))
	assert.False(t, ParseBool("1"))
	assert.False(t, ParseBool(""))
}

func TestCanonicalContent(t *testing.T) {
	fromMarkup := CanonicalContent("Hello **world**")
	require.True(t, richtext.IsDocument([]byte(fromMarkup)))
	assert.Equal(t, "Hello **world**", markup.Serialize(richtext.Parse(fromMarkup)))

	assert.Equal(t, fromMarkup, CanonicalContent(fromMarkup))
	assert.Equal(t, richtext.EmptyJSON, CanonicalContent(""))
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	t.Run("Draft", func(t *testing.T) {
		p, err := svc.Create(ctx, validForm())
		require.NoError(t, err)
		assert.True(t, ulid.ValidID(p.ID))
		assert.Equal(t, "hello-world", p.Slug)
		assert.False(t, p.Published)
		assert.Nil(t, p.Subtitle)
		assert.Nil(t, p.CoverImage)
		assert.Equal(t, testClock(), p.CreatedAt)
		assert.True(t, richtext.IsDocument([]byte(p.Content)))
	})

	t.Run("PublishedWithSlugSuffix", func(t *testing.T) {
		form := validForm()
		form.Intent = IntentPublish
		form.Subtitle = "Sub"

		p, err := svc.Create(ctx, form)
		require.NoError(t, err)
		assert.Equal(t, "hello-world-1", p.Slug)
		assert.True(t, p.Published)
		require.NotNil(t, p.Subtitle)
		assert.Equal(t, "Sub", *p.Subtitle)

		p, err = svc.Create(ctx, form)
		require.NoError(t, err)
		assert.Equal(t, "hello-world-2", p.Slug)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := svc.Create(ctx, Form{Title: "x"})
		require.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, err.Error(), "author, content required")
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	p, err := svc.Create(ctx, validForm())
	require.NoError(t, err)

	t.Run("KeepsOwnSlug", func(t *testing.T) {
		form := validForm()
		form.ID = p.ID
		form.Content = "changed"

		updated, err := svc.Update(ctx, form)
		require.NoError(t, err)
		assert.Equal(t, "hello-world", updated.Slug)
		assert.Equal(t, "changed", richtext.PlainText(updated.Document()))
		assert.False(t, updated.Published)
	})

	t.Run("Intents", func(t *testing.T) {
		form := validForm()
		form.ID = p.ID

		form.Intent = IntentPublish
		updated, err := svc.Update(ctx, form)
		require.NoError(t, err)
		assert.True(t, updated.Published)

		form.Intent = "save"
		updated, err = svc.Update(ctx, form)
		require.NoError(t, err)
		assert.True(t, updated.Published)

		form.Intent = IntentUnpublish
		updated, err = svc.Update(ctx, form)
		require.NoError(t, err)
		assert.False(t, updated.Published)
	})

	t.Run("NewTitle", func(t *testing.T) {
		form := validForm()
		form.ID = p.ID
		form.Title = "Another Title"

		updated, err := svc.Update(ctx, form)
		require.NoError(t, err)
		assert.Equal(t, "another-title", updated.Slug)
	})

	t.Run("MissingID", func(t *testing.T) {
		_, err := svc.Update(ctx, validForm())
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("NotFound", func(t *testing.T) {
		form := validForm()
		form.ID = ulid.GenerateID()
		_, err := svc.Update(ctx, form)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_PublishAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	p, err := svc.Create(ctx, validForm())
	require.NoError(t, err)

	_, err = svc.GetPublished(ctx, p.Slug)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SetPublished(ctx, p.ID, true)
	require.NoError(t, err)

	published, err := svc.GetPublished(ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, p.ID, published.ID)

	deleted, err := svc.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Slug, deleted.Slug)

	_, err = svc.Get(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, "not-a-ulid")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Delete(ctx, "")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, title := range []string{"First", "Second", "Draft Idea"} {
		form := validForm()
		form.Title = title
		if title != "Draft Idea" {
			form.Intent = IntentPublish
		}
		_, err := svc.Create(ctx, form)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	published, err := svc.List(ctx, ListOptions{PublishedOnly: true})
	require.NoError(t, err)
	assert.Len(t, published, 2)

	filtered, err := svc.List(ctx, ListOptions{}, config.NewPostFilter("slug startsWith 'se'"))
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "second", filtered[0].Slug)

	_, err = svc.List(ctx, ListOptions{}, config.NewPostFilter("nope("))
	require.Error(t, err)
}

func TestPost_FilterEnv(t *testing.T) {
	cover := "/a.png"
	p := &Post{
		ID:         "id",
		Slug:       "s",
		Published:  true,
		CoverImage: &cover,
		Content:    CanonicalContent("one two three"),
	}

	env := p.FilterEnv()
	assert.True(t, env.HasCover)
	assert.Equal(t, 3, env.Words)
	assert.Equal(t, "published", p.Status())
	assert.Equal(t, "one two three", p.Markup())
}
