package post

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rdharma/folio/internal/config"
	"github.com/rdharma/folio/internal/slug"
	"github.com/rdharma/folio/internal/ulid"
)

// Intents submitted with the editor form.
const (
	IntentPublish   = "publish"
	IntentUnpublish = "unpublish"
)

// Form is the editor form after trimming.
type Form struct {
	ID         string
	Title      string `validate:"required"`
	Subtitle   string
	Author     string `validate:"required"`
	CoverImage string
	Content    string `validate:"required"`
	Intent     string
}

// FormFromValues reads a submitted editor form. Every value is trimmed.
func FormFromValues(values url.Values) Form {
	get := func(key string) string {
		return strings.TrimSpace(values.Get(key))
	}
	return Form{
		ID:         get("id"),
		Title:      get("title"),
		Subtitle:   get("subtitle"),
		Author:     get("author"),
		CoverImage: get("coverImage"),
		Content:    get("content"),
		Intent:     get("intent"),
	}
}

// ParseBool reads a form flag: only "true" is true.
func ParseBool(value string) bool {
	return value == "true"
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (f Form) validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.WithStack(err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return errors.Wrapf(ErrInvalid, "%s required", strings.Join(fields, ", "))
}

type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

type ServiceOption func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Create stores a new post. It is published only when the intent is
// IntentPublish.
func (s *Service) Create(ctx context.Context, form Form) (*Post, error) {
	if err := form.validate(); err != nil {
		return nil, err
	}

	id := ulid.GenerateID()
	postSlug, err := s.uniqueSlug(ctx, form.Title, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	p := &Post{
		ID:         id,
		Title:      form.Title,
		Slug:       postSlug,
		Subtitle:   optional(form.Subtitle),
		Author:     form.Author,
		CoverImage: optional(form.CoverImage),
		Content:    CanonicalContent(form.Content),
		Published:  form.Intent == IntentPublish,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("created post", zap.String("id", p.ID), zap.String("slug", p.Slug), zap.Bool("published", p.Published))
	return p, nil
}

// Update rewrites an existing post. The slug follows the title but the
// post's current slug never conflicts with itself. The published flag
// changes only for IntentPublish and IntentUnpublish.
func (s *Service) Update(ctx context.Context, form Form) (*Post, error) {
	if form.ID == "" {
		return nil, errors.Wrap(ErrInvalid, "post ID missing")
	}
	if err := form.validate(); err != nil {
		return nil, err
	}

	p, err := s.store.Get(ctx, form.ID)
	if err != nil {
		return nil, err
	}

	postSlug, err := s.uniqueSlug(ctx, form.Title, p.ID)
	if err != nil {
		return nil, err
	}

	p.Title = form.Title
	p.Slug = postSlug
	p.Subtitle = optional(form.Subtitle)
	p.Author = form.Author
	p.CoverImage = optional(form.CoverImage)
	p.Content = CanonicalContent(form.Content)
	switch form.Intent {
	case IntentPublish:
		p.Published = true
	case IntentUnpublish:
		p.Published = false
	}
	p.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("updated post", zap.String("id", p.ID), zap.String("slug", p.Slug), zap.Bool("published", p.Published))
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*Post, error) {
	if id == "" {
		return nil, errors.Wrap(ErrInvalid, "post ID missing")
	}
	p, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("deleted post", zap.String("id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

func (s *Service) SetPublished(ctx context.Context, id string, published bool) (*Post, error) {
	if id == "" {
		return nil, errors.Wrap(ErrInvalid, "post ID missing")
	}
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Published = published
	p.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("changed post status", zap.String("id", p.ID), zap.Bool("published", published))
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Post, error) {
	if !ulid.ValidID(id) {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// GetPublished returns a published post by slug. Drafts are reported as
// ErrNotFound.
func (s *Service) GetPublished(ctx context.Context, postSlug string) (*Post, error) {
	p, err := s.store.GetBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, ErrNotFound
	}
	return p, nil
}

// List returns posts newest first that match all filters.
func (s *Service) List(ctx context.Context, opts ListOptions, filters ...*config.Filter) ([]*Post, error) {
	posts, err := s.store.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return posts, nil
	}

	result := posts[:0]
	for _, p := range posts {
		ok, err := config.MatchAll(filters, p.FilterEnv())
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *Service) uniqueSlug(ctx context.Context, title, selfID string) (string, error) {
	return slug.Unique(ctx, slug.Candidate(title), selfID, func(ctx context.Context, candidate string) (string, error) {
		p, err := s.store.GetBySlug(ctx, candidate)
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return p.ID, nil
	})
}
