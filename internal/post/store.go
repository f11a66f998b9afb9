package post

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("post not found")
	ErrInvalid  = errors.New("invalid post")
)

type ListOptions struct {
	PublishedOnly bool
}

// Store persists posts. Implementations return ErrNotFound for missing ids
// and slugs.
type Store interface {
	Create(ctx context.Context, p *Post) error
	Get(ctx context.Context, id string) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	Update(ctx context.Context, p *Post) error
	// Delete removes the post and returns it as it was stored.
	Delete(ctx context.Context, id string) (*Post, error)
	// List returns posts newest first.
	List(ctx context.Context, opts ListOptions) ([]*Post, error)
	Close() error
}
