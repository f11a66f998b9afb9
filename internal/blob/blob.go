// Package blob stores uploaded images on a billy filesystem and serves
// them back under a public URL.
package blob

import (
	"context"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	keyPrefix = "blog"

	DefaultMaxSize = 10 << 20
)

var (
	ErrNotAllowed = errors.New("file type not allowed")
	ErrTooLarge   = errors.New("file too large")
	ErrInvalidKey = errors.New("invalid key")
)

// Object describes a stored file.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type Store struct {
	fs        billy.Filesystem
	publicURL string
	maxSize   int64
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*Store)

func WithMaxSize(size int64) Option {
	return func(s *Store) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore stores files in fs. publicURL is the URL prefix under which the
// files are served.
func NewStore(fs billy.Filesystem, publicURL string, opts ...Option) *Store {
	s := &Store{
		fs:        fs,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		maxSize:   DefaultMaxSize,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenDir returns a store rooted at the directory dir.
func OpenDir(dir, publicURL string, opts ...Option) *Store {
	return NewStore(osfs.New(dir), publicURL, opts...)
}

// Put stores an image read from r under a key derived from name. Files
// that are not images are rejected with ErrNotAllowed.
func (s *Store) Put(ctx context.Context, name string, r io.Reader) (*Object, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}
	if int64(len(data)) > s.maxSize {
		return nil, errors.Wrapf(ErrTooLarge, "limit is %d bytes", s.maxSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, errors.Wrapf(ErrNotAllowed, "detected %s", detected.String())
	}

	key := s.Key(name)
	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create directory")
	}
	if err := util.WriteFile(s.fs, key, data, 0o644); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", key)
	}

	obj := &Object{
		Key:         key,
		URL:         s.URL(key),
		ContentType: detected.String(),
		Size:        int64(len(data)),
	}
	s.logger.Info("stored upload", zap.String("key", obj.Key), zap.String("type", obj.ContentType), zap.Int64("size", obj.Size))
	return obj, nil
}

// Key returns "blog/<unix millis>-<sanitized name>".
// MaxSize is the largest object Put accepts.
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

func (s *Store) Key(name string) string {
	return keyPrefix + "/" + strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + SanitizeName(name)
}

func (s *Store) URL(key string) string {
	return s.publicURL + "/" + key
}

// Open opens a stored file for reading.
func (s *Store) Open(key string) (billy.File, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(clean)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return f, nil
}

func cleanKey(key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != strings.TrimPrefix(key, "/") {
		return "", errors.Wrapf(ErrInvalidKey, "%q", key)
	}
	return clean, nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName keeps the base name of an uploaded file and replaces
// characters that do not belong in a URL path.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Trim(unsafeNameChars.ReplaceAllString(name, "-"), "-.")
	if name == "" {
		return "file"
	}
	return name
}

// Detect returns the media type of the beginning of a stored file.
func Detect(header []byte) string {
	return mimetype.Detect(header).String()
}
