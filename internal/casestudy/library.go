package casestudy

import (
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rdharma/folio/internal/lru"
)

const defaultCacheSize = 64

// Library serves the case studies of one directory. Parsed files are
// cached by slug until Watch sees them change.
type Library struct {
	dir      string
	fsys     fs.FS
	pattern  glob.Glob
	defaults Defaults
	logger   *zap.Logger
	cache    *lru.Cache[*CaseStudy]
}

type Option func(*Library)

// WithFS reads files from fsys instead of the directory.
func WithFS(fsys fs.FS) Option {
	return func(l *Library) {
		l.fsys = fsys
	}
}

func WithDefaults(defaults Defaults) Option {
	return func(l *Library) {
		l.defaults = defaults
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Library) {
		l.logger = logger
	}
}

func WithCacheSize(size int) Option {
	return func(l *Library) {
		l.cache = lru.NewCache[*CaseStudy](size)
	}
}

// NewLibrary creates a library of the files in dir whose names match
// pattern, for example "*.mdx".
func NewLibrary(dir, pattern string, opts ...Option) (*Library, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid case study pattern %q", pattern)
	}

	l := &Library{
		dir:      dir,
		pattern:  g,
		defaults: DefaultDefaults(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fsys == nil {
		l.fsys = os.DirFS(dir)
	}
	if l.cache == nil {
		l.cache = lru.NewCache[*CaseStudy](defaultCacheSize)
	}
	return l, nil
}

func (l *Library) Dir() string {
	return l.dir
}

// Slugs lists the slugs of matching files in name order. An unreadable
// directory has no case studies.
func (l *Library) Slugs() []string {
	files := l.files()
	slugs := make([]string, 0, len(files))
	for slug := range files {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// files maps slugs to file names.
func (l *Library) files() map[string]string {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		l.logger.Debug("failed to read case studies", zap.String("dir", l.dir), zap.Error(err))
		return nil
	}

	files := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !l.pattern.Match(entry.Name()) {
			continue
		}
		files[slugOf(entry.Name())] = entry.Name()
	}
	return files
}

func (l *Library) matches(name string) bool {
	return l.pattern.Match(name)
}

func slugOf(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// Get returns the case study stored under slug.
func (l *Library) Get(slug string) (*CaseStudy, bool) {
	if slug == "" || strings.ContainsAny(slug, `/\`) || slug == "." || slug == ".." {
		return nil, false
	}
	if cs, ok := l.cache.Get(slug); ok {
		return cs, true
	}

	name, ok := l.files()[slug]
	if !ok {
		return nil, false
	}
	return l.load(slug, name)
}

func (l *Library) load(slug, name string) (*CaseStudy, bool) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		l.logger.Warn("failed to read case study", zap.String("file", name), zap.Error(err))
		return nil, false
	}

	cs, err := Parse(slug, string(data), l.defaults)
	if err != nil {
		l.logger.Warn("ignoring case study frontmatter", zap.String("file", name), zap.Error(err))
	}
	l.cache.Add(cs)
	return cs, true
}

// List returns every case study, newest date first. Undated case studies
// come last.
func (l *Library) List() []*CaseStudy {
	slugs := l.Slugs()
	result := make([]*CaseStudy, 0, len(slugs))
	for _, slug := range slugs {
		if cs, ok := l.Get(slug); ok {
			result = append(result, cs)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Meta.Time().After(result[j].Meta.Time())
	})
	return result
}

// Invalidate drops the cached copy of the file with the given name.
func (l *Library) Invalidate(name string) {
	if l.cache.Delete(slugOf(path.Base(name))) {
		l.logger.Debug("invalidated case study", zap.String("file", name))
	}
}
