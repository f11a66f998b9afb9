// autoconfig provides a way to create the application's components from
// the [config.Config], like [post.Service], [server.Server] and
// [zap.Logger].
//
// For example, to instantiate [post.Service], you can write:
//
//	autoconfig.NewBuilder().Invoke(func(svc *post.Service) error {
//	    ...
//	})
//
// Treat it as a dependency injection mechanism.
package autoconfig

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/rdharma/folio/internal/auth"
	"github.com/rdharma/folio/internal/blob"
	"github.com/rdharma/folio/internal/casestudy"
	"github.com/rdharma/folio/internal/config"
	"github.com/rdharma/folio/internal/log"
	"github.com/rdharma/folio/internal/post"
	"github.com/rdharma/folio/internal/server"
)

const DefaultConfigFile = "folio.yaml"

type Builder struct {
	container  *dig.Container
	configFile string
}

type BuilderOption func(*Builder)

// WithConfigFile sets the path of the configuration file. Dotenv files
// are looked up next to it.
func WithConfigFile(path string) BuilderOption {
	return func(b *Builder) {
		if path != "" {
			b.configFile = path
		}
	}
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		container:  dig.New(),
		configFile: DefaultConfigFile,
	}
	for _, opt := range opts {
		opt(b)
	}

	mustProvide(b.container.Provide(b.getLoader))
	mustProvide(b.container.Provide(getConfig))
	mustProvide(b.container.Provide(getLogger))
	mustProvide(b.container.Provide(getDB))
	mustProvide(b.container.Provide(getPostStore))
	mustProvide(b.container.Provide(getPostService))
	mustProvide(b.container.Provide(getBlobStore))
	mustProvide(b.container.Provide(getCaseStudies))
	mustProvide(b.container.Provide(getAuth))
	mustProvide(b.container.Provide(getServer))

	return b
}

var (
	commandBuilderOnce sync.Once
	commandBuilder     *Builder
	commandConfigFile  = DefaultConfigFile
)

// SetConfigFile sets the configuration file used by [InvokeForCommand].
// It has no effect after the first invocation.
func SetConfigFile(path string) {
	commandConfigFile = path
}

// InvokeForCommand is like [Builder.Invoke] but shares a single builder
// within the process so that commands and their parents receive the same
// instances.
func InvokeForCommand(function interface{}, opts ...dig.InvokeOption) error {
	commandBuilderOnce.Do(func() {
		commandBuilder = NewBuilder(WithConfigFile(commandConfigFile))
	})
	return commandBuilder.Invoke(function, opts...)
}

func mustProvide(err error) {
	if err != nil {
		panic("failed to provide: " + err.Error())
	}
}

// Decorate replaces a provided value, for example the [config.Loader] in
// tests.
func (b *Builder) Decorate(decorator interface{}, opts ...dig.DecorateOption) error {
	return b.container.Decorate(decorator, opts...)
}

// Invoke is used to invoke the function with the given dependencies.
// The builder will automatically figure out how to instantiate them
// using the available configuration.
func (b *Builder) Invoke(function interface{}, opts ...dig.InvokeOption) error {
	err := b.container.Invoke(function, opts...)
	return dig.RootCause(err)
}

func (b *Builder) getLoader() *config.Loader {
	dir, file := filepath.Split(b.configFile)
	if dir == "" {
		dir = "."
	}
	ext := filepath.Ext(file)
	return config.NewLoader(
		strings.TrimSuffix(file, ext),
		strings.TrimPrefix(ext, "."),
		os.DirFS(dir),
		config.WithLogger(log.Get()),
	)
}

func getConfig(loader *config.Loader) (*config.Config, error) {
	return loader.Load()
}

// getLogger keeps the process-wide logger, which is a no-op unless --debug
// was passed, when logging is not enabled in the configuration.
func getLogger(c *config.Config) (*zap.Logger, error) {
	if c == nil || !c.Log.Enabled {
		return log.Get(), nil
	}

	l, err := log.New(true, c.Log.Verbose, c.Log.Path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	log.Replace(l)
	return l, nil
}

func getDB(c *config.Config) (*sql.DB, error) {
	return post.OpenDB(context.Background(), c.Database.URL)
}

func getPostStore(db *sql.DB, logger *zap.Logger) (*post.SQLStore, error) {
	return post.NewSQLStore(context.Background(), db, logger)
}

func getPostService(store *post.SQLStore, logger *zap.Logger) *post.Service {
	return post.NewService(store, logger)
}

// getBlobStore returns nil when uploads are disabled.
func getBlobStore(c *config.Config, logger *zap.Logger) *blob.Store {
	if c.Blob.Dir == "" {
		return nil
	}
	return blob.OpenDir(
		c.Blob.Dir,
		c.Blob.PublicURL,
		blob.WithMaxSize(c.Blob.MaxSize),
		blob.WithLogger(logger),
	)
}

func getCaseStudies(c *config.Config, logger *zap.Logger) (*casestudy.Library, error) {
	defaults := casestudy.DefaultDefaults()
	defaults.Author = c.Site.Author

	return casestudy.NewLibrary(
		c.CaseStudies.Dir,
		c.CaseStudies.Pattern,
		casestudy.WithDefaults(defaults),
		casestudy.WithLogger(logger),
	)
}

func getAuth(c *config.Config, logger *zap.Logger) (*auth.Auth, error) {
	return auth.New(
		c.Auth.Password,
		c.Auth.SessionSecret,
		c.Auth.SessionTTL,
		auth.WithSecureCookie(c.Server.Production),
		auth.WithLogger(logger),
	)
}

func getServer(
	c *config.Config,
	posts *post.Service,
	studies *casestudy.Library,
	a *auth.Auth,
	blobs *blob.Store,
	logger *zap.Logger,
) (*server.Server, error) {
	return server.New(
		&server.Config{
			Address:         c.Server.Address,
			ShutdownTimeout: c.Server.ShutdownTimeout,
			Site:            c.Site,
			Filters:         c.Filters,
		},
		server.Deps{
			Posts:       posts,
			CaseStudies: studies,
			Auth:        a,
			Blobs:       blobs,
		},
		logger,
	)
}
