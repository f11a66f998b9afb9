package config

import (
	"io/fs"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrRootConfigNotFound = errors.New("root configuration file not found")

// Loader reads the configuration file and the dotenv files it lists from
// a file system, typically the working directory.
type Loader struct {
	// configRootPath is a root path for the configuration file
	// and the dotenv files.
	configRootPath fs.FS

	// configName is a name of the configuration file.
	configName string

	// configType is a type of the configuration file.
	// Together with configName it forms a configFile.
	configType string

	lookupEnv LookupEnvFunc
	logger    *zap.Logger
}

type LoaderOption func(*Loader)

func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithLookupEnv replaces the process environment as the source of
// overrides. Values from dotenv files are still used as a fallback.
func WithLookupEnv(lookup LookupEnvFunc) LoaderOption {
	return func(l *Loader) {
		l.lookupEnv = lookup
	}
}

func NewLoader(configName, configType string, configRootPath fs.FS, opts ...LoaderOption) *Loader {
	if configName == "" {
		panic("config name is not set")
	}

	l := &Loader{
		configRootPath: configRootPath,
		configName:     configName,
		configType:     configType,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.logger == nil {
		l.logger = zap.NewNop()
	}

	return l
}

func (l *Loader) configFullName() string {
	if l.configType == "" {
		return l.configName
	}
	return l.configName + "." + l.configType
}

func (l *Loader) RootConfig() ([]byte, error) {
	data, err := fs.ReadFile(l.configRootPath, l.configFullName())
	if err != nil {
		return nil, ErrRootConfigNotFound
	}
	return data, nil
}

// Load returns the validated configuration. A missing configuration file
// is not an error; the defaults are used instead.
func (l *Loader) Load() (*Config, error) {
	data, err := l.RootConfig()
	if err != nil {
		if !errors.Is(err, ErrRootConfigNotFound) {
			return nil, err
		}
		l.logger.Debug("root configuration file not found, using defaults", zap.String("name", l.configFullName()))
	}

	cfg, err := parseYAML(data)
	if err != nil {
		return nil, err
	}

	envs, err := ReadEnvFiles(l.configRootPath, cfg.Env.Sources...)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded env files", zap.Strings("sources", cfg.Env.Sources), zap.Int("count", len(envs)))

	lookup := LookupEnv(envs)
	if l.lookupEnv != nil {
		lookup = chainLookup(l.lookupEnv, mapLookup(envs))
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
