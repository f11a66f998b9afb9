package config

import (
	"bytes"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const currentVersion = "v1"

// Config is the configuration of a folio site. It is read from folio.yaml
// layered on top of the defaults and then overridden by the environment.
type Config struct {
	Version     string            `yaml:"version" validate:"required,eq=v1"`
	Site        ConfigSite        `yaml:"site"`
	Server      ConfigServer      `yaml:"server"`
	Database    ConfigDatabase    `yaml:"database"`
	Auth        ConfigAuth        `yaml:"auth"`
	Blob        ConfigBlob        `yaml:"blob"`
	CaseStudies ConfigCaseStudies `yaml:"case_studies"`
	Env         ConfigEnv         `yaml:"env"`
	Filters     []*Filter         `yaml:"filters" validate:"dive"`
	Log         ConfigLog         `yaml:"log"`
}

type ConfigSite struct {
	Title       string `yaml:"title" validate:"required"`
	Author      string `yaml:"author" validate:"required"`
	Description string `yaml:"description"`
}

type ConfigServer struct {
	Address         string        `yaml:"address" validate:"required"`
	Production      bool          `yaml:"production"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

type ConfigDatabase struct {
	URL string `yaml:"url" validate:"required"`
}

// ConfigAuth holds the admin credentials. Both values are normally
// provided through ADMIN_PASSWORD and SESSION_SECRET.
type ConfigAuth struct {
	Password      string        `yaml:"password"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl" validate:"gt=0"`
}

// ConfigBlob configures upload storage. An empty Dir disables uploads.
type ConfigBlob struct {
	Dir       string `yaml:"dir"`
	PublicURL string `yaml:"public_url"`
	MaxSize   int64  `yaml:"max_size" validate:"gte=0"`
}

type ConfigCaseStudies struct {
	Dir     string `yaml:"dir" validate:"required"`
	Pattern string `yaml:"pattern" validate:"required"`
}

type ConfigEnv struct {
	Sources []string `yaml:"sources"`
}

type ConfigLog struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Verbose bool   `yaml:"verbose"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseYAML parses configuration documents layered on top of the defaults.
// Later documents override earlier ones.
func ParseYAML(data ...[]byte) (*Config, error) {
	cfg, err := parseYAML(data...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseYAML(data ...[]byte) (*Config, error) {
	cfg, err := newDefault()
	if err != nil {
		return nil, err
	}
	if err := decodeYAML(cfg, data...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(cfg *Config, data ...[]byte) error {
	for _, item := range data {
		if len(bytes.TrimSpace(item)) == 0 {
			continue
		}

		version, err := parseVersionFromYAML(item)
		if err != nil {
			return err
		}
		if version != "" && version != currentVersion {
			return errors.Errorf("unknown version: %s", version)
		}

		if err := yaml.Unmarshal(item, cfg); err != nil {
			return errors.Wrap(err, "failed to unmarshal yaml")
		}
	}
	return nil
}

type versionOnly struct {
	Version string `yaml:"version"`
}

func parseVersionFromYAML(data []byte) (string, error) {
	var result versionOnly

	if err := yaml.Unmarshal(data, &result); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal version")
	}

	return result.Version, nil
}

// Validate checks struct constraints and the rules spanning several fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "failed to validate config")
	}
	if c.Server.Production && c.Auth.SessionSecret == "" {
		return errors.New("failed to validate config: auth.session_secret is required in production")
	}
	if c.Blob.Dir != "" && c.Blob.PublicURL == "" {
		return errors.New("failed to validate config: blob.public_url is required when blob.dir is set")
	}
	return nil
}
