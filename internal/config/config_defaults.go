package config

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var defaultYAML = []byte(`version: v1

site:
  title: "Ryan Dharma"
  author: "Ryan Dharma"
  description: "Dispatches on RevOps, GTM systems, and building outbound funnels."

server:
  address: "localhost:3000"
  # Marks the session cookie as Secure.
  production: false
  shutdown_timeout: 5s

database:
  # Any URL understood by dburl. Only SQLite is bundled.
  url: "sqlite:folio.db"

auth:
  # Prefer ADMIN_PASSWORD and SESSION_SECRET over storing secrets here.
  password: ""
  session_secret: ""
  session_ttl: 24h

blob:
  # Uploads are disabled when dir is empty.
  dir: "uploads"
  public_url: "/uploads"
  max_size: 10485760

case_studies:
  dir: "content/case-studies"
  pattern: "*.mdx"

env:
  # Dotenv files read relative to the configuration root.
  sources:
    - ".env"
    - ".env.local"

# Filters restrict which published posts are listed publicly.
# "condition" must return a boolean value.
# You can learn about the syntax at https://expr-lang.org/docs/language-definition.
# Available fields are defined in [config.FilterPostEnv].
# filters:
#   - type: "FILTER_TYPE_POST"
#     condition: "!hasPrefix(slug, 'draft-')"

log:
  enabled: false
  path: ""
  verbose: false
`)

func init() {
	cfg, err := newDefault()
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
}

func newDefault() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse default config")
	}
	return &cfg, nil
}

// Default returns a fresh copy of the default configuration.
func Default() *Config {
	cfg, err := newDefault()
	if err != nil {
		panic(err)
	}
	return cfg
}
