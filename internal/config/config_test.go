package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	// Invariant that all default configurations are equal.
	expected, err := newDefault()
	require.NoError(t, err)
	got := Default()
	opts := cmpopts.EquateEmpty()
	require.True(
		t,
		cmp.Equal(expected, got, opts),
		"%s",
		cmp.Diff(expected, got, opts),
	)

	assert.Equal(t, "v1", got.Version)
	assert.Equal(t, 5*time.Second, got.Server.ShutdownTimeout)
	assert.Equal(t, 24*time.Hour, got.Auth.SessionTTL)
	assert.Equal(t, "*.mdx", got.CaseStudies.Pattern)
	assert.Equal(t, []string{".env", ".env.local"}, got.Env.Sources)
}

func TestParseYAML(t *testing.T) {
	testCases := []struct {
		name           string
		rawConfig      string
		check          func(*testing.T, *Config)
		errorSubstring string
	}{
		{
			name:      "empty uses defaults",
			rawConfig: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "override server",
			rawConfig: `version: v1
server:
  address: ":8080"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ":8080", cfg.Server.Address)
				assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
				assert.Equal(t, "Ryan Dharma", cfg.Site.Author)
			},
		},
		{
			name: "filters",
			rawConfig: `version: v1
filters:
  - type: "FILTER_TYPE_POST"
    condition: "author == 'me'"
`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Filters, 1)
				assert.Equal(t, "author == 'me'", cfg.Filters[0].Condition)
			},
		},
		{
			name:           "unknown version",
			rawConfig:      "version: v9\n",
			errorSubstring: "unknown version: v9",
		},
		{
			name: "validate filter type",
			rawConfig: `version: v1
filters:
  - type: "FILTER_TYPE_BLOCK"
    condition: "name != ''"
`,
			errorSubstring: "failed to validate config",
		},
		{
			name: "validate required",
			rawConfig: `version: v1
database:
  url: ""
`,
			errorSubstring: "Config.Database.URL",
		},
		{
			name: "validate production secret",
			rawConfig: `version: v1
server:
  production: true
`,
			errorSubstring: "auth.session_secret is required in production",
		},
		{
			name:           "invalid yaml",
			rawConfig:      "version: [",
			errorSubstring: "failed to unmarshal version",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseYAML([]byte(tc.rawConfig))

			if tc.errorSubstring != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.errorSubstring)
				return
			}

			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestParseYAML_Multiple(t *testing.T) {
	cfg1 := []byte(`version: v1
site:
  title: First
blob:
  dir: ""
`)
	cfg2 := []byte(`version: v1
site:
  author: Someone
`)

	cfg, err := ParseYAML(cfg1, cfg2)
	require.NoError(t, err)
	assert.Equal(t, "First", cfg.Site.Title)
	assert.Equal(t, "Someone", cfg.Site.Author)
	assert.Equal(t, "", cfg.Blob.Dir)
}

func TestConfig_ApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAddress:       ":9000",
		EnvDatabaseURL:   "sqlite::memory:",
		EnvAdminPassword: "hunter2",
		EnvSessionSecret: "secret",
		EnvBlobDir:       "",
		EnvLogEnabled:    "true",
		EnvProduction:    "1",
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(mapLookup(env)))

	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, "sqlite::memory:", cfg.Database.URL)
	assert.Equal(t, "hunter2", cfg.Auth.Password)
	assert.Equal(t, "secret", cfg.Auth.SessionSecret)
	assert.Equal(t, "uploads", cfg.Blob.Dir, "empty values do not override")
	assert.True(t, cfg.Log.Enabled)
	assert.True(t, cfg.Server.Production)
	assert.NoError(t, cfg.Validate())

	err := Default().ApplyEnv(mapLookup(map[string]string{EnvLogVerbose: "maybe"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvLogVerbose)
}
