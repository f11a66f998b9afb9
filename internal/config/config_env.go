package config

import (
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/stateful/godotenv"
)

// Environment variables overriding the configuration file.
const (
	EnvAddress       = "FOLIO_ADDRESS"
	EnvProduction    = "FOLIO_PRODUCTION"
	EnvDatabaseURL   = "FOLIO_DATABASE_URL"
	EnvAdminPassword = "ADMIN_PASSWORD"
	EnvSessionSecret = "SESSION_SECRET"
	EnvBlobDir       = "BLOB_DIR"
	EnvBlobPublicURL = "BLOB_PUBLIC_URL"
	EnvLogEnabled    = "FOLIO_LOG_ENABLED"
	EnvLogVerbose    = "FOLIO_LOG_VERBOSE"
)

// LookupEnvFunc has the signature of [os.LookupEnv].
type LookupEnvFunc func(key string) (string, bool)

// ApplyEnv overrides fields with non-empty environment values.
func (c *Config) ApplyEnv(lookup LookupEnvFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "invalid value of %s", key)
		}
		*dst = b
		return nil
	}

	str(EnvAddress, &c.Server.Address)
	str(EnvDatabaseURL, &c.Database.URL)
	str(EnvAdminPassword, &c.Auth.Password)
	str(EnvSessionSecret, &c.Auth.SessionSecret)
	str(EnvBlobDir, &c.Blob.Dir)
	str(EnvBlobPublicURL, &c.Blob.PublicURL)

	for key, dst := range map[string]*bool{
		EnvProduction: &c.Server.Production,
		EnvLogEnabled: &c.Log.Enabled,
		EnvLogVerbose: &c.Log.Verbose,
	} {
		if err := boolean(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// ReadEnvFiles reads dotenv files from fsys in order, later files taking
// precedence. Missing files are skipped.
func ReadEnvFiles(fsys fs.FS, names ...string) (map[string]string, error) {
	envs := make(map[string]string)

	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", name)
		}

		parsed, _, err := godotenv.UnmarshalBytesWithComments(data)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", name)
		}
		for k, v := range parsed {
			envs[k] = v
		}
	}

	return envs, nil
}

// LookupEnv prefers the process environment and falls back to envs.
func LookupEnv(envs map[string]string) LookupEnvFunc {
	return chainLookup(os.LookupEnv, mapLookup(envs))
}

func mapLookup(envs map[string]string) LookupEnvFunc {
	return func(key string) (string, bool) {
		v, ok := envs[key]
		return v, ok
	}
}

func chainLookup(lookups ...LookupEnvFunc) LookupEnvFunc {
	return func(key string) (string, bool) {
		for _, lookup := range lookups {
			if v, ok := lookup(key); ok {
				return v, true
			}
		}
		return "", false
	}
}
