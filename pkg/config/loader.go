package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "VRMACTION_CONFIG"

// searchPaths are tried in order when neither an explicit path nor
// VRMACTION_CONFIG is given.
var searchPaths = []string{"config.yaml", "/etc/vrmaction/config.yaml"}

// Load builds the configuration from defaults, the YAML file at path (or
// the first file found via VRMACTION_CONFIG and searchPaths), VRMACTION_*
// environment variables and *_file secret references, then validates it.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path = findConfigFile(path); path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	if err := resolveSecrets(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// decodeFile overlays the YAML document at path onto cfg. Keys absent from
// the file keep their current value; unknown keys are an error.
func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// envBinding sets one config field from one environment variable.
type envBinding struct {
	name string
	set  func(cfg *Config, value string) error
}

func stringVar(name string, field func(*Config) *string) envBinding {
	return envBinding{name, func(c *Config, v string) error {
		*field(c) = v
		return nil
	}}
}

func intVar(name string, field func(*Config) *int) envBinding {
	return envBinding{name, func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		*field(c) = n
		return err
	}}
}

func boolVar(name string, field func(*Config) *bool) envBinding {
	return envBinding{name, func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		*field(c) = b
		return err
	}}
}

func durationVar(name string, field func(*Config) *time.Duration) envBinding {
	return envBinding{name, func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		*field(c) = d
		return err
	}}
}

var envBindings = []envBinding{
	stringVar("VRMACTION_TRANSPORT", func(c *Config) *string { return &c.Server.Transport }),
	intVar("VRMACTION_PORT", func(c *Config) *int { return &c.Server.Port }),
	stringVar("VRMACTION_PATH", func(c *Config) *string { return &c.Server.Path }),
	boolVar("VRMACTION_STATELESS", func(c *Config) *bool { return &c.Server.Stateless }),
	durationVar("VRMACTION_SHUTDOWN_TIMEOUT", func(c *Config) *time.Duration { return &c.Server.ShutdownTimeout }),

	stringVar("VRMACTION_STORAGE", func(c *Config) *string { return &c.Storage.Type }),
	intVar("VRMACTION_STORAGE_SIZE", func(c *Config) *int { return &c.Storage.MaxSize }),
	stringVar("VRMACTION_POSTGRES_DSN", func(c *Config) *string { return &c.Storage.Postgres.DSN }),

	stringVar("VRMACTION_AUTH_TYPE", func(c *Config) *string { return &c.Auth.Type }),
	stringVar("VRMACTION_REQUIRED_SCOPE", func(c *Config) *string { return &c.Auth.RequiredScope }),
	intVar("VRMACTION_RATE_LIMIT", func(c *Config) *int { return &c.Auth.RateLimit.DefaultRPM }),
	{"VRMACTION_API_KEYS", func(c *Config, v string) error {
		return json.Unmarshal([]byte(v), &c.Auth.APIKeys)
	}},
	stringVar("VRMACTION_JWT_ISSUER", func(c *Config) *string { return &c.Auth.JWT.Issuer }),
	stringVar("VRMACTION_JWT_AUDIENCE", func(c *Config) *string { return &c.Auth.JWT.Audience }),
	stringVar("VRMACTION_JWT_JWKS_URL", func(c *Config) *string { return &c.Auth.JWT.JWKSURL }),

	stringVar("VRMACTION_LOG_FORMAT", func(c *Config) *string { return &c.Logging.Format }),
}

// applyEnv applies every set variable in envBindings. Unparseable values
// are errors rather than silently ignored.
func applyEnv(cfg *Config, getenv func(string) string) error {
	var errs []error
	for _, b := range envBindings {
		v := getenv(b.name)
		if v == "" {
			continue
		}
		if err := b.set(cfg, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

// secretRef pairs a *_file setting with the value it fills.
type secretRef struct {
	key   string
	file  string
	value *string
}

func secretRefs(cfg *Config) []secretRef {
	refs := []secretRef{{"storage.postgres.dsn_file", cfg.Storage.Postgres.DSNFile, &cfg.Storage.Postgres.DSN}}
	for i := range cfg.Auth.APIKeys {
		k := &cfg.Auth.APIKeys[i]
		refs = append(refs, secretRef{fmt.Sprintf("auth.api_keys[%d].key_file", i), k.KeyFile, &k.Key})
	}
	return refs
}

// resolveSecrets reads each referenced file into its value when the value
// itself is unset. Surrounding whitespace is trimmed.
func resolveSecrets(cfg *Config) error {
	for _, ref := range secretRefs(cfg) {
		if ref.file == "" || *ref.value != "" {
			continue
		}
		data, err := os.ReadFile(ref.file)
		if err != nil {
			return fmt.Errorf("%s: %w", ref.key, err)
		}
		*ref.value = strings.TrimSpace(string(data))
	}
	return nil
}
