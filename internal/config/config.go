// Package config loads ewsctl settings.
//
// Settings are layered: built-in defaults, then the TOML file
// (~/.ewsctl/config.toml unless --config is given), then a .env file in the
// working directory, then EWS_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// Defaults.
const (
	DefaultTimeout                        = 120 * time.Second
	DefaultBasePoint                      = "Beginning"
	DefaultMaxFolderItemsPerFindItemQuery = 1000
	DefaultMaxItemsPerGetItemQuery        = 1000

	dirName  = ".ewsctl"
	fileName = "config.toml"
)

// Duration is a time.Duration written as a Go duration string ("90s").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds every ewsctl setting. Read-only once loaded.
type Config struct {
	// WSDL is the EWS endpoint URL or the location of its service description.
	WSDL          string `toml:"wsdl"`
	ServerVersion string `toml:"server_version"`
	// Mailbox is the default owner of ids passed to convert-id.
	Mailbox            string   `toml:"mailbox,omitempty"`
	Impersonate        string   `toml:"impersonate,omitempty"`
	InsecureSkipVerify bool     `toml:"insecure_skip_verify"`
	Timeout            Duration `toml:"timeout"`

	BasePoint                      string `toml:"basepoint"`
	MaxFolderItemsPerFindItemQuery int    `toml:"max_folder_items_per_find_item_query"`
	MaxItemsPerGetItemQuery        int    `toml:"max_items_per_get_item_query"`

	Auth      AuthConfig      `toml:"auth"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Log       LogConfig       `toml:"log"`
}

// AuthConfig selects and configures authentication.
type AuthConfig struct {
	Method   string `toml:"method"`
	Username string `toml:"username,omitempty"`
	Password string `toml:"password,omitempty"`
	Domain   string `toml:"domain,omitempty"`

	TenantID     string   `toml:"tenant_id,omitempty"`
	ClientID     string   `toml:"client_id,omitempty"`
	ClientSecret string   `toml:"client_secret,omitempty"`
	Scopes       []string `toml:"scopes,omitempty"`
}

// RateLimitConfig paces requests. Zero uses the per-deployment default.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Verbose bool `toml:"verbose"`
	JSON    bool `toml:"json"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	return &Config{
		ServerVersion:                  domain.ServerVersion,
		Timeout:                        Duration(DefaultTimeout),
		BasePoint:                      DefaultBasePoint,
		MaxFolderItemsPerFindItemQuery: DefaultMaxFolderItemsPerFindItemQuery,
		MaxItemsPerGetItemQuery:        DefaultMaxItemsPerGetItemQuery,
		Auth:                           AuthConfig{Method: string(domain.AuthNTLM)},
	}
}

// DefaultPath returns ~/.ewsctl/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, dirName, fileName), nil
}

// Load reads the layered configuration. An empty path means DefaultPath,
// which may be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	dotenv, err := readDotEnv(".env")
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(envLookup(dotenv)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("unknown settings: %s", strict.String())
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Save writes c as TOML, creating the directory.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// readDotEnv returns the variables of a .env file, or none if it is missing.
func readDotEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vars, nil
}

// envLookup prefers the process environment over .env values.
func envLookup(dotenv map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// ApplyEnv overrides settings from EWS_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	env := envReader{lookup: lookup}

	env.str("EWS_WSDL", &c.WSDL)
	env.str("EWS_SERVER_VERSION", &c.ServerVersion)
	env.str("EWS_MAILBOX", &c.Mailbox)
	env.str("EWS_IMPERSONATE", &c.Impersonate)
	env.boolean("EWS_SKIP_TLS_VERIFY", &c.InsecureSkipVerify)
	env.duration("EWS_TIMEOUT", &c.Timeout)
	env.str("EWS_BASEPOINT", &c.BasePoint)
	env.integer("EWS_MAX_FIND_ITEMS", &c.MaxFolderItemsPerFindItemQuery)
	env.integer("EWS_MAX_GET_ITEMS", &c.MaxItemsPerGetItemQuery)

	env.str("EWS_AUTH", &c.Auth.Method)
	env.str("EWS_USERNAME", &c.Auth.Username)
	env.str("EWS_PASSWORD", &c.Auth.Password)
	env.str("EWS_DOMAIN", &c.Auth.Domain)
	env.str("EWS_TENANT_ID", &c.Auth.TenantID)
	env.str("EWS_CLIENT_ID", &c.Auth.ClientID)
	env.str("EWS_CLIENT_SECRET", &c.Auth.ClientSecret)
	env.list("EWS_SCOPES", &c.Auth.Scopes)

	env.float("EWS_RATE_LIMIT", &c.RateLimit.RequestsPerSecond)
	env.integer("EWS_RATE_BURST", &c.RateLimit.Burst)

	env.boolean("EWS_VERBOSE", &c.Log.Verbose)
	env.boolean("EWS_LOG_JSON", &c.Log.JSON)

	return errors.Join(env.errs...)
}

// Validate checks that the configuration can open a session.
// A missing NTLM password is allowed; the CLI prompts for it.
func (c *Config) Validate() error {
	var errs []error
	if c.WSDL == "" {
		errs = append(errs, errors.New("wsdl (EWS endpoint or WSDL location) is required"))
	}
	if c.BasePoint != "Beginning" && c.BasePoint != "End" {
		errs = append(errs, fmt.Errorf("basepoint must be Beginning or End, got %q", c.BasePoint))
	}
	if c.MaxFolderItemsPerFindItemQuery <= 0 {
		errs = append(errs, errors.New("max_folder_items_per_find_item_query must be positive"))
	}
	if c.MaxItemsPerGetItemQuery <= 0 {
		errs = append(errs, errors.New("max_items_per_get_item_query must be positive"))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}

	switch domain.AuthMethod(c.Auth.Method) {
	case domain.AuthNTLM:
		if c.Auth.Username == "" {
			errs = append(errs, errors.New("auth.username is required for ntlm"))
		}
	case domain.AuthOAuth2:
		if c.Auth.TenantID == "" || c.Auth.ClientID == "" || c.Auth.ClientSecret == "" {
			errs = append(errs, errors.New("auth.tenant_id, auth.client_id and auth.client_secret are required for oauth2"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth.method %q", c.Auth.Method))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

// Credentials returns the NTLM credentials.
func (c *Config) Credentials() domain.Credentials {
	return domain.Credentials{
		Username: c.Auth.Username,
		Password: c.Auth.Password,
		Domain:   c.Auth.Domain,
	}
}

// OAuth returns the client credentials settings.
func (c *Config) OAuth() domain.OAuthCredentials {
	return domain.OAuthCredentials{
		TenantID:     c.Auth.TenantID,
		ClientID:     c.Auth.ClientID,
		ClientSecret: c.Auth.ClientSecret,
		Scopes:       c.Auth.Scopes,
	}
}

// envReader collects parse errors while applying variables.
type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) list(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*dst = out
}

func (e *envReader) integer(key string, dst *int) {
	if v, ok := e.get(key); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = i
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = f
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(key string, dst *Duration) {
	if v, ok := e.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = Duration(d)
	}
}
