package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/docstamp/internal/engine"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Corpus     CorpusConfig      `yaml:"corpus"`
	Bump       BumpConfig        `yaml:"bump"`
	Validation ValidationConfig  `yaml:"validate"`
	Ledger     LedgerConfig      `yaml:"ledger"`
	Pack       PackConfig        `yaml:"pack"`
	Auth       AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Corpus.Validate(); err != nil {
		return err
	}
	if err := c.Bump.Validate(); err != nil {
		return err
	}
	if err := c.Validation.Validate(); err != nil {
		return err
	}
	if err := c.Pack.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CorpusConfig describes where documents live. Dir and Index are relative
// to Root.
type CorpusConfig struct {
	Root       string   `yaml:"root"`
	Dir        string   `yaml:"dir"`
	Index      string   `yaml:"index"`
	Extensions []string `yaml:"extensions"`
}

// Validate validates the corpus configuration.
func (c *CorpusConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Dir, validation.Required, validation.By(relativePath)),
		validation.Field(&c.Index, validation.By(relativePath)),
		validation.Field(&c.Extensions, validation.Required, validation.Each(validation.By(extension))),
	)
}

func relativePath(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if filepath.IsAbs(s) || strings.HasPrefix(filepath.Clean(s), "..") {
		return errors.New("must be relative to the corpus root")
	}
	return nil
}

func extension(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, ".") || len(s) < 2 {
		return errors.New("must start with a dot, e.g. .md")
	}
	return nil
}

// BumpConfig holds the default bump options.
type BumpConfig struct {
	MarginSeconds int  `yaml:"margin_seconds"`
	DateOnly      bool `yaml:"date_only"`
	SyncMTime     bool `yaml:"sync_mtime"`
	HeaderWindow  int  `yaml:"header_window"`
}

// Validate validates the bump configuration.
func (c *BumpConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MarginSeconds, validation.Min(0)),
		validation.Field(&c.HeaderWindow, validation.Required, validation.Min(1)),
	)
}

// Options converts the configuration into engine options.
func (c *BumpConfig) Options() engine.Options {
	return engine.Options{
		DateOnly:    c.DateOnly,
		Margin:      time.Duration(c.MarginSeconds) * time.Second,
		SyncModTime: c.SyncMTime,
	}
}

// ValidationConfig holds corpus validation configuration.
type ValidationConfig struct {
	HeaderWindow int `yaml:"header_window"`
}

// Validate validates the validation configuration.
func (c *ValidationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HeaderWindow, validation.Required, validation.Min(1)),
	)
}

// LedgerConfig holds the SQLite ledger location. An empty Path disables the
// ledger; a relative Path is resolved against the corpus root.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether bumps are recorded.
func (c *LedgerConfig) Enabled() bool {
	return c.Path != ""
}

// PackConfig holds the archive defaults. Root is relative to the corpus
// root; Out is relative to the working directory.
type PackConfig struct {
	Root string `yaml:"root"`
	Out  string `yaml:"out"`
}

// Validate validates the pack configuration.
func (c *PackConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Out, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Corpus: CorpusConfig{
			Root:       ".",
			Dir:        "Context",
			Index:      "Context/System/Context_Index.md",
			Extensions: []string{".md"},
		},
		Bump: BumpConfig{
			MarginSeconds: 2,
			SyncMTime:     true,
			HeaderWindow:  40,
		},
		Validation: ValidationConfig{
			HeaderWindow: 30,
		},
		Ledger: LedgerConfig{
			Path: ".docstamp/ledger.db",
		},
		Pack: PackConfig{
			Root: "Context",
			Out:  "Project_Pack.zip",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
