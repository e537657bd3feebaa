// internal/config/config.go
//
// This package handles configuration and the .tourdesk directory structure.
// Every project that uses tourdesk gets a .tourdesk/ folder in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the directory we create in each project
	Dir = ".tourdesk"

	DefaultBackendTimeout = 15 * time.Second
	DefaultServerAddr     = "127.0.0.1:8780"
	DefaultLocale         = "en-US"
	DefaultCurrency       = "USD"

	defaultCatalogFile = Dir + "/catalog.yaml"
	defaultDatabase    = Dir + "/data/tours.db"
)

const defaultProjectConfigYAML = `# tourdesk project configuration
version: 1

# Tour backend. Leave url empty to work offline against the local store
# and catalog file below.
backend:
  url: ""
  timeout: 15s

# Catalog used offline and served by 'tourdesk serve'.
catalog:
  file: .tourdesk/catalog.yaml

server:
  addr: 127.0.0.1:8780
  database: .tourdesk/data/tours.db

display:
  locale: en-US
  currency: USD
`

// BackendConfig points the editor at a tour backend.
type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// CatalogConfig locates the YAML catalog file.
type CatalogConfig struct {
	File string `yaml:"file"`
}

// ServerConfig configures the reference backend.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	Database     string `yaml:"database"`
	MaxBodyBytes int64  `yaml:"max_body_bytes,omitempty"`
}

// DisplayConfig controls how prices are rendered.
type DisplayConfig struct {
	Locale   string `yaml:"locale"`
	Currency string `yaml:"currency"`
}

// ProjectConfig models .tourdesk/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Backend BackendConfig `yaml:"backend"`
	Catalog CatalogConfig `yaml:"catalog"`
	Server  ServerConfig  `yaml:"server"`
	Display DisplayConfig `yaml:"display"`
}

// envOverrides are read after the file and win over it.
type envOverrides struct {
	BackendURL     string        `env:"TOURDESK_BACKEND_URL"`
	BackendTimeout time.Duration `env:"TOURDESK_BACKEND_TIMEOUT"`
	CatalogFile    string        `env:"TOURDESK_CATALOG_FILE"`
	ServerAddr     string        `env:"TOURDESK_SERVER_ADDR"`
	Database       string        `env:"TOURDESK_DATABASE"`
}

// Config holds the runtime configuration for tourdesk.
type Config struct {
	// ProjectDir is the directory tourdesk was started from
	ProjectDir string

	// Root is ProjectDir/.tourdesk
	Root string

	Project ProjectConfig
}

// InitDir creates the .tourdesk directory structure in projectDir.
//
// Structure created:
// .tourdesk/
// ├── config.yaml
// ├── catalog.yaml  <- sample catalog for offline use
// ├── logs/         <- session journals
// └── data/         <- SQLite store of the reference backend
func InitDir(projectDir string) error {
	root := filepath.Join(projectDir, Dir)
	for _, dir := range []string{
		filepath.Join(root, "logs"),
		filepath.Join(root, "data"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	if err := ensureFile(filepath.Join(root, "config.yaml"), defaultProjectConfigYAML); err != nil {
		return fmt.Errorf("config: write config: %w", err)
	}
	if err := ensureFile(filepath.Join(root, "catalog.yaml"), sampleCatalogYAML); err != nil {
		return fmt.Errorf("config: write sample catalog: %w", err)
	}
	return nil
}

// Load reads .tourdesk/config.yaml under projectDir, applies environment
// overrides and validates the result. A missing file yields the defaults.
func Load(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", projectDir, err)
	}
	cfg := &Config{
		ProjectDir: abs,
		Root:       filepath.Join(abs, Dir),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.Root, "logs")
}

// DataDir returns the path to the data directory
func (c *Config) DataDir() string {
	return filepath.Join(c.Root, "data")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.Root, "config.yaml")
}

// CatalogPath returns the absolute path of the catalog file.
func (c *Config) CatalogPath() string { return c.Project.Catalog.File }

// DatabasePath returns the absolute path of the reference backend's database.
func (c *Config) DatabasePath() string { return c.Project.Server.Database }

// BackendURL returns the configured backend, or "" when working offline.
func (c *Config) BackendURL() string { return c.Project.Backend.URL }

// Offline reports whether no remote backend is configured.
func (c *Config) Offline() bool { return c.Project.Backend.URL == "" }

func (c *Config) BackendTimeout() time.Duration { return c.Project.Backend.Timeout }
func (c *Config) ServerAddr() string            { return c.Project.Server.Addr }

// Locale returns the display language tag.
func (c *Config) Locale() language.Tag {
	return language.Make(c.Project.Display.Locale)
}

// Currency returns the display currency unit.
func (c *Config) Currency() currency.Unit {
	unit, err := currency.ParseISO(c.Project.Display.Currency)
	if err != nil {
		return currency.USD
	}
	return unit
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	parsed := defaultProjectConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	parsed.applyEnv(overrides)
	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Backend: BackendConfig{Timeout: DefaultBackendTimeout},
		Catalog: CatalogConfig{File: defaultCatalogFile},
		Server:  ServerConfig{Addr: DefaultServerAddr, Database: defaultDatabase},
		Display: DisplayConfig{Locale: DefaultLocale, Currency: DefaultCurrency},
	}
}

func (pc *ProjectConfig) applyEnv(o envOverrides) {
	if o.BackendURL != "" {
		pc.Backend.URL = o.BackendURL
	}
	if o.BackendTimeout > 0 {
		pc.Backend.Timeout = o.BackendTimeout
	}
	if o.CatalogFile != "" {
		pc.Catalog.File = o.CatalogFile
	}
	if o.ServerAddr != "" {
		pc.Server.Addr = o.ServerAddr
	}
	if o.Database != "" {
		pc.Server.Database = o.Database
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Backend.Timeout <= 0 {
		pc.Backend.Timeout = DefaultBackendTimeout
	}
	if strings.TrimSpace(pc.Catalog.File) == "" {
		pc.Catalog.File = defaultCatalogFile
	}
	if strings.TrimSpace(pc.Server.Addr) == "" {
		pc.Server.Addr = DefaultServerAddr
	}
	if strings.TrimSpace(pc.Server.Database) == "" {
		pc.Server.Database = defaultDatabase
	}
	if strings.TrimSpace(pc.Display.Locale) == "" {
		pc.Display.Locale = DefaultLocale
	}
	if strings.TrimSpace(pc.Display.Currency) == "" {
		pc.Display.Currency = DefaultCurrency
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Backend.URL = strings.TrimRight(strings.TrimSpace(pc.Backend.URL), "/")
	pc.Catalog.File = resolvePath(base, pc.Catalog.File)
	pc.Server.Addr = strings.TrimSpace(pc.Server.Addr)
	pc.Server.Database = resolvePath(base, pc.Server.Database)
	pc.Display.Locale = strings.TrimSpace(pc.Display.Locale)
	pc.Display.Currency = strings.ToUpper(strings.TrimSpace(pc.Display.Currency))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Backend.URL != "" {
		u, err := url.Parse(pc.Backend.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("backend.url must be an http(s) URL, got %q", pc.Backend.URL)
		}
	}
	if _, _, err := net.SplitHostPort(pc.Server.Addr); err != nil {
		return fmt.Errorf("server.addr: %w", err)
	}
	if pc.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative")
	}
	if _, err := language.Parse(pc.Display.Locale); err != nil {
		return fmt.Errorf("display.locale: %w", err)
	}
	if _, err := currency.ParseISO(pc.Display.Currency); err != nil {
		return fmt.Errorf("display.currency: %w", err)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureFile(path, contents string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(contents), 0o644)
}
