package buildconfig

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	Development = "development"
	Production  = "production"
)

var (
	ErrUnknownMode   = errors.New("unknown build mode")
	ErrUnknownPlugin = errors.New("unknown build plugin")
)

// KnownPlugins are the plugin names the asset pipeline can register.
var KnownPlugins = []string{"routes", "env"}

// ServerConfig configures the development server.
type ServerConfig struct {
	// Host binds all interfaces when true, loopback otherwise
	Host bool `yaml:"host"`
	Port int  `yaml:"port"`
}

// Config is the front-end build configuration for one mode.
type Config struct {
	Mode        string       `yaml:"-"`
	Plugins     []string     `yaml:"plugins"`
	Base        string       `yaml:"base"`
	OutDir      string       `yaml:"outDir"`
	AssetsDir   string       `yaml:"assetsDir"`
	EntryPoints []string     `yaml:"entryPoints"`
	Minify      bool         `yaml:"minify"`
	SourceMap   bool         `yaml:"sourceMap"`
	Server      ServerConfig `yaml:"server"`
}

// Defaults returns the built-in configuration for a mode. The modes differ
// only in base path: relative for development, absolute for production.
func Defaults(mode string) (Config, error) {
	cfg := Config{
		Mode:        mode,
		Plugins:     []string{"routes", "env"},
		OutDir:      "dist",
		AssetsDir:   "assets",
		EntryPoints: []string{"ui/main.ts"},
		Minify:      true,
		SourceMap:   true,
		Server: ServerConfig{
			Host: true,
			Port: 5173,
		},
	}

	switch mode {
	case Development:
		cfg.Base = "./"
	case Production:
		cfg.Base = "/"
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	return cfg, nil
}

type file struct {
	Defaults yaml.Node            `yaml:"defaults"`
	Modes    map[string]yaml.Node `yaml:"modes"`
}

// Load reads the YAML build file at path and returns the configuration for
// mode. A missing file yields the built-in defaults.
func Load(filePath, mode string) (Config, error) {
	cfg, err := Defaults(mode)
	if err != nil {
		return Config{}, err
	}

	if filePath == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return Config{}, fmt.Errorf("failed to read build config: %w", err)
	}

	return parse(data, cfg)
}

// Parse applies YAML overrides to the built-in configuration for mode.
func Parse(data []byte, mode string) (Config, error) {
	cfg, err := Defaults(mode)
	if err != nil {
		return Config{}, err
	}
	return parse(data, cfg)
}

func parse(data []byte, cfg Config) (Config, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Config{}, fmt.Errorf("failed to parse build config: %w", err)
	}

	if !f.Defaults.IsZero() {
		if err := f.Defaults.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode defaults: %w", err)
		}
	}

	if node, ok := f.Modes[cfg.Mode]; ok && !node.IsZero() {
		if err := node.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode %s overrides: %w", cfg.Mode, err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.Base == "" || (!strings.HasPrefix(c.Base, "/") && !strings.HasPrefix(c.Base, "./")) {
		return fmt.Errorf("base must be relative (./) or absolute (/), got %q", c.Base)
	}
	if c.OutDir == "" {
		return errors.New("outDir is required")
	}
	if len(c.EntryPoints) == 0 {
		return errors.New("at least one entry point is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	for _, name := range c.Plugins {
		if !slices.Contains(KnownPlugins, name) {
			return fmt.Errorf("%w: %q", ErrUnknownPlugin, name)
		}
	}
	return nil
}

// ListenAddr is the address the development server binds.
func (c Config) ListenAddr() string {
	host := "127.0.0.1"
	if c.Server.Host {
		host = "0.0.0.0"
	}
	return net.JoinHostPort(host, strconv.Itoa(c.Server.Port))
}

// AssetsPath is the directory bundles are written to.
func (c Config) AssetsPath() string {
	return path.Join(c.OutDir, c.AssetsDir)
}

// AssetURL returns the URL a page uses to reference a built file.
func (c Config) AssetURL(name string) string {
	rel := path.Join(c.AssetsDir, name)
	if strings.HasSuffix(c.Base, "/") {
		return c.Base + rel
	}
	return c.Base + "/" + rel
}

// PageAssetURL resolves a built file for a page served at pagePath. Relative
// bases are rewritten so the URL climbs back to the site root.
func (c Config) PageAssetURL(pagePath, name string) string {
	if strings.HasPrefix(c.Base, "/") {
		return c.AssetURL(name)
	}

	// the browser resolves against everything up to the last slash,
	// empty segments included
	depth := strings.Count(pagePath, "/") - 1
	prefix := "./"
	if depth > 0 {
		prefix = strings.Repeat("../", depth)
	}
	return prefix + strings.TrimPrefix(c.AssetURL(name), "./")
}

// HasPlugin reports whether the named plugin is enabled.
func (c Config) HasPlugin(name string) bool {
	return slices.Contains(c.Plugins, name)
}
