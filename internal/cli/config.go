package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/derivgraph/pkg/errors"
	"github.com/matzehuels/derivgraph/pkg/render/nodelink"
)

// Config is the optional config.toml:
//
//	[cache]
//	dir = "/var/cache/derivgraph"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "168h"
//
//	[render]
//	format = "svg"
//	detailed = true
//	children = false
//
//	[serve]
//	addr = "localhost:8080"
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Render RenderConfig `toml:"render"`
	Serve  ServeConfig  `toml:"serve"`
}

type CacheConfig struct {
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url"`
	TTL      time.Duration `toml:"ttl"`
}

type RenderConfig struct {
	Format   string `toml:"format"`
	Detailed bool   `toml:"detailed"`
	Children bool   `toml:"children"`
}

type ServeConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Cache:  CacheConfig{TTL: 7 * 24 * time.Hour},
		Render: RenderConfig{Format: nodelink.FormatSVG},
		Serve:  ServeConfig{Addr: "localhost:8080"},
	}
}

// LoadConfig reads the config file at path over the defaults. An empty path
// means the default location, which may be absent; an explicit path must
// exist.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return DefaultConfig(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file not found: %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "cannot parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains(nodelink.Formats, c.Render.Format) {
		return errs.New(errs.ErrCodeInvalidInput, "render.format %q is not one of %s", c.Render.Format, strings.Join(nodelink.Formats, ", "))
	}
	if c.Cache.TTL < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Serve.Addr == "" {
		return errs.New(errs.ErrCodeInvalidInput, "serve.addr must not be empty")
	}
	return nil
}
