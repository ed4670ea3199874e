package openapi

import (
	"fmt"
	"os"
	"strings"
)

// Config controls the generated document and where it is served.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	Path        string `toml:"path"`
}

// ConfigEnv names the environment variables that override Config fields.
type ConfigEnv struct {
	Title       string
	Description string
	Path        string
}

// Finalize fills defaults, applies env overrides, and validates the path.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.Title == "" {
		c.Title = "Vetter API"
	}
	if c.Description == "" {
		c.Description = "Product eligibility decisions against a versioned rule catalog."
	}
	if c.Path == "" {
		c.Path = "/openapi.json"
	}

	if env != nil {
		for _, o := range []struct {
			name string
			dst  *string
		}{
			{env.Title, &c.Title},
			{env.Description, &c.Description},
			{env.Path, &c.Path},
		} {
			if o.name == "" {
				continue
			}
			if v := os.Getenv(o.name); v != "" {
				*o.dst = v
			}
		}
	}

	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("openapi path must start with /: %q", c.Path)
	}
	return nil
}

// Merge overwrites fields that are set in overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
}
