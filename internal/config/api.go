package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/vetter/pkg/formatting"
	"github.com/JaimeStill/vetter/pkg/middleware"
	"github.com/JaimeStill/vetter/pkg/openapi"
	"github.com/JaimeStill/vetter/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "VETTER_CORS_ENABLED",
	Origins:          "VETTER_CORS_ORIGINS",
	AllowedMethods:   "VETTER_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "VETTER_CORS_ALLOWED_HEADERS",
	AllowCredentials: "VETTER_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "VETTER_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "VETTER_OPENAPI_TITLE",
	Description: "VETTER_OPENAPI_DESCRIPTION",
	Path:        "VETTER_OPENAPI_PATH",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "VETTER_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "VETTER_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, request limits, CORS, OpenAPI, and pagination settings.
type APIConfig struct {
	BasePath       string                `toml:"base_path"`
	MaxRequestSize string                `toml:"max_request_size"`
	CORS           middleware.CORSConfig `toml:"cors"`
	OpenAPI        openapi.Config        `toml:"openapi"`
	Pagination     pagination.Config     `toml:"pagination"`
}

// MaxRequestSizeBytes returns MaxRequestSize in bytes. Finalize guarantees it parses.
func (c *APIConfig) MaxRequestSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxRequestSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxRequestSize); err != nil {
		return fmt.Errorf("invalid max_request_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxRequestSize != "" {
		c.MaxRequestSize = overlay.MaxRequestSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxRequestSize == "" {
		c.MaxRequestSize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("VETTER_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("VETTER_API_MAX_REQUEST_SIZE"); v != "" {
		c.MaxRequestSize = v
	}
}
