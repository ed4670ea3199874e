package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentName         = "VETTER_AGENT_NAME"
	EnvAgentProviderName = "VETTER_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "VETTER_AGENT_BASE_URL"
	EnvAgentToken        = "VETTER_AGENT_TOKEN"
	EnvAgentDeployment   = "VETTER_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "VETTER_AGENT_API_VERSION"
	EnvAgentAuthType     = "VETTER_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "VETTER_AGENT_MODEL_NAME"
)

// FinalizeAgent fills a go-agents AgentConfig from DefaultAgentConfig, applies
// VETTER_AGENT_* overrides, and validates the result.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	loadAgentDefaults(c)
	loadAgentEnv(c)
	return validateAgent(c)
}

func loadAgentDefaults(c *gaconfig.AgentConfig) {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults
}

func loadAgentEnv(c *gaconfig.AgentConfig) {
	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}
	if v := os.Getenv(EnvAgentName); v != "" {
		c.Name = v
	}
	if v := os.Getenv(EnvAgentProviderName); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv(EnvAgentBaseURL); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv(EnvAgentModelName); v != "" {
		c.Model.Name = v
	}

	setOption := func(envVar, key string) {
		if v := os.Getenv(envVar); v != "" {
			c.Provider.Options[key] = v
		}
	}

	setOption(EnvAgentToken, "token")
	setOption(EnvAgentDeployment, "deployment")
	setOption(EnvAgentAPIVersion, "api_version")
	setOption(EnvAgentAuthType, "auth_type")
}

func validateAgent(c *gaconfig.AgentConfig) error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.Provider == nil {
		return fmt.Errorf("provider required")
	}
	if c.Provider.Name == "" {
		return fmt.Errorf("provider name required")
	}
	if c.Model == nil {
		return fmt.Errorf("model required")
	}
	return nil
}

// AgentConfig is the [agent] section of config.toml. It is resolved into a
// go-agents AgentConfig during Finalize.
type AgentConfig struct {
	Name     string         `toml:"name"`
	Provider string         `toml:"provider"`
	BaseURL  string         `toml:"base_url"`
	Model    string         `toml:"model"`
	Options  map[string]any `toml:"options"`

	resolved gaconfig.AgentConfig
}

// Resolved returns the go-agents configuration produced by Finalize.
func (c *AgentConfig) Resolved() gaconfig.AgentConfig {
	return c.resolved
}

// Finalize resolves the section through FinalizeAgent and writes the effective
// values back so they can be reported.
func (c *AgentConfig) Finalize() error {
	ga := gaconfig.AgentConfig{
		Name: c.Name,
		Provider: &gaconfig.ProviderConfig{
			Name:    c.Provider,
			BaseURL: c.BaseURL,
			Options: make(map[string]any, len(c.Options)),
		},
		Model: &gaconfig.ModelConfig{Name: c.Model},
	}
	for k, v := range c.Options {
		ga.Provider.Options[k] = v
	}

	if err := FinalizeAgent(&ga); err != nil {
		return err
	}

	c.Name = ga.Name
	c.Provider = ga.Provider.Name
	c.BaseURL = ga.Provider.BaseURL
	c.Model = ga.Model.Name
	c.resolved = ga
	return nil
}

// Merge overwrites non-zero fields from overlay. Options merge per key.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if len(overlay.Options) > 0 {
		if c.Options == nil {
			c.Options = make(map[string]any, len(overlay.Options))
		}
		for k, v := range overlay.Options {
			c.Options[k] = v
		}
	}
}
