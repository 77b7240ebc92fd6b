package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const defaultServerURL = "http://localhost:7790"

// ServerConfig is one named diagnostics server
type ServerConfig struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// Config is the CLI profile file
type Config struct {
	DefaultServer string                  `yaml:"default_server"`
	Servers       map[string]ServerConfig `yaml:"servers"`
	configPath    string
}

// DefaultConfigPath returns ~/.aerograph/config.yaml, creating the directory
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".aerograph")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// LoadConfig loads the profile file from its default location
func LoadConfig() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(path)
}

// LoadConfigFrom loads path, writing a single "local" profile when it does not exist
func LoadConfigFrom(path string) (*Config, error) {
	cfg := &Config{
		configPath: path,
		Servers:    make(map[string]ServerConfig),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.DefaultServer = "local"
		cfg.Servers["local"] = ServerConfig{
			URL:         defaultServerURL,
			Description: "Local AeroGraph diagnostics service",
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Servers == nil {
		cfg.Servers = make(map[string]ServerConfig)
	}
	cfg.configPath = path
	return cfg, nil
}

// Save writes the profile file
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.configPath, data, 0600)
}

// AddServer adds or replaces a profile. The first profile becomes the default.
func (c *Config) AddServer(name, url, description string) error {
	if name == "" {
		return fmt.Errorf("server name cannot be empty")
	}
	if url == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	c.Servers[name] = ServerConfig{URL: url, Description: description}
	if c.DefaultServer == "" {
		c.DefaultServer = name
	}
	return c.Save()
}

// RemoveServer deletes a profile, promoting the first remaining name when it was the default
func (c *Config) RemoveServer(name string) error {
	if _, exists := c.Servers[name]; !exists {
		return fmt.Errorf("server '%s' not found", name)
	}

	delete(c.Servers, name)
	if c.DefaultServer == name {
		c.DefaultServer = ""
		if names := c.Names(); len(names) > 0 {
			c.DefaultServer = names[0]
		}
	}
	return c.Save()
}

// SetDefault selects the default profile
func (c *Config) SetDefault(name string) error {
	if _, exists := c.Servers[name]; !exists {
		return fmt.Errorf("server '%s' not found", name)
	}
	c.DefaultServer = name
	return c.Save()
}

// GetServer returns the named profile, or the default when name is empty
func (c *Config) GetServer(name string) (*ServerConfig, error) {
	if name == "" {
		name = c.DefaultServer
	}
	server, exists := c.Servers[name]
	if !exists {
		return nil, fmt.Errorf("server '%s' not found", name)
	}
	return &server, nil
}

// Names lists profile names in sorted order
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
