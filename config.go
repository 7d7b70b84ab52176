package keyb

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes how to build a Session: which layout and code page to
// start from, where to look for .KL/.KCL/.CPI/.CPX files beyond the
// built-in blobs, and whether to hot-reload on file changes.
type Config struct {
	InitialLayout   string   `yaml:"initial_layout"`
	InitialCodePage int      `yaml:"initial_codepage"`
	ResourceDirs    []string `yaml:"resource_dirs"`
	WatchResources  bool     `yaml:"watch_resources"`
}

// DefaultConfig is the identity configuration: US layout, CP437, no
// search directories beyond the built-in blobs.
func DefaultConfig() Config {
	return Config{InitialLayout: "us", InitialCodePage: 437}
}

// LoadConfig reads a YAML config file into Config, starting from
// DefaultConfig so an omitted field keeps its default.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("keyb: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("keyb: parsing config %s: %w", path, err)
	}
	return cfg, nil
}
