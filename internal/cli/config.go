package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/eiffelgen/internal/attr"
	"github.com/roach88/eiffelgen/internal/contract"
)

// DefaultConfigFile is looked up in the working directory when no --config
// flag is given. A missing default file is not an error.
const DefaultConfigFile = ".eiffelgen.yaml"

// Config holds project-level settings.
type Config struct {
	// DefaultTiming replaces "before_and_after" as the timing used when a
	// directive or policy rule supplies none. Accepts the same vocabulary
	// as directives, synonyms included.
	DefaultTiming string `yaml:"default_timing"`

	// Manifest is the default manifest database path for generate and
	// the manifest subcommands. The --manifest flag overrides it.
	Manifest string `yaml:"manifest"`

	// Policy is the default policy directory for generate and check.
	// The --policy flag overrides it.
	Policy string `yaml:"policy"`
}

// LoadConfig reads a YAML config file. When path is empty the default file
// is tried and its absence yields an empty config.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.DefaultTiming != "" {
		if _, ok := attr.ParseTiming(cfg.DefaultTiming); !ok {
			return nil, fmt.Errorf("config %s: invalid default_timing %q", path, cfg.DefaultTiming)
		}
	}

	return &cfg, nil
}

// ResolvedTiming returns the configured default timing, falling back to the
// canonical default.
func (c *Config) ResolvedTiming() contract.Timing {
	if c == nil || c.DefaultTiming == "" {
		return contract.CheckBeforeAndAfter
	}
	t, ok := attr.ParseTiming(c.DefaultTiming)
	if !ok {
		return contract.CheckBeforeAndAfter
	}
	return t
}
