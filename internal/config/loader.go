package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads the main project configuration from kudzu.yaml in dir,
// falling back to defaults when no file exists.
func Load(dir string) (*Config, error) {
	configFile := filepath.Join(dir, "kudzu.yaml")

	content, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Interpolate environment variables
	content = []byte(interpolateEnv(string(content)))

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// interpolateEnv replaces ${env.VAR} and ${VAR} with environment values
func interpolateEnv(content string) string {
	envPattern := regexp.MustCompile(`\$\{env\.([^}]+)\}`)
	content = envPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := envPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // keep original if not found
	})

	varPattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	content = varPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := varPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return content
}

func defaultConfig() *Config {
	cfg := &Config{
		Name:    "kudzu-project",
		Version: "1.0",
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Node.ID == "" {
		if host, err := os.Hostname(); err == nil {
			cfg.Node.ID = host
		} else {
			cfg.Node.ID = "node-local"
		}
	}
	if cfg.Memory.Dimension == 0 {
		cfg.Memory.Dimension = 512
	}
	if cfg.Memory.BlendStrength == 0 {
		cfg.Memory.BlendStrength = 0.3
	}
	if cfg.Memory.DecayFactor == 0 {
		cfg.Memory.DecayFactor = 0.98
	}
	if cfg.Memory.PruneThreshold == 0 {
		cfg.Memory.PruneThreshold = 1.0
	}
	if cfg.Memory.RecallLimit == 0 {
		cfg.Memory.RecallLimit = 10
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = ".kudzu/memory.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errors []string

	if cfg.Memory.Dimension < 2 {
		errors = append(errors, fmt.Sprintf("dimension must be >= 2, got %d", cfg.Memory.Dimension))
	}
	if cfg.Memory.BlendStrength < 0 || cfg.Memory.BlendStrength > 1 {
		errors = append(errors, fmt.Sprintf("blend_strength must be in [0,1], got %g", cfg.Memory.BlendStrength))
	}
	if cfg.Memory.DecayFactor <= 0 || cfg.Memory.DecayFactor > 1 {
		errors = append(errors, fmt.Sprintf("decay_factor must be in (0,1], got %g", cfg.Memory.DecayFactor))
	}
	if cfg.Store.Driver != "sqlite" {
		errors = append(errors, fmt.Sprintf("unsupported store driver: %s", cfg.Store.Driver))
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}
