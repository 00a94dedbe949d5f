package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// globalViper holds the base configuration state, used as a merge
// template for scoped configuration loads, mirroring the teacher's
// global+domain layering.
var globalViper *viper.Viper

// Load reads and parses a YAML configuration file at path, expanding
// ${VAR} / ${VAR:-default} environment references, and applies spec
// §6.5 defaults to any field left unset. Env vars of the form
// IGNITER_HTTP_PORT also override matching keys automatically.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix("igniter")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	content, err := expandFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	globalViper = v

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	cfg = ApplyDefaults(cfg)
	return &cfg, nil
}

// LoadScoped merges scopePath on top of the most recently Load-ed global
// configuration, mirroring the teacher's LoadDomainConfig: a deep copy of
// the global settings is taken so scoped overrides never leak back into
// the global config or other scopes.
func LoadScoped(scopePath string) (*Config, error) {
	if globalViper == nil {
		return nil, fmt.Errorf("config: LoadScoped called before Load")
	}

	scoped := viper.New()
	scoped.AutomaticEnv()
	scoped.SetEnvPrefix("igniter")
	scoped.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := scoped.MergeConfigMap(globalViper.AllSettings()); err != nil {
		return nil, fmt.Errorf("config: merge global settings: %w", err)
	}

	if scopePath != "" {
		content, err := expandFile(scopePath)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", scopePath, err)
		}
		scoped.SetConfigType("yaml")
		if err := scoped.MergeConfig(strings.NewReader(content)); err != nil {
			return nil, fmt.Errorf("config: merge %s: %w", scopePath, err)
		}
	}

	var cfg Config
	if err := scoped.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode scoped config: %w", err)
	}

	cfg = ApplyDefaults(cfg)
	return &cfg, nil
}

func expandFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return os.Expand(string(content), func(s string) string {
		parts := strings.SplitN(s, ":", 2)
		val := os.Getenv(parts[0])
		if val == "" && len(parts) > 1 {
			return strings.TrimPrefix(parts[1], "-")
		}
		return val
	}), nil
}
