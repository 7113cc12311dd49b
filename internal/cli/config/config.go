// Package config loads the onnxscore CLI configuration. Settings merge in
// order: built-in defaults, an optional onnxscore.yaml file, ONNXSCORE_*
// environment variables, then command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds the resolved CLI settings.
type Config struct {
	Model      string `koanf:"model"`
	Input      string `koanf:"input"`
	Output     string `koanf:"output"`
	Runtime    string `koanf:"runtime"`
	DB         string `koanf:"db"`
	Query      string `koanf:"query"`
	VectorSize int    `koanf:"vector-size"`
	Limit      int    `koanf:"limit"`
	Verbose    bool   `koanf:"verbose"`
}

// findDefaultConfigFile looks for onnxscore.yaml or onnxscore.yml in the
// working directory.
func findDefaultConfigFile() string {
	for _, name := range []string{"onnxscore.yaml", "onnxscore.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load merges defaults, the config file, environment, and flags into a
// Config. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"input":  "features",
		"output": "score",
		"limit":  20,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	cfgFile := path
	if cfgFile == "" {
		cfgFile = findDefaultConfigFile()
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.Provider("ONNXSCORE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "ONNXSCORE_")), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		// Only flags the user actually set override file and env values.
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return f.Name, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
