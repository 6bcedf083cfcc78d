package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// LoaderOptions describes how configuration should be discovered.
type LoaderOptions struct {
	ConfigPaths []string
	FileName    string
	EnvPrefix   string
}

// Load returns the merged configuration from files and environment variables.
func Load(opts LoaderOptions) (Config, error) {
	v := viper.New()

	name := opts.FileName
	if name == "" {
		name = "fbgen"
	}

	configFile := locateConfigFile(name, opts.ConfigPaths)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(name)
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = "FBGEN"
	}
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AllowEmptyEnv(true)

	setDefaults(v)

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Expand environment variables in config values
	cfg = expandEnvVars(cfg)

	return cfg, nil
}

// expandEnvVars expands ${VAR} and $VAR syntax in configuration strings.
func expandEnvVars(cfg Config) Config {
	cfg.Paths.ProblemStatement = expandEnvString(cfg.Paths.ProblemStatement)
	cfg.Paths.Rubric = expandEnvString(cfg.Paths.Rubric)
	cfg.Paths.InputDir = expandEnvString(cfg.Paths.InputDir)
	cfg.Paths.IntermediateDir = expandEnvString(cfg.Paths.IntermediateDir)
	cfg.Paths.OutputDir = expandEnvString(cfg.Paths.OutputDir)

	cfg.Review.Model = expandEnvString(cfg.Review.Model)
	cfg.Review.SummarizerModel = expandEnvString(cfg.Review.SummarizerModel)

	cfg.Provider.Name = expandEnvString(cfg.Provider.Name)
	cfg.Provider.APIKey = expandEnvString(cfg.Provider.APIKey)
	cfg.Provider.BaseURL = expandEnvString(cfg.Provider.BaseURL)
	cfg.Provider.Timeout = expandEnvString(cfg.Provider.Timeout)

	cfg.Store.Path = expandEnvString(cfg.Store.Path)

	cfg.Observability.Logging.Level = expandEnvString(cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = expandEnvString(cfg.Observability.Logging.Format)

	return cfg
}

// expandEnvString replaces ${VAR} or $VAR with environment variable values.
func expandEnvString(s string) string {
	if s == "" {
		return s
	}

	// Replace ${VAR} syntax
	re := regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Keep original if not found
	})

	// Replace $VAR syntax (without braces)
	re = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Keep original if not found
	})

	return s
}

func locateConfigFile(name string, paths []string) string {
	searchPaths := append([]string{}, paths...)
	searchPaths = append(searchPaths, ".")
	for _, dir := range searchPaths {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name+".yaml")
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	// Working directories
	v.SetDefault("paths.inputDir", "input")
	v.SetDefault("paths.intermediateDir", "intermediates")
	v.SetDefault("paths.outputDir", "output")

	// Review defaults
	v.SetDefault("review.model", "gpt-4o")
	v.SetDefault("review.summarizerModel", "gpt-4o-mini")
	v.SetDefault("review.threshold", 10)
	v.SetDefault("review.wrapWidth", 80)
	v.SetDefault("review.language", ".c")

	// Provider defaults
	v.SetDefault("provider.name", "openai")
	v.SetDefault("provider.timeout", "120s")

	// Store defaults
	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", defaultStorePath())

	// Observability defaults
	v.SetDefault("observability.logging.enabled", true)
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "")
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./metering.db"
	}
	return filepath.Join(home, ".config", "fbgen", "metering.db")
}
