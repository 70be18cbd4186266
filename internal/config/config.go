// Package config handles loading, saving, and resolving the TagScout
// machine configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

const (
	// LocalConfigFilename is the per-directory TagScout config file.
	LocalConfigFilename = ".tagscout.yaml"
	// ConfigAPIVersion is the current config schema apiVersion.
	ConfigAPIVersion = "skaphos.io/tagscout/v1beta1"
	// ConfigKind is the current config schema kind.
	ConfigKind = "TagScoutConfig"
	// DefaultDatasetFilename is the dataset file written next to the config
	// when dataset_path is not set.
	DefaultDatasetFilename = "tagscout-tags.json"
)

// Defaults holds default values for scan operations.
type Defaults struct {
	// ResultCap bounds the total matches collected by a pattern scan.
	ResultCap int `yaml:"result_cap"`
	// TagWindow bounds how many tags per repository a pattern scan inspects.
	TagWindow int `yaml:"tag_window"`
	// TimeoutSeconds is the per-lookup timeout for source adapter calls.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// IncludeVPrefix controls whether exact scans also test the "v"-prefixed
	// tag form.
	IncludeVPrefix bool `yaml:"include_v_prefix"`
}

// Config represents the machine-level TagScout configuration.
type Config struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	// Organization is the default remote hosting organization to scan.
	Organization string `yaml:"organization,omitempty"`
	// Roots are the default local filesystem roots for local scans.
	Roots []string `yaml:"roots,omitempty"`
	// Exclude are glob patterns skipped during local repository discovery.
	Exclude []string `yaml:"exclude"`
	// DatasetPath is where aggregated scan reports are kept. Relative paths
	// resolve against the config file location.
	DatasetPath string   `yaml:"dataset_path,omitempty"`
	Defaults    Defaults `yaml:"defaults"`
}

// DefaultConfig returns a Config with sensible defaults applied.
func DefaultConfig() Config {
	return Config{
		APIVersion:  ConfigAPIVersion,
		Kind:        ConfigKind,
		Exclude:     []string{"**/node_modules/**", "**/.terraform/**", "**/dist/**", "**/vendor/**"},
		DatasetPath: DefaultDatasetFilename,
		Defaults: Defaults{
			ResultCap:      50,
			TagWindow:      10,
			TimeoutSeconds: 60,
			IncludeVPrefix: true,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory path.
// It checks, in order: the override parameter, TAGSCOUT_CONFIG env var,
// and finally os.UserConfigDir()/tagscout.
func ConfigDir(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return filepath.Dir(override), nil
		}
		return override, nil
	}

	if env := os.Getenv("TAGSCOUT_CONFIG"); env != "" {
		if isConfigFilePath(env) {
			return filepath.Dir(env), nil
		}
		return env, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "tagscout"), nil
}

// ConfigPath resolves the config file path from override/env/defaults.
func ConfigPath(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return override, nil
		}
		return filepath.Join(override, "config.yaml"), nil
	}

	if env := os.Getenv("TAGSCOUT_CONFIG"); env != "" {
		if isConfigFilePath(env) {
			return env, nil
		}
		return filepath.Join(env, "config.yaml"), nil
	}

	dir, err := ConfigDir("")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// InitConfigPath resolves where "tagscout init" should write config.
// Order: explicit override, TAGSCOUT_CONFIG, then local dotfile in cwd.
func InitConfigPath(override, cwd string) (string, error) {
	if override != "" || os.Getenv("TAGSCOUT_CONFIG") != "" {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(cwd, LocalConfigFilename), nil
}

// ResolveConfigPath resolves config for runtime commands.
// Order: explicit override, TAGSCOUT_CONFIG, nearest local dotfile in
// cwd/parents, then global platform config path.
func ResolveConfigPath(override, cwd string) (string, error) {
	if override != "" || os.Getenv("TAGSCOUT_CONFIG") != "" {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	localPath, err := FindNearestConfigPath(cwd)
	if err != nil {
		return "", err
	}
	if localPath != "" {
		return localPath, nil
	}

	return ConfigPath("")
}

// FindNearestConfigPath searches cwd and each parent directory for .tagscout.yaml.
// It returns an empty string when no local config file is found.
func FindNearestConfigPath(cwd string) (string, error) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, LocalConfigFilename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if err != nil && !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads the config file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigGVK(&cfg)
	if err := validateConfigGVK(&cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.DatasetPath) == "" {
		cfg.DatasetPath = DefaultDatasetFilename
	}
	defaults := DefaultConfig().Defaults
	if cfg.Defaults.ResultCap <= 0 {
		cfg.Defaults.ResultCap = defaults.ResultCap
	}
	if cfg.Defaults.TagWindow <= 0 {
		cfg.Defaults.TagWindow = defaults.TagWindow
	}
	if cfg.Defaults.TimeoutSeconds <= 0 {
		cfg.Defaults.TimeoutSeconds = defaults.TimeoutSeconds
	}

	return &cfg, nil
}

// ResolveDatasetPath resolves dataset_path against the config file location.
// Absolute paths are returned unchanged; relative paths are joined to the
// directory containing configPath.
func ResolveDatasetPath(configPath, datasetPath string) string {
	if strings.TrimSpace(datasetPath) == "" {
		return ""
	}
	if filepath.IsAbs(datasetPath) || strings.TrimSpace(configPath) == "" {
		return filepath.Clean(datasetPath)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(configPath), datasetPath))
}

// ConfigRoot returns the effective default root for a config file path.
func ConfigRoot(configPath string) string {
	if strings.TrimSpace(configPath) == "" {
		return ""
	}
	return filepath.Clean(filepath.Dir(configPath))
}

// Save writes the config to the given path.
func Save(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	applyConfigGVK(cfg)
	if err := validateConfigGVK(cfg); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LastUpdated is a helper to get "now" in a consistent format for timestamps.
func LastUpdated() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func isConfigFilePath(path string) bool {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, "config.yaml") || strings.HasSuffix(lower, "config.yml") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func applyConfigGVK(cfg *Config) {
	if cfg == nil {
		return
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = ConfigAPIVersion
	}
	if strings.TrimSpace(cfg.Kind) == "" {
		cfg.Kind = ConfigKind
	}
}

func validateConfigGVK(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.APIVersion != ConfigAPIVersion {
		return fmt.Errorf("unsupported config apiVersion %q (expected %q)", cfg.APIVersion, ConfigAPIVersion)
	}
	if cfg.Kind != ConfigKind {
		return fmt.Errorf("unsupported config kind %q (expected %q)", cfg.Kind, ConfigKind)
	}
	return nil
}
