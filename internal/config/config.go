// Package config is the single source of truth for runtime configuration
// and filesystem paths. Configuration is layered: built-in defaults, an
// optional YAML file, then environment variables with the EMI prefix.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Processing ProcessingConfig `yaml:"processing" envconfig:"PROCESSING"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration. Relative paths
// resolve against the executable directory, never the working directory.
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	InputDir      string `yaml:"input_dir" envconfig:"INPUT_DIR" default:"raw" validate:"required"`
	OutputDir     string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output" validate:"required"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs" validate:"required"`
}

// ProcessingConfig contains document processing configuration
type ProcessingConfig struct {
	OutputPrefix string `yaml:"output_prefix" envconfig:"OUTPUT_PREFIX" default:"Processed_" validate:"required"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("EMI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	// Resolve relative paths
	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence;
// envconfig fills unset variables with struct defaults, so only fields
// the file explicitly sets and the environment leaves at default move over)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if fileConfig.Logging.Level != "" && !envSet("EMI_LOGGING_LEVEL") {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if fileConfig.Logging.Output != "" && !envSet("EMI_LOGGING_OUTPUT") {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if fileConfig.Logging.FilePath != "" && !envSet("EMI_LOGGING_FILE_PATH") {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if fileConfig.Paths.InputDir != "" && !envSet("EMI_PATHS_INPUT_DIR") {
		envConfig.Paths.InputDir = fileConfig.Paths.InputDir
	}
	if fileConfig.Paths.OutputDir != "" && !envSet("EMI_PATHS_OUTPUT_DIR") {
		envConfig.Paths.OutputDir = fileConfig.Paths.OutputDir
	}
	if fileConfig.Paths.LogsDir != "" && !envSet("EMI_PATHS_LOGS_DIR") {
		envConfig.Paths.LogsDir = fileConfig.Paths.LogsDir
	}
	if fileConfig.Processing.OutputPrefix != "" && !envSet("EMI_PROCESSING_OUTPUT_PREFIX") {
		envConfig.Processing.OutputPrefix = fileConfig.Processing.OutputPrefix
	}
	return envConfig
}

func envSet(name string) bool {
	_, ok := os.LookupEnv(name)
	return ok
}

// resolvePaths pins the executable directory so later lookups are stable
func (c *Config) resolvePaths() error {
	if c.Paths.ExecutableDir != "" {
		return nil
	}
	dir, err := executableDir()
	if err != nil {
		return fmt.Errorf("failed to resolve executable directory: %w", err)
	}
	c.Paths.ExecutableDir = dir
	return nil
}

// validate validates the configuration using struct tags
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	return nil
}

// GetInputDir returns the resolved input directory path
func (c *Config) GetInputDir() string {
	return c.resolve(c.Paths.InputDir)
}

// GetOutputDir returns the resolved output directory path
func (c *Config) GetOutputDir() string {
	return c.resolve(c.Paths.OutputDir)
}

// GetLogsDir returns the resolved logs directory path
func (c *Config) GetLogsDir() string {
	return c.resolve(c.Paths.LogsDir)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Paths.ExecutableDir, path)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			InputDir:  "raw",
			OutputDir: "output",
			LogsDir:   "logs",
		},
		Processing: ProcessingConfig{
			OutputPrefix: "Processed_",
		},
	}
}
