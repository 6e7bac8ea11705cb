package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// DefaultConfigFile is looked up in the working directory; a missing file
// just means defaults.
const DefaultConfigFile = "foobar.yaml"

// Config represents the build configuration
type Config struct {
	Compiler string   `yaml:"compiler"`
	Flags    []string `yaml:"flags"`
	KeepC    bool     `yaml:"keep-c"`
	LogLevel string   `yaml:"log-level"`
}

// LoadConfig loads the configuration from the specified file. Precedence,
// lowest to highest: built-in defaults, config file, FOOBAR_* environment
// variables. Command-line flags are merged by the commands themselves.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	config := getDefaultConfig()

	if fileExists(configPath) {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		config = &Config{}
		if err := yaml.UnmarshalWithOptions(data, config, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applyDefaults(config)
	}

	if cc := os.Getenv("FOOBAR_CC"); cc != "" {
		config.Compiler = cc
	}
	if lvl := os.Getenv("FOOBAR_LOG"); lvl != "" {
		config.LogLevel = lvl
	}

	return config, nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Compiler: "gcc",
		Flags:    []string{"-lm", "-std=c99"},
		LogLevel: "warn",
	}
}

// applyDefaults fills in anything the config file left unset. An explicit
// empty flag list stays empty.
func applyDefaults(config *Config) {
	def := getDefaultConfig()
	if config.Compiler == "" {
		config.Compiler = def.Compiler
	}
	if config.Flags == nil {
		config.Flags = def.Flags
	}
	if config.LogLevel == "" {
		config.LogLevel = def.LogLevel
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ConfigureLogging sets the logrus level from its configured name.
func ConfigureLogging(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("Unknown log level, defaulting to warn")
		lvl = log.WarnLevel
	}
	log.SetLevel(lvl)
}
