// Package config defines the data structures related to configuration and
// includes functions for loading the config and building the logger from it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/plan-weights/pkg/constants"
	"github.com/iwvelando/plan-weights/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for plan-weights.
type Configuration struct {
	Logging LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output  OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A missing file yields the defaults.
func LoadConfiguration(configPath string) (*Configuration, error) {
	var configuration Configuration
	if configPath == "" {
		return &configuration, nil
	}
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return &configuration, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("PLAN_WEIGHTS")
	v.AutomaticEnv()
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// OutputFormat returns the configured output format, letting a non-empty
// override win and falling back to pretty.
func (c *Configuration) OutputFormat(override string) string {
	if override != "" {
		return override
	}
	if c.Output.Format != "" {
		return c.Output.Format
	}
	return constants.OutputFormatPretty
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	warnings := validation.ValidateLogging(c.Logging.Level, c.Logging.Format)
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return warnings
}
