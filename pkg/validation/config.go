package validation

import (
	"fmt"
	"strings"
)

// ValidateLogLevel checks that a log level is one zap understands. An empty
// level is allowed and means the default.
func ValidateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: %s", level)
}

// ValidateLogFormat checks that a log format is json or console. An empty
// format is allowed and means the default.
func ValidateLogFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "json", "console":
		return nil
	}
	return fmt.Errorf("invalid log format: %s", format)
}

// ValidateLogging validates level and format together and returns every
// problem found.
func ValidateLogging(level, format string) []string {
	var problems []string
	if err := ValidateLogLevel(level); err != nil {
		problems = append(problems, err.Error())
	}
	if err := ValidateLogFormat(format); err != nil {
		problems = append(problems, err.Error())
	}
	return problems
}
