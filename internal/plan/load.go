package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Supported plan file formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// FormatFromPath derives the plan format from a file extension, defaulting to YAML.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// LoadPlan takes a file path as input and loads the YAML- or JSON-formatted
// plan there.
func LoadPlan(planPath string) (*Plan, error) {
	v := viper.New()
	v.SetConfigFile(planPath)
	v.SetConfigType(FormatFromPath(planPath))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading plan file, %s", err)
	}

	return decode(v)
}

// LoadPlanFromReader decodes a plan from r in the given format.
func LoadPlanFromReader(r io.Reader, format string) (*Plan, error) {
	if format == "" {
		format = FormatYAML
	}
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading plan data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Plan, error) {
	var p Plan
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &p, nil
}

// Marshal encodes the plan in the given format.
func Marshal(p Plan, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return nil, fmt.Errorf("failed to encode plan: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return nil, fmt.Errorf("failed to encode plan: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode plan: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported plan format %q", format)
	}
}

// WriteFile writes the plan to path, choosing the format from the extension.
func WriteFile(p Plan, path string) error {
	data, err := Marshal(p, FormatFromPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan %s: %w", path, err)
	}
	return nil
}
