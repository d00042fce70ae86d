package level

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a level file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnsupportedFormat = errors.New("unsupported level format")

// Extensions lists the file extensions recognized as level files
var Extensions = []string{".json", ".yaml", ".yml"}

// FormatFromPath picks the encoding from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// IsLevelFile reports whether the path has a level file extension
func IsLevelFile(path string) bool {
	_, err := FormatFromPath(path)
	return err == nil
}

// Parse decodes and validates a level document
func Parse(data []byte, format Format) (*Level, error) {
	var l Level
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("failed to parse level JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("failed to parse level YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := Validate(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Load reads a level file, choosing the decoder by extension
func Load(path string) (*Level, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	l, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return l, nil
}

// Marshal encodes a level in the given format
func Marshal(l *Level, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(l, "", "  ")
	case FormatYAML:
		return yaml.Marshal(l)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Save validates and writes a level, choosing the encoder by extension
func Save(path string, l *Level) error {
	if err := Validate(l); err != nil {
		return err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	data, err := Marshal(l, format)
	if err != nil {
		return fmt.Errorf("failed to encode level: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}
	return nil
}
