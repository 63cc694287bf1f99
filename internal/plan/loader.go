package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a plan document from disk. The format is chosen by file
// extension: .yaml/.yml documents are converted to JSON before validation,
// everything else is treated as JSON.
func LoadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// Parse validates and decodes a JSON plan document.
func Parse(data []byte) (*Plan, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	return &p, nil
}

// ParseYAML decodes a YAML plan document by lowering it to JSON first, so
// validation and field handling stay in one place.
func ParseYAML(data []byte) (*Plan, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML plan: %w", err)
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML plan: %w", err)
	}

	return Parse(jsonData)
}

// SaveFile writes the plan back as indented JSON. Step fields the tool does
// not interpret survive the round-trip.
func SaveFile(path string, p *Plan) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return nil
}
