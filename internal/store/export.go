package store

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fjacquet/ledger-audit/internal/models"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// Export formats for the active rule set.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ExportRules writes the rule set in the requested format. Pattern,
// account, and priority round-trip through every format without altering
// semantics.
func ExportRules(rules []models.ClassificationRule, format string, w io.Writer) error {
	switch format {
	case FormatCSV:
		if err := gocsv.Marshal(rules, w); err != nil {
			return fmt.Errorf("failed to export rules as CSV: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rules); err != nil {
			return fmt.Errorf("failed to export rules as JSON: %w", err)
		}
	case FormatYAML:
		data, err := yaml.Marshal(ruleFile{Rules: rules})
		if err != nil {
			return fmt.Errorf("failed to export rules as YAML: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write YAML export: %w", err)
		}
	default:
		return fmt.Errorf("unknown export format %q (want csv, json, or yaml)", format)
	}
	return nil
}

// FormatFromExtension maps a file extension to an export format name.
// Unknown extensions default to YAML.
func FormatFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// ImportRules reads a rule set previously produced by ExportRules.
func ImportRules(format string, r io.Reader) ([]models.ClassificationRule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	var rules []models.ClassificationRule
	switch format {
	case FormatCSV:
		if err := gocsv.UnmarshalBytes(data, &rules); err != nil {
			return nil, fmt.Errorf("failed to import rules from CSV: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &rules); err != nil {
			return nil, fmt.Errorf("failed to import rules from JSON: %w", err)
		}
	case FormatYAML:
		var wrapped ruleFile
		if err := yaml.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to import rules from YAML: %w", err)
		}
		rules = wrapped.Rules
	default:
		return nil, fmt.Errorf("unknown import format %q (want csv, json, or yaml)", format)
	}
	return rules, nil
}
