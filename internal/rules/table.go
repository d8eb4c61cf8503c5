package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromRows builds a table from the list form [verdict, pattern, message?].
// Messages are parsed as templates.
func FromRows(name string, rows [][]string) (*Table, error) {
	table := &Table{Name: name, Rules: make([]*Rule, 0, len(rows))}
	for i, row := range rows {
		if len(row) < 2 || len(row) > 3 {
			return nil, fmt.Errorf("rule list %q, entry %d: expected [verdict, pattern] or [verdict, pattern, message], got %d elements", name, i+1, len(row))
		}
		verdict, err := ParseVerdict(row[0])
		if err != nil {
			return nil, fmt.Errorf("rule list %q, entry %d: %w", name, i+1, err)
		}
		var rule *Rule
		if len(row) == 3 {
			msg, err := ParseMessage(row[2])
			if err != nil {
				return nil, fmt.Errorf("rule list %q, entry %d: invalid message: %w", name, i+1, err)
			}
			rule, err = NewRule(verdict, row[1], msg)
			if err != nil {
				return nil, fmt.Errorf("rule list %q, entry %d: %w", name, i+1, err)
			}
		} else {
			rule, err = NewRule(verdict, row[1], nil)
			if err != nil {
				return nil, fmt.Errorf("rule list %q, entry %d: %w", name, i+1, err)
			}
		}
		table.Rules = append(table.Rules, rule)
	}
	return table, nil
}

// LoadTableFile reads a rule table stored as a JSON or YAML list of
// [verdict, pattern, message?] rows.
func LoadTableFile(name, path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule table %s: %w", path, err)
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &rows)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &rows)
	default:
		return nil, fmt.Errorf("rule table %s: unsupported format, use .json, .yaml or .yml", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode rule table %s: %w", path, err)
	}
	return FromRows(name, rows)
}
