package services

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"social-analytics/models"
)

//go:embed aliases.yaml
var defaultAliasesYAML []byte

// AliasTable maps canonical field names to the column names that may carry
// them, per export schema.
type AliasTable struct {
	Version int                                      `yaml:"version"`
	Schemas map[models.RecordType]map[string][]string `yaml:"schemas"`
}

var (
	defaultAliasesOnce sync.Once
	defaultAliases     *AliasTable
)

// ParseAliasTable decodes a YAML alias table.
func ParseAliasTable(data []byte) (*AliasTable, error) {
	var t AliasTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("aliases: parse: %w", err)
	}
	if len(t.Schemas) == 0 {
		return nil, fmt.Errorf("aliases: no schemas defined")
	}
	return &t, nil
}

// DefaultAliases returns the built-in alias table.
func DefaultAliases() *AliasTable {
	defaultAliasesOnce.Do(func() {
		t, err := ParseAliasTable(defaultAliasesYAML)
		if err != nil {
			panic(err)
		}
		defaultAliases = t
	})
	return defaultAliases
}

// For returns the aliases for one field. Unknown fields fall back to the
// field name itself.
func (t *AliasTable) For(recordType models.RecordType, field string) []string {
	if aliases, ok := t.Schemas[recordType][field]; ok && len(aliases) > 0 {
		return aliases
	}
	return []string{field}
}

// Field returns the first non-empty value for a canonical field of rec.
func (t *AliasTable) Field(recordType models.RecordType, rec models.RawRecord, field string) string {
	return FieldValue(rec, t.For(recordType, field)...)
}
