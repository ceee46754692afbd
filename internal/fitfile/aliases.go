// ABOUTME: Versioned table mapping undocumented session field numbers to named values.
// ABOUTME: Loaded from YAML when a device family uses different field numbers.
package fitfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Alias targets understood by the extractor.
const (
	AliasRPE  = "rpe"
	AliasFeel = "feel"
)

// DefaultAliasVersion names the built-in table.
const DefaultAliasVersion = "garmin-unknown-v1"

// FieldAlias maps one raw session field to a named attribute.
// The stored value is raw / Scale; values outside [Min, Max] are logged.
type FieldAlias struct {
	Field uint8   `yaml:"field"`
	Name  string  `yaml:"name"`
	Scale float64 `yaml:"scale"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// AliasTable is the set of session aliases for one device family.
type AliasTable struct {
	Version string       `yaml:"version"`
	Session []FieldAlias `yaml:"session"`
}

// DefaultAliases returns the table for current Garmin watches:
// field 193 is RPE (0-10) and field 192 is feel (0-100).
func DefaultAliases() *AliasTable {
	return &AliasTable{
		Version: DefaultAliasVersion,
		Session: []FieldAlias{
			{Field: 193, Name: AliasRPE, Scale: 1, Min: 0, Max: 10},
			{Field: 192, Name: AliasFeel, Scale: 1, Min: 0, Max: 100},
		},
	}
}

// LoadAliases reads an alias table from a YAML file.
func LoadAliases(path string) (*AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias table: %w", err)
	}

	var table AliasTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse alias table: %w", err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// Validate checks names and scales.
func (t *AliasTable) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("alias table: version is required")
	}
	seen := make(map[uint8]bool)
	for i := range t.Session {
		a := &t.Session[i]
		if a.Name != AliasRPE && a.Name != AliasFeel {
			return fmt.Errorf("alias table: unknown target %q for field %d", a.Name, a.Field)
		}
		if seen[a.Field] {
			return fmt.Errorf("alias table: field %d mapped twice", a.Field)
		}
		seen[a.Field] = true
		if a.Scale == 0 {
			a.Scale = 1
		}
	}
	return nil
}

// Fields returns the raw field numbers the table wants from session messages.
func (t *AliasTable) Fields() []uint8 {
	out := make([]uint8, 0, len(t.Session))
	for _, a := range t.Session {
		out = append(out, a.Field)
	}
	return out
}

// lookup returns the alias for a field number.
func (t *AliasTable) lookup(field uint8) (FieldAlias, bool) {
	for _, a := range t.Session {
		if a.Field == field {
			return a, true
		}
	}
	return FieldAlias{}, false
}
