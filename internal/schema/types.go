// Package schema describes the relational model as plain data (tables, columns,
// foreign keys, indexes) and renders it into ordered PostgreSQL migrations.
// Only the enumerated status values are shared with the domain package; the
// entity structs are not consulted.
package schema

import (
	"fmt"
	"strings"
)

// DeleteRule is the ON DELETE behaviour of a foreign key.
type DeleteRule int

const (
	Restrict DeleteRule = iota
	Cascade
	SetNull
)

func (r DeleteRule) String() string {
	switch r {
	case Cascade:
		return "CASCADE"
	case SetNull:
		return "SET NULL"
	default:
		return "RESTRICT"
	}
}

func (r DeleteRule) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

func (r DeleteRule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Column is a single table column. Type is the PostgreSQL type as rendered.
type Column struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	Check    string `json:"check,omitempty" yaml:"check,omitempty"`
}

type ForeignKey struct {
	Column   string     `json:"column" yaml:"column"`
	RefTable string     `json:"references" yaml:"references"`
	OnDelete DeleteRule `json:"on_delete" yaml:"on_delete"`
}

type Index struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
	Unique  bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
}

type Table struct {
	Name        string       `json:"name" yaml:"name"`
	Columns     []Column     `json:"columns" yaml:"columns"`
	PrimaryKey  string       `json:"primary_key" yaml:"primary_key"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
	Checks      []string     `json:"checks,omitempty" yaml:"checks,omitempty"`
	Indexes     []Index      `json:"indexes,omitempty" yaml:"indexes,omitempty"`
}

func (t Table) column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Column type helpers.

func UUID() string         { return "uuid" }
func Varchar(n int) string { return fmt.Sprintf("varchar(%d)", n) }
func Money() string        { return "numeric(18,2)" }
func Integer() string      { return "integer" }
func Boolean() string      { return "boolean" }
func Timestamp() string    { return "timestamptz" }
func JSONB() string        { return "jsonb" }

// OneOf renders a CHECK expression restricting col to the given values.
func OneOf[T ~string](col string, values []T) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(string(v), "'", "''") + "'"
	}
	return fmt.Sprintf("%s IN (%s)", col, strings.Join(quoted, ", "))
}
