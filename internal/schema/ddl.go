package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownTable    = errors.New("schema: unknown table")
	ErrUnknownColumn   = errors.New("schema: unknown column")
	ErrDuplicateName   = errors.New("schema: duplicate name")
	ErrDependencyCycle = errors.New("schema: foreign key cycle between tables")
)

// Validate checks that every primary key, foreign key and index refers to
// columns and tables that exist, and that table and index names are unique.
func Validate(tables []Table) error {
	byName := make(map[string]Table, len(tables))
	indexNames := make(map[string]bool)
	for _, t := range tables {
		if _, dup := byName[t.Name]; dup {
			return fmt.Errorf("%w: table %s", ErrDuplicateName, t.Name)
		}
		byName[t.Name] = t
	}
	for _, t := range tables {
		seen := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if seen[c.Name] {
				return fmt.Errorf("%w: column %s.%s", ErrDuplicateName, t.Name, c.Name)
			}
			seen[c.Name] = true
		}
		if _, ok := t.column(t.PrimaryKey); !ok {
			return fmt.Errorf("%w: primary key %s.%s", ErrUnknownColumn, t.Name, t.PrimaryKey)
		}
		for _, fk := range t.ForeignKeys {
			col, ok := t.column(fk.Column)
			if !ok {
				return fmt.Errorf("%w: foreign key %s.%s", ErrUnknownColumn, t.Name, fk.Column)
			}
			if _, ok := byName[fk.RefTable]; !ok {
				return fmt.Errorf("%w: %s referenced by %s.%s", ErrUnknownTable, fk.RefTable, t.Name, fk.Column)
			}
			if fk.OnDelete == SetNull && !col.Nullable {
				return fmt.Errorf("schema: %s.%s uses SET NULL but is NOT NULL", t.Name, fk.Column)
			}
		}
		for _, idx := range t.Indexes {
			if indexNames[idx.Name] {
				return fmt.Errorf("%w: index %s", ErrDuplicateName, idx.Name)
			}
			indexNames[idx.Name] = true
			for _, c := range idx.Columns {
				if _, ok := t.column(c); !ok {
					return fmt.Errorf("%w: index %s on %s.%s", ErrUnknownColumn, idx.Name, t.Name, c)
				}
			}
		}
	}
	return nil
}

// Ordered returns the tables sorted so that every table comes after the tables
// it references. Self references are allowed; any other cycle is an error.
// Ties keep the authored order.
func Ordered(tables []Table) ([]Table, error) {
	pending := make(map[string]int, len(tables))
	dependents := make(map[string][]string)
	for _, t := range tables {
		deps := make(map[string]bool)
		for _, fk := range t.ForeignKeys {
			if fk.RefTable != t.Name {
				deps[fk.RefTable] = true
			}
		}
		pending[t.Name] = len(deps)
		for dep := range deps {
			dependents[dep] = append(dependents[dep], t.Name)
		}
	}

	ordered := make([]Table, 0, len(tables))
	done := make(map[string]bool, len(tables))
	for len(ordered) < len(tables) {
		progressed := false
		for _, t := range tables {
			if done[t.Name] || pending[t.Name] > 0 {
				continue
			}
			done[t.Name] = true
			ordered = append(ordered, t)
			for _, d := range dependents[t.Name] {
				pending[d]--
			}
			progressed = true
		}
		if !progressed {
			var stuck []string
			for _, t := range tables {
				if !done[t.Name] {
					stuck = append(stuck, t.Name)
				}
			}
			return nil, fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(stuck, ", "))
		}
	}
	return ordered, nil
}

// CreateTableSQL renders a CREATE TABLE statement with inline primary key,
// foreign key and check constraints.
func CreateTableSQL(t Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", t.Name)
	lines := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+len(t.Checks)+1)
	for _, c := range t.Columns {
		line := fmt.Sprintf("\t%s %s", c.Name, c.Type)
		if !c.Nullable {
			line += " NOT NULL"
		}
		if c.Default != "" {
			line += " DEFAULT " + c.Default
		}
		if c.Check != "" {
			line += " CHECK (" + c.Check + ")"
		}
		lines = append(lines, line)
	}
	lines = append(lines, fmt.Sprintf("\tCONSTRAINT pk_%s PRIMARY KEY (%s)", t.Name, t.PrimaryKey))
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("\tCONSTRAINT fk_%s_%s FOREIGN KEY (%s) REFERENCES %s (id) ON DELETE %s",
			t.Name, fk.Column, fk.Column, fk.RefTable, fk.OnDelete))
	}
	for i, check := range t.Checks {
		lines = append(lines, fmt.Sprintf("\tCONSTRAINT ck_%s_%d CHECK (%s)", t.Name, i+1, check))
	}
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n)")
	return b.String()
}

func CreateIndexSQL(table string, idx Index) string {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, idx.Name, table, strings.Join(idx.Columns, ", "))
}
