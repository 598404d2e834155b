package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Migration is one authored, atomic schema change. IDs sort in authoring order.
type Migration struct {
	ID          string
	Description string
	Statements  []string
}

// Checksum fingerprints the statements so an applied migration that was edited
// afterwards can be detected.
func (m Migration) Checksum() string {
	sum := sha256.Sum256([]byte(strings.Join(m.Statements, ";\n")))
	return hex.EncodeToString(sum[:])
}

// SQL renders the migration as a single script.
func (m Migration) SQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- %s: %s\n", m.ID, m.Description)
	for _, stmt := range m.Statements {
		b.WriteString(stmt)
		b.WriteString(";\n")
	}
	return b.String()
}

// ErrMigrationOrder reports a migration list whose ids are not strictly increasing.
var ErrMigrationOrder = errors.New("schema: migration ids out of order")

// Render turns a table set into the statements that create it on an empty
// database: every table in dependency order, then every index. It is the
// reference used when authoring a new revision; the applied migrations come
// from Migrations.
func Render(tables []Table) ([]string, error) {
	if err := Validate(tables); err != nil {
		return nil, err
	}
	ordered, err := Ordered(tables)
	if err != nil {
		return nil, err
	}

	var creates, indexes []string
	for _, t := range ordered {
		creates = append(creates, CreateTableSQL(t))
		for _, idx := range t.Indexes {
			indexes = append(indexes, CreateIndexSQL(t.Name, idx))
		}
	}
	return append(creates, indexes...), nil
}

// Migrations returns the frozen baseline followed by every later revision, in
// authoring order.
func Migrations() ([]Migration, error) {
	return sequence(baseline, revisions)
}

func sequence(groups ...[]Migration) ([]Migration, error) {
	var all []Migration
	for _, g := range groups {
		for _, m := range g {
			if n := len(all); n > 0 && m.ID <= all[n-1].ID {
				return nil, fmt.Errorf("%w: %s after %s", ErrMigrationOrder, m.ID, all[n-1].ID)
			}
			all = append(all, Migration{
				ID:          m.ID,
				Description: m.Description,
				Statements:  append([]string(nil), m.Statements...),
			})
		}
	}
	return all, nil
}

// Description is the exportable form of the model used by the schema dump.
type Description struct {
	Migrations []string `json:"migrations" yaml:"migrations"`
	Tables     []Table  `json:"tables" yaml:"tables"`
}

func Describe() (Description, error) {
	migrations, err := Migrations()
	if err != nil {
		return Description{}, err
	}
	ordered, err := Ordered(Tables())
	if err != nil {
		return Description{}, err
	}
	d := Description{Tables: ordered}
	for _, m := range migrations {
		d.Migrations = append(d.Migrations, m.ID+" "+m.Checksum())
	}
	return d, nil
}
