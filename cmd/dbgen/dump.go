package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Paulaf319/sas-db-generator/internal/schema"
)

func writeSchemaYAML(w io.Writer) error {
	d, err := schema.Describe()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	return enc.Close()
}

func writeMigrationSQL(w io.Writer) error {
	migrations, err := schema.Migrations()
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := io.WriteString(w, m.SQL()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// writeModelSQL prints the current model as a single create script. Diffing it
// against -print-sql output shows what the next revision has to add.
func writeModelSQL(w io.Writer) error {
	statements, err := schema.Render(schema.Tables())
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := io.WriteString(w, stmt+";\n"); err != nil {
			return err
		}
	}
	return nil
}
