package schema

// revisions are the schema changes made after the baseline, oldest first. The
// list is append-only: an entry that has shipped is never edited or removed.
// Each change must also be reflected in Tables.
var revisions = []Migration{
	{
		ID:          "0003_line_positions",
		Description: "keep cart and order lines in insertion order",
		Statements: []string{
			`ALTER TABLE cart_items ADD COLUMN position integer NOT NULL DEFAULT 0 CHECK (position >= 0)`,
			`ALTER TABLE order_items ADD COLUMN position integer NOT NULL DEFAULT 0 CHECK (position >= 0)`,
		},
	},
}
