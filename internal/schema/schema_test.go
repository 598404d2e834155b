package schema

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func indexOfTable(t *testing.T, tables []Table, name string) int {
	t.Helper()
	for i, tbl := range tables {
		if tbl.Name == name {
			return i
		}
	}
	t.Fatalf("table %s not found", name)
	return -1
}

func createStatement(t *testing.T, migrations []Migration, table string) string {
	t.Helper()
	prefix := "CREATE TABLE " + table + " ("
	for _, stmt := range migrations[0].Statements {
		if strings.HasPrefix(stmt, prefix) {
			return stmt
		}
	}
	t.Fatalf("no CREATE TABLE for %s", table)
	return ""
}

func TestTables_AreValid(t *testing.T) {
	tables := Tables()
	require.NoError(t, Validate(tables))
	assert.Len(t, tables, 13)
}

func TestOrdered_ReferencedTablesComeFirst(t *testing.T) {
	ordered, err := Ordered(Tables())
	require.NoError(t, err)

	for _, tbl := range ordered {
		for _, fk := range tbl.ForeignKeys {
			if fk.RefTable == tbl.Name {
				continue
			}
			assert.Less(t, indexOfTable(t, ordered, fk.RefTable), indexOfTable(t, ordered, tbl.Name),
				"%s must be created before %s", fk.RefTable, tbl.Name)
		}
	}
}

func TestOrdered_RejectsCycles(t *testing.T) {
	tables := []Table{
		{Name: "a", Columns: []Column{{Name: "id"}, {Name: "b_id"}}, PrimaryKey: "id",
			ForeignKeys: []ForeignKey{{Column: "b_id", RefTable: "b"}}},
		{Name: "b", Columns: []Column{{Name: "id"}, {Name: "a_id"}}, PrimaryKey: "id",
			ForeignKeys: []ForeignKey{{Column: "a_id", RefTable: "a"}}},
	}

	_, err := Ordered(tables)
	assert.ErrorIs(t, err, ErrDependencyCycle)
}

func TestValidate_Errors(t *testing.T) {
	base := func() Table {
		return Table{Name: "t", Columns: []Column{{Name: "id"}, {Name: "ref", Nullable: false}}, PrimaryKey: "id"}
	}

	unknownRef := base()
	unknownRef.ForeignKeys = []ForeignKey{{Column: "ref", RefTable: "missing"}}
	assert.ErrorIs(t, Validate([]Table{unknownRef}), ErrUnknownTable)

	unknownCol := base()
	unknownCol.Indexes = []Index{{Name: "ix", Columns: []string{"nope"}}}
	assert.ErrorIs(t, Validate([]Table{unknownCol}), ErrUnknownColumn)

	setNullOnRequired := base()
	setNullOnRequired.ForeignKeys = []ForeignKey{{Column: "ref", RefTable: "t", OnDelete: SetNull}}
	assert.Error(t, Validate([]Table{setNullOnRequired}))

	assert.ErrorIs(t, Validate([]Table{base(), base()}), ErrDuplicateName)
}

func TestMigrations_DeleteRules(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 3)
	assert.Equal(t, "0001_create_tables", migrations[0].ID)
	assert.Equal(t, "0002_create_indexes", migrations[1].ID)
	assert.Equal(t, "0003_line_positions", migrations[2].ID)

	cases := []struct {
		table string
		fk    string
	}{
		{TableCartItems, "FOREIGN KEY (cart_id) REFERENCES carts (id) ON DELETE CASCADE"},
		{TableProductVariants, "FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE"},
		{TableOrderItems, "FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE"},
		{TablePayments, "FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE"},
		{TableShipments, "FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE"},
		{TableProducts, "FOREIGN KEY (category_id) REFERENCES categories (id) ON DELETE RESTRICT"},
		{TableOrderItems, "FOREIGN KEY (variant_id) REFERENCES product_variants (id) ON DELETE RESTRICT"},
		{TableInventoryMovements, "FOREIGN KEY (variant_id) REFERENCES product_variants (id) ON DELETE RESTRICT"},
		{TableUsers, "FOREIGN KEY (role_id) REFERENCES roles (id) ON DELETE RESTRICT"},
		{TableAuditLogs, "FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE RESTRICT"},
		{TableOrders, "FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE SET NULL"},
		{TableCarts, "FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE SET NULL"},
	}
	for _, tc := range cases {
		t.Run(tc.table+"/"+tc.fk, func(t *testing.T) {
			assert.Contains(t, createStatement(t, migrations, tc.table), tc.fk)
		})
	}
}

func TestMigrations_RendersColumnsAndChecks(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)

	products := createStatement(t, migrations, TableProducts)
	assert.Contains(t, products, "\tid uuid NOT NULL DEFAULT gen_random_uuid()")
	assert.Contains(t, products, "\tprice numeric(18,2) NOT NULL CHECK (price >= 0)")
	assert.Contains(t, products, "\tdescription varchar(1000),")
	assert.Contains(t, products, "CONSTRAINT pk_products PRIMARY KEY (id)")

	orders := createStatement(t, migrations, TableOrders)
	assert.Contains(t, orders, "CHECK (status IN ('Draft', 'Confirmed', 'Paid', 'Shipped', 'Delivered', 'Cancelled'))")

	categories := createStatement(t, migrations, TableCategories)
	assert.Contains(t, categories, "CONSTRAINT ck_categories_1 CHECK (parent_id IS NULL OR parent_id <> id)")
}

func TestMigrations_UniqueAndLookupIndexes(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	indexes := migrations[1].Statements

	for _, want := range []string{
		"CREATE UNIQUE INDEX ux_users_email ON users (email)",
		"CREATE UNIQUE INDEX ux_products_sku ON products (sku)",
		"CREATE UNIQUE INDEX ux_product_variants_barcode ON product_variants (barcode)",
		"CREATE UNIQUE INDEX ux_orders_number ON orders (number)",
		"CREATE UNIQUE INDEX ux_roles_name ON roles (name)",
		"CREATE INDEX ix_audit_logs_created_at ON audit_logs (created_at)",
		"CREATE INDEX ix_audit_logs_entity_entity_id ON audit_logs (entity, entity_id)",
		"CREATE INDEX ix_audit_logs_user_id ON audit_logs (user_id)",
	} {
		assert.Contains(t, indexes, want)
	}
}

func TestMigration_ChecksumIsStable(t *testing.T) {
	first, err := Migrations()
	require.NoError(t, err)
	second, err := Migrations()
	require.NoError(t, err)

	assert.Equal(t, first[0].Checksum(), second[0].Checksum())
	assert.NotEqual(t, first[0].Checksum(), first[1].Checksum())
	assert.Len(t, first[0].Checksum(), 64)

	edited := first[1]
	edited.Statements = append([]string{}, edited.Statements[1:]...)
	assert.NotEqual(t, first[1].Checksum(), edited.Checksum())
}

func TestDescribe_MarshalsToYAML(t *testing.T) {
	d, err := Describe()
	require.NoError(t, err)

	out, err := yaml.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(out), "name: audit_logs")
	assert.Contains(t, string(out), "on_delete: SET NULL")
}

func TestMigrations_BaselineChecksumsArePinned(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)

	pinned := map[string]string{
		"0001_create_tables":  "a7473da83bf1cf9918688acf1128b54c1660ecc1b79faf0bb71db6e1cdf4b59f",
		"0002_create_indexes": "ae660e37241eb437285b73fc23a6e32f93dae70e0fa9b6565ece976de6b9f6bf",
		"0003_line_positions": "225602ee52f60d5787e393495cc2eb13fde5ffbc726439673901133e85ca0db2",
	}
	for _, m := range migrations {
		want, ok := pinned[m.ID]
		require.True(t, ok, "migration %s has no pinned checksum", m.ID)
		assert.Equal(t, want, m.Checksum(), "applied migration %s was edited", m.ID)
	}
}

func TestMigrations_ReturnsCopies(t *testing.T) {
	first, err := Migrations()
	require.NoError(t, err)
	first[0].Statements[0] = "DROP TABLE roles"

	second, err := Migrations()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(second[0].Statements[0], "CREATE TABLE roles ("))
}

func TestSequence_RejectsOutOfOrderIDs(t *testing.T) {
	a := Migration{ID: "0002_b", Statements: []string{"SELECT 1"}}
	b := Migration{ID: "0001_a", Statements: []string{"SELECT 1"}}

	_, err := sequence([]Migration{a}, []Migration{b})
	assert.ErrorIs(t, err, ErrMigrationOrder)

	_, err = sequence([]Migration{b, b})
	assert.ErrorIs(t, err, ErrMigrationOrder)
}

// Every column and index of the current model must be created by the baseline
// or added by a revision, so a migrated database matches Tables.
func TestMigrations_CoverCurrentModel(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	var later []string
	for _, m := range migrations[2:] {
		later = append(later, m.Statements...)
	}
	addedBy := func(prefix string) bool {
		for _, stmt := range later {
			if strings.HasPrefix(stmt, prefix) {
				return true
			}
		}
		return false
	}

	for _, tbl := range Tables() {
		created := createStatement(t, migrations, tbl.Name)
		for _, c := range tbl.Columns {
			inBaseline := strings.Contains(created, "\n\t"+c.Name+" ")
			added := addedBy("ALTER TABLE " + tbl.Name + " ADD COLUMN " + c.Name + " ")
			assert.True(t, inBaseline || added, "column %s.%s is never created", tbl.Name, c.Name)
		}
		for _, idx := range tbl.Indexes {
			stmt := CreateIndexSQL(tbl.Name, idx)
			assert.True(t, slices.Contains(migrations[1].Statements, stmt) || addedBy(stmt),
				"index %s is never created", idx.Name)
		}
	}
}

func TestRender_IncludesRevisedColumns(t *testing.T) {
	statements, err := Render(Tables())
	require.NoError(t, err)

	var cartItems string
	for _, stmt := range statements {
		if strings.HasPrefix(stmt, "CREATE TABLE cart_items (") {
			cartItems = stmt
		}
	}
	assert.Contains(t, cartItems, "\tposition integer NOT NULL DEFAULT 0 CHECK (position >= 0)")
	assert.Equal(t, "CREATE UNIQUE INDEX ux_roles_name ON roles (name)", statements[13])
}
