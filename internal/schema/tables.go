package schema

import (
	"github.com/Paulaf319/sas-db-generator/internal/domain"
)

// Table names. The store package addresses tables through these.
const (
	TableRoles              = "roles"
	TableUsers              = "users"
	TableCategories         = "categories"
	TableProducts           = "products"
	TableProductVariants    = "product_variants"
	TableCarts              = "carts"
	TableCartItems          = "cart_items"
	TableOrders             = "orders"
	TableOrderItems         = "order_items"
	TablePayments           = "payments"
	TableShipments          = "shipments"
	TableInventoryMovements = "inventory_movements"
	TableAuditLogs          = "audit_logs"
)

func idColumn() Column {
	return Column{Name: "id", Type: UUID(), Default: "gen_random_uuid()"}
}

func ref(name string, nullable bool) Column {
	return Column{Name: name, Type: UUID(), Nullable: nullable}
}

func money(name string) Column {
	return Column{Name: name, Type: Money(), Check: name + " >= 0"}
}

func auditColumns() []Column {
	return []Column{
		{Name: "created_at", Type: Timestamp(), Default: "now()"},
		{Name: "created_by", Type: Varchar(255), Nullable: true},
		{Name: "modified_at", Type: Timestamp(), Nullable: true},
		{Name: "modified_by", Type: Varchar(255), Nullable: true},
	}
}

func withAudit(cols ...Column) []Column {
	return append(cols, auditColumns()...)
}

// Tables returns the current relational model in authored order: the baseline
// with every revision applied.
func Tables() []Table {
	return []Table{
		{
			Name: TableRoles,
			Columns: []Column{
				idColumn(),
				{Name: "name", Type: Varchar(50), Check: "name <> ''"},
			},
			PrimaryKey: "id",
			Indexes: []Index{
				{Name: "ux_roles_name", Columns: []string{"name"}, Unique: true},
			},
		},
		{
			Name: TableUsers,
			Columns: withAudit(
				idColumn(),
				Column{Name: "email", Type: Varchar(255)},
				Column{Name: "password_hash", Type: Varchar(255)},
				ref("role_id", false),
				Column{Name: "is_active", Type: Boolean(), Default: "true"},
			),
			PrimaryKey: "id",
			ForeignKeys: []ForeignKey{
				{Column: "role_id", RefTable: TableRoles, OnDelete: Restrict},
			},
			Indexes: []Index{
				{Name: "ux_users_email", Columns: []string{"email"}, Unique: true},
				{Name: "ix_users_role_id", Columns: []string{"role_id"}},
			},
		},
		{
			Name: TableCategories,
			Columns: []Column{
				idColumn(),
				{Name: "name", Type: Varchar(100)},
				ref("parent_id", true),
			},
			PrimaryKey: "id",
			ForeignKeys: []ForeignKey{
				{Column: "parent_id", RefTable: TableCategories, OnDelete: Restrict},
			},
			Checks: []string{"parent_id IS NULL OR parent_id <> id"},
			Indexes: []Index{
				{Name: "ix_categories_parent_id", Columns: []string{"parent_id"}},
			},
		},
		{
			Name: TableProducts,
			Columns: withAudit(
				idColumn(),
				Column{Name: "sku", Type: Varchar(50)},
				Column{Name: "name", Type: Varchar(200)},
				Column{Name: "description", Type: Varchar(1000), Nullable: true},
				ref("brand_id", true),
				ref("category_id", false),
				money("price"),
				Column{Name: "is_active", Type: Boolean(), Default: "true"},
			),
			PrimaryKey: "id",
			ForeignKeys: []ForeignKey{
				{Column: "category_id", RefTable: TableCategories, OnDelete: Restrict},
			},
			Indexes: []Index{
				{Name: "ux_products_sku", Columns: []string{"sku"}, Unique: true},
				{Name: "ix_products_category_id", Columns: []string{"category_id"}},
			},
		},
		{
			Name: TableProductVariants,
			Columns: withAudit(
				idColumn(),
				ref("product_id", false),
				Column{Name: "color", Type: Varchar(50), Nullable: true},
				Column{Name: "size", Type: Varchar(20), Nullable: true},
				Column{Name: "barcode", Type: Varchar(50)},
				Column{Name: "stock", Type: Integer(), Default: "0", Check: "stock >= 0"},
			),
			PrimaryKey: "id",
			ForeignKeys: []ForeignKey{
				{Column: "product_id", RefTable: TableProducts, OnDelete: Cascade},
			},
			Indexes: []Index{
				{Name: "ux_product_variants_barcode", Columns: []string{"barcode"}, Unique: true},
				{Name: "ix_product_variants_product_id", Columns: []string{"product_id"}},
			},
		},
		{
			Name: TableCarts,
			Columns: withAudit(
				idColumn(),
				ref("user_id", true),
				Column{Name: "status", Type: Varchar(20), Check: OneOf("status", domain.CartStatuses)},
			),
			PrimaryKey: "id",
			ForeignKeys: []ForeignKey{
				{Column: "user_id", RefTable: TableUsers, OnDelete: SetNull},
			},
			Indexes: []Index{
				{Name: "ix_carts_user_id", Columns: []string{"user_id"}},
			},
		},
		{
			Name: TableCartItems,
			Columns: []Column{
				idColumn(),
				ref("cart_id", false),
				ref("variant_id", false),
				{Name: "quantity", Type: Integer(), Check: "quantity > 0"},
				money("unit_price"),
				{Name: "position", Type: Integer(), Default: "0", Check: "position >= 0"},
			},
			PrimaryKey: "id",
			ForeignKeys: []ForeignKey{
				{Column: "cart_id", RefTable: TableCarts, OnDelete: Cascade},
				{Column: "variant_id", RefTable: TableProductVariants, OnDelete: Cascade},
			},
			Indexes: []Index{
				{Name: "ux_cart_items_cart_id_variant_id", Columns: []string{"cart_id", "variant_id"}, Unique: true},
				{Name: "ix_cart_items_variant_id", Columns: []string{"variant_id"}},
			},
		},
		{
			Name: TableOrders,
			Columns: withAudit(
				idColumn(),
				Column{Name: "number", Type: Varchar(50)},
				ref("user_id", true),
				money("total"),
				Column{Name: "status", Type: Varchar(20), Check: OneOf("status", domain.OrderStatuses)},
				Column{Name: "payment_status", Type: Varchar(20), Check: OneOf("payment_status", domain.PaymentStatuses)},
				Column{Name: "shipping_status", Type: Varchar(20), Check: OneOf("shipping_status", domain.ShippingStatuses)},
			),
			PrimaryKey: "id",
			ForeignKeys: []ForeignKey{
				{Column: "user_id", RefTable: TableUsers, OnDelete: SetNull},
			},
			Indexes: []Index{
				{Name: "ux_orders_number", Columns: []string{"number"}, Unique: true},
				{Name: "ix_orders_user_id", Columns: []string{"user_id"}},
			},
		},
		{
			Name: TableOrderItems,
			Columns: []Column{
				idColumn(),
				ref("order_id", false),
				ref("variant_id", false),
				{Name: "quantity", Type: Integer(), Check: "quantity > 0"},
				money("unit_price"),
				{Name: "position", Type: Integer(), Default: "0", Check: "position >= 0"},
			},
			PrimaryKey: "id",
			ForeignKeys: []ForeignKey{
				{Column: "order_id", RefTable: TableOrders, OnDelete: Cascade},
				{Column: "variant_id", RefTable: TableProductVariants, OnDelete: Restrict},
			},
			Indexes: []Index{
				{Name: "ux_order_items_order_id_variant_id", Columns: []string{"order_id", "variant_id"}, Unique: true},
				{Name: "ix_order_items_variant_id", Columns: []string{"variant_id"}},
			},
		},
		{
			Name: TablePayments,
			Columns: withAudit(
				idColumn(),
				ref("order_id", false),
				Column{Name: "provider", Type: Varchar(20), Check: OneOf("provider", domain.PaymentProviders)},
				Column{Name: "provider_payment_id", Type: Varchar(100), Nullable: true},
				money("amount"),
				Column{Name: "status", Type: Varchar(20), Check: OneOf("status", domain.PaymentMethodStatuses)},
				Column{Name: "failure_reason", Type: Varchar(500), Nullable: true},
			),
			PrimaryKey: "id",
			ForeignKeys: []ForeignKey{
				{Column: "order_id", RefTable: TableOrders, OnDelete: Cascade},
			},
			Indexes: []Index{
				{Name: "ix_payments_order_id", Columns: []string{"order_id"}},
			},
		},
		{
			Name: TableShipments,
			Columns: withAudit(
				idColumn(),
				ref("order_id", false),
				Column{Name: "provider", Type: Varchar(20), Check: OneOf("provider", domain.ShipmentProviders)},
				Column{Name: "tracking_code", Type: Varchar(100), Nullable: true},
				Column{Name: "address", Type: Varchar(500)},
				Column{Name: "city", Type: Varchar(100), Nullable: true},
				Column{Name: "state", Type: Varchar(100), Nullable: true},
				Column{Name: "postal_code", Type: Varchar(20), Nullable: true},
				Column{Name: "country", Type: Varchar(100), Nullable: true},
				money("cost"),
				Column{Name: "status", Type: Varchar(20), Check: OneOf("status", domain.ShipmentMethodStatuses)},
				Column{Name: "estimated_delivery_date", Type: Timestamp(), Nullable: true},
				Column{Name: "actual_delivery_date", Type: Timestamp(), Nullable: true},
			),
			PrimaryKey: "id",
			ForeignKeys: []ForeignKey{
				{Column: "order_id", RefTable: TableOrders, OnDelete: Cascade},
			},
			Indexes: []Index{
				{Name: "ix_shipments_order_id", Columns: []string{"order_id"}},
			},
		},
		{
			Name: TableInventoryMovements,
			Columns: withAudit(
				idColumn(),
				ref("variant_id", false),
				Column{Name: "quantity", Type: Integer(), Check: "quantity <> 0"},
				Column{Name: "reason", Type: Varchar(20), Check: OneOf("reason", domain.MovementReasons)},
				ref("performed_by", false),
				Column{Name: "notes", Type: Varchar(500), Nullable: true},
			),
			PrimaryKey: "id",
			ForeignKeys: []ForeignKey{
				{Column: "variant_id", RefTable: TableProductVariants, OnDelete: Restrict},
				{Column: "performed_by", RefTable: TableUsers, OnDelete: Restrict},
			},
			Indexes: []Index{
				{Name: "ix_inventory_movements_variant_id", Columns: []string{"variant_id"}},
				{Name: "ix_inventory_movements_performed_by", Columns: []string{"performed_by"}},
			},
		},
		{
			Name: TableAuditLogs,
			Columns: []Column{
				idColumn(),
				ref("user_id", false),
				{Name: "action", Type: Varchar(50)},
				{Name: "entity", Type: Varchar(100)},
				ref("entity_id", false),
				{Name: "data_before", Type: JSONB(), Nullable: true},
				{Name: "data_after", Type: JSONB(), Nullable: true},
				{Name: "ip_address", Type: Varchar(45), Nullable: true},
				{Name: "created_at", Type: Timestamp(), Default: "now()"},
			},
			PrimaryKey: "id",
			ForeignKeys: []ForeignKey{
				{Column: "user_id", RefTable: TableUsers, OnDelete: Restrict},
			},
			Indexes: []Index{
				{Name: "ix_audit_logs_created_at", Columns: []string{"created_at"}},
				{Name: "ix_audit_logs_entity_entity_id", Columns: []string{"entity", "entity_id"}},
				{Name: "ix_audit_logs_user_id", Columns: []string{"user_id"}},
			},
		},
	}
}
