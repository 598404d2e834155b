package schema

// baseline is the schema as first released. It is frozen: applied databases
// record these checksums, so later changes go into revisions instead.
var baseline = []Migration{
	{
		ID:          "0001_create_tables",
		Description: "create tables with keys and constraints",
		Statements: []string{
			`CREATE TABLE roles (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	name varchar(50) NOT NULL CHECK (name <> ''),
	CONSTRAINT pk_roles PRIMARY KEY (id)
)`,
			`CREATE TABLE users (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	email varchar(255) NOT NULL,
	password_hash varchar(255) NOT NULL,
	role_id uuid NOT NULL,
	is_active boolean NOT NULL DEFAULT true,
	created_at timestamptz NOT NULL DEFAULT now(),
	created_by varchar(255),
	modified_at timestamptz,
	modified_by varchar(255),
	CONSTRAINT pk_users PRIMARY KEY (id),
	CONSTRAINT fk_users_role_id FOREIGN KEY (role_id) REFERENCES roles (id) ON DELETE RESTRICT
)`,
			`CREATE TABLE categories (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	name varchar(100) NOT NULL,
	parent_id uuid,
	CONSTRAINT pk_categories PRIMARY KEY (id),
	CONSTRAINT fk_categories_parent_id FOREIGN KEY (parent_id) REFERENCES categories (id) ON DELETE RESTRICT,
	CONSTRAINT ck_categories_1 CHECK (parent_id IS NULL OR parent_id <> id)
)`,
			`CREATE TABLE products (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	sku varchar(50) NOT NULL,
	name varchar(200) NOT NULL,
	description varchar(1000),
	brand_id uuid,
	category_id uuid NOT NULL,
	price numeric(18,2) NOT NULL CHECK (price >= 0),
	is_active boolean NOT NULL DEFAULT true,
	created_at timestamptz NOT NULL DEFAULT now(),
	created_by varchar(255),
	modified_at timestamptz,
	modified_by varchar(255),
	CONSTRAINT pk_products PRIMARY KEY (id),
	CONSTRAINT fk_products_category_id FOREIGN KEY (category_id) REFERENCES categories (id) ON DELETE RESTRICT
)`,
			`CREATE TABLE product_variants (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	product_id uuid NOT NULL,
	color varchar(50),
	size varchar(20),
	barcode varchar(50) NOT NULL,
	stock integer NOT NULL DEFAULT 0 CHECK (stock >= 0),
	created_at timestamptz NOT NULL DEFAULT now(),
	created_by varchar(255),
	modified_at timestamptz,
	modified_by varchar(255),
	CONSTRAINT pk_product_variants PRIMARY KEY (id),
	CONSTRAINT fk_product_variants_product_id FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE
)`,
			`CREATE TABLE carts (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	user_id uuid,
	status varchar(20) NOT NULL CHECK (status IN ('Active', 'Abandoned', 'Converted')),
	created_at timestamptz NOT NULL DEFAULT now(),
	created_by varchar(255),
	modified_at timestamptz,
	modified_by varchar(255),
	CONSTRAINT pk_carts PRIMARY KEY (id),
	CONSTRAINT fk_carts_user_id FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE SET NULL
)`,
			`CREATE TABLE cart_items (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	cart_id uuid NOT NULL,
	variant_id uuid NOT NULL,
	quantity integer NOT NULL CHECK (quantity > 0),
	unit_price numeric(18,2) NOT NULL CHECK (unit_price >= 0),
	CONSTRAINT pk_cart_items PRIMARY KEY (id),
	CONSTRAINT fk_cart_items_cart_id FOREIGN KEY (cart_id) REFERENCES carts (id) ON DELETE CASCADE,
	CONSTRAINT fk_cart_items_variant_id FOREIGN KEY (variant_id) REFERENCES product_variants (id) ON DELETE CASCADE
)`,
			`CREATE TABLE orders (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	number varchar(50) NOT NULL,
	user_id uuid,
	total numeric(18,2) NOT NULL CHECK (total >= 0),
	status varchar(20) NOT NULL CHECK (status IN ('Draft', 'Confirmed', 'Paid', 'Shipped', 'Delivered', 'Cancelled')),
	payment_status varchar(20) NOT NULL CHECK (payment_status IN ('Pending', 'Paid', 'Failed', 'Refunded')),
	shipping_status varchar(20) NOT NULL CHECK (shipping_status IN ('Pending', 'Processing', 'Shipped', 'InTransit', 'Delivered', 'Failed')),
	created_at timestamptz NOT NULL DEFAULT now(),
	created_by varchar(255),
	modified_at timestamptz,
	modified_by varchar(255),
	CONSTRAINT pk_orders PRIMARY KEY (id),
	CONSTRAINT fk_orders_user_id FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE SET NULL
)`,
			`CREATE TABLE order_items (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	order_id uuid NOT NULL,
	variant_id uuid NOT NULL,
	quantity integer NOT NULL CHECK (quantity > 0),
	unit_price numeric(18,2) NOT NULL CHECK (unit_price >= 0),
	CONSTRAINT pk_order_items PRIMARY KEY (id),
	CONSTRAINT fk_order_items_order_id FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE,
	CONSTRAINT fk_order_items_variant_id FOREIGN KEY (variant_id) REFERENCES product_variants (id) ON DELETE RESTRICT
)`,
			`CREATE TABLE payments (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	order_id uuid NOT NULL,
	provider varchar(20) NOT NULL CHECK (provider IN ('MercadoPago', 'Stripe', 'Cash')),
	provider_payment_id varchar(100),
	amount numeric(18,2) NOT NULL CHECK (amount >= 0),
	status varchar(20) NOT NULL CHECK (status IN ('Pending', 'Processing', 'Approved', 'Rejected', 'Cancelled', 'Refunded')),
	failure_reason varchar(500),
	created_at timestamptz NOT NULL DEFAULT now(),
	created_by varchar(255),
	modified_at timestamptz,
	modified_by varchar(255),
	CONSTRAINT pk_payments PRIMARY KEY (id),
	CONSTRAINT fk_payments_order_id FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE
)`,
			`CREATE TABLE shipments (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	order_id uuid NOT NULL,
	provider varchar(20) NOT NULL CHECK (provider IN ('MercadoEnvios', 'Correo', 'Pickup')),
	tracking_code varchar(100),
	address varchar(500) NOT NULL,
	city varchar(100),
	state varchar(100),
	postal_code varchar(20),
	country varchar(100),
	cost numeric(18,2) NOT NULL CHECK (cost >= 0),
	status varchar(20) NOT NULL CHECK (status IN ('Pending', 'Processing', 'Shipped', 'InTransit', 'Delivered', 'Failed', 'Returned')),
	estimated_delivery_date timestamptz,
	actual_delivery_date timestamptz,
	created_at timestamptz NOT NULL DEFAULT now(),
	created_by varchar(255),
	modified_at timestamptz,
	modified_by varchar(255),
	CONSTRAINT pk_shipments PRIMARY KEY (id),
	CONSTRAINT fk_shipments_order_id FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE
)`,
			`CREATE TABLE inventory_movements (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	variant_id uuid NOT NULL,
	quantity integer NOT NULL CHECK (quantity <> 0),
	reason varchar(20) NOT NULL CHECK (reason IN ('Purchase', 'Sale', 'Adjustment', 'Return', 'Damage', 'Loss', 'Transfer')),
	performed_by uuid NOT NULL,
	notes varchar(500),
	created_at timestamptz NOT NULL DEFAULT now(),
	created_by varchar(255),
	modified_at timestamptz,
	modified_by varchar(255),
	CONSTRAINT pk_inventory_movements PRIMARY KEY (id),
	CONSTRAINT fk_inventory_movements_variant_id FOREIGN KEY (variant_id) REFERENCES product_variants (id) ON DELETE RESTRICT,
	CONSTRAINT fk_inventory_movements_performed_by FOREIGN KEY (performed_by) REFERENCES users (id) ON DELETE RESTRICT
)`,
			`CREATE TABLE audit_logs (
	id uuid NOT NULL DEFAULT gen_random_uuid(),
	user_id uuid NOT NULL,
	action varchar(50) NOT NULL,
	entity varchar(100) NOT NULL,
	entity_id uuid NOT NULL,
	data_before jsonb,
	data_after jsonb,
	ip_address varchar(45),
	created_at timestamptz NOT NULL DEFAULT now(),
	CONSTRAINT pk_audit_logs PRIMARY KEY (id),
	CONSTRAINT fk_audit_logs_user_id FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE RESTRICT
)`,
		},
	},
	{
		ID:          "0002_create_indexes",
		Description: "create unique and lookup indexes",
		Statements: []string{
			`CREATE UNIQUE INDEX ux_roles_name ON roles (name)`,
			`CREATE UNIQUE INDEX ux_users_email ON users (email)`,
			`CREATE INDEX ix_users_role_id ON users (role_id)`,
			`CREATE INDEX ix_categories_parent_id ON categories (parent_id)`,
			`CREATE UNIQUE INDEX ux_products_sku ON products (sku)`,
			`CREATE INDEX ix_products_category_id ON products (category_id)`,
			`CREATE UNIQUE INDEX ux_product_variants_barcode ON product_variants (barcode)`,
			`CREATE INDEX ix_product_variants_product_id ON product_variants (product_id)`,
			`CREATE INDEX ix_carts_user_id ON carts (user_id)`,
			`CREATE UNIQUE INDEX ux_cart_items_cart_id_variant_id ON cart_items (cart_id, variant_id)`,
			`CREATE INDEX ix_cart_items_variant_id ON cart_items (variant_id)`,
			`CREATE UNIQUE INDEX ux_orders_number ON orders (number)`,
			`CREATE INDEX ix_orders_user_id ON orders (user_id)`,
			`CREATE UNIQUE INDEX ux_order_items_order_id_variant_id ON order_items (order_id, variant_id)`,
			`CREATE INDEX ix_order_items_variant_id ON order_items (variant_id)`,
			`CREATE INDEX ix_payments_order_id ON payments (order_id)`,
			`CREATE INDEX ix_shipments_order_id ON shipments (order_id)`,
			`CREATE INDEX ix_inventory_movements_variant_id ON inventory_movements (variant_id)`,
			`CREATE INDEX ix_inventory_movements_performed_by ON inventory_movements (performed_by)`,
			`CREATE INDEX ix_audit_logs_created_at ON audit_logs (created_at)`,
			`CREATE INDEX ix_audit_logs_entity_entity_id ON audit_logs (entity, entity_id)`,
			`CREATE INDEX ix_audit_logs_user_id ON audit_logs (user_id)`,
		},
	},
}
