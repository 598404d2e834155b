package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/Paulaf319/sas-db-generator/internal/domain"
)

// RoleStorer defines the database operations for roles.
type RoleStorer interface {
	CountRoles(ctx context.Context) (int, error)
	InsertRoleIfAbsent(ctx context.Context, role domain.Role) (bool, error)
	CreateRole(ctx context.Context, role *domain.Role) error
	GetRoleByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error
}

// UserStorer defines the database operations for users.
type UserStorer interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// ListCategoriesParams holds parameters for listing categories.
type ListCategoriesParams struct {
	Limit    int
	Offset   int
	ParentID *uuid.UUID // only direct children of this category when set
	RootOnly bool
}

// CategoryStorer defines the database operations for categories.
type CategoryStorer interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	ListCategories(ctx context.Context, params ListCategoriesParams) ([]domain.Category, int, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// ProductStorer defines the database operations for products and their variants.
type ProductStorer interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	CreateVariant(ctx context.Context, variant *domain.ProductVariant) error
	GetVariantByID(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error)
	ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]domain.ProductVariant, error)
	UpdateVariant(ctx context.Context, variant *domain.ProductVariant) error
	DeleteVariant(ctx context.Context, id uuid.UUID) error
	AdjustVariantStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

// CartStorer persists carts together with their items.
type CartStorer interface {
	SaveCart(ctx context.Context, cart *domain.Cart) error
	GetCart(ctx context.Context, id uuid.UUID) (*domain.Cart, error)
	DeleteCart(ctx context.Context, id uuid.UUID) error
}

// OrderStorer persists orders together with their items, payments and shipments.
type OrderStorer interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error)
	SaveOrder(ctx context.Context, order *domain.Order) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	SavePayment(ctx context.Context, payment *domain.Payment) error
	SaveShipment(ctx context.Context, shipment *domain.Shipment) error
}

// InventoryStorer appends to and reads the inventory movement ledger.
type InventoryStorer interface {
	RecordMovement(ctx context.Context, movement *domain.InventoryMovement) error
	ListMovements(ctx context.Context, variantID uuid.UUID) ([]domain.InventoryMovement, error)
	UpdateMovementNotes(ctx context.Context, movement *domain.InventoryMovement) error
}

// ListAuditLogsParams filters audit log queries. Zero values mean "any".
type ListAuditLogsParams struct {
	Limit    int
	Offset   int
	UserID   *uuid.UUID
	Entity   string
	EntityID *uuid.UUID
}

// AuditStorer appends to and reads the audit log.
type AuditStorer interface {
	AppendAuditLog(ctx context.Context, entry *domain.AuditLog) error
	ListAuditLogs(ctx context.Context, params ListAuditLogsParams) ([]domain.AuditLog, int, error)
}

// CheckoutRequest converts an active cart into an order.
type CheckoutRequest struct {
	CartID            uuid.UUID
	OrderNumber       string
	PerformedBy       uuid.UUID
	Provider          domain.PaymentProvider
	ProviderPaymentID *string
	Actor             string
}

// Storer is the full persistence surface.
type Storer interface {
	RoleStorer
	UserStorer
	CategoryStorer
	ProductStorer
	CartStorer
	OrderStorer
	InventoryStorer
	AuditStorer
	Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error)
	Ping(ctx context.Context) error
}

var _ Storer = (*PostgresStore)(nil)
