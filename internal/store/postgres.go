package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"
)

// Predefined errors for store operations
var (
	ErrRoleNotFound         = errors.New("store: role not found")
	ErrRoleNameExists       = errors.New("store: role name already exists")
	ErrRoleInUse            = errors.New("store: role is still assigned to users")
	ErrUserNotFound         = errors.New("store: user not found")
	ErrUserEmailExists      = errors.New("store: user email already exists")
	ErrUserInUse            = errors.New("store: user is still referenced by audit or inventory records")
	ErrCategoryNotFound     = errors.New("store: category not found")
	ErrCategoryInUse        = errors.New("store: category still has products or subcategories")
	ErrProductNotFound      = errors.New("store: product not found")
	ErrProductSKUExists     = errors.New("store: product SKU already exists")
	ErrVariantNotFound      = errors.New("store: product variant not found")
	ErrVariantBarcodeExists = errors.New("store: product variant barcode already exists")
	ErrVariantInUse         = errors.New("store: product variant is referenced by order or inventory history")
	ErrInsufficientStock    = errors.New("store: insufficient stock or update constraint violation")
	ErrCartNotFound         = errors.New("store: cart not found")
	ErrCartNotActive        = errors.New("store: cart is not active")
	ErrEmptyCart            = errors.New("store: cart has no items")
	ErrOrderNotFound        = errors.New("store: order not found")
	ErrOrderNumberExists    = errors.New("store: order number already exists")
	ErrMovementNotFound     = errors.New("store: inventory movement not found")
	ErrReferenceMissing     = errors.New("store: referenced row does not exist")
)

// PostgreSQL error codes the store translates.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// DBTX is the query surface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// PostgresStore implements the storer interfaces using PostgreSQL.
// A store obtained inside WithTx is bound to that transaction.
type PostgresStore struct {
	db   *sql.DB
	conn DBTX
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, conn: db}
}

// WithTx runs fn against a store bound to a single transaction, committing when
// fn returns nil and rolling back otherwise. Nested calls join the outer
// transaction.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(tx *PostgresStore) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: WithTx failed to begin transaction: %w", err)
	}
	if err := fn(&PostgresStore{conn: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Printf("WARN: store: rollback failed: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: WithTx failed to commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		log.Println("INFO: Closing database connection pool...")
		err := s.db.Close()
		if err != nil {
			log.Printf("ERROR: Failed to close database connection pool: %v", err)
			return err
		}
		log.Println("INFO: Database connection pool closed successfully.")
		return nil
	}
	return nil
}

// pqCode returns the PostgreSQL error code and constraint name carried by err.
func pqCode(err error) (code, constraint string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

// uniqueViolation maps a unique violation on one of the given constraints to its
// sentinel error. Other errors come back unchanged.
func uniqueViolation(err error, byConstraint map[string]error) error {
	code, constraint := pqCode(err)
	if code != pgUniqueViolation {
		return err
	}
	if mapped, ok := byConstraint[constraint]; ok {
		return mapped
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	code, _ := pqCode(err)
	return code == pgForeignKeyViolation
}

// requireAffected turns a zero-row result into notFound.
func requireAffected(result sql.Result, op string, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: %s failed to get rows affected: %w", op, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// jsonArg passes a JSON document as text so pq does not send it as bytea.
func jsonArg(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
