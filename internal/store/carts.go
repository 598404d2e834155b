package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Paulaf319/sas-db-generator/internal/domain"
)

// --- CartStorer Implementation ---

// SaveCart upserts the cart header and replaces its items in one transaction.
func (s *PostgresStore) SaveCart(ctx context.Context, cart *domain.Cart) error {
	return s.WithTx(ctx, func(tx *PostgresStore) error {
		query := `
			INSERT INTO carts (id, user_id, status, ` + auditColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE
			SET user_id = EXCLUDED.user_id, status = EXCLUDED.status,
				modified_at = EXCLUDED.modified_at, modified_by = EXCLUDED.modified_by;
		`
		args := append([]interface{}{cart.ID, cart.UserID, cart.Status}, auditArgs(cart.Auditable)...)
		if _, err := tx.conn.ExecContext(ctx, query, args...); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: cart user", ErrReferenceMissing)
			}
			return fmt.Errorf("store: SaveCart failed to upsert cart: %w", err)
		}
		if _, err := tx.conn.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1;`, cart.ID); err != nil {
			return fmt.Errorf("store: SaveCart failed to clear items: %w", err)
		}
		for i, item := range cart.Items {
			_, err := tx.conn.ExecContext(ctx,
				`INSERT INTO cart_items (id, cart_id, variant_id, quantity, unit_price, position) VALUES ($1, $2, $3, $4, $5, $6);`,
				item.ID, cart.ID, item.VariantID, item.Quantity, item.UnitPrice, i)
			if err != nil {
				if isForeignKeyViolation(err) {
					return fmt.Errorf("%w: variant %s", ErrReferenceMissing, item.VariantID)
				}
				return fmt.Errorf("store: SaveCart failed to insert item: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) GetCart(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	var c domain.Cart
	dest := append([]interface{}{&c.ID, &c.UserID, &c.Status}, auditDest(&c.Auditable)...)
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, user_id, status, `+auditColumns+` FROM carts WHERE id = $1;`, id).Scan(dest...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("store: GetCart failed to scan row: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, variant_id, quantity, unit_price FROM cart_items WHERE cart_id = $1 ORDER BY position, id;`, id)
	if err != nil {
		return nil, fmt.Errorf("store: GetCart failed to query items: %w", err)
	}
	defer rows.Close()

	c.Items = []domain.CartItem{}
	for rows.Next() {
		item := domain.CartItem{CartID: c.ID}
		if err := rows.Scan(&item.ID, &item.VariantID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("store: GetCart failed to scan item row: %w", err)
		}
		c.Items = append(c.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: GetCart iteration error: %w", err)
	}
	return &c, nil
}

// setCartStatus is used by checkout, which only changes the header.
func (s *PostgresStore) setCartStatus(ctx context.Context, cart *domain.Cart) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE carts SET status = $1, modified_at = $2, modified_by = $3 WHERE id = $4;`,
		cart.Status, cart.ModifiedAt, cart.ModifiedBy, cart.ID)
	if err != nil {
		return fmt.Errorf("store: setCartStatus failed: %w", err)
	}
	return requireAffected(result, "setCartStatus", ErrCartNotFound)
}

func (s *PostgresStore) DeleteCart(ctx context.Context, id uuid.UUID) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM carts WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("store: DeleteCart failed to execute delete: %w", err)
	}
	return requireAffected(result, "DeleteCart", ErrCartNotFound)
}
