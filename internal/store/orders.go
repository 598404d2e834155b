package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Paulaf319/sas-db-generator/internal/domain"
)

// --- OrderStorer Implementation ---

const orderColumns = "id, number, user_id, total, status, payment_status, shipping_status, " + auditColumns

var orderConstraints = map[string]error{"ux_orders_number": ErrOrderNumberExists}

// CreateOrder inserts an order with all of its items, payments and shipments.
func (s *PostgresStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	return s.WithTx(ctx, func(tx *PostgresStore) error {
		query := `
			INSERT INTO orders (` + orderColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
		`
		args := append([]interface{}{
			order.ID, order.Number, order.UserID, order.Total, order.Status, order.PaymentStatus, order.ShippingStatus,
		}, auditArgs(order.Auditable)...)
		if _, err := tx.conn.ExecContext(ctx, query, args...); err != nil {
			if mapped := uniqueViolation(err, orderConstraints); mapped != err {
				return mapped
			}
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: order user", ErrReferenceMissing)
			}
			return fmt.Errorf("store: CreateOrder failed to insert order: %w", err)
		}
		return tx.writeOrderChildren(ctx, order)
	})
}

// SaveOrder updates the order header, replaces its items and upserts its
// payments and shipments.
func (s *PostgresStore) SaveOrder(ctx context.Context, order *domain.Order) error {
	return s.WithTx(ctx, func(tx *PostgresStore) error {
		query := `
			UPDATE orders
			SET user_id = $1, total = $2, status = $3, payment_status = $4, shipping_status = $5,
				modified_at = $6, modified_by = $7
			WHERE id = $8;
		`
		result, err := tx.conn.ExecContext(ctx, query,
			order.UserID, order.Total, order.Status, order.PaymentStatus, order.ShippingStatus,
			order.ModifiedAt, order.ModifiedBy, order.ID)
		if err != nil {
			return fmt.Errorf("store: SaveOrder failed to update order: %w", err)
		}
		if err := requireAffected(result, "SaveOrder", ErrOrderNotFound); err != nil {
			return err
		}
		if _, err := tx.conn.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1;`, order.ID); err != nil {
			return fmt.Errorf("store: SaveOrder failed to clear items: %w", err)
		}
		return tx.writeOrderChildren(ctx, order)
	})
}

func (s *PostgresStore) writeOrderChildren(ctx context.Context, order *domain.Order) error {
	for i, item := range order.Items {
		_, err := s.conn.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, variant_id, quantity, unit_price, position) VALUES ($1, $2, $3, $4, $5, $6);`,
			item.ID, order.ID, item.VariantID, item.Quantity, item.UnitPrice, i)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: variant %s", ErrReferenceMissing, item.VariantID)
			}
			return fmt.Errorf("store: failed to insert order item: %w", err)
		}
	}
	for _, p := range order.Payments {
		if err := s.SavePayment(ctx, p); err != nil {
			return err
		}
	}
	for _, sh := range order.Shipments {
		if err := s.SaveShipment(ctx, sh); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.getOrder(ctx, "GetOrder", `SELECT `+orderColumns+` FROM orders WHERE id = $1;`, id)
}

func (s *PostgresStore) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return s.getOrder(ctx, "GetOrderByNumber", `SELECT `+orderColumns+` FROM orders WHERE number = $1;`, number)
}

func (s *PostgresStore) getOrder(ctx context.Context, op, query string, arg interface{}) (*domain.Order, error) {
	var o domain.Order
	dest := append([]interface{}{
		&o.ID, &o.Number, &o.UserID, &o.Total, &o.Status, &o.PaymentStatus, &o.ShippingStatus,
	}, auditDest(&o.Auditable)...)
	if err := s.conn.QueryRowContext(ctx, query, arg).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("store: %s failed to scan row: %w", op, err)
	}

	var err error
	if o.Items, err = s.orderItems(ctx, o.ID); err != nil {
		return nil, fmt.Errorf("store: %s: %w", op, err)
	}
	if o.Payments, err = s.orderPayments(ctx, o.ID); err != nil {
		return nil, fmt.Errorf("store: %s: %w", op, err)
	}
	if o.Shipments, err = s.orderShipments(ctx, o.ID); err != nil {
		return nil, fmt.Errorf("store: %s: %w", op, err)
	}
	return &o, nil
}

func (s *PostgresStore) orderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, variant_id, quantity, unit_price FROM order_items WHERE order_id = $1 ORDER BY position, id;`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		item := domain.OrderItem{OrderID: orderID}
		if err := rows.Scan(&item.ID, &item.VariantID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const paymentColumns = "id, order_id, provider, provider_payment_id, amount, status, failure_reason, " + auditColumns

func (s *PostgresStore) orderPayments(ctx context.Context, orderID uuid.UUID) ([]*domain.Payment, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 ORDER BY created_at;`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []*domain.Payment{}
	for rows.Next() {
		p := &domain.Payment{}
		dest := append([]interface{}{
			&p.ID, &p.OrderID, &p.Provider, &p.ProviderPaymentID, &p.Amount, &p.Status, &p.FailureReason,
		}, auditDest(&p.Auditable)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

const shipmentColumns = "id, order_id, provider, tracking_code, address, city, state, postal_code, country, cost, status, " +
	"estimated_delivery_date, actual_delivery_date, " + auditColumns

func (s *PostgresStore) orderShipments(ctx context.Context, orderID uuid.UUID) ([]*domain.Shipment, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE order_id = $1 ORDER BY created_at;`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipments: %w", err)
	}
	defer rows.Close()

	shipments := []*domain.Shipment{}
	for rows.Next() {
		sh := &domain.Shipment{}
		a := &sh.Address
		dest := append([]interface{}{
			&sh.ID, &sh.OrderID, &sh.Provider, &sh.TrackingCode,
			&a.Line, &a.City, &a.State, &a.PostalCode, &a.Country,
			&sh.Cost, &sh.Status, &sh.EstimatedDeliveryDate, &sh.ActualDeliveryDate,
		}, auditDest(&sh.Auditable)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan shipment row: %w", err)
		}
		shipments = append(shipments, sh)
	}
	return shipments, rows.Err()
}

// SavePayment inserts or updates a single payment.
func (s *PostgresStore) SavePayment(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET provider_payment_id = EXCLUDED.provider_payment_id, amount = EXCLUDED.amount,
			status = EXCLUDED.status, failure_reason = EXCLUDED.failure_reason,
			modified_at = EXCLUDED.modified_at, modified_by = EXCLUDED.modified_by;
	`
	args := append([]interface{}{
		payment.ID, payment.OrderID, payment.Provider, payment.ProviderPaymentID, payment.Amount,
		payment.Status, payment.FailureReason,
	}, auditArgs(payment.Auditable)...)
	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: order %s", ErrReferenceMissing, payment.OrderID)
		}
		return fmt.Errorf("store: SavePayment failed: %w", err)
	}
	return nil
}

// SaveShipment inserts or updates a single shipment.
func (s *PostgresStore) SaveShipment(ctx context.Context, shipment *domain.Shipment) error {
	query := `
		INSERT INTO shipments (` + shipmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE
		SET tracking_code = EXCLUDED.tracking_code, address = EXCLUDED.address, city = EXCLUDED.city,
			state = EXCLUDED.state, postal_code = EXCLUDED.postal_code, country = EXCLUDED.country,
			cost = EXCLUDED.cost, status = EXCLUDED.status,
			estimated_delivery_date = EXCLUDED.estimated_delivery_date,
			actual_delivery_date = EXCLUDED.actual_delivery_date,
			modified_at = EXCLUDED.modified_at, modified_by = EXCLUDED.modified_by;
	`
	a := shipment.Address
	args := append([]interface{}{
		shipment.ID, shipment.OrderID, shipment.Provider, shipment.TrackingCode,
		a.Line, a.City, a.State, a.PostalCode, a.Country,
		shipment.Cost, shipment.Status, shipment.EstimatedDeliveryDate, shipment.ActualDeliveryDate,
	}, auditArgs(shipment.Auditable)...)
	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: order %s", ErrReferenceMissing, shipment.OrderID)
		}
		return fmt.Errorf("store: SaveShipment failed: %w", err)
	}
	return nil
}

// DeleteOrder removes an order together with its items, payments and shipments.
func (s *PostgresStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM orders WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("store: DeleteOrder failed to execute delete: %w", err)
	}
	return requireAffected(result, "DeleteOrder", ErrOrderNotFound)
}
