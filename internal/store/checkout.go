package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Paulaf319/sas-db-generator/internal/domain"
)

// Checkout turns an active cart into an order in a single transaction: the order
// with its lines and a pending payment for the full total, one Sale movement and
// stock decrement per line, and the cart marked Converted. Any failure, including
// a line the stock cannot cover, leaves the database unchanged.
func (s *PostgresStore) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	var order *domain.Order
	err := s.WithTx(ctx, func(tx *PostgresStore) error {
		cart, err := tx.lockCart(ctx, req)
		if err != nil {
			return err
		}

		order, err = domain.NewOrder(req.OrderNumber, cart.UserID)
		if err != nil {
			return err
		}
		order.StampCreator(req.Actor)
		for _, item := range cart.Items {
			if err := order.AddItem(item.VariantID, item.Quantity, item.UnitPrice); err != nil {
				return err
			}
		}
		if err := order.UpdateStatus(domain.OrderConfirmed); err != nil {
			return err
		}
		payment, err := order.AttachPayment(req.Provider, order.Total, req.ProviderPaymentID)
		if err != nil {
			return err
		}
		payment.StampCreator(req.Actor)
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		notes := "checkout " + order.Number
		for _, item := range order.Items {
			if _, err := tx.AdjustVariantStock(ctx, item.VariantID, -item.Quantity); err != nil {
				if errors.Is(err, ErrInsufficientStock) {
					return fmt.Errorf("%w: variant %s", ErrInsufficientStock, item.VariantID)
				}
				return err
			}
			movement, err := domain.NewInventoryMovement(item.VariantID, -item.Quantity, domain.ReasonSale, req.PerformedBy, &notes)
			if err != nil {
				return err
			}
			movement.StampCreator(req.Actor)
			if err := tx.RecordMovement(ctx, movement); err != nil {
				return err
			}
		}

		cart.MarkConverted()
		cart.StampModifier(req.Actor)
		return tx.setCartStatus(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// lockCart loads the cart with its header row locked for the rest of the
// transaction and checks that it can be checked out.
func (s *PostgresStore) lockCart(ctx context.Context, req CheckoutRequest) (*domain.Cart, error) {
	var locked string
	if err := s.conn.QueryRowContext(ctx, `SELECT status FROM carts WHERE id = $1 FOR UPDATE;`, req.CartID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("store: Checkout failed to lock cart: %w", err)
	}
	cart, err := s.GetCart(ctx, req.CartID)
	if err != nil {
		return nil, err
	}
	if cart.Status != domain.CartActive {
		return nil, ErrCartNotActive
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	return cart, nil
}
