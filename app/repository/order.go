package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/entity"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreatePending records a gateway order locally before the payment callback
// arrives, so orders that are never verified remain visible.
func (r *OrderRepository) CreatePending(ctx context.Context, orderID string) error {
	query := `
		INSERT INTO orders (order_id, payment_id, email, status, created_at, updated_at)
		VALUES (?, NULL, '', ?, ?, ?)
	`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query, orderID, entity.OrderStatusPending, now, now)
	return err
}

// MarkPaid upserts on the order_id unique key. Replayed or concurrent
// callbacks for the same order converge on a single PAID row; the unique
// constraint turns the losing insert into an update.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID, paymentID, email string) error {
	query := `
		INSERT INTO orders (order_id, payment_id, email, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			payment_id = VALUES(payment_id),
			email = VALUES(email),
			status = VALUES(status),
			updated_at = VALUES(updated_at)
	`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query, orderID, paymentID, email, entity.OrderStatusPaid, now, now)
	return err
}

func (r *OrderRepository) ListByEmail(ctx context.Context, email string) ([]*entity.Order, error) {
	query := `
		SELECT id, order_id, payment_id, email, status, created_at, updated_at
		FROM orders WHERE email = ? ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order := &entity.Order{}
		if err := rows.Scan(
			&order.ID,
			&order.OrderID,
			&order.PaymentID,
			&order.Email,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
