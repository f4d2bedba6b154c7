package entity

import (
	"database/sql"
	"time"
)

const (
	OrderStatusPending = "PENDING"
	OrderStatusPaid    = "PAID"
)

// OrderID is the payment gateway's order identifier and is unique; it keys
// the upsert that makes payment callbacks idempotent.
type Order struct {
	ID        uint64
	OrderID   string
	PaymentID sql.NullString
	Email     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
