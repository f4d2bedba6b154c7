package service

import (
	"context"
	"fmt"

	"github.com/vibast-solutions/ms-go-shop/app/entity"
	"github.com/vibast-solutions/ms-go-shop/app/gateway"
	"github.com/vibast-solutions/ms-go-shop/app/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OrderService owns the order state machine: a PENDING row is written when
// the gateway order is created, and the verified payment callback moves it
// to PAID. PAID is terminal.
type OrderService struct {
	orderRepo   *repository.OrderRepository
	productRepo *repository.ProductRepository
	gateway     gateway.PaymentGateway
	currency    string
}

func NewOrderService(
	orderRepo *repository.OrderRepository,
	productRepo *repository.ProductRepository,
	paymentGateway gateway.PaymentGateway,
	currency string,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		gateway:     paymentGateway,
		currency:    currency,
	}
}

// CreateOrder prices the referenced product, registers the order with the
// gateway and records it locally as PENDING. Orders without a positive
// amount are rejected before the gateway is involved.
func (s *OrderService) CreateOrder(ctx context.Context, productID string) (string, error) {
	product, err := s.productRepo.FindByProductID(ctx, productID)
	if err != nil {
		return "", err
	}
	if product == nil {
		return "", ErrProductNotFound
	}

	amount := product.Price
	if amount <= 0 {
		return "", ErrInvalidAmount
	}

	receiptID := "rcpt_" + uuid.New().String()
	orderID, err := s.gateway.CreateOrder(ctx, amount, s.currency, receiptID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if err := s.orderRepo.CreatePending(ctx, orderID); err != nil {
		// The gateway order exists; the row will be recreated by the
		// payment callback's upsert if verification succeeds.
		logrus.WithError(err).WithField("order_id", orderID).Error("Failed to record pending order")
		return "", err
	}

	return orderID, nil
}

// VerifyPayment validates the callback signature and marks the order PAID.
// A bad signature is a normal outcome (false, nil), not an error, so the
// client can drive a retry. The upsert keyed by order_id makes replays and
// concurrent duplicate callbacks idempotent.
func (s *OrderService) VerifyPayment(ctx context.Context, orderID, paymentID, signature, email string) (bool, error) {
	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		logrus.WithFields(logrus.Fields{
			"order_id":   orderID,
			"payment_id": paymentID,
		}).Warn("Payment signature verification failed")
		return false, nil
	}

	if err := s.orderRepo.MarkPaid(ctx, orderID, paymentID, email); err != nil {
		return false, err
	}
	return true, nil
}

// FetchOrders lists every order stamped with the given email.
func (s *OrderService) FetchOrders(ctx context.Context, email string) ([]*entity.Order, error) {
	return s.orderRepo.ListByEmail(ctx, email)
}
