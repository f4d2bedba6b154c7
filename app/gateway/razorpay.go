package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
)

// PaymentGateway is the external payment collaborator. It is constructed
// once at startup and injected; nothing references it as package state.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receiptID string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type RazorpayGateway struct {
	client  *razorpay.Client
	secret  string
	timeout time.Duration
}

func NewRazorpayGateway(keyID, keySecret string, timeout time.Duration) *RazorpayGateway {
	return &RazorpayGateway{
		client:  razorpay.NewClient(keyID, keySecret),
		secret:  keySecret,
		timeout: timeout,
	}
}

// CreateOrder registers an order with Razorpay and returns its identifier.
// The SDK call carries no context, so it runs on a goroutine and the caller
// is released once the deadline passes; a timeout is a retryable failure.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receiptID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type createResult struct {
		body map[string]interface{}
		err  error
	}
	resultCh := make(chan createResult, 1)

	go func() {
		body, err := g.client.Order.Create(map[string]interface{}{
			"amount":   amountMinorUnits,
			"currency": currency,
			"receipt":  receiptID,
		}, nil)
		resultCh <- createResult{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			return "", res.err
		}
		id, ok := res.body["id"].(string)
		if !ok || id == "" {
			return "", errors.New("gateway response missing order id")
		}
		return id, nil
	}
}

// VerifySignature checks Razorpay's payment signature: hex-encoded
// HMAC-SHA256 over "order_id|payment_id" keyed with the API secret.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
