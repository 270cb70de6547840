package payments

import (
	"context"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/carebridge-health/telecare-platform/internal/appointments"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

// RazorpayOrderClient creates payment orders via the Razorpay Orders API.
// The client-side widget collects payment against the returned order id and
// reports completion through the public callback endpoint.
type RazorpayOrderClient struct {
	client *razorpay.Client
	keyID  string
	logger *logging.Logger
}

// NewRazorpayOrderClient creates an order client with API credentials.
func NewRazorpayOrderClient(keyID, keySecret string, logger *logging.Logger) (*RazorpayOrderClient, error) {
	if keyID == "" || keySecret == "" {
		return nil, errors.New("payments: razorpay credentials required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RazorpayOrderClient{
		client: razorpay.NewClient(keyID, keySecret),
		keyID:  keyID,
		logger: logger.Component("payments.razorpay"),
	}, nil
}

// KeyID returns the public key id the checkout widget needs.
func (c *RazorpayOrderClient) KeyID() string {
	return c.keyID
}

// CreateOrder requests an order handle for the given amount in paise. An
// order without an id is treated as failure; nothing is persisted for it.
func (c *RazorpayOrderClient) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*appointments.PaymentOrder, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := c.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("payments: create razorpay order: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, errors.New("payments: razorpay order response missing id")
	}

	order := &appointments.PaymentOrder{ID: id, Amount: amountPaise, Currency: currency}
	if amt, ok := body["amount"].(float64); ok {
		order.Amount = int64(amt)
	}
	if cur, ok := body["currency"].(string); ok && cur != "" {
		order.Currency = cur
	}

	c.logger.Info("razorpay order created", "order_id", id, "amount", order.Amount, "currency", order.Currency)
	return order, nil
}
