package payments

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/carebridge-health/telecare-platform/internal/appointments"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

// FakeOrderClient issues deterministic order handles without touching the
// gateway. Enabled by ALLOW_FAKE_PAYMENTS for local development and demos.
type FakeOrderClient struct {
	logger  *logging.Logger
	counter atomic.Int64
}

// NewFakeOrderClient creates a fake order client.
func NewFakeOrderClient(logger *logging.Logger) *FakeOrderClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &FakeOrderClient{logger: logger.Component("payments.fake")}
}

// KeyID returns a placeholder key for the widget config.
func (c *FakeOrderClient) KeyID() string {
	return "rzp_test_fake"
}

// CreateOrder returns a synthetic order handle.
func (c *FakeOrderClient) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*appointments.PaymentOrder, error) {
	n := c.counter.Add(1)
	order := &appointments.PaymentOrder{
		ID:       fmt.Sprintf("order_fake_%06d", n),
		Amount:   amountPaise,
		Currency: currency,
	}
	c.logger.Info("fake order created", "order_id", order.ID, "amount", amountPaise, "receipt", receipt)
	return order, nil
}
