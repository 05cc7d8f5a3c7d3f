package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shoppingos/sospay/internal/domain/order"
)

// SeedOrder stores an order with a fixed id and status.
func SeedOrder(t *testing.T, repo *MockOrderRepository, id uint, total string, status order.Status) *order.Order {
	t.Helper()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	o, err := order.ReconstructOrder(order.ReconstructParams{
		ID:                id,
		Total:             decimal.RequireFromString(total),
		Currency:          "GBP",
		Status:            status,
		BillingEmail:      "shopper@example.com",
		CustomerUserAgent: "Mozilla/5.0",
		PaymentMethod:     order.PaymentMethodShoppingOS,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

// SeedRefund stores a draft refund with a fixed id.
func SeedRefund(t *testing.T, repo *MockRefundRepository, id, orderID uint, amount string) *order.Refund {
	t.Helper()

	r := order.ReconstructRefund(id, orderID, decimal.RequireFromString(amount), "", time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC), nil)
	require.NoError(t, repo.Create(context.Background(), r))
	return r
}
