package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_Validation(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		currency string
		email    string
		wantErr  string
	}{
		{"zero total", "0", "GBP", "a@b.com", "order total must be positive"},
		{"bad currency", "10", "POUND", "a@b.com", "currency must be a 3-letter code"},
		{"missing email", "10", "GBP", " ", "billing email is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(decimal.RequireFromString(tt.total), tt.currency, tt.email, "ua")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewOrder_Defaults(t *testing.T) {
	o, err := NewOrder(decimal.RequireFromString("12.499"), "gbp", "shopper@example.com", "Mozilla/5.0")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status())
	assert.Equal(t, "GBP", o.Currency())
	assert.Equal(t, "12.5", o.Total().String())
	assert.Equal(t, PaymentMethodShoppingOS, o.PaymentMethod())
	assert.False(t, o.IsPaid())
}

func TestOrder_CompletePaymentIsIdempotent(t *testing.T) {
	o, err := NewOrder(decimal.NewFromInt(20), "GBP", "shopper@example.com", "")
	require.NoError(t, err)

	assert.True(t, o.CompletePayment())
	require.NotNil(t, o.PaidAt())
	paidAt := *o.PaidAt()

	assert.False(t, o.CompletePayment())
	assert.Equal(t, paidAt, *o.PaidAt())
	assert.Equal(t, StatusProcessing, o.Status())
	assert.Equal(t, 1, o.Version())
}

func TestOrder_MarkFailed(t *testing.T) {
	o, err := NewOrder(decimal.NewFromInt(20), "GBP", "shopper@example.com", "")
	require.NoError(t, err)

	require.NoError(t, o.MarkFailed())
	assert.Equal(t, StatusFailed, o.Status())
	require.NoError(t, o.MarkFailed())

	o.CompletePayment()
	assert.Error(t, o.MarkFailed())
}

func TestOrder_ReduceStockOnce(t *testing.T) {
	o, err := NewOrder(decimal.NewFromInt(20), "GBP", "shopper@example.com", "")
	require.NoError(t, err)

	assert.True(t, o.ReduceStock())
	assert.False(t, o.ReduceStock())
	assert.True(t, o.StockReduced())
}

func TestReconstructOrder(t *testing.T) {
	_, err := ReconstructOrder(ReconstructParams{ID: 0, Status: StatusPending})
	assert.Error(t, err)

	_, err = ReconstructOrder(ReconstructParams{ID: 1, Status: "shipped"})
	assert.Error(t, err)

	o, err := ReconstructOrder(ReconstructParams{
		ID:        99,
		Total:     decimal.RequireFromString("40.00"),
		Currency:  "GBP",
		Status:    StatusCompleted,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, o.IsPaid())
}

func TestRemainingRefundable(t *testing.T) {
	o, err := NewOrder(decimal.RequireFromString("50.00"), "GBP", "shopper@example.com", "")
	require.NoError(t, err)
	o.SetID(99)

	r1, err := NewRefund(99, decimal.RequireFromString("12.50"), "damaged")
	require.NoError(t, err)
	r2, err := NewRefund(99, decimal.RequireFromString("7.50"), "")
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("30").Equal(RemainingRefundable(o, []*Refund{r1, r2})))
}

func TestNewRefund_Validation(t *testing.T) {
	_, err := NewRefund(0, decimal.NewFromInt(1), "")
	assert.Error(t, err)

	_, err = NewRefund(1, decimal.Zero, "")
	assert.Error(t, err)
}

func TestStatus_Classification(t *testing.T) {
	assert.True(t, StatusCompleted.IsPaid())
	assert.False(t, StatusOnHold.IsPaid())
	assert.True(t, StatusOnHold.IsUnfinished())
	assert.False(t, StatusRefunded.IsUnfinished())
}
