package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentUsecases "github.com/shoppingos/sospay/internal/application/payment/usecases"
	refundUsecases "github.com/shoppingos/sospay/internal/application/refund/usecases"
	"github.com/shoppingos/sospay/internal/interfaces/http/handlers/testutil"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

func newTestWebhookHandler(payment *paymentUsecases.CallbackResult, refund *refundUsecases.CallbackResult, err error) *WebhookHandler {
	return NewWebhookHandler(
		&mockPaymentCallback{fn: func(_ context.Context, cmd paymentUsecases.PaymentCallbackCommand) (*paymentUsecases.CallbackResult, error) {
			if cmd.Query.Get("order_id") != "42" {
				return nil, stderrors.New("query not forwarded")
			}
			return payment, err
		}},
		&mockRefundCallback{fn: func(_ context.Context, cmd refundUsecases.RefundCallbackCommand) (*refundUsecases.CallbackResult, error) {
			if cmd.Query.Get("refund_id") != "99" {
				return nil, stderrors.New("query not forwarded")
			}
			return refund, err
		}},
		logger.NewNop(),
	)
}

func TestWebhookHandler_Dispatch(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		payment      *paymentUsecases.CallbackResult
		refund       *refundUsecases.CallbackResult
		err          error
		wantCode     int
		wantLocation string
	}{
		{
			name:         "payment",
			query:        "wc-api=shoppingos-payment&order_id=42&code=success",
			payment:      &paymentUsecases.CallbackResult{Redirect: "https://shop.example/checkout/order-received/42", Outcome: paymentUsecases.OutcomePaid},
			wantCode:     http.StatusFound,
			wantLocation: "https://shop.example/checkout/order-received/42",
		},
		{
			name:         "refund",
			query:        "wc-api=shoppingos-refund&refund_id=99&order_id=7",
			refund:       &refundUsecases.CallbackResult{Redirect: "https://shop.example/admin/orders/7", Outcome: refundUsecases.OutcomeRefunded},
			wantCode:     http.StatusFound,
			wantLocation: "https://shop.example/admin/orders/7",
		},
		{
			name:         "store failure still redirects",
			query:        "wc-api=shoppingos-payment&order_id=42",
			payment:      &paymentUsecases.CallbackResult{Redirect: "https://shop.example/checkout"},
			err:          stderrors.New("db down"),
			wantCode:     http.StatusFound,
			wantLocation: "https://shop.example/checkout",
		},
		{
			name:     "no redirect",
			query:    "wc-api=shoppingos-refund&refund_id=99",
			err:      stderrors.New("db down"),
			wantCode: http.StatusInternalServerError,
		},
		{
			name:     "unknown webhook",
			query:    "wc-api=other",
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestWebhookHandler(tt.payment, tt.refund, tt.err)

			c, w := testutil.NewTestContext(http.MethodGet, "/?"+tt.query, nil)
			testutil.SetSession(c)

			h.Dispatch(c)

			require.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
		})
	}
}
