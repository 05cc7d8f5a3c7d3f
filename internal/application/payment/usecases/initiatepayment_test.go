package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shoppingos/sospay/internal/application/common/links"
	"github.com/shoppingos/sospay/internal/application/notice"
	"github.com/shoppingos/sospay/internal/application/payment/paymentgateway"
	"github.com/shoppingos/sospay/internal/application/testutil"
	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/infrastructure/cache"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

var testSettings = paymentgateway.Settings{
	TestMode:            true,
	Currency:            "GBP",
	Version:             "1.0.0",
	PaymentFailEndpoint: paymentgateway.EndpointFail,
	RefundFailEndpoint:  paymentgateway.EndpointToken,
}

func TestPSUChecksum(t *testing.T) {
	assert.Equal(t, "a29fe5ec", PSUChecksum("shopper@example.com"))
	assert.Equal(t, PSUChecksum("shopper@example.com"), PSUChecksum(" shopper@example.com "))
	assert.Equal(t, "00000000", PSUChecksum(""))
}

// TestInitiatePayment_Outcomes verifies each outcome yields either a redirect or exactly one notice.
func TestInitiatePayment_Outcomes(t *testing.T) {
	tests := []struct {
		name         string
		bank         string
		resp         *paymentgateway.Response
		err          error
		wantRedirect string
		wantNotice   string
		noCall       bool
	}{
		{
			name:         "received redirects to bank",
			bank:         "ob-natwest",
			resp:         &paymentgateway.Response{Code: paymentgateway.CodeReceived, RedirectURL: "https://bank.example/auth"},
			wantRedirect: "https://bank.example/auth",
		},
		{
			name:       "service error surfaces its message",
			bank:       "ob-natwest",
			resp:       &paymentgateway.Response{Code: paymentgateway.CodeError, Message: "Bank unavailable"},
			wantNotice: "Bank unavailable",
		},
		{
			name:       "unrecognized code asks to retry",
			bank:       "ob-natwest",
			resp:       &paymentgateway.Response{},
			wantNotice: msgTryAgain,
		},
		{
			name:       "received without redirect asks to retry",
			bank:       "ob-natwest",
			resp:       &paymentgateway.Response{Code: paymentgateway.CodeReceived},
			wantNotice: msgTryAgain,
		},
		{
			name:       "transport failure",
			bank:       "ob-natwest",
			err:        paymentgateway.ErrTransport,
			wantNotice: msgConnectionError,
		},
		{
			name:       "no bank selected",
			wantNotice: msgSelectBank,
			noCall:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			orders := testutil.NewMockOrderRepository()
			meta := testutil.NewMockMetadataStore()
			gw := &testutil.MockGateway{}
			sess := cache.NewMemorySessionStore().Load("shopper")

			testutil.SeedOrder(t, orders, 42, "25.00", order.StatusPending)
			if tt.bank != "" {
				require.NoError(t, meta.Update(ctx, 42, order.MetaSelectedBank, tt.bank))
			}
			if !tt.noCall {
				gw.On("InitiatePayment", mock.Anything, mock.MatchedBy(func(req paymentgateway.PaymentRequest) bool {
					return req.OrderID == 42 &&
						req.Environment == paymentgateway.EnvironmentSandbox &&
						req.Total.StringFixed(2) == "25.00" &&
						req.Currency == "GBP" &&
						req.BankCode == tt.bank &&
						req.CallbackURL == "https://shop.example/?wc-api=shoppingos-payment&order_id=42" &&
						req.PSUChecksum == PSUChecksum("shopper@example.com") &&
						req.UserAgent == "Mozilla/5.0" &&
						req.Version == "1.0.0"
				})).Return(tt.resp, tt.err).Once()
			}

			uc := NewInitiatePaymentUseCase(orders, meta, gw, links.NewBuilder("https://shop.example"), testSettings, logger.NewNop())
			result, err := uc.Execute(ctx, InitiatePaymentCommand{OrderID: 42, Session: sess})
			require.NoError(t, err)

			notices, err := notice.Shopper(sess).Drain(ctx)
			require.NoError(t, err)

			if tt.wantRedirect != "" {
				assert.Equal(t, ResultSuccess, result.Result)
				assert.Equal(t, tt.wantRedirect, result.Redirect)
				assert.Empty(t, notices)
			} else {
				assert.Equal(t, ResultFailure, result.Result)
				assert.Empty(t, result.Redirect)
				require.Len(t, notices, 1)
				assert.Equal(t, tt.wantNotice, notices[0].Message)
				assert.Equal(t, notice.LevelError, notices[0].Level)
			}

			o, err := orders.GetByID(ctx, 42)
			require.NoError(t, err)
			assert.Equal(t, order.StatusPending, o.Status(), "initiation never mutates the order")
			gw.AssertExpectations(t)
		})
	}
}

func TestInitiatePayment_UnknownOrder(t *testing.T) {
	ctx := context.Background()
	sess := cache.NewMemorySessionStore().Load("shopper")
	gw := &testutil.MockGateway{}

	uc := NewInitiatePaymentUseCase(testutil.NewMockOrderRepository(), testutil.NewMockMetadataStore(), gw,
		links.NewBuilder("https://shop.example"), testSettings, logger.NewNop())
	result, err := uc.Execute(ctx, InitiatePaymentCommand{OrderID: 404, Session: sess})
	require.NoError(t, err)
	assert.Equal(t, ResultFailure, result.Result)

	notices, err := notice.Shopper(sess).Drain(ctx)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, msgOrderNotFound, notices[0].Message)
	gw.AssertNotCalled(t, "InitiatePayment", mock.Anything, mock.Anything)
}
