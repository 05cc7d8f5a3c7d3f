package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppingos/sospay/internal/application/notice"
	paymentUsecases "github.com/shoppingos/sospay/internal/application/payment/usecases"
	"github.com/shoppingos/sospay/internal/interfaces/http/handlers/testutil"
	"github.com/shoppingos/sospay/internal/shared/constants"
	"github.com/shoppingos/sospay/internal/shared/errors"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

func TestCheckoutHandler_SaveBank(t *testing.T) {
	var got paymentUsecases.SaveSelectedBankCommand
	h := NewCheckoutHandler(&mockSaveBank{fn: func(_ context.Context, cmd paymentUsecases.SaveSelectedBankCommand) error {
		got = cmd
		return nil
	}}, nil, logger.NewNop())

	c, w := testutil.NewFormContext(http.MethodPost, "/checkout/orders/7/bank", url.Values{"bank_code": {"ob-lloyds"}})
	testutil.SetURLParam(c, "id", "7")

	h.SaveBank(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, paymentUsecases.SaveSelectedBankCommand{OrderID: 7, BankCode: "ob-lloyds"}, got)
}

func TestCheckoutHandler_SaveBank_Errors(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		err      error
		wantCode int
	}{
		{"invalid id", "abc", nil, http.StatusBadRequest},
		{"zero id", "0", nil, http.StatusBadRequest},
		{"invalid bank", "7", errors.NewValidationError("Validation failed"), http.StatusBadRequest},
		{"unknown order", "7", errors.NewNotFoundError("order not found"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCheckoutHandler(&mockSaveBank{fn: func(context.Context, paymentUsecases.SaveSelectedBankCommand) error {
				return tt.err
			}}, nil, logger.NewNop())

			c, w := testutil.NewFormContext(http.MethodPost, "/checkout/orders/"+tt.id+"/bank", url.Values{"bank_code": {"x"}})
			testutil.SetURLParam(c, "id", tt.id)

			h.SaveBank(c)

			assert.Equal(t, tt.wantCode, w.Code)
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			assert.False(t, resp.Success)
		})
	}
}

func TestCheckoutHandler_Pay_Redirect(t *testing.T) {
	h := NewCheckoutHandler(nil, &mockInitiatePayment{fn: func(_ context.Context, cmd paymentUsecases.InitiatePaymentCommand) (*paymentUsecases.InitiatePaymentResult, error) {
		assert.Equal(t, uint(7), cmd.OrderID)
		require.NotNil(t, cmd.Session)
		return &paymentUsecases.InitiatePaymentResult{Result: paymentUsecases.ResultSuccess, Redirect: "https://bank.example/auth"}, nil
	}}, logger.NewNop())

	c, w := testutil.NewTestContext(http.MethodPost, "/checkout/orders/7/pay", nil)
	testutil.SetURLParam(c, "id", "7")
	testutil.SetSession(c)

	h.Pay(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp PayResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Equal(t, PayResponse{Result: "success", Redirect: "https://bank.example/auth"}, resp)
}

func TestCheckoutHandler_Pay_FailureCarriesNotices(t *testing.T) {
	h := NewCheckoutHandler(nil, &mockInitiatePayment{fn: func(ctx context.Context, cmd paymentUsecases.InitiatePaymentCommand) (*paymentUsecases.InitiatePaymentResult, error) {
		require.NoError(t, notice.Shopper(cmd.Session).Add(ctx, "Please select your bank.", notice.LevelError))
		return &paymentUsecases.InitiatePaymentResult{Result: paymentUsecases.ResultFailure}, nil
	}}, logger.NewNop())

	c, w := testutil.NewTestContext(http.MethodPost, "/checkout/orders/7/pay", nil)
	testutil.SetURLParam(c, "id", "7")
	sess := testutil.SetSession(c)

	h.Pay(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp PayResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Equal(t, "failure", resp.Result)
	assert.Equal(t, []notice.Notice{{Message: "Please select your bank.", Level: notice.LevelError}}, resp.Messages)

	left, err := notice.Shopper(sess).Drain(context.Background())
	require.NoError(t, err)
	assert.Empty(t, left, "notices are consumed by the response")
}

func TestCheckoutHandler_Pay_Errors(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		h := NewCheckoutHandler(nil, &mockInitiatePayment{}, logger.NewNop())
		c, w := testutil.NewTestContext(http.MethodPost, "/checkout/orders/7/pay", nil)
		testutil.SetURLParam(c, "id", "7")

		h.Pay(c)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("session store failure", func(t *testing.T) {
		h := NewCheckoutHandler(nil, &mockInitiatePayment{fn: func(context.Context, paymentUsecases.InitiatePaymentCommand) (*paymentUsecases.InitiatePaymentResult, error) {
			return nil, stderrors.New("redis down")
		}}, logger.NewNop())
		c, w := testutil.NewTestContext(http.MethodPost, "/checkout/orders/7/pay", nil)
		testutil.SetURLParam(c, "id", "7")
		testutil.SetSession(c)

		h.Pay(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		assert.Equal(t, "Internal server error occurred", resp.Error.Message)
	})
}

func TestCheckoutHandler_Notices(t *testing.T) {
	h := NewCheckoutHandler(nil, nil, logger.NewNop())

	c, w := testutil.NewTestContext(http.MethodGet, "/checkout/notices", nil)
	sess := testutil.SetSession(c)
	require.NoError(t, notice.Shopper(sess).Add(context.Background(), "Payment was successful.", notice.LevelSuccess))

	h.Notices(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.JSONEq(t, `[{"message":"Payment was successful.","level":"success"}]`, string(resp.Data))

	c, w = testutil.NewTestContext(http.MethodGet, "/checkout/notices", nil)
	c.Set(constants.ContextKeySession, sess)
	h.Notices(c)
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestCheckoutHandler_Pages(t *testing.T) {
	h := NewCheckoutHandler(nil, nil, logger.NewNop())

	t.Run("checkout", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodGet, "/checkout", nil)
		sess := testutil.SetSession(c)
		require.NoError(t, notice.Shopper(sess).Add(context.Background(), "Cancelled, please try again.", notice.LevelError))

		h.Checkout(c)

		require.Equal(t, http.StatusOK, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		assert.JSONEq(t, `{"messages":[{"message":"Cancelled, please try again.","level":"error"}]}`, string(resp.Data))
	})

	t.Run("order received", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodGet, "/checkout/order-received/42/", nil)
		testutil.SetURLParam(c, "id", "42")
		testutil.SetSession(c)

		h.OrderReceived(c)

		require.Equal(t, http.StatusOK, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		assert.JSONEq(t, `{"order_id":42,"messages":[]}`, string(resp.Data))
	})

	t.Run("order received with a bad id", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodGet, "/checkout/order-received/abc/", nil)
		testutil.SetURLParam(c, "id", "abc")
		testutil.SetSession(c)

		h.OrderReceived(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
