package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shoppingos/sospay/internal/application/notice"
	"github.com/shoppingos/sospay/internal/application/payment/paymentgateway"
	"github.com/shoppingos/sospay/internal/application/refund/pending"
	"github.com/shoppingos/sospay/internal/application/testutil"
	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/shared/biztime"
	apperrors "github.com/shoppingos/sospay/internal/shared/errors"
)

func TestProcessRefund_ArmsBankRedirect(t *testing.T) {
	ctx := context.Background()
	f := newRefundFixture(t)
	testutil.SeedOrder(t, f.orders, 7, "40.00", order.StatusProcessing)

	res, err := f.process.Execute(ctx, ProcessRefundCommand{OrderID: 7, Amount: decimal.RequireFromString("15.00"), Session: f.sess})
	require.NoError(t, err)

	assert.Equal(t, "15.00", res.Refund.Amount)
	assert.Equal(t, shopURL+"/admin/orders/7", res.Redirect)
	a := f.attempt(t)
	assert.Equal(t, pending.StateAwaitingBankRedirect, a.State)
	assert.Equal(t, pending.Record{RefundID: res.Refund.ID, OrderID: 7}, a.Record)
	assert.Equal(t, "1", f.meta.Value(7, order.MetaRefundCurrent))
}

func TestProcessRefund_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		status   order.Status
		amount   string
		prepare  func(t *testing.T, f *refundFixture)
		wantType apperrors.ErrorType
	}{
		{name: "unpaid order", status: order.StatusPending, amount: "5.00", wantType: apperrors.ErrorTypeValidation},
		{name: "amount above total", status: order.StatusCompleted, amount: "40.01", wantType: apperrors.ErrorTypeValidation},
		{
			name:   "amount above what is left",
			status: order.StatusCompleted,
			amount: "30.00",
			prepare: func(t *testing.T, f *refundFixture) {
				testutil.SeedRefund(t, f.refunds, 50, 7, "20.00")
			},
			wantType: apperrors.ErrorTypeValidation,
		},
		{
			name:   "live attempt in this session",
			status: order.StatusCompleted,
			amount: "5.00",
			prepare: func(t *testing.T, f *refundFixture) {
				f.awaitWebhook(t, 50, 7)
			},
			wantType: apperrors.ErrorTypeConflict,
		},
		{
			name:   "draft armed by another session",
			status: order.StatusCompleted,
			amount: "5.00",
			prepare: func(t *testing.T, f *refundFixture) {
				testutil.SeedRefund(t, f.refunds, 50, 7, "5.00")
				require.NoError(t, f.meta.Update(context.Background(), 7, order.MetaRefundCurrent, "50"))
			},
			wantType: apperrors.ErrorTypeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRefundFixture(t)
			testutil.SeedOrder(t, f.orders, 7, "40.00", tt.status)
			if tt.prepare != nil {
				tt.prepare(t, f)
			}

			_, err := f.process.Execute(context.Background(), ProcessRefundCommand{
				OrderID: 7,
				Amount:  decimal.RequireFromString(tt.amount),
				Session: f.sess,
			})
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestProcessRefund_ReplacesAbandonedAttempt(t *testing.T) {
	ctx := context.Background()
	f := newRefundFixture(t)
	testutil.SeedOrder(t, f.orders, 7, "40.00", order.StatusCompleted)
	testutil.SeedRefund(t, f.refunds, 50, 7, "5.00")

	restore := biztime.SetClock(func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) })
	require.NoError(t, pending.New(f.sess).SetRedirectingToBank(ctx, 50, 7))
	restore()

	_, err := f.process.Execute(ctx, ProcessRefundCommand{OrderID: 7, Amount: decimal.RequireFromString("5.00"), Session: f.sess})
	require.NoError(t, err)
	assert.False(t, f.refunds.Exists(50), "abandoned draft is removed")
	assert.Equal(t, pending.StateAwaitingBankRedirect, f.attempt(t).State)
}

func TestProcessRefund_DiscardsUnconfirmedDraftOfStaleAttempt(t *testing.T) {
	tests := []struct {
		name        string
		confirmed   bool
		draftOrder  uint
		wantRemoved bool
	}{
		{name: "unconfirmed draft", draftOrder: 7, wantRemoved: true},
		{name: "confirmed refund", draftOrder: 7, confirmed: true},
		{name: "refund of another order", draftOrder: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newRefundFixture(t)
			testutil.SeedOrder(t, f.orders, 7, "40.00", order.StatusCompleted)
			r := testutil.SeedRefund(t, f.refunds, 50, tt.draftOrder, "5.00")
			if tt.confirmed {
				require.NoError(t, r.Confirm())
			}

			restore := biztime.SetClock(func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) })
			require.NoError(t, pending.New(f.sess).SetReturningToWc(ctx, 50, 7))
			restore()

			_, err := f.process.Execute(ctx, ProcessRefundCommand{OrderID: 7, Amount: decimal.RequireFromString("5.00"), Session: f.sess})
			require.NoError(t, err)

			assert.Equal(t, !tt.wantRemoved, f.refunds.Exists(50))
			if tt.wantRemoved {
				assert.Equal(t, []string{"Refund #50 was discarded because the bank never confirmed it."}, f.notes.Contents(7))
			} else {
				assert.Empty(t, f.notes.Contents(7))
			}
			assert.Equal(t, pending.StateAwaitingBankRedirect, f.attempt(t).State)
		})
	}
}

func TestMaybeProceedToBankRefund_NoOp(t *testing.T) {
	ctx := context.Background()

	t.Run("not an order page", func(t *testing.T) {
		f := newRefundFixture(t)
		require.NoError(t, pending.New(f.sess).SetRedirectingToBank(ctx, 99, 7))

		res, err := f.proceed.Execute(ctx, ProceedToBankCommand{OrderDetailPage: false, Session: f.sess})
		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Equal(t, pending.StateAwaitingBankRedirect, f.attempt(t).State)
	})

	t.Run("nothing armed", func(t *testing.T) {
		f := newRefundFixture(t)
		res, err := f.proceed.Execute(ctx, ProceedToBankCommand{OrderDetailPage: true, Session: f.sess})
		require.NoError(t, err)
		assert.Nil(t, res)
	})
}

func TestMaybeProceedToBankRefund_DraftDeleted(t *testing.T) {
	ctx := context.Background()
	f := newRefundFixture(t)
	require.NoError(t, pending.New(f.sess).SetRedirectingToBank(ctx, 99, 7))

	res, err := f.proceed.Execute(ctx, ProceedToBankCommand{OrderDetailPage: true, Session: f.sess})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Redirect)
	assert.Equal(t, pending.StateFailed, f.attempt(t).State)

	notices, err := notice.Admin(f.sess).Drain(ctx)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, msgRefundMissing, notices[0].Message)
	f.gateway.AssertNotCalled(t, "InitiateRefund", mock.Anything, mock.Anything)
}

// TestMaybeProceedToBankRefund_Received covers the hand-off to the bank's authorisation page.
func TestMaybeProceedToBankRefund_Received(t *testing.T) {
	ctx := context.Background()
	f := newRefundFixture(t)
	testutil.SeedRefund(t, f.refunds, 99, 7, "12.50")
	require.NoError(t, pending.New(f.sess).SetRedirectingToBank(ctx, 99, 7))
	require.NoError(t, f.meta.Update(ctx, 7, order.MetaRefundCurrent, "99"))

	f.gateway.On("InitiateRefund", mock.Anything, mock.MatchedBy(func(req paymentgateway.RefundRequest) bool {
		return req.Environment == paymentgateway.EnvironmentProduction &&
			req.OrderID == 7 &&
			req.Total.Equal(decimal.RequireFromString("12.50")) &&
			req.Currency == "GBP" &&
			req.PSUEmail == "merchant@example.com" &&
			req.CallbackURL == shopURL+"/?wc-api=shoppingos-refund&refund_id=99&order_id=7" &&
			req.Version == "1.0.0"
	})).Return(&paymentgateway.Response{Code: paymentgateway.CodeReceived, RedirectURL: "https://bank.example/auth"}, nil).Once()

	res, err := f.proceed.Execute(ctx, ProceedToBankCommand{OrderDetailPage: true, Session: f.sess, UserEmail: "merchant@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "https://bank.example/auth", res.Redirect)
	assert.False(t, f.meta.Has(7, order.MetaRefundCurrent))

	store := pending.New(f.sess)
	_, redirecting, err := store.RedirectingToBank(ctx)
	require.NoError(t, err)
	assert.False(t, redirecting)
	rec, returning, err := store.ReturningToWc(ctx)
	require.NoError(t, err)
	assert.True(t, returning)
	assert.Equal(t, pending.Record{RefundID: 99, OrderID: 7}, rec)

	assert.True(t, f.refunds.Exists(99))
	assert.False(t, f.meta.Has(7, order.MetaRefundNotice))
	assert.Equal(t, "12.50", f.meta.Value(7, order.MetaRefundAmount))
	assert.Equal(t, "pending", f.meta.Value(7, order.MetaRefundStatus))
	assert.Equal(t, "merchant@example.com", f.meta.Value(7, order.MetaRefundEmail))
	assert.Len(t, f.meta.Value(7, order.MetaRefundDate), len(biztime.GMTLayout))
	f.gateway.AssertExpectations(t)
}

// TestMaybeProceedToBankRefund_Abandoned covers every outcome that deletes the draft.
func TestMaybeProceedToBankRefund_Abandoned(t *testing.T) {
	tests := []struct {
		name       string
		resp       *paymentgateway.Response
		err        error
		wantNotice string
	}{
		{"transport failure", nil, paymentgateway.ErrTransport, msgRefundNotReceived},
		{"service error", &paymentgateway.Response{Code: paymentgateway.CodeError, Message: "Refund limit reached"}, nil, "Refund limit reached"},
		{"service error without message", &paymentgateway.Response{Code: paymentgateway.CodeError}, nil, msgRefundContactUs},
		{"unrecognized", &paymentgateway.Response{Code: "queued"}, nil, msgRefundContactUs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newRefundFixture(t)
			testutil.SeedRefund(t, f.refunds, 99, 7, "12.50")
			require.NoError(t, pending.New(f.sess).SetRedirectingToBank(ctx, 99, 7))
			f.gateway.On("InitiateRefund", mock.Anything, mock.Anything).Return(tt.resp, tt.err).Once()

			res, err := f.proceed.Execute(ctx, ProceedToBankCommand{OrderDetailPage: true, Session: f.sess, UserEmail: "merchant@example.com"})
			require.NoError(t, err)

			assert.Empty(t, res.Redirect)
			assert.False(t, f.refunds.Exists(99))
			assert.Equal(t, tt.wantNotice, f.meta.Value(7, order.MetaRefundNotice))
			assert.False(t, f.attempt(t).State.IsLive())
			assert.Equal(t, "pending", f.meta.Value(7, order.MetaRefundStatus))
		})
	}
}

// TestMaybeProceedToBankRefund_SecondAttemptUpdatesDetails verifies refund
// details are created once and updated on later attempts.
func TestMaybeProceedToBankRefund_SecondAttemptUpdatesDetails(t *testing.T) {
	ctx := context.Background()
	f := newRefundFixture(t)
	f.gateway.On("InitiateRefund", mock.Anything, mock.Anything).
		Return(&paymentgateway.Response{Code: paymentgateway.CodeError, Message: "Try later"}, nil).Twice()

	for i, amount := range []string{"12.50", "8.00"} {
		refundID := uint(90 + i)
		testutil.SeedRefund(t, f.refunds, refundID, 7, amount)
		require.NoError(t, pending.New(f.sess).SetRedirectingToBank(ctx, refundID, 7))

		_, err := f.proceed.Execute(ctx, ProceedToBankCommand{OrderDetailPage: true, Session: f.sess, UserEmail: "merchant@example.com"})
		require.NoError(t, err)
	}

	assert.Equal(t, "8.00", f.meta.Value(7, order.MetaRefundAmount))
	assert.Equal(t, 4, f.meta.RejectedAdds(), "second attempt falls back to update for each detail")
	f.gateway.AssertExpectations(t)
}
