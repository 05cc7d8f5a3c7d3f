package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppingos/sospay/internal/application/testutil"
	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/shared/errors"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/services/markdown"
)

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	orders := testutil.NewMockOrderRepository()
	meta := testutil.NewMockMetadataStore()
	uc := NewCreateOrderUseCase(orders, meta, logger.NewNop())

	got, err := uc.Execute(ctx, CreateOrderCommand{
		Total:        "19.99",
		Currency:     "gbp",
		BillingEmail: "shopper@example.com",
		UserAgent:    "Mozilla/5.0",
		BankCode:     "ob-monzo",
	})
	require.NoError(t, err)

	assert.Equal(t, "19.99", got.Total)
	assert.Equal(t, "GBP", got.Currency)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, order.PaymentMethodShoppingOS, got.PaymentMethod)
	assert.Equal(t, "ob-monzo", meta.Value(got.ID, order.MetaSelectedBank))

	stored, err := orders.GetByID(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mozilla/5.0", stored.CustomerUserAgent())
}

func TestCreateOrder_Validation(t *testing.T) {
	tests := []struct {
		name string
		cmd  CreateOrderCommand
	}{
		{"zero total", CreateOrderCommand{Total: "0", Currency: "GBP", BillingEmail: "a@example.com"}},
		{"three decimals", CreateOrderCommand{Total: "1.005", Currency: "GBP", BillingEmail: "a@example.com"}},
		{"bad currency", CreateOrderCommand{Total: "5", Currency: "POUND", BillingEmail: "a@example.com"}},
		{"bad email", CreateOrderCommand{Total: "5", Currency: "GBP", BillingEmail: "nope"}},
		{"bad bank", CreateOrderCommand{Total: "5", Currency: "GBP", BillingEmail: "a@example.com", BankCode: "Lloyds"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewCreateOrderUseCase(testutil.NewMockOrderRepository(), testutil.NewMockMetadataStore(), logger.NewNop())
			_, err := uc.Execute(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation), "got %v", err)
		})
	}
}

func TestGetOrderDetail(t *testing.T) {
	ctx := context.Background()
	orders := testutil.NewMockOrderRepository()
	refunds := testutil.NewMockRefundRepository()
	notes := testutil.NewMockNoteRepository()
	meta := testutil.NewMockMetadataStore()
	uc := NewGetOrderDetailUseCase(orders, refunds, notes, meta, markdown.NewRenderer(), logger.NewNop())

	testutil.SeedOrder(t, orders, 7, "40.00", order.StatusCompleted)
	testutil.SeedRefund(t, refunds, 99, 7, "12.50")
	require.NoError(t, notes.Add(ctx, 7, "**Payment Attempt**\nCustomer Notice: <script>x</script>declined"))
	require.NoError(t, meta.Update(ctx, 7, order.MetaSelectedBank, "ob-monzo"))
	require.NoError(t, meta.Update(ctx, 7, order.MetaRefundStatus, "processing"))

	got, err := uc.Execute(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, uint(7), got.Order.ID)
	assert.Equal(t, "27.50", got.Refundable)
	require.Len(t, got.Refunds, 1)
	assert.Equal(t, "12.50", got.Refunds[0].Amount)
	require.Len(t, got.Notes, 1)
	assert.Contains(t, got.Notes[0].HTML, "<strong>Payment Attempt</strong>")
	assert.NotContains(t, got.Notes[0].HTML, "<script>")
	assert.Equal(t, "ob-monzo", got.SelectedBank)
	assert.Equal(t, "processing", got.RefundStatus)
}

func TestGetOrderDetail_NotFound(t *testing.T) {
	uc := NewGetOrderDetailUseCase(
		testutil.NewMockOrderRepository(), testutil.NewMockRefundRepository(), testutil.NewMockNoteRepository(),
		testutil.NewMockMetadataStore(), markdown.NewRenderer(), logger.NewNop(),
	)

	_, err := uc.Execute(context.Background(), 404)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestListOrders(t *testing.T) {
	orders := testutil.NewMockOrderRepository()
	for id := uint(1); id <= 5; id++ {
		status := order.StatusPending
		if id%2 == 0 {
			status = order.StatusCompleted
		}
		testutil.SeedOrder(t, orders, id, "10.00", status)
	}
	uc := NewListOrdersUseCase(orders, logger.NewNop())

	tests := []struct {
		name    string
		query   ListOrdersQuery
		wantIDs []uint
		total   int64
	}{
		{"first page newest first", ListOrdersQuery{PageSize: 2}, []uint{5, 4}, 5},
		{"second page", ListOrdersQuery{Page: 2, PageSize: 2}, []uint{3, 2}, 5},
		{"by status", ListOrdersQuery{Status: "completed"}, []uint{4, 2}, 2},
		{"past the end", ListOrdersQuery{Page: 9, PageSize: 2}, []uint{}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.Execute(context.Background(), tt.query)
			require.NoError(t, err)

			ids := make([]uint, 0, len(got.Orders))
			for _, o := range got.Orders {
				ids = append(ids, o.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.total, got.Total)
		})
	}

	_, err := uc.Execute(context.Background(), ListOrdersQuery{Status: "shipped"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}
