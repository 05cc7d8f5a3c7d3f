package handlers

import (
	"context"

	"github.com/shoppingos/sospay/internal/application/common/dto"
	"github.com/shoppingos/sospay/internal/application/notice"
	orderUsecases "github.com/shoppingos/sospay/internal/application/order/usecases"
	paymentUsecases "github.com/shoppingos/sospay/internal/application/payment/usecases"
	refundUsecases "github.com/shoppingos/sospay/internal/application/refund/usecases"
)

type mockSaveBank struct {
	fn func(ctx context.Context, cmd paymentUsecases.SaveSelectedBankCommand) error
}

func (m *mockSaveBank) Execute(ctx context.Context, cmd paymentUsecases.SaveSelectedBankCommand) error {
	if m.fn != nil {
		return m.fn(ctx, cmd)
	}
	return nil
}

type mockInitiatePayment struct {
	fn func(ctx context.Context, cmd paymentUsecases.InitiatePaymentCommand) (*paymentUsecases.InitiatePaymentResult, error)
}

func (m *mockInitiatePayment) Execute(ctx context.Context, cmd paymentUsecases.InitiatePaymentCommand) (*paymentUsecases.InitiatePaymentResult, error) {
	return m.fn(ctx, cmd)
}

type mockPaymentCallback struct {
	fn func(ctx context.Context, cmd paymentUsecases.PaymentCallbackCommand) (*paymentUsecases.CallbackResult, error)
}

func (m *mockPaymentCallback) Execute(ctx context.Context, cmd paymentUsecases.PaymentCallbackCommand) (*paymentUsecases.CallbackResult, error) {
	return m.fn(ctx, cmd)
}

type mockRefundCallback struct {
	fn func(ctx context.Context, cmd refundUsecases.RefundCallbackCommand) (*refundUsecases.CallbackResult, error)
}

func (m *mockRefundCallback) Execute(ctx context.Context, cmd refundUsecases.RefundCallbackCommand) (*refundUsecases.CallbackResult, error) {
	return m.fn(ctx, cmd)
}

type mockCreateOrder struct {
	fn func(ctx context.Context, cmd orderUsecases.CreateOrderCommand) (*dto.OrderDTO, error)
}

func (m *mockCreateOrder) Execute(ctx context.Context, cmd orderUsecases.CreateOrderCommand) (*dto.OrderDTO, error) {
	return m.fn(ctx, cmd)
}

type mockListOrders struct {
	fn func(ctx context.Context, query orderUsecases.ListOrdersQuery) (*orderUsecases.ListOrdersResult, error)
}

func (m *mockListOrders) Execute(ctx context.Context, query orderUsecases.ListOrdersQuery) (*orderUsecases.ListOrdersResult, error) {
	return m.fn(ctx, query)
}

type mockOrderDetail struct {
	fn func(ctx context.Context, orderID uint) (*orderUsecases.OrderDetail, error)
}

func (m *mockOrderDetail) Execute(ctx context.Context, orderID uint) (*orderUsecases.OrderDetail, error) {
	return m.fn(ctx, orderID)
}

type mockProceed struct {
	fn    func(ctx context.Context, cmd refundUsecases.ProceedToBankCommand) (*refundUsecases.ProceedToBankResult, error)
	calls []refundUsecases.ProceedToBankCommand
}

func (m *mockProceed) Execute(ctx context.Context, cmd refundUsecases.ProceedToBankCommand) (*refundUsecases.ProceedToBankResult, error) {
	m.calls = append(m.calls, cmd)
	if m.fn != nil {
		return m.fn(ctx, cmd)
	}
	return nil, nil
}

type mockRefundNotices struct {
	fn func(ctx context.Context, orderID uint) ([]notice.Notice, error)
}

func (m *mockRefundNotices) Execute(ctx context.Context, orderID uint) ([]notice.Notice, error) {
	if m.fn != nil {
		return m.fn(ctx, orderID)
	}
	return nil, nil
}

type mockProcessRefund struct {
	fn func(ctx context.Context, cmd refundUsecases.ProcessRefundCommand) (*refundUsecases.ProcessRefundResult, error)
}

func (m *mockProcessRefund) Execute(ctx context.Context, cmd refundUsecases.ProcessRefundCommand) (*refundUsecases.ProcessRefundResult, error) {
	return m.fn(ctx, cmd)
}

type mockStats struct {
	fn func(ctx context.Context) (*dto.PaymentStatisticsDTO, error)
}

func (m *mockStats) Execute(ctx context.Context) (*dto.PaymentStatisticsDTO, error) {
	return m.fn(ctx)
}
