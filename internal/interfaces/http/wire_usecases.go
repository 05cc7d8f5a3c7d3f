package http

import (
	orderUsecases "github.com/shoppingos/sospay/internal/application/order/usecases"
	paymentUsecases "github.com/shoppingos/sospay/internal/application/payment/usecases"
	refundUsecases "github.com/shoppingos/sospay/internal/application/refund/usecases"
	shareddb "github.com/shoppingos/sospay/internal/shared/db"
)

type allUseCases struct {
	saveSelectedBank       *paymentUsecases.SaveSelectedBankUseCase
	initiatePayment        *paymentUsecases.InitiatePaymentUseCase
	handlePaymentHook      *paymentUsecases.HandlePaymentCallbackUseCase
	paymentStatistics      *paymentUsecases.GetPaymentStatisticsUseCase
	processRefund          *refundUsecases.ProcessRefundUseCase
	proceedToBankRefund    *refundUsecases.MaybeProceedToBankRefundUseCase
	handleRefundHook       *refundUsecases.HandleRefundCallbackUseCase
	consumeRefundNotices   *refundUsecases.ConsumeRefundNoticesUseCase
	expireAbandonedRefunds *refundUsecases.ExpireAbandonedRefundsUseCase
	createOrder            *orderUsecases.CreateOrderUseCase
	listOrders             *orderUsecases.ListOrdersUseCase
	getOrderDetail         *orderUsecases.GetOrderDetailUseCase
}

func (c *Container) newUseCases() *allUseCases {
	r := c.repos
	i := c.infra
	txMgr := shareddb.NewTransactionManager(c.db)

	return &allUseCases{
		saveSelectedBank: paymentUsecases.NewSaveSelectedBankUseCase(r.orders, r.meta, c.log),
		initiatePayment: paymentUsecases.NewInitiatePaymentUseCase(
			r.orders, r.meta, i.gateway, i.links, c.settings, c.log,
		),
		handlePaymentHook: paymentUsecases.NewHandlePaymentCallbackUseCase(
			r.orders, r.notes, r.meta, txMgr, i.gateway, i.locker, i.recorder, i.links, c.settings, c.log,
		),
		paymentStatistics: paymentUsecases.NewGetPaymentStatisticsUseCase(r.orders, r.meta, c.log),
		processRefund: refundUsecases.NewProcessRefundUseCase(
			r.orders, r.refunds, r.notes, r.meta, txMgr, i.links, c.log,
		),
		proceedToBankRefund: refundUsecases.NewMaybeProceedToBankRefundUseCase(
			r.refunds, r.meta, txMgr, i.gateway, i.links, c.settings, c.log,
		),
		handleRefundHook: refundUsecases.NewHandleRefundCallbackUseCase(
			r.orders, r.refunds, r.notes, r.meta, txMgr, i.gateway, i.locker, i.recorder, c.dispatcher, i.links, c.settings, c.log,
		),
		consumeRefundNotices: refundUsecases.NewConsumeRefundNoticesUseCase(r.meta, c.log),
		expireAbandonedRefunds: refundUsecases.NewExpireAbandonedRefundsUseCase(
			r.refunds, r.notes, r.meta, txMgr, i.locker, c.log,
		),
		createOrder: orderUsecases.NewCreateOrderUseCase(r.orders, r.meta, c.log),
		listOrders:  orderUsecases.NewListOrdersUseCase(r.orders, c.log),
		getOrderDetail: orderUsecases.NewGetOrderDetailUseCase(
			r.orders, r.refunds, r.notes, r.meta, i.renderer, c.log,
		),
	}
}
