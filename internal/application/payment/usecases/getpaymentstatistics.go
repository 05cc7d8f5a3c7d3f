package usecases

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shoppingos/sospay/internal/application/common/dto"
	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

const recentOrdersLimit = 10

var (
	minSavingFixed = decimal.RequireFromString("0.2")
	minSavingRate  = decimal.RequireFromString("0.014")
	maxSavingFixed = decimal.RequireFromString("0.39")
	maxSavingRate  = decimal.RequireFromString("0.0349")
	serviceFee     = decimal.RequireFromString("0.5")
)

// GetPaymentStatisticsUseCase summarises bank payments for the merchant dashboard.
// Savings are estimated against typical card processing fees.
type GetPaymentStatisticsUseCase struct {
	orders order.Repository
	meta   order.MetadataStore
	logger logger.Interface
}

func NewGetPaymentStatisticsUseCase(orders order.Repository, meta order.MetadataStore, logger logger.Interface) *GetPaymentStatisticsUseCase {
	return &GetPaymentStatisticsUseCase{orders: orders, meta: meta, logger: logger}
}

func (uc *GetPaymentStatisticsUseCase) Execute(ctx context.Context) (*dto.PaymentStatisticsDTO, error) {
	orders, err := uc.orders.ListByPaymentMethod(ctx, order.PaymentMethodShoppingOS)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	var finished, unfinished int
	var processed, minSaved, maxSaved, fee decimal.Decimal
	for _, o := range orders {
		if o.Status().IsUnfinished() {
			unfinished++
			continue
		}
		if !o.Status().IsPaid() {
			continue
		}

		finished++
		processed = processed.Add(o.Total())
		minSaved = minSaved.Add(minSavingFixed.Add(o.Total().Mul(minSavingRate)))
		maxSaved = maxSaved.Add(maxSavingFixed.Add(o.Total().Mul(maxSavingRate)))
		fee = fee.Add(serviceFee)

		status, _, err := uc.meta.Get(ctx, o.ID(), order.MetaRefundStatus)
		if err != nil {
			return nil, fmt.Errorf("failed to read refund status of order %d: %w", o.ID(), err)
		}
		if status == string(order.RefundStatusProcessing) {
			fee = fee.Add(serviceFee)
		}
	}

	recent := orders
	if len(recent) > recentOrdersLimit {
		recent = recent[:recentOrdersLimit]
	}

	stats := &dto.PaymentStatisticsDTO{
		TotalOrders:      len(orders),
		FinishedOrders:   finished,
		UnfinishedOrders: unfinished,
		TotalProcessed:   processed.StringFixed(2),
		MinSaved:         minSaved.StringFixed(2),
		MaxSaved:         maxSaved.StringFixed(2),
		ServiceFee:       fee.StringFixed(2),
		RecentOrders:     dto.ToOrderDTOs(recent),
	}

	uc.logger.Debugw("payment statistics computed", "orders", stats.TotalOrders, "finished", finished)
	return stats, nil
}
