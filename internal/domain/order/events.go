package order

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/shoppingos/sospay/internal/domain/shared/events"
	"github.com/shoppingos/sospay/internal/shared/biztime"
)

const EventRefundReconciled = "order.refund_reconciled"

// RefundReconciledEvent is raised once the bank's refund webhook has been resolved.
type RefundReconciledEvent struct {
	events.BaseEvent
	OrderID        uint
	RefundID       uint
	Amount         decimal.Decimal
	Currency       string
	Succeeded      bool
	Notice         string
	InitiatorEmail string
}

func NewRefundReconciledEvent(orderID, refundID uint, amount decimal.Decimal, currency string, succeeded bool, notice, initiatorEmail string) RefundReconciledEvent {
	return RefundReconciledEvent{
		BaseEvent: events.BaseEvent{
			ID:   strconv.FormatUint(uint64(orderID), 10),
			Type: EventRefundReconciled,
			At:   biztime.NowUTC(),
		},
		OrderID:        orderID,
		RefundID:       refundID,
		Amount:         amount,
		Currency:       currency,
		Succeeded:      succeeded,
		Notice:         notice,
		InitiatorEmail: initiatorEmail,
	}
}
