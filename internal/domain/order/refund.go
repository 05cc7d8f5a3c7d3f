package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shoppingos/sospay/internal/shared/biztime"
)

// Refund is the draft refund the merchant creates before the bank confirms it.
// It is deleted again whenever the bank side fails. Once confirmed it is final.
type Refund struct {
	id          uint
	orderID     uint
	amount      decimal.Decimal
	reason      string
	createdAt   time.Time
	confirmedAt *time.Time
}

func NewRefund(orderID uint, amount decimal.Decimal, reason string) (*Refund, error) {
	if orderID == 0 {
		return nil, fmt.Errorf("order ID is required")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("refund amount must be positive")
	}

	return &Refund{
		orderID:   orderID,
		amount:    amount.Round(2),
		reason:    reason,
		createdAt: biztime.NowUTC(),
	}, nil
}

func ReconstructRefund(id, orderID uint, amount decimal.Decimal, reason string, createdAt time.Time, confirmedAt *time.Time) *Refund {
	return &Refund{
		id:          id,
		orderID:     orderID,
		amount:      amount,
		reason:      reason,
		createdAt:   createdAt,
		confirmedAt: confirmedAt,
	}
}

func (r *Refund) ID() uint {
	return r.id
}

func (r *Refund) SetID(id uint) {
	r.id = id
}

func (r *Refund) OrderID() uint {
	return r.orderID
}

func (r *Refund) Amount() decimal.Decimal {
	return r.amount
}

func (r *Refund) Reason() string {
	return r.reason
}

func (r *Refund) CreatedAt() time.Time {
	return r.createdAt
}

// ConfirmedAt is nil while the refund is still a draft.
func (r *Refund) ConfirmedAt() *time.Time {
	return r.confirmedAt
}

func (r *Refund) IsConfirmed() bool {
	return r.confirmedAt != nil
}

// Confirm marks the refund as settled by the bank.
func (r *Refund) Confirm() error {
	if r.confirmedAt != nil {
		return ErrRefundAlreadyConfirmed
	}
	now := biztime.NowUTC()
	r.confirmedAt = &now
	return nil
}

// RemainingRefundable is what can still be refunded after the given refunds.
func RemainingRefundable(o *Order, refunds []*Refund) decimal.Decimal {
	remaining := o.Total()
	for _, r := range refunds {
		remaining = remaining.Sub(r.Amount())
	}
	return remaining
}
