// Package dto provides the read models returned by order, payment and refund use cases.
package dto

import (
	"time"

	"github.com/shoppingos/sospay/internal/domain/order"
)

type OrderDTO struct {
	ID            uint       `json:"id"`
	Total         string     `json:"total"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	BillingEmail  string     `json:"billing_email"`
	PaymentMethod string     `json:"payment_method"`
	StockReduced  bool       `json:"stock_reduced"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type NoteDTO struct {
	ID        uint      `json:"id"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"created_at"`
}

type RefundDTO struct {
	ID        uint      `json:"id"`
	Amount    string    `json:"amount"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func ToOrderDTO(o *order.Order) *OrderDTO {
	return &OrderDTO{
		ID:            o.ID(),
		Total:         o.Total().StringFixed(2),
		Currency:      o.Currency(),
		Status:        o.Status().String(),
		BillingEmail:  o.BillingEmail(),
		PaymentMethod: o.PaymentMethod(),
		StockReduced:  o.StockReduced(),
		PaidAt:        o.PaidAt(),
		CreatedAt:     o.CreatedAt(),
	}
}

func ToOrderDTOs(orders []*order.Order) []*OrderDTO {
	out := make([]*OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderDTO(o))
	}
	return out
}

func ToRefundDTO(r *order.Refund) *RefundDTO {
	return &RefundDTO{
		ID:        r.ID(),
		Amount:    r.Amount().StringFixed(2),
		Reason:    r.Reason(),
		CreatedAt: r.CreatedAt(),
	}
}

// PaymentStatisticsDTO is the dashboard summary of bank payments. Amounts are
// in the store currency with two decimals.
type PaymentStatisticsDTO struct {
	TotalOrders      int         `json:"total_orders"`
	FinishedOrders   int         `json:"finished_orders"`
	UnfinishedOrders int         `json:"unfinished_orders"`
	TotalProcessed   string      `json:"total_processed"`
	MinSaved         string      `json:"min_saved"`
	MaxSaved         string      `json:"max_saved"`
	ServiceFee       string      `json:"service_fee"`
	RecentOrders     []*OrderDTO `json:"recent_orders"`
}
