package order

import "time"

type CallbackKind string

const (
	CallbackKindPayment CallbackKind = "payment"
	CallbackKindRefund  CallbackKind = "refund"
)

// CallbackEvent is the audit record of one webhook delivery and how it was resolved.
type CallbackEvent struct {
	ID         uint
	Kind       CallbackKind
	OrderID    uint
	RefundID   uint
	RequestID  string
	Outcome    string
	Params     map[string]string
	ReceivedAt time.Time
}
