package order

// Status is the order lifecycle state as the shop platform knows it.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusOnHold     Status = "on-hold"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
	StatusFailed     Status = "failed"
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusOnHold:     true,
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusRefunded:   true,
	StatusFailed:     true,
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsPaid reports whether payment has been taken for the order.
func (s Status) IsPaid() bool {
	return s == StatusProcessing || s == StatusCompleted
}

// IsUnfinished covers orders that never reached a paid state in the statistics view.
func (s Status) IsUnfinished() bool {
	return s == StatusPending || s == StatusCancelled || s == StatusOnHold
}

// RefundStatus is stored under MetaRefundStatus.
type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "pending"
	RefundStatusProcessing RefundStatus = "processing"
)
