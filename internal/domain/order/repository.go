package order

import (
	"context"
	"time"
)

// ListFilter narrows administrative order listings.
type ListFilter struct {
	PaymentMethod string
	Status        Status
	Offset        int
	Limit         int
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	// GetByID returns ErrOrderNotFound when no such order exists.
	GetByID(ctx context.Context, id uint) (*Order, error)
	Update(ctx context.Context, o *Order) error
	List(ctx context.Context, filter ListFilter) ([]*Order, int64, error)
	ListByPaymentMethod(ctx context.Context, method string) ([]*Order, error)
}

type RefundRepository interface {
	Create(ctx context.Context, r *Refund) error
	// GetByID returns ErrRefundNotFound when no such refund exists.
	GetByID(ctx context.Context, id uint) (*Refund, error)
	// Update persists the refund's confirmation.
	Update(ctx context.Context, r *Refund) error
	// Delete is a no-op for a refund that is already gone.
	Delete(ctx context.Context, id uint) error
	ListByOrderID(ctx context.Context, orderID uint) ([]*Refund, error)
}

type NoteRepository interface {
	Add(ctx context.Context, orderID uint, content string) error
	ListByOrderID(ctx context.Context, orderID uint) ([]*Note, error)
}

// MetadataStore is the per-order key/value store.
type MetadataStore interface {
	Get(ctx context.Context, orderID uint, key string) (value string, found bool, err error)
	// Add stores value only when key is absent and reports whether it did.
	Add(ctx context.Context, orderID uint, key, value string) (bool, error)
	// Update creates or replaces the value.
	Update(ctx context.Context, orderID uint, key, value string) error
	Delete(ctx context.Context, orderID uint, key string) error
	// ListByKey returns every entry for key last written before updatedBefore.
	ListByKey(ctx context.Context, key string, updatedBefore time.Time) ([]MetaEntry, error)
}

type CallbackEventRepository interface {
	Record(ctx context.Context, event *CallbackEvent) error
	// DeleteReceivedBefore prunes the audit log and returns the number of rows removed.
	DeleteReceivedBefore(ctx context.Context, before time.Time) (int64, error)
}
