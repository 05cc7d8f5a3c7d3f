package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shoppingos/sospay/internal/shared/constants"
)

// OrderModel is the orders table.
type OrderModel struct {
	ID                uint            `gorm:"primaryKey"`
	Total             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency          string          `gorm:"size:3;not null"`
	Status            string          `gorm:"size:20;not null;index"`
	BillingEmail      string          `gorm:"size:255;not null"`
	CustomerUserAgent string          `gorm:"size:512"`
	PaymentMethod     string          `gorm:"size:50;not null;index"`
	StockReduced      bool            `gorm:"not null;default:false"`
	PaidAt            *time.Time
	Version           int `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (OrderModel) TableName() string {
	return constants.TableOrders
}

// RefundModel is a draft or confirmed refund of an order.
type RefundModel struct {
	ID          uint            `gorm:"primaryKey"`
	OrderID     uint            `gorm:"not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason      string          `gorm:"size:500"`
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}

func (RefundModel) TableName() string {
	return constants.TableOrderRefunds
}

type NoteModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   uint   `gorm:"not null;index"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (NoteModel) TableName() string {
	return constants.TableOrderNotes
}

// MetaModel is one key/value pair attached to an order.
type MetaModel struct {
	ID        uint   `gorm:"primaryKey"`
	EntityID  uint   `gorm:"not null;uniqueIndex:idx_order_meta_entity_key"`
	MetaKey   string `gorm:"size:100;not null;uniqueIndex:idx_order_meta_entity_key"`
	MetaValue string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MetaModel) TableName() string {
	return constants.TableOrderMeta
}
