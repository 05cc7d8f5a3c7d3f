package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/shoppingos/sospay/internal/shared/constants"
)

type CallbackEventModel struct {
	ID         uint   `gorm:"primaryKey"`
	Kind       string `gorm:"size:20;not null;index:idx_callback_events_kind_order"`
	OrderID    uint   `gorm:"index:idx_callback_events_kind_order"`
	RefundID   uint
	RequestID  string `gorm:"size:128;index"`
	Outcome    string `gorm:"size:32;not null"`
	Params     datatypes.JSON
	ReceivedAt time.Time `gorm:"not null;index"`
}

func (CallbackEventModel) TableName() string {
	return constants.TableCallbackEvents
}

// All returns every model managed by the application, in creation order.
func All() []any {
	return []any{
		&OrderModel{},
		&RefundModel{},
		&NoteModel{},
		&MetaModel{},
		&CallbackEventModel{},
	}
}
