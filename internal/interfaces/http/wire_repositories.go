package http

import (
	"gorm.io/gorm"

	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/infrastructure/repository"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	orders    order.Repository
	refunds   order.RefundRepository
	notes     order.NoteRepository
	meta      order.MetadataStore
	callbacks order.CallbackEventRepository
}

func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		orders:    repository.NewOrderRepository(db, log),
		refunds:   repository.NewRefundRepository(db),
		notes:     repository.NewNoteRepository(db),
		meta:      repository.NewMetadataRepository(db),
		callbacks: repository.NewCallbackEventRepository(db),
	}
}
