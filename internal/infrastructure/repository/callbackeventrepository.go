package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/infrastructure/persistence/mappers"
	"github.com/shoppingos/sospay/internal/infrastructure/persistence/models"
	"github.com/shoppingos/sospay/internal/shared/db"
)

type CallbackEventRepository struct {
	db *gorm.DB
}

func NewCallbackEventRepository(db *gorm.DB) *CallbackEventRepository {
	return &CallbackEventRepository{db: db}
}

func (r *CallbackEventRepository) Record(ctx context.Context, event *order.CallbackEvent) error {
	model, err := mappers.CallbackEventToModel(event)
	if err != nil {
		return err
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record callback event: %w", err)
	}
	event.ID = model.ID
	return nil
}

func (r *CallbackEventRepository) DeleteReceivedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Where("received_at < ?", before).
		Delete(&models.CallbackEventModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune callback events: %w", result.Error)
	}
	return result.RowsAffected, nil
}

var _ order.CallbackEventRepository = (*CallbackEventRepository)(nil)
