package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/infrastructure/persistence/mappers"
	"github.com/shoppingos/sospay/internal/infrastructure/persistence/models"
	"github.com/shoppingos/sospay/internal/shared/db"
)

type RefundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) Create(ctx context.Context, refund *order.Refund) error {
	model := mappers.RefundToModel(refund)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}

	refund.SetID(model.ID)
	return nil
}

func (r *RefundRepository) GetByID(ctx context.Context, id uint) (*order.Refund, error) {
	var model models.RefundModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrRefundNotFound
		}
		return nil, fmt.Errorf("failed to get refund: %w", err)
	}

	return mappers.RefundToDomain(&model), nil
}

func (r *RefundRepository) Update(ctx context.Context, refund *order.Refund) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.RefundModel{}).
		Where("id = ?", refund.ID()).
		Update("confirmed_at", refund.ConfirmedAt())
	if result.Error != nil {
		return fmt.Errorf("failed to update refund: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return order.ErrRefundNotFound
	}
	return nil
}

func (r *RefundRepository) Delete(ctx context.Context, id uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Delete(&models.RefundModel{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete refund: %w", err)
	}
	return nil
}

func (r *RefundRepository) ListByOrderID(ctx context.Context, orderID uint) ([]*order.Refund, error) {
	var list []models.RefundModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list refunds: %w", err)
	}

	refunds := make([]*order.Refund, len(list))
	for i := range list {
		refunds[i] = mappers.RefundToDomain(&list[i])
	}
	return refunds, nil
}

var _ order.RefundRepository = (*RefundRepository)(nil)
