package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/infrastructure/persistence/models"
	"github.com/shoppingos/sospay/internal/shared/biztime"
	"github.com/shoppingos/sospay/internal/shared/db"
)

// MetadataRepository stores order metadata in order_meta, one row per (entity_id, meta_key).
type MetadataRepository struct {
	db *gorm.DB
}

func NewMetadataRepository(db *gorm.DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

func (r *MetadataRepository) Get(ctx context.Context, orderID uint, key string) (string, bool, error) {
	var model models.MetaModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("entity_id = ? AND meta_key = ?", orderID, key).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get metadata %s: %w", key, err)
	}
	return model.MetaValue, true, nil
}

func (r *MetadataRepository) Add(ctx context.Context, orderID uint, key, value string) (bool, error) {
	now := biztime.NowUTC()
	model := &models.MetaModel{
		EntityID:  orderID,
		MetaKey:   key,
		MetaValue: value,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model)
	if result.Error != nil {
		return false, fmt.Errorf("failed to add metadata %s: %w", key, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *MetadataRepository) Update(ctx context.Context, orderID uint, key, value string) error {
	now := biztime.NowUTC()
	model := &models.MetaModel{
		EntityID:  orderID,
		MetaKey:   key,
		MetaValue: value,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_id"}, {Name: "meta_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"meta_value", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to update metadata %s: %w", key, err)
	}
	return nil
}

func (r *MetadataRepository) Delete(ctx context.Context, orderID uint, key string) error {
	err := db.GetTxFromContext(ctx, r.db).
		Where("entity_id = ? AND meta_key = ?", orderID, key).
		Delete(&models.MetaModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete metadata %s: %w", key, err)
	}
	return nil
}

func (r *MetadataRepository) ListByKey(ctx context.Context, key string, updatedBefore time.Time) ([]order.MetaEntry, error) {
	var rows []models.MetaModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("meta_key = ? AND updated_at < ?", key, updatedBefore).
		Order("entity_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata %s: %w", key, err)
	}

	entries := make([]order.MetaEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, order.MetaEntry{
			OrderID:   row.EntityID,
			Key:       row.MetaKey,
			Value:     row.MetaValue,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return entries, nil
}

var _ order.MetadataStore = (*MetadataRepository)(nil)
