package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/infrastructure/persistence/mappers"
	"github.com/shoppingos/sospay/internal/infrastructure/persistence/models"
	"github.com/shoppingos/sospay/internal/shared/biztime"
	"github.com/shoppingos/sospay/internal/shared/db"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Add(ctx context.Context, orderID uint, content string) error {
	model := &models.NoteModel{
		OrderID:   orderID,
		Content:   content,
		CreatedAt: biztime.NowUTC(),
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to add order note: %w", err)
	}
	return nil
}

// ListByOrderID returns notes oldest first.
func (r *NoteRepository) ListByOrderID(ctx context.Context, orderID uint) ([]*order.Note, error) {
	var list []models.NoteModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list order notes: %w", err)
	}

	notes := make([]*order.Note, len(list))
	for i := range list {
		notes[i] = mappers.NoteToDomain(&list[i])
	}
	return notes, nil
}

var _ order.NoteRepository = (*NoteRepository)(nil)
