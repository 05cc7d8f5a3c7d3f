package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/shoppingos/sospay/internal/application/common/dto"
	"github.com/shoppingos/sospay/internal/domain/order"
	apperrors "github.com/shoppingos/sospay/internal/shared/errors"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/services/markdown"
)

// OrderDetail is the admin view of one order.
type OrderDetail struct {
	Order        *dto.OrderDTO    `json:"order"`
	Notes        []*dto.NoteDTO   `json:"notes"`
	Refunds      []*dto.RefundDTO `json:"refunds"`
	Refundable   string           `json:"refundable"`
	SelectedBank string           `json:"selected_bank,omitempty"`
	RefundStatus string           `json:"refund_status,omitempty"`
}

type GetOrderDetailUseCase struct {
	orders   order.Repository
	refunds  order.RefundRepository
	notes    order.NoteRepository
	meta     order.MetadataStore
	renderer markdown.Renderer
	logger   logger.Interface
}

func NewGetOrderDetailUseCase(
	orders order.Repository,
	refunds order.RefundRepository,
	notes order.NoteRepository,
	meta order.MetadataStore,
	renderer markdown.Renderer,
	logger logger.Interface,
) *GetOrderDetailUseCase {
	return &GetOrderDetailUseCase{
		orders:   orders,
		refunds:  refunds,
		notes:    notes,
		meta:     meta,
		renderer: renderer,
		logger:   logger,
	}
}

func (uc *GetOrderDetailUseCase) Execute(ctx context.Context, orderID uint) (*OrderDetail, error) {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, apperrors.NewNotFoundError("order not found", fmt.Sprintf("order %d", orderID))
		}
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}

	refunds, err := uc.refunds.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list refunds: %w", err)
	}
	notes, err := uc.notes.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	detail := &OrderDetail{
		Order:      dto.ToOrderDTO(o),
		Notes:      make([]*dto.NoteDTO, 0, len(notes)),
		Refunds:    make([]*dto.RefundDTO, 0, len(refunds)),
		Refundable: order.RemainingRefundable(o, refunds).StringFixed(2),
	}
	for _, r := range refunds {
		detail.Refunds = append(detail.Refunds, dto.ToRefundDTO(r))
	}
	for _, n := range notes {
		html, err := uc.renderer.ToHTML(n.Content)
		if err != nil {
			uc.logger.Warnw("failed to render note", "order_id", orderID, "note_id", n.ID, "error", err)
			continue
		}
		detail.Notes = append(detail.Notes, &dto.NoteDTO{ID: n.ID, HTML: html, CreatedAt: n.CreatedAt})
	}

	if detail.SelectedBank, _, err = uc.meta.Get(ctx, orderID, order.MetaSelectedBank); err != nil {
		return nil, fmt.Errorf("failed to read selected bank: %w", err)
	}
	if detail.RefundStatus, _, err = uc.meta.Get(ctx, orderID, order.MetaRefundStatus); err != nil {
		return nil, fmt.Errorf("failed to read refund status: %w", err)
	}

	return detail, nil
}
