package usecases

import (
	"context"
	"fmt"

	"github.com/shoppingos/sospay/internal/application/common/dto"
	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/shared/constants"
	"github.com/shoppingos/sospay/internal/shared/errors"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

type ListOrdersQuery struct {
	Status        string
	PaymentMethod string
	Page          int
	PageSize      int
}

type ListOrdersResult struct {
	Orders   []*dto.OrderDTO `json:"orders"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

type ListOrdersUseCase struct {
	orders order.Repository
	logger logger.Interface
}

func NewListOrdersUseCase(orders order.Repository, logger logger.Interface) *ListOrdersUseCase {
	return &ListOrdersUseCase{orders: orders, logger: logger}
}

func (uc *ListOrdersUseCase) Execute(ctx context.Context, query ListOrdersQuery) (*ListOrdersResult, error) {
	if query.PageSize <= 0 {
		query.PageSize = constants.DefaultPageSize
	}
	if query.PageSize > constants.MaxPageSize {
		query.PageSize = constants.MaxPageSize
	}
	if query.Page < 1 {
		query.Page = 1
	}

	filter := order.ListFilter{
		PaymentMethod: query.PaymentMethod,
		Offset:        (query.Page - 1) * query.PageSize,
		Limit:         query.PageSize,
	}
	if query.Status != "" {
		status := order.Status(query.Status)
		if !status.IsValid() {
			return nil, errors.NewValidationError("invalid status", query.Status)
		}
		filter.Status = status
	}

	orders, total, err := uc.orders.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list orders", "error", err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &ListOrdersResult{
		Orders:   dto.ToOrderDTOs(orders),
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}
