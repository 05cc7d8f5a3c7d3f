package usecases

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shoppingos/sospay/internal/application/common/dto"
	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/shared/errors"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

// CreateOrderCommand is what the storefront submits when a shopper places an order.
type CreateOrderCommand struct {
	Total        string `json:"total" binding:"required" validate:"required,money"`
	Currency     string `json:"currency" binding:"required" validate:"required,len=3"`
	BillingEmail string `json:"billing_email" binding:"required" validate:"required,email,max=255"`
	UserAgent    string `json:"-"`
	BankCode     string `json:"bank_code,omitempty" validate:"omitempty,bankcode"`
}

type CreateOrderUseCase struct {
	orders order.Repository
	meta   order.MetadataStore
	logger logger.Interface
}

func NewCreateOrderUseCase(orders order.Repository, meta order.MetadataStore, logger logger.Interface) *CreateOrderUseCase {
	return &CreateOrderUseCase{orders: orders, meta: meta, logger: logger}
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderCommand) (*dto.OrderDTO, error) {
	cmd.BankCode = utils.SanitizeText(cmd.BankCode)
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	total, err := decimal.NewFromString(cmd.Total)
	if err != nil {
		return nil, errors.NewValidationError("invalid total", err.Error())
	}

	o, err := order.NewOrder(total, cmd.Currency, cmd.BillingEmail, utils.SanitizeText(cmd.UserAgent))
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.orders.Create(ctx, o); err != nil {
		uc.logger.Errorw("failed to create order", "error", err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if cmd.BankCode != "" {
		if err := uc.meta.Update(ctx, o.ID(), order.MetaSelectedBank, cmd.BankCode); err != nil {
			return nil, fmt.Errorf("failed to store selected bank: %w", err)
		}
	}

	uc.logger.Infow("order created", "order_id", o.ID(), "total", o.Total().StringFixed(2), "currency", o.Currency())
	return dto.ToOrderDTO(o), nil
}
