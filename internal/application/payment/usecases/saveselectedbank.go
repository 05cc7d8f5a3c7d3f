package usecases

import (
	"context"
	"fmt"

	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

type SaveSelectedBankCommand struct {
	OrderID  uint
	BankCode string `json:"bank_code" validate:"omitempty,bankcode"`
}

type SaveSelectedBankUseCase struct {
	orders order.Repository
	meta   order.MetadataStore
	logger logger.Interface
}

func NewSaveSelectedBankUseCase(orders order.Repository, meta order.MetadataStore, logger logger.Interface) *SaveSelectedBankUseCase {
	return &SaveSelectedBankUseCase{orders: orders, meta: meta, logger: logger}
}

// Execute stores the bank picked at checkout. An empty code clears the selection.
func (uc *SaveSelectedBankUseCase) Execute(ctx context.Context, cmd SaveSelectedBankCommand) error {
	cmd.BankCode = utils.SanitizeText(cmd.BankCode)
	if err := utils.ValidateStruct(cmd); err != nil {
		return err
	}

	if _, err := uc.orders.GetByID(ctx, cmd.OrderID); err != nil {
		return mapOrderError(err, cmd.OrderID)
	}

	if cmd.BankCode == "" {
		if err := uc.meta.Delete(ctx, cmd.OrderID, order.MetaSelectedBank); err != nil {
			return fmt.Errorf("failed to clear selected bank: %w", err)
		}
		return nil
	}

	if err := uc.meta.Update(ctx, cmd.OrderID, order.MetaSelectedBank, cmd.BankCode); err != nil {
		return fmt.Errorf("failed to store selected bank: %w", err)
	}

	uc.logger.Debugw("selected bank saved", "order_id", cmd.OrderID, "bank", cmd.BankCode)
	return nil
}
