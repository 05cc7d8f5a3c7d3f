package usecases

import (
	"errors"
	"fmt"

	"github.com/shoppingos/sospay/internal/domain/order"
	apperrors "github.com/shoppingos/sospay/internal/shared/errors"
)

func mapOrderError(err error, orderID uint) error {
	if errors.Is(err, order.ErrOrderNotFound) {
		return apperrors.NewNotFoundError("order not found", fmt.Sprintf("order %d", orderID))
	}
	return fmt.Errorf("failed to load order %d: %w", orderID, err)
}
