package usecases

import (
	"context"
	"fmt"

	"github.com/shoppingos/sospay/internal/application/notice"
	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

// ConsumeRefundNoticesUseCase hands the order page the refund notices stored
// by the reconciliation handlers. Each notice is returned by one call only.
type ConsumeRefundNoticesUseCase struct {
	meta   order.MetadataStore
	logger logger.Interface
}

func NewConsumeRefundNoticesUseCase(meta order.MetadataStore, logger logger.Interface) *ConsumeRefundNoticesUseCase {
	return &ConsumeRefundNoticesUseCase{meta: meta, logger: logger}
}

func (uc *ConsumeRefundNoticesUseCase) Execute(ctx context.Context, orderID uint) ([]notice.Notice, error) {
	main, err := uc.take(ctx, orderID, order.MetaRefundNotice)
	if err != nil {
		return nil, err
	}
	response, err := uc.take(ctx, orderID, order.MetaRefundRespMsg)
	if err != nil {
		return nil, err
	}

	level := notice.LevelError
	if main == msgRefundSuccessful {
		level = notice.LevelSuccess
	}

	out := make([]notice.Notice, 0, 2)
	for _, msg := range []string{main, response} {
		if msg != "" {
			out = append(out, notice.Notice{Message: msg, Level: level})
		}
	}
	return out, nil
}

// take reads a notice and deletes it when it was set.
func (uc *ConsumeRefundNoticesUseCase) take(ctx context.Context, orderID uint, key string) (string, error) {
	v, found, err := uc.meta.Get(ctx, orderID, key)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !found {
		return "", nil
	}
	if err := uc.meta.Delete(ctx, orderID, key); err != nil {
		return "", fmt.Errorf("failed to delete %s: %w", key, err)
	}
	uc.logger.Debugw("refund notice consumed", "order_id", orderID, "key", key)
	return v, nil
}
