package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/domain/shared"
	"github.com/shoppingos/sospay/internal/shared/biztime"
	"github.com/shoppingos/sospay/internal/shared/db"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

const noteRefundDiscarded = "Refund #%d was discarded because the bank authorisation was never started."

// ExpireAbandonedRefundsUseCase removes drafts whose merchant never reached
// the bank. Such a draft still counts against the refundable total and blocks
// new refunds on its order until it is gone.
type ExpireAbandonedRefundsUseCase struct {
	refunds order.RefundRepository
	notes   order.NoteRepository
	meta    order.MetadataStore
	tx      db.Transactor
	locker  shared.Locker
	logger  logger.Interface
}

func NewExpireAbandonedRefundsUseCase(
	refunds order.RefundRepository,
	notes order.NoteRepository,
	meta order.MetadataStore,
	tx db.Transactor,
	locker shared.Locker,
	logger logger.Interface,
) *ExpireAbandonedRefundsUseCase {
	return &ExpireAbandonedRefundsUseCase{
		refunds: refunds,
		notes:   notes,
		meta:    meta,
		tx:      tx,
		locker:  locker,
		logger:  logger,
	}
}

// Execute returns how many drafts were discarded.
func (uc *ExpireAbandonedRefundsUseCase) Execute(ctx context.Context) (int, error) {
	cutoff := biztime.NowUTC().Add(-staleAttemptAge)

	entries, err := uc.meta.ListByKey(ctx, order.MetaRefundCurrent, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list armed refunds: %w", err)
	}

	count := 0
	for _, entry := range entries {
		expired, err := uc.expire(ctx, entry, cutoff)
		if err != nil {
			uc.logger.Errorw("failed to expire abandoned refund",
				"order_id", entry.OrderID,
				"refund_id", entry.Value,
				"error", err,
			)
			continue
		}
		if expired {
			count++
		}
	}
	return count, nil
}

func (uc *ExpireAbandonedRefundsUseCase) expire(ctx context.Context, entry order.MetaEntry, cutoff time.Time) (bool, error) {
	release, err := uc.locker.Acquire(ctx, strconv.FormatUint(uint64(entry.OrderID), 10))
	if err != nil {
		if errors.Is(err, shared.ErrLockNotAcquired) {
			return false, nil
		}
		return false, err
	}
	defer release()

	// the merchant may have moved on since the listing
	current, found, err := uc.meta.Get(ctx, entry.OrderID, order.MetaRefundCurrent)
	if err != nil {
		return false, err
	}
	if !found || current != entry.Value {
		return false, nil
	}

	var discard *order.Refund
	if id, err := strconv.ParseUint(current, 10, 64); err == nil {
		refund, err := uc.refunds.GetByID(ctx, uint(id))
		switch {
		case err == nil && refund.OrderID() == entry.OrderID && !refund.IsConfirmed():
			if !refund.CreatedAt().Before(cutoff) {
				return false, nil
			}
			discard = refund
		case err != nil && !errors.Is(err, order.ErrRefundNotFound):
			return false, err
		}
	}

	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if discard != nil {
			if err := uc.refunds.Delete(ctx, discard.ID()); err != nil {
				return err
			}
			if err := uc.notes.Add(ctx, entry.OrderID, fmt.Sprintf(noteRefundDiscarded, discard.ID())); err != nil {
				uc.logger.Warnw("failed to add order note", "order_id", entry.OrderID, "error", err)
			}
		}
		return uc.meta.Delete(ctx, entry.OrderID, order.MetaRefundCurrent)
	})
	if err != nil {
		return false, err
	}

	uc.logger.Infow("abandoned refund draft expired", "order_id", entry.OrderID, "refund_id", current)
	return true, nil
}
