package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shoppingos/sospay/internal/application/common/dto"
	"github.com/shoppingos/sospay/internal/application/common/links"
	"github.com/shoppingos/sospay/internal/application/refund/pending"
	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/domain/session"
	"github.com/shoppingos/sospay/internal/shared/biztime"
	"github.com/shoppingos/sospay/internal/shared/db"
	apperrors "github.com/shoppingos/sospay/internal/shared/errors"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

// staleAttemptAge is how long a live attempt blocks a new refund before it is
// considered abandoned.
const staleAttemptAge = 30 * time.Minute

const noteRefundUnconfirmed = "Refund #%d was discarded because the bank never confirmed it."

type ProcessRefundCommand struct {
	OrderID uint
	Amount  decimal.Decimal
	Reason  string
	Session session.Session
}

type ProcessRefundResult struct {
	Refund *dto.RefundDTO `json:"refund"`
	// Redirect is the order page whose next load hands the merchant to the bank.
	Redirect string `json:"redirect"`
}

// ProcessRefundUseCase creates the draft refund and arms the bank redirect.
type ProcessRefundUseCase struct {
	orders  order.Repository
	refunds order.RefundRepository
	notes   order.NoteRepository
	meta    order.MetadataStore
	tx      db.Transactor
	links   *links.Builder
	logger  logger.Interface
}

func NewProcessRefundUseCase(
	orders order.Repository,
	refunds order.RefundRepository,
	notes order.NoteRepository,
	meta order.MetadataStore,
	tx db.Transactor,
	linkBuilder *links.Builder,
	logger logger.Interface,
) *ProcessRefundUseCase {
	return &ProcessRefundUseCase{
		orders:  orders,
		refunds: refunds,
		notes:   notes,
		meta:    meta,
		tx:      tx,
		links:   linkBuilder,
		logger:  logger,
	}
}

func (uc *ProcessRefundUseCase) Execute(ctx context.Context, cmd ProcessRefundCommand) (*ProcessRefundResult, error) {
	o, err := uc.orders.GetByID(ctx, cmd.OrderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, apperrors.NewNotFoundError("order not found", fmt.Sprintf("order %d", cmd.OrderID))
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if o.PaymentMethod() != order.PaymentMethodShoppingOS {
		return nil, apperrors.NewValidationError("order was not paid by bank transfer")
	}
	if !o.IsPaid() {
		return nil, apperrors.NewValidationError("only paid orders can be refunded", o.Status().String())
	}

	store := pending.New(cmd.Session)
	if err := uc.ensureNoLiveAttempt(ctx, store, o.ID()); err != nil {
		return nil, err
	}

	existing, err := uc.refunds.ListByOrderID(ctx, o.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list refunds: %w", err)
	}
	remaining := order.RemainingRefundable(o, existing)
	if cmd.Amount.GreaterThan(remaining) {
		return nil, apperrors.NewValidationError(
			"refund amount exceeds the refundable total",
			fmt.Sprintf("at most %s %s", remaining.StringFixed(2), o.Currency()),
		)
	}

	refund, err := order.NewRefund(o.ID(), cmd.Amount, cmd.Reason)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.refunds.Create(ctx, refund); err != nil {
			return fmt.Errorf("failed to create refund: %w", err)
		}
		if err := uc.meta.Update(ctx, o.ID(), order.MetaRefundCurrent, strconv.FormatUint(uint64(refund.ID()), 10)); err != nil {
			return fmt.Errorf("failed to mark current refund: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := store.SetRedirectingToBank(ctx, refund.ID(), o.ID()); err != nil {
		return nil, err
	}

	uc.logger.Infow("refund drafted, awaiting bank confirmation",
		"order_id", o.ID(),
		"refund_id", refund.ID(),
		"amount", refund.Amount().StringFixed(2),
	)

	return &ProcessRefundResult{
		Refund:   dto.ToRefundDTO(refund),
		Redirect: uc.links.AdminOrderEdit(o.ID()),
	}, nil
}

// ensureNoLiveAttempt keeps a single refund in flight per order. A recent
// attempt in this session blocks, as does another session's draft that the
// order still points at.
func (uc *ProcessRefundUseCase) ensureNoLiveAttempt(ctx context.Context, store *pending.Store, orderID uint) error {
	attempt, err := store.Current(ctx)
	if err != nil {
		return err
	}
	if attempt.State.IsLive() {
		if biztime.NowUTC().Sub(attempt.UpdatedAt) < staleAttemptAge {
			return apperrors.NewConflictError(
				"a refund is already in progress",
				fmt.Sprintf("refund %d on order %d", attempt.RefundID, attempt.OrderID),
			)
		}
		uc.logger.Warnw("replacing abandoned refund attempt",
			"order_id", attempt.OrderID,
			"refund_id", attempt.RefundID,
			"state", attempt.State,
		)
		switch attempt.State {
		case pending.StateAwaitingBankRedirect:
			// the bank never saw this draft
			if err := uc.discardDraft(ctx, attempt.Record, ""); err != nil {
				return err
			}
		case pending.StateAwaitingWebhook:
			if err := uc.discardDraft(ctx, attempt.Record, noteRefundUnconfirmed); err != nil {
				return err
			}
		}
	}

	current, found, err := uc.meta.Get(ctx, orderID, order.MetaRefundCurrent)
	if err != nil {
		return fmt.Errorf("failed to read current refund: %w", err)
	}
	if !found {
		return nil
	}
	id, err := strconv.ParseUint(current, 10, 64)
	if err != nil {
		return nil
	}
	if _, err := uc.refunds.GetByID(ctx, uint(id)); err == nil {
		return apperrors.NewConflictError("a refund is already in progress for this order", fmt.Sprintf("refund %d", id))
	} else if !errors.Is(err, order.ErrRefundNotFound) {
		return fmt.Errorf("failed to load current refund: %w", err)
	}
	return nil
}

// discardDraft deletes the attempt's refund unless it is gone, confirmed or
// belongs to another order. A non-empty note format is added to the order.
func (uc *ProcessRefundUseCase) discardDraft(ctx context.Context, rec pending.Record, note string) error {
	r, err := uc.refunds.GetByID(ctx, rec.RefundID)
	if errors.Is(err, order.ErrRefundNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load abandoned refund: %w", err)
	}
	if r.OrderID() != rec.OrderID || r.IsConfirmed() {
		return nil
	}

	return uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.refunds.Delete(ctx, r.ID()); err != nil {
			return fmt.Errorf("failed to delete abandoned refund: %w", err)
		}
		if note == "" {
			return nil
		}
		if err := uc.notes.Add(ctx, rec.OrderID, fmt.Sprintf(note, r.ID())); err != nil {
			return fmt.Errorf("failed to add order note: %w", err)
		}
		return nil
	})
}
