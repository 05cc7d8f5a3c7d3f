package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/shoppingos/sospay/internal/application/common/links"
	"github.com/shoppingos/sospay/internal/application/notice"
	"github.com/shoppingos/sospay/internal/application/payment/paymentgateway"
	"github.com/shoppingos/sospay/internal/application/refund/pending"
	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/domain/session"
	"github.com/shoppingos/sospay/internal/shared/biztime"
	"github.com/shoppingos/sospay/internal/shared/db"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

const (
	msgRefundMissing     = "Refund does not exist or it was deleted."
	msgRefundNotReceived = "Response not received, please try again."
	msgRefundContactUs   = "Please contact us with the Order Id."
)

type ProceedToBankCommand struct {
	// OrderDetailPage is true only while rendering a single order's admin page.
	OrderDetailPage bool
	Session         session.Session
	UserEmail       string
}

// ProceedToBankResult is nil when there was nothing to proceed with.
type ProceedToBankResult struct {
	// Redirect is the bank authorisation page; empty when the attempt ended here.
	Redirect string
	OrderID  uint
	RefundID uint
}

// MaybeProceedToBankRefundUseCase sends an armed draft refund to the payment
// service on the next order page load.
type MaybeProceedToBankRefundUseCase struct {
	refunds  order.RefundRepository
	meta     order.MetadataStore
	tx       db.Transactor
	gateway  paymentgateway.Gateway
	links    *links.Builder
	settings paymentgateway.Settings
	logger   logger.Interface
}

func NewMaybeProceedToBankRefundUseCase(
	refunds order.RefundRepository,
	meta order.MetadataStore,
	tx db.Transactor,
	gateway paymentgateway.Gateway,
	linkBuilder *links.Builder,
	settings paymentgateway.Settings,
	logger logger.Interface,
) *MaybeProceedToBankRefundUseCase {
	return &MaybeProceedToBankRefundUseCase{
		refunds:  refunds,
		meta:     meta,
		tx:       tx,
		gateway:  gateway,
		links:    linkBuilder,
		settings: settings,
		logger:   logger,
	}
}

func (uc *MaybeProceedToBankRefundUseCase) Execute(ctx context.Context, cmd ProceedToBankCommand) (*ProceedToBankResult, error) {
	if !cmd.OrderDetailPage {
		return nil, nil
	}

	store := pending.New(cmd.Session)
	rec, ok, err := store.RedirectingToBank(ctx)
	if err != nil || !ok {
		return nil, err
	}

	refund, err := uc.refunds.GetByID(ctx, rec.RefundID)
	if err != nil {
		if !errors.Is(err, order.ErrRefundNotFound) {
			return nil, fmt.Errorf("failed to load refund %d: %w", rec.RefundID, err)
		}
		uc.logger.Warnw("armed refund no longer exists", "refund_id", rec.RefundID, "order_id", rec.OrderID)
		if err := notice.Admin(cmd.Session).Add(ctx, msgRefundMissing, notice.LevelError); err != nil {
			return nil, err
		}
		if err := store.ClearRedirectingToBank(ctx); err != nil {
			return nil, err
		}
		return &ProceedToBankResult{OrderID: rec.OrderID, RefundID: rec.RefundID}, nil
	}

	result := &ProceedToBankResult{OrderID: rec.OrderID, RefundID: rec.RefundID}

	resp, callErr := uc.gateway.InitiateRefund(ctx, paymentgateway.RefundRequest{
		Environment: uc.settings.Environment(),
		OrderID:     rec.OrderID,
		Total:       refund.Amount(),
		Currency:    uc.settings.Currency,
		PSUEmail:    cmd.UserEmail,
		CallbackURL: uc.links.RefundCallback(rec.RefundID, rec.OrderID),
		Version:     uc.settings.Version,
	})

	if err := uc.storeRefundDetails(ctx, rec.OrderID, refund, cmd.UserEmail); err != nil {
		return nil, err
	}

	if callErr != nil {
		uc.logger.Warnw("refund initiation not delivered", "order_id", rec.OrderID, "refund_id", rec.RefundID, "error", callErr)
		return result, uc.abandon(ctx, store, rec, msgRefundNotReceived)
	}

	if resp.Code == paymentgateway.CodeReceived && resp.RedirectURL != "" {
		if err := uc.meta.Delete(ctx, rec.OrderID, order.MetaRefundCurrent); err != nil {
			return nil, fmt.Errorf("failed to clear current refund: %w", err)
		}
		if err := store.SetReturningToWc(ctx, rec.RefundID, rec.OrderID); err != nil {
			return nil, err
		}
		uc.logger.Infow("refund initiated, redirecting merchant to bank", "order_id", rec.OrderID, "refund_id", rec.RefundID)
		result.Redirect = resp.RedirectURL
		return result, nil
	}

	msg := msgRefundContactUs
	if resp.Code == paymentgateway.CodeError && resp.Message != "" {
		msg = utils.SanitizeText(resp.Message)
	}
	uc.logger.Infow("refund initiation not accepted", "order_id", rec.OrderID, "refund_id", rec.RefundID, "code", resp.Code)
	return result, uc.abandon(ctx, store, rec, msg)
}

// storeRefundDetails creates each detail on first use and updates it
// afterwards. The details are written together or not at all.
func (uc *MaybeProceedToBankRefundUseCase) storeRefundDetails(ctx context.Context, orderID uint, refund *order.Refund, email string) error {
	details := []struct{ key, value string }{
		{order.MetaRefundEmail, email},
		{order.MetaRefundAmount, refund.Amount().StringFixed(2)},
		{order.MetaRefundDate, biztime.FormatGMT(biztime.NowUTC())},
		{order.MetaRefundStatus, string(order.RefundStatusPending)},
	}
	return uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, d := range details {
			added, err := uc.meta.Add(ctx, orderID, d.key, d.value)
			if err != nil {
				return fmt.Errorf("failed to add %s: %w", d.key, err)
			}
			if added {
				continue
			}
			if err := uc.meta.Update(ctx, orderID, d.key, d.value); err != nil {
				return fmt.Errorf("failed to update %s: %w", d.key, err)
			}
		}
		return nil
	})
}

func (uc *MaybeProceedToBankRefundUseCase) abandon(ctx context.Context, store *pending.Store, rec pending.Record, msg string) error {
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.meta.Update(ctx, rec.OrderID, order.MetaRefundNotice, msg); err != nil {
			return fmt.Errorf("failed to store refund notice: %w", err)
		}
		if err := uc.refunds.Delete(ctx, rec.RefundID); err != nil {
			return fmt.Errorf("failed to delete draft refund %d: %w", rec.RefundID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return store.ClearRedirectingToBank(ctx)
}
