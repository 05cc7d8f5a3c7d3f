package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shoppingos/sospay/internal/application/common/callbacklog"
	"github.com/shoppingos/sospay/internal/application/common/links"
	"github.com/shoppingos/sospay/internal/application/notice"
	"github.com/shoppingos/sospay/internal/application/payment/paymentgateway"
	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/domain/session"
	"github.com/shoppingos/sospay/internal/domain/shared"
	"github.com/shoppingos/sospay/internal/shared/db"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/utils"
	"github.com/shoppingos/sospay/internal/shared/utils/logutil"
)

const (
	msgResponseNotReceived  = "Response not received"
	msgNoFailResponse       = "Couldn't receive fail callback response"
	msgPaymentInProgress    = "Your payment is already being processed."
	paymentAttemptNoteTitle = "**Payment Attempt**"
)

// Outcomes stored in the callback audit log.
const (
	OutcomeOrderNotFound = "order_not_found"
	OutcomeLockBusy      = "lock_busy"
	OutcomeAlreadyPaid   = "already_paid"
	OutcomeDeclined      = "declined"
	OutcomeRejected      = "rejected"
	OutcomePaid          = "paid"
	OutcomeUnknown       = "unknown"
	OutcomeNoResponse    = "no_response"
)

type PaymentCallbackCommand struct {
	Query   url.Values
	Session session.Session
}

// CallbackResult is where the browser that delivered the webhook goes next.
type CallbackResult struct {
	Redirect string
	Outcome  string
}

type HandlePaymentCallbackUseCase struct {
	orders   order.Repository
	notes    order.NoteRepository
	meta     order.MetadataStore
	tx       db.Transactor
	gateway  paymentgateway.Gateway
	locker   shared.Locker
	recorder *callbacklog.Recorder
	links    *links.Builder
	settings paymentgateway.Settings
	logger   logger.Interface
}

func NewHandlePaymentCallbackUseCase(
	orders order.Repository,
	notes order.NoteRepository,
	meta order.MetadataStore,
	tx db.Transactor,
	gateway paymentgateway.Gateway,
	locker shared.Locker,
	recorder *callbacklog.Recorder,
	linkBuilder *links.Builder,
	settings paymentgateway.Settings,
	logger logger.Interface,
) *HandlePaymentCallbackUseCase {
	return &HandlePaymentCallbackUseCase{
		orders:   orders,
		notes:    notes,
		meta:     meta,
		tx:       tx,
		gateway:  gateway,
		locker:   locker,
		recorder: recorder,
		links:    linkBuilder,
		settings: settings,
		logger:   logger,
	}
}

// Execute reconciles the bank's return redirect for a payment. The result
// always carries a redirect; an error is only returned alongside one when
// the order store itself failed.
func (uc *HandlePaymentCallbackUseCase) Execute(ctx context.Context, cmd PaymentCallbackCommand) (*CallbackResult, error) {
	q := cmd.Query
	notices := notice.Shopper(cmd.Session)

	orderID, err := strconv.ParseUint(strings.TrimSpace(utils.SanitizeText(q.Get("order_id"))), 10, 64)
	if err != nil || orderID == 0 {
		uc.logger.Warnw("payment callback without a usable order id", "order_id", q.Get("order_id"))
		return uc.finish(ctx, cmd, 0, uc.links.Checkout(), OutcomeOrderNotFound, notices, msgOrderNotFound)
	}
	id := uint(orderID)

	release, err := uc.locker.Acquire(ctx, strconv.FormatUint(orderID, 10))
	if err != nil {
		if errors.Is(err, shared.ErrLockNotAcquired) {
			uc.logger.Warnw("payment callback already being reconciled", "order_id", id)
			return uc.finish(ctx, cmd, id, uc.links.OrderReceived(id), OutcomeLockBusy, notices, msgPaymentInProgress)
		}
		return uc.finish(ctx, cmd, id, uc.links.OrderReceived(id), OutcomeLockBusy, notices, msgTryAgain)
	}
	defer release()

	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			uc.logger.Warnw("payment callback for unknown order", "order_id", id)
			return uc.finish(ctx, cmd, id, uc.links.Checkout(), OutcomeOrderNotFound, notices, msgOrderNotFound)
		}
		res, _ := uc.finish(ctx, cmd, id, uc.links.Checkout(), OutcomeNoResponse, notices, msgTryAgain)
		return res, fmt.Errorf("failed to load order %d: %w", id, err)
	}

	tokenID := utils.SanitizeText(q.Get("tokenId"))
	if err := uc.meta.Update(ctx, id, order.MetaTokenID, tokenID); err != nil {
		uc.logger.Errorw("failed to store payment token id", "order_id", id, "error", err)
	}

	if o.IsPaid() {
		uc.logger.Infow("payment callback for an order that is already paid", "order_id", id)
		return uc.finish(ctx, cmd, id, uc.links.OrderReceived(id), OutcomeAlreadyPaid, nil, "")
	}

	if msg := utils.SanitizeText(q.Get("message")); msg != "" {
		return uc.handleDeclined(ctx, cmd, o, msg, notices)
	}

	resp, err := uc.gateway.ReportSuccess(ctx, paymentgateway.SuccessReport{
		Environment: uc.settings.Environment(),
		TokenID:     tokenID,
		RequestID:   q.Get("request-id"),
		Signature:   q.Get("signature"),
		RefundFlag:  false,
	})
	if err != nil {
		uc.logger.Warnw("payment success report not delivered",
			"order_id", id,
			"token_id", logutil.Truncate(tokenID, 8),
			"error", err)
		return uc.finish(ctx, cmd, id, uc.links.OrderReceived(id), OutcomeNoResponse, notices, msgResponseNotReceived)
	}

	switch resp.Code {
	case paymentgateway.CodeError:
		customerNotice := utils.SanitizeText(resp.Message)
		note := strings.Join([]string{
			paymentAttemptNoteTitle,
			"Customer Notice: " + customerNotice,
			"Received Status: " + utils.SanitizeText(resp.Status),
		}, "\n")
		if err := uc.failOrder(ctx, o, note); err != nil {
			res, _ := uc.finish(ctx, cmd, id, uc.links.Checkout(), OutcomeRejected, notices, customerNotice)
			return res, err
		}
		uc.logger.Infow("payment rejected by the service", "order_id", id, "status", resp.Status)
		return uc.finish(ctx, cmd, id, uc.links.Checkout(), OutcomeRejected, notices, customerNotice)

	case paymentgateway.CodeSuccess:
		o.CompletePayment()
		o.ReduceStock()
		if err := uc.orders.Update(ctx, o); err != nil {
			res, _ := uc.finish(ctx, cmd, id, uc.links.OrderReceived(id), OutcomePaid, nil, "")
			return res, fmt.Errorf("failed to complete payment of order %d: %w", id, err)
		}
		uc.logger.Infow("payment completed", "order_id", id, "total", o.Total().StringFixed(2))
		return uc.finish(ctx, cmd, id, uc.links.OrderReceived(id), OutcomePaid, nil, "")

	default:
		uc.logger.Warnw("unrecognized payment success report response", "order_id", id, "code", resp.Code)
		return uc.finish(ctx, cmd, id, uc.links.OrderReceived(id), OutcomeUnknown, notices, msgTryAgain)
	}
}

// handleDeclined runs when the bank sent the shopper back with an error message.
func (uc *HandlePaymentCallbackUseCase) handleDeclined(ctx context.Context, cmd PaymentCallbackCommand, o *order.Order, msg string, notices *notice.Queue) (*CallbackResult, error) {
	additional := msgNoFailResponse
	resp, err := uc.gateway.ReportFail(ctx, paymentgateway.FailReport{
		Environment: uc.settings.Environment(),
		RequestID:   cmd.Query.Get("request-id"),
		Message:     msg,
		RefundFlag:  false,
		Endpoint:    uc.settings.FailEndpoint(false),
	})
	if err != nil {
		uc.logger.Warnw("payment fail report not delivered", "order_id", o.ID(), "error", err)
	} else {
		additional = utils.SanitizeText(resp.Message)
	}

	note := strings.Join([]string{
		paymentAttemptNoteTitle,
		"Customer Notice: " + msg,
		"Additionally: " + additional,
	}, "\n")
	if err := uc.failOrder(ctx, o, note); err != nil {
		res, _ := uc.finish(ctx, cmd, o.ID(), uc.links.Checkout(), OutcomeDeclined, notices, msg)
		return res, err
	}

	uc.logger.Infow("payment declined at the bank", "order_id", o.ID(), "message", msg)
	return uc.finish(ctx, cmd, o.ID(), uc.links.Checkout(), OutcomeDeclined, notices, msg)
}

// failOrder records the attempt note and the failed status together.
func (uc *HandlePaymentCallbackUseCase) failOrder(ctx context.Context, o *order.Order, note string) error {
	if err := o.MarkFailed(); err != nil {
		return err
	}
	return uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.notes.Add(ctx, o.ID(), note); err != nil {
			uc.logger.Errorw("failed to add payment note", "order_id", o.ID(), "error", err)
		}
		if err := uc.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("failed to mark order %d failed: %w", o.ID(), err)
		}
		return nil
	})
}

// finish queues the shopper notice, if any, and records the delivery.
func (uc *HandlePaymentCallbackUseCase) finish(
	ctx context.Context,
	cmd PaymentCallbackCommand,
	orderID uint,
	redirect, outcome string,
	notices *notice.Queue,
	msg string,
) (*CallbackResult, error) {
	if notices != nil && msg != "" {
		if err := notices.Add(ctx, msg, notice.LevelError); err != nil {
			uc.logger.Errorw("failed to queue shopper notice", "order_id", orderID, "error", err)
		}
	}

	uc.recorder.Record(ctx, callbacklog.Entry{
		Kind:    order.CallbackKindPayment,
		OrderID: orderID,
		Query:   cmd.Query,
		Outcome: outcome,
	})

	return &CallbackResult{Redirect: redirect, Outcome: outcome}, nil
}
