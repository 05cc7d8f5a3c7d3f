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
	"github.com/shoppingos/sospay/internal/application/refund/pending"
	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/domain/session"
	"github.com/shoppingos/sospay/internal/domain/shared"
	"github.com/shoppingos/sospay/internal/domain/shared/events"
	"github.com/shoppingos/sospay/internal/shared/db"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

const (
	msgRefundIDMissing     = "Refund ID is unset or empty"
	msgOrderIDMissing      = "Order ID is unset or empty"
	msgOrderGone           = "Order doesn't exist or deleted"
	msgRefundGone          = "Refund doesn't exist or deleted"
	msgUnknownError        = "Unknown error, please try again."
	msgSomethingWentWrong  = "Something went wrong, please try again"
	msgRefundSuccessful    = "Refund is successful."
	msgRefundFailed        = "Refund failed or cancelled"
	msgResponseNotReceived = "Response not received"
	msgRefundInProgress    = "This refund is already being processed."
)

// Outcomes stored in the callback audit log and returned to the caller.
const (
	OutcomeInvalidIDs    = "invalid_ids"
	OutcomeBankMessage   = "bank_message"
	OutcomeOrderMissing  = "order_missing"
	OutcomeRefundMissing = "refund_missing"
	OutcomeLockBusy      = "lock_busy"
	OutcomeRefunded      = "refunded"
	OutcomeAlreadyDone   = "already_refunded"
	OutcomeRejected      = "rejected"
	OutcomeUnknown       = "unknown"
	OutcomeNoResponse    = "no_response"
	OutcomeFailed        = "failed"
)

type RefundCallbackCommand struct {
	Query   url.Values
	Session session.Session
}

type CallbackResult struct {
	Redirect string
	Outcome  string
}

// refundCallback is the state threaded through the reconciliation steps.
type refundCallback struct {
	query    url.Values
	sess     session.Session
	store    *pending.Store
	refundID uint
	orderID  uint
	order    *order.Order
	refund   *order.Refund
}

// stepResult either lets the pipeline continue or ends it with a redirect.
type stepResult struct {
	done     bool
	redirect string
	outcome  string
}

var next = stepResult{}

func terminate(redirect, outcome string) stepResult {
	return stepResult{done: true, redirect: redirect, outcome: outcome}
}

type step func(ctx context.Context, c *refundCallback) (stepResult, error)

// HandleRefundCallbackUseCase reconciles the bank's return redirect for a
// refund against the draft refund created when it was initiated.
type HandleRefundCallbackUseCase struct {
	orders    order.Repository
	refunds   order.RefundRepository
	notes     order.NoteRepository
	meta      order.MetadataStore
	tx        db.Transactor
	gateway   paymentgateway.Gateway
	locker    shared.Locker
	recorder  *callbacklog.Recorder
	publisher events.Publisher
	links     *links.Builder
	settings  paymentgateway.Settings
	logger    logger.Interface
}

func NewHandleRefundCallbackUseCase(
	orders order.Repository,
	refunds order.RefundRepository,
	notes order.NoteRepository,
	meta order.MetadataStore,
	tx db.Transactor,
	gateway paymentgateway.Gateway,
	locker shared.Locker,
	recorder *callbacklog.Recorder,
	publisher events.Publisher,
	linkBuilder *links.Builder,
	settings paymentgateway.Settings,
	logger logger.Interface,
) *HandleRefundCallbackUseCase {
	return &HandleRefundCallbackUseCase{
		orders:    orders,
		refunds:   refunds,
		notes:     notes,
		meta:      meta,
		tx:        tx,
		gateway:   gateway,
		locker:    locker,
		recorder:  recorder,
		publisher: publisher,
		links:     linkBuilder,
		settings:  settings,
		logger:    logger,
	}
}

// Execute runs the reconciliation steps in order; the first step that ends
// the callback decides the redirect. The result is never nil.
func (uc *HandleRefundCallbackUseCase) Execute(ctx context.Context, cmd RefundCallbackCommand) (*CallbackResult, error) {
	c := &refundCallback{
		query: cmd.Query,
		sess:  cmd.Session,
		store: pending.New(cmd.Session),
	}

	res, err := uc.parseIDs(ctx, c)
	if err != nil || res.done {
		return uc.finish(ctx, c, res, err)
	}

	release, err := uc.locker.Acquire(ctx, strconv.FormatUint(uint64(c.orderID), 10))
	if err != nil {
		uc.logger.Warnw("refund callback already being reconciled", "order_id", c.orderID, "refund_id", c.refundID, "error", err)
		if nerr := notice.Admin(c.sess).Add(ctx, msgRefundInProgress, notice.LevelWarning); nerr != nil {
			uc.logger.Errorw("failed to queue admin notice", "error", nerr)
		}
		res := terminate(uc.links.AdminOrderEdit(c.orderID), OutcomeLockBusy)
		if errors.Is(err, shared.ErrLockNotAcquired) {
			err = nil
		}
		return uc.finish(ctx, c, res, err)
	}
	defer release()

	steps := []step{
		uc.skipConfirmed,
		uc.checkBankMessage,
		uc.loadOrder,
		uc.loadRefund,
		uc.reconcile,
	}
	for _, s := range steps {
		res, err = s(ctx, c)
		if err != nil || res.done {
			return uc.finish(ctx, c, res, err)
		}
	}

	// reconcile always terminates; reaching here means a step was misordered.
	return uc.finish(ctx, c, terminate(uc.links.AdminOrderEdit(c.orderID), OutcomeUnknown), nil)
}

// parseIDs requires numeric refund_id and order_id. Without them the
// session's outstanding attempt, if any, is the only thing left to clean up.
func (uc *HandleRefundCallbackUseCase) parseIDs(ctx context.Context, c *refundCallback) (stepResult, error) {
	refundID, refundOK := parseID(c.query.Get("refund_id"))
	orderID, orderOK := parseID(c.query.Get("order_id"))
	if refundOK && orderOK {
		c.refundID, c.orderID = refundID, orderID
		return next, nil
	}

	msg := msgRefundIDMissing
	if refundOK {
		msg = msgOrderIDMissing
	}
	uc.logger.Warnw("refund callback with invalid ids",
		"refund_id", c.query.Get("refund_id"),
		"order_id", c.query.Get("order_id"),
	)

	rec, ok, err := c.store.ReturningToWc(ctx)
	if err != nil {
		return terminate(uc.links.AdminOrderList(), OutcomeInvalidIDs), err
	}
	if !ok {
		if err := notice.Admin(c.sess).Add(ctx, msg, notice.LevelError); err != nil {
			return terminate(uc.links.AdminOrderList(), OutcomeInvalidIDs), err
		}
		return terminate(uc.links.AdminOrderList(), OutcomeInvalidIDs), nil
	}

	c.refundID, c.orderID = rec.RefundID, rec.OrderID
	return uc.abandon(ctx, c, msg, true, uc.links.AdminOrderEdit(c.orderID), OutcomeInvalidIDs)
}

// skipConfirmed ends a repeated delivery for a refund the bank already
// confirmed. A confirmed refund is final.
func (uc *HandleRefundCallbackUseCase) skipConfirmed(ctx context.Context, c *refundCallback) (stepResult, error) {
	r, err := uc.refunds.GetByID(ctx, c.refundID)
	if errors.Is(err, order.ErrRefundNotFound) {
		return next, nil
	}
	if err != nil {
		return terminate(uc.links.AdminOrderEdit(c.orderID), OutcomeRefundMissing), fmt.Errorf("failed to load refund %d: %w", c.refundID, err)
	}
	if r.OrderID() != c.orderID || !r.IsConfirmed() {
		return next, nil
	}

	uc.logger.Infow("refund callback for a refund that is already confirmed", "order_id", c.orderID, "refund_id", c.refundID)
	return terminate(uc.links.AdminOrderEdit(c.orderID), OutcomeAlreadyDone), nil
}

// checkBankMessage ends the callback when the bank reported a failure or cancellation.
func (uc *HandleRefundCallbackUseCase) checkBankMessage(ctx context.Context, c *refundCallback) (stepResult, error) {
	if !c.query.Has("message") {
		return next, nil
	}

	msg := msgUnknownError
	if m := utils.SanitizeText(c.query.Get("message")); m != "" {
		msg = fmt.Sprintf("%s, please try again.", m)
	}
	uc.logger.Infow("refund cancelled at the bank", "order_id", c.orderID, "refund_id", c.refundID, "message", msg)
	return uc.abandon(ctx, c, msg, true, uc.links.AdminOrderEdit(c.orderID), OutcomeBankMessage)
}

func (uc *HandleRefundCallbackUseCase) loadOrder(ctx context.Context, c *refundCallback) (stepResult, error) {
	o, err := uc.orders.GetByID(ctx, c.orderID)
	if err == nil {
		c.order = o
		return next, nil
	}
	if !errors.Is(err, order.ErrOrderNotFound) {
		return terminate(uc.links.AdminOrderList(), OutcomeOrderMissing), fmt.Errorf("failed to load order %d: %w", c.orderID, err)
	}

	uc.logger.Warnw("refund callback for unknown order", "order_id", c.orderID, "refund_id", c.refundID)
	return uc.abandon(ctx, c, msgOrderGone, true, uc.links.AdminOrderList(), OutcomeOrderMissing)
}

func (uc *HandleRefundCallbackUseCase) loadRefund(ctx context.Context, c *refundCallback) (stepResult, error) {
	r, err := uc.refunds.GetByID(ctx, c.refundID)
	if err == nil && r.OrderID() == c.orderID {
		c.refund = r
		return next, nil
	}
	if err != nil && !errors.Is(err, order.ErrRefundNotFound) {
		return terminate(uc.links.AdminOrderEdit(c.orderID), OutcomeRefundMissing), fmt.Errorf("failed to load refund %d: %w", c.refundID, err)
	}

	uc.logger.Warnw("refund callback for unknown refund", "order_id", c.orderID, "refund_id", c.refundID)
	return uc.abandon(ctx, c, msgRefundGone, false, uc.links.AdminOrderEdit(c.orderID), OutcomeRefundMissing)
}

// reconcile validates the confirmation parameters and reports the outcome
// to the payment service. It always ends the callback.
func (uc *HandleRefundCallbackUseCase) reconcile(ctx context.Context, c *refundCallback) (stepResult, error) {
	if reason := confirmationProblem(c.query); reason != "" {
		return uc.reportFailure(ctx, c, reason)
	}
	return uc.reportSuccess(ctx, c)
}

// confirmationProblem explains why the callback cannot confirm the refund, or returns "".
func confirmationProblem(q url.Values) string {
	if q.Get("request-id") == "" {
		return msgSomethingWentWrong
	}
	if q.Get("error") != "" {
		if m := utils.SanitizeText(q.Get("message")); m != "" {
			return "Refund cancelled: " + m
		}
		return msgSomethingWentWrong
	}
	if q.Get("tokenId") == "" {
		return msgSomethingWentWrong
	}
	return ""
}

func (uc *HandleRefundCallbackUseCase) reportSuccess(ctx context.Context, c *refundCallback) (stepResult, error) {
	q := c.query
	edit := uc.links.AdminOrderEdit(c.orderID)

	resp, err := uc.gateway.ReportSuccess(ctx, paymentgateway.SuccessReport{
		Environment: uc.settings.Environment(),
		TokenID:     q.Get("tokenId"),
		RequestID:   q.Get("request-id"),
		Signature:   q.Get("signature"),
		RefundFlag:  true,
	})

	var (
		outcome   string
		msg       string
		succeeded bool
	)
	switch {
	case err != nil:
		uc.logger.Warnw("refund success report not delivered", "order_id", c.orderID, "refund_id", c.refundID, "error", err)
		outcome, msg = OutcomeNoResponse, msgResponseNotReceived
	case resp.Code == paymentgateway.CodeSuccess:
		outcome, msg, succeeded = OutcomeRefunded, msgRefundSuccessful, true
	case resp.Code == paymentgateway.CodeError:
		outcome, msg = OutcomeRejected, utils.SanitizeText(resp.Message)
	default:
		uc.logger.Warnw("refund reconciliation outcome Unknown", "order_id", c.orderID, "refund_id", c.refundID, "code", resp.Code)
		outcome = OutcomeUnknown
	}

	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if msg != "" {
			if err := uc.meta.Update(ctx, c.orderID, order.MetaRefundNotice, msg); err != nil {
				return fmt.Errorf("failed to store refund notice: %w", err)
			}
		}
		if !succeeded {
			return nil
		}

		if err := c.refund.Confirm(); err != nil {
			return err
		}
		if err := uc.refunds.Update(ctx, c.refund); err != nil {
			return fmt.Errorf("failed to confirm refund %d: %w", c.refundID, err)
		}
		if err := uc.meta.Update(ctx, c.orderID, order.MetaRefundStatus, string(order.RefundStatusProcessing)); err != nil {
			return fmt.Errorf("failed to store refund status: %w", err)
		}
		note := fmt.Sprintf("Successfully refunded %s (#%d)", utils.FormatPrice(c.refund.Amount(), c.order.Currency()), c.refund.ID())
		if err := uc.notes.Add(ctx, c.orderID, note); err != nil {
			uc.logger.Errorw("failed to add refund note", "order_id", c.orderID, "error", err)
		}
		return nil
	})
	if err != nil {
		return terminate(edit, outcome), err
	}
	if succeeded {
		uc.logger.Infow("refund confirmed", "order_id", c.orderID, "refund_id", c.refundID, "amount", c.refund.Amount().StringFixed(2))
	}

	state := pending.StateFailed
	if succeeded {
		state = pending.StateCompleted
	}
	if err := c.store.ClearReturningToWc(ctx, state); err != nil {
		return terminate(edit, outcome), err
	}

	if outcome != OutcomeUnknown {
		uc.publish(ctx, c, succeeded, msg)
	}
	return terminate(edit, outcome), nil
}

// reportFailure tells the payment service the refund did not go through and
// removes the draft.
func (uc *HandleRefundCallbackUseCase) reportFailure(ctx context.Context, c *refundCallback, reason string) (stepResult, error) {
	edit := uc.links.AdminOrderEdit(c.orderID)
	message := utils.SanitizeText(c.query.Get("message"))
	if message == "" {
		message = reason
	}

	uc.logger.Infow("refund callback cannot be confirmed", "order_id", c.orderID, "refund_id", c.refundID, "reason", reason)

	resp, err := uc.gateway.ReportFail(ctx, paymentgateway.FailReport{
		Environment: uc.settings.Environment(),
		RequestID:   c.query.Get("request-id"),
		Message:     message,
		RefundFlag:  true,
		Endpoint:    uc.settings.FailEndpoint(true),
	})

	responseNotice := ""
	switch {
	case err != nil:
		uc.logger.Warnw("refund fail report not delivered", "order_id", c.orderID, "refund_id", c.refundID, "error", err)
		responseNotice = msgResponseNotReceived
	case resp.Error != "":
		responseNotice = "Response not received: " + utils.SanitizeText(resp.Error)
	case resp.Code == paymentgateway.CodeReceived && resp.Message != "":
		// the error field is empty on this branch; the service explains itself in message
		responseNotice = "Response: " + utils.SanitizeText(resp.Message)
	}

	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.meta.Update(ctx, c.orderID, order.MetaRefundNotice, msgRefundFailed); err != nil {
			return fmt.Errorf("failed to store refund notice: %w", err)
		}
		if responseNotice != "" {
			if err := uc.meta.Update(ctx, c.orderID, order.MetaRefundRespMsg, responseNotice); err != nil {
				return fmt.Errorf("failed to store refund response notice: %w", err)
			}
		}
		if err := uc.refunds.Delete(ctx, c.refundID); err != nil {
			return fmt.Errorf("failed to delete refund %d: %w", c.refundID, err)
		}
		return nil
	})
	if err != nil {
		return terminate(edit, OutcomeFailed), err
	}
	if err := c.store.ClearReturningToWc(ctx, pending.StateFailed); err != nil {
		return terminate(edit, OutcomeFailed), err
	}

	uc.publish(ctx, c, false, msgRefundFailed)
	return terminate(edit, OutcomeFailed), nil
}

// abandon is the shared cleanup of the early exits: optionally drop the
// draft refund, keep the notice for the order page, resolve the attempt.
func (uc *HandleRefundCallbackUseCase) abandon(ctx context.Context, c *refundCallback, msg string, deleteRefund bool, redirect, outcome string) (stepResult, error) {
	res := terminate(redirect, outcome)

	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if deleteRefund {
			if err := uc.deleteDraft(ctx, c.refundID, c.orderID); err != nil {
				return err
			}
		}
		if err := uc.meta.Update(ctx, c.orderID, order.MetaRefundNotice, msg); err != nil {
			return fmt.Errorf("failed to store refund notice: %w", err)
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	if err := c.store.ClearReturningToWc(ctx, pending.StateFailed); err != nil {
		return res, err
	}
	return res, nil
}

// deleteDraft removes the refund only when it is an unconfirmed draft of the
// order named in the callback.
func (uc *HandleRefundCallbackUseCase) deleteDraft(ctx context.Context, refundID, orderID uint) error {
	r, err := uc.refunds.GetByID(ctx, refundID)
	if errors.Is(err, order.ErrRefundNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load refund %d: %w", refundID, err)
	}
	if r.OrderID() != orderID {
		uc.logger.Warnw("refund callback names a refund of another order", "refund_id", refundID, "order_id", orderID, "refund_order_id", r.OrderID())
		return nil
	}
	if r.IsConfirmed() {
		uc.logger.Warnw("refund callback names a confirmed refund", "refund_id", refundID, "order_id", orderID)
		return nil
	}
	if err := uc.refunds.Delete(ctx, refundID); err != nil {
		return fmt.Errorf("failed to delete refund %d: %w", refundID, err)
	}
	return nil
}

func (uc *HandleRefundCallbackUseCase) publish(ctx context.Context, c *refundCallback, succeeded bool, msg string) {
	if uc.publisher == nil || c.order == nil || c.refund == nil {
		return
	}

	email, _, err := uc.meta.Get(ctx, c.orderID, order.MetaRefundEmail)
	if err != nil {
		uc.logger.Warnw("failed to read refund initiator", "order_id", c.orderID, "error", err)
	}

	event := order.NewRefundReconciledEvent(c.orderID, c.refundID, c.refund.Amount(), c.order.Currency(), succeeded, msg, email)
	if err := uc.publisher.Publish(event); err != nil {
		uc.logger.Warnw("failed to publish refund reconciled event", "order_id", c.orderID, "error", err)
	}
}

func (uc *HandleRefundCallbackUseCase) finish(ctx context.Context, c *refundCallback, res stepResult, err error) (*CallbackResult, error) {
	if res.redirect == "" {
		res.redirect = uc.links.AdminOrderList()
	}
	if err != nil {
		uc.logger.Errorw("refund callback reconciliation failed", "order_id", c.orderID, "refund_id", c.refundID, "error", err)
	}

	uc.recorder.Record(ctx, callbacklog.Entry{
		Kind:     order.CallbackKindRefund,
		OrderID:  c.orderID,
		RefundID: c.refundID,
		Query:    c.query,
		Outcome:  res.outcome,
	})

	return &CallbackResult{Redirect: res.redirect, Outcome: res.outcome}, err
}

func parseID(raw string) (uint, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
