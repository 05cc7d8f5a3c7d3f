package usecases

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/shoppingos/sospay/internal/application/common/links"
	"github.com/shoppingos/sospay/internal/application/notice"
	"github.com/shoppingos/sospay/internal/application/payment/paymentgateway"
	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/domain/session"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

const (
	msgConnectionError = "Connection error."
	msgTryAgain        = "Please try again."
	msgSelectBank      = "Please select your bank."
	msgOrderNotFound   = "Order not found, please try again."
	msgZeroTotal       = "Order total must be greater than zero."
)

type InitiatePaymentCommand struct {
	OrderID uint
	Session session.Session
}

// InitiatePaymentResult carries either a bank redirect or, when Redirect is
// empty, the reason the shopper was left on the checkout page.
type InitiatePaymentResult struct {
	Result   string `json:"result"`
	Redirect string `json:"redirect,omitempty"`
}

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

type InitiatePaymentUseCase struct {
	orders   order.Repository
	meta     order.MetadataStore
	gateway  paymentgateway.Gateway
	links    *links.Builder
	settings paymentgateway.Settings
	logger   logger.Interface
}

func NewInitiatePaymentUseCase(
	orders order.Repository,
	meta order.MetadataStore,
	gateway paymentgateway.Gateway,
	linkBuilder *links.Builder,
	settings paymentgateway.Settings,
	logger logger.Interface,
) *InitiatePaymentUseCase {
	return &InitiatePaymentUseCase{
		orders:   orders,
		meta:     meta,
		gateway:  gateway,
		links:    linkBuilder,
		settings: settings,
		logger:   logger,
	}
}

// Execute asks the payment service for a bank authorisation page. Every
// outcome other than a redirect leaves exactly one shopper notice behind.
func (uc *InitiatePaymentUseCase) Execute(ctx context.Context, cmd InitiatePaymentCommand) (*InitiatePaymentResult, error) {
	notices := notice.Shopper(cmd.Session)

	o, err := uc.orders.GetByID(ctx, cmd.OrderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return uc.fail(ctx, notices, msgOrderNotFound)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if !o.Total().IsPositive() {
		return uc.fail(ctx, notices, msgZeroTotal)
	}

	bank, found, err := uc.meta.Get(ctx, o.ID(), order.MetaSelectedBank)
	if err != nil {
		return nil, fmt.Errorf("failed to read selected bank: %w", err)
	}
	if !found || bank == "" {
		return uc.fail(ctx, notices, msgSelectBank)
	}

	resp, err := uc.gateway.InitiatePayment(ctx, paymentgateway.PaymentRequest{
		Environment: uc.settings.Environment(),
		OrderID:     o.ID(),
		Total:       o.Total(),
		Currency:    o.Currency(),
		CallbackURL: uc.links.PaymentCallback(o.ID()),
		UserAgent:   o.CustomerUserAgent(),
		PSUChecksum: PSUChecksum(o.BillingEmail()),
		BankCode:    bank,
		Version:     uc.settings.Version,
	})
	if err != nil {
		uc.logger.Warnw("payment initiation not delivered", "order_id", o.ID(), "error", err)
		return uc.fail(ctx, notices, msgConnectionError)
	}

	switch {
	case resp.Code == paymentgateway.CodeReceived && resp.RedirectURL != "":
		uc.logger.Infow("payment initiated, redirecting to bank", "order_id", o.ID(), "bank", bank)
		return &InitiatePaymentResult{Result: ResultSuccess, Redirect: resp.RedirectURL}, nil
	case resp.Code == paymentgateway.CodeError && resp.Message != "":
		uc.logger.Infow("payment initiation rejected", "order_id", o.ID(), "message", resp.Message)
		return uc.fail(ctx, notices, resp.Message)
	default:
		uc.logger.Warnw("unrecognized payment initiation response", "order_id", o.ID(), "code", resp.Code)
		return uc.fail(ctx, notices, msgTryAgain)
	}
}

func (uc *InitiatePaymentUseCase) fail(ctx context.Context, notices *notice.Queue, msg string) (*InitiatePaymentResult, error) {
	if err := notices.Add(ctx, msg, notice.LevelError); err != nil {
		return nil, err
	}
	return &InitiatePaymentResult{Result: ResultFailure}, nil
}

// PSUChecksum is the crc32b of the billing e-mail in lowercase hex.
func PSUChecksum(email string) string {
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(strings.TrimSpace(email))))
}
