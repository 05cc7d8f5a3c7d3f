package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentUsecases "github.com/shoppingos/sospay/internal/application/payment/usecases"
	refundUsecases "github.com/shoppingos/sospay/internal/application/refund/usecases"
	"github.com/shoppingos/sospay/internal/shared/constants"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

type paymentCallbackExecutor interface {
	Execute(ctx context.Context, cmd paymentUsecases.PaymentCallbackCommand) (*paymentUsecases.CallbackResult, error)
}

type refundCallbackExecutor interface {
	Execute(ctx context.Context, cmd refundUsecases.RefundCallbackCommand) (*refundUsecases.CallbackResult, error)
}

// WebhookHandler receives the bank's browser redirects. Both callbacks share
// the site root and are told apart by the wc-api query parameter.
type WebhookHandler struct {
	paymentUC paymentCallbackExecutor
	refundUC  refundCallbackExecutor
	logger    logger.Interface
}

func NewWebhookHandler(paymentUC paymentCallbackExecutor, refundUC refundCallbackExecutor, logger logger.Interface) *WebhookHandler {
	return &WebhookHandler{
		paymentUC: paymentUC,
		refundUC:  refundUC,
		logger:    logger,
	}
}

// Dispatch handles GET /
func (h *WebhookHandler) Dispatch(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	query := c.Request.URL.Query()

	var (
		redirect string
		err      error
	)
	switch webhook := c.Query("wc-api"); webhook {
	case constants.WebhookPayment:
		var res *paymentUsecases.CallbackResult
		res, err = h.paymentUC.Execute(ctx, paymentUsecases.PaymentCallbackCommand{Query: query, Session: sess})
		if res != nil {
			redirect = res.Redirect
		}
	case constants.WebhookRefund:
		var res *refundUsecases.CallbackResult
		res, err = h.refundUC.Execute(ctx, refundUsecases.RefundCallbackCommand{Query: query, Session: sess})
		if res != nil {
			redirect = res.Redirect
		}
	default:
		utils.ErrorResponse(c, http.StatusNotFound, "unknown webhook")
		return
	}

	if err != nil {
		h.logger.Errorw("webhook reconciliation failed", "webhook", c.Query("wc-api"), "error", err)
	}
	if redirect == "" {
		utils.ErrorResponse(c, http.StatusInternalServerError, "webhook could not be processed")
		return
	}

	c.Redirect(http.StatusFound, redirect)
}
