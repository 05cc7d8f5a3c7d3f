package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shoppingos/sospay/internal/application/notice"
	paymentUsecases "github.com/shoppingos/sospay/internal/application/payment/usecases"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

type saveSelectedBankExecutor interface {
	Execute(ctx context.Context, cmd paymentUsecases.SaveSelectedBankCommand) error
}

type initiatePaymentExecutor interface {
	Execute(ctx context.Context, cmd paymentUsecases.InitiatePaymentCommand) (*paymentUsecases.InitiatePaymentResult, error)
}

// CheckoutHandler serves the storefront side of a bank payment.
type CheckoutHandler struct {
	saveBankUC saveSelectedBankExecutor
	initiateUC initiatePaymentExecutor
	logger     logger.Interface
}

func NewCheckoutHandler(saveBankUC saveSelectedBankExecutor, initiateUC initiatePaymentExecutor, logger logger.Interface) *CheckoutHandler {
	return &CheckoutHandler{
		saveBankUC: saveBankUC,
		initiateUC: initiateUC,
		logger:     logger,
	}
}

type SaveBankRequest struct {
	BankCode string `json:"bank_code" form:"bank_code"`
}

// PayResponse mirrors the storefront's process-payment contract.
type PayResponse struct {
	Result   string          `json:"result"`
	Redirect string          `json:"redirect,omitempty"`
	Messages []notice.Notice `json:"messages,omitempty"`
}

// CheckoutPage is what the storefront renders when the shopper lands back
// on checkout or on the order-received page.
type CheckoutPage struct {
	OrderID  uint            `json:"order_id,omitempty"`
	Messages []notice.Notice `json:"messages"`
}

// SaveBank handles POST /checkout/orders/:id/bank
func (h *CheckoutHandler) SaveBank(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req SaveBankRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	err := h.saveBankUC.Execute(c.Request.Context(), paymentUsecases.SaveSelectedBankCommand{
		OrderID:  orderID,
		BankCode: req.BankCode,
	})
	if err != nil {
		h.logger.Warnw("failed to save selected bank", "order_id", orderID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "bank selection saved", nil)
}

// Pay handles POST /checkout/orders/:id/pay. A failure leaves the shopper on
// checkout with the drained notices.
func (h *CheckoutHandler) Pay(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	res, err := h.initiateUC.Execute(ctx, paymentUsecases.InitiatePaymentCommand{OrderID: orderID, Session: sess})
	if err != nil {
		h.logger.Errorw("failed to initiate payment", "order_id", orderID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := PayResponse{Result: res.Result, Redirect: res.Redirect}
	if res.Result != paymentUsecases.ResultSuccess {
		messages, err := notice.Shopper(sess).Drain(ctx)
		if err != nil {
			h.logger.Warnw("failed to drain checkout notices", "order_id", orderID, "error", err)
		}
		resp.Messages = messages
	}

	c.JSON(http.StatusOK, resp)
}

// Notices handles GET /checkout/notices
func (h *CheckoutHandler) Notices(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	messages, err := notice.Shopper(sess).Drain(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to drain shopper notices", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	if messages == nil {
		messages = []notice.Notice{}
	}

	utils.SuccessResponse(c, http.StatusOK, "", messages)
}

// Checkout handles GET /checkout, where failed and cancelled payments land.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	h.renderPage(c, 0)
}

// OrderReceived handles GET /checkout/order-received/:id/
func (h *CheckoutHandler) OrderReceived(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	h.renderPage(c, orderID)
}

func (h *CheckoutHandler) renderPage(c *gin.Context, orderID uint) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	messages, err := notice.Shopper(sess).Drain(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to drain shopper notices", "order_id", orderID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	if messages == nil {
		messages = []notice.Notice{}
	}

	utils.SuccessResponse(c, http.StatusOK, "", CheckoutPage{OrderID: orderID, Messages: messages})
}
