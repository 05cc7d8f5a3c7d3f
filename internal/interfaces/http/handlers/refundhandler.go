package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	refundUsecases "github.com/shoppingos/sospay/internal/application/refund/usecases"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

type processRefundExecutor interface {
	Execute(ctx context.Context, cmd refundUsecases.ProcessRefundCommand) (*refundUsecases.ProcessRefundResult, error)
}

type RefundHandler struct {
	processUC processRefundExecutor
	logger    logger.Interface
}

func NewRefundHandler(processUC processRefundExecutor, logger logger.Interface) *RefundHandler {
	return &RefundHandler{processUC: processUC, logger: logger}
}

type CreateRefundRequest struct {
	Amount string `json:"amount" binding:"required" validate:"required,money"`
	Reason string `json:"reason" validate:"max=500"`
}

// Create handles POST /admin/orders/:id/refunds. The draft is only armed
// here; the returned redirect is the order page that sends it to the bank.
func (h *RefundHandler) Create(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	var req CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	req.Amount = strings.TrimSpace(req.Amount)
	req.Reason = utils.SanitizeText(req.Reason)
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	res, err := h.processUC.Execute(c.Request.Context(), refundUsecases.ProcessRefundCommand{
		OrderID: orderID,
		Amount:  decimal.RequireFromString(req.Amount),
		Reason:  req.Reason,
		Session: sess,
	})
	if err != nil {
		h.logger.Warnw("refund rejected", "order_id", orderID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, res, "refund armed, open the order page to continue at the bank")
}
