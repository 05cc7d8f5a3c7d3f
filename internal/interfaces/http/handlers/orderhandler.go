package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shoppingos/sospay/internal/application/common/dto"
	"github.com/shoppingos/sospay/internal/application/notice"
	orderUsecases "github.com/shoppingos/sospay/internal/application/order/usecases"
	refundUsecases "github.com/shoppingos/sospay/internal/application/refund/usecases"
	"github.com/shoppingos/sospay/internal/interfaces/http/middleware"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

type createOrderExecutor interface {
	Execute(ctx context.Context, cmd orderUsecases.CreateOrderCommand) (*dto.OrderDTO, error)
}

type listOrdersExecutor interface {
	Execute(ctx context.Context, query orderUsecases.ListOrdersQuery) (*orderUsecases.ListOrdersResult, error)
}

type getOrderDetailExecutor interface {
	Execute(ctx context.Context, orderID uint) (*orderUsecases.OrderDetail, error)
}

type proceedToBankExecutor interface {
	Execute(ctx context.Context, cmd refundUsecases.ProceedToBankCommand) (*refundUsecases.ProceedToBankResult, error)
}

type consumeRefundNoticesExecutor interface {
	Execute(ctx context.Context, orderID uint) ([]notice.Notice, error)
}

// OrderHandler serves the merchant's order pages.
type OrderHandler struct {
	createUC  createOrderExecutor
	listUC    listOrdersExecutor
	detailUC  getOrderDetailExecutor
	proceedUC proceedToBankExecutor
	noticesUC consumeRefundNoticesExecutor
	logger    logger.Interface
}

func NewOrderHandler(
	createUC createOrderExecutor,
	listUC listOrdersExecutor,
	detailUC getOrderDetailExecutor,
	proceedUC proceedToBankExecutor,
	noticesUC consumeRefundNoticesExecutor,
	logger logger.Interface,
) *OrderHandler {
	return &OrderHandler{
		createUC:  createUC,
		listUC:    listUC,
		detailUC:  detailUC,
		proceedUC: proceedUC,
		noticesUC: noticesUC,
		logger:    logger,
	}
}

// OrderPage is everything the admin order screen renders.
type OrderPage struct {
	*orderUsecases.OrderDetail
	RefundNotices []notice.Notice `json:"refund_notices"`
	AdminNotices  []notice.Notice `json:"admin_notices"`
}

// Create handles POST /admin/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var cmd orderUsecases.CreateOrderCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	cmd.UserAgent = c.Request.UserAgent()

	created, err := h.createUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Warnw("failed to create order", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, created, "order created")
}

// List handles GET /admin/orders
func (h *OrderHandler) List(c *gin.Context) {
	p := utils.ParsePagination(c)

	res, err := h.listUC.Execute(c.Request.Context(), orderUsecases.ListOrdersQuery{
		Status:        c.Query("status"),
		PaymentMethod: c.Query("payment_method"),
		Page:          p.Page,
		PageSize:      p.PageSize,
	})
	if err != nil {
		h.logger.Errorw("failed to list orders", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, res.Orders, res.Total, utils.Pagination{Page: res.Page, PageSize: res.PageSize})
}

// Get handles GET /admin/orders/:id. Loading the page is what hands an armed
// refund over to the bank, so the response may be a redirect instead.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	proceed, err := h.proceedUC.Execute(ctx, refundUsecases.ProceedToBankCommand{
		OrderDetailPage: true,
		Session:         sess,
		UserEmail:       middleware.UserEmail(c),
	})
	if err != nil {
		h.logger.Errorw("failed to proceed to bank refund", "order_id", orderID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	if proceed != nil && proceed.Redirect != "" {
		c.Redirect(http.StatusFound, proceed.Redirect)
		return
	}

	detail, err := h.detailUC.Execute(ctx, orderID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	refundNotices, err := h.noticesUC.Execute(ctx, orderID)
	if err != nil {
		h.logger.Errorw("failed to read refund notices", "order_id", orderID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	adminNotices, err := notice.Admin(sess).Drain(ctx)
	if err != nil {
		h.logger.Warnw("failed to drain admin notices", "error", err)
	}

	page := OrderPage{
		OrderDetail:   detail,
		RefundNotices: nonNil(refundNotices),
		AdminNotices:  nonNil(adminNotices),
	}
	utils.SuccessResponse(c, http.StatusOK, "", page)
}

func nonNil(n []notice.Notice) []notice.Notice {
	if n == nil {
		return []notice.Notice{}
	}
	return n
}
