package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shoppingos/sospay/internal/application/common/dto"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

type paymentStatisticsExecutor interface {
	Execute(ctx context.Context) (*dto.PaymentStatisticsDTO, error)
}

type StatHandler struct {
	statsUC paymentStatisticsExecutor
	logger  logger.Interface
}

func NewStatHandler(statsUC paymentStatisticsExecutor, logger logger.Interface) *StatHandler {
	return &StatHandler{statsUC: statsUC, logger: logger}
}

// Payments handles GET /admin/stats
func (h *StatHandler) Payments(c *gin.Context) {
	stats, err := h.statsUC.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to compute payment statistics", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", stats)
}
