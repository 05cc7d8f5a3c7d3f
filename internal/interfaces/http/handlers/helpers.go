package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shoppingos/sospay/internal/domain/session"
	"github.com/shoppingos/sospay/internal/interfaces/http/middleware"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

// parseOrderID reads the :id path parameter and writes a 400 when it is not
// a positive integer.
func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid order id")
		return 0, false
	}
	return uint(id), true
}

func requireSession(c *gin.Context) (session.Session, bool) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusInternalServerError, "session unavailable")
		return nil, false
	}
	return sess, true
}
