package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppingos/sospay/internal/application/common/dto"
	"github.com/shoppingos/sospay/internal/interfaces/http/handlers/testutil"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

func TestStatHandler_Payments(t *testing.T) {
	h := NewStatHandler(&mockStats{fn: func(context.Context) (*dto.PaymentStatisticsDTO, error) {
		return &dto.PaymentStatisticsDTO{TotalOrders: 3, FinishedOrders: 2, ServiceFee: "1.00"}, nil
	}}, logger.NewNop())

	c, w := testutil.NewTestContext(http.MethodGet, "/admin/stats", nil)
	h.Payments(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var stats dto.PaymentStatisticsDTO
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, "1.00", stats.ServiceFee)
}

func TestStatHandler_Payments_Error(t *testing.T) {
	h := NewStatHandler(&mockStats{fn: func(context.Context) (*dto.PaymentStatisticsDTO, error) {
		return nil, stderrors.New("db down")
	}}, logger.NewNop())

	c, w := testutil.NewTestContext(http.MethodGet, "/admin/stats", nil)
	h.Payments(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthHandler_Check(t *testing.T) {
	c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
	NewHealthHandler("1.0.0").Check(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.0.0"}`, w.Body.String())
}
