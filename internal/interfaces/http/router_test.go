package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shoppingos/sospay/internal/infrastructure/config"
	"github.com/shoppingos/sospay/internal/infrastructure/permission"
	"github.com/shoppingos/sospay/internal/infrastructure/persistence/models"
	sharedConfig "github.com/shoppingos/sospay/internal/shared/config"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	container *Container
	token     string
	gateway   *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"received","redirect_url":"https://bank.example/auth"}`))
	}))
	t.Cleanup(gateway.Close)

	cfg := &config.Config{
		Server: sharedConfig.ServerConfig{BaseURL: "https://shop.example/"},
		Gateway: sharedConfig.GatewayConfig{
			BaseURL:                gateway.URL,
			APIVersion:             "v1",
			AppID:                  "app",
			AppSecret:              "secret",
			TestMode:               true,
			Currency:               "GBP",
			PluginVersion:          "1.0.0",
			InitiateTimeoutSeconds: 5,
			ReportTimeoutSeconds:   5,
		},
		Session: sharedConfig.SessionConfig{CookieName: "sos_session", TTLMinutes: 60},
		Auth:    sharedConfig.AuthConfig{JWT: sharedConfig.JWTConfig{Secret: "router-test", AccessExpMinutes: 10}},
		Lock:    sharedConfig.LockConfig{TTLSeconds: 30, WaitSeconds: 1},
	}

	c, err := NewContainer(db, nil, cfg, logger.NewNop())
	require.NoError(t, err)
	c.SetupRoutes()
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })

	token, err := c.infra.jwt.Generate("admin@shop.example", permission.RoleAdmin)
	require.NoError(t, err)

	return &testServer{container: c, token: token, gateway: gateway}
}

func (s *testServer) do(t *testing.T, method, path, contentType, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	s.container.Engine().ServeHTTP(w, req)
	return w
}

func (s *testServer) admin(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.container.Engine().ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Empty(t, w.Result().Cookies(), "health checks do not open sessions")
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/admin/orders", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/admin/stats", "", "").Code)
}

func TestRouter_UnknownWebhook(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/?wc-api=somebody-else", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_PaymentCallbackLandsOnCheckout(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/?wc-api=shoppingos-payment&order_id=9999", "", "")
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/checkout", loc.Path)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = s.do(t, http.MethodGet, loc.Path, "", "", cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Order not found, please try again.")

	w = s.do(t, http.MethodGet, "/checkout/order-received/9999/", "", "", cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"messages":[]`)
}

func TestRouter_CheckoutFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.admin(t, http.MethodPost, "/admin/orders", `{"total":"24.99","currency":"GBP","billing_email":"shopper@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotZero(t, created.Data.ID)
	orderPath := "/checkout/orders/" + strconv.FormatUint(uint64(created.Data.ID), 10)

	t.Run("pay without a bank fails with a notice", func(t *testing.T) {
		w := s.do(t, http.MethodPost, orderPath+"/pay", "", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Result   string `json:"result"`
			Messages []struct {
				Message string `json:"message"`
			} `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "failure", resp.Result)
		require.Len(t, resp.Messages, 1)
	})

	form := url.Values{"bank_code": {"ob-monzo"}}.Encode()
	w = s.do(t, http.MethodPost, orderPath+"/bank", "application/x-www-form-urlencoded", form)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, orderPath+"/pay", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"result":"success","redirect":"https://bank.example/auth"}`, w.Body.String())

	w = s.admin(t, http.MethodGet, "/admin/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}
