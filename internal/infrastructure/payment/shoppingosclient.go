package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shoppingos/sospay/internal/application/payment/paymentgateway"
	"github.com/shoppingos/sospay/internal/shared/constants"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

const (
	// Maximum response body size accepted from the payment service (64KB)
	maxResponseSize = 64 << 10
)

var _ paymentgateway.Gateway = (*ShoppingOSClient)(nil)

type ClientConfig struct {
	AppID           string
	AppSecret       string
	InitiateTimeout time.Duration
	ReportTimeout   time.Duration
}

// ShoppingOSClient talks to the ShoppingOS payment service over form-encoded HTTP.
// Initiation requests POST a payment_details[...] form; callback reports use PUT.
type ShoppingOSClient struct {
	endpoints      *Endpoints
	appID          string
	appSecret      string
	initiateClient *http.Client
	reportClient   *http.Client
	logger         logger.Interface
}

func NewShoppingOSClient(endpoints *Endpoints, cfg ClientConfig, log logger.Interface) *ShoppingOSClient {
	return &ShoppingOSClient{
		endpoints:      endpoints,
		appID:          cfg.AppID,
		appSecret:      cfg.AppSecret,
		initiateClient: &http.Client{Timeout: cfg.InitiateTimeout},
		reportClient:   &http.Client{Timeout: cfg.ReportTimeout},
		logger:         log,
	}
}

func (c *ShoppingOSClient) InitiatePayment(ctx context.Context, req paymentgateway.PaymentRequest) (*paymentgateway.Response, error) {
	form := paymentDetails(map[string]string{
		"environment":  string(req.Environment),
		"order_id":     fmt.Sprint(req.OrderID),
		"total":        req.Total.StringFixed(2),
		"currency":     req.Currency,
		"callback_url": req.CallbackURL,
		"user_agent":   req.UserAgent,
		"psu_checksum": req.PSUChecksum,
		"bank_code":    req.BankCode,
		"version":      req.Version,
	})

	return c.send(ctx, c.initiateClient, http.MethodPost, paymentgateway.EndpointToken, form)
}

func (c *ShoppingOSClient) InitiateRefund(ctx context.Context, req paymentgateway.RefundRequest) (*paymentgateway.Response, error) {
	form := paymentDetails(map[string]string{
		"environment":  string(req.Environment),
		"order_id":     fmt.Sprint(req.OrderID),
		"total":        req.Total.StringFixed(2),
		"currency":     req.Currency,
		"psu_email":    req.PSUEmail,
		"callback_url": req.CallbackURL,
		"version":      req.Version,
	})

	return c.send(ctx, c.initiateClient, http.MethodPost, paymentgateway.EndpointRefund, form)
}

func (c *ShoppingOSClient) ReportSuccess(ctx context.Context, req paymentgateway.SuccessReport) (*paymentgateway.Response, error) {
	form := url.Values{}
	form.Set("environment", string(req.Environment))
	form.Set("token_id", utils.SanitizeText(req.TokenID))
	form.Set("request_id", utils.SanitizeText(req.RequestID))
	form.Set("signature", utils.SanitizeText(req.Signature))
	form.Set("refund_flag", formBool(req.RefundFlag))

	return c.send(ctx, c.reportClient, http.MethodPut, paymentgateway.EndpointToken, form)
}

func (c *ShoppingOSClient) ReportFail(ctx context.Context, req paymentgateway.FailReport) (*paymentgateway.Response, error) {
	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = paymentgateway.EndpointFail
	}

	form := url.Values{}
	form.Set("environment", string(req.Environment))
	form.Set("request_id", utils.SanitizeText(req.RequestID))
	form.Set("message", utils.SanitizeText(req.Message))
	form.Set("refund_flag", formBool(req.RefundFlag))

	return c.send(ctx, c.reportClient, http.MethodPut, endpoint, form)
}

// send returns ErrTransport when the service is unreachable or answers with
// an empty body. A body that is not JSON yields an empty Response, which
// callers treat as an unrecognized answer.
func (c *ShoppingOSClient) send(ctx context.Context, client *http.Client, method string, name paymentgateway.EndpointName, form url.Values) (*paymentgateway.Response, error) {
	endpoint, err := c.endpoints.Endpoint(name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", constants.ContentTypeForm)
	req.Header.Set(constants.HeaderAppID, c.appID)
	req.Header.Set(constants.HeaderAppSecret, c.appSecret)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		c.logger.Warnw("payment service request failed",
			"endpoint", name,
			"method", method,
			"latency", time.Since(start),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", paymentgateway.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", paymentgateway.ErrTransport, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body (status %d)", paymentgateway.ErrTransport, resp.StatusCode)
	}

	var parsed paymentgateway.Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warnw("payment service returned a non-JSON body",
			"endpoint", name,
			"status", resp.StatusCode,
			"error", err,
		)
		return &paymentgateway.Response{}, nil
	}

	c.logger.Debugw("payment service responded",
		"endpoint", name,
		"method", method,
		"status", resp.StatusCode,
		"code", parsed.Code,
		"latency", time.Since(start),
	)

	return &parsed, nil
}

func paymentDetails(fields map[string]string) url.Values {
	form := url.Values{}
	for k, v := range fields {
		form.Set("payment_details["+k+"]", v)
	}
	return form
}

func formBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
