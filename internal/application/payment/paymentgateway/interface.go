package paymentgateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrTransport means the payment service could not be reached or sent no body.
// Application-level failures come back as a Response with CodeError instead.
var ErrTransport = errors.New("payment service response not received")

// Gateway is the remote bank payment service.
type Gateway interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (*Response, error)
	InitiateRefund(ctx context.Context, req RefundRequest) (*Response, error)
	ReportSuccess(ctx context.Context, req SuccessReport) (*Response, error)
	ReportFail(ctx context.Context, req FailReport) (*Response, error)
}

type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

func EnvironmentFor(testMode bool) Environment {
	if testMode {
		return EnvironmentSandbox
	}
	return EnvironmentProduction
}

// EndpointName keys the immutable endpoint registry.
type EndpointName string

const (
	EndpointToken  EndpointName = "token"
	EndpointFail   EndpointName = "fail"
	EndpointRefund EndpointName = "refund"
)

func (n EndpointName) IsValid() bool {
	return n == EndpointToken || n == EndpointFail || n == EndpointRefund
}

type ResponseCode string

const (
	CodeReceived ResponseCode = "received"
	CodeSuccess  ResponseCode = "success"
	CodeError    ResponseCode = "error"
)

// Response is the JSON body every endpoint answers with. Unknown or missing
// codes are left as they came so callers can treat them as unrecognized.
type Response struct {
	Code        ResponseCode `json:"code"`
	Message     string       `json:"message"`
	RedirectURL string       `json:"redirect_url"`
	Status      string       `json:"status"`
	Error       string       `json:"error"`
}

type PaymentRequest struct {
	Environment Environment
	OrderID     uint
	Total       decimal.Decimal
	Currency    string
	CallbackURL string
	UserAgent   string
	PSUChecksum string
	BankCode    string
	Version     string
}

type RefundRequest struct {
	Environment Environment
	OrderID     uint
	Total       decimal.Decimal
	Currency    string
	PSUEmail    string
	CallbackURL string
	Version     string
}

// SuccessReport confirms a bank callback back to the service.
type SuccessReport struct {
	Environment Environment
	TokenID     string
	RequestID   string
	Signature   string
	RefundFlag  bool
}

// FailReport tells the service a callback carried a failure. Endpoint picks
// which registry entry receives it.
type FailReport struct {
	Environment Environment
	RequestID   string
	Message     string
	RefundFlag  bool
	Endpoint    EndpointName
}

// Settings are the per-deployment values every request to the service carries.
type Settings struct {
	TestMode bool
	// Currency is the store currency sent with refunds.
	Currency string
	// Version is the plugin version in wire form, e.g. "1.0.0".
	Version             string
	PaymentFailEndpoint EndpointName
	RefundFailEndpoint  EndpointName
}

func (s Settings) Environment() Environment {
	return EnvironmentFor(s.TestMode)
}

func (s Settings) paymentFail() EndpointName {
	if s.PaymentFailEndpoint.IsValid() {
		return s.PaymentFailEndpoint
	}
	return EndpointFail
}

func (s Settings) refundFail() EndpointName {
	if s.RefundFailEndpoint.IsValid() {
		return s.RefundFailEndpoint
	}
	return EndpointToken
}

// FailEndpoint picks the registry entry that receives a fail report.
func (s Settings) FailEndpoint(refund bool) EndpointName {
	if refund {
		return s.refundFail()
	}
	return s.paymentFail()
}
