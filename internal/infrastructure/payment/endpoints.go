package payment

import (
	"fmt"
	"strings"

	"github.com/shoppingos/sospay/internal/application/payment/paymentgateway"
)

// Endpoints is the immutable registry of payment service URLs, built once at startup.
type Endpoints struct {
	urls map[paymentgateway.EndpointName]string
}

// NewEndpoints builds <base>/api/<version>/payments/{token,fail,refund}.
func NewEndpoints(baseURL, apiVersion string) *Endpoints {
	root := strings.TrimRight(baseURL, "/") + "/api/" + strings.Trim(apiVersion, "/")

	return &Endpoints{
		urls: map[paymentgateway.EndpointName]string{
			paymentgateway.EndpointToken:  root + "/payments/token",
			paymentgateway.EndpointFail:   root + "/payments/fail",
			paymentgateway.EndpointRefund: root + "/payments/refund",
		},
	}
}

// Endpoint resolves name or fails for names outside the registry.
func (e *Endpoints) Endpoint(name paymentgateway.EndpointName) (string, error) {
	u, ok := e.urls[name]
	if !ok {
		return "", fmt.Errorf("endpoint %q doesn't exist", name)
	}
	return u, nil
}
