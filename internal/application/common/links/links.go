// Package links builds the shop URLs handed to shoppers, merchants and the payment service.
package links

import (
	"fmt"
	"strings"

	"github.com/shoppingos/sospay/internal/shared/constants"
)

type Builder struct {
	siteURL string
}

func NewBuilder(siteURL string) *Builder {
	return &Builder{siteURL: strings.TrimRight(siteURL, "/")}
}

// PaymentCallback is where the bank returns the shopper after a payment attempt.
func (b *Builder) PaymentCallback(orderID uint) string {
	return fmt.Sprintf("%s/?wc-api=%s&order_id=%d", b.siteURL, constants.WebhookPayment, orderID)
}

// RefundCallback is where the bank returns the merchant after a refund attempt.
func (b *Builder) RefundCallback(refundID, orderID uint) string {
	return fmt.Sprintf("%s/?wc-api=%s&refund_id=%d&order_id=%d", b.siteURL, constants.WebhookRefund, refundID, orderID)
}

func (b *Builder) Checkout() string {
	return b.siteURL + "/checkout"
}

func (b *Builder) OrderReceived(orderID uint) string {
	return fmt.Sprintf("%s/checkout/order-received/%d/", b.siteURL, orderID)
}

func (b *Builder) AdminOrderEdit(orderID uint) string {
	return fmt.Sprintf("%s/admin/orders/%d", b.siteURL, orderID)
}

func (b *Builder) AdminOrderList() string {
	return b.siteURL + "/admin/orders"
}
