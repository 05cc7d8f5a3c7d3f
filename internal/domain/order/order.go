package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shoppingos/sospay/internal/shared/biztime"
)

// PaymentMethodShoppingOS identifies orders paid through the bank payment gateway.
const PaymentMethodShoppingOS = "shopping_os"

type Order struct {
	id                uint
	total             decimal.Decimal
	currency          string
	status            Status
	billingEmail      string
	customerUserAgent string
	paymentMethod     string
	stockReduced      bool
	paidAt            *time.Time
	version           int
	createdAt         time.Time
	updatedAt         time.Time
}

// NewOrder creates a pending order awaiting bank payment.
func NewOrder(total decimal.Decimal, currency, billingEmail, userAgent string) (*Order, error) {
	if !total.IsPositive() {
		return nil, fmt.Errorf("order total must be positive")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, fmt.Errorf("currency must be a 3-letter code")
	}
	if strings.TrimSpace(billingEmail) == "" {
		return nil, fmt.Errorf("billing email is required")
	}

	now := biztime.NowUTC()
	return &Order{
		total:             total.Round(2),
		currency:          currency,
		status:            StatusPending,
		billingEmail:      strings.TrimSpace(billingEmail),
		customerUserAgent: userAgent,
		paymentMethod:     PaymentMethodShoppingOS,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// ReconstructParams carries persisted state back into the aggregate.
type ReconstructParams struct {
	ID                uint
	Total             decimal.Decimal
	Currency          string
	Status            Status
	BillingEmail      string
	CustomerUserAgent string
	PaymentMethod     string
	StockReduced      bool
	PaidAt            *time.Time
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func ReconstructOrder(p ReconstructParams) (*Order, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("order ID cannot be zero")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid order status: %s", p.Status)
	}

	return &Order{
		id:                p.ID,
		total:             p.Total,
		currency:          p.Currency,
		status:            p.Status,
		billingEmail:      p.BillingEmail,
		customerUserAgent: p.CustomerUserAgent,
		paymentMethod:     p.PaymentMethod,
		stockReduced:      p.StockReduced,
		paidAt:            p.PaidAt,
		version:           p.Version,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
	}, nil
}

func (o *Order) ID() uint {
	return o.id
}

func (o *Order) Total() decimal.Decimal {
	return o.total
}

func (o *Order) Currency() string {
	return o.currency
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) BillingEmail() string {
	return o.billingEmail
}

func (o *Order) CustomerUserAgent() string {
	return o.customerUserAgent
}

func (o *Order) PaymentMethod() string {
	return o.paymentMethod
}

func (o *Order) StockReduced() bool {
	return o.stockReduced
}

func (o *Order) PaidAt() *time.Time {
	return o.paidAt
}

func (o *Order) Version() int {
	return o.version
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) SetID(id uint) {
	o.id = id
}

func (o *Order) IsPaid() bool {
	return o.status.IsPaid()
}

// MarkFailed records a declined or errored payment attempt. Paid orders are left alone.
func (o *Order) MarkFailed() error {
	if o.IsPaid() {
		return fmt.Errorf("cannot fail order %d with status %s", o.id, o.status)
	}
	if o.status == StatusFailed {
		return nil
	}
	o.touch(StatusFailed)
	return nil
}

// CompletePayment moves the order to processing and stamps the payment time.
// It is a no-op for an order that is already paid.
func (o *Order) CompletePayment() bool {
	if o.IsPaid() {
		return false
	}
	now := biztime.NowUTC()
	o.paidAt = &now
	o.touch(StatusProcessing)
	return true
}

// ReduceStock flags the order's line items as taken from stock; reports false if already done.
func (o *Order) ReduceStock() bool {
	if o.stockReduced {
		return false
	}
	o.stockReduced = true
	o.updatedAt = biztime.NowUTC()
	return true
}

func (o *Order) touch(s Status) {
	o.status = s
	o.updatedAt = biztime.NowUTC()
	o.version++
}
