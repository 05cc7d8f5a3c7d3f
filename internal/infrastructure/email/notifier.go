package email

import (
	"fmt"

	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/domain/shared/events"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

type subscriber interface {
	Subscribe(eventType string, handler events.HandlerFunc) error
}

// RefundNotifier mails refund outcomes as they are reconciled.
type RefundNotifier struct {
	service *SMTPEmailService
	logger  logger.Interface
}

func NewRefundNotifier(service *SMTPEmailService, log logger.Interface) *RefundNotifier {
	return &RefundNotifier{service: service, logger: log.Named("refund_notifier")}
}

func (n *RefundNotifier) Register(d subscriber) error {
	return d.Subscribe(order.EventRefundReconciled, n.Handle)
}

func (n *RefundNotifier) Handle(event events.DomainEvent) error {
	ev, ok := event.(order.RefundReconciledEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	if err := n.service.SendRefundReconciled(ev); err != nil {
		return err
	}

	if ev.InitiatorEmail != "" {
		n.logger.Infow("refund notification sent",
			"order_id", ev.OrderID,
			"refund_id", ev.RefundID,
			"succeeded", ev.Succeeded)
	}
	return nil
}
