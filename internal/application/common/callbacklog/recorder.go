// Package callbacklog writes the audit trail of webhook deliveries.
package callbacklog

import (
	"context"
	"net/url"

	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/shared/biztime"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

// Recorder never fails the webhook it records: storage errors are logged.
type Recorder struct {
	repo   order.CallbackEventRepository
	logger logger.Interface
}

func NewRecorder(repo order.CallbackEventRepository, logger logger.Interface) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

type Entry struct {
	Kind     order.CallbackKind
	OrderID  uint
	RefundID uint
	Query    url.Values
	Outcome  string
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.repo == nil {
		return
	}

	params := make(map[string]string, len(e.Query))
	for k := range e.Query {
		params[utils.SanitizeText(k)] = utils.SanitizeText(e.Query.Get(k))
	}

	event := &order.CallbackEvent{
		Kind:       e.Kind,
		OrderID:    e.OrderID,
		RefundID:   e.RefundID,
		RequestID:  params["request-id"],
		Outcome:    e.Outcome,
		Params:     params,
		ReceivedAt: biztime.NowUTC(),
	}
	if err := r.repo.Record(ctx, event); err != nil {
		r.logger.Errorw("failed to record callback event",
			"kind", e.Kind,
			"order_id", e.OrderID,
			"outcome", e.Outcome,
			"error", err,
		)
	}
}
