package callbacklog

import (
	"context"
	"time"

	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/shared/biztime"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

// DefaultRetentionDays applies when the configured retention is not positive.
const DefaultRetentionDays = 90

// Pruner deletes audit records older than the retention window.
type Pruner struct {
	repo      order.CallbackEventRepository
	retention time.Duration
	logger    logger.Interface
}

func NewPruner(repo order.CallbackEventRepository, retentionDays int, logger logger.Interface) *Pruner {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Pruner{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger,
	}
}

func (p *Pruner) Execute(ctx context.Context) (int, error) {
	removed, err := p.repo.DeleteReceivedBefore(ctx, biztime.NowUTC().Add(-p.retention))
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}
