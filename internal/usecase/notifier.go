package usecase

import (
	"context"

	"go.uber.org/zap"

	"ppob-backend/internal/data/entity"
	"ppob-backend/pkg/cache"
	"ppob-backend/pkg/events"
)

// statusNotifier refreshes the status cache and publishes an event after a
// transaction write. Failures are logged only; the write already happened.
type statusNotifier struct {
	cache  cache.StatusCache
	events events.Publisher
	log    *zap.Logger
}

func newStatusNotifier(c cache.StatusCache, p events.Publisher, log *zap.Logger) *statusNotifier {
	return &statusNotifier{cache: c, events: p, log: log.With(zap.String("component", "notifier"))}
}

func (n *statusNotifier) notify(ctx context.Context, eventType, source string, trx *entity.Transaction) {
	err := n.cache.SetStatus(ctx, cache.Status{
		RefID:     trx.RefID,
		UserID:    trx.UserID.String(),
		Status:    trx.Status,
		SN:        trx.SN,
		UpdatedAt: trx.UpdatedAt,
	})
	if err != nil {
		n.log.Warn("Failed to cache transaction status",
			zap.String("ref_id", trx.RefID),
			zap.Error(err))
	}

	err = n.events.Publish(ctx, eventType, events.TransactionPayload{
		TransactionID: trx.ID.String(),
		RefID:         trx.RefID,
		UserID:        trx.UserID.String(),
		BuyerSkuCode:  trx.BuyerSkuCode,
		CustomerNo:    trx.CustomerNo,
		Status:        trx.Status,
		SN:            trx.SN,
		Source:        source,
		UpdatedAt:     trx.UpdatedAt,
	})
	if err != nil {
		n.log.Warn("Failed to publish transaction event",
			zap.String("ref_id", trx.RefID),
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

// forget drops the cached status of a deleted transaction.
func (n *statusNotifier) forget(ctx context.Context, refID string) {
	if err := n.cache.DeleteStatus(ctx, refID); err != nil {
		n.log.Warn("Failed to drop cached status", zap.String("ref_id", refID), zap.Error(err))
	}
}
