package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ppob-backend/internal/data/entity"
	"ppob-backend/internal/data/repository"
	"ppob-backend/internal/dto/response"
	"ppob-backend/pkg/cache"
	"ppob-backend/pkg/digiflazz"
	"ppob-backend/pkg/events"
)

type WebhookService interface {
	// Reconcile applies a provider callback to the transaction with the same
	// ref id. It never creates a transaction.
	Reconcile(ctx context.Context, body []byte, signature string) (*response.WebhookResponse, error)
}

type webhookService struct {
	trxRepo  repository.TransactionRepository
	dedup    cache.Deduper
	notifier *statusNotifier
	secret   string
	log      *zap.Logger
}

func NewWebhookService(
	trxRepo repository.TransactionRepository,
	dedup cache.Deduper,
	notifier *statusNotifier,
	secret string,
	log *zap.Logger,
) WebhookService {
	return &webhookService{
		trxRepo:  trxRepo,
		dedup:    dedup,
		notifier: notifier,
		secret:   secret,
		log:      log.With(zap.String("service", "webhook")),
	}
}

func (s *webhookService) Reconcile(ctx context.Context, body []byte, signature string) (*response.WebhookResponse, error) {
	// 1. Signature hanya dicek kalau secret di-set
	if s.secret != "" && !digiflazz.VerifyWebhookSignature(s.secret, body, signature) {
		s.log.Warn("Webhook signature mismatch")
		return nil, newError(ErrUnauthorized, "invalid webhook signature")
	}

	// 2. Parse payload (wrapped atau flat)
	data, err := digiflazz.ParseWebhook(body)
	if err != nil {
		s.log.Warn("Webhook payload is not valid JSON", zap.Error(err))
		return nil, newError(ErrValidation, "invalid webhook payload")
	}
	refID := strings.TrimSpace(data.RefID)
	if refID == "" {
		s.log.Warn("Webhook without ref_id")
		return nil, validationError(map[string]string{"ref_id": "This field is required"})
	}
	status := entity.NormalizeStatus(data.Status, entity.TransactionStatusUnknown)

	// 3. Body yang sama persis cukup diproses sekali
	key := dedupKey(body)
	dup, err := s.dedup.Seen(ctx, key, cache.TTLDedup)
	if err != nil {
		s.log.Warn("Webhook dedup check failed", zap.Error(err), zap.String("ref_id", refID))
	}
	if dup {
		s.log.Info("Duplicate webhook acknowledged", zap.String("ref_id", refID))
		return &response.WebhookResponse{RefID: refID, Status: status}, nil
	}

	resp, err := s.apply(ctx, refID, status, data, body)
	if err != nil {
		// provider akan retry, jadi marker dedup dihapus lagi
		if ferr := s.dedup.Forget(ctx, key); ferr != nil {
			s.log.Warn("Failed to drop dedup marker", zap.Error(ferr), zap.String("ref_id", refID))
		}
		return nil, err
	}
	return resp, nil
}

func (s *webhookService) apply(ctx context.Context, refID, status string, data *digiflazz.OrderData, body []byte) (*response.WebhookResponse, error) {
	existing, err := s.trxRepo.FindByRefID(ctx, refID)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if existing == nil {
		s.log.Warn("Webhook for unknown ref_id", zap.String("ref_id", refID))
		return nil, newError(ErrNotFound, "transaction %s not found", refID)
	}

	trx, applied, err := s.trxRepo.ApplyWebhook(ctx, refID, repository.ProviderResult{
		Status:  status,
		SN:      strings.TrimSpace(data.SN),
		Message: data.Message,
		Raw:     string(body),
	})
	if err != nil {
		s.log.Error("Failed to apply webhook", zap.Error(err), zap.String("ref_id", refID))
		return nil, fmt.Errorf("apply webhook: %w", err)
	}

	if !applied {
		// status final tidak boleh mundur ke PENDING
		s.log.Info("Stale webhook ignored",
			zap.String("ref_id", refID),
			zap.String("stored_status", existing.Status),
			zap.String("webhook_status", status))
		return &response.WebhookResponse{RefID: refID, Status: existing.Status}, nil
	}

	s.notifier.notify(ctx, events.EventTransactionUpdated, sourceWebhook, trx)

	s.log.Info("Webhook applied",
		zap.String("ref_id", refID),
		zap.String("from", existing.Status),
		zap.String("to", trx.Status),
		zap.String("sn", trx.SN))

	return &response.WebhookResponse{RefID: refID, Status: trx.Status, Applied: true}, nil
}

func dedupKey(body []byte) string {
	sum := sha256.Sum256(body)
	return "webhook:" + hex.EncodeToString(sum[:])
}
