package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ppob-backend/internal/data/entity"
	"ppob-backend/internal/data/repository"
	"ppob-backend/internal/dto/request"
	"ppob-backend/internal/dto/response"
	"ppob-backend/pkg/cache"
	"ppob-backend/pkg/digiflazz"
	"ppob-backend/pkg/events"
	"ppob-backend/pkg/utils"
)

// Sources recorded on transaction events.
const (
	sourceOrder   = "order"
	sourceWebhook = "webhook"
	sourceAdmin   = "admin"
)

type TransactionService interface {
	// Order places a prepaid order with the provider on behalf of the caller.
	Order(ctx context.Context, caller utils.Identity, req *request.OrderRequest) (*response.OrderResponse, error)
	List(ctx context.Context, caller utils.Identity, req *request.TransactionListRequest) (*response.PaginatedResponse[response.TransactionResponse], error)
	Get(ctx context.Context, caller utils.Identity, transactionID string) (*response.TransactionResponse, error)
	StatusByRef(ctx context.Context, caller utils.Identity, refID string) (*response.TransactionStatusResponse, error)

	// Admin
	Create(ctx context.Context, req *request.CreateTransactionRequest) (*response.TransactionResponse, error)
	UpdateStatus(ctx context.Context, transactionID string, req *request.UpdateTransactionStatusRequest) (*response.TransactionResponse, error)
	Delete(ctx context.Context, transactionID string) error
}

type transactionService struct {
	repo        *repository.Repository
	provider    ProviderClient
	cache       cache.StatusCache
	notifier    *statusNotifier
	failOnError bool
	now         func() time.Time
	log         *zap.Logger
}

func NewTransactionService(
	repo *repository.Repository,
	provider ProviderClient,
	statusCache cache.StatusCache,
	notifier *statusNotifier,
	failOnError bool,
	log *zap.Logger,
) TransactionService {
	return &transactionService{
		repo:        repo,
		provider:    provider,
		cache:       statusCache,
		notifier:    notifier,
		failOnError: failOnError,
		now:         time.Now,
		log:         log.With(zap.String("service", "transaction")),
	}
}

func (s *transactionService) Order(ctx context.Context, caller utils.Identity, req *request.OrderRequest) (*response.OrderResponse, error) {
	req.BuyerSkuCode = strings.TrimSpace(req.BuyerSkuCode)
	req.CustomerNo = strings.TrimSpace(req.CustomerNo)
	if err := validate(req); err != nil {
		s.log.Warn("Order validation failed", zap.Error(err))
		return nil, err
	}
	if req.ProductID == "" && req.BuyerSkuCode == "" {
		return nil, validationError(map[string]string{"product_id": "product_id or buyer_sku_code is required"})
	}

	// 1. Reference id unik per order
	now := s.now()
	refID := utils.GenerateRefID(now)

	// 2. Resolve product
	product, err := s.resolveProduct(ctx, req)
	if err != nil {
		return nil, err
	}

	// 3. Simpan transaksi PENDING sebelum memanggil provider
	trx := &entity.Transaction{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		RefID:        refID,
		UserID:       caller.UserID,
		ProductID:    product.ID,
		BuyerSkuCode: product.IDProvider,
		CustomerNo:   req.CustomerNo,
		Status:       entity.TransactionStatusPending,
	}
	if err := s.repo.Transaction.Create(ctx, trx); err != nil {
		s.log.Error("Failed to create transaction",
			zap.Error(err),
			zap.String("ref_id", refID),
			zap.String("user_id", caller.UserID.String()))
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	s.notifier.notify(ctx, events.EventTransactionCreated, sourceOrder, trx)

	s.log.Info("Order created",
		zap.String("ref_id", refID),
		zap.String("buyer_sku_code", trx.BuyerSkuCode),
		zap.String("user_id", caller.UserID.String()))

	// 4. Kirim order ke provider
	result, err := s.provider.PlaceOrder(ctx, digiflazz.OrderRequest{
		BuyerSkuCode: trx.BuyerSkuCode,
		CustomerNo:   trx.CustomerNo,
		RefID:        refID,
	})
	if err != nil {
		return nil, s.handleProviderFailure(ctx, trx, err)
	}

	// 5. Update transaksi dengan hasil dari provider
	updated, applied, err := s.repo.Transaction.UpdateProviderResult(ctx, trx.ID, repository.ProviderResult{
		Status:  entity.NormalizeStatus(result.Data.Status, entity.TransactionStatusPending),
		SN:      result.Data.SN,
		Message: result.Data.Message,
		Raw:     string(result.Raw),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "transaction %s was deleted during the order", refID)
		}
		s.log.Error("Failed to store provider result",
			zap.Error(err),
			zap.String("ref_id", refID))
		return nil, fmt.Errorf("store provider result: %w", err)
	}
	if applied {
		s.notifier.notify(ctx, events.EventTransactionUpdated, sourceOrder, updated)
	} else {
		s.log.Info("Provider reply older than stored status, kept stored",
			zap.String("ref_id", refID),
			zap.String("stored", updated.Status),
			zap.String("reply", result.Data.Status))
	}

	s.log.Info("Order sent to provider",
		zap.String("ref_id", refID),
		zap.String("status", updated.Status),
		zap.String("rc", result.Data.RC))

	// 6. Return transaksi + balasan provider apa adanya
	resp := &response.OrderResponse{Transaction: response.TransactionToResponse(updated)}
	if json.Valid(result.Raw) {
		resp.Provider = json.RawMessage(result.Raw)
	}
	return resp, nil
}

func (s *transactionService) resolveProduct(ctx context.Context, req *request.OrderRequest) (*entity.Product, error) {
	var (
		product *entity.Product
		err     error
	)
	if req.ProductID != "" {
		product, err = s.repo.Product.FindByID(ctx, uuid.MustParse(req.ProductID))
	} else {
		product, err = s.repo.Product.FindByProviderCode(ctx, req.BuyerSkuCode)
	}
	if err != nil {
		s.log.Error("Failed to resolve product", zap.Error(err))
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, newError(ErrNotFound, "product not found")
	}
	return product, nil
}

// handleProviderFailure marks the order FAILED when compensation is enabled,
// otherwise the row stays PENDING for the webhook to settle.
func (s *transactionService) handleProviderFailure(ctx context.Context, trx *entity.Transaction, cause error) error {
	s.log.Error("Provider order failed",
		zap.Error(cause),
		zap.String("ref_id", trx.RefID),
		zap.Bool("compensate", s.failOnError))

	if s.failOnError {
		failed, applied, err := s.repo.Transaction.MarkFailed(ctx, trx.ID, cause.Error())
		switch {
		case err != nil:
			s.log.Error("Failed to mark transaction FAILED", zap.Error(err), zap.String("ref_id", trx.RefID))
		case applied:
			s.notifier.notify(ctx, events.EventTransactionUpdated, sourceOrder, failed)
		default:
			// webhook sudah menyelesaikan order ini
			s.log.Info("Transaction already settled, not marked FAILED",
				zap.String("ref_id", trx.RefID),
				zap.String("status", failed.Status))
		}
	}

	return &Error{Kind: ErrUpstream, Message: "provider request failed"}
}

func (s *transactionService) List(ctx context.Context, caller utils.Identity, req *request.TransactionListRequest) (*response.PaginatedResponse[response.TransactionResponse], error) {
	req.Page, req.PerPage = utils.NormalizePage(req.Page, req.PerPage)

	filter := repository.TransactionFilter{
		Status: strings.ToUpper(strings.TrimSpace(req.Status)),
	}
	// user biasa hanya melihat transaksinya sendiri
	if !caller.IsAdmin() {
		filter.UserID = &caller.UserID
	}

	list, err := s.repo.Transaction.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get transactions", zap.Error(err))
		return nil, fmt.Errorf("get transactions: %w", err)
	}

	total, err := s.repo.Transaction.Count(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count transactions", zap.Error(err))
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	out := make([]response.TransactionResponse, len(list))
	for i, d := range list {
		out[i] = response.TransactionDetailToResponse(d)
	}

	return response.NewPaginatedResponse(out, req.Page, req.PerPage, total), nil
}

func (s *transactionService) Get(ctx context.Context, caller utils.Identity, transactionID string) (*response.TransactionResponse, error) {
	id, err := parseID("transaction", transactionID)
	if err != nil {
		return nil, err
	}

	detail, err := s.repo.Transaction.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get transaction", zap.Error(err), zap.String("transaction_id", transactionID))
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	// transaksi milik user lain diperlakukan seperti tidak ada
	if detail == nil || (!caller.IsAdmin() && detail.UserID != caller.UserID) {
		return nil, newError(ErrNotFound, "transaction not found")
	}

	resp := response.TransactionDetailToResponse(detail)
	return &resp, nil
}

func (s *transactionService) StatusByRef(ctx context.Context, caller utils.Identity, refID string) (*response.TransactionStatusResponse, error) {
	refID = strings.TrimSpace(refID)
	if refID == "" {
		return nil, newError(ErrValidation, "ref_id is required")
	}

	cached, err := s.cache.GetStatus(ctx, refID)
	if err != nil {
		s.log.Warn("Status cache read failed", zap.Error(err), zap.String("ref_id", refID))
	}
	if cached != nil && (caller.IsAdmin() || cached.UserID == caller.UserID.String()) {
		return &response.TransactionStatusResponse{
			RefID:     cached.RefID,
			Status:    cached.Status,
			SN:        cached.SN,
			UpdatedAt: cached.UpdatedAt,
			Cached:    true,
		}, nil
	}

	trx, err := s.repo.Transaction.FindByRefID(ctx, refID)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if trx == nil || (!caller.IsAdmin() && trx.UserID != caller.UserID) {
		return nil, newError(ErrNotFound, "transaction not found")
	}

	if err := s.cache.SetStatus(ctx, cache.Status{
		RefID:     trx.RefID,
		UserID:    trx.UserID.String(),
		Status:    trx.Status,
		SN:        trx.SN,
		UpdatedAt: trx.UpdatedAt,
	}); err != nil {
		s.log.Warn("Failed to cache transaction status", zap.Error(err), zap.String("ref_id", refID))
	}

	return &response.TransactionStatusResponse{
		RefID:     trx.RefID,
		Status:    trx.Status,
		SN:        trx.SN,
		UpdatedAt: trx.UpdatedAt,
	}, nil
}

func (s *transactionService) Create(ctx context.Context, req *request.CreateTransactionRequest) (*response.TransactionResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	userID := uuid.MustParse(req.UserID)
	productID := uuid.MustParse(req.ProductID)

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, newError(ErrNotFound, "user not found")
	}

	product, err := s.repo.Product.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, newError(ErrNotFound, "product not found")
	}

	now := s.now()
	trx := &entity.Transaction{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		RefID:        utils.GenerateRefID(now),
		UserID:       user.ID,
		ProductID:    product.ID,
		BuyerSkuCode: product.IDProvider,
		CustomerNo:   strings.TrimSpace(req.CustomerNo),
		Status:       entity.NormalizeStatus(req.Status, entity.TransactionStatusPending),
	}

	if err := s.repo.Transaction.Create(ctx, trx); err != nil {
		s.log.Error("Failed to create manual transaction", zap.Error(err))
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	s.notifier.notify(ctx, events.EventTransactionCreated, sourceAdmin, trx)

	s.log.Info("Manual transaction recorded",
		zap.String("ref_id", trx.RefID),
		zap.String("status", trx.Status))

	resp := response.TransactionToResponse(trx)
	return &resp, nil
}

func (s *transactionService) UpdateStatus(ctx context.Context, transactionID string, req *request.UpdateTransactionStatusRequest) (*response.TransactionResponse, error) {
	id, err := parseID("transaction", transactionID)
	if err != nil {
		return nil, err
	}
	req.Status = strings.TrimSpace(req.Status)
	if err := validate(req); err != nil {
		return nil, err
	}

	trx, err := s.repo.Transaction.UpdateStatus(ctx, id, entity.NormalizeStatus(req.Status, entity.TransactionStatusUnknown))
	if err != nil {
		s.log.Error("Failed to update transaction status", zap.Error(err), zap.String("transaction_id", transactionID))
		return nil, fmt.Errorf("update transaction status: %w", err)
	}
	if trx == nil {
		return nil, newError(ErrNotFound, "transaction not found")
	}
	s.notifier.notify(ctx, events.EventTransactionUpdated, sourceAdmin, trx)

	s.log.Info("Transaction status updated by admin",
		zap.String("ref_id", trx.RefID),
		zap.String("status", trx.Status))

	resp := response.TransactionToResponse(trx)
	return &resp, nil
}

func (s *transactionService) Delete(ctx context.Context, transactionID string) error {
	id, err := parseID("transaction", transactionID)
	if err != nil {
		return err
	}

	detail, err := s.repo.Transaction.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	if detail == nil {
		return newError(ErrNotFound, "transaction not found")
	}

	if err := s.repo.Transaction.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "transaction not found")
		}
		s.log.Error("Failed to delete transaction", zap.Error(err), zap.String("transaction_id", transactionID))
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.notifier.forget(ctx, detail.RefID)

	s.log.Info("Transaction deleted", zap.String("ref_id", detail.RefID))
	return nil
}
