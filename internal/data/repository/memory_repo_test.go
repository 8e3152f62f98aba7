package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ppob-backend/internal/data/entity"
)

func seedTransaction(t *testing.T, repo *Repository, status string, createdAt time.Time) (*entity.Product, *entity.Transaction) {
	t.Helper()
	ctx := context.Background()

	product := &entity.Product{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: createdAt},
		IDProvider:   "xld10-" + uuid.NewString()[:8],
		Name:         "XL 10K",
		BasePrice:    decimal.NewFromInt(10000),
		SellingPrice: decimal.NewFromInt(11500),
	}
	product.RecalculateProfit()
	if err := repo.Product.Create(ctx, product); err != nil {
		t.Fatal(err)
	}

	trx := &entity.Transaction{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: createdAt, UpdatedAt: createdAt},
		RefID:        "trx_" + uuid.NewString(),
		UserID:       uuid.New(),
		ProductID:    product.ID,
		BuyerSkuCode: product.IDProvider,
		CustomerNo:   "0877",
		Status:       status,
	}
	if err := repo.Transaction.Create(ctx, trx); err != nil {
		t.Fatal(err)
	}
	return product, trx
}

func TestMemoryTransactionDuplicateRef(t *testing.T) {
	repo := NewMemoryRepository()
	_, trx := seedTransaction(t, repo, entity.TransactionStatusPending, time.Now())

	dup := *trx
	dup.ID = uuid.New()
	err := repo.Transaction.Create(context.Background(), &dup)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("Create() error = %v, want ErrDuplicate", err)
	}
}

func TestMemoryApplyWebhookGuard(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, trx := seedTransaction(t, repo, entity.TransactionStatusPending, time.Now())

	got, applied, err := repo.Transaction.ApplyWebhook(ctx, trx.RefID, ProviderResult{Status: "SUKSES", SN: "SN1", Raw: `{"a":1}`})
	if err != nil || !applied {
		t.Fatalf("ApplyWebhook() = %v, %v", applied, err)
	}
	if got.Status != "SUKSES" || got.SN != "SN1" || got.RawResponse != `{"a":1}` {
		t.Errorf("after webhook: %+v", got)
	}

	_, applied, _ = repo.Transaction.ApplyWebhook(ctx, trx.RefID, ProviderResult{Status: "PENDING", Raw: `{"b":2}`})
	if applied {
		t.Error("PENDING must not overwrite a final status")
	}

	got, applied, _ = repo.Transaction.ApplyWebhook(ctx, trx.RefID, ProviderResult{Status: "GAGAL", Raw: `{"c":3}`})
	if !applied || got.Status != "GAGAL" || got.SN != "SN1" {
		t.Errorf("final to final: applied=%v trx=%+v", applied, got)
	}

	if _, applied, _ := repo.Transaction.ApplyWebhook(ctx, "trx_unknown", ProviderResult{Status: "SUKSES"}); applied {
		t.Error("unknown ref must not apply")
	}
}

func TestMemoryOrderWritesRespectFinalStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, trx := seedTransaction(t, repo, entity.TransactionStatusPending, time.Now())

	if _, applied, _ := repo.Transaction.ApplyWebhook(ctx, trx.RefID, ProviderResult{Status: "SUKSES", SN: "SN1"}); !applied {
		t.Fatal("webhook not applied")
	}

	got, applied, err := repo.Transaction.UpdateProviderResult(ctx, trx.ID, ProviderResult{Status: "PENDING", Raw: `{}`})
	if err != nil || applied {
		t.Fatalf("UpdateProviderResult() applied=%v err=%v, want rejected", applied, err)
	}
	if got.Status != "SUKSES" || got.SN != "SN1" {
		t.Errorf("stored row after rejected reply: %+v", got)
	}

	got, applied, err = repo.Transaction.MarkFailed(ctx, trx.ID, "timeout")
	if err != nil || applied || got.Status != "SUKSES" {
		t.Errorf("MarkFailed() on settled row = %+v, %v, %v", got, applied, err)
	}

	_, pending := seedTransaction(t, repo, entity.TransactionStatusPending, time.Now())
	got, applied, err = repo.Transaction.MarkFailed(ctx, pending.ID, "timeout")
	if err != nil || !applied || got.Status != entity.TransactionStatusFailed || got.Message != "timeout" {
		t.Errorf("MarkFailed() on pending row = %+v, %v, %v", got, applied, err)
	}

	if _, _, err := repo.Transaction.MarkFailed(ctx, uuid.New(), "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkFailed() unknown id err = %v", err)
	}
}

func TestMemoryReports(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	day1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	seedTransaction(t, repo, entity.TransactionStatusSuccess, day1)
	seedTransaction(t, repo, entity.TransactionStatusSukses, day2)
	seedTransaction(t, repo, entity.TransactionStatusPending, day2)
	seedTransaction(t, repo, entity.TransactionStatusFailed, day2)

	rev, err := repo.Report.Revenue(ctx, Period{})
	if err != nil {
		t.Fatal(err)
	}
	if rev.TotalTransactions != 2 {
		t.Errorf("TotalTransactions = %d, want 2", rev.TotalTransactions)
	}
	if !rev.TotalRevenue.Equal(decimal.NewFromInt(23000)) || !rev.TotalProfit.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("revenue = %s profit = %s", rev.TotalRevenue, rev.TotalProfit)
	}

	from := day2.Add(-time.Hour)
	rev, _ = repo.Report.Revenue(ctx, Period{From: &from})
	if rev.TotalTransactions != 1 {
		t.Errorf("period TotalTransactions = %d, want 1", rev.TotalTransactions)
	}

	daily, _ := repo.Report.DailyRevenue(ctx, Period{})
	if len(daily) != 2 || daily[0].Date != "2024-05-01" || daily[1].Date != "2024-05-02" {
		t.Errorf("daily = %+v", daily)
	}

	top, _ := repo.Report.TopProducts(ctx, Period{}, 1)
	if len(top) != 1 || top[0].TotalSold != 1 {
		t.Errorf("top = %+v", top)
	}
}

func TestMemoryNasabahRequiresBranch(t *testing.T) {
	repo := NewMemoryRepository()
	n := &entity.Nasabah{BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()}, Name: "Budi", BranchID: uuid.New()}
	if err := repo.Nasabah.Create(context.Background(), n); !errors.Is(err, ErrNotFound) {
		t.Errorf("Create() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryRefreshTokenRevoke(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	tok := &entity.RefreshToken{BaseSimple: entity.BaseSimple{ID: uuid.New()}, Token: "abc", ExpiresAt: time.Now().Add(time.Hour)}
	repo.RefreshToken.Create(ctx, tok)

	n, err := repo.RefreshToken.Revoke(ctx, "abc")
	if err != nil || n != 1 {
		t.Fatalf("Revoke() = %d, %v", n, err)
	}
	n, err = repo.RefreshToken.Revoke(ctx, "missing")
	if err != nil || n != 0 {
		t.Errorf("Revoke(missing) = %d, %v; want 0, nil", n, err)
	}

	got, _ := repo.RefreshToken.FindByToken(ctx, "abc")
	if got == nil || !got.Revoked {
		t.Errorf("FindByToken() = %+v", got)
	}
}

func TestMemoryProductCodeUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	a := &entity.Product{BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()}, IDProvider: "xld10", Name: "A"}
	b := &entity.Product{BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()}, IDProvider: "tsel5", Name: "B"}
	if err := repo.Product.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := repo.Product.Create(ctx, b); err != nil {
		t.Fatal(err)
	}

	dup := &entity.Product{BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()}, IDProvider: "xld10"}
	if err := repo.Product.Create(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Create() error = %v, want ErrDuplicate", err)
	}

	b.IDProvider = "xld10"
	if err := repo.Product.Update(ctx, b); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Update() error = %v, want ErrDuplicate", err)
	}
}
