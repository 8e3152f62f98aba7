package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"ppob-backend/internal/dto/request"
)

func ptr[T any](v T) *T { return &v }

func TestProductProfitFollowsPrices(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	created, err := env.svc.Product.CreateProduct(ctx, &request.CreateProductRequest{
		IDProvider:   "xld10",
		Name:         "XL 10K",
		Category:     "Pulsa",
		BasePrice:    decimal.NewFromInt(10000),
		SellingPrice: decimal.NewFromInt(11500),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !created.Profit.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("profit = %s, want 1500", created.Profit)
	}

	updated, err := env.svc.Product.UpdateProduct(ctx, created.ID, &request.UpdateProductRequest{
		SellingPrice: ptr(decimal.NewFromInt(12000)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !updated.Profit.Equal(decimal.NewFromInt(2000)) || updated.Name != "XL 10K" {
		t.Errorf("updated = %+v", updated)
	}

	_, err = env.svc.Product.CreateProduct(ctx, &request.CreateProductRequest{IDProvider: "xld10", Name: "dup"})
	assertKind(t, err, ErrConflict)

	_, err = env.svc.Product.CreateProduct(ctx, &request.CreateProductRequest{
		IDProvider: "neg", Name: "neg", BasePrice: decimal.NewFromInt(-1),
	})
	assertKind(t, err, ErrValidation)

	if err := env.svc.Product.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	_, err = env.svc.Product.GetProductByID(ctx, created.ID)
	assertKind(t, err, ErrNotFound)
}

func TestProductListFiltersCategory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProduct(t, "a", 1, 2)
	env.seedProduct(t, "b", 1, 2)

	pulsa := "Pulsa"
	page, err := env.svc.Product.GetProducts(ctx, &request.PaginatedRequest{Page: 1, PerPage: 10}, &pulsa)
	if err != nil {
		t.Fatal(err)
	}
	if page.Pagination.Total != 2 {
		t.Errorf("total = %d, want 2", page.Pagination.Total)
	}

	data := "Data"
	page, _ = env.svc.Product.GetProducts(ctx, &request.PaginatedRequest{Page: 1, PerPage: 10}, &data)
	if page.Pagination.Total != 0 || page.Data == nil {
		t.Errorf("empty category page = %+v", page)
	}
}

func TestBranchNasabah(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	branch, err := env.svc.Branch.CreateBranch(ctx, &request.BranchRequest{Name: "Cabang Bandung", Address: "Jl. Asia Afrika"})
	if err != nil {
		t.Fatal(err)
	}

	n, err := env.svc.Nasabah.Create(ctx, &request.NasabahRequest{Name: "Siti", BranchID: branch.ID})
	if err != nil {
		t.Fatal(err)
	}
	if !n.Balance.IsZero() {
		t.Errorf("default balance = %s, want 0", n.Balance)
	}

	_, err = env.svc.Nasabah.Create(ctx, &request.NasabahRequest{Name: "Joko", BranchID: "00000000-0000-0000-0000-000000000001"})
	assertKind(t, err, ErrNotFound)

	_, err = env.svc.Nasabah.Create(ctx, &request.NasabahRequest{BranchID: branch.ID})
	assertKind(t, err, ErrValidation)

	withNasabah, err := env.svc.Branch.GetBranchNasabah(ctx, branch.ID)
	if err != nil {
		t.Fatal(err)
	}
	if withNasabah.TotalNasabah != 1 || withNasabah.Nasabah[0].Name != "Siti" {
		t.Errorf("branch nasabah = %+v", withNasabah)
	}

	updated, err := env.svc.Nasabah.Update(ctx, n.ID, &request.NasabahUpdateRequest{Balance: ptr(decimal.NewFromInt(50000))})
	if err != nil {
		t.Fatal(err)
	}
	if !updated.Balance.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("balance = %s", updated.Balance)
	}

	err = env.svc.Branch.DeleteBranch(ctx, branch.ID)
	assertKind(t, err, ErrConflict)

	if err := env.svc.Nasabah.Delete(ctx, n.ID); err != nil {
		t.Fatal(err)
	}
	if err := env.svc.Branch.DeleteBranch(ctx, branch.ID); err != nil {
		t.Fatalf("DeleteBranch() error = %v", err)
	}
}
