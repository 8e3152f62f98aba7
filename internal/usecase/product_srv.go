package usecase

import (
	"context"
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
)

type ProductService interface {
	GetProducts(ctx context.Context, req *request.PaginatedRequest, category *string) (*response.PaginatedResponse[response.ProductResponse], error)
	GetProductByID(ctx context.Context, productID string) (*response.ProductResponse, error)
	CreateProduct(ctx context.Context, req *request.CreateProductRequest) (*response.ProductResponse, error)
	UpdateProduct(ctx context.Context, productID string, req *request.UpdateProductRequest) (*response.ProductResponse, error)
	DeleteProduct(ctx context.Context, productID string) error
}

type productService struct {
	productRepo repository.ProductRepository
	log         *zap.Logger
}

func NewProductService(productRepo repository.ProductRepository, log *zap.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		log:         log.With(zap.String("service", "product")),
	}
}

func (s *productService) GetProducts(ctx context.Context, req *request.PaginatedRequest, category *string) (*response.PaginatedResponse[response.ProductResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	products, err := s.productRepo.FindAll(ctx, offset, limit, category)
	if err != nil {
		s.log.Error("Failed to get products",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
			zap.Stringp("category", category),
		)
		return nil, fmt.Errorf("get products: %w", err)
	}

	total, err := s.productRepo.CountAll(ctx, category)
	if err != nil {
		s.log.Error("Failed to count products", zap.Error(err), zap.Stringp("category", category))
		return nil, fmt.Errorf("count products: %w", err)
	}

	productResponses := make([]response.ProductResponse, len(products))
	for i, p := range products {
		productResponses[i] = response.ProductToResponse(p)
	}

	return response.NewPaginatedResponse(productResponses, req.Page, req.PerPage, total), nil
}

func (s *productService) GetProductByID(ctx context.Context, productID string) (*response.ProductResponse, error) {
	id, err := parseID("product", productID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get product", zap.Error(err), zap.String("product_id", productID))
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, newError(ErrNotFound, "product not found")
	}

	resp := response.ProductToResponse(product)
	return &resp, nil
}

func (s *productService) CreateProduct(ctx context.Context, req *request.CreateProductRequest) (*response.ProductResponse, error) {
	req.IDProvider = strings.TrimSpace(req.IDProvider)
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.BasePrice.IsNegative() || req.SellingPrice.IsNegative() {
		return nil, validationError(map[string]string{"price": "Prices must not be negative"})
	}

	now := time.Now()
	product := &entity.Product{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		IDProvider:   req.IDProvider,
		Name:         req.Name,
		Category:     req.Category,
		BasePrice:    req.BasePrice,
		SellingPrice: req.SellingPrice,
	}
	product.RecalculateProfit()

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "product with id_provider %q already exists", req.IDProvider)
		}
		s.log.Error("Failed to create product", zap.Error(err), zap.String("id_provider", req.IDProvider))
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.log.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("id_provider", product.IDProvider),
		zap.String("profit", product.Profit.String()))

	resp := response.ProductToResponse(product)
	return &resp, nil
}

func (s *productService) UpdateProduct(ctx context.Context, productID string, req *request.UpdateProductRequest) (*response.ProductResponse, error) {
	id, err := parseID("product", productID)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, newError(ErrNotFound, "product not found")
	}

	// partial update, field yang nil tidak diubah
	if req.IDProvider != nil {
		product.IDProvider = strings.TrimSpace(*req.IDProvider)
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.BasePrice != nil {
		product.BasePrice = *req.BasePrice
	}
	if req.SellingPrice != nil {
		product.SellingPrice = *req.SellingPrice
	}
	if product.BasePrice.IsNegative() || product.SellingPrice.IsNegative() {
		return nil, validationError(map[string]string{"price": "Prices must not be negative"})
	}
	product.RecalculateProfit()
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, newError(ErrNotFound, "product not found")
		case errors.Is(err, repository.ErrDuplicate):
			return nil, newError(ErrConflict, "product with id_provider %q already exists", product.IDProvider)
		}
		s.log.Error("Failed to update product", zap.Error(err), zap.String("product_id", productID))
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.log.Info("Product updated", zap.String("product_id", product.ID.String()))

	resp := response.ProductToResponse(product)
	return &resp, nil
}

func (s *productService) DeleteProduct(ctx context.Context, productID string) error {
	id, err := parseID("product", productID)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return newError(ErrNotFound, "product not found")
		case errors.Is(err, repository.ErrInUse):
			return newError(ErrConflict, "product is referenced by transactions")
		}
		s.log.Error("Failed to delete product", zap.Error(err), zap.String("product_id", productID))
		return fmt.Errorf("delete product: %w", err)
	}

	s.log.Info("Product deleted", zap.String("product_id", productID))
	return nil
}
