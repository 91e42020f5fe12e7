package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/domain/repository"
)

// ProductUseCase casos de uso del catálogo. El stock se maneja vía movimientos.
type ProductUseCase struct {
	repo  repository.ProductRepository
	stock repository.StockLevelRepository
	az    ports.Authorizer
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, stock repository.StockLevelRepository, az ports.Authorizer) *ProductUseCase {
	return &ProductUseCase{repo: repo, stock: stock, az: az}
}

// Create crea un nuevo producto con stock 0. Devuelve domain.ErrDuplicate si el SKU ya existe.
func (uc *ProductUseCase) Create(ctx context.Context, actor ports.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := ports.Require(ctx, uc.az, actor, "", entity.PermCatalogManage); err != nil {
		return nil, err
	}
	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	if sku == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetBySKU(ctx, actor.TenantID, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "UND"
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		TenantID:    actor.TenantID,
		SKU:         sku,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Serialized:  in.Serialized,
		UnitMeasure: in.UnitMeasure,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product, decimal.Zero), nil
}

// GetByID obtiene un producto con su saldo.
func (uc *ProductUseCase) GetByID(ctx context.Context, tenantID, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, tenantID, id)
	return uc.withStock(ctx, tenantID, product, err)
}

// GetBySKU obtiene un producto por SKU (lectura de etiqueta en bodega).
func (uc *ProductUseCase) GetBySKU(ctx context.Context, tenantID, sku string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetBySKU(ctx, tenantID, strings.ToUpper(strings.TrimSpace(sku)))
	return uc.withStock(ctx, tenantID, product, err)
}

func (uc *ProductUseCase) withStock(ctx context.Context, tenantID string, product *entity.Product, err error) (*dto.ProductResponse, error) {
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	qty, err := uc.quantity(ctx, tenantID, product.ID)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, qty), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, tenantID string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		qty, err := uc.quantity(ctx, tenantID, p.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, *toProductResponse(p, qty))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func (uc *ProductUseCase) quantity(ctx context.Context, tenantID, productID string) (decimal.Decimal, error) {
	level, err := uc.stock.Get(ctx, tenantID, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if level == nil {
		return decimal.Zero, nil
	}
	return level.Quantity, nil
}

func toProductResponse(p *entity.Product, stock decimal.Decimal) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		TenantID:    p.TenantID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Serialized:  p.Serialized,
		UnitMeasure: p.UnitMeasure,
		Stock:       stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
