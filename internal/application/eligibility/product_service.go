package eligibility

import (
	"context"
	"errors"
	"strings"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService manages the supplier product catalog
type ProductService struct {
	repo           eligibility.ProductRepository
	sourceCurrency valueobject.Currency
	logger         *zap.Logger
}

// NewProductService creates a new product service. Wholesale prices without
// a currency are read as sourceCurrency.
func NewProductService(repo eligibility.ProductRepository, sourceCurrency valueobject.Currency, logger *zap.Logger) *ProductService {
	if !sourceCurrency.IsValid() {
		sourceCurrency = valueobject.JPY
	}
	return &ProductService{repo: repo, sourceCurrency: sourceCurrency, logger: logger}
}

// Import creates a product or refreshes the supplier data of an existing one
// with the same supplier product id. created reports which happened.
func (s *ProductService) Import(ctx context.Context, req ImportProductRequest) (resp *ProductResponse, created bool, err error) {
	category, err := eligibility.ParseCategory(req.Category)
	if err != nil {
		return nil, false, err
	}
	weight, err := requireWeight(req.WeightGrams)
	if err != nil {
		return nil, false, err
	}
	currency, err := parseCurrency(req.WholesaleCurrency, s.sourceCurrency)
	if err != nil {
		return nil, false, err
	}
	price, err := parseMoney("wholesale_price", req.WholesalePrice, currency)
	if err != nil {
		return nil, false, err
	}
	var status eligibility.StockStatus
	if req.StockStatus != "" {
		if status, err = eligibility.ParseStockStatus(req.StockStatus); err != nil {
			return nil, false, err
		}
	}

	supplierID := strings.TrimSpace(req.SupplierProductID)
	product, err := s.repo.FindBySupplierID(ctx, supplierID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		product, err = eligibility.NewProduct(supplierID, category, price, weight, req.NameJA, req.NameEN)
		if err != nil {
			return nil, false, err
		}
		created = true
	case err != nil:
		return nil, false, err
	default:
		if err := product.UpdateSupplierData(category, price, weight, req.NameJA, req.NameEN); err != nil {
			return nil, false, err
		}
	}

	product.UpdateDescriptions(req.DescriptionJA, req.DescriptionEN)
	if status != "" {
		if err := product.UpdateStock(status); err != nil {
			return nil, false, err
		}
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, false, err
	}

	s.logger.Info("Product imported",
		zap.String("product_id", product.ID.String()),
		zap.String("supplier_product_id", product.SupplierProductID),
		zap.Bool("created", created))

	out := ToProductResponse(product)
	return &out, created, nil
}

// Get returns a product by ID
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns a page of products
func (s *ProductService) List(ctx context.Context, q ListProductsQuery) (*shared.Paginated[ProductResponse], error) {
	filter := eligibility.ProductFilter{
		Filter:         shared.DefaultFilter(),
		IncludeRemoved: q.IncludeRemoved,
	}
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		filter.OrderDir = q.OrderDir
	}
	filter.Search = strings.TrimSpace(q.Search)

	var err error
	if q.Category != "" {
		if filter.Category, err = eligibility.ParseCategory(q.Category); err != nil {
			return nil, err
		}
	}
	if q.StockStatus != "" {
		if filter.StockStatus, err = eligibility.ParseStockStatus(q.StockStatus); err != nil {
			return nil, err
		}
	}

	products, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateStock records a stock-sync result
func (s *ProductService) UpdateStock(ctx context.Context, id uuid.UUID, req UpdateStockRequest) (*ProductResponse, error) {
	status, err := eligibility.ParseStockStatus(req.StockStatus)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.UpdateStock(status); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// MarkRemoved flags a product as withdrawn by the supplier. Removed
// products stay queryable and evaluable, with a warning.
func (s *ProductService) MarkRemoved(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if product.Removed {
		return nil
	}
	product.MarkRemoved()
	if err := s.repo.Save(ctx, product); err != nil {
		return err
	}
	s.logger.Info("Product marked removed",
		zap.String("product_id", id.String()),
		zap.String("supplier_product_id", product.SupplierProductID))
	return nil
}
