package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements eligibility.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*eligibility.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindBySupplierID finds a product by the supplier's product identifier
func (r *GormProductRepository) FindBySupplierID(ctx context.Context, supplierProductID string) (*eligibility.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("supplier_product_id = ?", strings.TrimSpace(supplierProductID)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter eligibility.ProductFilter) ([]eligibility.Product, error) {
	var rows []models.ProductModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]eligibility.Product, 0, len(rows))
	for i := range rows {
		p, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter eligibility.ProductFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product. A second product with the same
// supplier product ID fails with shared.ErrAlreadyExists.
func (r *GormProductRepository) Save(ctx context.Context, product *eligibility.Product) error {
	err := r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainErrorOfKind(shared.ErrAlreadyExists, "PRODUCT_EXISTS",
			"a product with supplier id "+product.SupplierProductID+" already exists")
	}
	return err
}

// applyFilter applies filter options with pagination and ordering
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter eligibility.ProductFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ProductSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).Order("id ASC")
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter eligibility.ProductFilter) *gorm.DB {
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"LOWER(name_en) LIKE ? OR LOWER(name_ja) LIKE ? OR LOWER(supplier_product_id) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", string(filter.Category))
	}
	if filter.StockStatus != "" {
		query = query.Where("stock_status = ?", string(filter.StockStatus))
	}
	if !filter.IncludeRemoved {
		query = query.Where("removed = ?", false)
	}

	for key, value := range filter.Filters {
		switch key {
		case "max_weight_grams":
			query = query.Where("weight_grams <= ?", value)
		case "min_weight_grams":
			query = query.Where("weight_grams >= ?", value)
		case "wholesale_currency":
			query = query.Where("wholesale_currency = ?", value)
		}
	}
	return query
}
