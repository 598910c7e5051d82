package eligibility

import (
	"context"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	Category       Category
	StockStatus    StockStatus
	IncludeRemoved bool
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySupplierID finds a product by the supplier's product identifier
	FindBySupplierID(ctx context.Context, supplierProductID string) (*Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter ProductFilter) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}

// RuleRepository defines the interface for compliance rule persistence
type RuleRepository interface {
	// ListBrandRules returns every brand rule
	ListBrandRules(ctx context.Context) ([]BrandRule, error)

	// SaveBrandRule creates a brand rule; duplicates of (token, scope) fail with ErrAlreadyExists
	SaveBrandRule(ctx context.Context, rule BrandRule) error

	// DeleteBrandRule removes a brand rule
	DeleteBrandRule(ctx context.Context, id uuid.UUID) error

	// ListKeywordRules returns every keyword rule
	ListKeywordRules(ctx context.Context) ([]KeywordRule, error)

	// SaveKeywordRule creates a keyword rule; duplicate keywords fail with ErrAlreadyExists
	SaveKeywordRule(ctx context.Context, rule KeywordRule) error

	// DeleteKeywordRule removes a keyword rule
	DeleteKeywordRule(ctx context.Context, id uuid.UUID) error

	// ListCountryRestrictions returns every restriction, enabled or not
	ListCountryRestrictions(ctx context.Context) ([]CountryRestriction, error)

	// SaveCountryRestriction creates or updates a restriction
	SaveCountryRestriction(ctx context.Context, restriction CountryRestriction) error

	// FindCountryRestriction finds a restriction by its ID
	FindCountryRestriction(ctx context.Context, id uuid.UUID) (CountryRestriction, error)

	// DeleteCountryRestriction removes a restriction
	DeleteCountryRestriction(ctx context.Context, id uuid.UUID) error
}

// LoadRuleSet reads every rule from the repository and compiles a RuleSet
func LoadRuleSet(ctx context.Context, repo RuleRepository) (*RuleSet, error) {
	brands, err := repo.ListBrandRules(ctx)
	if err != nil {
		return nil, err
	}
	keywords, err := repo.ListKeywordRules(ctx)
	if err != nil {
		return nil, err
	}
	restrictions, err := repo.ListCountryRestrictions(ctx)
	if err != nil {
		return nil, err
	}
	return NewRuleSet(brands, keywords, restrictions)
}
