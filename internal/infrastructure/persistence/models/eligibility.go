package models

import (
	"fmt"
	"time"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for eligibility.Product
type ProductModel struct {
	BaseModel
	SupplierProductID string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Category          string          `gorm:"type:varchar(32);not null;index"`
	WholesaleAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	WholesaleCurrency string          `gorm:"type:varchar(3);not null"`
	WeightGrams       int             `gorm:"not null"`
	NameJA            string          `gorm:"column:name_ja;type:varchar(500)"`
	NameEN            string          `gorm:"column:name_en;type:varchar(500)"`
	DescriptionJA     string          `gorm:"column:description_ja;type:text"`
	DescriptionEN     string          `gorm:"column:description_en;type:text"`
	StockStatus       string          `gorm:"type:varchar(20);not null;index"`
	Removed           bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a domain product. It fails only when the
// stored currency is not one the domain supports.
func (m *ProductModel) ToDomain() (*eligibility.Product, error) {
	price, err := valueobject.NewMoney(m.WholesaleAmount, valueobject.Currency(m.WholesaleCurrency))
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", m.ID, err)
	}
	return &eligibility.Product{
		BaseEntity:        m.BaseModel.ToDomain(),
		SupplierProductID: m.SupplierProductID,
		Category:          eligibility.Category(m.Category),
		WholesalePrice:    price,
		WeightGrams:       m.WeightGrams,
		NameJA:            m.NameJA,
		NameEN:            m.NameEN,
		DescriptionJA:     m.DescriptionJA,
		DescriptionEN:     m.DescriptionEN,
		StockStatus:       eligibility.StockStatus(m.StockStatus),
		Removed:           m.Removed,
	}, nil
}

// ProductModelFromDomain converts a domain product to its model
func ProductModelFromDomain(p *eligibility.Product) *ProductModel {
	m := &ProductModel{
		SupplierProductID: p.SupplierProductID,
		Category:          string(p.Category),
		WholesaleAmount:   p.WholesalePrice.Amount(),
		WholesaleCurrency: string(p.WholesalePrice.Currency()),
		WeightGrams:       p.WeightGrams,
		NameJA:            p.NameJA,
		NameEN:            p.NameEN,
		DescriptionJA:     p.DescriptionJA,
		DescriptionEN:     p.DescriptionEN,
		StockStatus:       string(p.StockStatus),
		Removed:           p.Removed,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// BrandRuleModel is the persistence model for eligibility.BrandRule.
// MatchKey holds the normalized token so "SHUN" and "shun" collide.
type BrandRuleModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Token     string    `gorm:"type:varchar(200);not null"`
	MatchKey  string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_brand_rules_match_scope"`
	Scope     string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_brand_rules_match_scope"`
	RiskLevel string    `gorm:"type:varchar(20);not null"`
	Notes     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BrandRuleModel) TableName() string {
	return "brand_rules"
}

// ToDomain converts the model to a domain rule
func (m *BrandRuleModel) ToDomain() eligibility.BrandRule {
	return eligibility.BrandRule{
		ID:        m.ID,
		Token:     m.Token,
		Scope:     m.Scope,
		RiskLevel: m.RiskLevel,
		Notes:     m.Notes,
	}
}

// BrandRuleModelFromDomain converts a domain rule to its model
func BrandRuleModelFromDomain(r eligibility.BrandRule) *BrandRuleModel {
	return &BrandRuleModel{
		ID:        r.ID,
		Token:     r.Token,
		MatchKey:  eligibility.Normalize(r.Token),
		Scope:     r.Scope,
		RiskLevel: r.RiskLevel,
		Notes:     r.Notes,
		CreatedAt: time.Now(),
	}
}

// KeywordRuleModel is the persistence model for eligibility.KeywordRule
type KeywordRuleModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Keyword   string    `gorm:"type:varchar(200);not null"`
	MatchKey  string    `gorm:"type:varchar(200);not null;uniqueIndex"`
	Severity  string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (KeywordRuleModel) TableName() string {
	return "keyword_rules"
}

// ToDomain converts the model to a domain rule
func (m *KeywordRuleModel) ToDomain() eligibility.KeywordRule {
	return eligibility.KeywordRule{
		ID:       m.ID,
		Keyword:  m.Keyword,
		Severity: eligibility.Severity(m.Severity),
	}
}

// KeywordRuleModelFromDomain converts a domain rule to its model
func KeywordRuleModelFromDomain(r eligibility.KeywordRule) *KeywordRuleModel {
	return &KeywordRuleModel{
		ID:        r.ID,
		Keyword:   r.Keyword,
		MatchKey:  eligibility.Normalize(r.Keyword),
		Severity:  string(r.Severity),
		CreatedAt: time.Now(),
	}
}

// CountryRestrictionModel is the persistence model for eligibility.CountryRestriction
type CountryRestrictionModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Category    string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_country_restrictions_category_country"`
	CountryCode string    `gorm:"type:char(2);not null;uniqueIndex:idx_country_restrictions_category_country"`
	Reason      string    `gorm:"type:text"`
	Enabled     bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CountryRestrictionModel) TableName() string {
	return "country_restrictions"
}

// ToDomain converts the model to a domain restriction
func (m *CountryRestrictionModel) ToDomain() eligibility.CountryRestriction {
	return eligibility.CountryRestriction{
		ID:          m.ID,
		Category:    eligibility.Category(m.Category),
		CountryCode: m.CountryCode,
		Reason:      m.Reason,
		Enabled:     m.Enabled,
	}
}

// CountryRestrictionModelFromDomain converts a domain restriction to its model
func CountryRestrictionModelFromDomain(r eligibility.CountryRestriction) *CountryRestrictionModel {
	now := time.Now()
	return &CountryRestrictionModel{
		ID:          r.ID,
		Category:    string(r.Category),
		CountryCode: r.CountryCode,
		Reason:      r.Reason,
		Enabled:     r.Enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AllModels lists every model for AutoMigrate
func AllModels() []any {
	return []any{
		&ProductModel{},
		&BrandRuleModel{},
		&KeywordRuleModel{},
		&CountryRestrictionModel{},
	}
}
