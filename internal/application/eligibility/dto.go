package eligibility

import (
	"time"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ProductPayload is a product described inline in a request. Amounts are
// decimal strings; currencies default to the snapshot's source currency.
type ProductPayload struct {
	SupplierProductID string `json:"supplier_product_id" binding:"max=100"`
	Category          string `json:"category" binding:"required"`
	WholesalePrice    string `json:"wholesale_price" binding:"required"`
	WholesaleCurrency string `json:"wholesale_currency" binding:"omitempty,len=3"`
	WeightGrams       *int   `json:"weight_grams" binding:"required,min=0"`
	NameJA            string `json:"name_ja" binding:"max=500"`
	NameEN            string `json:"name_en" binding:"max=500"`
	DescriptionJA     string `json:"description_ja" binding:"max=10000"`
	DescriptionEN     string `json:"description_en" binding:"max=10000"`
	StockStatus       string `json:"stock_status"`
	Removed           bool   `json:"removed"`
}

// OfferRequest is the proposed listing. Marketplace, destination and sale
// currency fall back to the service defaults when empty.
type OfferRequest struct {
	SalePrice        string   `json:"sale_price" binding:"required"`
	SaleCurrency     string   `json:"sale_currency" binding:"omitempty,len=3"`
	Marketplace      string   `json:"marketplace"`
	Destination      string   `json:"destination"`
	Addons           []string `json:"addons"`
	ShippingOverride *string  `json:"shipping_override"`
}

// EvaluateRequest evaluates an ad-hoc product against an offer
type EvaluateRequest struct {
	Product ProductPayload `json:"product"`
	Offer   OfferRequest   `json:"offer"`
}

// BatchEvaluateRequest evaluates several products against one snapshot
type BatchEvaluateRequest struct {
	Items []EvaluateRequest `json:"items" binding:"required,min=1,dive"`
}

// ProfitRequest prices one sale without running compliance
type ProfitRequest struct {
	WholesalePrice    string   `json:"wholesale_price" binding:"required"`
	WholesaleCurrency string   `json:"wholesale_currency" binding:"omitempty,len=3"`
	WeightGrams       *int     `json:"weight_grams" binding:"required,min=0"`
	SalePrice         string   `json:"sale_price" binding:"required"`
	SaleCurrency      string   `json:"sale_currency" binding:"omitempty,len=3"`
	Marketplace       string   `json:"marketplace"`
	Destination       string   `json:"destination"`
	Addons            []string `json:"addons"`
	ShippingOverride  *string  `json:"shipping_override"`
}

// SuggestPriceRequest back-solves the lowest sale price for a target margin
type SuggestPriceRequest struct {
	WholesalePrice    string   `json:"wholesale_price" binding:"required"`
	WholesaleCurrency string   `json:"wholesale_currency" binding:"omitempty,len=3"`
	WeightGrams       *int     `json:"weight_grams" binding:"required,min=0"`
	SaleCurrency      string   `json:"sale_currency" binding:"omitempty,len=3"`
	Marketplace       string   `json:"marketplace"`
	Destination       string   `json:"destination"`
	Addons            []string `json:"addons"`
	ShippingOverride  *string  `json:"shipping_override"`
	TargetMargin      *string  `json:"target_margin"`
}

// ComplianceRequest runs only the compliance filter
type ComplianceRequest struct {
	Category      string `json:"category" binding:"required"`
	NameJA        string `json:"name_ja"`
	NameEN        string `json:"name_en"`
	DescriptionJA string `json:"description_ja"`
	DescriptionEN string `json:"description_en"`
	Marketplace   string `json:"marketplace"`
}

// AddonFeeResponse is one addon charge
type AddonFeeResponse struct {
	Addon  string            `json:"addon"`
	Amount valueobject.Money `json:"amount"`
}

// FeeBreakdownResponse itemizes marketplace fees
type FeeBreakdownResponse struct {
	Percentage valueobject.Money  `json:"percentage"`
	Fixed      valueobject.Money  `json:"fixed"`
	Addons     []AddonFeeResponse `json:"addons"`
	Total      valueobject.Money  `json:"total"`
}

// ProfitResponse is the full cost and margin picture of a sale
type ProfitResponse struct {
	SalePrice          valueobject.Money    `json:"sale_price"`
	WholesaleConverted valueobject.Money    `json:"wholesale_converted"`
	Shipping           valueobject.Money    `json:"shipping"`
	ShippingMethod     string               `json:"shipping_method"`
	Fees               FeeBreakdownResponse `json:"fees"`
	TotalCost          valueobject.Money    `json:"total_cost"`
	Profit             valueobject.Money    `json:"profit"`
	Margin             string               `json:"margin"`
	MinimumMargin      string               `json:"minimum_margin"`
	Profitable         bool                 `json:"profitable"`
	SnapshotVersion    uint64               `json:"snapshot_version"`
}

// EligibilityResponse is the admit/reject decision for one listing
type EligibilityResponse struct {
	ProductID         *uuid.UUID        `json:"product_id,omitempty"`
	Passed            bool              `json:"passed"`
	Reasons           []string          `json:"reasons"`
	Warnings          []string          `json:"warnings"`
	ExcludedCountries []string          `json:"excluded_countries"`
	CompliancePassed  bool              `json:"compliance_passed"`
	Profit            valueobject.Money `json:"profit"`
	Margin            string            `json:"margin"`
	Profitable        bool              `json:"profitable"`
	Breakdown         ProfitResponse    `json:"breakdown"`
	SnapshotVersion   uint64            `json:"snapshot_version"`
}

// ItemError describes why one batch item could not be evaluated
type ItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchItemResult is one batch entry; exactly one of Result and Error is set
type BatchItemResult struct {
	Index  int                  `json:"index"`
	Result *EligibilityResponse `json:"result,omitempty"`
	Error  *ItemError           `json:"error,omitempty"`
}

// BatchEvaluateResponse holds batch results in request order
type BatchEvaluateResponse struct {
	Items           []BatchItemResult `json:"items"`
	Passed          int               `json:"passed"`
	Rejected        int               `json:"rejected"`
	Failed          int               `json:"failed"`
	SnapshotVersion uint64            `json:"snapshot_version"`
}

// ComplianceResponse is the outcome of a compliance check
type ComplianceResponse struct {
	Passed            bool     `json:"passed"`
	RiskLevel         string   `json:"risk_level"`
	Issues            []string `json:"issues"`
	Advisories        []string `json:"advisories"`
	ExcludedCountries []string `json:"excluded_countries"`
	SnapshotVersion   uint64   `json:"snapshot_version"`
}

// BrandRuleRequest creates a brand rule
type BrandRuleRequest struct {
	Token     string `json:"token" binding:"required,max=200"`
	Scope     string `json:"scope"`
	RiskLevel string `json:"risk_level" binding:"max=20"`
	Notes     string `json:"notes" binding:"max=1000"`
}

// KeywordRuleRequest creates a keyword rule
type KeywordRuleRequest struct {
	Keyword  string `json:"keyword" binding:"required,max=200"`
	Severity string `json:"severity"`
}

// CountryRestrictionRequest creates a country restriction
type CountryRestrictionRequest struct {
	Category    string `json:"category" binding:"required"`
	CountryCode string `json:"country_code" binding:"required,len=2"`
	Reason      string `json:"reason" binding:"max=500"`
}

// SetRestrictionEnabledRequest toggles a country restriction
type SetRestrictionEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// BrandRuleResponse represents a brand rule
type BrandRuleResponse struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	Scope     string    `json:"scope"`
	RiskLevel string    `json:"risk_level"`
	Notes     string    `json:"notes"`
}

// KeywordRuleResponse represents a keyword rule
type KeywordRuleResponse struct {
	ID       uuid.UUID `json:"id"`
	Keyword  string    `json:"keyword"`
	Severity string    `json:"severity"`
}

// CountryRestrictionResponse represents a country restriction
type CountryRestrictionResponse struct {
	ID          uuid.UUID `json:"id"`
	Category    string    `json:"category"`
	CountryCode string    `json:"country_code"`
	Reason      string    `json:"reason"`
	Enabled     bool      `json:"enabled"`
}

// RulesResponse lists every stored compliance rule
type RulesResponse struct {
	Brands          []BrandRuleResponse          `json:"brands"`
	Keywords        []KeywordRuleResponse        `json:"keywords"`
	Restrictions    []CountryRestrictionResponse `json:"restrictions"`
	SnapshotVersion uint64                       `json:"snapshot_version"`
}

// SnapshotInfo summarizes the reference data in effect
type SnapshotInfo struct {
	Version             uint64    `json:"version"`
	CreatedAt           time.Time `json:"created_at"`
	BrandRules          int       `json:"brand_rules"`
	KeywordRules        int       `json:"keyword_rules"`
	CountryRestrictions int       `json:"country_restrictions"`
	ShippingBrackets    int       `json:"shipping_brackets"`
	Marketplaces        []string  `json:"marketplaces"`
	SourceCurrency      string    `json:"source_currency"`
	SaleCurrency        string    `json:"sale_currency"`
	ExchangeRate        string    `json:"exchange_rate"`
	MinimumMargin       string    `json:"minimum_margin"`
}

// ImportProductRequest creates or updates a product by supplier id
type ImportProductRequest struct {
	SupplierProductID string `json:"supplier_product_id" binding:"required,max=100"`
	Category          string `json:"category" binding:"required"`
	WholesalePrice    string `json:"wholesale_price" binding:"required"`
	WholesaleCurrency string `json:"wholesale_currency" binding:"omitempty,len=3"`
	WeightGrams       *int   `json:"weight_grams" binding:"required,min=0"`
	NameJA            string `json:"name_ja" binding:"max=500"`
	NameEN            string `json:"name_en" binding:"max=500"`
	DescriptionJA     string `json:"description_ja" binding:"max=10000"`
	DescriptionEN     string `json:"description_en" binding:"max=10000"`
	StockStatus       string `json:"stock_status"`
}

// UpdateStockRequest changes a product's stock status
type UpdateStockRequest struct {
	StockStatus string `json:"stock_status" binding:"required"`
}

// ListProductsQuery filters product listings
type ListProductsQuery struct {
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy        string `form:"order_by"`
	OrderDir       string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Search         string `form:"search" binding:"max=100"`
	Category       string `form:"category"`
	StockStatus    string `form:"stock_status"`
	IncludeRemoved bool   `form:"include_removed"`
}

// ProductResponse represents a stored product
type ProductResponse struct {
	ID                uuid.UUID         `json:"id"`
	SupplierProductID string            `json:"supplier_product_id"`
	Category          string            `json:"category"`
	WholesalePrice    valueobject.Money `json:"wholesale_price"`
	WeightGrams       int               `json:"weight_grams"`
	NameJA            string            `json:"name_ja"`
	NameEN            string            `json:"name_en"`
	DescriptionJA     string            `json:"description_ja"`
	DescriptionEN     string            `json:"description_en"`
	StockStatus       string            `json:"stock_status"`
	Removed           bool              `json:"removed"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ToProductResponse converts a domain product
func ToProductResponse(p *eligibility.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		SupplierProductID: p.SupplierProductID,
		Category:          string(p.Category),
		WholesalePrice:    p.WholesalePrice,
		WeightGrams:       p.WeightGrams,
		NameJA:            p.NameJA,
		NameEN:            p.NameEN,
		DescriptionJA:     p.DescriptionJA,
		DescriptionEN:     p.DescriptionEN,
		StockStatus:       string(p.StockStatus),
		Removed:           p.Removed,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToProfitResponse converts a profit breakdown
func ToProfitResponse(b eligibility.ProfitBreakdown, version uint64) ProfitResponse {
	addons := make([]AddonFeeResponse, len(b.Fees.Addons))
	for i, a := range b.Fees.Addons {
		addons[i] = AddonFeeResponse{Addon: string(a.Addon), Amount: a.Amount}
	}
	return ProfitResponse{
		SalePrice:          b.SalePrice,
		WholesaleConverted: b.WholesaleConverted,
		Shipping:           b.Shipping,
		ShippingMethod:     b.ShippingMethod,
		Fees: FeeBreakdownResponse{
			Percentage: b.Fees.Percentage,
			Fixed:      b.Fees.Fixed,
			Addons:     addons,
			Total:      b.Fees.Total,
		},
		TotalCost:       b.TotalCost,
		Profit:          b.Profit,
		Margin:          b.Margin.StringFixed(4),
		MinimumMargin:   b.MinimumMargin.StringFixed(4),
		Profitable:      b.Profitable,
		SnapshotVersion: version,
	}
}

// ToEligibilityResponse converts an evaluation result
func ToEligibilityResponse(r eligibility.EligibilityResult) EligibilityResponse {
	return EligibilityResponse{
		Passed:            r.Passed,
		Reasons:           nonNil(r.Reasons),
		Warnings:          nonNil(r.Warnings),
		ExcludedCountries: nonNil(r.ExcludedCountries),
		CompliancePassed:  r.CompliancePassed,
		Profit:            r.Profit,
		Margin:            r.Margin.StringFixed(4),
		Profitable:        r.Profitable,
		Breakdown:         ToProfitResponse(r.Breakdown, r.SnapshotVersion),
		SnapshotVersion:   r.SnapshotVersion,
	}
}

// ToComplianceResponse converts a compliance report
func ToComplianceResponse(r eligibility.ComplianceReport, version uint64) ComplianceResponse {
	return ComplianceResponse{
		Passed:            r.Passed,
		RiskLevel:         r.RiskLevel,
		Issues:            nonNil(r.Issues),
		Advisories:        nonNil(r.Advisories),
		ExcludedCountries: nonNil(r.ExcludedCountries),
		SnapshotVersion:   version,
	}
}

func toBrandRuleResponse(r eligibility.BrandRule) BrandRuleResponse {
	return BrandRuleResponse{ID: r.ID, Token: r.Token, Scope: r.Scope, RiskLevel: r.RiskLevel, Notes: r.Notes}
}

func toKeywordRuleResponse(r eligibility.KeywordRule) KeywordRuleResponse {
	return KeywordRuleResponse{ID: r.ID, Keyword: r.Keyword, Severity: string(r.Severity)}
}

func toCountryRestrictionResponse(r eligibility.CountryRestriction) CountryRestrictionResponse {
	return CountryRestrictionResponse{
		ID:          r.ID,
		Category:    string(r.Category),
		CountryCode: r.CountryCode,
		Reason:      r.Reason,
		Enabled:     r.Enabled,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
