package eligibility

import (
	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Warning texts for product state; they never reject a listing
const (
	WarningOutOfStock = "product is out of stock"
	WarningRemoved    = "product is marked removed"
)

// Offer is the proposed listing a product is evaluated against
type Offer struct {
	SalePrice        valueobject.Money
	Marketplace      Marketplace
	Destination      DestinationClass
	Addons           []Addon
	ShippingOverride *valueobject.Money
}

// EligibilityResult is the single admit/reject decision for a listing.
// Passed is true exactly when Reasons is empty.
type EligibilityResult struct {
	Passed            bool
	Reasons           []string
	Warnings          []string
	ExcludedCountries []string
	CompliancePassed  bool
	Profit            valueobject.Money
	Margin            decimal.Decimal
	Profitable        bool
	Breakdown         ProfitBreakdown
	SnapshotVersion   uint64
}

// Evaluate runs the compliance filter, then the profit calculator, and
// merges both into one result. Compliance findings and low margin are data;
// only invalid input or missing configuration is returned as an error, and
// then no partial result is produced.
func Evaluate(product *Product, offer Offer, snap *Snapshot) (EligibilityResult, error) {
	if product == nil {
		return EligibilityResult{}, invalidInput("INVALID_PRODUCT", "product is required")
	}
	if snap == nil || snap.Calculator() == nil {
		return EligibilityResult{}, unknownConfiguration("NO_SNAPSHOT", "no reference data loaded")
	}

	report := snap.Rules.Check(product, offer.Marketplace)

	breakdown, err := snap.Calculator().Calculate(ProfitInput{
		WholesalePrice:   product.WholesalePrice,
		WeightGrams:      product.WeightGrams,
		SalePrice:        offer.SalePrice,
		Marketplace:      offer.Marketplace,
		Destination:      offer.Destination,
		Addons:           offer.Addons,
		ShippingOverride: offer.ShippingOverride,
	})
	if err != nil {
		return EligibilityResult{}, err
	}

	reasons := make([]string, 0, len(report.Issues)+1)
	reasons = append(reasons, report.Issues...)
	if !breakdown.Profitable {
		reasons = append(reasons, "margin below minimum: "+
			breakdown.Margin.StringFixed(4)+" < "+breakdown.MinimumMargin.StringFixed(4))
	}

	warnings := make([]string, 0, len(report.Advisories)+2)
	warnings = append(warnings, report.Advisories...)
	if product.StockStatus == StockOutOfStock {
		warnings = append(warnings, WarningOutOfStock)
	}
	if product.Removed {
		warnings = append(warnings, WarningRemoved)
	}

	return EligibilityResult{
		Passed:            len(reasons) == 0,
		Reasons:           reasons,
		Warnings:          warnings,
		ExcludedCountries: report.ExcludedCountries,
		CompliancePassed:  report.Passed,
		Profit:            breakdown.Profit,
		Margin:            breakdown.Margin,
		Profitable:        breakdown.Profitable,
		Breakdown:         breakdown,
		SnapshotVersion:   snap.Version,
	}, nil
}
