package eligibility

import (
	"strings"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/domain/shared/valueobject"
)

// Product is a candidate item imported from a wholesale supplier feed.
// Products are never deleted; MarkRemoved hides them from listing.
type Product struct {
	shared.BaseEntity
	SupplierProductID string
	Category          Category
	WholesalePrice    valueobject.Money
	WeightGrams       int
	NameJA            string
	NameEN            string
	DescriptionJA     string
	DescriptionEN     string
	StockStatus       StockStatus
	Removed           bool
}

// NewProduct creates a product from supplier data
func NewProduct(
	supplierProductID string,
	category Category,
	wholesalePrice valueobject.Money,
	weightGrams int,
	nameJA, nameEN string,
) (*Product, error) {
	if strings.TrimSpace(supplierProductID) == "" {
		return nil, invalidInput("INVALID_SUPPLIER_ID", "supplier product id cannot be empty")
	}
	if !category.IsValid() {
		return nil, invalidInput("INVALID_CATEGORY", "unknown category: "+string(category))
	}
	if err := validateWholesalePrice(wholesalePrice); err != nil {
		return nil, err
	}
	if weightGrams < 0 {
		return nil, invalidInput("INVALID_WEIGHT", "weight cannot be negative")
	}
	if strings.TrimSpace(nameJA) == "" && strings.TrimSpace(nameEN) == "" {
		return nil, invalidInput("INVALID_NAME", "product needs a name in at least one language")
	}

	return &Product{
		BaseEntity:        shared.NewBaseEntity(),
		SupplierProductID: strings.TrimSpace(supplierProductID),
		Category:          category,
		WholesalePrice:    wholesalePrice,
		WeightGrams:       weightGrams,
		NameJA:            nameJA,
		NameEN:            nameEN,
		StockStatus:       StockInStock,
	}, nil
}

// UpdateDescriptions sets listing copy produced by the generation step
func (p *Product) UpdateDescriptions(descriptionJA, descriptionEN string) {
	p.DescriptionJA = descriptionJA
	p.DescriptionEN = descriptionEN
	p.Touch()
}

// UpdateSupplierData refreshes price, weight and names from a re-import
func (p *Product) UpdateSupplierData(category Category, wholesalePrice valueobject.Money, weightGrams int, nameJA, nameEN string) error {
	if !category.IsValid() {
		return invalidInput("INVALID_CATEGORY", "unknown category: "+string(category))
	}
	if err := validateWholesalePrice(wholesalePrice); err != nil {
		return err
	}
	if weightGrams < 0 {
		return invalidInput("INVALID_WEIGHT", "weight cannot be negative")
	}
	p.Category = category
	p.WholesalePrice = wholesalePrice
	p.WeightGrams = weightGrams
	if nameJA != "" {
		p.NameJA = nameJA
	}
	if nameEN != "" {
		p.NameEN = nameEN
	}
	p.Touch()
	return nil
}

// UpdateStock records the latest stock-sync result
func (p *Product) UpdateStock(status StockStatus) error {
	if !status.IsValid() {
		return invalidInput("INVALID_STOCK_STATUS", "unknown stock status: "+string(status))
	}
	p.StockStatus = status
	p.Touch()
	return nil
}

// MarkRemoved flags the product as withdrawn by the supplier
func (p *Product) MarkRemoved() {
	if p.Removed {
		return
	}
	p.Removed = true
	p.Touch()
}

// Texts returns every free-text field scanned by the compliance filter
func (p *Product) Texts() []string {
	return []string{p.NameJA, p.NameEN, p.DescriptionJA, p.DescriptionEN}
}

func validateWholesalePrice(price valueobject.Money) error {
	if price.Currency() == "" {
		return invalidInput("INVALID_WHOLESALE_PRICE", "wholesale price needs a currency")
	}
	if price.IsNegative() {
		return invalidInput("INVALID_WHOLESALE_PRICE", "wholesale price cannot be negative")
	}
	return nil
}
