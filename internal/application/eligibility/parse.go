package eligibility

import (
	"strings"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// adHocSupplierID names products that are evaluated without being stored
const adHocSupplierID = "ad-hoc"

func invalidInput(code, message string) error {
	return shared.NewDomainErrorOfKind(shared.ErrInvalidInput, code, message)
}

func parseCurrency(code string, fallback valueobject.Currency) (valueobject.Currency, error) {
	if strings.TrimSpace(code) == "" {
		return fallback, nil
	}
	c, err := valueobject.ParseCurrency(code)
	if err != nil {
		return "", invalidInput("INVALID_CURRENCY", err.Error())
	}
	return c, nil
}

func parseMoney(field, amount string, currency valueobject.Currency) (valueobject.Money, error) {
	m, err := valueobject.NewMoneyFromString(strings.TrimSpace(amount), currency)
	if err != nil {
		return valueobject.Money{}, invalidInput("INVALID_AMOUNT", field+": "+err.Error())
	}
	return m, nil
}

func parseFraction(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, invalidInput("INVALID_AMOUNT", field+": "+err.Error())
	}
	return d, nil
}

func requireWeight(weight *int) (int, error) {
	if weight == nil {
		return 0, invalidInput("MISSING_WEIGHT", "weight_grams is required")
	}
	if *weight < 0 {
		return 0, invalidInput("INVALID_WEIGHT", "weight cannot be negative")
	}
	return *weight, nil
}

// listing holds the parsed marketplace side shared by offers, profit and
// suggest-price requests
type listing struct {
	marketplace eligibility.Marketplace
	destination eligibility.DestinationClass
	addons      []eligibility.Addon
	override    *valueobject.Money
}

func (s *Service) parseListing(snap *eligibility.Snapshot, marketplace, destination string, addons []string, override *string) (listing, error) {
	var out listing
	var err error

	if strings.TrimSpace(marketplace) == "" {
		out.marketplace = s.defaultMarketplace
	} else if out.marketplace, err = eligibility.ParseMarketplace(marketplace); err != nil {
		return listing{}, err
	}
	if out.destination, err = eligibility.ParseDestinationClass(destination); err != nil {
		return listing{}, err
	}
	if out.addons, err = eligibility.ParseAddons(addons); err != nil {
		return listing{}, err
	}
	if override != nil {
		m, err := parseMoney("shipping_override", *override, snap.Exchange.Source)
		if err != nil {
			return listing{}, err
		}
		if m.IsNegative() {
			return listing{}, invalidInput("INVALID_SHIPPING_OVERRIDE", "shipping override cannot be negative")
		}
		out.override = &m
	}
	return out, nil
}

func (s *Service) parseOffer(snap *eligibility.Snapshot, req OfferRequest) (eligibility.Offer, error) {
	currency, err := parseCurrency(req.SaleCurrency, snap.Exchange.Target)
	if err != nil {
		return eligibility.Offer{}, err
	}
	sale, err := parseMoney("sale_price", req.SalePrice, currency)
	if err != nil {
		return eligibility.Offer{}, err
	}
	l, err := s.parseListing(snap, req.Marketplace, req.Destination, req.Addons, req.ShippingOverride)
	if err != nil {
		return eligibility.Offer{}, err
	}
	return eligibility.Offer{
		SalePrice:        sale,
		Marketplace:      l.marketplace,
		Destination:      l.destination,
		Addons:           l.addons,
		ShippingOverride: l.override,
	}, nil
}

// buildProduct turns an inline payload into a transient domain product
func buildProduct(snap *eligibility.Snapshot, p ProductPayload) (*eligibility.Product, error) {
	category, err := eligibility.ParseCategory(p.Category)
	if err != nil {
		return nil, err
	}
	weight, err := requireWeight(p.WeightGrams)
	if err != nil {
		return nil, err
	}
	currency, err := parseCurrency(p.WholesaleCurrency, snap.Exchange.Source)
	if err != nil {
		return nil, err
	}
	price, err := parseMoney("wholesale_price", p.WholesalePrice, currency)
	if err != nil {
		return nil, err
	}

	supplierID := p.SupplierProductID
	if strings.TrimSpace(supplierID) == "" {
		supplierID = adHocSupplierID
	}
	product, err := eligibility.NewProduct(supplierID, category, price, weight, p.NameJA, p.NameEN)
	if err != nil {
		return nil, err
	}
	product.UpdateDescriptions(p.DescriptionJA, p.DescriptionEN)
	if p.StockStatus != "" {
		status, err := eligibility.ParseStockStatus(p.StockStatus)
		if err != nil {
			return nil, err
		}
		if err := product.UpdateStock(status); err != nil {
			return nil, err
		}
	}
	if p.Removed {
		product.MarkRemoved()
	}
	return product, nil
}
